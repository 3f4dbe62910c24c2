// Package export renders a filtered plan collection as an alternate
// representation. Renderers receive the final filtered slice once and return
// an opaque byte stream with its content type.
package export

import (
	"seaplan/internal/plan/models"
	id "seaplan/pkg/domain"
	dErrors "seaplan/pkg/domain-errors"
)

// Renderer turns a plan collection into a document.
type Renderer interface {
	Render(plans []models.Plan) ([]byte, error)
	ContentType() string
}

// ForFormat returns the renderer for the requested format.
func ForFormat(format id.ExportFormat) (Renderer, error) {
	switch format {
	case id.ExportFormatJSON:
		return jsonRenderer{}, nil
	case id.ExportFormatPDF:
		return pdfRenderer{}, nil
	}
	return nil, dErrors.New(dErrors.CodeBadRequest, "unknown export format")
}
