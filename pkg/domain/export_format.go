package domain

import dErrors "seaplan/pkg/domain-errors"

// ExportFormat selects the rendering of a filtered plan listing.
type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ParseExportFormat validates s against the supported formats.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case ExportFormatJSON, ExportFormatPDF:
		return ExportFormat(s), nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown export format")
}

func (f ExportFormat) String() string { return string(f) }
