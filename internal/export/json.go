package export

import (
	"encoding/json"
	"fmt"

	"seaplan/internal/plan/models"
)

type jsonRenderer struct{}

func (jsonRenderer) Render(plans []models.Plan) ([]byte, error) {
	out, err := json.MarshalIndent(plans, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render json export: %w", err)
	}
	return out, nil
}

func (jsonRenderer) ContentType() string { return "application/json" }
