package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seaplan/internal/geofence"
	"seaplan/internal/plan/models"
	id "seaplan/pkg/domain"
	dErrors "seaplan/pkg/domain-errors"
)

func samplePlans(t *testing.T) []models.Plan {
	t.Helper()
	now := time.Now()
	start := now.Add(72 * time.Hour)
	plan, err := models.NewPlan(id.NewPlanID(), id.NewIdentityID(), "VESSEL0001",
		[]geofence.Waypoint{{Lat: 43, Lon: 9}, {Lat: 43.5, Lon: 9.5}, {Lat: 43, Lon: 9}},
		start, start.Add(24*time.Hour), now, 48*time.Hour)
	require.NoError(t, err)
	plan.ApplyRejection("storm warning", now)
	return []models.Plan{*plan}
}

func TestForFormat(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		r, err := ForFormat(id.ExportFormatJSON)
		require.NoError(t, err)
		assert.Equal(t, "application/json", r.ContentType())
	})

	t.Run("pdf", func(t *testing.T) {
		r, err := ForFormat(id.ExportFormatPDF)
		require.NoError(t, err)
		assert.Equal(t, "application/pdf", r.ContentType())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ForFormat(id.ExportFormat("docx"))
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestJSONRender(t *testing.T) {
	r, err := ForFormat(id.ExportFormatJSON)
	require.NoError(t, err)

	out, err := r.Render(samplePlans(t))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "VESSEL0001", decoded[0]["vessel_id"])
	assert.Equal(t, "storm warning", decoded[0]["rejection_reason"])
}

func TestPDFRender(t *testing.T) {
	r, err := ForFormat(id.ExportFormatPDF)
	require.NoError(t, err)

	out, err := r.Render(samplePlans(t))
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}
