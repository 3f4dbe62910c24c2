package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seaplan/internal/zone/service"
	"seaplan/internal/zone/store"
	id "seaplan/pkg/domain"
)

func newZoneRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, err := service.New(store.NewInMemory())
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(svc, logger)
	r := chi.NewRouter()
	h.Register(r)
	h.RegisterProtected(r)
	return r
}

func zoneBody(t *testing.T, tlLat, tlLon, brLat, brLon float64) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"top_left":     map[string]float64{"lat": tlLat, "lon": tlLon},
		"bottom_right": map[string]float64{"lat": brLat, "lon": brLon},
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func createZone(t *testing.T, router http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/restricted-zones", zoneBody(t, 45, 10, 44, 11))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.ID)
	return resp.ID
}

func TestCreateZone(t *testing.T) {
	router := newZoneRouter(t)

	t.Run("creates a zone", func(t *testing.T) {
		createZone(t, router)
	})

	t.Run("duplicate rectangle conflicts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/restricted-zones", zoneBody(t, 45, 10, 44, 11))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)

		var resp struct {
			Error string `json:"error"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "conflict", resp.Error)
	})

	t.Run("inverted rectangle is a validation error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/restricted-zones", zoneBody(t, 44, 11, 45, 10))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("out-of-range corner is rejected at the boundary", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/restricted-zones", zoneBody(t, 95, 10, 44, 11))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestUpdateZone(t *testing.T) {
	router := newZoneRouter(t)
	zoneID := createZone(t, router)

	t.Run("replaces the rectangle", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/restricted-zones/"+zoneID, zoneBody(t, 46, 12, 45, 13))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			TopLeft struct {
				Lat float64 `json:"lat"`
			} `json:"top_left"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, 46.0, resp.TopLeft.Lat)
	})

	t.Run("unknown id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/restricted-zones/"+id.NewZoneID().String(), zoneBody(t, 46, 12, 45, 13))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/restricted-zones/not-a-uuid", zoneBody(t, 46, 12, 45, 13))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteZone(t *testing.T) {
	router := newZoneRouter(t)
	zoneID := createZone(t, router)

	req := httptest.NewRequest(http.MethodDelete, "/restricted-zones/"+zoneID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/restricted-zones/"+zoneID, nil)
	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, getReq)
	assert.Equal(t, http.StatusNotFound, getRec.Code)
}

func TestListZones(t *testing.T) {
	t.Run("empty registry returns not_found", func(t *testing.T) {
		router := newZoneRouter(t)
		req := httptest.NewRequest(http.MethodGet, "/restricted-zones", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("lists created zones", func(t *testing.T) {
		router := newZoneRouter(t)
		createZone(t, router)

		req := httptest.NewRequest(http.MethodGet, "/restricted-zones", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var zones []json.RawMessage
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&zones))
		assert.Len(t, zones, 1)
	})
}
