package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityhandler "seaplan/internal/identity/handler"
	identityservice "seaplan/internal/identity/service"
	identitystore "seaplan/internal/identity/store"
	jwttoken "seaplan/internal/jwt_token"
	ledgerservice "seaplan/internal/ledger/service"
	planhandler "seaplan/internal/plan/handler"
	planservice "seaplan/internal/plan/service"
	planstore "seaplan/internal/plan/store"
	zonehandler "seaplan/internal/zone/handler"
	zoneservice "seaplan/internal/zone/service"
	zonestore "seaplan/internal/zone/store"
)

// newTestServer assembles the full surface over in-memory stores with the
// default seed accounts.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	identities := identitystore.NewInMemory()
	require.NoError(t, identitystore.Seed(context.Background(), identities, identitystore.DefaultSeed()))

	tokens := jwttoken.NewService("test-signing-key", "seaplan-test")
	ledger, err := ledgerservice.New(identities, identities)
	require.NoError(t, err)
	zones, err := zoneservice.New(zonestore.NewInMemory())
	require.NoError(t, err)
	plans, err := planservice.New(planstore.NewInMemory(), ledger, zones, 5, 48*time.Hour)
	require.NoError(t, err)
	accounts, err := identityservice.New(identities, tokens, ledger, time.Hour)
	require.NoError(t, err)

	handlers := Handlers{
		Identity: identityhandler.New(accounts, logger),
		Plan:     planhandler.New(plans, logger),
		Zone:     zonehandler.New(zones, logger),
	}
	return NewRouter(handlers, jwttoken.NewMiddlewareAdapter(tokens), logger)
}

func login(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

func do(router http.Handler, method, target, token string, payload any) *httptest.ResponseRecorder {
	var reader io.Reader
	if payload != nil {
		body, _ := json.Marshal(payload)
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func submitPayload() map[string]any {
	start := time.Now().Add(72 * time.Hour)
	return map[string]any{
		"vessel_id": "VESSEL0001",
		"route": []map[string]float64{
			{"lat": 43, "lon": 9},
			{"lat": 43.5, "lon": 9.5},
			{"lat": 43, "lon": 9},
		},
		"window_start": start.Format(time.RFC3339),
		"window_end":   start.Add(24 * time.Hour).Format(time.RFC3339),
	}
}

func TestAuthGates(t *testing.T) {
	router := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/navigation-plans", "", submitPayload())
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/navigation-plans", "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("reviewer may not submit plans", func(t *testing.T) {
		reviewer := login(t, router, "harbormaster@example.com", "password3")
		rec := do(router, http.MethodPost, "/navigation-plans", reviewer, submitPayload())
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("requester may not manage zones", func(t *testing.T) {
		requester := login(t, router, "skipper@example.com", "password1")
		rec := do(router, http.MethodPost, "/restricted-zones", requester, map[string]any{
			"top_left":     map[string]float64{"lat": 45, "lon": 10},
			"bottom_right": map[string]float64{"lat": 44, "lon": 11},
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("requester may not recharge credits", func(t *testing.T) {
		requester := login(t, router, "skipper@example.com", "password1")
		rec := do(router, http.MethodPut, "/users/someone/credits", requester, map[string]int{"amount": 5})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestFullLifecycle(t *testing.T) {
	router := newTestServer(t)

	requester := login(t, router, "skipper@example.com", "password1")
	reviewer := login(t, router, "harbormaster@example.com", "password3")

	// Reviewer fences off the Adriatic box.
	rec := do(router, http.MethodPost, "/restricted-zones", reviewer, map[string]any{
		"top_left":     map[string]float64{"lat": 45, "lon": 10},
		"bottom_right": map[string]float64{"lat": 44, "lon": 11},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// Zone list is public.
	rec = do(router, http.MethodGet, "/restricted-zones", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// A route through the zone is refused; the requester keeps their credits.
	crossing := submitPayload()
	crossing["route"] = []map[string]float64{
		{"lat": 44.5, "lon": 9},
		{"lat": 44.5, "lon": 12},
		{"lat": 44.5, "lon": 9},
	}
	rec = do(router, http.MethodPost, "/navigation-plans", requester, crossing)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// A clear route is admitted.
	rec = do(router, http.MethodPost, "/navigation-plans", requester, submitPayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var plan struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&plan))
	require.Equal(t, "pending", plan.Status)

	// The reviewer sees it and rejects it with a reason.
	rec = do(router, http.MethodGet, "/navigation-plans", reviewer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodPatch, "/navigation-plans/"+plan.ID+"/rejected", reviewer, map[string]string{"reason": "storm warning"})
	require.Equal(t, http.StatusOK, rec.Code)
	var rejected struct {
		Status          string `json:"status"`
		RejectionReason string `json:"rejection_reason"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rejected))
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, "storm warning", rejected.RejectionReason)

	// The owner cannot cancel a rejected plan.
	rec = do(router, http.MethodDelete, "/navigation-plans/"+plan.ID, requester, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestInsufficientCreditsOverHTTP(t *testing.T) {
	router := newTestServer(t)

	// deckhand is seeded below the admission cost.
	deckhand := login(t, router, "deckhand@example.com", "password2")
	rec := do(router, http.MethodPost, "/navigation-plans", deckhand, submitPayload())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "insufficient_credits", resp.Error)

	// The administrator recharges them over the cost.
	admin := login(t, router, "admin@example.com", "password4")
	var me struct {
		ID string `json:"id"`
	}
	meRec := do(router, http.MethodGet, "/users/me", deckhand, nil)
	require.Equal(t, http.StatusOK, meRec.Code)
	require.NoError(t, json.NewDecoder(meRec.Body).Decode(&me))

	rec = do(router, http.MethodPut, "/users/"+me.ID+"/credits", admin, map[string]int{"amount": 20})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(router, http.MethodPost, "/navigation-plans", deckhand, submitPayload())
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
