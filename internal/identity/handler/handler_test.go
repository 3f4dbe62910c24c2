package handler

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

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"seaplan/internal/identity/models"
	"seaplan/internal/identity/service"
	"seaplan/internal/identity/store"
	jwttoken "seaplan/internal/jwt_token"
	ledgerservice "seaplan/internal/ledger/service"
	id "seaplan/pkg/domain"
)

type env struct {
	router    http.Handler
	requester *identityRecord
}

type identityRecord struct {
	identity *models.Identity
	password string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	identities := store.NewInMemory()
	hash, err := bcrypt.GenerateFromPassword([]byte("hoist the sails"), bcrypt.MinCost)
	require.NoError(t, err)
	requester, err := models.NewIdentity(id.NewIdentityID(), "skipper@example.com", string(hash), id.RoleRequester, 3, time.Now())
	require.NoError(t, err)
	require.NoError(t, identities.CreateIfEmailAvailable(context.Background(), requester))

	tokens := jwttoken.NewService("test-signing-key", "seaplan-test")
	ledger, err := ledgerservice.New(identities, identities)
	require.NoError(t, err)
	svc, err := service.New(identities, tokens, ledger, time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(svc, logger)

	r := chi.NewRouter()
	h.Register(r)
	h.RegisterAdmin(r)

	return &env{
		router:    r,
		requester: &identityRecord{identity: requester, password: "hoist the sails"},
	}
}

func (e *env) post(t *testing.T, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleLogin(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		e := newEnv(t)
		rec := e.post(t, "/auth/login", map[string]string{
			"email":    "skipper@example.com",
			"password": e.requester.password,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			AccessToken string `json:"access_token"`
			TokenType   string `json:"token_type"`
			Role        string `json:"role"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "requester", resp.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		e := newEnv(t)
		rec := e.post(t, "/auth/login", map[string]string{
			"email":    "skipper@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		e := newEnv(t)
		rec := e.post(t, "/auth/login", map[string]string{"email": "skipper@example.com"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleRecharge(t *testing.T) {
	t.Run("adds credits to the target", func(t *testing.T) {
		e := newEnv(t)
		body, err := json.Marshal(map[string]int{"amount": 10})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "/users/"+e.requester.identity.ID.String()+"/credits", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp struct {
			CreditBalance int `json:"credit_balance"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, 13, resp.CreditBalance)
	})

	t.Run("unknown target", func(t *testing.T) {
		e := newEnv(t)
		body, err := json.Marshal(map[string]int{"amount": 10})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "/users/"+id.NewIdentityID().String()+"/credits", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("zero amount", func(t *testing.T) {
		e := newEnv(t)
		body, err := json.Marshal(map[string]int{"amount": 0})
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "/users/"+e.requester.identity.ID.String()+"/credits", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
