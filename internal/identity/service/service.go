package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"seaplan/internal/audit"
	"seaplan/internal/identity/models"
	id "seaplan/pkg/domain"
	dErrors "seaplan/pkg/domain-errors"
	"seaplan/pkg/platform/sentinel"
	"seaplan/pkg/requestcontext"
)

// Store is the consumer-side persistence contract for identities.
type Store interface {
	FindByID(ctx context.Context, identityID id.IdentityID) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
}

// TokenIssuer signs access tokens for authenticated identities.
type TokenIssuer interface {
	GenerateAccessToken(identityID id.IdentityID, role id.Role, expiresIn time.Duration) (string, error)
}

// Ledger is the recharge path into the credit ledger.
type Ledger interface {
	Credit(ctx context.Context, identityID id.IdentityID, amount int) (int, error)
}

// Service handles authentication and the administrator-side account
// operations.
type Service struct {
	identities     Store
	tokens         TokenIssuer
	ledger         Ledger
	tokenTTL       time.Duration
	logger         *slog.Logger
	auditPublisher *audit.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.auditPublisher = p }
}

func New(identities Store, tokens TokenIssuer, ledger Ledger, tokenTTL time.Duration, opts ...Option) (*Service, error) {
	if identities == nil {
		return nil, errors.New("identity service: store is required")
	}
	if tokens == nil {
		return nil, errors.New("identity service: token issuer is required")
	}
	if ledger == nil {
		return nil, errors.New("identity service: ledger is required")
	}
	s := &Service{
		identities: identities,
		tokens:     tokens,
		ledger:     ledger,
		tokenTTL:   tokenTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// LoginResult carries a freshly issued access token.
type LoginResult struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int           `json:"expires_in"`
	Role        id.Role       `json:"role"`
	IdentityID  id.IdentityID `json:"identity_id"`
}

// Login verifies the email and password and issues an access token. Unknown
// emails and wrong passwords both answer unauthorized so callers cannot probe
// which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	identity, err := s.identities.FindByEmail(ctx, email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}

	if bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)) != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := s.tokens.GenerateAccessToken(identity.ID, identity.Role, s.tokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign access token")
	}

	s.log(ctx, "login_succeeded", "identity_id", identity.ID, "role", identity.Role)
	return &LoginResult{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokenTTL.Seconds()),
		Role:        identity.Role,
		IdentityID:  identity.ID,
	}, nil
}

// Recharge adds credits to a requester's balance. The ledger rejects targets
// whose role carries no balance.
func (s *Service) Recharge(ctx context.Context, targetID id.IdentityID, amount int) (int, error) {
	if amount <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "recharge amount must be positive")
	}
	balance, err := s.ledger.Credit(ctx, targetID, amount)
	if err != nil {
		return 0, err
	}

	s.audit(ctx, requestcontext.IdentityID(ctx), "credits_recharged", targetID.String(), fmt.Sprintf("amount=%d", amount))
	s.log(ctx, "credits_recharged", "target_id", targetID, "amount", amount, "balance", balance)
	return balance, nil
}

// Get returns the identity record.
func (s *Service) Get(ctx context.Context, identityID id.IdentityID) (*models.Identity, error) {
	if identityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "identity id is required")
	}
	identity, err := s.identities.FindByID(ctx, identityID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	return identity, nil
}

func (s *Service) audit(ctx context.Context, actorID id.IdentityID, action, subject, detail string) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		ActorID:   actorID.String(),
		Action:    action,
		Subject:   subject,
		Detail:    detail,
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"request_id", requestcontext.RequestID(ctx),
			"action", action,
			"error", err,
		)
	}
}

func (s *Service) log(ctx context.Context, event string, attrs ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	attrs = append(attrs, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, attrs...)
}
