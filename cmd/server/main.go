package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.opentelemetry.io/otel"

	"seaplan/internal/audit"
	httpapi "seaplan/internal/http"
	identityhandler "seaplan/internal/identity/handler"
	"seaplan/internal/identity/models"
	identityservice "seaplan/internal/identity/service"
	identitystore "seaplan/internal/identity/store"
	jwttoken "seaplan/internal/jwt_token"
	ledgerservice "seaplan/internal/ledger/service"
	ledgerredis "seaplan/internal/ledger/store/redis"
	planhandler "seaplan/internal/plan/handler"
	planservice "seaplan/internal/plan/service"
	planstore "seaplan/internal/plan/store"
	"seaplan/internal/platform/config"
	"seaplan/internal/platform/httpserver"
	"seaplan/internal/platform/logger"
	"seaplan/internal/platform/metrics"
	"seaplan/internal/platform/postgres"
	"seaplan/internal/platform/redis"
	zonehandler "seaplan/internal/zone/handler"
	zoneservice "seaplan/internal/zone/service"
	zonestore "seaplan/internal/zone/store"
	id "seaplan/pkg/domain"
)

// identityStore is the full persistence surface main wires: identity CRUD for
// the identity service and seeding, plus the balance primitives the ledger
// falls back on when Redis is not configured. Both the in-memory and the
// postgres identity stores satisfy it.
type identityStore interface {
	CreateIfEmailAvailable(ctx context.Context, identity *models.Identity) error
	FindByID(ctx context.Context, identityID id.IdentityID) (*models.Identity, error)
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	DebitIfSufficient(ctx context.Context, identityID id.IdentityID, amount int) (int, error)
	Credit(ctx context.Context, identityID id.IdentityID, amount int) (int, error)
	Balance(ctx context.Context, identityID id.IdentityID) (int, error)
}

// main wires configuration, stores, services, and the HTTP router, then owns
// the server lifecycle. Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx := context.Background()

	var (
		identities identityStore
		zones      zoneservice.Store
		plans      planservice.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("postgres migration failed", "error", err)
			os.Exit(1)
		}
		identities = identitystore.NewPostgres(db)
		zones = zonestore.NewPostgres(db)
		plans = planstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		identities = identitystore.NewInMemory()
		zones = zonestore.NewInMemory()
		plans = planstore.NewInMemory()
		log.Info("using in-memory stores")
	}

	// The ledger rides on the identity store unless Redis is configured, in
	// which case balances move into a Redis hash and the identity store keeps
	// only the roster.
	var ledgerStore ledgerservice.Store = identities
	var redisLedger *ledgerredis.Store
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		redisLedger = ledgerredis.New(redisClient.Client)
		ledgerStore = redisLedger
		log.Info("using redis ledger store")
	}

	if cfg.SeedData {
		seeds := identitystore.DefaultSeed()
		if err := identitystore.Seed(ctx, identities, seeds); err != nil {
			log.Error("seeding identities failed", "error", err)
			os.Exit(1)
		}
		if redisLedger != nil {
			if err := mirrorSeedBalances(ctx, identities, redisLedger, seeds); err != nil {
				log.Error("mirroring seed balances to redis failed", "error", err)
				os.Exit(1)
			}
		}
		log.Info("seeded development identities", "count", len(seeds))
	}

	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer)
	m := metrics.New()
	auditPublisher := audit.NewPublisher(audit.NewMemoryStore())
	tracer := otel.Tracer("seaplan")

	ledgerSvc, err := ledgerservice.New(ledgerStore, identities, ledgerservice.WithLogger(log))
	if err != nil {
		log.Error("ledger service init failed", "error", err)
		os.Exit(1)
	}
	zoneSvc, err := zoneservice.New(zones, zoneservice.WithLogger(log))
	if err != nil {
		log.Error("zone service init failed", "error", err)
		os.Exit(1)
	}
	planSvc, err := planservice.New(plans, ledgerSvc, zoneSvc, cfg.AdmissionCost, cfg.MinLeadTime,
		planservice.WithLogger(log),
		planservice.WithMetrics(m),
		planservice.WithAuditPublisher(auditPublisher),
		planservice.WithTracer(tracer),
	)
	if err != nil {
		log.Error("plan service init failed", "error", err)
		os.Exit(1)
	}
	identitySvc, err := identityservice.New(identities, tokens, ledgerSvc, cfg.TokenTTL,
		identityservice.WithLogger(log),
		identityservice.WithAuditPublisher(auditPublisher),
	)
	if err != nil {
		log.Error("identity service init failed", "error", err)
		os.Exit(1)
	}

	router := httpapi.NewRouter(httpapi.Handlers{
		Identity: identityhandler.New(identitySvc, log),
		Plan:     planhandler.New(planSvc, log),
		Zone:     zonehandler.New(zoneSvc, log),
	}, jwttoken.NewMiddlewareAdapter(tokens), log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting seaplan", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// mirrorSeedBalances copies seeded requester balances into the Redis ledger
// hash so a fresh Redis instance agrees with the identity roster.
func mirrorSeedBalances(ctx context.Context, identities identityStore, ledger *ledgerredis.Store, seeds []identitystore.SeedIdentity) error {
	for _, seed := range seeds {
		identity, err := identities.FindByEmail(ctx, seed.Email)
		if err != nil {
			return err
		}
		if !identity.Role.HoldsBalance() {
			continue
		}
		if err := ledger.SetBalance(ctx, identity.ID, identity.CreditBalance); err != nil {
			return err
		}
	}
	return nil
}
