package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pharmaops/internal/anchor"
	"pharmaops/internal/audit"
	"pharmaops/internal/catalog"
	"pharmaops/internal/document"
	"pharmaops/internal/evidence"
	"pharmaops/internal/events"
	"pharmaops/internal/order"
	"pharmaops/internal/platform/config"
	"pharmaops/internal/platform/httpserver"
	"pharmaops/internal/platform/logger"
	"pharmaops/internal/platform/metrics"
	"pharmaops/internal/platform/postgres"
	platformredis "pharmaops/internal/platform/redis"
	"pharmaops/internal/shipment"
	"pharmaops/internal/stats"
	httptransport "pharmaops/internal/transport/http"
	"pharmaops/internal/user"
	"pharmaops/pkg/platform/middleware/auth"
	"pharmaops/pkg/platform/tx"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Persistence. Postgres when configured, in-memory otherwise so the
	// server runs standalone in development.
	var (
		orderStore     order.Store
		checklistStore order.ChecklistStore
		documentStore  document.Store
		shipmentStore  shipment.Store
		userStore      user.Store
		auditStore     audit.Store
		outboxStore    anchor.OutboxStore
		anchorStore    anchor.Store
		companyStore   catalog.CompanyStore
		productStore   catalog.ProductStore
		reqStore       catalog.RequirementStore
		runner         tx.Runner
	)

	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}

		orderStore = order.NewPostgresStore(db)
		checklistStore = order.NewPostgresChecklistStore(db)
		documentStore = document.NewPostgresStore(db)
		shipmentStore = shipment.NewPostgresStore(db)
		userStore = user.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		outboxStore = anchor.NewPostgresOutboxStore(db)
		anchorStore = anchor.NewPostgresStore(db)
		companyStore = catalog.NewPostgresCompanyStore(db)
		productStore = catalog.NewPostgresProductStore(db)
		reqStore = catalog.NewPostgresRequirementStore(db)
		runner = postgres.NewTxRunner(db)
		log.Info("storage ready", "backend", "postgres")
	} else {
		orderStore = order.NewInMemoryStore()
		checklistStore = order.NewInMemoryChecklistStore()
		documentStore = document.NewInMemoryStore()
		shipmentStore = shipment.NewInMemoryStore()
		userStore = user.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		outboxStore = anchor.NewInMemoryOutboxStore()
		anchorStore = anchor.NewInMemoryStore()
		companyStore = catalog.NewInMemoryCompanyStore()
		productStore = catalog.NewInMemoryProductStore()
		reqStore = catalog.NewInMemoryRequirementStore()
		runner = tx.NewMutexRunner()
		log.Warn("storage ready", "backend", "memory")
	}

	var cache *platformredis.Client
	if cfg.RedisURL != "" {
		c, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer c.Close()
		cache = c
	}

	var publisher shipment.EventPublisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := events.NewPublisher(ctx, cfg.KafkaBrokers, cfg.KafkaShipmentTopic, log)
		if err != nil {
			return err
		}
		defer p.Close(ctx)
		publisher = p
	}

	var mailer user.Mailer = user.NopMailer{}
	if cfg.SMTPHost != "" {
		mailer = user.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}

	var provider anchor.Provider = &anchor.MockProvider{}
	if cfg.NotaryURL != "" {
		provider = anchor.NewNotaryClient(cfg.NotaryURL, cfg.AnchorCallTimeout)
	}

	recorder := audit.NewRecorder(auditStore, log, m)
	anchorQueue := anchor.NewQueue(outboxStore)

	catalogSvc := catalog.NewService(companyStore, productStore, reqStore, recorder)
	userSvc := user.NewService(userStore, companyStore, productStore, recorder, mailer, runner, log, m, cfg.JWTSigningKey)
	orderSvc := order.NewService(orderStore, checklistStore, catalogSvc, companyStore, recorder, runner, log, m)
	documentSvc := document.NewService(documentStore, orderStore, checklistStore, recorder, anchorQueue, runner, log, m)
	shipmentSvc := shipment.NewService(shipmentStore, orderStore, checklistStore, recorder, publisher, anchorQueue, runner, log, m)
	evidenceSvc := evidence.NewService(orderSvc, checklistStore, documentStore, anchorStore, auditStore)
	statsSvc := stats.NewService(orderStore, shipmentStore, cache, cfg.StatsCacheTTL, log)

	worker := anchor.NewWorker(outboxStore, anchorStore, provider, cfg.NotaryNetwork,
		cfg.AnchorPollInterval, cfg.AnchorMaxAttempts, log, m)
	go worker.Run(ctx)

	server := httptransport.NewServer(
		userSvc,
		catalogSvc,
		userSvc,
		orderSvc,
		documentSvc,
		shipmentSvc,
		evidenceSvc,
		auditStore,
		statsSvc,
		anchorStore,
		auth.NewVerifier(cfg.JWTSigningKey),
		log,
		m,
	)

	srv := httpserver.New(cfg.Addr, server.Router())

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
