package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"dogschool-admin/internal/audit"
	"dogschool-admin/internal/auth"
	"dogschool-admin/internal/config"
	"dogschool-admin/internal/eventing"
	eventingrepo "dogschool-admin/internal/eventing/infrastructure/postgres"
	"dogschool-admin/internal/observability/metrics"
	settlementroster "dogschool-admin/internal/settlement/adapters/training"
	settlementapp "dogschool-admin/internal/settlement/application"
	settlement "dogschool-admin/internal/settlement/domain"
	settlementrepo "dogschool-admin/internal/settlement/infrastructure/postgres"
	settlementpricing "dogschool-admin/internal/settlement/infrastructure/pricing"
	settlementinterfaces "dogschool-admin/internal/settlement/interfaces"
	trainingapp "dogschool-admin/internal/training/application"
	trainingrepo "dogschool-admin/internal/training/infrastructure/postgres"
	traininginterfaces "dogschool-admin/internal/training/interfaces"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	clientRepo := trainingrepo.NewClientRepository(db)
	sessionRepo := trainingrepo.NewSessionRepository(db)
	evaluationRepo := trainingrepo.NewEvaluationRepository(db)

	eventPublisher, err := eventing.NewPublisher(eventingrepo.NewOutboxStore(db))
	if err != nil {
		logger.Fatalf("event publisher error: %v", err)
	}
	programPublisher, err := traininginterfaces.NewOutboxPublisher(eventPublisher, logger)
	if err != nil {
		logger.Fatalf("program publisher error: %v", err)
	}
	ledgerService, err := trainingapp.NewLedgerService(
		clientRepo,
		sessionRepo,
		trainingapp.WithPublisher(programPublisher),
		trainingapp.WithLocation(loc),
	)
	if err != nil {
		logger.Fatalf("ledger service error: %v", err)
	}
	ledgerHandler, err := traininginterfaces.NewLedgerHandler(ledgerService, auditRepo, logger)
	if err != nil {
		logger.Fatalf("ledger handler error: %v", err)
	}

	pricing, err := settlementpricing.Load(cfg.PricingFile)
	if err != nil {
		logger.Fatalf("pricing error: %v", err)
	}
	calculator, err := settlement.NewCalculator(pricing)
	if err != nil {
		logger.Fatalf("calculator error: %v", err)
	}
	roster, err := settlementroster.NewRosterReader(clientRepo, evaluationRepo)
	if err != nil {
		logger.Fatalf("roster reader error: %v", err)
	}
	settlementRepo := settlementrepo.NewSettlementRepository(db)
	settlementService, err := settlementapp.NewSettlementService(roster, settlementRepo, calculator, settlementapp.WithLocation(loc))
	if err != nil {
		logger.Fatalf("settlement service error: %v", err)
	}
	settlementHandler, err := settlementinterfaces.NewSettlementHandler(settlementService, auditRepo, logger)
	if err != nil {
		logger.Fatalf("settlement handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/clients/", ledgerHandler)
	mux.Handle("/api/v1/sessions/", ledgerHandler)
	mux.Handle("/api/v1/settlements", settlementHandler)
	mux.Handle("/api/v1/settlements/", settlementHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           loggingMiddleware(authMiddleware.Wrap(mux), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Printf("http listening on %s (pricing: block=%.2f deduction=%.2f vat=%.2f)",
		cfg.HTTPAddr, pricing.BlockPriceVATInclusive, pricing.EvaluationDeduction, pricing.VATRate)
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = eventing.NewEventID()
		}
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(eventing.WithCorrelationID(r.Context(), requestID))
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s request_id=%s", r.Method, r.URL.Path, resp.status, time.Since(start), requestID)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
