package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"privy/internal/audit"
	"privy/internal/auth"
	"privy/internal/budget"
	"privy/internal/compliance"
	"privy/internal/consent"
	"privy/internal/decision"
	"privy/internal/erasure"
	"privy/internal/masking"
	"privy/internal/platform/config"
	"privy/internal/platform/logger"
	"privy/internal/platform/metrics"
	"privy/internal/policy"
	"privy/internal/risk"
	"privy/internal/token"
	httptransport "privy/internal/transport/http"
	"privy/pkg/platform/tracer"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()
	trc := tracer.NewOTel()

	auditStore := audit.NewInMemoryStore()

	policies := policy.New()
	risks := risk.New(risk.WithThreshold(cfg.RiskThreshold))
	consents := consent.NewService(consent.NewInMemoryStore(),
		consent.WithLogger(log),
		consent.WithMetrics(m),
	)
	compliances := compliance.NewService(compliance.WithLogger(log))
	budgets := budget.NewService(
		budget.WithDefaultWindow(cfg.BudgetWindow),
		budget.WithLogger(log),
		budget.WithMetrics(m),
	)
	maskings := masking.NewService(
		masking.WithLogger(log),
		masking.WithMetrics(m),
	)
	tokens := token.NewService(token.NewHS256Signer(cfg.JWTSigningKey),
		token.WithDefaultTTL(cfg.TokenTTL),
		token.WithLogger(log),
		token.WithMetrics(m),
	)
	erasures := erasure.NewService(auditStore,
		erasure.WithLogger(log),
		erasure.WithMetrics(m),
		erasure.WithTracer(trc),
	)
	decisions := decision.NewService(
		policies,
		consents,
		risks,
		budgets,
		compliances,
		erasures,
		auditStore,
		decision.WithLogger(log),
		decision.WithMetrics(m),
		decision.WithTracer(trc),
	)
	auths := auth.NewService(cfg.JWTSigningKey,
		auth.WithLogger(log),
		auth.WithTokenTTL(cfg.AuthTokenTTL),
	)

	handler := httptransport.NewHandler(httptransport.Services{
		Auth:       auths,
		Decision:   decisions,
		Consent:    consents,
		Masking:    maskings,
		Token:      tokens,
		Erasure:    erasures,
		Budget:     budgets,
		Compliance: compliances,
		Audit:      auditStore,
	}, log, m)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httptransport.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
