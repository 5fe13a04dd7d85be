// Package setup wires the client together for the serve and init commands.
package setup

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	clientconfig "github.com/cinderlabs/cinder-client/cmd/cinder-client/config"
	"github.com/cinderlabs/cinder-client/internal/backend"
	"github.com/cinderlabs/cinder-client/internal/burn"
	"github.com/cinderlabs/cinder-client/internal/catalog"
	"github.com/cinderlabs/cinder-client/internal/constants"
	"github.com/cinderlabs/cinder-client/internal/dashboard"
	clienthttp "github.com/cinderlabs/cinder-client/internal/http"
	"github.com/cinderlabs/cinder-client/internal/incinerator"
	"github.com/cinderlabs/cinder-client/internal/keystore"
	"github.com/cinderlabs/cinder-client/internal/metrics"
	"github.com/cinderlabs/cinder-client/internal/pairing"
	"github.com/cinderlabs/cinder-client/internal/poller"
	"github.com/cinderlabs/cinder-client/internal/slots"
	"github.com/cinderlabs/cinder-client/internal/voting"
	"github.com/cinderlabs/cinder-client/internal/wallet"
)

type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// Run serves the local API until ctx is cancelled.
func Run(ctx context.Context, build BuildInfo) error {
	log.Info(constants.AppName,
		"version", build.Version,
		"commit", build.Commit,
		"build_date", build.BuildDate,
	)

	// ---- Config
	cfg, err := clientconfig.Load()
	if err != nil {
		return errors.Wrap(err, "failed to parse config")
	}
	minStake, err := cfg.MinStake()
	if err != nil {
		return err
	}

	// ---- Keystore
	store, err := keystore.NewStore()
	if err != nil {
		return err
	}
	if !store.Exists() {
		return keystore.ErrNotInitialized
	}
	pw, err := keystore.PromptPassphrase("Keystore passphrase: ")
	if err != nil {
		return err
	}
	secrets, err := store.Load(pw)
	keystore.ZeroBytes(pw)
	if err != nil {
		return err
	}
	defer keystore.ZeroBytes(secrets.SignerSeed)

	memoKey, err := secrets.MemoKeyBytes()
	if err != nil {
		return err
	}

	// ---- Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New()
	m.Register(registry)

	// ---- Backend + wallet session
	be := backend.NewClient(cfg.ClientSettings.BackendURL, nil)
	session, err := wallet.Connect(ctx, walletConfig(cfg, secrets), be)
	if err != nil {
		return err
	}
	account := session.Actor()

	// ---- Services
	alloc, err := slots.New(cfg.Burn.SlotCount)
	if err != nil {
		return err
	}
	cat := catalog.New(be)
	dash := dashboard.New(account, be)

	burns := burn.New(burn.Config{
		AssetContract:       cfg.Contracts.Collection,
		IncineratorContract: cfg.Contracts.Incinerator,
		MemoKey:             memoKey,
	}, alloc, cat, session, be, m)
	incs := incinerator.NewService(incinerator.Config{
		TokenContract:       cfg.Contracts.Token,
		AssetContract:       cfg.Contracts.Collection,
		IncineratorContract: cfg.Contracts.Incinerator,
	}, session, be, m)
	votes := voting.NewService(voting.Config{
		TokenContract:   cfg.Contracts.Token,
		StakingContract: cfg.Contracts.Staking,
		MinStake:        minStake,
	}, session, be, m)

	alloc.OnChange(func(s []slots.Slot) {
		log.Info("slots changed", "occupied", occupied(s))
	})
	burns.OnChange(func(a burn.Attempt) {
		if a.State.Terminal() {
			log.Info("burn attempt finished", "slot", a.Slot, "state", string(a.State), "tx", a.TxID)
		}
	})

	// ---- HTTP server
	token, err := clienthttp.NewSessionToken()
	if err != nil {
		return errors.Wrap(err, "session token")
	}
	pairings := pairing.NewRegistry(token, pairing.DefaultTTL)

	handler := clienthttp.NewHandler(clienthttp.Deps{
		Account:      account,
		Version:      build.Version,
		Backend:      be,
		Catalog:      cat,
		Slots:        alloc,
		Burns:        burns,
		Incinerators: incs,
		Dashboard:    dash,
		Votes:        votes,
		Pairings:     pairings,
	})
	router := clienthttp.NewRouter(handler, clienthttp.RouterConfig{
		SessionToken:   token,
		AllowedOrigins: cfg.ClientSettings.AllowedOrigins,
		Gatherer:       registry,
	})

	stopPoller := poller.New("dashboard", cfg.PollInterval(), dash.Refresh, m).Start(ctx)
	defer stopPoller()

	addr := net.JoinHostPort(cfg.ClientSettings.LocalHost, cfg.ClientSettings.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	pairID, code, err := pairings.Issue()
	if err != nil {
		return errors.Wrap(err, "issue pairing code")
	}
	log.Info("local API ready",
		"addr", addr,
		"account", account,
		"pair_id", pairID,
		"pair_code", code,
	)

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			log.Error("HTTP server error", "error", err)
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	} else {
		log.Info("HTTP server gracefully stopped")
	}
	return nil
}
