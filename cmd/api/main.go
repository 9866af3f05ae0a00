package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/expensetracker/internal/auth"
	"github.com/geocoder89/expensetracker/internal/cache"
	"github.com/geocoder89/expensetracker/internal/config"
	"github.com/geocoder89/expensetracker/internal/db"
	"github.com/geocoder89/expensetracker/internal/domain/expense"
	httpx "github.com/geocoder89/expensetracker/internal/http"
	"github.com/geocoder89/expensetracker/internal/http/handlers"
	"github.com/geocoder89/expensetracker/internal/observability"
	"github.com/geocoder89/expensetracker/internal/redisclient"
	"github.com/geocoder89/expensetracker/internal/repo/memory"
	"github.com/geocoder89/expensetracker/internal/repo/postgres"
	"github.com/geocoder89/expensetracker/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up; a missing JWT_SECRET stops us here
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	shutdownTracer, err := observability.InitTracer(context.Background(), observability.TracingConfig{
		ServiceName: observability.ServiceName,
		Env:         cfg.Env,
		Endpoint:    cfg.OTelEndpoint,
		SampleRatio: cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	var (
		users    service.UserStore
		expenses service.ExpenseStore
		checks   []handlers.Check
	)

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		pool, err := db.NewPool(context.Background(), cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		ctx, cancel := config.WithTimeout(30 * time.Second)
		err = db.Migrate(ctx, pool)
		cancel()
		if err != nil {
			log.Error("db migrate failed", "err", err)
			os.Exit(1)
		}

		users = postgres.NewUsersRepo(pool, prom)
		expenses = postgres.NewExpensesRepo(pool, prom)
		checks = append(checks, handlers.Check{Name: "postgres", Ping: pool.Ping})
	default:
		log.Warn("using in-memory storage; data is lost on restart")
		users = memory.NewUsersRepo()
		expenses = memory.NewExpensesRepo()
	}

	var store cache.Store = cache.New(cfg.ProfileCacheTTL)
	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		store = cache.NewRedis(rdb, cfg.ProfileCacheTTL)
		checks = append(checks, handlers.Check{Name: "redis", Ping: rdb.Ping})
	}

	tokens := auth.NewManager(cfg.JWTSecret)

	router := httpx.NewRouter(log, httpx.Deps{
		Config:   cfg,
		Accounts: service.NewAccounts(users, tokens, log),
		Expenses: service.NewExpenses(expenses, expense.NewSchema(), log),
		Tokens:   tokens,
		Users:    cache.NewUsers(users, store, prom, log),
		Prom:     prom,
		Gatherer: reg,
		Checks:   checks,
	})

	// server set up
	srv := httpx.Server(fmt.Sprintf(":%d", cfg.Port), router)

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
