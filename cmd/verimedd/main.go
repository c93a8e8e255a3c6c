package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verimed/verimed/config"
	"github.com/verimed/verimed/observability"
	"github.com/verimed/verimed/ocr"
	"github.com/verimed/verimed/ocr/tesseract"
	"github.com/verimed/verimed/pipeline"
	"github.com/verimed/verimed/registry"
	"github.com/verimed/verimed/server"
	"github.com/verimed/verimed/store"
	"github.com/verimed/verimed/verify"
)

func main() {
	cfg := config.Load()
	logger := observability.NewStdLogger()

	sources := buildSources(cfg, logger)
	aggregator := registry.NewAggregator(sources,
		registry.WithTimeout(cfg.RegistryTimeout),
		registry.WithLogger(logger))

	arbiter := ocr.NewArbiter(
		[]ocr.Engine{tesseract.New()},
		ocr.WithLogger(logger),
		ocr.WithInputOptions(
			ocr.WithLanguages(cfg.OCRLanguages...),
			ocr.WithDPI(cfg.OCRDPI),
		),
	)

	pipeOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	var srvOpts []server.Option
	if cfg.MySQLDSN != "" {
		db := store.MustMySQL(cfg.MySQLDSN)
		st, err := store.New(db)
		if err != nil {
			log.Fatalf("store: %v", err)
		}
		pipeOpts = append(pipeOpts, pipeline.WithAuditor(st))
		srvOpts = append(srvOpts, server.WithAuditLog(st))
	}

	p := pipeline.New(arbiter, verify.NewEngine(aggregator, verify.WithLogger(logger)), pipeOpts...)
	router := server.New(p, logger, srvOpts...)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("medicine verifier listening on :%s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutCtx)
}

// buildSources assembles the registry sources, wrapping each in the redis
// cache when one is configured. DrugBank joins only when a key is present.
func buildSources(cfg config.Config, logger observability.Logger) []registry.Source {
	sources := []registry.Source{
		registry.NewOpenFDA(cfg.OpenFDAEndpoint),
		registry.NewRxNorm(cfg.RxNormEndpoint),
	}
	if cfg.DrugBankAPIKey != "" {
		sources = append(sources, registry.NewDrugBank(cfg.DrugBankEndpoint, cfg.DrugBankAPIKey))
	}

	if cfg.RedisURL == "" {
		return sources
	}
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	rdb := redis.NewClient(opt)
	cached := make([]registry.Source, len(sources))
	for i, s := range sources {
		cached[i] = registry.NewCachedSource(s, rdb,
			registry.WithTTL(cfg.CacheTTL),
			registry.WithCacheLogger(logger))
	}
	return cached
}
