package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/albireox/Totoro/internal/audit"
	"github.com/albireox/Totoro/internal/auth"
	"github.com/albireox/Totoro/internal/cartpool"
	"github.com/albireox/Totoro/internal/config"
	"github.com/albireox/Totoro/internal/httpserver"
	"github.com/albireox/Totoro/internal/plugger"
	"github.com/albireox/Totoro/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	registry := cartpool.New(cfg.MangaCarts, cfg.ApogeeCarts, cfg.OfflineCarts)
	p := plugger.New(store.NewPGStore(db), registry, plugger.Params{
		NoPlugPriority:            cfg.NoPlugPriority,
		ForcePlugPriority:         cfg.ForcePlugPriority,
		VisibilityHalfWindowHours: cfg.VisibilityHalfWindowHours,
		OnlyVisiblePlates:         cfg.OnlyVisiblePlates,
	})

	pipeline := buildPipeline(cfg)

	var authMW func(http.Handler) http.Handler
	if cfg.JWTSecret != "" || !cfg.AllowAnon {
		authMW = auth.NewMiddleware([]byte(cfg.JWTSecret), cfg.AllowAnon)
	}

	server := httpserver.New(p, pipeline, authMW)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Router(),
	}

	go func() {
		log.Printf("Plugger service listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("plugger server error: %v", err)
		}
	}()

	waitForShutdown(httpServer)
}

func buildPipeline(cfg config.Config) *audit.Pipeline {
	var producer *audit.KafkaProducer
	var archiver *audit.S3Archiver

	if len(cfg.KafkaBrokers) > 0 {
		p, err := audit.NewKafkaProducer(audit.KafkaProducerConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		producer = p
	}
	if cfg.S3Bucket != "" {
		a, err := audit.NewS3Archiver(context.Background(), cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			log.Fatalf("s3 archiver: %v", err)
		}
		archiver = a
	}
	if producer == nil && archiver == nil {
		return nil
	}
	return audit.NewPipeline(producer, archiver)
}

func waitForShutdown(srv *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("plugger graceful shutdown: %v", err)
	}
}
