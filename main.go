package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"p9e.in/towerpro/config"
	"p9e.in/towerpro/handlers"
	"p9e.in/towerpro/middleware"
	"p9e.in/towerpro/pkg/attachments"
	"p9e.in/towerpro/pkg/blob"
	"p9e.in/towerpro/pkg/drafts"
	"p9e.in/towerpro/pkg/events"
	"p9e.in/towerpro/pkg/store"
	"p9e.in/towerpro/pkg/wizard"
	"p9e.in/towerpro/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {

	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	log := config.GetLogger()
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("could not load configuration")
	}
	if err := config.ConfigureLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.WithError(err).Fatal("could not configure logger")
	}
	middleware.SetSigningKey(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		docs   store.DocumentStore = store.NewMemoryStore()
		roster handlers.Roster     = handlers.StaticRoster(nil)
	)
	if cfg.DBDSN != "" {
		db, err := config.Connect(cfg)
		if err != nil {
			log.WithError(err).Fatal("could not connect to database")
		}
		roster = handlers.NewGormRoster(db)
		if cfg.DocStore == "postgres" {
			docs = store.NewPostgresStore(db)
		}
	}
	if rdb := config.ConnectRedis(ctx, cfg); rdb != nil {
		defer rdb.Close()
		docs = store.NewCachedStore(docs, store.NewRedisCache(rdb), log)
	}

	blobs, err := blob.New(ctx, cfg.Blob())
	if err != nil {
		log.WithError(err).Fatal("could not initialise photo storage")
	}

	var publisher events.Publisher = events.LogPublisher{Log: log}
	if cfg.PubSubProject != "" && cfg.PubSubTopic != "" {
		ps, err := events.NewPubSubPublisher(ctx, cfg.PubSubProject, cfg.PubSubTopic, cfg.PubSubCredentialsJSON)
		if err != nil {
			log.WithError(err).Warn("pubsub unavailable, completion events go to the log")
		} else {
			defer ps.Close()
			publisher = ps
		}
	}

	wizards := wizard.NewManager(docs, drafts.NewPersister(docs, publisher, log), attachments.NewUploader(blobs, log), log)

	app := routes.App{
		Reports: handlers.NewReportHandler(wizards, docs, roster, log),
		Roster:  roster,
		Log:     log,
	}
	if cfg.BlobStore == string(blob.BackendLocal) {
		app.UploadDir = cfg.UploadDir
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           enableCORS(routes.RegisterRoutes(app)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	wizards.Close()
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Required CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		// Handle preflight (OPTIONS)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
