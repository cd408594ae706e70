package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/audithq/safety-audit/ai"
	"github.com/audithq/safety-audit/app"
	"github.com/audithq/safety-audit/config"
	"github.com/audithq/safety-audit/database"
	"github.com/audithq/safety-audit/httpx"
	"github.com/audithq/safety-audit/log"
	"github.com/audithq/safety-audit/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	bearerServer := httpx.NewBearerServer(db, cfg)

	aiClient, err := ai.New(cfg.OpenAI)
	if err != nil {
		if !errors.Is(err, ai.ErrNotConfigured) {
			log.Fatal("main.ai:", err)
		}
		log.Warn("main.ai: no API key, recommendation endpoint disabled")
	}

	app := app.App{
		DB:           db,
		BearerServer: bearerServer,
		Config:       cfg,
		AI:           aiClient,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
