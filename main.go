package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/wesoda/anket/app"
	"github.com/wesoda/anket/config"
	"github.com/wesoda/anket/httpx"
	"github.com/wesoda/anket/log"
	"github.com/wesoda/anket/roles"
	"github.com/wesoda/anket/routes"
	"github.com/wesoda/anket/session"
	"github.com/wesoda/anket/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	st, err := store.Open(store.Config{
		URI:    cfg.MongoURI,
		DBName: cfg.DBName,
	})
	if err != nil {
		log.Fatal("main.store.open:", err)
	}
	defer st.Close()

	bearerServer := httpx.NewBearerServer(st, cfg)

	app := app.App{
		Store:        st,
		BearerServer: bearerServer,
		Sessions:     session.NewManager(),
		Admins:       roles.NewAllowlist(cfg.AdminEmails),
		Managers:     roles.NewAllowlist(cfg.ManagerEmails),
		Config:       cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:        cfg.Addr,
		Handler:     handler,
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		// no WriteTimeout: the events stream stays open indefinitely
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
