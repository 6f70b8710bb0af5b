package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"equilex/internal/platform/config"
	"equilex/internal/platform/logger"
	phttp "equilex/internal/platform/net/http"
	"equilex/internal/platform/net/middleware"
	"equilex/internal/platform/store"

	"equilex/internal/services/api"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("EQUILEX_API_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	// bring up logging early
	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if pgCfg.MayBool("ENABLED", true) {
		var err error
		st, err = store.Open(ctx, store.Config{
			AppName: "equilex-api",
			PG: store.PGConfig{
				Enabled:     true,
				URL:         pgCfg.MustString("DBURL"),
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
			},
		}, store.WithLogger(*l))
		if err != nil {
			l.Panic().Err(err).Msg("store.Open failed")
		}
		defer func() {
			if err := st.Close(context.Background()); err != nil {
				l.Error().Err(err).Msg("failed to close store")
			}
		}()
	}

	r := phttp.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.RecoverJSON(),
		middleware.AccessLogZerolog(middleware.AccessLogOptions{
			Slow: apiCfg.MayDuration("SLOW_REQUEST", 2*time.Second),
		}),
		middleware.CORS(middleware.CORSOptions{
			AllowedOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
		}),
	)

	api.Mount(r, api.Options{
		Config: root,
		Store:  st,
	})

	srv := phttp.NewServer(phttp.ServerOptions{
		Addr:    apiCfg.MustPort("PORT"),
		Handler: phttp.AsHandler(r),
	})

	if err := srv.Run(ctx, apiCfg.MayDuration("SHUTDOWN_GRACE", 10*time.Second)); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
