package http

import (
	"context"
	"net/http"
	"time"
)

var srv *http.Server

func Serve(opts ...Option) error {
	engine, err := NewEngine(opts...)
	if err != nil {
		return err
	}
	srv = &http.Server{
		Addr:    engine.Address,
		Handler: engine,
	}

	engine.Logger.Infof("Local API Gateway server listening on %s", engine.Address)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return nil
}
