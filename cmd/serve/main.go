// Command serve serves Craft environments over websockets at /v1/ws.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samuelfneumann/craft2d/environment/craft"
	"github.com/samuelfneumann/craft2d/transport/ws"
)

func main() {
	var (
		addr     = flag.String("addr", ":8080", "http listen address")
		world    = flag.String("world", "basic", "built-in world name or world config path")
		discount = flag.Float64("discount", 0.99, "discount of every environment")
		limit    = flag.Int("limit", 0, "step limit per episode (0 for none)")
		seed     = flag.Uint64("seed", 1, "base random seed of the environments")
	)
	flag.Parse()

	if err := run(*addr, *world, *discount, *limit, *seed); err != nil {
		slog.Error("serve", "error", err)
		os.Exit(1)
	}
}

func run(addr, world string, discount float64, limit int,
	seed uint64) error {
	c, err := craft.LoadWorld(world)
	if err != nil {
		return err
	}
	s, err := ws.NewServer(c, discount, limit, seed, slog.Default())
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", s.Handler())
	srv := &http.Server{Addr: addr, Handler: mux,
		ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(),
			5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()

	slog.Info("serving", "addr", addr, "world", c.Name)
	if err := srv.ListenAndServe(); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("server stopped")
	return nil
}
