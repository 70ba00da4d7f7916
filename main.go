package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/playtwentyone/blackjacksrv/config"
	"github.com/playtwentyone/blackjacksrv/server"
)

type CLI struct {
	Config string `short:"c" help:"Path to the HCL configuration file" default:"blackjack.hcl"`
	Addr   string `short:"a" help:"Listen address, overrides the configuration" default:""`
	Debug  bool   `short:"d" help:"Dump every domain event to stdout"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		log.Fatal("failed to load configuration", "path", cli.Config, "error", err)
	}
	if cli.Debug {
		cfg.Server.Debug = true
		cfg.Server.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "path", cli.Config, "error", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if level, err := log.ParseLevel(cfg.Server.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		log.Fatal("failed to build server", "error", err)
	}

	addr := cfg.ListenAddress()
	if cli.Addr != "" {
		addr = cli.Addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return srv.Start(addr)
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return srv.Shutdown(context.Background())
	})

	if err := group.Wait(); err != nil {
		log.Fatal("server error", "error", err)
	}

	kctx.Exit(0)
}
