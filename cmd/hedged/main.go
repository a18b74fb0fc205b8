// Command hedged runs the Kollider hedging daemon. Grounded on
// cmd/lncli/main.go's cli.NewApp assembly and lnd.go's "real main in a
// nested function" pattern, so defers run on a graceful exit.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/btcsuite/btclog"
	"github.com/urfave/cli"

	"github.com/kollider-hedge/hedged/config"
	"github.com/kollider-hedge/hedged/internal/build"
	"github.com/kollider-hedge/hedged/httpapi/swagger"
	"github.com/kollider-hedge/hedged/kollider"
	"github.com/kollider-hedge/hedged/store"
	"github.com/kollider-hedge/hedged/supervisor"
)

var mainLog = build.NewSubLogger("MAIN")

func main() {
	app := cli.NewApp()
	app.Name = "hedged"
	app.Usage = "Kollider hedging daemon"
	app.Commands = []cli.Command{
		serveCommand,
		swaggerCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var serveCommand = cli.Command{
	Name:  "serve",
	Usage: "run the hedging daemon",
	Flags: config.Flags,
	Action: func(ctx *cli.Context) error {
		return serveMain(config.FromCliContext(ctx))
	},
}

var swaggerCommand = cli.Command{
	Name:  "swagger",
	Usage: "emit the OpenAPI document for the HTTP surface",
	Action: func(ctx *cli.Context) error {
		return json.NewEncoder(os.Stdout).Encode(swagger.Document())
	},
}

// serveMain is the "real" entry point for the serve command, nested so
// defers still run on a graceful shutdown signal (the same reason lnd.go
// separates lndMain from main).
func serveMain(cfg config.Config) error {
	if level, ok := btclog.LevelFromString(cfg.DebugLevel); ok {
		build.SetLevel(level)
	} else {
		return fmt.Errorf("invalid debuglevel %q", cfg.DebugLevel)
	}

	mainLog.Infof("starting hedged on %s:%d", cfg.Host, cfg.Port)

	if cfg.PostgresDSN == "" {
		return fmt.Errorf("a postgres DSN is required (--postgres or KOLLIDER_HEDGE_POSTGRES)")
	}

	log, err := store.Open(cfg.PostgresDSN)
	if err != nil {
		return fmt.Errorf("failed to open update log: %w", err)
	}
	defer log.Close()

	metricsAddr := ""
	if cfg.MetricsPort != 0 {
		metricsAddr = net.JoinHostPort("", strconv.Itoa(cfg.MetricsPort))
	}

	sv := supervisor.New(supervisor.Config{
		HedgeConfig:  cfg.HedgeConfig(),
		Log:          log,
		ExchangeAddr: cfg.ExchangeAddr,
		Credentials: kollider.Credentials{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
			Password:  cfg.APIPassword,
		},
		HTTPAddr:    net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		MetricsAddr: metricsAddr,
		OnRestart: func(attempt int) {
			mainLog.Warnf("supervisor restarting task group (attempt %d)", attempt)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		mainLog.Infof("received shutdown signal")
		cancel()
	}()

	return sv.Run(ctx)
}
