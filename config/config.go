// Package config defines the daemon's CLI surface (component H): flags
// bound to spec.md §6's defaults, the API credentials, host, port, spread,
// leverage and postgres flags each overridable by a named environment
// variable, grounded on cmd/lncli/main.go's cli.StringFlag/cli.Int64Flag
// assembly (same urfave/cli major version).
package config

import (
	"github.com/urfave/cli"

	"github.com/kollider-hedge/hedged/ledger"
)

const (
	defaultHost          = "0.0.0.0"
	defaultPort          = 8081
	defaultSpreadPercent = 0.1
	defaultLeverage      = 100
	defaultMetricsPort   = 9090
)

// Flags is the full set of flags the "serve" command accepts. The flags
// spec.md §6 names carry its defaults and environment-variable overrides;
// exchange-addr, hedge-sym, hedge-pair, metrics-port and debuglevel have no
// environment variable and are set on the command line only.
var Flags = []cli.Flag{
	cli.StringFlag{
		Name:   "api-key",
		Usage:  "Kollider exchange API key",
		EnvVar: "KOLLIDER_API_KEY",
	},
	cli.StringFlag{
		Name:   "api-secret",
		Usage:  "Kollider exchange API secret",
		EnvVar: "KOLLIDER_API_SECRET",
	},
	cli.StringFlag{
		Name:   "api-password",
		Usage:  "Kollider exchange API password",
		EnvVar: "KOLLIDER_API_PASSWORD",
	},
	cli.StringFlag{
		Name:   "host",
		Value:  defaultHost,
		Usage:  "HTTP ingress bind host",
		EnvVar: "KOLLIDER_HEDGE_HOST",
	},
	cli.IntFlag{
		Name:   "port",
		Value:  defaultPort,
		Usage:  "HTTP ingress bind port",
		EnvVar: "KOLLIDER_HEDGE_PORT",
	},
	cli.Float64Flag{
		Name:   "spread-percent",
		Value:  defaultSpreadPercent,
		Usage:  "percentage spread applied to the current price when pricing an order",
		EnvVar: "KOLLIDER_HEDGE_SPREAD",
	},
	cli.Uint64Flag{
		Name:   "leverage",
		Value:  defaultLeverage,
		Usage:  "leverage used when opening hedge orders",
		EnvVar: "KOLLIDER_HEDGE_LEVERAGE",
	},
	cli.StringFlag{
		Name:   "postgres",
		Usage:  "Postgres connection DSN for the update log",
		EnvVar: "KOLLIDER_HEDGE_POSTGRES",
	},
	cli.StringFlag{
		Name:  "exchange-addr",
		Value: "wss://api.kollider.xyz/v1/ws",
		Usage: "Kollider exchange websocket endpoint",
	},
	cli.StringFlag{
		Name:  "hedge-sym",
		Value: "BTCUSD.PERP",
		Usage: "hedging symbol traded on the exchange",
	},
	cli.StringFlag{
		Name:  "hedge-pair",
		Value: ".BTCUSD",
		Usage: "index pair the ticker is read from",
	},
	cli.IntFlag{
		Name:  "metrics-port",
		Value: defaultMetricsPort,
		Usage: "internal Prometheus metrics listener port, 0 disables it",
	},
	cli.StringFlag{
		Name:  "debuglevel",
		Value: "info",
		Usage: "logging level for all subsystems: trace, debug, info, warn, error, critical",
	},
}

// Config is the fully-resolved runtime configuration for the "serve"
// command.
type Config struct {
	APIKey      string
	APISecret   string
	APIPassword string

	Host string
	Port int

	SpreadPercent float64
	Leverage      uint64

	PostgresDSN string

	ExchangeAddr string
	HedgeSym     string
	HedgePair    string

	MetricsPort int
	DebugLevel  string
}

// FromCliContext resolves a Config from a urfave/cli.Context populated by
// Flags (flags already fold in environment-variable overrides via EnvVar).
func FromCliContext(ctx *cli.Context) Config {
	return Config{
		APIKey:        ctx.String("api-key"),
		APISecret:     ctx.String("api-secret"),
		APIPassword:   ctx.String("api-password"),
		Host:          ctx.String("host"),
		Port:          ctx.Int("port"),
		SpreadPercent: ctx.Float64("spread-percent"),
		Leverage:      ctx.Uint64("leverage"),
		PostgresDSN:   ctx.String("postgres"),
		ExchangeAddr:  ctx.String("exchange-addr"),
		HedgeSym:      ctx.String("hedge-sym"),
		HedgePair:     ctx.String("hedge-pair"),
		MetricsPort:   ctx.Int("metrics-port"),
		DebugLevel:    ctx.String("debuglevel"),
	}
}

// HedgeConfig projects the subset of Config the ledger/engine need.
func (c Config) HedgeConfig() ledger.HedgeConfig {
	return ledger.HedgeConfig{
		HedgePair:     c.HedgePair,
		HedgeSym:      c.HedgeSym,
		SpreadPercent: c.SpreadPercent,
		HedgeLeverage: c.Leverage,
	}
}
