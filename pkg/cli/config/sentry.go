package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/leakwatch/leakwatch/pkg/service/diag"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// Sentry holds CLI flags for forwarding faults to Sentry
type Sentry struct {
	dsn         string `masq:"secret"`
	environment string
	release     string
	ratePerMin  float64
}

func (x *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN; faults are forwarded to Sentry when set",
			Category:    "Sentry",
			Sources:     cli.EnvVars("LEAKWATCH_SENTRY_DSN"),
			Destination: &x.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Category:    "Sentry",
			Sources:     cli.EnvVars("LEAKWATCH_SENTRY_ENV"),
			Destination: &x.environment,
		},
		&cli.StringFlag{
			Name:        "sentry-release",
			Usage:       "Sentry release",
			Category:    "Sentry",
			Sources:     cli.EnvVars("LEAKWATCH_SENTRY_RELEASE"),
			Destination: &x.release,
		},
		&cli.FloatFlag{
			Name:        "sentry-rate",
			Usage:       "Maximum events per minute sent to Sentry",
			Category:    "Sentry",
			Value:       60,
			Sources:     cli.EnvVars("LEAKWATCH_SENTRY_RATE"),
			Destination: &x.ratePerMin,
		},
	}
}

func (x Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", x.dsn != ""),
		slog.String("env", x.environment),
		slog.Float64("rate_per_min", x.ratePerMin),
	)
}

// IsConfigured reports whether a DSN is set
func (x *Sentry) IsConfigured() bool {
	return x.dsn != ""
}

// Configure initializes the Sentry client and returns a throttled diagnostic channel and
// a flush function. It returns a nil channel when Sentry is not configured.
func (x *Sentry) Configure() (diag.Channel, func(), error) {
	if !x.IsConfigured() {
		return nil, func() {}, nil
	}
	if x.ratePerMin <= 0 {
		return nil, nil, goerr.Wrap(ErrInvalidConfig, "sentry rate must be positive", goerr.V(FieldKey, "sentry-rate"), goerr.V(ValueKey, x.ratePerMin))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         x.dsn,
		Environment: x.environment,
		Release:     x.release,
	}); err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize sentry")
	}
	logging.Default().Info("Sentry enabled", "sentry", x)

	flush := func() {
		sentry.Flush(2 * time.Second)
	}
	ch := diag.Throttle(diag.NewSentryChannel(sentry.CurrentHub()), perMinute(x.ratePerMin), burstOf(x.ratePerMin))
	return ch, flush, nil
}

func perMinute(n float64) rate.Limit {
	return rate.Limit(n / 60)
}

func burstOf(n float64) int {
	if n < 1 {
		return 1
	}
	return int(n)
}
