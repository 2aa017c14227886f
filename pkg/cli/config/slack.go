package config

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/leakwatch/leakwatch/pkg/service/diag"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for posting faults to a Slack incoming webhook
type Slack struct {
	webhookURL string `masq:"secret"`
	ratePerMin float64
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL; faults are posted when set",
			Category:    "Slack",
			Sources:     cli.EnvVars("LEAKWATCH_SLACK_WEBHOOK_URL"),
			Destination: &x.webhookURL,
		},
		&cli.FloatFlag{
			Name:        "slack-rate",
			Usage:       "Maximum messages per minute posted to Slack",
			Category:    "Slack",
			Value:       10,
			Sources:     cli.EnvVars("LEAKWATCH_SLACK_RATE"),
			Destination: &x.ratePerMin,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("webhook-url.len", len(x.webhookURL)),
		slog.Float64("rate_per_min", x.ratePerMin),
	)
}

// IsConfigured reports whether a webhook URL is set
func (x *Slack) IsConfigured() bool {
	return x.webhookURL != ""
}

// Configure returns a throttled Slack channel, or nil when Slack is not configured
func (x *Slack) Configure() (diag.Channel, error) {
	if !x.IsConfigured() {
		return nil, nil
	}

	u, err := url.Parse(x.webhookURL)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return nil, goerr.Wrap(ErrInvalidConfig, "slack webhook URL must be an https URL", goerr.V(FieldKey, "slack-webhook-url"))
	}
	if x.ratePerMin <= 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "slack rate must be positive", goerr.V(FieldKey, "slack-rate"), goerr.V(ValueKey, x.ratePerMin))
	}

	logging.Default().Info("Slack notification enabled", "slack", x)
	client := &http.Client{Timeout: 10 * time.Second}
	return diag.Throttle(diag.NewSlackChannel(x.webhookURL, client), perMinute(x.ratePerMin), burstOf(x.ratePerMin)), nil
}
