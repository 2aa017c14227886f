package diag

import (
	"context"
	"sort"

	"github.com/getsentry/sentry-go"
	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type sentryChannel struct {
	hub *sentry.Hub
}

// NewSentryChannel sends records as Sentry events through a clone of hub
func NewSentryChannel(hub *sentry.Hub) Channel {
	return &sentryChannel{hub: hub}
}

func (x *sentryChannel) Name() string { return "sentry" }

func (x *sentryChannel) Deliver(ctx context.Context, record *model.FaultRecord) error {
	if x.hub == nil || x.hub.Client() == nil {
		return goerr.New("sentry client is not configured")
	}

	localHub := x.hub.Clone()
	localHub.CaptureEvent(newSentryEvent(record))
	return nil
}

func sentryLevel(s model.Severity) sentry.Level {
	switch s {
	case model.SeverityDebug:
		return sentry.LevelDebug
	case model.SeverityInfo:
		return sentry.LevelInfo
	case model.SeverityWarning:
		return sentry.LevelWarning
	case model.SeverityFatal:
		return sentry.LevelFatal
	default:
		return sentry.LevelError
	}
}

func newSentryEvent(record *model.FaultRecord) *sentry.Event {
	event := sentry.NewEvent()
	event.Level = sentryLevel(record.Severity)
	event.Message = record.Message
	event.Timestamp = record.CreatedAt

	kind := record.Kind
	if kind == "" {
		kind = "diagnostic"
	}
	event.Exception = []sentry.Exception{{
		Type:  kind,
		Value: record.Message,
	}}

	event.Tags = map[string]string{
		"record_id": string(record.ID),
		"kind":      kind,
	}
	keys := make([]string, 0, len(record.Payload))
	for k := range record.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	extra := make(map[string]any, len(keys))
	for _, k := range keys {
		extra[k] = record.Payload[k]
	}
	event.Extra = extra

	event.Fingerprint = []string{"{{ default }}", "kind: " + kind}
	return event
}
