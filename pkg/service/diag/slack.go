package diag

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
)

type slackChannel struct {
	webhookURL string
	client     *http.Client
}

// NewSlackChannel posts records to a Slack incoming webhook
func NewSlackChannel(webhookURL string, client *http.Client) Channel {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &slackChannel{webhookURL: webhookURL, client: client}
}

func (x *slackChannel) Name() string { return "slack" }

func (x *slackChannel) Deliver(ctx context.Context, record *model.FaultRecord) error {
	if err := slack.PostWebhookCustomHTTPContext(ctx, x.webhookURL, x.client, newSlackMessage(record)); err != nil {
		return goerr.Wrap(err, "failed to post fault to slack", goerr.V("record_id", string(record.ID)))
	}
	return nil
}

func slackColor(s model.Severity) string {
	switch s {
	case model.SeverityFatal, model.SeverityError:
		return "danger"
	case model.SeverityWarning:
		return "warning"
	default:
		return "good"
	}
}

func newSlackMessage(record *model.FaultRecord) *slack.WebhookMessage {
	keys := make([]string, 0, len(record.Payload))
	for k := range record.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]slack.AttachmentField, 0, len(keys)+1)
	if record.Kind != "" {
		fields = append(fields, slack.AttachmentField{Title: "kind", Value: record.Kind, Short: true})
	}
	for _, k := range keys {
		fields = append(fields, slack.AttachmentField{Title: k, Value: record.Payload[k], Short: true})
	}

	return &slack.WebhookMessage{
		Text: "[" + string(record.Severity) + "] " + record.Message,
		Attachments: []slack.Attachment{{
			Color:  slackColor(record.Severity),
			Fields: fields,
			Footer: string(record.ID),
			Ts:     json.Number(strconv.FormatInt(record.CreatedAt.Unix(), 10)),
		}},
	}
}
