package diag

import (
	"context"

	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"golang.org/x/time/rate"
)

// Channel is one delivery target of the dispatcher
type Channel interface {
	Name() string
	Deliver(ctx context.Context, record *model.FaultRecord) error
}

type throttledChannel struct {
	Channel
	limiter *rate.Limiter
}

// Throttle wraps ch so that at most burst records are delivered at once and further records
// are admitted at limit per second. Records over the limit are skipped, not queued.
func Throttle(ch Channel, limit rate.Limit, burst int) Channel {
	return &throttledChannel{
		Channel: ch,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (x *throttledChannel) Deliver(ctx context.Context, record *model.FaultRecord) error {
	if !x.limiter.Allow() {
		logging.From(ctx).Debug("diagnostic record throttled",
			"channel", x.Name(),
			"record_id", record.ID,
		)
		return nil
	}
	return x.Channel.Deliver(ctx, record)
}
