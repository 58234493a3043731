package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/spewlabs/explainer/internal/jobs"
	"github.com/spewlabs/explainer/internal/logger"
)

// Listener runs the polling loop: each cycle fetches new mentions, hands
// them to the action handler, and gives the job tracker one poll.
type Listener struct {
	client   Client
	handler  *ActionHandler
	tracker  *jobs.Tracker
	interval time.Duration
	log      logger.Logger

	sinceID string
}

// NewListener creates a Listener. interval values <= 0 default to one
// minute; log may be nil.
func NewListener(client Client, handler *ActionHandler, tracker *jobs.Tracker, interval time.Duration, log logger.Logger) *Listener {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Listener{
		client:   client,
		handler:  handler,
		tracker:  tracker,
		interval: interval,
		log:      logger.OrNoOp(log),
	}
}

// Run polls until the context is canceled. An error in one cycle is
// logged and the loop continues; only cancellation stops it.
func (l *Listener) Run(ctx context.Context) error {
	l.log.LogInfo(fmt.Sprintf("mention listener started, polling every %s", l.interval))

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	// First cycle runs immediately rather than waiting one interval.
	l.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			l.log.LogInfo("mention listener stopping")
			return ctx.Err()
		case <-ticker.C:
			l.cycle(ctx)
		}
	}
}

// cycle processes one polling pass: new mentions first, then one tracker
// poll for finished or expired jobs.
func (l *Listener) cycle(ctx context.Context) {
	mentions, err := l.client.MentionsSince(ctx, l.sinceID)
	if err != nil {
		l.log.LogError(fmt.Sprintf("mention fetch failed: %v", err))
	} else {
		for _, m := range mentions {
			l.handler.HandleMention(ctx, m)
			l.sinceID = m.ID
		}
	}

	if err := l.tracker.PollOnce(ctx); err != nil && ctx.Err() == nil {
		l.log.LogError(fmt.Sprintf("job poll failed: %v", err))
	}
}
