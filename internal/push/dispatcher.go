package push

import (
	"context"
	"errors"
	"time"

	"githubPushRelay/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultTimeout     = 5 * time.Second
	DefaultConcurrency = 8
)

type Dispatcher struct {
	gateway     Gateway
	timeout     time.Duration
	concurrency int
	lg          *zap.Logger
}

func NewDispatcher(gateway Gateway, timeout time.Duration, concurrency int, lg *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Dispatcher{gateway: gateway, timeout: timeout, concurrency: concurrency, lg: lg}
}

// Dispatch sends the message derived from ev to every device, at most once
// each. Each attempt has its own timeout and cannot affect the others.
// Cancelling ctx does not abort attempts already issued.
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.NormalizedEvent, devices []string) model.BatchResult {
	if !ShouldNotify(ev) || len(devices) == 0 {
		return model.BatchResult{}
	}

	msg := BuildMessage(ev)
	base := context.WithoutCancel(ctx)
	outcomes := make([]model.Outcome, len(devices))

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, token := range devices {
		i, token := i, token
		g.Go(func() error {
			outcomes[i] = d.send(base, token, msg)
			return nil
		})
	}
	g.Wait()

	result := model.BatchResult{Outcomes: outcomes}
	d.lg.Info("dispatch_done",
		zap.String("event_type", string(ev.Type)),
		zap.String("repository", ev.RepositoryName),
		zap.Int("attempted", result.Attempted()),
		zap.Int("delivered", result.Delivered()),
		zap.Int("failed", result.Failed()),
	)
	return result
}

func (d *Dispatcher) send(parent context.Context, token string, msg Message) model.Outcome {
	ctx, cancel := context.WithTimeout(parent, d.timeout)
	defer cancel()

	start := time.Now()
	receipt, err := d.gateway.Push(ctx, token, msg)
	out := model.Outcome{
		Token:      token,
		StatusCode: receipt.StatusCode,
		Reason:     receipt.Reason,
		MessageID:  receipt.MessageID,
		Latency:    time.Since(start),
	}

	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)):
		out.Status = model.OutcomeTimeout
		out.Error = err.Error()
	case err != nil:
		out.Status = model.OutcomeTransportError
		out.Error = err.Error()
	case !receipt.Accepted():
		out.Status = model.OutcomeRejected
	default:
		out.Status = model.OutcomeDelivered
	}

	if !out.Delivered() {
		d.lg.Warn("push_failed",
			zap.String("token", redact(token)),
			zap.String("status", string(out.Status)),
			zap.Int("status_code", out.StatusCode),
			zap.String("reason", out.Reason),
			zap.String("error", out.Error),
		)
	}
	return out
}

// redact keeps enough of a token to correlate log lines.
func redact(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
