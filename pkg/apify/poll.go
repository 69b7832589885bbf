package apify

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultPollInterval  = 2 * time.Second
	defaultPollJitter    = 1 * time.Second
	defaultBackoffBase   = 1 * time.Second
	defaultBackoffCap    = 30 * time.Second
	defaultBackoffJitter = 500 * time.Millisecond
	defaultMaxWait       = 5 * time.Minute
)

// ErrBudgetExceeded is returned when the caller's overall wait budget runs
// out before the run reaches a terminal state. It is distinct from the run
// itself ending in TIMED-OUT (a RunTerminalError).
var ErrBudgetExceeded = eris.New("apify: poll budget exceeded")

// RunTerminalError is returned when a run ends in a terminal failure state.
type RunTerminalError struct {
	RunID  string
	Status string
}

func (e *RunTerminalError) Error() string {
	return fmt.Sprintf("apify: run %s ended %s", e.RunID, e.Status)
}

// PollOption configures polling behavior.
type PollOption func(*pollConfig)

type pollConfig struct {
	interval      time.Duration
	jitter        time.Duration
	backoffBase   time.Duration
	backoffCap    time.Duration
	backoffJitter time.Duration
	maxWait       time.Duration
}

func defaultPollConfig() pollConfig {
	return pollConfig{
		interval:      defaultPollInterval,
		jitter:        defaultPollJitter,
		backoffBase:   defaultBackoffBase,
		backoffCap:    defaultBackoffCap,
		backoffJitter: defaultBackoffJitter,
		maxWait:       defaultMaxWait,
	}
}

// WithPollInterval overrides the base delay between status checks.
func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.interval = d
	}
}

// WithPollJitter overrides the random jitter added to each poll delay.
func WithPollJitter(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.jitter = d
	}
}

// WithBackoffBase overrides the base delay for 429 backoff.
func WithBackoffBase(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.backoffBase = d
	}
}

// WithBackoffCap overrides the maximum 429 backoff delay.
func WithBackoffCap(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.backoffCap = d
	}
}

// WithBackoffJitter overrides the random jitter added to each 429 backoff.
func WithBackoffJitter(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.backoffJitter = d
	}
}

// WithMaxWait overrides the overall wall-clock budget for the poll.
func WithMaxWait(d time.Duration) PollOption {
	return func(c *pollConfig) {
		c.maxWait = d
	}
}

// backoffDelay computes the 429 backoff for the given attempt:
// base * 2^attempt, capped, plus random jitter.
func backoffDelay(attempt int, cfg pollConfig) time.Duration {
	delay := cfg.backoffBase << attempt
	if delay > cfg.backoffCap || delay <= 0 {
		delay = cfg.backoffCap
	}
	if cfg.backoffJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(cfg.backoffJitter)))
	}
	return delay
}

// pollDelay computes the delay before the next status check while the run
// is still queued or running.
func pollDelay(cfg pollConfig) time.Duration {
	delay := cfg.interval
	if cfg.jitter > 0 {
		delay += time.Duration(rand.Int63n(int64(cfg.jitter)))
	}
	return delay
}

func isRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

// PollRun polls a run until it reaches a terminal state, then fetches and
// returns its dataset items.
//
// Rate-limit responses (429) on the status check are retried in place with
// exponential backoff; the attempt counter resets after every successful
// check. Any other API failure aborts the poll. Runs ending FAILED, ABORTED,
// or TIMED-OUT yield a RunTerminalError; exhausting the overall wait budget
// yields ErrBudgetExceeded.
func PollRun(ctx context.Context, client Client, runID string, opts ...PollOption) ([]map[string]any, error) {
	cfg := defaultPollConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	deadline := time.Now().Add(cfg.maxWait)
	attempt := 0

	for {
		run, err := client.GetRun(ctx, runID)
		if err != nil {
			if !isRateLimited(err) {
				return nil, eris.Wrap(err, fmt.Sprintf("apify: poll run %s", runID))
			}
			delay := backoffDelay(attempt, cfg)
			attempt++
			if err := sleepWithin(ctx, delay, deadline); err != nil {
				return nil, err
			}
			continue
		}
		attempt = 0

		switch run.Status {
		case RunSucceeded:
			items, err := client.DatasetItems(ctx, run.DefaultDatasetID)
			if err != nil {
				return nil, eris.Wrap(err, fmt.Sprintf("apify: fetch results of run %s", runID))
			}
			return items, nil
		case RunFailed, RunAborted, RunTimedOut:
			return nil, &RunTerminalError{RunID: runID, Status: run.Status}
		}

		if err := sleepWithin(ctx, pollDelay(cfg), deadline); err != nil {
			return nil, err
		}
	}
}

// sleepWithin sleeps for d unless the context is cancelled or the overall
// deadline would be crossed first.
func sleepWithin(ctx context.Context, d time.Duration, deadline time.Time) error {
	if time.Now().Add(d).After(deadline) {
		return ErrBudgetExceeded
	}
	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "apify: poll cancelled")
	case <-time.After(d):
		return nil
	}
}
