package waterfall

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/pattern"
	"github.com/sells-group/outreach-cli/internal/provider"
	"github.com/sells-group/outreach-cli/internal/resilience"
)

// Providers holds the optional capability implementations available to the
// executor. Any field may be nil; the corresponding stage is skipped.
type Providers struct {
	Finder   provider.Finder
	Matcher  provider.Matcher
	Verifier provider.Verifier
}

// Executor runs the resolution waterfall for a single request: finder,
// then people-match, then pattern synthesis with verification. The first
// stage that accepts wins; later stages never run.
type Executor struct {
	policy    Policy
	providers Providers
}

// NewExecutor creates a waterfall executor.
func NewExecutor(policy Policy, providers Providers) *Executor {
	return &Executor{
		policy:    policy,
		providers: providers,
	}
}

// Resolve runs the waterfall for one request. It returns an error only for
// invalid input or context cancellation; provider failures degrade to an
// empty, zero-confidence outcome.
func (e *Executor) Resolve(ctx context.Context, req Request) (*Outcome, error) {
	if req.FirstName == "" {
		return nil, ErrMissingName
	}
	if req.Domain == "" {
		return nil, ErrNoDomain
	}

	log := zap.L().With(
		zap.String("person", req.PersonName),
		zap.String("domain", req.Domain),
	)

	outcome := newOutcome()

	if e.providers.Finder != nil {
		if done := e.runFinder(ctx, req, outcome, log); done {
			return outcome, nil
		}
	}

	if e.providers.Matcher != nil {
		if done := e.runMatch(ctx, req, outcome, log); done {
			return outcome, nil
		}
	}

	if e.providers.Finder != nil && e.providers.Verifier != nil {
		if done := e.runPatternGuess(ctx, req, outcome, log); done {
			return outcome, nil
		}
	}

	log.Debug("waterfall exhausted without a result")
	return outcome, nil
}

// runFinder is stage 1. A rate-limited call is retried exactly once after a
// fixed pause; any other failure ends the stage.
func (e *Executor) runFinder(ctx context.Context, req Request, outcome *Outcome, log *zap.Logger) bool {
	retryCfg := resilience.RetryConfig{
		MaxAttempts:    2,
		InitialBackoff: e.policy.FinderRetryDelay(),
		Multiplier:     1,
		ShouldRetry: func(err error) bool {
			return errors.Is(err, provider.ErrRateLimited)
		},
		OnRetry: resilience.RetryLogger("finder", "find_by_name"),
	}

	res, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (provider.Result, error) {
		outcome.charge(provider.KindFinder)
		return e.providers.Finder.FindByName(ctx, req.FirstName, req.LastName, req.Domain)
	})
	if err != nil {
		log.Debug("finder stage gave up", zap.Error(err))
		return false
	}
	if res.Email == "" {
		return false
	}

	confidence := res.Score
	if confidence == 0 {
		confidence = e.policy.DefaultFinderConfidence
	}
	outcome.accept(res.Email, confidence, provider.KindFinder)
	log.Info("resolved via finder", zap.Int("confidence", confidence))
	return true
}

// runMatch is stage 2.
func (e *Executor) runMatch(ctx context.Context, req Request, outcome *Outcome, log *zap.Logger) bool {
	outcome.charge(provider.KindMatch)
	res, err := e.providers.Matcher.MatchByIdentity(ctx, req.FirstName, req.LastName, req.CompanyName, req.Domain)
	if err != nil || res.Email == "" {
		return false
	}

	confidence := e.policy.MatchUnverifiedConfidence
	if res.Verified {
		confidence = e.policy.MatchVerifiedConfidence
	}
	outcome.accept(res.Email, confidence, provider.KindMatch)
	log.Info("resolved via people match",
		zap.Int("confidence", confidence),
		zap.Bool("verified", res.Verified),
	)
	return true
}

// runPatternGuess is stage 3: synthesize candidates and verify the top few
// in rank order, with pacing between paid verification calls.
func (e *Executor) runPatternGuess(ctx context.Context, req Request, outcome *Outcome, log *zap.Logger) bool {
	candidates := pattern.Generate(req.FirstName, req.LastName, req.Domain)
	if len(candidates) > e.policy.MaxPatternVerifications {
		candidates = candidates[:e.policy.MaxPatternVerifications]
	}

	for i, cand := range candidates {
		if i > 0 {
			if err := sleep(ctx, e.policy.VerifyPacing()); err != nil {
				return false
			}
		}

		outcome.charge(provider.KindVerifier)
		res, err := e.providers.Verifier.Verify(ctx, cand.Address)
		if err != nil {
			continue
		}

		mapped := provider.ConfidenceForStatus(res.Status)
		if mapped < e.policy.AcceptConfidence {
			continue
		}
		if res.Status != provider.StatusValid && res.Status != provider.StatusAcceptAll {
			continue
		}

		confidence := res.Score
		if confidence == 0 {
			confidence = mapped
		}
		outcome.accept(cand.Address, confidence, provider.KindPatternGuess)
		log.Info("resolved via pattern guess",
			zap.Int("rank", cand.Rank),
			zap.String("status", string(res.Status)),
			zap.Int("confidence", confidence),
		)
		return true
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
