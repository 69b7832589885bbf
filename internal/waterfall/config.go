package waterfall

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Policy tunes the waterfall stage behavior. Load one from YAML with
// LoadPolicy or start from DefaultPolicy.
type Policy struct {
	// AcceptConfidence is the minimum mapped confidence for accepting a
	// pattern-guess candidate.
	AcceptConfidence int `yaml:"accept_confidence"`

	// MaxPatternVerifications caps how many pattern candidates get a paid
	// verification call.
	MaxPatternVerifications int `yaml:"max_pattern_verifications"`

	// VerifyPacingMs is the delay between consecutive verification calls.
	VerifyPacingMs int `yaml:"verify_pacing_ms"`

	// FinderRetryDelayMs is the pause before the single retry after the
	// finder reports a rate limit.
	FinderRetryDelayMs int `yaml:"finder_retry_delay_ms"`

	// DefaultFinderConfidence is used when the finder returns an email
	// without a native score.
	DefaultFinderConfidence int `yaml:"default_finder_confidence"`

	// MatchVerifiedConfidence and MatchUnverifiedConfidence score results
	// from the people-match stage.
	MatchVerifiedConfidence   int `yaml:"match_verified_confidence"`
	MatchUnverifiedConfidence int `yaml:"match_unverified_confidence"`
}

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{
		AcceptConfidence:          50,
		MaxPatternVerifications:   2,
		VerifyPacingMs:            200,
		FinderRetryDelayMs:        2000,
		DefaultFinderConfidence:   80,
		MatchVerifiedConfidence:   95,
		MatchUnverifiedConfidence: 70,
	}
}

// LoadPolicy reads a waterfall policy from a YAML file. Missing fields fall
// back to the defaults.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, eris.Wrapf(err, "waterfall: read policy %s", path)
	}

	// The YAML has a top-level "waterfall" key.
	wrapper := struct {
		Waterfall Policy `yaml:"waterfall"`
	}{Waterfall: DefaultPolicy()}

	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Policy{}, eris.Wrap(err, "waterfall: parse policy")
	}

	p := wrapper.Waterfall
	defaults := DefaultPolicy()
	if p.AcceptConfidence <= 0 {
		p.AcceptConfidence = defaults.AcceptConfidence
	}
	if p.MaxPatternVerifications <= 0 {
		p.MaxPatternVerifications = defaults.MaxPatternVerifications
	}
	if p.DefaultFinderConfidence <= 0 {
		p.DefaultFinderConfidence = defaults.DefaultFinderConfidence
	}
	if p.MatchVerifiedConfidence <= 0 {
		p.MatchVerifiedConfidence = defaults.MatchVerifiedConfidence
	}
	if p.MatchUnverifiedConfidence <= 0 {
		p.MatchUnverifiedConfidence = defaults.MatchUnverifiedConfidence
	}
	return p, nil
}

// VerifyPacing returns the inter-verification delay as a duration.
func (p Policy) VerifyPacing() time.Duration {
	return time.Duration(p.VerifyPacingMs) * time.Millisecond
}

// FinderRetryDelay returns the finder 429 retry pause as a duration.
func (p Policy) FinderRetryDelay() time.Duration {
	return time.Duration(p.FinderRetryDelayMs) * time.Millisecond
}
