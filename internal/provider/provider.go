// Package provider defines the capability interfaces wrapping external
// contact-lookup sources, and the shared result and credit types.
package provider

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Kind identifies a provider capability for credit accounting and result
// attribution.
type Kind string

const (
	KindFinder       Kind = "finder"
	KindMatch        Kind = "match"
	KindVerifier     Kind = "verifier"
	KindScraper      Kind = "scraper"
	KindPatternGuess Kind = "pattern_guess"
)

// VerifyStatus is the discrete vocabulary returned by email verifiers.
type VerifyStatus string

const (
	StatusValid      VerifyStatus = "valid"
	StatusInvalid    VerifyStatus = "invalid"
	StatusAcceptAll  VerifyStatus = "accept_all"
	StatusWebmail    VerifyStatus = "webmail"
	StatusDisposable VerifyStatus = "disposable"
	StatusUnknown    VerifyStatus = "unknown"
)

// ConfidenceForStatus maps a verify status to a 0-100 confidence score.
// Unrecognized statuses map to 50, same as unknown.
func ConfidenceForStatus(status VerifyStatus) int {
	switch status {
	case StatusValid:
		return 100
	case StatusWebmail:
		return 90
	case StatusAcceptAll:
		return 80
	case StatusUnknown:
		return 50
	case StatusDisposable:
		return 10
	case StatusInvalid:
		return 0
	default:
		return 50
	}
}

// Result is the uniform outcome of a single provider call. A zero Result
// means the provider had nothing (or failed softly).
type Result struct {
	Email     string       `json:"email,omitempty"`
	Score     int          `json:"score"`
	Kind      Kind         `json:"kind,omitempty"`
	Status    VerifyStatus `json:"status,omitempty"`
	RawStatus string       `json:"raw_status,omitempty"`
	Verified  bool         `json:"verified"`
}

// ErrRateLimited signals an HTTP 429 from the underlying provider. Adapters
// surface it so the caller can apply its own bounded retry; every other
// transport failure is converted to an empty Result.
var ErrRateLimited = eris.New("provider: rate limited")

// Finder looks up an email address by name and domain.
type Finder interface {
	FindByName(ctx context.Context, firstName, lastName, domain string) (Result, error)
}

// Matcher enriches a person identity into an email address.
type Matcher interface {
	MatchByIdentity(ctx context.Context, firstName, lastName, orgName, domain string) (Result, error)
}

// Verifier checks the deliverability of a candidate address.
type Verifier interface {
	Verify(ctx context.Context, email string) (Result, error)
}

// ContactQuery describes a company-level contact search.
type ContactQuery struct {
	CompanyName string
	Domain      string
	Roles       []string
	// Leadership switches the query framing to executive/leadership titles.
	Leadership bool
}

// ContactSearcher discovers people at a company via a scraping-style source.
type ContactSearcher interface {
	SearchContacts(ctx context.Context, q ContactQuery) ([]model.RawRecord, error)
}
