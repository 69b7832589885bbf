package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/apify"
	"github.com/sells-group/outreach-cli/pkg/apollo"
	"github.com/sells-group/outreach-cli/pkg/hunter"
)

// HunterFinder adapts the Hunter email-finder endpoint to the Finder
// capability.
type HunterFinder struct {
	client hunter.Client
}

// NewHunterFinder creates a Finder backed by Hunter.
func NewHunterFinder(client hunter.Client) *HunterFinder {
	return &HunterFinder{client: client}
}

func (f *HunterFinder) FindByName(ctx context.Context, firstName, lastName, domain string) (Result, error) {
	resp, err := f.client.FindEmail(ctx, hunter.FindRequest{
		Domain:    domain,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		return softFail(KindFinder, err, isHunterRateLimited)
	}
	return Result{
		Email: resp.Data.Email,
		Score: resp.Data.Score,
		Kind:  KindFinder,
	}, nil
}

// HunterVerifier adapts the Hunter email-verifier endpoint to the Verifier
// capability.
type HunterVerifier struct {
	client hunter.Client
}

// NewHunterVerifier creates a Verifier backed by Hunter.
func NewHunterVerifier(client hunter.Client) *HunterVerifier {
	return &HunterVerifier{client: client}
}

func (v *HunterVerifier) Verify(ctx context.Context, email string) (Result, error) {
	resp, err := v.client.VerifyEmail(ctx, email)
	if err != nil {
		return softFail(KindVerifier, err, isHunterRateLimited)
	}
	return Result{
		Email:     email,
		Score:     resp.Data.Score,
		Kind:      KindVerifier,
		Status:    VerifyStatus(resp.Data.Status),
		RawStatus: resp.Data.Status,
	}, nil
}

// ApolloMatcher adapts the Apollo people-match endpoint to the Matcher
// capability.
type ApolloMatcher struct {
	client apollo.Client
}

// NewApolloMatcher creates a Matcher backed by Apollo.
func NewApolloMatcher(client apollo.Client) *ApolloMatcher {
	return &ApolloMatcher{client: client}
}

func (m *ApolloMatcher) MatchByIdentity(ctx context.Context, firstName, lastName, orgName, domain string) (Result, error) {
	resp, err := m.client.MatchPerson(ctx, apollo.MatchRequest{
		FirstName:        firstName,
		LastName:         lastName,
		OrganizationName: orgName,
		Domain:           domain,
	})
	if err != nil {
		return softFail(KindMatch, err, isApolloRateLimited)
	}
	return Result{
		Email:     resp.Person.Email,
		Kind:      KindMatch,
		RawStatus: resp.Person.EmailStatus,
		Verified:  strings.EqualFold(resp.Person.EmailStatus, "verified"),
	}, nil
}

// ApifySearcher adapts an Apify scraping actor to the ContactSearcher
// capability. Each search starts a fresh run and polls it to completion.
type ApifySearcher struct {
	client   apify.Client
	actorID  string
	runOpts  apify.RunOptions
	pollOpts []apify.PollOption
}

// NewApifySearcher creates a ContactSearcher backed by an Apify actor.
func NewApifySearcher(client apify.Client, actorID string, runOpts apify.RunOptions, pollOpts ...apify.PollOption) *ApifySearcher {
	return &ApifySearcher{
		client:   client,
		actorID:  actorID,
		runOpts:  runOpts,
		pollOpts: pollOpts,
	}
}

func (s *ApifySearcher) SearchContacts(ctx context.Context, q ContactQuery) ([]model.RawRecord, error) {
	input := map[string]any{
		"companyName": q.CompanyName,
		"domain":      q.Domain,
		"roles":       q.Roles,
		// Single-slot concurrency and proxy rotation keep the actor from
		// getting the account rate-limited or banned by the target site.
		"maxConcurrency": 1,
		"proxyConfiguration": map[string]any{
			"useApifyProxy": true,
		},
	}
	if q.Leadership {
		input["roles"] = leadershipRoles
	}

	run, err := s.client.StartRun(ctx, s.actorID, input, s.runOpts)
	if err != nil {
		if isApifyRateLimited(err) {
			return nil, eris.Wrap(ErrRateLimited, "scraper: start run")
		}
		zap.L().Debug("scraper: start run failed", zap.Error(err))
		return nil, nil
	}

	items, err := apify.PollRun(ctx, s.client, run.ID, s.pollOpts...)
	if err != nil {
		// Terminal run failures and budget exhaustion read the same to the
		// caller as an empty result set.
		zap.L().Warn("scraper: run did not complete",
			zap.String("run_id", run.ID),
			zap.Error(err),
		)
		return nil, nil
	}

	records := make([]model.RawRecord, 0, len(items))
	for _, item := range items {
		records = append(records, model.RawRecord(item))
	}
	return records, nil
}

// leadershipRoles is the query framing for the second, leadership-focused
// search pass.
var leadershipRoles = []string{"CEO", "Founder", "President", "Owner", "Managing Partner"}

// softFail converts a provider transport error into an empty Result, except
// for rate-limit signals which are surfaced for caller-side retry.
func softFail(kind Kind, err error, rateLimited func(error) bool) (Result, error) {
	if rateLimited(err) {
		return Result{Kind: kind}, eris.Wrap(ErrRateLimited, string(kind))
	}
	zap.L().Debug("provider call failed",
		zap.String("provider", string(kind)),
		zap.Error(err),
	)
	return Result{Kind: kind}, nil
}

func isHunterRateLimited(err error) bool {
	var apiErr *hunter.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

func isApolloRateLimited(err error) bool {
	var apiErr *apollo.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}

func isApifyRateLimited(err error) bool {
	var apiErr *apify.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests
}
