// Package contacts discovers and enriches people at target companies via a
// scraping-style provider, with merge and dedup across search passes.
package contacts

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/provider"
)

// minStandardResults is the result count under which the leadership-focused
// second pass kicks in.
const minStandardResults = 2

// Discoverer runs company-level contact discovery.
type Discoverer struct {
	searcher provider.ContactSearcher
	verifier provider.Verifier // optional: enriches scraped emails
}

// NewDiscoverer creates a Discoverer. The verifier may be nil; scraped
// emails are then returned unverified.
func NewDiscoverer(searcher provider.ContactSearcher, verifier provider.Verifier) *Discoverer {
	return &Discoverer{
		searcher: searcher,
		verifier: verifier,
	}
}

// FindCompanyContacts searches for people at a company. A standard pass runs
// first; if it yields fewer than two contacts, a leadership-focused pass
// runs as well. Results merge with case-insensitive name dedup, first
// occurrence winning.
func (d *Discoverer) FindCompanyContacts(ctx context.Context, companyName, domain string, roles []string) ([]model.ContactRecord, error) {
	if companyName == "" && domain == "" {
		return nil, eris.New("contacts: company name or domain is required")
	}

	log := zap.L().With(
		zap.String("company", companyName),
		zap.String("domain", domain),
	)

	standard, err := d.searcher.SearchContacts(ctx, provider.ContactQuery{
		CompanyName: companyName,
		Domain:      domain,
		Roles:       roles,
	})
	if err != nil {
		return nil, eris.Wrap(err, "contacts: standard search pass")
	}

	records := normalizeAll(standard)
	log.Debug("standard pass complete", zap.Int("contacts", len(records)))

	if len(records) < minStandardResults {
		leadership, err := d.searcher.SearchContacts(ctx, provider.ContactQuery{
			CompanyName: companyName,
			Domain:      domain,
			Leadership:  true,
		})
		if err != nil {
			return nil, eris.Wrap(err, "contacts: leadership search pass")
		}
		records = mergeByName(records, normalizeAll(leadership))
		log.Debug("leadership pass merged", zap.Int("contacts", len(records)))
	}

	if d.verifier != nil {
		d.verifyEmails(ctx, records)
	}

	return records, nil
}

// verifyEmails checks scraped addresses in place; failures leave the record
// unverified.
func (d *Discoverer) verifyEmails(ctx context.Context, records []model.ContactRecord) {
	for i := range records {
		if records[i].Email == "" {
			continue
		}
		res, err := d.verifier.Verify(ctx, records[i].Email)
		if err != nil {
			continue
		}
		records[i].EmailConfidence = provider.ConfidenceForStatus(res.Status)
		records[i].EmailSource = string(provider.KindVerifier)
		records[i].Verified = res.Status == provider.StatusValid
	}
}

// mergeByName appends extras whose names aren't already present, comparing
// case-insensitively. First occurrence wins.
func mergeByName(base, extras []model.ContactRecord) []model.ContactRecord {
	seen := make(map[string]struct{}, len(base))
	for _, r := range base {
		seen[nameKey(r.Name)] = struct{}{}
	}
	for _, r := range extras {
		key := nameKey(r.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		base = append(base, r)
	}
	return base
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
