package contacts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/outreach-cli/internal/model"
)

// Company identifies a batch target.
type Company struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// CompanyContacts pairs a company with its discovered contacts. Companies
// whose lookup failed have no entry in the batch result.
type CompanyContacts struct {
	Company  Company               `json:"company"`
	Contacts []model.ContactRecord `json:"contacts"`
}

// BatchOptions tunes cross-company discovery.
type BatchOptions struct {
	// Concurrency is the number of companies in flight per chunk. Default: 3.
	Concurrency int
	// Pacing spaces out lookups to avoid provider throttling. Default: 250ms.
	Pacing time.Duration
	// Roles is passed through to the standard search pass.
	Roles []string
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = 3
	}
	if o.Pacing <= 0 {
		o.Pacing = 250 * time.Millisecond
	}
	return o
}

// RunBatch discovers contacts for each company, at most opts.Concurrency
// companies in flight, with each chunk fully collected before the next
// begins. Emails already seen earlier in the batch are dropped
// (case-insensitive), and a single company's failure is logged and skipped
// without aborting its siblings.
func RunBatch(ctx context.Context, d *Discoverer, companies []Company, opts BatchOptions) ([]CompanyContacts, error) {
	if len(companies) == 0 {
		return nil, eris.New("contacts: empty company batch")
	}
	opts = opts.withDefaults()

	batchID := uuid.NewString()
	log := zap.L().With(zap.String("batch_id", batchID))
	log.Info("discovering contacts",
		zap.Int("companies", len(companies)),
		zap.Int("concurrency", opts.Concurrency),
	)

	limiter := rate.NewLimiter(rate.Every(opts.Pacing), 1)
	seenEmails := make(map[string]struct{})
	var results []CompanyContacts

	for start := 0; start < len(companies); start += opts.Concurrency {
		end := min(start+opts.Concurrency, len(companies))
		chunk := make([][]model.ContactRecord, end-start)
		failed := make([]bool, end-start)

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				if err := limiter.Wait(gctx); err != nil {
					failed[i-start] = true
					return nil
				}
				contacts, err := d.FindCompanyContacts(gctx, companies[i].Name, companies[i].Domain, opts.Roles)
				if err != nil {
					log.Warn("company lookup failed",
						zap.String("company", companies[i].Name),
						zap.Error(err),
					)
					failed[i-start] = true
					return nil
				}
				chunk[i-start] = contacts
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, eris.Wrap(err, "contacts: batch chunk")
		}

		// Merge the chunk in request order so batch-level email dedup stays
		// deterministic.
		for i := start; i < end; i++ {
			if failed[i-start] {
				continue
			}
			kept := dedupEmails(chunk[i-start], seenEmails)
			results = append(results, CompanyContacts{
				Company:  companies[i],
				Contacts: kept,
			})
		}
	}

	log.Info("contact discovery complete", zap.Int("companies_returned", len(results)))
	return results, nil
}

// dedupEmails drops records whose email was already seen in this batch.
// Records without an email always pass through.
func dedupEmails(records []model.ContactRecord, seen map[string]struct{}) []model.ContactRecord {
	kept := records[:0]
	for _, r := range records {
		if r.Email != "" {
			key := strings.ToLower(r.Email)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		kept = append(kept, r)
	}
	return kept
}
