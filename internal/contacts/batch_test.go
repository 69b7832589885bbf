package contacts

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/provider"
)

// batchSearcher routes queries by company name and is safe for concurrent
// use by the chunk workers.
type batchSearcher struct {
	mu        sync.Mutex
	byCompany map[string][]model.RawRecord
	failures  map[string]error
	calls     int
}

func (m *batchSearcher) SearchContacts(_ context.Context, q provider.ContactQuery) ([]model.RawRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err, ok := m.failures[q.CompanyName]; ok {
		return nil, err
	}
	return m.byCompany[q.CompanyName], nil
}

func fastBatchOpts() BatchOptions {
	return BatchOptions{Concurrency: 3, Pacing: time.Nanosecond}
}

func TestRunBatch_FailureIsolation(t *testing.T) {
	searcher := &batchSearcher{
		byCompany: map[string][]model.RawRecord{
			"Acme": {
				{"name": "Jane Doe", "email": "jane@acme.com"},
				{"name": "John Roe", "email": "john@acme.com"},
			},
			"Initech": {
				{"name": "Bill Lumbergh", "email": "bill@initech.com"},
				{"name": "Peter Gibbons", "email": "peter@initech.com"},
			},
		},
		failures: map[string]error{"Globex": eris.New("actor crashed")},
	}

	companies := []Company{
		{Name: "Acme", Domain: "acme.com"},
		{Name: "Globex", Domain: "globex.com"},
		{Name: "Initech", Domain: "initech.com"},
	}

	results, err := RunBatch(context.Background(), NewDiscoverer(searcher, nil), companies, fastBatchOpts())
	require.NoError(t, err)

	// The failed company is dropped; its siblings survive.
	require.Len(t, results, 2)
	assert.Equal(t, "Acme", results[0].Company.Name)
	assert.Equal(t, "Initech", results[1].Company.Name)
	assert.Len(t, results[0].Contacts, 2)
	assert.Len(t, results[1].Contacts, 2)
}

func TestRunBatch_EmailDedupAcrossCompanies(t *testing.T) {
	// The same person scraped under two companies keeps only the first hit.
	shared := model.RawRecord{"name": "Jane Doe", "email": "jane@holdings.com"}
	searcher := &batchSearcher{
		byCompany: map[string][]model.RawRecord{
			"Acme": {
				shared,
				{"name": "John Roe", "email": "john@acme.com"},
			},
			"Acme Sub": {
				shared,
				{"name": "Mary Major", "email": "mary@acmesub.com"},
			},
		},
	}

	companies := []Company{
		{Name: "Acme", Domain: "acme.com"},
		{Name: "Acme Sub", Domain: "acmesub.com"},
	}

	results, err := RunBatch(context.Background(), NewDiscoverer(searcher, nil), companies, fastBatchOpts())
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Len(t, results[0].Contacts, 2)
	require.Len(t, results[1].Contacts, 1, "duplicate email dropped from the later company")
	assert.Equal(t, "Mary Major", results[1].Contacts[0].Name)
}

func TestRunBatch_RecordsWithoutEmailAlwaysPass(t *testing.T) {
	searcher := &batchSearcher{
		byCompany: map[string][]model.RawRecord{
			"Acme": {
				{"name": "Jane Doe"},
				{"name": "John Roe"},
			},
		},
	}

	results, err := RunBatch(context.Background(), NewDiscoverer(searcher, nil),
		[]Company{{Name: "Acme"}}, fastBatchOpts())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Contacts, 2)
}

func TestRunBatch_Empty(t *testing.T) {
	_, err := RunBatch(context.Background(), NewDiscoverer(&batchSearcher{}, nil), nil, fastBatchOpts())
	assert.Error(t, err)
}

func TestDedupEmails_CaseInsensitive(t *testing.T) {
	seen := make(map[string]struct{})
	first := dedupEmails([]model.ContactRecord{
		{Name: "Jane Doe", Email: "Jane@Acme.com"},
	}, seen)
	require.Len(t, first, 1)

	second := dedupEmails([]model.ContactRecord{
		{Name: "Jane Doe", Email: "jane@acme.com"},
		{Name: "John Roe", Email: "john@acme.com"},
	}, seen)
	require.Len(t, second, 1)
	assert.Equal(t, "John Roe", second[0].Name)
}
