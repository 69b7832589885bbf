package contacts

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/provider"
)

type mockSearcher struct {
	standard   []model.RawRecord
	leadership []model.RawRecord
	err        error
	queries    []provider.ContactQuery
}

func (m *mockSearcher) SearchContacts(_ context.Context, q provider.ContactQuery) ([]model.RawRecord, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	if q.Leadership {
		return m.leadership, nil
	}
	return m.standard, nil
}

type mockVerifier struct {
	byEmail map[string]provider.Result
	calls   []string
}

func (m *mockVerifier) Verify(_ context.Context, email string) (provider.Result, error) {
	m.calls = append(m.calls, email)
	if res, ok := m.byEmail[email]; ok {
		return res, nil
	}
	return provider.Result{Status: provider.StatusUnknown}, nil
}

func TestFindCompanyContacts_StandardPassSufficient(t *testing.T) {
	searcher := &mockSearcher{
		standard: []model.RawRecord{
			{"name": "Jane Doe", "title": "VP Sales"},
			{"name": "Hank Scorpio", "title": "CEO"},
		},
		leadership: []model.RawRecord{{"name": "Should Not Appear"}},
	}

	d := NewDiscoverer(searcher, nil)
	records, err := d.FindCompanyContacts(context.Background(), "Acme", "acme.com", []string{"VP Sales"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Len(t, searcher.queries, 1, "leadership pass must not run when the standard pass found enough")
	assert.False(t, searcher.queries[0].Leadership)
	assert.Equal(t, []string{"VP Sales"}, searcher.queries[0].Roles)
}

func TestFindCompanyContacts_LeadershipFallback(t *testing.T) {
	searcher := &mockSearcher{
		standard: []model.RawRecord{
			{"name": "Jane Doe", "title": "VP Sales"},
		},
		leadership: []model.RawRecord{
			{"name": "jane doe", "title": "Duplicate"},
			{"name": "Hank Scorpio", "title": "CEO"},
		},
	}

	d := NewDiscoverer(searcher, nil)
	records, err := d.FindCompanyContacts(context.Background(), "Acme", "acme.com", nil)
	require.NoError(t, err)

	require.Len(t, searcher.queries, 2)
	assert.True(t, searcher.queries[1].Leadership)

	// Case-insensitive name dedup, first occurrence wins.
	require.Len(t, records, 2)
	assert.Equal(t, "Jane Doe", records[0].Name)
	assert.Equal(t, "VP Sales", records[0].Title)
	assert.Equal(t, "Hank Scorpio", records[1].Name)
}

func TestFindCompanyContacts_VerifierEnrichment(t *testing.T) {
	searcher := &mockSearcher{
		standard: []model.RawRecord{
			{"name": "Jane Doe", "email": "jane@acme.com"},
			{"name": "Hank Scorpio", "email": "hank@acme.com"},
			{"name": "No Email"},
		},
	}
	verifier := &mockVerifier{byEmail: map[string]provider.Result{
		"jane@acme.com": {Status: provider.StatusValid},
		"hank@acme.com": {Status: provider.StatusAcceptAll},
	}}

	d := NewDiscoverer(searcher, verifier)
	records, err := d.FindCompanyContacts(context.Background(), "Acme", "acme.com", nil)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.True(t, records[0].Verified)
	assert.Equal(t, 100, records[0].EmailConfidence)
	assert.Equal(t, "verifier", records[0].EmailSource)

	assert.False(t, records[1].Verified)
	assert.Equal(t, 80, records[1].EmailConfidence)

	assert.Equal(t, []string{"jane@acme.com", "hank@acme.com"}, verifier.calls,
		"records without an email are not verified")
}

func TestFindCompanyContacts_RequiresCompanyOrDomain(t *testing.T) {
	d := NewDiscoverer(&mockSearcher{}, nil)
	_, err := d.FindCompanyContacts(context.Background(), "", "", nil)
	assert.Error(t, err)
}

func TestFindCompanyContacts_SearchError(t *testing.T) {
	d := NewDiscoverer(&mockSearcher{err: eris.New("actor unavailable")}, nil)
	_, err := d.FindCompanyContacts(context.Background(), "Acme", "", nil)
	assert.Error(t, err)
}

func TestNormalizeRecord(t *testing.T) {
	tests := []struct {
		name string
		raw  model.RawRecord
		want model.ContactRecord
		ok   bool
	}{
		{
			name: "canonical keys",
			raw: model.RawRecord{
				"name":        "Jane Doe",
				"title":       "VP Sales",
				"email":       "jane@acme.com",
				"linkedinUrl": "https://linkedin.com/in/janedoe",
			},
			want: model.ContactRecord{
				Name:        "Jane Doe",
				Title:       "VP Sales",
				Email:       "jane@acme.com",
				EmailSource: "scraper",
				LinkedInURL: "https://linkedin.com/in/janedoe",
			},
			ok: true,
		},
		{
			name: "fallback keys",
			raw: model.RawRecord{
				"fullName":     "Hank Scorpio",
				"position":     "CEO",
				"emailAddress": "hank@globex.com",
				"profileUrl":   "https://linkedin.com/in/hank",
			},
			want: model.ContactRecord{
				Name:        "Hank Scorpio",
				Title:       "CEO",
				Email:       "hank@globex.com",
				EmailSource: "scraper",
				LinkedInURL: "https://linkedin.com/in/hank",
			},
			ok: true,
		},
		{
			name: "missing name rejected",
			raw:  model.RawRecord{"title": "CEO"},
			ok:   false,
		},
		{
			name: "non-string name rejected",
			raw:  model.RawRecord{"name": 42},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := NormalizeRecord(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, rec)
			}
		})
	}
}
