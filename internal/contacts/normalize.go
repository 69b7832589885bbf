package contacts

import (
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/provider"
)

// NormalizeRecord converts a loosely-typed scraped record into a
// ContactRecord. Actors disagree on field names, so each field probes a
// fixed fallback list. Records without a usable name are rejected.
func NormalizeRecord(r model.RawRecord) (model.ContactRecord, bool) {
	name := r.FirstString("name", "fullName", "full_name")
	if name == "" {
		return model.ContactRecord{}, false
	}

	rec := model.ContactRecord{
		Name:        name,
		Title:       r.FirstString("title", "position", "headline"),
		LinkedInURL: r.FirstString("linkedinUrl", "linkedin_url", "linkedin", "profileUrl", "url"),
		Email:       r.FirstString("email", "emailAddress", "email_address"),
	}
	if rec.Email != "" {
		rec.EmailSource = string(provider.KindScraper)
	}
	return rec, true
}

func normalizeAll(raw []model.RawRecord) []model.ContactRecord {
	records := make([]model.ContactRecord, 0, len(raw))
	for _, r := range raw {
		if rec, ok := NormalizeRecord(r); ok {
			records = append(records, rec)
		}
	}
	return records
}
