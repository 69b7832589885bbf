package waterfall

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Input validation errors surfaced to the inbound caller before any
// provider is touched.
var (
	ErrMissingName = eris.New("waterfall: person name is required")
	ErrNoDomain    = eris.New("waterfall: no domain could be derived")
)

// Request is a single contact-resolution request. Build one with NewRequest
// so the derived fields are populated consistently.
type Request struct {
	PersonName  string `json:"person_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	Domain      string `json:"domain"`
}

// NewRequest derives a Request from the caller-supplied tuple. The person
// name splits on whitespace (first token is the first name, the rest joins
// into the last name). The domain is normalized to a bare hostname; when
// empty it falls back to a slug of the company name.
func NewRequest(personName, companyName, domain string) (Request, error) {
	personName = strings.TrimSpace(personName)
	if personName == "" {
		return Request{}, ErrMissingName
	}

	parts := strings.Fields(personName)
	first := parts[0]
	last := strings.Join(parts[1:], " ")

	host := NormalizeDomain(domain)
	if host == "" {
		host = slugDomain(companyName)
	}
	if host == "" {
		return Request{}, ErrNoDomain
	}

	return Request{
		PersonName:  personName,
		FirstName:   first,
		LastName:    last,
		CompanyName: strings.TrimSpace(companyName),
		Domain:      host,
	}, nil
}

// NormalizeDomain reduces a website URL or hostname to a bare lowercase
// hostname: no scheme, no leading www, no path or port.
func NormalizeDomain(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}
	for _, prefix := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, prefix)
	}
	s = strings.TrimPrefix(s, "www.")
	if i := strings.IndexAny(s, "/:?#"); i >= 0 {
		s = s[:i]
	}
	if !strings.Contains(s, ".") {
		return ""
	}
	return s
}

// slugDomain guesses a domain from a company name: lowercase alphanumerics
// plus ".com". Returns "" when nothing usable remains.
func slugDomain(companyName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(companyName) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return b.String() + ".com"
}
