// Package model defines the shared domain types for contact resolution.
package model

import "strings"

// ContactRecord is a resolved or enriched person attached to a company.
type ContactRecord struct {
	Name            string `json:"name"`
	Title           string `json:"title,omitempty"`
	Email           string `json:"email,omitempty"`
	EmailConfidence int    `json:"email_confidence,omitempty"`
	EmailSource     string `json:"email_source,omitempty"`
	LinkedInURL     string `json:"linkedin_url,omitempty"`
	Verified        bool   `json:"verified"`
}

// RawRecord is a loosely-typed record returned by scraping providers.
// Field names vary per actor, so lookups go through FirstString.
type RawRecord map[string]any

// FirstString returns the first non-empty string value among the given keys.
func (r RawRecord) FirstString(keys ...string) string {
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
