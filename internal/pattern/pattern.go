// Package pattern synthesizes candidate email addresses from a person's
// name and a company domain, ordered by how common each convention is.
package pattern

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Candidate is a synthesized email address with its priority rank.
// Rank 0 is the highest-signal pattern.
type Candidate struct {
	Address string `json:"address"`
	Rank    int    `json:"rank"`
}

// foldTransformer strips diacritic marks so "José" becomes "Jose".
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// localPart lowercases a name fragment, folds diacritics, and drops anything
// that isn't a-z or 0-9.
func localPart(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Generate returns candidate addresses for the given name and domain, most
// likely convention first. It is pure: the same inputs always produce the
// same ordered list.
//
// With an empty last name the list collapses to two candidates,
// first@domain and first.first@domain.
func Generate(firstName, lastName, domain string) []Candidate {
	f := localPart(firstName)
	l := localPart(lastName)

	var locals []string
	if l == "" {
		locals = []string{f, f + "." + f}
	} else {
		fi := f[:min(1, len(f))]
		li := l[:min(1, len(l))]
		locals = []string{
			f,
			f + "." + l,
			f + l,
			fi + l,
			fi + "." + l,
			f + li,
			f + "_" + l,
			l,
			l + "." + f,
			fi + li,
		}
	}

	candidates := make([]Candidate, 0, len(locals))
	for i, local := range locals {
		candidates = append(candidates, Candidate{
			Address: fmt.Sprintf("%s@%s", local, domain),
			Rank:    i,
		})
	}
	return candidates
}
