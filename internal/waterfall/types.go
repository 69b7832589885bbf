package waterfall

import "github.com/sells-group/outreach-cli/internal/provider"

// Outcome is the terminal result of resolving one Request. A zero email
// with zero confidence means every stage came up empty; credits are still
// accounted.
type Outcome struct {
	Email      string                `json:"email,omitempty"`
	Confidence int                   `json:"confidence"`
	Source     provider.Kind         `json:"source,omitempty"`
	Credits    map[provider.Kind]int `json:"credits"`
}

func newOutcome() *Outcome {
	return &Outcome{Credits: make(map[provider.Kind]int)}
}

// charge records one credit consumed against a provider kind.
func (o *Outcome) charge(kind provider.Kind) {
	o.Credits[kind]++
}

// accept freezes the outcome with the winning email.
func (o *Outcome) accept(email string, confidence int, source provider.Kind) {
	o.Email = email
	o.Confidence = confidence
	o.Source = source
}

// Resolved reports whether any stage produced an email.
func (o *Outcome) Resolved() bool {
	return o.Email != ""
}
