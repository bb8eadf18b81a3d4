// Package analytics turns a user's in-memory transaction and budget snapshot
// into signals: spending anomalies, a recommended monthly budget, a
// current-month projection, a 30-day forecast, per-category optimization
// alerts, purchase necessity scores and historical savings.
//
// Every function is pure: no storage, no clocks beyond explicit parameters,
// no mutation of the snapshot. Malformed records (unparseable dates, blank
// categories) are filtered out, never reported as errors.
package analytics

import "strings"

// Kind classifies a spending category.
type Kind string

const (
	Fixed    Kind = "fixed"
	Variable Kind = "variable"
)

// DefaultFixedCategories are the non-discretionary categories assumed when
// no explicit policy is configured.
var DefaultFixedCategories = []string{
	"Rent", "Bills", "Education", "Insurance", "Utilities", "EMI", "Loan",
}

// Policy is the fixed/variable classification policy shared by the
// detectors. The fixed-category set and the budget-share exemption vary
// between deployments, so they travel together as one configurable value
// instead of package-level state.
type Policy struct {
	fixed map[string]struct{}

	// ExemptFixedFromBudgetShare removes fixed categories from the
	// "consumes over half the budget" optimizer alert.
	ExemptFixedFromBudgetShare bool
}

// NewPolicy builds a policy from a list of fixed category labels.
// Labels are normalized the same way Classify normalizes its input.
func NewPolicy(fixedCategories []string, exemptFixedFromBudgetShare bool) Policy {
	set := make(map[string]struct{}, len(fixedCategories))
	for _, c := range fixedCategories {
		if key := canonical(c); key != "" {
			set[key] = struct{}{}
		}
	}
	return Policy{fixed: set, ExemptFixedFromBudgetShare: exemptFixedFromBudgetShare}
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return NewPolicy(DefaultFixedCategories, true)
}

// Classify maps a raw category label to Fixed or Variable. Matching is
// case-insensitive and whitespace-trimmed; anything unrecognized is Variable.
func (p Policy) Classify(label string) Kind {
	if _, ok := p.fixed[canonical(label)]; ok {
		return Fixed
	}
	return Variable
}

// IsFixed reports whether label belongs to the fixed-category set.
func (p Policy) IsFixed(label string) bool {
	return p.Classify(label) == Fixed
}

func canonical(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
