package scheduler

import "iter"

// Eligible lazily yields the providers every criterion accepts for the shift, in input order.
// Each provider is checked independently, so a pre-ranked input stays ranked.
func Eligible(state *ScheduleState, criteria []Criterion, providers []*Provider, shift *Shift) iter.Seq[*Provider] {
	return func(yield func(*Provider) bool) {
		for _, p := range providers {
			if !IsEligible(state, criteria, p, shift) {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// IsEligible reports whether every criterion accepts the provider for the shift
func IsEligible(state *ScheduleState, criteria []Criterion, provider *Provider, shift *Shift) bool {
	for _, c := range criteria {
		if !c.IsEligible(state, provider, shift) {
			return false
		}
	}
	return true
}

// RejectingCriterion returns the name of the first criterion that vetoes the provider, or ""
func RejectingCriterion(state *ScheduleState, criteria []Criterion, provider *Provider, shift *Shift) string {
	for _, c := range criteria {
		if !c.IsEligible(state, provider, shift) {
			return c.Name()
		}
	}
	return ""
}
