package engine

import (
	"math/rand"
	"strings"
)

// Gender / audience preference wildcards.
const PreferenceBoth = "both"

// Criteria is the viewer-chosen candidate predicate. Zero-value fields
// relax their clause: an empty Gender or Audience behaves like "both",
// an empty Location skips the location clause, and a zero AgeMax lifts
// the upper age bound.
type Criteria struct {
	AgeMin   int
	AgeMax   int
	Gender   string
	Location string
	Audience string
	// RadiusKM is advisory only; distance is not enforced in the current
	// design and the field never affects filtering.
	RadiusKM int
}

// Matches reports whether a candidate passes every clause of the criteria.
func (c Criteria) Matches(cand Candidate) bool {
	if c.Gender != "" && c.Gender != PreferenceBoth && !strings.EqualFold(cand.Gender, c.Gender) {
		return false
	}
	if c.Audience != "" && c.Audience != PreferenceBoth && !strings.EqualFold(cand.AudienceType, c.Audience) {
		return false
	}
	if cand.Age < c.AgeMin {
		return false
	}
	if c.AgeMax > 0 && cand.Age > c.AgeMax {
		return false
	}
	if c.Location != "" {
		needle := strings.ToLower(c.Location)
		state := strings.ToLower(cand.State)
		city := strings.ToLower(cand.City)
		if !strings.Contains(state, needle) && !strings.Contains(city, needle) {
			return false
		}
	}
	return true
}

// ApplyFilters filters the pool by the criteria and shuffles the result so
// repeated sessions do not present candidates in a fixed order. The shuffle
// is a product requirement, not a security one; rng is a plain
// non-cryptographic PRNG.
func ApplyFilters(pool []Candidate, criteria Criteria, rng *rand.Rand) []Candidate {
	out := make([]Candidate, 0, len(pool))
	for _, cand := range pool {
		if criteria.Matches(cand) {
			out = append(out, cand)
		}
	}
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
