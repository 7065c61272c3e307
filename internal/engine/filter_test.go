package engine_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fanspark/discovery/internal/engine"
)

func testPool() []engine.Candidate {
	return []engine.Candidate{
		{ID: 1, DisplayName: "Ana", Age: 22, Gender: "female", AudienceType: "creator", State: "California", City: "Los Angeles"},
		{ID: 2, DisplayName: "Ben", Age: 35, Gender: "male", AudienceType: "consumer", State: "Texas", City: "Austin"},
		{ID: 3, DisplayName: "Cara", Age: 41, Gender: "female", AudienceType: "consumer", State: "California", City: "San Diego"},
		{ID: 4, DisplayName: "Dan", Age: 19, Gender: "male", AudienceType: "creator", State: "New York", City: "New York"},
	}
}

func rng() *rand.Rand { return rand.New(rand.NewSource(1)) }

func idsOf(cands []engine.Candidate) []uint64 {
	out := make([]uint64, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.ID)
	}
	return out
}

func TestApplyFilters_GenderClause(t *testing.T) {
	got := engine.ApplyFilters(testPool(), engine.Criteria{Gender: "female"}, rng())
	assert.ElementsMatch(t, []uint64{1, 3}, idsOf(got))
}

func TestApplyFilters_BothGenderSkipsClause(t *testing.T) {
	got := engine.ApplyFilters(testPool(), engine.Criteria{Gender: engine.PreferenceBoth}, rng())
	assert.Len(t, got, 4)
}

func TestApplyFilters_AgeRangeInclusive(t *testing.T) {
	got := engine.ApplyFilters(testPool(), engine.Criteria{AgeMin: 19, AgeMax: 35}, rng())
	assert.ElementsMatch(t, []uint64{1, 2, 4}, idsOf(got))
}

func TestApplyFilters_LocationSubstringCaseInsensitive(t *testing.T) {
	got := engine.ApplyFilters(testPool(), engine.Criteria{Location: "calif"}, rng())
	assert.ElementsMatch(t, []uint64{1, 3}, idsOf(got))

	// matches city as well as state
	got = engine.ApplyFilters(testPool(), engine.Criteria{Location: "AUSTIN"}, rng())
	assert.ElementsMatch(t, []uint64{2}, idsOf(got))
}

func TestApplyFilters_AudienceClause(t *testing.T) {
	got := engine.ApplyFilters(testPool(), engine.Criteria{Audience: "creator"}, rng())
	assert.ElementsMatch(t, []uint64{1, 4}, idsOf(got))
}

func TestApplyFilters_ConjunctionAndEmptyResult(t *testing.T) {
	got := engine.ApplyFilters(testPool(), engine.Criteria{
		Gender:   "female",
		Audience: "creator",
		AgeMin:   30,
	}, rng())
	assert.Empty(t, got)
}

func TestApplyFilters_RadiusIsAdvisoryOnly(t *testing.T) {
	got := engine.ApplyFilters(testPool(), engine.Criteria{RadiusKM: 1}, rng())
	assert.Len(t, got, 4)
}

func TestApplyFilters_ShuffleIsSeedDriven(t *testing.T) {
	a := engine.ApplyFilters(testPool(), engine.Criteria{}, rand.New(rand.NewSource(7)))
	b := engine.ApplyFilters(testPool(), engine.Criteria{}, rand.New(rand.NewSource(7)))
	assert.Equal(t, idsOf(a), idsOf(b), "same seed must give same order")
	assert.ElementsMatch(t, []uint64{1, 2, 3, 4}, idsOf(a))
}
