package services

import (
	"testing"

	"salesor-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreLeadsEmpty(t *testing.T) {
	assert.Empty(t, ScoreLeads(nil))
	assert.Empty(t, ScoreLeads([]*models.Lead{}))
}

func TestScoreLeadsMaxedOut(t *testing.T) {
	// Opens and replies well past their caps, and the largest deal in the
	// set, should land exactly on 100.
	lead := &models.Lead{Name: "Whale", EmailOpens: 50, EmailReplies: 10, Value: 9000}
	scored := ScoreLeads([]*models.Lead{lead})

	require.Len(t, scored, 1)
	assert.Equal(t, 100, scored[0].Score)
	assert.Equal(t, 50, scored[0].ScoreBreakdown.OpenScore)
	assert.Equal(t, 75, scored[0].ScoreBreakdown.ReplyScore)
	assert.Equal(t, 100, scored[0].ScoreBreakdown.ValueScore)
}

func TestScoreLeadsNoEngagement(t *testing.T) {
	// Zero opens, zero replies, zero value. The value component divides by
	// the floor of 1, so the score stays at 0.
	lead := &models.Lead{Name: "Cold"}
	scored := ScoreLeads([]*models.Lead{lead})

	require.Len(t, scored, 1)
	assert.Equal(t, 0, scored[0].Score)
}

func TestScoreLeadsValueRelativeToLargestDeal(t *testing.T) {
	big := &models.Lead{Name: "Big", Value: 1000}
	half := &models.Lead{Name: "Half", Value: 500}
	scored := ScoreLeads([]*models.Lead{half, big})

	require.Len(t, scored, 2)
	// raw 100/225 ≈ 44, raw 50/225 ≈ 22
	assert.Equal(t, "Big", scored[0].Lead.Name)
	assert.Equal(t, 44, scored[0].Score)
	assert.Equal(t, "Half", scored[1].Lead.Name)
	assert.Equal(t, 22, scored[1].Score)
}

func TestScoreLeadsSortedDescendingAndStable(t *testing.T) {
	leads := []*models.Lead{
		{Name: "A", EmailOpens: 1},
		{Name: "B", EmailOpens: 3},
		{Name: "C", EmailOpens: 1}, // ties with A, must stay after it
		{Name: "D", EmailOpens: 5},
	}
	scored := ScoreLeads(leads)

	require.Len(t, scored, 4)
	assert.Equal(t, "D", scored[0].Lead.Name)
	assert.Equal(t, "B", scored[1].Lead.Name)
	assert.Equal(t, "A", scored[2].Lead.Name)
	assert.Equal(t, "C", scored[3].Lead.Name)
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Score, scored[i].Score)
	}
}

func TestTopScoredLeadsCapped(t *testing.T) {
	leads := make([]*models.Lead, 0, 15)
	for i := 0; i < 15; i++ {
		leads = append(leads, &models.Lead{EmailOpens: i})
	}

	top := TopScoredLeads(leads, 10)
	require.Len(t, top, 10)

	all := TopScoredLeads(leads[:3], 10)
	assert.Len(t, all, 3)
}
