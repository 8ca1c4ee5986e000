package services

import (
	"math"
	"sort"

	"salesor-api/internal/models"
)

// Score weights: email opens are worth up to 50 points, replies up to 75, and
// deal value up to 100 relative to the owner's largest deal. The raw 0-225
// total is normalized to 0-100.
const (
	openPointsPer  = 10
	openPointsMax  = 50
	replyPointsPer = 25
	replyPointsMax = 75
	valuePointsMax = 100
	rawScoreMax    = openPointsMax + replyPointsMax + valuePointsMax
)

// ScoreLeads ranks a snapshot of leads by engagement and deal value, highest
// first. The sort is stable so that ties keep their input order.
func ScoreLeads(leads []*models.Lead) []models.ScoredLead {
	if len(leads) == 0 {
		return []models.ScoredLead{}
	}

	// Largest deal value, floored at 1 to avoid dividing by zero.
	maxValue := 1.0
	for _, lead := range leads {
		if lead.Value > maxValue {
			maxValue = lead.Value
		}
	}

	scored := make([]models.ScoredLead, 0, len(leads))
	for _, lead := range leads {
		openScore := lead.EmailOpens * openPointsPer
		if openScore > openPointsMax {
			openScore = openPointsMax
		}
		replyScore := lead.EmailReplies * replyPointsPer
		if replyScore > replyPointsMax {
			replyScore = replyPointsMax
		}
		valueScore := lead.Value / maxValue * valuePointsMax

		rawScore := float64(openScore) + float64(replyScore) + valueScore
		normalized := int(math.Round(rawScore / rawScoreMax * 100))

		scored = append(scored, models.ScoredLead{
			Lead:  lead,
			Score: normalized,
			ScoreBreakdown: models.ScoreBreakdown{
				OpenScore:  openScore,
				ReplyScore: replyScore,
				ValueScore: int(math.Round(valueScore)),
			},
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// TopScoredLeads returns the n highest-scoring leads.
func TopScoredLeads(leads []*models.Lead, n int) []models.ScoredLead {
	scored := ScoreLeads(leads)
	if len(scored) > n {
		scored = scored[:n]
	}
	return scored
}
