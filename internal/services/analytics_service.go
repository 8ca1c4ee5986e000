package services

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"salesor-api/internal/cache"
	"salesor-api/internal/models"
)

// A lead counts as stagnant after three days without engagement.
const stagnantAfter = 72 * time.Hour

const (
	recentActivityLimit = 20
	inactiveLeadLimit   = 5
	topScoredLimit      = 10
)

// LeadSource is the slice of the lead repository the aggregator reads from.
type LeadSource interface {
	FindAllByOwner(ctx context.Context, userID string) ([]*models.Lead, error)
	CountByOwner(ctx context.Context, userID string) (int, error)
	CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error)
	TotalWonRevenue(ctx context.Context, userID string) (float64, error)
	WonRevenueSince(ctx context.Context, userID string, since time.Time) (float64, error)
	CountsByStatus(ctx context.Context, userID string) ([]models.StatusCount, error)
	WeeklyPerformance(ctx context.Context, userID string, since time.Time) ([]models.WeeklyPoint, error)
	SourceBreakdown(ctx context.Context, userID string) ([]models.SourceCount, error)
	SourceConversion(ctx context.Context, userID string) ([]models.SourceConversion, error)
}

// UserSource resolves the owner for the monthly target widget.
type UserSource interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// AnalyticsService computes per-owner dashboard snapshots, with a
// cache-first read path. The computation itself has no side effects on the
// lead store; only the cache is written.
type AnalyticsService struct {
	leads LeadSource
	users UserSource
	cache cache.Store
	now   func() time.Time
}

func NewAnalyticsService(leads LeadSource, users UserSource, cacheStore cache.Store) *AnalyticsService {
	return &AnalyticsService{
		leads: leads,
		users: users,
		cache: cacheStore,
		now:   time.Now,
	}
}

// SetClock overrides the service clock for tests.
func (s *AnalyticsService) SetClock(now func() time.Time) {
	s.now = now
}

// Dashboard returns the owner's analytics snapshot. Unless refresh is set, a
// cached snapshot within its TTL is served as-is; a recomputed snapshot is
// always written back to the cache. Cache failures are logged and the request
// falls through to a fresh computation.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID string, refresh bool) (*models.DashboardStats, error) {
	key := cache.AnalyticsKey(userID)

	if !refresh {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("analytics: cache read failed for user %s: %v", userID, err)
		} else if ok {
			var stats models.DashboardStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
			log.Printf("analytics: dropping unreadable cache entry %s", key)
		}
	}

	stats, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), cache.AnalyticsTTL); err != nil {
			log.Printf("analytics: cache write failed for user %s: %v", userID, err)
		}
	}

	return stats, nil
}

func (s *AnalyticsService) compute(ctx context.Context, userID string) (*models.DashboardStats, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	totalLeads, err := s.leads.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	newToday, err := s.leads.CountCreatedSince(ctx, userID, startOfDay)
	if err != nil {
		return nil, err
	}

	totalRevenue, err := s.leads.TotalWonRevenue(ctx, userID)
	if err != nil {
		return nil, err
	}

	monthlyRevenue, err := s.leads.WonRevenueSince(ctx, userID, startOfMonth)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.leads.CountsByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	weekly, err := s.leads.WeeklyPerformance(ctx, userID, weekAgo)
	if err != nil {
		return nil, err
	}

	bySource, err := s.leads.SourceBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}

	sourceConv, err := s.leads.SourceConversion(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Scoring, activity feed, and stagnant detection work on the full lead
	// snapshot rather than pipelines; the per-owner lead count stays small.
	allLeads, err := s.leads.FindAllByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	wonCount := 0
	for _, sc := range byStatus {
		if sc.Status == models.StatusWon {
			wonCount = sc.Count
		}
	}
	conversionRate := 0.0
	if totalLeads > 0 {
		conversionRate = float64(wonCount) / float64(totalLeads) * 100
	}

	stats := &models.DashboardStats{
		TotalLeads:        totalLeads,
		NewLeadsToday:     newToday,
		TotalRevenue:      totalRevenue,
		ConversionRate:    conversionRate,
		LeadsByStatus:     byStatus,
		WeeklyPerformance: weekly,
		SourceBreakdown:   bySource,
		SourceConversion:  sourceConv,
		RecentActivities:  RecentActivities(allLeads, recentActivityLimit),
		InactiveLeads:     StagnantLeads(allLeads, now, inactiveLeadLimit),
		TopScoredLeads:    TopScoredLeads(allLeads, topScoredLimit),
		MonthlyRevenue:    monthlyRevenue,
		GeneratedAt:       now,
	}

	if user, err := s.users.FindByID(ctx, userID); err == nil {
		stats.MonthlyTarget = user.MonthlyTarget
	}

	return stats, nil
}

// RecentActivities flattens every lead's history into one feed, most recent
// first, capped at limit entries.
func RecentActivities(leads []*models.Lead, limit int) []models.Activity {
	activities := []models.Activity{}
	for _, lead := range leads {
		for _, entry := range lead.History {
			activities = append(activities, models.Activity{
				LeadID:      lead.ID,
				LeadName:    lead.Name,
				Type:        entry.Type,
				Content:     entry.Content,
				Date:        entry.Date,
				PerformedBy: entry.PerformedBy,
			})
		}
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Date.After(activities[j].Date)
	})

	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities
}

// StagnantLeads returns up to limit active leads with no engagement in the
// stagnant window, most stagnant first. Leads that were never engaged fall
// back to their creation time, and terminal statuses (Won, Lost) are
// excluded no matter how old.
func StagnantLeads(leads []*models.Lead, now time.Time, limit int) []*models.Lead {
	cutoff := now.Add(-stagnantAfter)

	stagnant := []*models.Lead{}
	for _, lead := range leads {
		if lead.Status == models.StatusWon || lead.Status == models.StatusLost {
			continue
		}
		if lead.LastEngagementDate != nil {
			if lead.LastEngagementDate.Before(cutoff) {
				stagnant = append(stagnant, lead)
			}
		} else if lead.CreatedAt.Before(cutoff) {
			stagnant = append(stagnant, lead)
		}
	}

	sort.SliceStable(stagnant, func(i, j int) bool {
		a, b := stagnant[i], stagnant[j]
		at, bt := time.Time{}, time.Time{}
		if a.LastEngagementDate != nil {
			at = *a.LastEngagementDate
		}
		if b.LastEngagementDate != nil {
			bt = *b.LastEngagementDate
		}
		if !at.Equal(bt) {
			return at.Before(bt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	if len(stagnant) > limit {
		stagnant = stagnant[:limit]
	}
	return stagnant
}
