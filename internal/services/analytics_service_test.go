package services

import (
	"context"
	"testing"
	"time"

	"salesor-api/internal/cache"
	"salesor-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeLeadSource serves canned aggregates and counts how often the full
// snapshot is read, so tests can tell a cache hit from a recomputation.
type fakeLeadSource struct {
	leads        []*models.Lead
	byStatus     []models.StatusCount
	weekly       []models.WeeklyPoint
	bySource     []models.SourceCount
	sourceConv   []models.SourceConversion
	totalRevenue float64
	monthRevenue float64
	newToday     int
	computeCalls int
}

func (f *fakeLeadSource) FindAllByOwner(context.Context, string) ([]*models.Lead, error) {
	f.computeCalls++
	return f.leads, nil
}

func (f *fakeLeadSource) CountByOwner(context.Context, string) (int, error) {
	return len(f.leads), nil
}

func (f *fakeLeadSource) CountCreatedSince(context.Context, string, time.Time) (int, error) {
	return f.newToday, nil
}

func (f *fakeLeadSource) TotalWonRevenue(context.Context, string) (float64, error) {
	return f.totalRevenue, nil
}

func (f *fakeLeadSource) WonRevenueSince(context.Context, string, time.Time) (float64, error) {
	return f.monthRevenue, nil
}

func (f *fakeLeadSource) CountsByStatus(context.Context, string) ([]models.StatusCount, error) {
	return f.byStatus, nil
}

func (f *fakeLeadSource) WeeklyPerformance(context.Context, string, time.Time) ([]models.WeeklyPoint, error) {
	return f.weekly, nil
}

func (f *fakeLeadSource) SourceBreakdown(context.Context, string) ([]models.SourceCount, error) {
	return f.bySource, nil
}

func (f *fakeLeadSource) SourceConversion(context.Context, string) ([]models.SourceConversion, error) {
	return f.sourceConv, nil
}

type fakeUserSource struct {
	user *models.User
}

func (f *fakeUserSource) FindByID(context.Context, string) (*models.User, error) {
	return f.user, nil
}

func newAnalyticsFixture(leads *fakeLeadSource) (*AnalyticsService, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	svc := NewAnalyticsService(leads, &fakeUserSource{user: &models.User{MonthlyTarget: 5000}}, store)
	return svc, store
}

func TestDashboardEmptyAccount(t *testing.T) {
	svc, _ := newAnalyticsFixture(&fakeLeadSource{})

	stats, err := svc.Dashboard(context.Background(), "u1", false)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalLeads)
	assert.Zero(t, stats.ConversionRate)
	assert.Empty(t, stats.RecentActivities)
	assert.Empty(t, stats.InactiveLeads)
	assert.Empty(t, stats.TopScoredLeads)
	assert.Equal(t, 5000.0, stats.MonthlyTarget)
}

func TestDashboardConversionRate(t *testing.T) {
	leads := &fakeLeadSource{
		leads: []*models.Lead{
			{Name: "a", Status: models.StatusWon},
			{Name: "b", Status: models.StatusNew},
			{Name: "c", Status: models.StatusNew},
			{Name: "d", Status: models.StatusLost},
		},
		byStatus: []models.StatusCount{
			{Status: models.StatusWon, Count: 1},
			{Status: models.StatusNew, Count: 2},
			{Status: models.StatusLost, Count: 1},
		},
	}
	svc, _ := newAnalyticsFixture(leads)

	stats, err := svc.Dashboard(context.Background(), "u1", false)
	require.NoError(t, err)
	assert.Equal(t, 25.0, stats.ConversionRate)
}

func TestDashboardServedFromCache(t *testing.T) {
	leads := &fakeLeadSource{newToday: 3}
	svc, _ := newAnalyticsFixture(leads)
	ctx := context.Background()

	first, err := svc.Dashboard(ctx, "u1", false)
	require.NoError(t, err)
	require.Equal(t, 1, leads.computeCalls)

	// Underlying data changes, but the cached snapshot is still served.
	leads.newToday = 9
	second, err := svc.Dashboard(ctx, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, 1, leads.computeCalls)
	assert.Equal(t, first.NewLeadsToday, second.NewLeadsToday)
}

func TestDashboardRefreshBypassesCache(t *testing.T) {
	leads := &fakeLeadSource{newToday: 3}
	svc, _ := newAnalyticsFixture(leads)
	ctx := context.Background()

	_, err := svc.Dashboard(ctx, "u1", false)
	require.NoError(t, err)

	leads.newToday = 9
	stats, err := svc.Dashboard(ctx, "u1", true)
	require.NoError(t, err)
	assert.Equal(t, 2, leads.computeCalls)
	assert.Equal(t, 9, stats.NewLeadsToday)
}

func TestDashboardRecomputeIsDeterministic(t *testing.T) {
	engaged := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, 4, 20, 9, 0, 0, 0, time.UTC)
	leads := &fakeLeadSource{
		leads: []*models.Lead{
			{ID: primitive.NewObjectID(), Name: "a", Status: models.StatusWon, Value: 9000, EmailOpens: 4, EmailReplies: 2, LastEngagementDate: &engaged, CreatedAt: created},
			{ID: primitive.NewObjectID(), Name: "b", Status: models.StatusNew, Value: 1500, CreatedAt: created},
			{ID: primitive.NewObjectID(), Name: "c", Status: models.StatusContacted, Value: 3000, EmailOpens: 1, CreatedAt: created},
		},
		byStatus: []models.StatusCount{
			{Status: models.StatusWon, Count: 1},
			{Status: models.StatusNew, Count: 1},
			{Status: models.StatusContacted, Count: 1},
		},
		bySource: []models.SourceCount{
			{Source: "Website", Count: 2},
			{Source: "Referral", Count: 1},
		},
		totalRevenue: 9000,
		monthRevenue: 9000,
		newToday:     1,
	}
	svc, _ := newAnalyticsFixture(leads)
	svc.SetClock(func() time.Time { return time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC) })
	ctx := context.Background()

	first, err := svc.Dashboard(ctx, "u1", true)
	require.NoError(t, err)
	second, err := svc.Dashboard(ctx, "u1", true)
	require.NoError(t, err)

	// Two forced recomputations over unchanged data produce the same snapshot.
	require.Equal(t, 2, leads.computeCalls)
	assert.Equal(t, first, second)
}

func TestDashboardRecomputesAfterInvalidation(t *testing.T) {
	leads := &fakeLeadSource{newToday: 1}
	svc, store := newAnalyticsFixture(leads)
	ctx := context.Background()

	_, err := svc.Dashboard(ctx, "u1", false)
	require.NoError(t, err)

	// A lead mutation drops the owner's keys; the next read recomputes.
	leads.newToday = 7
	cache.InvalidateOwner(ctx, store, "u1")

	stats, err := svc.Dashboard(ctx, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.NewLeadsToday)
	assert.Equal(t, 2, leads.computeCalls)
}

func TestRecentActivitiesFlattenedAndCapped(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	l1 := &models.Lead{ID: primitive.NewObjectID(), Name: "One"}
	l2 := &models.Lead{ID: primitive.NewObjectID(), Name: "Two"}
	for i := 0; i < 15; i++ {
		l1.History = append(l1.History, models.HistoryEntry{
			Type: models.HistoryNote, Content: "n", Date: base.Add(time.Duration(i) * time.Hour),
		})
		l2.History = append(l2.History, models.HistoryEntry{
			Type: models.HistoryEmail, Content: "e", Date: base.Add(time.Duration(i)*time.Hour + 30*time.Minute),
		})
	}

	feed := RecentActivities([]*models.Lead{l1, l2}, 20)
	require.Len(t, feed, 20)

	for i := 1; i < len(feed); i++ {
		assert.False(t, feed[i].Date.After(feed[i-1].Date), "feed must be newest first")
	}
	// Newest entry overall is the lead Two entry at i=14.
	assert.Equal(t, "Two", feed[0].LeadName)
}

func TestStagnantLeads(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	old := now.Add(-96 * time.Hour)
	recent := now.Add(-time.Hour)

	fresh := &models.Lead{Name: "fresh", Status: models.StatusNew, LastEngagementDate: &recent, CreatedAt: old}
	stale := &models.Lead{Name: "stale", Status: models.StatusContacted, LastEngagementDate: &old, CreatedAt: old}
	neverEngaged := &models.Lead{Name: "never", Status: models.StatusNew, CreatedAt: old}
	wonOld := &models.Lead{Name: "won", Status: models.StatusWon, LastEngagementDate: &old, CreatedAt: old}
	lostOld := &models.Lead{Name: "lost", Status: models.StatusLost, CreatedAt: old}
	newButYoung := &models.Lead{Name: "young", Status: models.StatusNew, CreatedAt: now.Add(-time.Hour)}

	got := StagnantLeads([]*models.Lead{fresh, stale, neverEngaged, wonOld, lostOld, newButYoung}, now, 5)

	require.Len(t, got, 2)
	// Never-engaged leads sort before engaged ones.
	assert.Equal(t, "never", got[0].Name)
	assert.Equal(t, "stale", got[1].Name)
}

func TestStagnantLeadsBoundary(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	exactly := now.Add(-72 * time.Hour)
	justOver := now.Add(-72*time.Hour - time.Second)

	onCutoff := &models.Lead{Name: "on", Status: models.StatusNew, LastEngagementDate: &exactly}
	pastCutoff := &models.Lead{Name: "past", Status: models.StatusNew, LastEngagementDate: &justOver}

	got := StagnantLeads([]*models.Lead{onCutoff, pastCutoff}, now, 5)
	require.Len(t, got, 1)
	assert.Equal(t, "past", got[0].Name)
}

func TestStagnantLeadsLimit(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	leads := make([]*models.Lead, 0, 8)
	for i := 0; i < 8; i++ {
		engaged := now.Add(-time.Duration(100+i) * time.Hour)
		leads = append(leads, &models.Lead{Status: models.StatusContacted, LastEngagementDate: &engaged})
	}

	got := StagnantLeads(leads, now, 5)
	assert.Len(t, got, 5)
	// Most stagnant first: the later indexes have older engagement.
	assert.Equal(t, leads[7], got[0])
}
