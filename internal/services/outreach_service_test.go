package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"salesor-api/internal/cache"
	"salesor-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type recordedOutreach struct {
	leadID    primitive.ObjectID
	entries   []models.HistoryEntry
	newStatus string
	engagedAt time.Time
}

// fakeOutreachStore holds leads by hex id and records every outreach write.
type fakeOutreachStore struct {
	mu      sync.Mutex
	leads   map[string]*models.Lead
	records []recordedOutreach
}

func newFakeOutreachStore(leads ...*models.Lead) *fakeOutreachStore {
	s := &fakeOutreachStore{leads: make(map[string]*models.Lead)}
	for _, lead := range leads {
		s.leads[lead.ID.Hex()] = lead
	}
	return s
}

func (s *fakeOutreachStore) FindByIDForOwner(_ context.Context, id, _ string) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead, ok := s.leads[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return lead, nil
}

func (s *fakeOutreachStore) RecordOutreach(_ context.Context, leadID primitive.ObjectID, entries []models.HistoryEntry, newStatus string, engagedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, recordedOutreach{leadID, entries, newStatus, engagedAt})
	return nil
}

func (s *fakeOutreachStore) recordFor(leadID primitive.ObjectID) *recordedOutreach {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].leadID == leadID {
			return &s.records[i]
		}
	}
	return nil
}

type fakeMailSender struct {
	mu   sync.Mutex
	sent []string
	fail map[string]error
}

func (f *fakeMailSender) Send(to, _, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.fail[to]; ok {
		return err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeWhatsAppSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeWhatsAppSender) Send(phone, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, phone)
	return nil
}

func newOutreachFixture(store *fakeOutreachStore) (*OutreachService, *fakeMailSender, *fakeWhatsAppSender, *cache.MemoryStore) {
	mail := &fakeMailSender{fail: map[string]error{}}
	wa := &fakeWhatsAppSender{}
	cacheStore := cache.NewMemoryStore()
	svc := NewOutreachService(store, mail, wa, cacheStore)
	return svc, mail, wa, cacheStore
}

func TestSendEmailAutoTransition(t *testing.T) {
	lead := &models.Lead{ID: primitive.NewObjectID(), Name: "Ada", Email: "ada@example.com", Status: models.StatusNew}
	store := newFakeOutreachStore(lead)
	svc, mail, _, _ := newOutreachFixture(store)

	actor := primitive.NewObjectID()
	err := svc.SendEmail(context.Background(), lead.ID.Hex(), "u1", "Hello", "body", actor)
	require.NoError(t, err)

	assert.Equal(t, []string{"ada@example.com"}, mail.sent)

	rec := store.recordFor(lead.ID)
	require.NotNil(t, rec)
	require.Len(t, rec.entries, 2)
	assert.Equal(t, models.HistoryEmail, rec.entries[0].Type)
	assert.Equal(t, "Email sent: Hello", rec.entries[0].Content)
	assert.Equal(t, models.HistoryStatusChange, rec.entries[1].Type)
	assert.Equal(t, "New → Contacted", rec.entries[1].Content)
	assert.Equal(t, models.StatusContacted, rec.newStatus)
	assert.Equal(t, actor, rec.entries[1].PerformedBy)
}

func TestSendEmailNoTransitionWhenContacted(t *testing.T) {
	lead := &models.Lead{ID: primitive.NewObjectID(), Email: "a@b.c", Status: models.StatusQualified}
	store := newFakeOutreachStore(lead)
	svc, _, _, _ := newOutreachFixture(store)

	err := svc.SendEmail(context.Background(), lead.ID.Hex(), "u1", "Hi", "b", primitive.NewObjectID())
	require.NoError(t, err)

	rec := store.recordFor(lead.ID)
	require.NotNil(t, rec)
	require.Len(t, rec.entries, 1)
	assert.Empty(t, rec.newStatus)
}

func TestSendEmailMissingAddress(t *testing.T) {
	lead := &models.Lead{ID: primitive.NewObjectID(), Status: models.StatusNew}
	store := newFakeOutreachStore(lead)
	svc, mail, _, _ := newOutreachFixture(store)

	err := svc.SendEmail(context.Background(), lead.ID.Hex(), "u1", "Hi", "b", primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNoEmailAddress)
	assert.Empty(t, mail.sent)
	assert.Nil(t, store.recordFor(lead.ID))
}

func TestSendEmailDeliveryFailureNotRecorded(t *testing.T) {
	lead := &models.Lead{ID: primitive.NewObjectID(), Email: "down@example.com", Status: models.StatusNew}
	store := newFakeOutreachStore(lead)
	svc, mail, _, _ := newOutreachFixture(store)
	mail.fail["down@example.com"] = errors.New("smtp refused")

	err := svc.SendEmail(context.Background(), lead.ID.Hex(), "u1", "Hi", "b", primitive.NewObjectID())
	require.Error(t, err)
	assert.Nil(t, store.recordFor(lead.ID))
}

func TestSendEmailInvalidatesCache(t *testing.T) {
	lead := &models.Lead{ID: primitive.NewObjectID(), Email: "a@b.c", Status: models.StatusNew}
	store := newFakeOutreachStore(lead)
	svc, _, _, cacheStore := newOutreachFixture(store)
	ctx := context.Background()

	require.NoError(t, cacheStore.Set(ctx, cache.LeadListKey("u1"), "[]", cache.LeadListTTL))
	require.NoError(t, cacheStore.Set(ctx, cache.AnalyticsKey("u1"), "{}", cache.AnalyticsTTL))

	require.NoError(t, svc.SendEmail(ctx, lead.ID.Hex(), "u1", "Hi", "b", primitive.NewObjectID()))

	_, ok, _ := cacheStore.Get(ctx, cache.LeadListKey("u1"))
	assert.False(t, ok)
	_, ok, _ = cacheStore.Get(ctx, cache.AnalyticsKey("u1"))
	assert.False(t, ok)
}

func TestLogWhatsAppFallsBackToPhone(t *testing.T) {
	lead := &models.Lead{ID: primitive.NewObjectID(), Phone: "+15550001", Status: models.StatusContacted}
	store := newFakeOutreachStore(lead)
	svc, _, wa, _ := newOutreachFixture(store)

	err := svc.LogWhatsApp(context.Background(), lead.ID.Hex(), "u1", "ping", primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, []string{"+15550001"}, wa.sent)

	rec := store.recordFor(lead.ID)
	require.NotNil(t, rec)
	assert.Equal(t, models.HistoryNote, rec.entries[0].Type)
	assert.Equal(t, "WhatsApp message sent: ping", rec.entries[0].Content)
}

func TestLogWhatsAppNoNumber(t *testing.T) {
	lead := &models.Lead{ID: primitive.NewObjectID(), Status: models.StatusNew}
	store := newFakeOutreachStore(lead)
	svc, _, _, _ := newOutreachFixture(store)

	err := svc.LogWhatsApp(context.Background(), lead.ID.Hex(), "u1", "ping", primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrNoPhoneNumber)
}

func TestBulkEmailPartialFailure(t *testing.T) {
	ok1 := &models.Lead{ID: primitive.NewObjectID(), Email: "one@example.com", Status: models.StatusNew}
	ok2 := &models.Lead{ID: primitive.NewObjectID(), Email: "two@example.com", Status: models.StatusContacted}
	noEmail := &models.Lead{ID: primitive.NewObjectID(), Status: models.StatusNew}
	store := newFakeOutreachStore(ok1, ok2, noEmail)
	svc, mail, _, _ := newOutreachFixture(store)

	result := svc.BulkEmail(context.Background(), "u1",
		[]string{ok1.ID.Hex(), ok2.ID.Hex(), noEmail.ID.Hex()}, "Hi", "b", primitive.NewObjectID())

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], noEmail.ID.Hex())
	assert.Len(t, mail.sent, 2)
}

func TestBulkEmailUnknownLead(t *testing.T) {
	known := &models.Lead{ID: primitive.NewObjectID(), Email: "a@b.c", Status: models.StatusNew}
	store := newFakeOutreachStore(known)
	svc, _, _, _ := newOutreachFixture(store)

	result := svc.BulkEmail(context.Background(), "u1",
		[]string{known.ID.Hex(), primitive.NewObjectID().Hex()}, "Hi", "b", primitive.NewObjectID())

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)
}

func TestBulkWhatsAppInvalidatesOnceOnAnySuccess(t *testing.T) {
	lead := &models.Lead{ID: primitive.NewObjectID(), WhatsApp: "+1999", Status: models.StatusNew}
	store := newFakeOutreachStore(lead)
	svc, _, _, cacheStore := newOutreachFixture(store)
	ctx := context.Background()

	require.NoError(t, cacheStore.Set(ctx, cache.AnalyticsKey("u1"), "{}", cache.AnalyticsTTL))

	result := svc.BulkWhatsApp(ctx, "u1",
		[]string{lead.ID.Hex(), primitive.NewObjectID().Hex()}, "ping", primitive.NewObjectID())

	assert.Equal(t, 1, result.SuccessCount)
	_, ok, _ := cacheStore.Get(ctx, cache.AnalyticsKey("u1"))
	assert.False(t, ok)
}

func TestBulkWhatsAppAllFailLeavesCache(t *testing.T) {
	store := newFakeOutreachStore()
	svc, _, _, cacheStore := newOutreachFixture(store)
	ctx := context.Background()

	require.NoError(t, cacheStore.Set(ctx, cache.AnalyticsKey("u1"), "{}", cache.AnalyticsTTL))

	result := svc.BulkWhatsApp(ctx, "u1", []string{primitive.NewObjectID().Hex()}, "ping", primitive.NewObjectID())

	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 1, result.FailCount)
	_, ok, _ := cacheStore.Get(ctx, cache.AnalyticsKey("u1"))
	assert.True(t, ok)
}

func TestOutreachEntriesTimestampsMatch(t *testing.T) {
	lead := &models.Lead{ID: primitive.NewObjectID(), Email: "a@b.c", Status: models.StatusNew}
	store := newFakeOutreachStore(lead)
	svc, _, _, _ := newOutreachFixture(store)

	frozen := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return frozen })

	require.NoError(t, svc.SendEmail(context.Background(), lead.ID.Hex(), "u1", "Hi", "b", primitive.NewObjectID()))

	rec := store.recordFor(lead.ID)
	require.NotNil(t, rec)
	assert.Equal(t, frozen, rec.engagedAt)
	for _, entry := range rec.entries {
		assert.Equal(t, frozen, entry.Date)
	}
}
