package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"salesor-api/internal/cache"
	"salesor-api/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoEmailAddress = errors.New("lead has no email address")
	ErrNoPhoneNumber  = errors.New("lead has no whatsapp number")
)

// OutreachStore is the slice of the lead repository outreach writes through.
type OutreachStore interface {
	FindByIDForOwner(ctx context.Context, id, userID string) (*models.Lead, error)
	RecordOutreach(ctx context.Context, leadID primitive.ObjectID, entries []models.HistoryEntry, newStatus string, engagedAt time.Time) error
}

// OutreachService sends email and WhatsApp outreach to leads, recording each
// action in the lead's history and applying the single automatic pipeline
// rule: any outreach to a New lead moves it to Contacted.
type OutreachService struct {
	store OutreachStore
	mail  MailSender
	wa    WhatsAppSender
	cache cache.Store
	now   func() time.Time
}

func NewOutreachService(store OutreachStore, mail MailSender, wa WhatsAppSender, cacheStore cache.Store) *OutreachService {
	return &OutreachService{
		store: store,
		mail:  mail,
		wa:    wa,
		cache: cacheStore,
		now:   time.Now,
	}
}

// SetClock overrides the service clock for tests.
func (s *OutreachService) SetClock(now func() time.Time) {
	s.now = now
}

// outreachEntries builds the history entries an outreach action appends: the
// outreach entry itself, followed by a StatusChange entry when the
// New → Contacted auto-transition fires. newStatus is empty when the status
// is unchanged.
func outreachEntries(lead *models.Lead, entry models.HistoryEntry) (entries []models.HistoryEntry, newStatus string) {
	entries = []models.HistoryEntry{entry}
	if lead.Status == models.StatusNew {
		newStatus = models.StatusContacted
		entries = append(entries, models.HistoryEntry{
			Type:        models.HistoryStatusChange,
			Content:     models.StatusNew + " → " + models.StatusContacted,
			Date:        entry.Date,
			PerformedBy: entry.PerformedBy,
		})
	}
	return entries, newStatus
}

// SendEmail delivers one email to an owner's lead and records it.
func (s *OutreachService) SendEmail(ctx context.Context, leadID, userID, subject, body string, performedBy primitive.ObjectID) error {
	if err := s.sendEmailNoInvalidate(ctx, leadID, userID, subject, body, performedBy); err != nil {
		return err
	}
	cache.InvalidateOwner(ctx, s.cache, userID)
	return nil
}

func (s *OutreachService) sendEmailNoInvalidate(ctx context.Context, leadID, userID, subject, body string, performedBy primitive.ObjectID) error {
	lead, err := s.store.FindByIDForOwner(ctx, leadID, userID)
	if err != nil {
		return err
	}
	if lead.Email == "" {
		return ErrNoEmailAddress
	}

	if err := s.mail.Send(lead.Email, subject, body, ""); err != nil {
		return fmt.Errorf("send email to %s: %w", lead.Email, err)
	}

	now := s.now()
	entries, newStatus := outreachEntries(lead, models.HistoryEntry{
		Type:        models.HistoryEmail,
		Content:     "Email sent: " + subject,
		Date:        now,
		PerformedBy: performedBy,
	})
	return s.store.RecordOutreach(ctx, lead.ID, entries, newStatus, now)
}

// LogWhatsApp sends one WhatsApp message to an owner's lead and records it as
// a Note history entry.
func (s *OutreachService) LogWhatsApp(ctx context.Context, leadID, userID, message string, performedBy primitive.ObjectID) error {
	if err := s.logWhatsAppNoInvalidate(ctx, leadID, userID, message, performedBy); err != nil {
		return err
	}
	cache.InvalidateOwner(ctx, s.cache, userID)
	return nil
}

func (s *OutreachService) logWhatsAppNoInvalidate(ctx context.Context, leadID, userID, message string, performedBy primitive.ObjectID) error {
	lead, err := s.store.FindByIDForOwner(ctx, leadID, userID)
	if err != nil {
		return err
	}

	phone := lead.WhatsApp
	if phone == "" {
		phone = lead.Phone
	}
	if phone == "" {
		return ErrNoPhoneNumber
	}

	if err := s.wa.Send(phone, message); err != nil {
		return fmt.Errorf("send whatsapp to %s: %w", phone, err)
	}

	now := s.now()
	entries, newStatus := outreachEntries(lead, models.HistoryEntry{
		Type:        models.HistoryNote,
		Content:     "WhatsApp message sent: " + message,
		Date:        now,
		PerformedBy: performedBy,
	})
	return s.store.RecordOutreach(ctx, lead.ID, entries, newStatus, now)
}

// BulkEmail fans out one email per lead concurrently. A failed send is
// counted and reported; it never aborts the rest of the batch.
func (s *OutreachService) BulkEmail(ctx context.Context, userID string, leadIDs []string, subject, body string, performedBy primitive.ObjectID) *models.BulkResult {
	return s.fanOut(ctx, userID, leadIDs, func(ctx context.Context, leadID string) error {
		return s.sendEmailNoInvalidate(ctx, leadID, userID, subject, body, performedBy)
	})
}

// BulkWhatsApp fans out one WhatsApp message per lead concurrently.
func (s *OutreachService) BulkWhatsApp(ctx context.Context, userID string, leadIDs []string, message string, performedBy primitive.ObjectID) *models.BulkResult {
	return s.fanOut(ctx, userID, leadIDs, func(ctx context.Context, leadID string) error {
		return s.logWhatsAppNoInvalidate(ctx, leadID, userID, message, performedBy)
	})
}

func (s *OutreachService) fanOut(ctx context.Context, userID string, leadIDs []string, send func(ctx context.Context, leadID string) error) *models.BulkResult {
	itemErrs := make([]error, len(leadIDs))

	var g errgroup.Group
	for i, leadID := range leadIDs {
		g.Go(func() error {
			// Item failures are collected per slot, never returned, so one
			// bad lead cannot cancel its siblings.
			itemErrs[i] = send(ctx, leadID)
			return nil
		})
	}
	g.Wait()

	result := &models.BulkResult{}
	for i, err := range itemErrs {
		if err != nil {
			result.FailCount++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", leadIDs[i], err))
		} else {
			result.SuccessCount++
		}
	}

	if result.SuccessCount > 0 {
		cache.InvalidateOwner(ctx, s.cache, userID)
	}
	return result
}
