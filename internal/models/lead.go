package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead statuses form the pipeline columns. Transitions are not constrained,
// but every change must be recorded as a StatusChange history entry.
const (
	StatusNew       = "New"
	StatusContacted = "Contacted"
	StatusQualified = "Qualified"
	StatusProposal  = "Proposal"
	StatusLost      = "Lost"
	StatusWon       = "Won"
)

// History entry types.
const (
	HistoryEmail        = "Email"
	HistoryStatusChange = "StatusChange"
	HistoryNote         = "Note"
	HistoryCall         = "Call"
)

// ValidStatus reports whether s is one of the pipeline statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusProposal, StatusLost, StatusWon:
		return true
	}
	return false
}

type Lead struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name               string             `json:"name" bson:"name"`
	Email              string             `json:"email" bson:"email"`
	Phone              string             `json:"phone,omitempty" bson:"phone,omitempty"`
	WhatsApp           string             `json:"whatsapp,omitempty" bson:"whatsapp,omitempty"`
	Company            string             `json:"company,omitempty" bson:"company,omitempty"`
	Status             string             `json:"status" bson:"status"`
	Source             string             `json:"source" bson:"source"`
	Value              float64            `json:"value" bson:"value"`
	AssignedTo         primitive.ObjectID `json:"assignedTo" bson:"assignedTo"`
	EmailOpens         int                `json:"emailOpens" bson:"emailOpens"`
	EmailReplies       int                `json:"emailReplies" bson:"emailReplies"`
	LastEngagementDate *time.Time         `json:"lastEngagementDate,omitempty" bson:"lastEngagementDate,omitempty"`
	History            []HistoryEntry     `json:"history" bson:"history"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// HistoryEntry is an immutable record of an action taken on a lead. The
// history array is append-only: entries are never edited or reordered.
type HistoryEntry struct {
	Type        string             `json:"type" bson:"type"`
	Content     string             `json:"content" bson:"content"`
	Date        time.Time          `json:"date" bson:"date"`
	PerformedBy primitive.ObjectID `json:"performedBy,omitempty" bson:"performedBy,omitempty"`
}

type CreateLeadRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Phone    string  `json:"phone"`
	WhatsApp string  `json:"whatsapp"`
	Company  string  `json:"company"`
	Status   string  `json:"status"`
	Source   string  `json:"source"`
	Value    float64 `json:"value" binding:"min=0"`
}

// UpdateLeadRequest uses pointers so that absent fields are left untouched.
type UpdateLeadRequest struct {
	Name     *string  `json:"name"`
	Email    *string  `json:"email"`
	Phone    *string  `json:"phone"`
	WhatsApp *string  `json:"whatsapp"`
	Company  *string  `json:"company"`
	Status   *string  `json:"status"`
	Source   *string  `json:"source"`
	Value    *float64 `json:"value"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

type SendEmailRequest struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

type BulkEmailRequest struct {
	IDs     []string `json:"ids" binding:"required"`
	Subject string   `json:"subject" binding:"required"`
	Body    string   `json:"body" binding:"required"`
}

type SendWhatsAppRequest struct {
	Message string `json:"message" binding:"required"`
}

type BulkWhatsAppRequest struct {
	IDs     []string `json:"ids" binding:"required"`
	Message string   `json:"message" binding:"required"`
}

// CaptureLeadRequest is the unauthenticated public form payload.
type CaptureLeadRequest struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Phone   string `json:"phone" form:"phone"`
	Company string `json:"company" form:"company"`
	Message string `json:"message" form:"message"`
	Source  string `json:"source" form:"source"`
}

// BulkResult reports per-item outcomes of a bulk operation. One item failing
// never aborts the rest of the batch.
type BulkResult struct {
	SuccessCount int      `json:"successCount"`
	FailCount    int      `json:"failCount"`
	Errors       []string `json:"errors,omitempty"`
}
