package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusCount - count of leads in one pipeline status
type StatusCount struct {
	Status string `json:"status" bson:"_id"`
	Count  int    `json:"count" bson:"count"`
}

// WeeklyPoint - per-day bucket for leads created in the trailing 7 days
type WeeklyPoint struct {
	Date    string  `json:"date" bson:"_id"` // YYYY-MM-DD format
	Leads   int     `json:"leads" bson:"leads"`
	Won     int     `json:"won" bson:"won"`
	Revenue float64 `json:"revenue" bson:"revenue"`
}

// SourceCount - count of leads from one acquisition source
type SourceCount struct {
	Source string `json:"source" bson:"_id"`
	Count  int    `json:"count" bson:"count"`
}

// SourceConversion - conversion performance of one acquisition source
type SourceConversion struct {
	Source         string  `json:"source" bson:"_id"`
	TotalLeads     int     `json:"totalLeads" bson:"totalLeads"`
	WonLeads       int     `json:"wonLeads" bson:"wonLeads"`
	TotalRevenue   float64 `json:"totalRevenue" bson:"totalRevenue"`
	ConversionRate float64 `json:"conversionRate" bson:"conversionRate"`
}

// Activity - one flattened lead history entry for the activity feed
type Activity struct {
	LeadID      primitive.ObjectID `json:"leadId"`
	LeadName    string             `json:"leadName"`
	Type        string             `json:"type"`
	Content     string             `json:"content"`
	Date        time.Time          `json:"date"`
	PerformedBy primitive.ObjectID `json:"performedBy,omitempty"`
}

// ScoreBreakdown - the three components behind a lead's score
type ScoreBreakdown struct {
	OpenScore  int `json:"openScore"`
	ReplyScore int `json:"replyScore"`
	ValueScore int `json:"valueScore"`
}

// ScoredLead - a lead ranked by engagement/value priority
type ScoredLead struct {
	Lead           *Lead          `json:"lead"`
	Score          int            `json:"score"` // 0-100
	ScoreBreakdown ScoreBreakdown `json:"scoreBreakdown"`
}

// DashboardStats - complete analytics snapshot for one owner
type DashboardStats struct {
	TotalLeads        int                `json:"totalLeads"`
	NewLeadsToday     int                `json:"newLeadsToday"`
	TotalRevenue      float64            `json:"totalRevenue"`
	ConversionRate    float64            `json:"conversionRate"`
	LeadsByStatus     []StatusCount      `json:"leadsByStatus"`
	WeeklyPerformance []WeeklyPoint      `json:"weeklyPerformance"`
	SourceBreakdown   []SourceCount      `json:"sourceBreakdown"`
	SourceConversion  []SourceConversion `json:"sourceConversion"`
	RecentActivities  []Activity         `json:"recentActivities"`
	InactiveLeads     []*Lead            `json:"inactiveLeads"`
	TopScoredLeads    []ScoredLead       `json:"topScoredLeads"`
	MonthlyTarget     float64            `json:"monthlyTarget"`
	MonthlyRevenue    float64            `json:"monthlyRevenue"`
	GeneratedAt       time.Time          `json:"generatedAt"`
}
