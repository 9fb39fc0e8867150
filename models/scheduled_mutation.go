// Package models contains domain entities and business models for the marketing operations service
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Scheduled mutation kinds
const (
	MutationKindBudgetAmount   = "budget_amount"
	MutationKindCampaignStatus = "campaign_status"
)

// Google Ads campaign status values carried by status mutations.
const (
	AdsStatusEnabled = "ENABLED"
	AdsStatusPaused  = "PAUSED"
)

// ScheduledMutation is a durable mutation task: it carries the full payload
// needed to apply a budget or status change to one ad account at or after
// NotBefore. Revert tasks are created in the same transaction as their
// audit record and survive process restarts; the revert scheduler polls
// this table for due rows.
type ScheduledMutation struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_scheduled_mutations_uuid;not null" json:"uuid"`
	ClientID      *uint          `gorm:"index:idx_scheduled_mutations_client_id" json:"client_id,omitempty"`
	Client        *Client        `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`
	Kind          string         `gorm:"size:32;not null" json:"kind"`
	AccountID     string         `gorm:"size:64;not null" json:"account_id"`
	BudgetID      *string        `gorm:"size:64" json:"budget_id,omitempty"`
	CampaignIDs   pq.StringArray `gorm:"type:text[]" json:"campaign_ids,omitempty"`
	BudgetAmount  *float64       `json:"budget_amount,omitempty"`
	Status        *string        `gorm:"size:32" json:"status,omitempty"`
	NotBefore     time.Time      `gorm:"not null;index:idx_scheduled_mutations_due" json:"not_before"`
	Attempts      int            `gorm:"not null;default:0" json:"attempts"`
	NextAttemptAt *time.Time     `gorm:"index:idx_scheduled_mutations_next_attempt" json:"next_attempt_at,omitempty"`
	ExecutedAt    *time.Time     `gorm:"index:idx_scheduled_mutations_executed_at" json:"executed_at,omitempty"`
	EscalatedAt   *time.Time     `json:"escalated_at,omitempty"`
	LastError     *string        `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ScheduledMutation) TableName() string {
	return "scheduled_mutations"
}

// IsPending reports whether the task still has to run.
func (m *ScheduledMutation) IsPending() bool {
	return m.ExecutedAt == nil && m.EscalatedAt == nil
}

// ScheduledMutationFilter represents filter criteria for scheduled mutation queries
type ScheduledMutationFilter struct {
	ID        *uint
	ClientID  *uint
	Kind      *string
	AccountID *string
	Pending   *bool
	DueBefore *time.Time
}
