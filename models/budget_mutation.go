// Package models contains domain entities and business models for the marketing operations service
package models

import (
	"time"
)

// BudgetMutation is the audit record of one budget pause and its scheduled
// reversal. Rows are written once and never updated; the scheduled revert
// carries its own payload and does not read this table.
type BudgetMutation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClientID   uint      `gorm:"index:idx_budget_mutations_client_id;not null" json:"client_id"`
	Client     *Client   `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`
	Campaign   string    `gorm:"size:512;not null" json:"campaign"`
	BudgetOld  float64   `gorm:"not null" json:"budget_old"`
	BudgetNew  float64   `gorm:"not null" json:"budget_new"`
	DateRevert time.Time `gorm:"not null" json:"date_revert"`
	DateName   string    `gorm:"size:64" json:"date_name"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_budget_mutations_created_at" json:"created_at"`
}

func (BudgetMutation) TableName() string {
	return "budget_mutations"
}

// BudgetMutationFilter represents filter criteria for budget mutation queries
type BudgetMutationFilter struct {
	ID            *uint
	ClientID      *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
