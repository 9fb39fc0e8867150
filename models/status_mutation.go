// Package models contains domain entities and business models for the marketing operations service
package models

import (
	"time"
)

// Campaign status labels as stored on audit rows.
const (
	CampaignStatusActive = "Active"
	CampaignStatusPaused = "Paused"
)

// StatusMutation is the audit record of one campaign status change
// (pause or enable) and, for pauses, the scheduled reversal date.
type StatusMutation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ClientID   uint      `gorm:"index:idx_status_mutations_client_id;not null" json:"client_id"`
	Client     *Client   `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`
	Campaign   string    `gorm:"size:512;not null" json:"campaign"`
	StatusOld  string    `gorm:"size:32;not null" json:"status_old"`
	StatusNew  string    `gorm:"size:32;not null" json:"status_new"`
	DateRevert time.Time `gorm:"not null" json:"date_revert"`
	DateName   string    `gorm:"size:64" json:"date_name"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_status_mutations_created_at" json:"created_at"`
}

func (StatusMutation) TableName() string {
	return "status_mutations"
}

// StatusMutationFilter represents filter criteria for status mutation queries
type StatusMutationFilter struct {
	ID            *uint
	ClientID      *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
