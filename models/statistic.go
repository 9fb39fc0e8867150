// Package models contains domain entities and business models for the marketing operations service
package models

import (
	"time"
)

// Statistic is a durable snapshot of one computed metric bundle for a
// client and date range. Created once per report invocation, immutable
// thereafter.
type Statistic struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ClientID    uint      `gorm:"index:idx_statistics_client_id;not null" json:"client_id"`
	Client      *Client   `gorm:"foreignKey:ClientID;references:ID" json:"client,omitempty"`
	Spendings   float64   `gorm:"not null" json:"spendings"`
	Clicks      int64     `gorm:"not null" json:"clicks"`
	Answered    int64     `gorm:"not null" json:"answered"`
	Missed      int64     `gorm:"not null" json:"missed"`
	CostPerCall float64   `gorm:"not null" json:"cost_per_call"`
	ClickToCall float64   `gorm:"not null" json:"click_to_call"`
	DateName    string    `gorm:"size:64;not null" json:"date_name"`
	DateFrom    time.Time `gorm:"not null" json:"date_from"`
	DateTo      time.Time `gorm:"not null" json:"date_to"`
	CreatedAt   time.Time `gorm:"default:CURRENT_TIMESTAMP;index:idx_statistics_created_at" json:"created_at"`
}

func (Statistic) TableName() string {
	return "statistics"
}

// StatisticFilter represents filter criteria for statistic queries
type StatisticFilter struct {
	ID            *uint
	ClientID      *uint
	DateName      *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
