// Package models contains domain entities and business models for the marketing operations service
package models

import (
	"time"
)

// Client links a FreshSales CRM account to the mutation and statistic
// records this service owns for it.
type Client struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FreshSalesID string    `gorm:"size:64;uniqueIndex:idx_clients_freshsales_id;not null" json:"freshsales_id"`
	Name         string    `gorm:"size:255" json:"name"`
	CreatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// ClientFilter represents filter criteria for client queries
type ClientFilter struct {
	ID           *uint
	FreshSalesID *string
}
