// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/AiiMS-Group/landbot/models"
)

// ClientRepository manages local CRM account links
type ClientRepository interface {
	ByID(ctx context.Context, id uint) (*models.Client, error)
	ByFreshSalesID(ctx context.Context, freshSalesID string) (*models.Client, error)
	FirstOrCreate(ctx context.Context, freshSalesID, name string) (*models.Client, error)
	Save(ctx context.Context, client *models.Client) error
}

// BudgetMutationRepository persists budget pause audit records
type BudgetMutationRepository interface {
	Save(ctx context.Context, mutation *models.BudgetMutation) error
}

// StatusMutationRepository persists status change audit records
type StatusMutationRepository interface {
	Save(ctx context.Context, mutation *models.StatusMutation) error
}

// StatisticRepository persists computed metric bundles
type StatisticRepository interface {
	Save(ctx context.Context, statistic *models.Statistic) error
}

// ScheduledMutationRepository is the durable store for pending mutation
// tasks, most importantly the delayed budget/status reverts.
type ScheduledMutationRepository interface {
	Save(ctx context.Context, mutation *models.ScheduledMutation) error
	Update(ctx context.Context, mutation *models.ScheduledMutation) error
	// ListDue returns pending tasks whose NotBefore has passed and whose
	// backoff window (NextAttemptAt) is open, oldest first.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledMutation, error)
}
