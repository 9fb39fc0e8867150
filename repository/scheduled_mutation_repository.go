// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AiiMS-Group/landbot/models"
	"gorm.io/gorm"
)

// ScheduledMutationRepositoryImpl implements ScheduledMutationRepository interface
type ScheduledMutationRepositoryImpl struct {
	*BaseRepository[models.ScheduledMutation, models.ScheduledMutationFilter]
}

// NewScheduledMutationRepository creates a new scheduled mutation repository
func NewScheduledMutationRepository(db *gorm.DB) ScheduledMutationRepository {
	return &ScheduledMutationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ScheduledMutation, models.ScheduledMutationFilter](db),
	}
}

// Update persists changes to an existing scheduled mutation
func (r *ScheduledMutationRepositoryImpl) Update(ctx context.Context, mutation *models.ScheduledMutation) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(mutation).Error
	if err != nil {
		return fmt.Errorf("failed to update scheduled mutation: %w", err)
	}

	return nil
}

// ListDue returns pending tasks whose NotBefore has passed and whose
// backoff window is open, oldest first.
func (r *ScheduledMutationRepositoryImpl) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ScheduledMutation, error) {
	db := r.getDB(ctx)

	var mutations []*models.ScheduledMutation
	err := db.Where("executed_at IS NULL").
		Where("escalated_at IS NULL").
		Where("not_before <= ?", now).
		Where("next_attempt_at IS NULL OR next_attempt_at <= ?", now).
		Order("not_before ASC").
		Limit(limit).
		Find(&mutations).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list due scheduled mutations: %w", err)
	}

	return mutations, nil
}
