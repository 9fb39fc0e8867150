// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"github.com/AiiMS-Group/landbot/models"
	"gorm.io/gorm"
)

// BudgetMutationRepositoryImpl implements BudgetMutationRepository interface
type BudgetMutationRepositoryImpl struct {
	*BaseRepository[models.BudgetMutation, models.BudgetMutationFilter]
}

// NewBudgetMutationRepository creates a new budget mutation repository
func NewBudgetMutationRepository(db *gorm.DB) BudgetMutationRepository {
	return &BudgetMutationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.BudgetMutation, models.BudgetMutationFilter](db),
	}
}

// StatusMutationRepositoryImpl implements StatusMutationRepository interface
type StatusMutationRepositoryImpl struct {
	*BaseRepository[models.StatusMutation, models.StatusMutationFilter]
}

// NewStatusMutationRepository creates a new status mutation repository
func NewStatusMutationRepository(db *gorm.DB) StatusMutationRepository {
	return &StatusMutationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.StatusMutation, models.StatusMutationFilter](db),
	}
}
