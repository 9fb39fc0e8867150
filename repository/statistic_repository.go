// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"github.com/AiiMS-Group/landbot/models"
	"gorm.io/gorm"
)

// StatisticRepositoryImpl implements StatisticRepository interface
type StatisticRepositoryImpl struct {
	*BaseRepository[models.Statistic, models.StatisticFilter]
}

// NewStatisticRepository creates a new statistic repository
func NewStatisticRepository(db *gorm.DB) StatisticRepository {
	return &StatisticRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Statistic, models.StatisticFilter](db),
	}
}
