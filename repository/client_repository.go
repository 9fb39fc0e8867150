// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/AiiMS-Group/landbot/models"
	"gorm.io/gorm"
)

// ClientRepositoryImpl implements ClientRepository interface
type ClientRepositoryImpl struct {
	*BaseRepository[models.Client, models.ClientFilter]
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &ClientRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Client, models.ClientFilter](db),
	}
}

// ByFreshSalesID retrieves a client by its CRM account ID
func (r *ClientRepositoryImpl) ByFreshSalesID(ctx context.Context, freshSalesID string) (*models.Client, error) {
	db := r.getDB(ctx)

	var client models.Client
	err := db.Where("freshsales_id = ?", freshSalesID).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find client by freshsales id %s: %w", freshSalesID, err)
	}

	return &client, nil
}

// FirstOrCreate returns the client linked to the CRM account, creating the
// link row when it does not exist yet.
func (r *ClientRepositoryImpl) FirstOrCreate(ctx context.Context, freshSalesID, name string) (*models.Client, error) {
	client, err := r.ByFreshSalesID(ctx, freshSalesID)
	if err != nil {
		return nil, err
	}
	if client != nil {
		return client, nil
	}

	client = &models.Client{
		FreshSalesID: freshSalesID,
		Name:         name,
	}
	if err := r.Save(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}
