// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/carrier-pos/models"
	"gorm.io/gorm"
)

// DeviceForSaleRepositoryImpl implements DeviceForSaleRepository interface
type DeviceForSaleRepositoryImpl struct {
	*BaseRepository[models.DeviceForSale, models.DeviceForSaleFilter]
}

// NewDeviceForSaleRepository creates a new device shop repository
func NewDeviceForSaleRepository(provider DBProvider) DeviceForSaleRepository {
	return &DeviceForSaleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.DeviceForSale, models.DeviceForSaleFilter](provider),
	}
}

// ByID retrieves a device for sale by its ID
func (r *DeviceForSaleRepositoryImpl) ByID(ctx context.Context, id int64) (*models.DeviceForSale, error) {
	return r.byID(ctx, id)
}

// ListAll retrieves the whole catalog ordered by label
func (r *DeviceForSaleRepositoryImpl) ListAll(ctx context.Context) ([]*models.DeviceForSale, error) {
	return r.ByFilter(ctx, models.DeviceForSaleFilter{}, "", 0, 0)
}

// ListAvailable retrieves available devices ordered by label
func (r *DeviceForSaleRepositoryImpl) ListAvailable(ctx context.Context) ([]*models.DeviceForSale, error) {
	available := true
	return r.ByFilter(ctx, models.DeviceForSaleFilter{IsAvailable: &available}, "", 0, 0)
}

// SearchAvailable retrieves available devices whose label contains query, ignoring case
func (r *DeviceForSaleRepositoryImpl) SearchAvailable(ctx context.Context, query string) ([]*models.DeviceForSale, error) {
	available := true
	filter := models.DeviceForSaleFilter{IsAvailable: &available}
	if q := strings.TrimSpace(query); q != "" {
		filter.Search = &q
	}
	return r.ByFilter(ctx, filter, "", 0, 0)
}

// Update writes every column of an existing device for sale
func (r *DeviceForSaleRepositoryImpl) Update(ctx context.Context, device *models.DeviceForSale) (err error) {
	if device == nil {
		return errors.New("device for sale payload is nil")
	}
	if device.ID == 0 {
		return errors.New("device for sale ID is required for update")
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finishWrite(db, shouldCommit, &err)

	available := device.IsAvailable == nil || *device.IsAvailable
	updates := map[string]any{
		"device":       device.Device,
		"price":        device.Price,
		"imageUrl":     device.ImageURL,
		"is_available": available,
	}

	result := db.Model(&models.DeviceForSale{}).
		Where("id = ?", device.ID).
		Updates(updates)
	if result.Error != nil {
		err = fmt.Errorf("failed to update device for sale %d: %w", device.ID, result.Error)
		return err
	}
	if result.RowsAffected == 0 {
		err = fmt.Errorf("device for sale %d: %w", device.ID, ErrNoRowsUpdated)
		return err
	}
	return nil
}

// Delete removes a device for sale by ID
func (r *DeviceForSaleRepositoryImpl) Delete(ctx context.Context, id int64) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finishWrite(db, shouldCommit, &err)

	result := db.Delete(&models.DeviceForSale{}, id)
	if result.Error != nil {
		err = fmt.Errorf("failed to delete device for sale %d: %w", id, result.Error)
		return err
	}
	if result.RowsAffected == 0 {
		err = fmt.Errorf("device for sale %d: %w", id, ErrNoRowsUpdated)
		return err
	}
	return nil
}

func (r *DeviceForSaleRepositoryImpl) applyFilter(query *gorm.DB, filter models.DeviceForSaleFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.IsAvailable != nil {
		query = query.Where("is_available = ?", *filter.IsAvailable)
	}
	if filter.Search != nil {
		query = query.Where(`LOWER(device) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(*filter.Search))+"%")
	}
	return query
}

// ByFilter retrieves devices for sale based on filter criteria
func (r *DeviceForSaleRepositoryImpl) ByFilter(ctx context.Context, filter models.DeviceForSaleFilter, orderBy string, limit, offset int) ([]*models.DeviceForSale, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}
	query := r.applyFilter(db.Model(&models.DeviceForSale{}), filter)

	if orderBy == "" {
		orderBy = "device ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var devices []*models.DeviceForSale
	if err := query.Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("failed to find devices for sale: %w", err)
	}
	return devices, nil
}

// Count returns the number of devices for sale matching the filter
func (r *DeviceForSaleRepositoryImpl) Count(ctx context.Context, filter models.DeviceForSaleFilter) (int64, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.applyFilter(db.Model(&models.DeviceForSale{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count devices for sale: %w", err)
	}
	return count, nil
}

// Exists checks if any device for sale matching the filter exists
func (r *DeviceForSaleRepositoryImpl) Exists(ctx context.Context, filter models.DeviceForSaleFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes s match literally inside a LIKE pattern using '\' as the escape character
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
