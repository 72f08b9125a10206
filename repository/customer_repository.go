// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/carrier-pos/models"
	"gorm.io/gorm"
)

// CustomerRepositoryImpl implements CustomerRepository interface
type CustomerRepositoryImpl struct {
	*BaseRepository[models.Customer, models.CustomerFilter]
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(provider DBProvider) CustomerRepository {
	return &CustomerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Customer, models.CustomerFilter](provider),
	}
}

// ByID retrieves a customer by account number
func (r *CustomerRepositoryImpl) ByID(ctx context.Context, id int64) (*models.Customer, error) {
	return r.byID(ctx, id)
}

// ByAccountNumber retrieves a customer by account number
func (r *CustomerRepositoryImpl) ByAccountNumber(ctx context.Context, accountNumber int64) (*models.Customer, error) {
	return r.byID(ctx, accountNumber)
}

// ByMDN retrieves the customer that owns the line with the given MDN
func (r *CustomerRepositoryImpl) ByMDN(ctx context.Context, mdn string) (*models.Customer, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}

	var customers []*models.Customer
	err = r.joinLines(db).
		Distinct("customers.*").
		Where("lines.mdn = ?", mdn).
		Limit(1).
		Find(&customers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find customer by mdn: %w", err)
	}
	if len(customers) == 0 {
		return nil, nil
	}
	return customers[0], nil
}

// NameByMDN retrieves only the name of the customer owning the line with the given MDN
func (r *CustomerRepositoryImpl) NameByMDN(ctx context.Context, mdn string) (*string, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	err = r.joinLines(db).
		Where("lines.mdn = ?", mdn).
		Limit(1).
		Pluck("customers.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find customer name by mdn: %w", err)
	}
	if len(names) == 0 {
		return nil, nil
	}
	return &names[0], nil
}

func (r *CustomerRepositoryImpl) joinLines(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Customer{}).
		Joins("JOIN lines ON lines.account_number = customers.account_number")
}

// applyFilter applies filter criteria to a GORM query
func (r *CustomerRepositoryImpl) applyFilter(query *gorm.DB, filter models.CustomerFilter) *gorm.DB {
	if filter.AccountNumber != nil {
		query = query.Where("account_number = ?", *filter.AccountNumber)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	return query
}

// ByFilter retrieves customers based on filter criteria
func (r *CustomerRepositoryImpl) ByFilter(ctx context.Context, filter models.CustomerFilter, orderBy string, limit, offset int) ([]*models.Customer, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}
	query := r.applyFilter(db.Model(&models.Customer{}), filter)

	if orderBy == "" {
		orderBy = "account_number ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var customers []*models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to find customers: %w", err)
	}
	return customers, nil
}

// Count returns the number of customers matching the filter
func (r *CustomerRepositoryImpl) Count(ctx context.Context, filter models.CustomerFilter) (int64, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.applyFilter(db.Model(&models.Customer{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count customers: %w", err)
	}
	return count, nil
}

// Exists checks if any customer matching the filter exists
func (r *CustomerRepositoryImpl) Exists(ctx context.Context, filter models.CustomerFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
