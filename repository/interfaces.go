// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/carrier-pos/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id int64) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CustomerRepository defines operations for customers
type CustomerRepository interface {
	Repository[models.Customer, models.CustomerFilter]
	ByAccountNumber(ctx context.Context, accountNumber int64) (*models.Customer, error)
	// ByMDN returns the customer owning the line with mdn
	ByMDN(ctx context.Context, mdn string) (*models.Customer, error)
	// NameByMDN returns only the owner's name, for the check-in preview
	NameByMDN(ctx context.Context, mdn string) (*string, error)
}

// LineRepository defines operations for lines
type LineRepository interface {
	Repository[models.Line, models.LineFilter]
	ByMDN(ctx context.Context, mdn string) (*models.Line, error)
	ListByAccount(ctx context.Context, accountNumber int64) ([]*models.Line, error)
	ExistsByMDN(ctx context.Context, mdn string) (bool, error)
	// IMEIInUse reports whether a line other than excludeMDN carries imei
	IMEIInUse(ctx context.Context, imei, excludeMDN string) (bool, error)
	// IMEIAssigned reports whether any line carries imei
	IMEIAssigned(ctx context.Context, imei string) (bool, error)
	// AssignedIMEIs returns every non-null IMEI found on a line
	AssignedIMEIs(ctx context.Context) ([]string, error)
	// UpdateMutable writes name, imei, plan and features of the line with mdn; mdn itself never changes
	UpdateMutable(ctx context.Context, mdn string, update LineUpdate) error
}

// LineUpdate carries the mutable columns of a line. Nil pointers are written as NULL.
type LineUpdate struct {
	Name     *string
	IMEI     *string
	Plan     *string
	Features models.FeatureList
}

// DeviceRepository defines read operations for the device inventory
type DeviceRepository interface {
	Repository[models.Device, models.DeviceFilter]
	ByIMEI(ctx context.Context, imei string) (*models.Device, error)
	ListAll(ctx context.Context) ([]*models.Device, error)
	// AllIMEIs returns every device IMEI in storage order
	AllIMEIs(ctx context.Context) ([]string, error)
}

// DeviceForSaleRepository defines operations for the device shop catalog
type DeviceForSaleRepository interface {
	Repository[models.DeviceForSale, models.DeviceForSaleFilter]
	ListAll(ctx context.Context) ([]*models.DeviceForSale, error)
	ListAvailable(ctx context.Context) ([]*models.DeviceForSale, error)
	SearchAvailable(ctx context.Context, query string) ([]*models.DeviceForSale, error)
	Update(ctx context.Context, device *models.DeviceForSale) error
	Delete(ctx context.Context, id int64) error
}
