package businessflow

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/amirphl/carrier-pos/app/dto"
	"github.com/amirphl/carrier-pos/models"
	"github.com/amirphl/carrier-pos/repository"
	"github.com/amirphl/carrier-pos/utils"
)

// AccountFlow covers customer lookup by MDN, account loading and customer creation
type AccountFlow interface {
	LookupCustomerName(ctx context.Context, mdn string) (*dto.CustomerNameResponse, error)
	FindCustomer(ctx context.Context, mdn string) (*dto.AccountResponse, error)
	LoadAccount(ctx context.Context, accountNumber int64) (*dto.AccountResponse, error)
	CreateCustomer(ctx context.Context, req *dto.CreateCustomerRequest, metadata *ClientMetadata) (*dto.CustomerDTO, error)
}

type AccountFlowImpl struct {
	customerRepo repository.CustomerRepository
	lineRepo     repository.LineRepository
	deviceRepo   repository.DeviceRepository
}

func NewAccountFlow(customerRepo repository.CustomerRepository, lineRepo repository.LineRepository, deviceRepo repository.DeviceRepository) AccountFlow {
	return &AccountFlowImpl{
		customerRepo: customerRepo,
		lineRepo:     lineRepo,
		deviceRepo:   deviceRepo,
	}
}

// LookupCustomerName returns the owner's name for the check-in keypad. No match is not an error.
func (f *AccountFlowImpl) LookupCustomerName(ctx context.Context, mdn string) (_ *dto.CustomerNameResponse, err error) {
	defer wrapError(&err, "CUSTOMER_LOOKUP_FAILED", "Failed to look up customer")

	mdn, err = parseMDN(mdn)
	if err != nil {
		return nil, err
	}

	name, err := f.customerRepo.NameByMDN(ctx, mdn)
	if err != nil {
		return nil, err
	}

	return &dto.CustomerNameResponse{
		MDN:   mdn,
		Found: name != nil,
		Name:  name,
	}, nil
}

// FindCustomer returns the account owning the line with mdn
func (f *AccountFlowImpl) FindCustomer(ctx context.Context, mdn string) (_ *dto.AccountResponse, err error) {
	defer wrapError(&err, "CUSTOMER_LOOKUP_FAILED", "Failed to look up customer")

	mdn, err = parseMDN(mdn)
	if err != nil {
		return nil, err
	}

	customer, err := f.customerRepo.ByMDN(ctx, mdn)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, NewBusinessError("CUSTOMER_NOT_FOUND", "No customer found for this MDN", ErrCustomerNotFound)
	}

	return f.buildAccount(ctx, customer)
}

// LoadAccount returns the customer and every line of the account
func (f *AccountFlowImpl) LoadAccount(ctx context.Context, accountNumber int64) (_ *dto.AccountResponse, err error) {
	defer wrapError(&err, "ACCOUNT_LOAD_FAILED", "Failed to load account")

	customer, err := f.customerRepo.ByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, NewBusinessError("CUSTOMER_NOT_FOUND", "Account not found", ErrCustomerNotFound)
	}

	return f.buildAccount(ctx, customer)
}

// CreateCustomer inserts a customer; the store assigns the account number
func (f *AccountFlowImpl) CreateCustomer(ctx context.Context, req *dto.CreateCustomerRequest, metadata *ClientMetadata) (_ *dto.CustomerDTO, err error) {
	defer wrapError(&err, "CUSTOMER_CREATE_FAILED", "Failed to create customer")

	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, NewBusinessError("CUSTOMER_NAME_REQUIRED", "Customer name is required", ErrCustomerNameRequired)
	}

	customer := &models.Customer{
		Name:   strings.TrimSpace(req.Name),
		Email:  utils.EmptyToNil(req.Email),
		Device: utils.EmptyToNil(req.Device),
	}
	if err = f.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	log.Printf("account: created customer %d (%s) %s", customer.AccountNumber, customer.Name, metadata)
	result := ToCustomerDTO(*customer)
	return &result, nil
}

func (f *AccountFlowImpl) buildAccount(ctx context.Context, customer *models.Customer) (*dto.AccountResponse, error) {
	lines, err := f.lineRepo.ListByAccount(ctx, customer.AccountNumber)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LineDTO, 0, len(lines))
	for _, line := range lines {
		label, err := f.deviceLabel(ctx, line.IMEI)
		if err != nil {
			return nil, err
		}
		items = append(items, ToLineDTO(*line, label))
	}

	return &dto.AccountResponse{
		Customer:  ToCustomerDTO(*customer),
		Lines:     items,
		LineCount: len(items),
	}, nil
}

func (f *AccountFlowImpl) deviceLabel(ctx context.Context, imei *string) (*string, error) {
	if imei == nil || *imei == "" {
		return nil, nil
	}
	device, err := f.deviceRepo.ByIMEI(ctx, *imei)
	if err != nil || device == nil {
		return nil, err
	}
	return device.Device, nil
}

// wrapError turns an unclassified error into a BusinessError; classified ones pass through
func wrapError(err *error, code, message string) {
	if *err == nil {
		return
	}
	var be *BusinessError
	if errors.As(*err, &be) {
		return
	}
	*err = NewBusinessError(code, message, *err)
}
