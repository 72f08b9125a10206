// Package businessflow contains the use cases of the point-of-sale system
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Identifier validation errors
	ErrInvalidMDN  = errors.New("MDN must be exactly 10 digits")
	ErrInvalidIMEI = errors.New("IMEI must be exactly 15 digits")

	// Account errors
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrCustomerNameRequired = errors.New("customer name is required")

	// Line errors
	ErrLineNotFound  = errors.New("line not found")
	ErrDuplicateMDN  = errors.New("a line with this MDN already exists")
	ErrDuplicateIMEI = errors.New("IMEI is already assigned to another line")

	// Inventory errors
	ErrDeviceNotFound        = errors.New("device not found")
	ErrNoAvailableIMEI       = errors.New("no unassigned IMEI left in inventory")
	ErrDeviceForSaleNotFound = errors.New("device for sale not found")
	ErrDeviceNotAvailable    = errors.New("device is not available")
	ErrDeviceLabelRequired   = errors.New("device label is required")

	// Catalog errors
	ErrPlanNotFound     = errors.New("plan not found")
	ErrInvalidLineCount = errors.New("line count must be at least 1")

	// Queue errors
	ErrQueueItemNotFound = errors.New("queue item not found")
	ErrReasonRequired    = errors.New("visit reason is required")

	// Operator errors
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrOperatorDisabled   = errors.New("operator login is not configured")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsInvalidMDN(err error) bool {
	return errors.Is(err, ErrInvalidMDN)
}

func IsInvalidIMEI(err error) bool {
	return errors.Is(err, ErrInvalidIMEI)
}

func IsCustomerNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound)
}

func IsCustomerNameRequired(err error) bool {
	return errors.Is(err, ErrCustomerNameRequired)
}

func IsLineNotFound(err error) bool {
	return errors.Is(err, ErrLineNotFound)
}

func IsDuplicateMDN(err error) bool {
	return errors.Is(err, ErrDuplicateMDN)
}

func IsDuplicateIMEI(err error) bool {
	return errors.Is(err, ErrDuplicateIMEI)
}

func IsDeviceNotFound(err error) bool {
	return errors.Is(err, ErrDeviceNotFound)
}

func IsNoAvailableIMEI(err error) bool {
	return errors.Is(err, ErrNoAvailableIMEI)
}

func IsDeviceForSaleNotFound(err error) bool {
	return errors.Is(err, ErrDeviceForSaleNotFound)
}

func IsDeviceNotAvailable(err error) bool {
	return errors.Is(err, ErrDeviceNotAvailable)
}

func IsDeviceLabelRequired(err error) bool {
	return errors.Is(err, ErrDeviceLabelRequired)
}

func IsPlanNotFound(err error) bool {
	return errors.Is(err, ErrPlanNotFound)
}

func IsInvalidLineCount(err error) bool {
	return errors.Is(err, ErrInvalidLineCount)
}

func IsQueueItemNotFound(err error) bool {
	return errors.Is(err, ErrQueueItemNotFound)
}

func IsReasonRequired(err error) bool {
	return errors.Is(err, ErrReasonRequired)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsOperatorDisabled(err error) bool {
	return errors.Is(err, ErrOperatorDisabled)
}
