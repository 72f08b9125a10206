package businessflow

import (
	"context"
	"errors"
	"log"

	"github.com/amirphl/carrier-pos/app/dto"
	"github.com/amirphl/carrier-pos/models"
	"github.com/amirphl/carrier-pos/repository"
	"github.com/amirphl/carrier-pos/utils"
	"gorm.io/gorm"
)

// LineFlow creates and edits lines while keeping MDNs and IMEIs unique across lines
type LineFlow interface {
	CreateLine(ctx context.Context, accountNumber int64, req *dto.CreateLineRequest, metadata *ClientMetadata) (*dto.LineMutationResponse, error)
	UpdateLine(ctx context.Context, mdn string, req *dto.UpdateLineRequest, metadata *ClientMetadata) (*dto.LineMutationResponse, error)
}

type LineFlowImpl struct {
	db           repository.DBProvider
	customerRepo repository.CustomerRepository
	lineRepo     repository.LineRepository
	deviceRepo   repository.DeviceRepository
	accountFlow  AccountFlow
}

func NewLineFlow(
	db repository.DBProvider,
	customerRepo repository.CustomerRepository,
	lineRepo repository.LineRepository,
	deviceRepo repository.DeviceRepository,
	accountFlow AccountFlow,
) LineFlow {
	return &LineFlowImpl{
		db:           db,
		customerRepo: customerRepo,
		lineRepo:     lineRepo,
		deviceRepo:   deviceRepo,
		accountFlow:  accountFlow,
	}
}

// CreateLine adds a line to an account. The MDN must be new and the IMEI, when given,
// must belong to an inventory device no other line holds.
func (f *LineFlowImpl) CreateLine(ctx context.Context, accountNumber int64, req *dto.CreateLineRequest, metadata *ClientMetadata) (_ *dto.LineMutationResponse, err error) {
	defer wrapError(&err, "LINE_CREATE_FAILED", "Failed to create line")

	if req == nil {
		return nil, NewBusinessError("INVALID_MDN", "MDN is required", ErrInvalidMDN)
	}
	mdn, err := parseMDN(req.MDN)
	if err != nil {
		return nil, err
	}
	imei, err := parseIMEI(utils.DerefString(req.IMEI))
	if err != nil {
		return nil, err
	}

	plan := utils.EmptyToNil(req.Plan)
	if plan == nil {
		plan = utils.ToPtr(models.DefaultPlanLabel)
	}

	line := &models.Line{
		AccountNumber: &accountNumber,
		Name:          utils.EmptyToNil(req.Name),
		IMEI:          imei,
		MDN:           mdn,
		Plan:          plan,
		Features:      cleanFeatures(req.Features),
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		customer, err := f.customerRepo.ByAccountNumber(txCtx, accountNumber)
		if err != nil {
			return err
		}
		if customer == nil {
			return NewBusinessError("CUSTOMER_NOT_FOUND", "Account not found", ErrCustomerNotFound)
		}

		exists, err := f.lineRepo.ExistsByMDN(txCtx, mdn)
		if err != nil {
			return err
		}
		if exists {
			return NewBusinessError("DUPLICATE_MDN", "A line with this MDN already exists", ErrDuplicateMDN)
		}

		if imei != nil {
			if err := f.checkDevice(txCtx, *imei); err != nil {
				return err
			}
			assigned, err := f.lineRepo.IMEIAssigned(txCtx, *imei)
			if err != nil {
				return err
			}
			if assigned {
				return NewBusinessError("DUPLICATE_IMEI", "IMEI is already assigned to another line", ErrDuplicateIMEI)
			}
		}

		return f.lineRepo.Save(txCtx, line)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = f.classifyDuplicate(ctx, mdn)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("line: created %s on account %d (imei=%s) %s", mdn, accountNumber, utils.DerefString(imei), metadata)
	return f.respond(ctx, accountNumber, mdn, "Line created successfully")
}

// UpdateLine replaces the editable fields of the line with mdn. Reassigning the IMEI the
// line already holds is allowed; taking one held by another line is not.
func (f *LineFlowImpl) UpdateLine(ctx context.Context, mdn string, req *dto.UpdateLineRequest, metadata *ClientMetadata) (_ *dto.LineMutationResponse, err error) {
	defer wrapError(&err, "LINE_UPDATE_FAILED", "Failed to update line")

	mdn, err = parseMDN(mdn)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = &dto.UpdateLineRequest{}
	}
	imei, err := parseIMEI(req.IMEI)
	if err != nil {
		return nil, err
	}

	var accountNumber *int64
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		line, err := f.lineRepo.ByMDN(txCtx, mdn)
		if err != nil {
			return err
		}
		if line == nil {
			return NewBusinessError("LINE_NOT_FOUND", "Line not found", ErrLineNotFound)
		}
		accountNumber = line.AccountNumber

		if imei != nil && utils.DerefString(line.IMEI) != *imei {
			if err := f.checkDevice(txCtx, *imei); err != nil {
				return err
			}
			inUse, err := f.lineRepo.IMEIInUse(txCtx, *imei, mdn)
			if err != nil {
				return err
			}
			if inUse {
				return NewBusinessError("DUPLICATE_IMEI", "IMEI is already assigned to another line", ErrDuplicateIMEI)
			}
		}

		return f.lineRepo.UpdateMutable(txCtx, mdn, repository.LineUpdate{
			Name:     utils.EmptyToNil(&req.Name),
			IMEI:     imei,
			Plan:     utils.EmptyToNil(&req.Plan),
			Features: cleanFeatures(req.Features),
		})
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = NewBusinessError("DUPLICATE_IMEI", "IMEI is already assigned to another line", ErrDuplicateIMEI)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("line: updated %s (imei=%s) %s", mdn, utils.DerefString(imei), metadata)
	if accountNumber == nil {
		return f.respondDetached(ctx, mdn)
	}
	return f.respond(ctx, *accountNumber, mdn, "Line updated successfully")
}

func (f *LineFlowImpl) checkDevice(ctx context.Context, imei string) error {
	device, err := f.deviceRepo.ByIMEI(ctx, imei)
	if err != nil {
		return err
	}
	if device == nil {
		return NewBusinessError("DEVICE_NOT_FOUND", "No device with this IMEI in inventory", ErrDeviceNotFound)
	}
	return nil
}

// classifyDuplicate maps a unique-key violation to the identifier that collided
func (f *LineFlowImpl) classifyDuplicate(ctx context.Context, mdn string) error {
	exists, err := f.lineRepo.ExistsByMDN(ctx, mdn)
	if err == nil && exists {
		return NewBusinessError("DUPLICATE_MDN", "A line with this MDN already exists", ErrDuplicateMDN)
	}
	return NewBusinessError("DUPLICATE_IMEI", "IMEI is already assigned to another line", ErrDuplicateIMEI)
}

// respond reloads the parent account so the caller sees fresh data
func (f *LineFlowImpl) respond(ctx context.Context, accountNumber int64, mdn, message string) (*dto.LineMutationResponse, error) {
	account, err := f.accountFlow.LoadAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	resp := &dto.LineMutationResponse{Message: message, Account: *account}
	for _, line := range account.Lines {
		if line.MDN == mdn {
			resp.Line = line
			break
		}
	}
	return resp, nil
}

// respondDetached serves lines that belong to no account
func (f *LineFlowImpl) respondDetached(ctx context.Context, mdn string) (*dto.LineMutationResponse, error) {
	line, err := f.lineRepo.ByMDN(ctx, mdn)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, NewBusinessError("LINE_NOT_FOUND", "Line not found", ErrLineNotFound)
	}
	return &dto.LineMutationResponse{
		Message: "Line updated successfully",
		Line:    ToLineDTO(*line, nil),
	}, nil
}
