package businessflow

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/amirphl/carrier-pos/app/dto"
	"github.com/amirphl/carrier-pos/events"
	"github.com/amirphl/carrier-pos/models"
	"github.com/amirphl/carrier-pos/utils"
	"github.com/google/uuid"
)

// QueueFlow handles check-in submission and the operator's view of the service queue
type QueueFlow interface {
	CheckIn(ctx context.Context, req *dto.CheckInRequest, metadata *ClientMetadata) (*dto.CheckInResponse, error)
	List(ctx context.Context, now time.Time) (*dto.QueueListResponse, error)
	Assist(ctx context.Context, id string, metadata *ClientMetadata) (*dto.AssistResponse, error)
	Remove(ctx context.Context, id string, metadata *ClientMetadata) error
}

// ServiceQueue is the in-memory queue the flow reads and resolves
type ServiceQueue interface {
	Items() []models.QueueItem
	Get(id uuid.UUID) (models.QueueItem, bool)
	Assist(id uuid.UUID) (models.QueueItem, bool)
	Remove(id uuid.UUID) bool
}

// EventPublisher broadcasts check-in and resolution events
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

type QueueFlowImpl struct {
	queue       ServiceQueue
	publisher   EventPublisher
	accountFlow AccountFlow
}

func NewQueueFlow(queue ServiceQueue, publisher EventPublisher, accountFlow AccountFlow) QueueFlow {
	return &QueueFlowImpl{
		queue:       queue,
		publisher:   publisher,
		accountFlow: accountFlow,
	}
}

// CheckIn announces a walk-in. The queue resolves the customer on its own; an MDN
// with no customer is accepted here and dropped by the queue. The entry ID is
// assigned here so every bridged terminal files the customer under the same ID.
func (f *QueueFlowImpl) CheckIn(ctx context.Context, req *dto.CheckInRequest, metadata *ClientMetadata) (*dto.CheckInResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_MDN", "MDN is required", ErrInvalidMDN)
	}
	mdn, err := parseMDN(req.MDN)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, NewBusinessError("REASON_REQUIRED", "Visit reason is required", ErrReasonRequired)
	}

	id := uuid.New()
	f.publisher.Publish(ctx, events.CheckIn{ID: id, MDN: mdn, Reason: reason})
	f.publisher.Publish(ctx, events.Reset{})

	log.Printf("checkin: %s for %q %s", mdn, reason, metadata)
	return &dto.CheckInResponse{
		Message: "Check-in received",
		QueueID: id.String(),
		MDN:     mdn,
		Reason:  reason,
	}, nil
}

func (f *QueueFlowImpl) List(ctx context.Context, now time.Time) (*dto.QueueListResponse, error) {
	items := f.queue.Items()
	resp := &dto.QueueListResponse{
		Items: make([]dto.QueueItemDTO, 0, len(items)),
		Count: len(items),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, ToQueueItemDTO(item, now))
	}
	return resp, nil
}

// Assist serves the entry with id: the account is loaded first so a store failure
// leaves the customer waiting.
func (f *QueueFlowImpl) Assist(ctx context.Context, id string, metadata *ClientMetadata) (*dto.AssistResponse, error) {
	itemID, err := parseQueueID(id)
	if err != nil {
		return nil, err
	}
	item, ok := f.queue.Get(itemID)
	if !ok {
		return nil, queueItemNotFound()
	}

	account, err := f.accountFlow.LoadAccount(ctx, item.Customer.AccountNumber)
	if err != nil {
		return nil, err
	}

	item, ok = f.queue.Assist(itemID)
	if !ok {
		return nil, queueItemNotFound()
	}
	f.publisher.Publish(ctx, events.Resolved{ID: itemID})

	log.Printf("queue: assisting %s (account %d) %s", item.Customer.Name, item.Customer.AccountNumber, metadata)
	return &dto.AssistResponse{
		Item:    ToQueueItemDTO(item, utils.UTCNow()),
		Account: *account,
	}, nil
}

func (f *QueueFlowImpl) Remove(ctx context.Context, id string, metadata *ClientMetadata) error {
	itemID, err := parseQueueID(id)
	if err != nil {
		return err
	}
	if !f.queue.Remove(itemID) {
		return queueItemNotFound()
	}
	f.publisher.Publish(ctx, events.Resolved{ID: itemID})
	log.Printf("queue: removed %s %s", itemID, metadata)
	return nil
}

func parseQueueID(id string) (uuid.UUID, error) {
	itemID, err := utils.ParseUUID(id)
	if err != nil {
		return uuid.Nil, queueItemNotFound()
	}
	return itemID, nil
}

func queueItemNotFound() error {
	return NewBusinessError("QUEUE_ITEM_NOT_FOUND", "Queue entry not found", ErrQueueItemNotFound)
}
