package order

import (
	"context"
	"errors"
	"log"
)

var (
	ErrMissingUser     = errors.New("userId is required")
	ErrEmptyItems      = errors.New("order must contain at least one item")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// IsValidationError reports whether err should surface as a caller fault
// rather than a server fault.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingUser) ||
		errors.Is(err, ErrEmptyItems) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrUnknownProduct)
}

// EventPublisher announces committed orders to downstream services.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *Order) error
}

// Service is the order pipeline: it validates checkout input before any
// write happens, delegates the transactional work to the repository, and
// publishes order.created afterwards.
type Service struct {
	repo      Repository
	publisher EventPublisher
	logger    *log.Logger
}

// NewService creates the pipeline. publisher may be nil when eventing is
// not configured.
func NewService(repo Repository, publisher EventPublisher, logger *log.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

func (s *Service) PlaceOrder(ctx context.Context, userID string, items []Item) (*Order, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if it.ProductID <= 0 {
			return nil, ErrUnknownProduct
		}
	}

	o, err := s.repo.PlaceOrder(ctx, userID, items)
	if err != nil {
		return nil, err
	}

	// The order is durable at this point. A publish failure must not fail
	// the checkout; it is reported as an operator-facing inconsistency.
	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, o); err != nil {
			s.logger.Printf("consistency warning: order %s committed but order.created publish failed: %v", o.ID, err)
		}
	}

	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	return s.repo.ListByUser(ctx, userID)
}
