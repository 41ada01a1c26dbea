package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"kebab-orders/pkg/domain"
	"kebab-orders/pkg/lifecycle"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// filterable top-level order fields
var filterKeys = map[string]bool{
	"id":            true,
	"status":        true,
	"total":         true,
	"timestamp":     true,
	"notation":      true,
	"customerName":  true,
	"customerPhone": true,
	"paymentMethod": true,
	"isDelivery":    true,
}

// BoardOrder is an order as shown on the kitchen board.
type BoardOrder struct {
	domain.Order
	ElapsedMinutes int             `json:"elapsedMinutes"`
	AllowedNext    []domain.Status `json:"allowedNext"`
}

type Board struct {
	KitchenActive    []BoardOrder `json:"kitchenActive"`
	ReadyForDelivery []BoardOrder `json:"readyForDelivery"`
	Archived         []BoardOrder `json:"archived"`
}

type OrderService struct {
	repository  OrderRepository
	marker      OrderMarker
	publisher   EventPublisher
	qrGenerator QRGenerator

	policy      lifecycle.Policy
	totalPolicy AmountPolicy
	logger      *zap.Logger
	now         func() time.Time
	lists       singleflight.Group
}

type Option func(*OrderService)

func WithPolicy(policy lifecycle.Policy) Option {
	return func(s *OrderService) { s.policy = policy }
}

func WithTotalPolicy(policy AmountPolicy) Option {
	return func(s *OrderService) { s.totalPolicy = policy }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *OrderService) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

// NewOrderService builds the order service. marker, publisher and
// qrGenerator may be nil.
func NewOrderService(repository OrderRepository, marker OrderMarker, publisher EventPublisher, qrGenerator QRGenerator, opts ...Option) *OrderService {
	s := &OrderService{
		repository:  repository,
		marker:      marker,
		publisher:   publisher,
		qrGenerator: qrGenerator,
		policy:      lifecycle.DefaultPolicy,
		totalPolicy: PolicyReject,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the orders matching every filter. Concurrent calls with the
// same filters share one store query.
func (s *OrderService) List(ctx context.Context, filters map[string]string) ([]domain.Order, error) {
	query := make(map[string]any, len(filters))
	for key, value := range filters {
		if !filterKeys[key] {
			return nil, domain.NewValidationError("unknown filter %q", key)
		}
		if key == "isDelivery" {
			isDelivery, err := strconv.ParseBool(value)
			if err != nil {
				return nil, domain.NewValidationError("isDelivery must be true or false")
			}
			query[key] = isDelivery
			continue
		}
		query[key] = value
	}

	// joined callers must not fail because the first one went away
	shared := context.WithoutCancel(ctx)
	orders, err, _ := s.lists.Do(listKey(filters), func() (any, error) {
		return s.repository.FindOrders(shared, query)
	})
	if err != nil {
		return nil, err
	}
	return orders.([]domain.Order), nil
}

func listKey(filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		b.WriteString(strconv.Quote(key))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(filters[key]))
		b.WriteByte('&')
	}
	return b.String()
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, domain.NewValidationError("order id is required")
	}
	return s.repository.GetOrder(ctx, id)
}

// Create validates the order, fills server side defaults and stores it.
// Nothing is written when validation fails.
func (s *OrderService) Create(ctx context.Context, order *domain.Order) error {
	if err := validateOrder(order); err != nil {
		return err
	}

	total := lifecycle.ComputeTotal(order.Items)
	if order.Total != "" {
		given, err := decimal.NewFromString(order.Total)
		if err != nil {
			return domain.NewValidationError("total %q is not a number", order.Total)
		}
		if !given.Equal(decimal.RequireFromString(total)) {
			if s.totalPolicy != PolicyCorrect {
				return domain.NewValidationError("total %s does not match items total %s", order.Total, total)
			}
			s.logger.Warn("correcting order total",
				zap.String("order_id", order.ID),
				zap.String("given", order.Total),
				zap.String("computed", total))
		}
	}
	order.Total = total

	if order.ID == "" {
		order.ID = "ORD-" + uuid.NewString()
	}
	if order.Timestamp.IsZero() {
		order.Timestamp = s.now().UTC()
	}
	order.Status = domain.StatusPending

	if s.marker != nil {
		reserved, err := s.marker.Reserve(ctx, order.ID)
		if err != nil {
			s.logger.Warn("order marker unavailable", zap.String("order_id", order.ID), zap.Error(err))
		} else if !reserved {
			return domain.ErrDuplicateOrder
		}
	}

	if err := s.repository.InsertOrder(ctx, order); err != nil {
		if s.marker != nil && !errors.Is(err, domain.ErrDuplicateOrder) {
			s.releaseMarker(ctx, order.ID)
		}
		return err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("total", order.Total),
		zap.Bool("delivery", order.IsDelivery))
	s.publish(ctx, domain.EventOrderCreated, *order)

	return nil
}

// releaseMarker frees the duplicate guard of id even when the request
// context is already cancelled.
func (s *OrderService) releaseMarker(ctx context.Context, id string) {
	if err := s.marker.Release(context.WithoutCancel(ctx), id); err != nil {
		s.logger.Warn("failed to release order marker", zap.String("order_id", id), zap.Error(err))
	}
}

func validateOrder(order *domain.Order) error {
	if len(order.Items) == 0 {
		return domain.NewValidationError("order must contain at least one item")
	}
	for i, item := range order.Items {
		if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.Name) == "" {
			return domain.NewValidationError("item %d must have an id and a name", i)
		}
		if item.Quantity <= 0 {
			return domain.NewValidationError("item %s must have a positive quantity", item.ID)
		}
		if item.Price.IsNegative() {
			return domain.NewValidationError("item %s must not have a negative price", item.ID)
		}
	}
	if order.Status != "" && order.Status != domain.StatusPending {
		return domain.NewValidationError("new orders must be pending, got %q", order.Status)
	}
	if order.PaymentMethod != "" && !order.PaymentMethod.Valid() {
		return domain.NewValidationError("unknown payment method %q", order.PaymentMethod)
	}
	if order.IsDelivery {
		if strings.TrimSpace(order.CustomerName) == "" {
			return domain.NewValidationError("customer name is required for delivery")
		}
		if strings.TrimSpace(order.CustomerPhone) == "" {
			return domain.NewValidationError("customer phone is required for delivery")
		}
		if order.PaymentMethod == "" {
			return domain.NewValidationError("payment method is required for delivery")
		}
	}
	return nil
}

// UpdateStatus moves an order forward. Concurrent updates are last write wins.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	if id == "" {
		return nil, domain.NewValidationError("order id is required")
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("unknown status %q", status)
	}

	current, err := s.repository.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
	}

	updated, err := s.repository.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(status)))
	s.publish(ctx, domain.EventStatusChanged, *updated)

	return updated, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, domain.NewValidationError("order id is required")
	}

	deleted, err := s.repository.DeleteOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.marker != nil {
		s.releaseMarker(ctx, id)
	}

	s.logger.Info("order deleted", zap.String("order_id", id))
	s.publish(ctx, domain.EventOrderDeleted, *deleted)

	return deleted, nil
}

// BoardRange limits the archive column. A named Preset wins over the
// explicit bounds; a nil bound is open.
type BoardRange struct {
	Preset string
	Start  *time.Time
	End    *time.Time
}

// Board groups all orders into the kitchen buckets. Presets and elapsed
// minutes are resolved against the same clock reading.
func (s *OrderService) Board(ctx context.Context, rng BoardRange) (*Board, error) {
	now := s.now()

	start, end := rng.Start, rng.End
	if rng.Preset != "" {
		from, to, ok := lifecycle.PresetRange(rng.Preset, now)
		if !ok {
			return nil, domain.NewValidationError("unknown range %q", rng.Preset)
		}
		start, end = &from, &to
	}

	orders, err := s.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	buckets := lifecycle.Partition(orders)

	return &Board{
		KitchenActive:    s.boardOrders(buckets.KitchenActive, now),
		ReadyForDelivery: s.boardOrders(buckets.ReadyForDelivery, now),
		Archived:         s.boardOrders(lifecycle.FilterByDate(buckets.Archived, start, end), now),
	}, nil
}

func (s *OrderService) boardOrders(orders []domain.Order, now time.Time) []BoardOrder {
	out := make([]BoardOrder, 0, len(orders))
	for _, order := range orders {
		out = append(out, BoardOrder{
			Order:          order,
			ElapsedMinutes: lifecycle.ElapsedMinutes(order.Timestamp, now),
			AllowedNext:    s.policy.AllowedNext(order.Status),
		})
	}
	return out
}

// CheckoutDelivery stores a delivery order and returns the page the
// customer continues on.
func (s *OrderService) CheckoutDelivery(ctx context.Context, order *domain.Order) (string, error) {
	order.IsDelivery = true
	if err := s.Create(ctx, order); err != nil {
		return "", err
	}
	return RedirectFor(order), nil
}

func RedirectFor(order *domain.Order) string {
	if order.PaymentMethod == domain.PaymentCash {
		return "/cash?orderId=" + url.QueryEscape(order.ID)
	}
	return "/payment?orderId=" + url.QueryEscape(order.ID)
}

func (s *OrderService) PaymentQRCode(ctx context.Context, id string) ([]byte, error) {
	if s.qrGenerator == nil {
		return nil, errors.New("qr code generation is disabled")
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.qrGenerator.Generate(order.ID)
}

func (s *OrderService) publish(ctx context.Context, eventType domain.EventType, order domain.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, domain.NewOrderEvent(eventType, order, s.now())); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("type", string(eventType)),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}
