package views

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"kebab-orders/pkg/domain"
	"kebab-orders/pkg/lifecycle"
)

type OrderMutator interface {
	UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error)
	Delete(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
}

// Card is one order on the kitchen dashboard.
type Card struct {
	domain.Order
	ElapsedMinutes int
	AllowedNext    []domain.Status
}

type DashboardView struct {
	KitchenActive    []Card
	ReadyForDelivery []Card
	Archived         []Card
}

// Dashboard groups the store's orders into the kitchen buckets and issues
// status changes and cancellations.
type Dashboard struct {
	store  *Store
	api    OrderMutator
	policy lifecycle.Policy
	now    func() time.Time

	mu     sync.Mutex
	preset string
	start  *time.Time
	end    *time.Time
}

func NewDashboard(store *Store, api OrderMutator, policy lifecycle.Policy, now func() time.Time) *Dashboard {
	if now == nil {
		now = time.Now
	}
	return &Dashboard{
		store:  store,
		api:    api,
		policy: policy,
		now:    now,
		preset: lifecycle.PresetToday,
	}
}

// SetPreset limits the archive to a named range. An empty name shows the
// whole archive.
func (d *Dashboard) SetPreset(name string) error {
	if name != "" {
		if _, _, ok := lifecycle.PresetRange(name, d.now()); !ok {
			return domain.NewValidationError("unknown range %q", name)
		}
	}
	d.mu.Lock()
	d.preset = name
	d.start, d.end = nil, nil
	d.mu.Unlock()

	d.store.signal()
	return nil
}

// SetRange limits the archive to explicit bounds, either of which may be nil.
func (d *Dashboard) SetRange(start, end *time.Time) {
	d.mu.Lock()
	d.preset = ""
	d.start, d.end = start, end
	d.mu.Unlock()

	d.store.signal()
}

func (d *Dashboard) archiveBounds(now time.Time) (*time.Time, *time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.preset == "" {
		return d.start, d.end
	}
	start, end, _ := lifecycle.PresetRange(d.preset, now)
	return &start, &end
}

func (d *Dashboard) View() DashboardView {
	now := d.now()
	buckets := lifecycle.Partition(d.store.Orders())
	start, end := d.archiveBounds(now)

	return DashboardView{
		KitchenActive:    d.cards(buckets.KitchenActive, now),
		ReadyForDelivery: d.cards(buckets.ReadyForDelivery, now),
		Archived:         d.cards(lifecycle.FilterByDate(buckets.Archived, start, end), now),
	}
}

func (d *Dashboard) cards(orders []domain.Order, now time.Time) []Card {
	cards := make([]Card, 0, len(orders))
	for _, order := range orders {
		cards = append(cards, Card{
			Order:          order,
			ElapsedMinutes: lifecycle.ElapsedMinutes(order.Timestamp, now),
			AllowedNext:    d.policy.AllowedNext(order.Status),
		})
	}
	return cards
}

// Advance moves an order to status. Moves the policy rejects never reach
// the server; the server still has the final word on the rest.
func (d *Dashboard) Advance(ctx context.Context, id string, status domain.Status) error {
	order, ok := d.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	if !d.policy.CanTransition(order.Status, status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, status)
	}

	patch := Patch{Kind: PatchStatus, OrderID: id, Status: status}
	return d.store.Mutate(ctx, patch, func(ctx context.Context) error {
		_, err := d.api.UpdateStatus(ctx, id, status)
		return err
	})
}

func (d *Dashboard) Deliver(ctx context.Context, id string) error {
	return d.Advance(ctx, id, domain.StatusDelivered)
}

// Cancel deletes an order that has not been delivered yet.
func (d *Dashboard) Cancel(ctx context.Context, id string) error {
	order, ok := d.find(id)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	if order.Status == domain.StatusDelivered {
		return fmt.Errorf("%w: delivered orders cannot be cancelled", domain.ErrInvalidTransition)
	}

	patch := Patch{Kind: PatchRemove, OrderID: id}
	return d.store.Mutate(ctx, patch, func(ctx context.Context) error {
		_, err := d.api.Delete(ctx, id)
		return err
	})
}

// CreateOrder places the cart as a counter order. The order shows up on the
// board right away and the cart is emptied once the server accepts it.
func (d *Dashboard) CreateOrder(ctx context.Context, cart *Cart, notation string) (*domain.Order, error) {
	if cart.Empty() {
		return nil, domain.NewValidationError("missing items")
	}

	now := d.now().UTC()
	order := domain.Order{
		ID:        fmt.Sprintf("ORD-%d", now.UnixMilli()),
		Items:     cart.Lines(),
		Total:     cart.Total(),
		Status:    domain.StatusPending,
		Timestamp: now,
		Notation:  notation,
	}

	var created *domain.Order
	patch := Patch{Kind: PatchAdd, OrderID: order.ID, Order: order}
	err := d.store.Mutate(ctx, patch, func(ctx context.Context) error {
		var err error
		created, err = d.api.Create(ctx, &order)
		return err
	})
	if err != nil {
		return nil, err
	}

	cart.Reset()
	return created, nil
}

func (d *Dashboard) find(id string) (domain.Order, bool) {
	orders := d.store.Orders()
	idx := slices.IndexFunc(orders, func(o domain.Order) bool { return o.ID == id })
	if idx < 0 {
		return domain.Order{}, false
	}
	return orders[idx], true
}
