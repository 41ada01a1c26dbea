package views

import (
	"context"
	"slices"
	"sync"
	"time"

	"kebab-orders/pkg/domain"

	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 5 * time.Second
	NoticeTTL           = 5 * time.Second
)

type OrderLister interface {
	List(ctx context.Context, filters map[string]string) ([]domain.Order, error)
}

type PatchKind int

const (
	PatchStatus PatchKind = iota
	PatchRemove
	PatchAdd
)

// Patch is a local change shown before the server confirms it.
type Patch struct {
	Kind    PatchKind
	OrderID string
	Status  domain.Status
	Order   domain.Order
}

type patchState int

const (
	patchInFlight patchState = iota
	patchAcked
	patchFailed
)

type pendingPatch struct {
	Patch
	state   patchState
	ackedAt time.Time
}

type Notice struct {
	Message string
	At      time.Time
}

// Store holds the last server snapshot of orders plus the optimistic
// patches not yet reflected by it. Views read through Orders.
type Store struct {
	source   OrderLister
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu       sync.Mutex
	snapshot []domain.Order
	patches  []*pendingPatch
	notice   *Notice
	changes  chan struct{}
}

type StoreOption func(*Store)

func WithInterval(d time.Duration) StoreOption {
	return func(s *Store) { s.interval = d }
}

func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func WithStoreLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

func NewStore(source OrderLister, opts ...StoreOption) *Store {
	s := &Store{
		source:   source,
		interval: DefaultPollInterval,
		now:      time.Now,
		logger:   zap.NewNop(),
		changes:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Changes signals after every state change. Signals coalesce.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

// Orders is the snapshot with the outstanding patches applied.
func (s *Store) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders := slices.Clone(s.snapshot)
	for _, p := range s.patches {
		orders = p.apply(orders)
	}
	return orders
}

// Notice returns the current notification while it is still fresh.
func (s *Store) Notice() (Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.notice == nil || s.now().Sub(s.notice.At) > NoticeTTL {
		return Notice{}, false
	}
	return *s.notice, true
}

// Refresh fetches the order list and reconciles the patches against it.
// On failure the previous state is kept and a notice is raised.
func (s *Store) Refresh(ctx context.Context) error {
	startedAt := s.now()

	orders, err := s.source.List(ctx, nil)
	if err != nil {
		s.logger.Warn("refresh failed", zap.Error(err))
		s.notify("could not load orders: " + err.Error())
		return err
	}

	s.mu.Lock()
	s.snapshot = orders
	kept := s.patches[:0]
	for _, p := range s.patches {
		if p.settled(orders, startedAt) {
			continue
		}
		kept = append(kept, p)
	}
	s.patches = kept
	s.mu.Unlock()

	s.signal()
	return nil
}

// Run refreshes immediately and then on every tick until ctx is done.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Mutate shows patch immediately and then runs call against the server.
// A failed call raises a notice. Its patch stays visible until the next
// successful refresh replaces it with the server state.
func (s *Store) Mutate(ctx context.Context, patch Patch, call func(ctx context.Context) error) error {
	pending := &pendingPatch{Patch: patch}

	s.mu.Lock()
	s.patches = append(s.patches, pending)
	s.mu.Unlock()
	s.signal()

	err := call(ctx)

	s.mu.Lock()
	if err != nil {
		pending.state = patchFailed
	} else {
		pending.state = patchAcked
		pending.ackedAt = s.now()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("mutation failed", zap.String("order_id", patch.OrderID), zap.Error(err))
		s.notify("could not update order " + patch.OrderID + ": " + err.Error())
	}
	return err
}

func (s *Store) notify(message string) {
	s.mu.Lock()
	s.notice = &Notice{Message: message, At: s.now()}
	s.mu.Unlock()
	s.signal()
}

func (s *Store) signal() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (p *pendingPatch) apply(orders []domain.Order) []domain.Order {
	idx := slices.IndexFunc(orders, func(o domain.Order) bool { return o.ID == p.OrderID })

	switch p.Kind {
	case PatchStatus:
		if idx >= 0 {
			orders[idx].Status = p.Status
		}
	case PatchRemove:
		if idx >= 0 {
			orders = slices.Delete(orders, idx, idx+1)
		}
	case PatchAdd:
		if idx < 0 {
			orders = append(orders, p.Order)
		}
	}
	return orders
}

// settled reports whether the snapshot makes the patch redundant: the server
// already shows it, the server call failed, or the server acknowledged it
// before this fetch started.
func (p *pendingPatch) settled(orders []domain.Order, fetchStartedAt time.Time) bool {
	switch p.state {
	case patchFailed:
		return true
	case patchAcked:
		if !p.ackedAt.After(fetchStartedAt) {
			return true
		}
	}

	idx := slices.IndexFunc(orders, func(o domain.Order) bool { return o.ID == p.OrderID })
	switch p.Kind {
	case PatchStatus:
		return idx < 0 || statusRank(orders[idx].Status) >= statusRank(p.Status)
	case PatchRemove:
		return idx < 0
	case PatchAdd:
		return idx >= 0
	}
	return true
}

func statusRank(status domain.Status) int {
	switch status {
	case domain.StatusPending:
		return 0
	case domain.StatusPreparing:
		return 1
	case domain.StatusReady:
		return 2
	case domain.StatusDelivered:
		return 3
	}
	return -1
}
