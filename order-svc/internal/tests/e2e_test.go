package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	httpapi "kebab-orders/order-svc/internal/api/http"
	"kebab-orders/order-svc/internal/service"
	"kebab-orders/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryRepository keeps orders in insertion order and supports the
// exact-match filters the order service passes down.
type memoryRepository struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (m *memoryRepository) FindOrders(_ context.Context, filters map[string]any) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []domain.Order{}
	for _, order := range m.orders {
		raw, _ := json.Marshal(order)
		var fields map[string]any
		json.Unmarshal(raw, &fields)

		match := true
		for key, value := range filters {
			if fields[key] != value {
				match = false
			}
		}
		if match {
			out = append(out, order)
		}
	}
	return out, nil
}

func (m *memoryRepository) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.orders {
		if order.ID == id {
			found := order
			return &found, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *memoryRepository) InsertOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.orders {
		if existing.ID == order.ID {
			return domain.ErrDuplicateOrder
		}
	}
	m.orders = append(m.orders, *order)
	return nil
}

func (m *memoryRepository) UpdateOrderStatus(_ context.Context, id string, status domain.Status) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == id {
			m.orders[i].Status = status
			updated := m.orders[i]
			return &updated, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *memoryRepository) DeleteOrder(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, order := range m.orders {
		if order.ID == id {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return &order, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

type envelopeBody struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) envelopeBody {
	var envelope envelopeBody
	require.NoError(t, json.Unmarshal(body, &envelope))
	return envelope
}

func TestOrderLifecycle_EndToEnd(t *testing.T) {
	repository := &memoryRepository{}
	orders := service.NewOrderService(repository, nil, nil, nil, service.WithClock(clock))
	payments := service.NewPaymentService(nil, repository, "eur", service.PolicyReject, nil)
	router := httpapi.NewRouter(httpapi.NewHandler(orders, payments, zap.NewNop()), zap.NewNop())

	created := serve(router, http.MethodPost, "/api/orders",
		`{"id":"ORD-1700000000000","items":[{"id":"k1","name":"Kebab de Pollo","quantity":2,"price":5.5},{"id":"b1","name":"Bebida","quantity":1,"price":1.5}],"timestamp":"2024-01-01T11:50:00Z"}`)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())

	var order domain.Order
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, created.Body.Bytes()).Data, &order))
	assert.Equal(t, "12.50", order.Total)
	assert.Equal(t, domain.StatusPending, order.Status)

	duplicate := serve(router, http.MethodPost, "/api/orders",
		`{"id":"ORD-1700000000000","items":[{"id":"b1","name":"Bebida","quantity":1,"price":1.5}]}`)
	assert.Equal(t, http.StatusConflict, duplicate.Code)

	for _, status := range []string{"preparing", "ready", "delivered"} {
		updated := serve(router, http.MethodPut, "/api/orders", `{"id":"ORD-1700000000000","status":"`+status+`"}`)
		require.Equal(t, http.StatusOK, updated.Code, updated.Body.String())
	}

	backwards := serve(router, http.MethodPut, "/api/orders", `{"id":"ORD-1700000000000","status":"ready"}`)
	assert.Equal(t, http.StatusConflict, backwards.Code)

	board := serve(router, http.MethodGet, "/api/orders/board?start=2024-01-01T00:00:00Z&end=2024-01-01T23:59:59Z", "")
	require.Equal(t, http.StatusOK, board.Code)
	var buckets service.Board
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, board.Body.Bytes()).Data, &buckets))
	assert.Empty(t, buckets.KitchenActive)
	require.Len(t, buckets.Archived, 1)
	assert.Equal(t, "ORD-1700000000000", buckets.Archived[0].ID)

	deleted := serve(router, http.MethodDelete, "/api/orders?id=ORD-1700000000000", "")
	require.Equal(t, http.StatusOK, deleted.Code)
	var removed domain.Order
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, deleted.Body.Bytes()).Data, &removed))
	assert.Equal(t, domain.StatusDelivered, removed.Status)

	listed := serve(router, http.MethodGet, "/api/orders", "")
	require.Equal(t, http.StatusOK, listed.Code)
	var remaining []domain.Order
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, listed.Body.Bytes()).Data, &remaining))
	assert.Empty(t, remaining)

	again := serve(router, http.MethodDelete, "/api/orders?id=ORD-1700000000000", "")
	assert.Equal(t, http.StatusNotFound, again.Code)
}

func TestCreateOrder_EmptyItems_NoWrite(t *testing.T) {
	repository := &memoryRepository{}
	orders := service.NewOrderService(repository, nil, nil, nil)
	router := httpapi.NewRouter(httpapi.NewHandler(orders, nil, nil), zap.NewNop())

	recorder := serve(router, http.MethodPost, "/api/orders", `{"id":"ORD-1","items":[]}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.NotEmpty(t, decodeEnvelope(t, recorder.Body.Bytes()).Error)
	assert.Empty(t, repository.orders)
}

func TestPaymentIntent_AmountMismatch(t *testing.T) {
	repository := &memoryRepository{orders: []domain.Order{*storedOrder("ORD-1", domain.StatusPending)}}
	payments := service.NewPaymentService(nil, repository, "eur", service.PolicyReject, nil)
	router := httpapi.NewRouter(httpapi.NewHandler(nil, payments, nil), zap.NewNop())

	recorder := serve(router, http.MethodPost, "/api/payment-intent", `{"amount":999,"orderId":"ORD-1"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "does not match order total 1250")
}
