package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpapi "kebab-orders/order-svc/internal/api/http"
	"kebab-orders/order-svc/internal/mocks"
	"kebab-orders/order-svc/internal/service"
	"kebab-orders/pkg/domain"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestRouter(orders *mocks.OrderServiceInterface, payments *mocks.PaymentServiceInterface) *mux.Router {
	handler := &httpapi.Handler{Orders: orders, Payments: payments}
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHandler_createOrder(t *testing.T) {
	mockSvc := mocks.NewOrderServiceInterface(t)
	router := setupTestRouter(mockSvc, nil)

	tests := []struct {
		name         string
		payload      string
		prepareMocks func()
		expectedCode int
		expectedBody string
	}{
		{
			name:    "success",
			payload: `{"id":"ORD-1","items":[{"id":"k1","name":"Kebab de Pollo","quantity":2,"price":5.5}]}`,
			prepareMocks: func() {
				mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(o *domain.Order) bool {
					return o.ID == "ORD-1" && o.Items[0].Price.String() == "5.5"
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*domain.Order).Total = "11.00"
				}).Return(nil).Once()
			},
			expectedCode: http.StatusCreated,
			expectedBody: `"total":"11.00"`,
		},
		{
			name:         "invalid_json",
			payload:      `bad json`,
			prepareMocks: func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:    "validation_error",
			payload: `{"items":[]}`,
			prepareMocks: func() {
				mockSvc.On("Create", mock.Anything, mock.Anything).
					Return(domain.NewValidationError("order must contain at least one item")).Once()
			},
			expectedCode: http.StatusBadRequest,
			expectedBody: `"error":"order must contain at least one item"`,
		},
		{
			name:    "duplicate",
			payload: `{"id":"ORD-1","items":[{"id":"k1","name":"Kebab","quantity":1,"price":"5.50"}]}`,
			prepareMocks: func() {
				mockSvc.On("Create", mock.Anything, mock.Anything).Return(domain.ErrDuplicateOrder).Once()
			},
			expectedCode: http.StatusConflict,
		},
		{
			name:    "store_error_echoed",
			payload: `{"id":"ORD-1","items":[{"id":"k1","name":"Kebab","quantity":1,"price":"5.50"}]}`,
			prepareMocks: func() {
				mockSvc.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: "connection refused",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.prepareMocks()
			recorder := serve(router, http.MethodPost, "/api/orders", testCase.payload)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
			if testCase.expectedBody != "" {
				assert.Contains(t, recorder.Body.String(), testCase.expectedBody)
			}
		})
	}
}

func TestHandler_listOrders(t *testing.T) {
	mockSvc := mocks.NewOrderServiceInterface(t)
	router := setupTestRouter(mockSvc, nil)

	mockSvc.On("List", mock.Anything, map[string]string{"status": "ready"}).
		Return([]domain.Order{*storedOrder("ORD-1", domain.StatusReady)}, nil).Once()

	recorder := serve(router, http.MethodGet, "/api/orders?status=ready", "")
	assert.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Message string         `json:"message"`
		Data    []domain.Order `json:"data"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, "Orders retrieved", body.Message)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "12.50", body.Data[0].Total)
}

func TestHandler_updateOrderStatus(t *testing.T) {
	mockSvc := mocks.NewOrderServiceInterface(t)
	router := setupTestRouter(mockSvc, nil)

	tests := []struct {
		name         string
		payload      string
		prepareMocks func()
		expectedCode int
	}{
		{
			name:    "success",
			payload: `{"id":"ORD-1","status":"ready"}`,
			prepareMocks: func() {
				mockSvc.On("UpdateStatus", mock.Anything, "ORD-1", domain.StatusReady).
					Return(storedOrder("ORD-1", domain.StatusReady), nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "missing_status",
			payload:      `{"id":"ORD-1"}`,
			prepareMocks: func() {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:    "not_found",
			payload: `{"id":"ORD-404","status":"ready"}`,
			prepareMocks: func() {
				mockSvc.On("UpdateStatus", mock.Anything, "ORD-404", domain.StatusReady).
					Return(nil, domain.ErrOrderNotFound).Once()
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:    "invalid_transition",
			payload: `{"id":"ORD-1","status":"preparing"}`,
			prepareMocks: func() {
				mockSvc.On("UpdateStatus", mock.Anything, "ORD-1", domain.StatusPreparing).
					Return(nil, fmt.Errorf("%w: ready -> preparing", domain.ErrInvalidTransition)).Once()
			},
			expectedCode: http.StatusConflict,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.prepareMocks()
			recorder := serve(router, http.MethodPut, "/api/orders", testCase.payload)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
		})
	}
}

func TestHandler_deleteOrder(t *testing.T) {
	mockSvc := mocks.NewOrderServiceInterface(t)
	router := setupTestRouter(mockSvc, nil)

	mockSvc.On("Delete", mock.Anything, "ORD-1").Return(storedOrder("ORD-1", domain.StatusPending), nil).Once()
	mockSvc.On("Delete", mock.Anything, "ORD-1").Return(nil, domain.ErrOrderNotFound).Once()

	assert.Equal(t, http.StatusOK, serve(router, http.MethodDelete, "/api/orders?id=ORD-1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodDelete, "/api/orders?id=ORD-1", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodDelete, "/api/orders", "").Code)
}

func TestHandler_getBoard(t *testing.T) {
	mockSvc := mocks.NewOrderServiceInterface(t)
	router := setupTestRouter(mockSvc, nil)

	mockSvc.On("Board", mock.Anything, mock.MatchedBy(func(rng service.BoardRange) bool {
		return rng.Preset == "" && rng.End == nil &&
			rng.Start != nil && rng.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	})).Return(&service.Board{
		KitchenActive:    []service.BoardOrder{},
		ReadyForDelivery: []service.BoardOrder{},
		Archived:         []service.BoardOrder{{Order: *storedOrder("ORD-1", domain.StatusDelivered)}},
	}, nil).Once()
	mockSvc.On("Board", mock.Anything, service.BoardRange{Preset: "today"}).
		Return(&service.Board{}, nil).Once()
	mockSvc.On("Board", mock.Anything, service.BoardRange{Preset: "forever"}).
		Return(nil, domain.NewValidationError("unknown range %q", "forever")).Once()

	recorder := serve(router, http.MethodGet, "/api/orders/board?start=2024-01-01T00:00:00Z", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"archived":[{"id":"ORD-1"`)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/api/orders/board?range=today", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/api/orders/board?range=forever", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/api/orders/board?end=yesterday", "").Code)
}

func TestHandler_getOrderQRCode(t *testing.T) {
	mockSvc := mocks.NewOrderServiceInterface(t)
	router := setupTestRouter(mockSvc, nil)

	mockSvc.On("PaymentQRCode", mock.Anything, "ORD-1").Return([]byte("\x89PNG"), nil).Once()
	mockSvc.On("PaymentQRCode", mock.Anything, "ORD-2").Return(nil, domain.ErrOrderNotFound).Once()

	recorder := serve(router, http.MethodGet, "/api/orders/ORD-1/qrcode", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "image/png", recorder.Header().Get("Content-Type"))

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/orders/ORD-2/qrcode", "").Code)
}

func TestHandler_getMenu(t *testing.T) {
	router := setupTestRouter(nil, nil)

	recorder := serve(router, http.MethodGet, "/api/menu", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"id":"k1"`)
	assert.Contains(t, recorder.Body.String(), `"price":"5.5"`)
}

func TestHandler_checkoutDelivery(t *testing.T) {
	mockSvc := mocks.NewOrderServiceInterface(t)
	router := setupTestRouter(mockSvc, nil)

	mockSvc.On("CheckoutDelivery", mock.Anything, mock.Anything).Return("/cash?orderId=ORD-1", nil).Once()
	mockSvc.On("CheckoutDelivery", mock.Anything, mock.Anything).
		Return("", domain.NewValidationError("customer phone is required for delivery")).Once()

	payload := `{"id":"ORD-1","items":[{"id":"k1","name":"Kebab","quantity":1,"price":"5.50"}],"customerName":"Ana","customerPhone":"600","paymentMethod":"cash"}`
	recorder := serve(router, http.MethodPost, "/api/delivery/checkout", payload)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"redirect":"/cash?orderId=ORD-1"`)

	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodPost, "/api/delivery/checkout", payload).Code)
}

func TestHandler_createPaymentIntent(t *testing.T) {
	mockPayments := mocks.NewPaymentServiceInterface(t)
	router := setupTestRouter(nil, mockPayments)

	tests := []struct {
		name         string
		payload      string
		prepareMocks func()
		expectedCode int
		expectedBody string
	}{
		{
			name:    "success",
			payload: `{"amount":1250}`,
			prepareMocks: func() {
				mockPayments.On("CreatePaymentIntent", mock.Anything, service.PaymentIntentRequest{Amount: 1250}).
					Return("pi_secret", nil).Once()
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"clientSecret":"pi_secret"}`,
		},
		{
			name:    "bad_amount",
			payload: `{"amount":0}`,
			prepareMocks: func() {
				mockPayments.On("CreatePaymentIntent", mock.Anything, service.PaymentIntentRequest{}).
					Return("", domain.NewValidationError("amount must be a positive number of cents")).Once()
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:    "provider_error",
			payload: `{"amount":1250,"orderId":"ORD-1"}`,
			prepareMocks: func() {
				mockPayments.On("CreatePaymentIntent", mock.Anything, service.PaymentIntentRequest{Amount: 1250, OrderID: "ORD-1"}).
					Return("", &domain.ProviderError{Err: errors.New("stripe unavailable")}).Once()
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: "payment provider error",
		},
		{
			name:         "not_json",
			payload:      `amount=5`,
			prepareMocks: func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.prepareMocks()
			recorder := serve(router, http.MethodPost, "/api/payment-intent", testCase.payload)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
			if testCase.expectedBody != "" {
				assert.Contains(t, recorder.Body.String(), testCase.expectedBody)
			}
		})
	}
}

func TestRouter_RequestID(t *testing.T) {
	handler := httpapi.NewHandler(nil, nil, nil)
	router := httpapi.NewRouter(handler, zapNop())

	recorder := serve(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
	assert.Contains(t, recorder.Body.String(), `"service":"order-svc"`)
}
