package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"kebab-orders/order-svc/internal/service"
	"kebab-orders/pkg/domain"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	Orders   service.OrderServiceInterface
	Payments service.PaymentServiceInterface
	Logger   *zap.Logger
}

func NewHandler(orders service.OrderServiceInterface, payments service.PaymentServiceInterface, logger *zap.Logger) *Handler {
	return &Handler{Orders: orders, Payments: payments, Logger: logger}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.HandleFunc("/api/menu", h.getMenu).Methods("GET")

	r.HandleFunc("/api/orders", h.listOrders).Methods("GET")
	r.HandleFunc("/api/orders", h.createOrder).Methods("POST")
	r.HandleFunc("/api/orders", h.updateOrderStatus).Methods("PUT")
	r.HandleFunc("/api/orders", h.deleteOrder).Methods("DELETE")
	r.HandleFunc("/api/orders/board", h.getBoard).Methods("GET")
	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getOrderQRCode).Methods("GET")

	r.HandleFunc("/api/delivery/checkout", h.checkoutDelivery).Methods("POST")
	r.HandleFunc("/api/payment-intent", h.createPaymentIntent).Methods("POST")
}

type envelope struct {
	Message  string `json:"message"`
	Data     any    `json:"data"`
	Redirect string `json:"redirect,omitempty"`
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "order-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{Message: "Menu retrieved", Data: domain.Menu})
}

// listOrders returns orders matching the query string filters
// 200 - orders found (possibly none)
// 400 - unknown filter
// 500 - store error
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	filters := map[string]string{}
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}

	orders, err := h.Orders.List(r.Context(), filters)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Message: "Orders retrieved", Data: orders})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.Orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Message: "Order retrieved", Data: order})
}

// createOrder stores a new order
// 201 - order created
// 400 - malformed body or validation failure
// 409 - order id already used
// 500 - store error
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var order domain.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeError(w, http.StatusBadRequest, "invalid order payload: "+err.Error())
		return
	}

	if err := h.Orders.Create(r.Context(), &order); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Message: "Order created", Data: order})
}

// updateOrderStatus moves an order to the next status
// 200 - status updated
// 400 - missing id or unknown status
// 404 - order not found
// 409 - transition not allowed
// 500 - store error
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID     string        `json:"id"`
		Status domain.Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}
	if payload.ID == "" || payload.Status == "" {
		writeError(w, http.StatusBadRequest, "id and status are required")
		return
	}

	order, err := h.Orders.UpdateStatus(r.Context(), payload.ID, payload.Status)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Message: "Order updated", Data: order})
}

// deleteOrder removes an order, which is how orders are cancelled
// 200 - order deleted
// 400 - missing id
// 404 - order not found
// 500 - store error
func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	order, err := h.Orders.Delete(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Message: "Order deleted", Data: order})
}

// getBoard returns the kitchen buckets. The archive is limited by either a
// named range or explicit RFC 3339 start/end bounds.
func (h *Handler) getBoard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	rng := service.BoardRange{Preset: query.Get("range")}
	if rng.Preset == "" {
		var err error
		if rng.Start, err = parseBound(query.Get("start")); err != nil {
			writeError(w, http.StatusBadRequest, "invalid start: "+err.Error())
			return
		}
		if rng.End, err = parseBound(query.Get("end")); err != nil {
			writeError(w, http.StatusBadRequest, "invalid end: "+err.Error())
			return
		}
	}

	board, err := h.Orders.Board(r.Context(), rng)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{Message: "Board retrieved", Data: board})
}

func parseBound(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *Handler) getOrderQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.Orders.PaymentQRCode(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// checkoutDelivery stores a delivery order and tells the client where to go next
// 201 - order created, redirect holds the payment page
// 400 - missing customer details or payment method
// 409 - order id already used
func (h *Handler) checkoutDelivery(w http.ResponseWriter, r *http.Request) {
	var order domain.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeError(w, http.StatusBadRequest, "invalid order payload: "+err.Error())
		return
	}

	redirect, err := h.Orders.CheckoutDelivery(r.Context(), &order)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{Message: "Order created", Data: order, Redirect: redirect})
}

// createPaymentIntent returns a client secret for the hosted payment form
// 200 - intent created
// 400 - amount missing, not positive or not matching the order
// 404 - order not found
// 500 - payment provider error
func (h *Handler) createPaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req service.PaymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}

	secret, err := h.Payments.CreatePaymentIntent(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"clientSecret": secret})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *domain.ValidationError
	var providerErr *domain.ProviderError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDuplicateOrder), errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &providerErr):
		h.logger().Error("payment provider failure", zap.Error(err), zap.String("request_id", RequestID(r.Context())))
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		h.logger().Error("request failed", zap.Error(err), zap.String("request_id", RequestID(r.Context())))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
