package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"kebab-orders/pkg/domain"

	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time {
	return fixedNow
}

func order(id string, status domain.Status, age time.Duration) domain.Order {
	return domain.Order{
		ID: id,
		Items: []domain.Item{
			{ID: "k1", Name: "Kebab de Pollo", Quantity: 2, Price: decimal.RequireFromString("5.50")},
			{ID: "b1", Name: "Bebida", Quantity: 1, Price: decimal.RequireFromString("1.50")},
		},
		Total:     "12.50",
		Status:    status,
		Timestamp: fixedNow.Add(-age),
	}
}

// fakeLister serves scripted List results, one per call.
type fakeLister struct {
	mu      sync.Mutex
	results [][]domain.Order
	errs    []error
	calls   int
}

func (f *fakeLister) List(ctx context.Context, filters map[string]string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i], nil
}

// fakeMutator records the server calls made by the dashboard.
type fakeMutator struct {
	err     error
	updates []string
	deletes []string
	created []domain.Order
}

func (f *fakeMutator) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	f.updates = append(f.updates, id+":"+string(status))
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Order{ID: id, Status: status}, nil
}

func (f *fakeMutator) Delete(ctx context.Context, id string) (*domain.Order, error) {
	f.deletes = append(f.deletes, id)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Order{ID: id}, nil
}

func (f *fakeMutator) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	f.created = append(f.created, *order)
	if f.err != nil {
		return nil, f.err
	}
	return order, nil
}

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Body   map[string]any
}

// orderAPI is a canned Order API: every request is recorded and answered
// with the handler registered for "METHOD /path".
type orderAPI struct {
	t        *testing.T
	mu       sync.Mutex
	requests []recordedRequest
	routes   map[string]func(w http.ResponseWriter)
}

func newOrderAPI(t *testing.T) (*orderAPI, *httptest.Server) {
	api := &orderAPI{t: t, routes: map[string]func(w http.ResponseWriter){}}
	srv := httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *orderAPI) on(route string, status int, body string) {
	a.routes[route] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func (a *orderAPI) serve(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery}
	if r.Body != nil && r.ContentLength != 0 {
		json.NewDecoder(r.Body).Decode(&rec.Body)
	}

	a.mu.Lock()
	a.requests = append(a.requests, rec)
	handler, ok := a.routes[r.Method+" "+r.URL.Path]
	a.mu.Unlock()

	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	handler(w)
}

func (a *orderAPI) last() recordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.requests) == 0 {
		a.t.Fatal("no request recorded")
	}
	return a.requests[len(a.requests)-1]
}

func jsonBody(v any) string {
	data, _ := json.Marshal(v)
	return strings.TrimSpace(string(data))
}
