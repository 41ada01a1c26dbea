package tests

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"kebab-orders/kitchen-board/internal/client"
	"kebab-orders/kitchen-board/internal/views"
	"kebab-orders/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheckout struct {
	got      *domain.Order
	redirect string
	err      error
}

func (f *fakeCheckout) CheckoutDelivery(ctx context.Context, order *domain.Order) (*domain.Order, string, error) {
	f.got = order
	if f.err != nil {
		return nil, "", f.err
	}
	return order, f.redirect, nil
}

func TestDeliveryForm_Cart(t *testing.T) {
	form := views.NewDeliveryForm(&fakeCheckout{}, clock)

	require.NoError(t, form.Add("k1"))
	require.NoError(t, form.Add("k1"))
	require.NoError(t, form.Add("b1"))
	require.NoError(t, form.Add("d2"))
	assert.Equal(t, "19.50", form.Total())

	form.RemoveOne("d2")
	assert.Equal(t, "12.50", form.Total())
	assert.Len(t, form.Lines(), 2)

	form.RemoveOne("k1")
	assert.Equal(t, 1, form.Lines()[0].Quantity)

	form.DeleteLine("k1")
	form.RemoveOne("s1")
	assert.Equal(t, []string{"b1"}, []string{form.Lines()[0].ID})
	assert.Equal(t, "1.50", form.Total())

	var validationErr *domain.ValidationError
	assert.ErrorAs(t, form.Add("zz"), &validationErr)
}

func TestCart_Clone(t *testing.T) {
	var cart views.Cart
	require.NoError(t, cart.Add("k3"))

	clone := cart.Clone()
	require.NoError(t, clone.Add("k3"))
	cart.Reset()

	assert.True(t, cart.Empty())
	assert.Equal(t, 2, clone.Lines()[0].Quantity)
	assert.Equal(t, "10.00", clone.Total())
}

func TestDeliveryForm_Submit(t *testing.T) {
	tests := []struct {
		name      string
		fill      func(*views.DeliveryForm)
		wantErr   string
		wantCalls bool
	}{
		{
			name: "complete form",
			fill: func(f *views.DeliveryForm) {
				f.Add("k1")
				f.CustomerName = " Ana "
				f.CustomerPhone = "600123123"
				f.PaymentMethod = domain.PaymentCard
			},
			wantCalls: true,
		},
		{
			name: "empty cart",
			fill: func(f *views.DeliveryForm) {
				f.CustomerName = "Ana"
				f.CustomerPhone = "600123123"
				f.PaymentMethod = domain.PaymentCash
			},
			wantErr: "items",
		},
		{
			name: "missing contact and payment",
			fill: func(f *views.DeliveryForm) {
				f.Add("k1")
				f.CustomerName = "  "
			},
			wantErr: "customerName, customerPhone, paymentMethod",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			checkout := &fakeCheckout{redirect: "/payment?orderId=x"}
			form := views.NewDeliveryForm(checkout, clock)
			testCase.fill(form)

			created, redirect, err := form.Submit(context.Background())

			if testCase.wantErr != "" {
				var validationErr *domain.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Contains(t, err.Error(), testCase.wantErr)
				assert.Nil(t, checkout.got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "/payment?orderId=x", redirect)
			assert.Equal(t, "ORD-1704110400000", created.ID)
			assert.Equal(t, "Ana", created.CustomerName)
			assert.Equal(t, "5.50", created.Total)
			assert.True(t, created.IsDelivery)
			assert.Equal(t, domain.StatusPending, created.Status)
			assert.Empty(t, form.Lines())
		})
	}
}

func TestDeliveryForm_SubmitFailureKeepsCart(t *testing.T) {
	form := views.NewDeliveryForm(&fakeCheckout{err: errors.New("order api: 409 duplicate order")}, clock)
	form.Add("k1")
	form.CustomerName = "Ana"
	form.CustomerPhone = "600123123"
	form.PaymentMethod = domain.PaymentCash

	_, _, err := form.Submit(context.Background())

	assert.Error(t, err)
	assert.Len(t, form.Lines(), 1)
}

func TestDeliveryForm_SubmitThroughClient(t *testing.T) {
	api, srv := newOrderAPI(t)
	api.on("POST /api/delivery/checkout", http.StatusCreated, jsonBody(map[string]any{
		"message":  "Order created",
		"data":     order("ORD-1704110400000", domain.StatusPending, 0),
		"redirect": "/cash?orderId=ORD-1704110400000",
	}))

	form := views.NewDeliveryForm(client.New(srv.URL, nil), clock)
	form.Add("k1")
	form.CustomerName = "Ana"
	form.CustomerPhone = "600123123"
	form.PaymentMethod = domain.PaymentCash

	_, redirect, err := form.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "/cash?orderId=ORD-1704110400000", redirect)
	body := api.last().Body
	assert.Equal(t, "cash", body["paymentMethod"])
	assert.Equal(t, true, body["isDelivery"])
	assert.Equal(t, "5.5", body["items"].([]any)[0].(map[string]any)["price"])
}

func TestPaymentPage_Load(t *testing.T) {
	api, srv := newOrderAPI(t)
	api.on("GET /api/orders/ORD-1", http.StatusOK, jsonBody(map[string]any{
		"message": "Order retrieved",
		"data":    order("ORD-1", domain.StatusPending, 0),
	}))
	api.on("POST /api/payment-intent", http.StatusOK, `{"clientSecret":"pi_1_secret_2"}`)

	view, err := views.NewPaymentPage(client.New(srv.URL, nil)).Load(context.Background(), "ORD-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1250), view.Amount)
	assert.Equal(t, "pi_1_secret_2", view.ClientSecret)
	assert.Equal(t, map[string]any{"amount": float64(1250), "orderId": "ORD-1"}, api.last().Body)
}

func TestPaymentPage_Errors(t *testing.T) {
	api, srv := newOrderAPI(t)
	api.on("GET /api/orders/ORD-9", http.StatusNotFound, `{"error":"order not found: ORD-9"}`)
	page := views.NewPaymentPage(client.New(srv.URL, nil))

	_, err := page.Load(context.Background(), "ORD-9")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = page.Load(context.Background(), "")
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestAmountCents(t *testing.T) {
	tests := []struct {
		total   string
		want    int64
		wantErr bool
	}{
		{total: "12.50", want: 1250},
		{total: "0.99", want: 99},
		{total: "7", want: 700},
		{total: "0.00", wantErr: true},
		{total: "abc", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.total, func(t *testing.T) {
			got, err := views.AmountCents(testCase.total)
			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}
