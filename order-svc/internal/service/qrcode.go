package service

import (
	"net/url"

	"github.com/skip2/go-qrcode"
)

type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
}

// DefaultQRGenerator encodes the payment page link of an order as a PNG.
type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) Generate(orderID string) ([]byte, error) {
	return qrcode.Encode(PaymentLink(g.BaseURL, orderID), qrcode.Medium, 256)
}

func PaymentLink(baseURL, orderID string) string {
	return baseURL + "/payment?orderId=" + url.QueryEscape(orderID)
}
