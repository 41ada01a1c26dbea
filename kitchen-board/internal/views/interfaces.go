package views

import "kebab-orders/kitchen-board/internal/client"

var (
	_ OrderLister      = (*client.Client)(nil)
	_ OrderMutator     = (*client.Client)(nil)
	_ DeliveryCheckout = (*client.Client)(nil)
	_ PaymentAPI       = (*client.Client)(nil)
	_ MenuSource       = (*client.Client)(nil)
)
