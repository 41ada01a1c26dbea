package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"kebab-orders/pkg/domain"
)

const ConsoleUsage = `commands:
  advance <id> <status> | deliver <id> | cancel <id> | range <today|yesterday|this-week|this-month|all>
  menu | add <menuId> | remove <menuId> | drop <menuId> | cart | submit [note]
  checkout <card|cash> <phone> <name> | pay <orderId> | quit`

var ErrUnknownCommand = errors.New("unknown command")

type MenuSource interface {
	Menu(ctx context.Context) ([]domain.MenuItem, error)
}

// Console executes the text commands typed at the kitchen board. Counter
// orders and delivery checkouts share one cart.
type Console struct {
	dashboard *Dashboard
	checkout  DeliveryCheckout
	payments  *PaymentPage
	menu      MenuSource
	out       io.Writer
	now       func() time.Time

	cart Cart
}

func NewConsole(dashboard *Dashboard, checkout DeliveryCheckout, payments *PaymentPage, menu MenuSource, out io.Writer, now func() time.Time) *Console {
	if now == nil {
		now = time.Now
	}
	return &Console{
		dashboard: dashboard,
		checkout:  checkout,
		payments:  payments,
		menu:      menu,
		out:       out,
		now:       now,
	}
}

// Exec runs one command line. It is not safe for concurrent use.
func (c *Console) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch cmd, args := fields[0], fields[1:]; {
	case cmd == "advance" && len(args) == 2:
		return c.dashboard.Advance(ctx, args[0], domain.Status(args[1]))
	case cmd == "deliver" && len(args) == 1:
		return c.dashboard.Deliver(ctx, args[0])
	case cmd == "cancel" && len(args) == 1:
		return c.dashboard.Cancel(ctx, args[0])
	case cmd == "range" && len(args) == 1:
		name := args[0]
		if name == "all" {
			name = ""
		}
		return c.dashboard.SetPreset(name)
	case cmd == "menu" && len(args) == 0:
		return c.printMenu(ctx)
	case cmd == "add" && len(args) == 1:
		if err := c.cart.Add(args[0]); err != nil {
			return err
		}
		return c.printCart()
	case cmd == "remove" && len(args) == 1:
		c.cart.RemoveOne(args[0])
		return c.printCart()
	case cmd == "drop" && len(args) == 1:
		c.cart.DeleteLine(args[0])
		return c.printCart()
	case cmd == "cart" && len(args) == 0:
		return c.printCart()
	case cmd == "submit":
		created, err := c.dashboard.CreateOrder(ctx, &c.cart, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "order %s placed (%s)\n", created.ID, created.Total)
		return nil
	case cmd == "checkout" && len(args) >= 3:
		return c.submitDelivery(ctx, domain.PaymentMethod(args[0]), args[1], strings.Join(args[2:], " "))
	case cmd == "pay" && len(args) == 1:
		view, err := c.payments.Load(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "order %s: charge %d cents, client secret %s\n", view.Order.ID, view.Amount, view.ClientSecret)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
}

func (c *Console) submitDelivery(ctx context.Context, method domain.PaymentMethod, phone, name string) error {
	form := NewDeliveryForm(c.checkout, c.now)
	form.Cart = c.cart.Clone()
	form.CustomerName = name
	form.CustomerPhone = phone
	form.PaymentMethod = method

	created, redirect, err := form.Submit(ctx)
	if err != nil {
		return err
	}

	c.cart.Reset()
	fmt.Fprintf(c.out, "delivery order %s placed (%s), continue at %s\n", created.ID, created.Total, redirect)
	return nil
}

func (c *Console) printMenu(ctx context.Context) error {
	items, err := c.menu.Menu(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", item.ID, item.Name, item.Price.StringFixed(2))
	}
	return tw.Flush()
}

func (c *Console) printCart() error {
	if c.cart.Empty() {
		_, err := fmt.Fprintln(c.out, "cart is empty")
		return err
	}
	_, err := fmt.Fprintf(c.out, "cart: %s = %s\n", itemsSummary(c.cart.Lines()), c.cart.Total())
	return err
}
