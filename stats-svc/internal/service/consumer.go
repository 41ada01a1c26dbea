package service

import (
	"context"
	"encoding/json"

	"kebab-orders/pkg/domain"

	"go.uber.org/zap"
)

type Consumer struct {
	Reader MessageReader
	Store  StoreInterface
	Logger *zap.Logger
}

func NewConsumer(reader MessageReader, store StoreInterface, logger *zap.Logger) *Consumer {
	return &Consumer{
		Reader: reader,
		Store:  store,
		Logger: logger,
	}
}

// Start reads order events until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.logger().Info("Starting stats consumer")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger().Info("stats consumer stopped")
				return
			}
			c.logger().Error("Error reading message", zap.Error(err))
			continue
		}

		var event domain.OrderEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			c.logger().Error("Error unmarshaling message", zap.Error(err), zap.ByteString("key", message.Key))
			continue
		}

		c.ProcessEvent(ctx, event)
	}
}

func (c *Consumer) ProcessEvent(ctx context.Context, event domain.OrderEvent) {
	switch event.Type {
	case domain.EventOrderCreated, domain.EventStatusChanged, domain.EventOrderDeleted:
	default:
		c.logger().Debug("ignoring event", zap.String("type", string(event.Type)))
		return
	}

	if err := c.Store.RecordEvent(ctx, event); err != nil {
		c.logger().Error("Error recording event",
			zap.String("type", string(event.Type)),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return
	}

	c.logger().Debug("event recorded",
		zap.String("type", string(event.Type)),
		zap.String("order_id", event.OrderID))
}

func (c *Consumer) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
