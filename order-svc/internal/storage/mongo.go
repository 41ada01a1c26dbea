package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kebab-orders/pkg/domain"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type itemDocument struct {
	ID       string `bson:"id"`
	Name     string `bson:"name"`
	Quantity int    `bson:"quantity"`
	Price    string `bson:"price"`
}

// orderDocument mirrors the JSON shape of an order so the same filter
// keys work against both stores.
type orderDocument struct {
	ID            string         `bson:"id"`
	Items         []itemDocument `bson:"items"`
	Total         string         `bson:"total"`
	Status        string         `bson:"status"`
	Timestamp     string         `bson:"timestamp"`
	Notation      string         `bson:"notation,omitempty"`
	CustomerName  string         `bson:"customerName,omitempty"`
	CustomerPhone string         `bson:"customerPhone,omitempty"`
	PaymentMethod string         `bson:"paymentMethod,omitempty"`
	IsDelivery    bool           `bson:"isDelivery"`
}

func toDocument(order *domain.Order) orderDocument {
	items := make([]itemDocument, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, itemDocument{
			ID:       item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price.String(),
		})
	}
	return orderDocument{
		ID:            order.ID,
		Items:         items,
		Total:         order.Total,
		Status:        string(order.Status),
		Timestamp:     order.Timestamp.UTC().Format(time.RFC3339Nano),
		Notation:      order.Notation,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		PaymentMethod: string(order.PaymentMethod),
		IsDelivery:    order.IsDelivery,
	}
}

func (d orderDocument) toOrder() (*domain.Order, error) {
	items := make([]domain.Item, 0, len(d.Items))
	for _, item := range d.Items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("order %s: bad price %q: %w", d.ID, item.Price, err)
		}
		items = append(items, domain.Item{ID: item.ID, Name: item.Name, Quantity: item.Quantity, Price: price})
	}
	timestamp, err := time.Parse(time.RFC3339Nano, d.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("order %s: bad timestamp %q: %w", d.ID, d.Timestamp, err)
	}
	return &domain.Order{
		ID:            d.ID,
		Items:         items,
		Total:         d.Total,
		Status:        domain.Status(d.Status),
		Timestamp:     timestamp,
		Notation:      d.Notation,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		PaymentMethod: domain.PaymentMethod(d.PaymentMethod),
		IsDelivery:    d.IsDelivery,
	}, nil
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("orders")}
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (m *MongoRepository) FindOrders(ctx context.Context, filters map[string]any) ([]domain.Order, error) {
	filter := bson.M{}
	for key, value := range filters {
		filter[key] = value
	}

	cursor, err := m.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := []domain.Order{}
	for cursor.Next(ctx) {
		var doc orderDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		order, err := doc.toOrder()
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, cursor.Err()
}

func (m *MongoRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return m.decodeSingle(m.collection.FindOne(ctx, bson.M{"id": id}))
}

func (m *MongoRepository) InsertOrder(ctx context.Context, order *domain.Order) error {
	_, err := m.collection.InsertOne(ctx, toDocument(order))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateOrder
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (m *MongoRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	result := m.collection.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"status": string(status)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return m.decodeSingle(result)
}

func (m *MongoRepository) DeleteOrder(ctx context.Context, id string) (*domain.Order, error) {
	return m.decodeSingle(m.collection.FindOneAndDelete(ctx, bson.M{"id": id}))
}

func (m *MongoRepository) decodeSingle(result *mongo.SingleResult) (*domain.Order, error) {
	var doc orderDocument
	if err := result.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return doc.toOrder()
}
