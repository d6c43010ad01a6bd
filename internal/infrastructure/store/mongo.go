package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/kiosk-orders/internal/domain/order"
	"github.com/example/kiosk-orders/internal/domain/product"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepository reads and writes the "orders" and "products" collections
// the kiosk frontends already use.
type MongoRepository struct {
	orders   *mongo.Collection
	products *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		orders:   db.Collection("orders"),
		products: db.Collection("products"),
	}
}

// ConnectMongo dials uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

func (r *MongoRepository) InsertOrder(ctx context.Context, o *order.Order) error {
	_, err := r.orders.InsertOne(ctx, o)
	return err
}

func (r *MongoRepository) ListOrders(ctx context.Context) ([]*order.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.orders.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var orders []*order.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (r *MongoRepository) UpdateOrderStatus(ctx context.Context, orderID, status string) (*order.Order, error) {
	res := r.orders.FindOneAndUpdate(ctx,
		bson.D{{Key: "orderId", Value: orderID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: status}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var o order.Order
	if err := res.Decode(&o); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// mongoProduct is the stored shape: prijs is a euro amount as a double.
type mongoProduct struct {
	ID    primitive.ObjectID `bson:"_id"`
	Naam  string             `bson:"naam"`
	Prijs float64            `bson:"prijs"`
	Image string             `bson:"image"`
}

func (r *MongoRepository) ListProducts(ctx context.Context) ([]*product.Product, error) {
	cur, err := r.products.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var docs []mongoProduct
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]*product.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, &product.Product{
			ID:    d.ID.Hex(),
			Naam:  d.Naam,
			Prijs: euroToCents(d.Prijs),
			Image: d.Image,
		})
	}
	return products, nil
}

func euroToCents(euro float64) int64 {
	return decimal.NewFromFloat(euro).Shift(2).Round(0).IntPart()
}
