package cartRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"creditcoach/models"
	"creditcoach/services/cart"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// cartDocument is the stored form of a cart. Prices are kept as strings so
// no precision is lost in BSON.
type cartDocument struct {
	Key       string         `bson:"_id"`
	Items     []itemDocument `bson:"items"`
	UpdatedAt time.Time      `bson:"updatedAt"`
}

type itemDocument struct {
	ID       string `bson:"id"`
	Title    string `bson:"title"`
	Image    string `bson:"image,omitempty"`
	Price    string `bson:"price"`
	Quantity int    `bson:"quantity"`
}

// MongoCartRepo keeps one document per cart key.
type MongoCartRepo struct {
	coll *mongo.Collection
}

// NewMongoCartRepo returns a repository on the "carts" collection of db.
// When ttl is positive, carts untouched for ttl are expired by MongoDB.
func NewMongoCartRepo(ctx context.Context, db *mongo.Database, ttl time.Duration) (*MongoCartRepo, error) {
	repo := &MongoCartRepo{coll: db.Collection("carts")}
	if ttl > 0 {
		if err := repo.ensureIndexes(ctx, ttl); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (r *MongoCartRepo) ensureIndexes(ctx context.Context, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "updatedAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
	}
	if _, err := r.coll.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoCartRepo) LoadCart(ctx context.Context, key string) ([]models.CartItem, error) {
	var doc cartDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", key, err)
	}
	return fromDocuments(doc.Items)
}

func (r *MongoCartRepo) SaveCart(ctx context.Context, key string, items []models.CartItem) error {
	doc := cartDocument{Key: key, Items: toDocuments(items), UpdatedAt: time.Now().UTC()}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save cart %s: %w", key, err)
	}
	return nil
}

func toDocuments(items []models.CartItem) []itemDocument {
	docs := make([]itemDocument, 0, len(items))
	for _, it := range items {
		docs = append(docs, itemDocument{
			ID:       it.ID,
			Title:    it.Title,
			Image:    it.Image,
			Price:    it.Price.String(),
			Quantity: it.Quantity,
		})
	}
	return docs
}

func fromDocuments(docs []itemDocument) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0, len(docs))
	for _, d := range docs {
		price, err := decimal.NewFromString(d.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: bad price %q for %s: %v", cart.ErrCorruptCart, d.Price, d.ID, err)
		}
		items = append(items, models.CartItem{
			ID:       d.ID,
			Title:    d.Title,
			Image:    d.Image,
			Price:    price,
			Quantity: d.Quantity,
		})
	}
	return items, nil
}
