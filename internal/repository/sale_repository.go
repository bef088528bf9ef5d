package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SaleTotals is the aggregate of an agent's sale history over a window.
type SaleTotals struct {
	PremiumSum    float64 `bson:"premium_sum"`
	CommissionSum float64 `bson:"commission_sum"`
	Count         int64   `bson:"count"`
}

// SaleRepository handles database operations related to sales.
type SaleRepository struct {
	collection *mongo.Collection
}

// NewSaleRepository creates a new instance of SaleRepository.
func NewSaleRepository(db *mongo.Database) *SaleRepository {
	return &SaleRepository{
		collection: db.Collection("sales"),
	}
}

// CreateSale inserts a new sale into the database.
func (r *SaleRepository) CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	sale.CreatedAt = time.Now()
	sale.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, sale)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert sale")
		return nil, fmt.Errorf("failed to insert sale: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted sale ID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	sale.ID = insertedID

	logrus.WithField("sale_id", sale.ID.Hex()).Info("Sale inserted successfully")
	return sale, nil
}

// GetSaleByID fetches a sale by its ID.
func (r *SaleRepository) GetSaleByID(ctx context.Context, id primitive.ObjectID) (*models.Sale, error) {
	var sale models.Sale
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sale)
	if err != nil {
		logrus.WithError(err).WithField("sale_id", id.Hex()).Warn("Failed to find sale by ID")
		return nil, fmt.Errorf("failed to find sale: %v", err)
	}
	return &sale, nil
}

// GetSales fetches sales for an agent, optionally filtered by client.
func (r *SaleRepository) GetSales(ctx context.Context, agentID primitive.ObjectID, clientID *primitive.ObjectID) ([]models.Sale, error) {
	filter := bson.M{"agent_id": agentID}
	if clientID != nil {
		filter["client_id"] = *clientID
	}
	opts := options.Find().SetSort(bson.D{{Key: "sale_date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales: %v", err)
	}
	defer cursor.Close(ctx)

	var sales []models.Sale
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("failed to decode sales: %v", err)
	}
	return sales, nil
}

// UpdateSale updates an existing sale.
func (r *SaleRepository) UpdateSale(ctx context.Context, id primitive.ObjectID, sale *models.Sale) (*models.Sale, error) {
	sale.UpdatedAt = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": sale},
	)
	if err != nil {
		logrus.WithError(err).WithField("sale_id", id.Hex()).Error("Failed to update sale")
		return nil, fmt.Errorf("failed to update sale: %v", err)
	}
	return sale, nil
}

// DeleteSale deletes a sale from the database by its ID.
func (r *SaleRepository) DeleteSale(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithError(err).WithField("sale_id", id.Hex()).Error("Failed to delete sale")
		return fmt.Errorf("failed to delete sale: %v", err)
	}
	return nil
}

// AggregateSales sums premiums and commissions and counts the agent's sales,
// optionally bounded to a sale-date window. Nil bounds mean lifetime history.
func (r *SaleRepository) AggregateSales(ctx context.Context, agentID primitive.ObjectID, from, to *time.Time) (*SaleTotals, error) {
	match := bson.M{"agent_id": agentID}
	if from != nil || to != nil {
		window := bson.M{}
		if from != nil {
			window["$gte"] = *from
		}
		if to != nil {
			window["$lte"] = *to
		}
		match["sale_date"] = window
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "premium_sum", Value: bson.D{{Key: "$sum", Value: "$premium_amount"}}},
			{Key: "commission_sum", Value: bson.D{{Key: "$sum", Value: "$commission_amount"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		logrus.WithError(err).WithField("agent_id", agentID.Hex()).Error("Failed to aggregate sales")
		return nil, fmt.Errorf("failed to aggregate sales: %v", err)
	}
	defer cursor.Close(ctx)

	var results []SaleTotals
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode sale totals: %v", err)
	}
	if len(results) == 0 {
		return &SaleTotals{}, nil
	}
	return &results[0], nil
}

// GetSalesRenewingBetween returns sales whose renewal date falls in the window.
func (r *SaleRepository) GetSalesRenewingBetween(ctx context.Context, from, to time.Time) ([]models.Sale, error) {
	filter := bson.M{
		"renewal_date": bson.M{"$gte": from, "$lte": to},
		"status":       bson.M{"$ne": models.SaleStatusCancelled},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch renewing sales: %v", err)
	}
	defer cursor.Close(ctx)

	var sales []models.Sale
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("failed to decode renewing sales: %v", err)
	}
	return sales, nil
}
