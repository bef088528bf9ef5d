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

// ClientRepository handles database operations related to clients.
type ClientRepository struct {
	collection *mongo.Collection
}

// NewClientRepository creates a new instance of ClientRepository.
func NewClientRepository(db *mongo.Database) *ClientRepository {
	return &ClientRepository{
		collection: db.Collection("clients"),
	}
}

// CreateClient inserts a new client into the database.
func (r *ClientRepository) CreateClient(ctx context.Context, client *models.Client) (*models.Client, error) {
	client.CreatedAt = time.Now()
	client.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, client)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert client")
		return nil, fmt.Errorf("failed to insert client: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted client ID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	client.ID = insertedID

	logrus.WithField("client_id", client.ID.Hex()).Info("Client inserted successfully")
	return client, nil
}

// GetClientByID fetches a client by its ID.
func (r *ClientRepository) GetClientByID(ctx context.Context, id primitive.ObjectID) (*models.Client, error) {
	var client models.Client
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&client)
	if err != nil {
		logrus.WithError(err).WithField("client_id", id.Hex()).Warn("Failed to find client by ID")
		return nil, fmt.Errorf("failed to find client: %v", err)
	}
	return &client, nil
}

// GetClients fetches an agent's clients with an optional status filter.
func (r *ClientRepository) GetClients(ctx context.Context, agentID primitive.ObjectID, status string) ([]models.Client, error) {
	filter := bson.M{"agent_id": agentID}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "last_name", Value: 1}, {Key: "first_name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %v", err)
	}
	defer cursor.Close(ctx)

	var clients []models.Client
	if err := cursor.All(ctx, &clients); err != nil {
		return nil, fmt.Errorf("failed to decode clients: %v", err)
	}
	return clients, nil
}

// UpdateClient updates an existing client.
func (r *ClientRepository) UpdateClient(ctx context.Context, id primitive.ObjectID, client *models.Client) (*models.Client, error) {
	client.UpdatedAt = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": client},
	)
	if err != nil {
		logrus.WithError(err).WithField("client_id", id.Hex()).Error("Failed to update client")
		return nil, fmt.Errorf("failed to update client: %v", err)
	}
	return client, nil
}

// DeleteClient deletes a client from the database by its ID.
func (r *ClientRepository) DeleteClient(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithError(err).WithField("client_id", id.Hex()).Error("Failed to delete client")
		return fmt.Errorf("failed to delete client: %v", err)
	}
	return nil
}

// CountClients counts the agent's clients, optionally bounded to a
// created-at window. Nil bounds mean lifetime history.
func (r *ClientRepository) CountClients(ctx context.Context, agentID primitive.ObjectID, from, to *time.Time) (int64, error) {
	filter := bson.M{"agent_id": agentID}
	if from != nil || to != nil {
		window := bson.M{}
		if from != nil {
			window["$gte"] = *from
		}
		if to != nil {
			window["$lte"] = *to
		}
		filter["created_at"] = window
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		logrus.WithError(err).WithField("agent_id", agentID.Hex()).Error("Failed to count clients")
		return 0, fmt.Errorf("failed to count clients: %v", err)
	}
	return count, nil
}
