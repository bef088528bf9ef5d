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

type ReminderRepository struct {
	collection *mongo.Collection
}

func NewReminderRepository(db *mongo.Database) *ReminderRepository {
	return &ReminderRepository{
		collection: db.Collection("reminders"),
	}
}

// CreateReminder inserts a new reminder
func (r *ReminderRepository) CreateReminder(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	reminder.CreatedAt = time.Now()
	reminder.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, reminder)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert reminder")
		return nil, fmt.Errorf("failed to create reminder: %v", err)
	}

	if insertedID, ok := result.InsertedID.(primitive.ObjectID); ok {
		reminder.ID = insertedID
	}
	return reminder, nil
}

// GetReminderByID fetches a reminder by its ID
func (r *ReminderRepository) GetReminderByID(ctx context.Context, id primitive.ObjectID) (*models.Reminder, error) {
	var reminder models.Reminder
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reminder)
	if err != nil {
		return nil, fmt.Errorf("failed to find reminder: %v", err)
	}
	return &reminder, nil
}

// GetReminders returns an agent's reminders, optionally including completed ones
func (r *ReminderRepository) GetReminders(ctx context.Context, agentID primitive.ObjectID, includeCompleted bool) ([]models.Reminder, error) {
	filter := bson.M{"agent_id": agentID}
	if !includeCompleted {
		filter["completed"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminders: %v", err)
	}
	defer cursor.Close(ctx)

	var reminders []models.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %v", err)
	}
	return reminders, nil
}

// GetUpcoming returns the agent's next incomplete reminders due before the cutoff
func (r *ReminderRepository) GetUpcoming(ctx context.Context, agentID primitive.ObjectID, until time.Time, limit int64) ([]models.Reminder, error) {
	filter := bson.M{
		"agent_id":  agentID,
		"completed": false,
		"due_date":  bson.M{"$lte": until},
	}
	opts := options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming reminders: %v", err)
	}
	defer cursor.Close(ctx)

	var reminders []models.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode upcoming reminders: %v", err)
	}
	return reminders, nil
}

// GetDueUnnotified returns incomplete reminders due in the window that have
// not yet triggered an email
func (r *ReminderRepository) GetDueUnnotified(ctx context.Context, from, to time.Time) ([]models.Reminder, error) {
	filter := bson.M{
		"completed": false,
		"notified":  false,
		"due_date":  bson.M{"$gte": from, "$lte": to},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due reminders: %v", err)
	}
	defer cursor.Close(ctx)

	var reminders []models.Reminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode due reminders: %v", err)
	}
	return reminders, nil
}

// HasReminderForSale reports whether a renewal reminder already exists for
// the sale, so the renewal scanner never creates duplicates
func (r *ReminderRepository) HasReminderForSale(ctx context.Context, saleID primitive.ObjectID) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"sale_id": saleID, "type": models.ReminderTypeRenewal})
	if err != nil {
		return false, fmt.Errorf("failed to check renewal reminder: %v", err)
	}
	return count > 0, nil
}

// MarkNotified sets the reminder's notified flag
func (r *ReminderRepository) MarkNotified(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"notified": true}})
	return err
}

// UpdateReminder updates an existing reminder
func (r *ReminderRepository) UpdateReminder(ctx context.Context, id primitive.ObjectID, reminder *models.Reminder) (*models.Reminder, error) {
	reminder.UpdatedAt = time.Now()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": reminder})
	if err != nil {
		logrus.WithError(err).WithField("reminder_id", id.Hex()).Error("Failed to update reminder")
		return nil, fmt.Errorf("failed to update reminder: %v", err)
	}
	return reminder, nil
}

// DeleteReminder deletes a reminder
func (r *ReminderRepository) DeleteReminder(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
