package repository

import (
	"context"
	"time"

	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GoalRepository struct handles database operations related to goals
type GoalRepository struct {
	collection *mongo.Collection
}

// NewGoalRepository creates a new instance of GoalRepository
func NewGoalRepository(db *mongo.Database) *GoalRepository {
	return &GoalRepository{
		collection: db.Collection("goals"),
	}
}

// CreateGoal creates a new goal in the database
func (r *GoalRepository) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	goal.CreatedAt = time.Now()
	goal.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, goal)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert goal")
		return nil, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logger.Log.Error("Failed to cast inserted ID")
		return nil, err
	}
	goal.ID = insertedID

	logger.Log.WithField("goal_id", goal.ID.Hex()).Info("Goal created successfully")
	return goal, nil
}

// GetGoalByID fetches a goal by its ID
func (r *GoalRepository) GetGoalByID(ctx context.Context, id primitive.ObjectID) (*models.Goal, error) {
	var goal models.Goal

	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&goal)
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to find goal by ID")
		return nil, err
	}

	return &goal, nil
}

// UpdateGoal updates an existing goal in the database
func (r *GoalRepository) UpdateGoal(ctx context.Context, id primitive.ObjectID, goal *models.Goal) (*models.Goal, error) {
	goal.UpdatedAt = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": goal},
	)
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to update goal")
		return nil, err
	}

	logger.Log.WithField("goal_id", id.Hex()).Info("Goal updated successfully")
	return goal, nil
}

// DeleteGoal deletes a goal from the database by its ID
func (r *GoalRepository) DeleteGoal(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("goal_id", id.Hex()).Error("Failed to delete goal")
		return err
	}

	logger.Log.WithField("goal_id", id.Hex()).Info("Goal deleted successfully")
	return nil
}

// GetGoals fetches goals owned by a specific agent, optionally filtered by metric type
func (r *GoalRepository) GetGoals(ctx context.Context, agentID primitive.ObjectID, metricType string) ([]models.Goal, error) {
	filter := bson.M{"agent_id": agentID}
	if metricType != "" {
		filter["metric_type"] = metricType
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		logger.Log.WithError(err).WithField("agent_id", agentID.Hex()).Error("Failed to fetch goals")
		return nil, err
	}
	defer cursor.Close(ctx)

	var goals []models.Goal
	if err := cursor.All(ctx, &goals); err != nil {
		logger.Log.WithError(err).Error("Failed to decode goals")
		return nil, err
	}
	return goals, nil
}

// GetAllGoals fetches all goals from the database
func (r *GoalRepository) GetAllGoals(ctx context.Context, limit int64) ([]models.Goal, error) {
	findOptions := options.Find().SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch all goals")
		return nil, err
	}
	defer cursor.Close(ctx)

	var goals []models.Goal
	if err := cursor.All(ctx, &goals); err != nil {
		logger.Log.WithError(err).Error("Failed to decode goals")
		return nil, err
	}
	return goals, nil
}

// GetActiveGoalsByAgent fetches the agent's goals currently participating in
// progress accounting. Goals outside their date window are still returned;
// window filtering is a display concern.
func (r *GoalRepository) GetActiveGoalsByAgent(ctx context.Context, agentID primitive.ObjectID) ([]models.Goal, error) {
	filter := bson.M{"agent_id": agentID, "is_active": true}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		logger.Log.WithError(err).WithField("agent_id", agentID.Hex()).Error("Failed to fetch active goals")
		return nil, err
	}
	defer cursor.Close(ctx)

	var goals []models.Goal
	if err := cursor.All(ctx, &goals); err != nil {
		logger.Log.WithError(err).Error("Failed to decode active goals")
		return nil, err
	}
	return goals, nil
}

// GetActiveGoals fetches every active goal across all agents.
func (r *GoalRepository) GetActiveGoals(ctx context.Context) ([]models.Goal, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		logger.Log.WithError(err).Error("Failed to fetch active goals")
		return nil, err
	}
	defer cursor.Close(ctx)

	var goals []models.Goal
	if err := cursor.All(ctx, &goals); err != nil {
		logger.Log.WithError(err).Error("Failed to decode active goals")
		return nil, err
	}
	return goals, nil
}

// IncrementGoalProgress atomically adds delta to the goal's current value,
// clamping at zero. The clamp-add happens in a single update pipeline on the
// server, so concurrent sale events for the same agent cannot lose updates.
func (r *GoalRepository) IncrementGoalProgress(ctx context.Context, id primitive.ObjectID, delta float64) error {
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "current_value", Value: bson.D{{Key: "$max", Value: bson.A{
				0,
				bson.D{{Key: "$add", Value: bson.A{"$current_value", delta}}},
			}}}},
			{Key: "updated_at", Value: time.Now()},
		}}},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"goal_id": id.Hex(),
			"delta":   delta,
		}).Error("Failed to increment goal progress")
		return err
	}
	return nil
}

// SetGoalProgress overwrites the goal's current value (recalculation path).
func (r *GoalRepository) SetGoalProgress(ctx context.Context, id primitive.ObjectID, value float64) error {
	update := bson.M{"$set": bson.M{
		"current_value": value,
		"updated_at":    time.Now(),
	}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"goal_id": id.Hex(),
			"value":   value,
		}).Error("Failed to set goal progress")
		return err
	}
	return nil
}
