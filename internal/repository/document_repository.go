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

// DocumentRepository handles database operations for the document library.
type DocumentRepository struct {
	collection *mongo.Collection
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *mongo.Database) *DocumentRepository {
	return &DocumentRepository{
		collection: db.Collection("documents"),
	}
}

// CreateDocument inserts a new document record.
func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert document")
		return nil, fmt.Errorf("failed to insert document: %v", err)
	}

	if insertedID, ok := result.InsertedID.(primitive.ObjectID); ok {
		doc.ID = insertedID
	}

	logrus.WithField("document_id", doc.ID.Hex()).Info("Document record created")
	return doc, nil
}

// GetDocumentByID fetches a document record by its ID.
func (r *DocumentRepository) GetDocumentByID(ctx context.Context, id primitive.ObjectID) (*models.Document, error) {
	var doc models.Document
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %v", err)
	}
	return &doc, nil
}

// GetDocuments lists document records, optionally filtered by category.
func (r *DocumentRepository) GetDocuments(ctx context.Context, category string) ([]models.Document, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %v", err)
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %v", err)
	}
	return docs, nil
}

// DeleteDocument deletes a document record.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logrus.WithError(err).WithField("document_id", id.Hex()).Error("Failed to delete document")
		return fmt.Errorf("failed to delete document: %v", err)
	}
	return nil
}
