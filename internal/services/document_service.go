package services

import (
	"context"
	"fmt"
	"os"

	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DocumentService struct {
	repo *repository.DocumentRepository
}

func NewDocumentService(repo *repository.DocumentRepository) *DocumentService {
	return &DocumentService{repo: repo}
}

// CreateDocument stores the metadata record for an uploaded file.
func (s *DocumentService) CreateDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if doc.Title == "" {
		doc.Title = doc.FileName
	}
	if doc.FileName == "" || doc.FilePath == "" {
		return nil, fmt.Errorf("document file is required")
	}
	return s.repo.CreateDocument(ctx, doc)
}

// GetDocument retrieves a document record by its ID.
func (s *DocumentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid document ID: %v", err)
	}
	return s.repo.GetDocumentByID(ctx, objID)
}

// GetDocuments lists the library, optionally filtered by category.
func (s *DocumentService) GetDocuments(ctx context.Context, category string) ([]models.Document, error) {
	return s.repo.GetDocuments(ctx, category)
}

// DeleteDocument removes the metadata record and the file on disk. A missing
// file is not an error: the record is the source of truth.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid document ID: %v", err)
	}

	doc, err := s.repo.GetDocumentByID(ctx, objID)
	if err != nil {
		return fmt.Errorf("document not found: %v", err)
	}

	if err := s.repo.DeleteDocument(ctx, objID); err != nil {
		return err
	}

	if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("path", doc.FilePath).Warn("Failed to remove document file from disk")
	}
	return nil
}
