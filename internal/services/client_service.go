package services

import (
	"context"
	"fmt"

	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/repository"
	"github.com/nurzhan-dev/insurance-crm/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientService encapsulates the business logic for client records.
type ClientService struct {
	repo            *repository.ClientRepository
	ProgressService *GoalProgressService
	ActivityService *ActivityService
}

// NewClientService creates a new instance of ClientService.
func NewClientService(repo *repository.ClientRepository, progressService *GoalProgressService, activityService *ActivityService) *ClientService {
	return &ClientService{
		repo:            repo,
		ProgressService: progressService,
		ActivityService: activityService,
	}
}

// CreateClient stores a new client and feeds the goal progress ledger. The
// ledger call is best-effort: the client is already persisted, so a goal
// accounting failure is logged and swallowed.
func (s *ClientService) CreateClient(ctx context.Context, client *models.Client) (*models.Client, error) {
	if client.FirstName == "" && client.LastName == "" {
		return nil, fmt.Errorf("client name is required")
	}
	if client.Status == "" {
		client.Status = models.ClientStatusLead
	}

	created, err := s.repo.CreateClient(ctx, client)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to create client")
		return nil, fmt.Errorf("failed to create client: %v", err)
	}

	if err := s.ProgressService.ApplyClientCreated(ctx, created.AgentID); err != nil {
		logger.Log.WithError(err).WithField("client_id", created.ID.Hex()).
			Warn("Goal progress update failed after client creation")
	}

	if err := s.ActivityService.LogActivity(ctx, created.AgentID, "client_created", created.ID,
		fmt.Sprintf("Added client %q", created.FullName())); err != nil {
		logrus.WithError(err).Warn("Failed to log client creation activity")
	}

	return created, nil
}

// GetClient retrieves a client by its ID.
func (s *ClientService) GetClient(ctx context.Context, id string) (*models.Client, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid client ID: %v", err)
	}
	return s.repo.GetClientByID(ctx, objID)
}

// GetClients retrieves an agent's clients with an optional status filter.
func (s *ClientService) GetClients(ctx context.Context, agentID primitive.ObjectID, status string) ([]models.Client, error) {
	return s.repo.GetClients(ctx, agentID, status)
}

// UpdateClient updates an existing client. Client updates do not drive goal
// math: the acquisition was already counted on creation.
func (s *ClientService) UpdateClient(ctx context.Context, id string, updated *models.Client) (*models.Client, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid client ID: %v", err)
	}

	existing, err := s.repo.GetClientByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("client not found: %v", err)
	}

	updated.ID = existing.ID
	updated.AgentID = existing.AgentID
	updated.CreatedAt = existing.CreatedAt
	if updated.Status == "" {
		updated.Status = existing.Status
	}

	client, err := s.repo.UpdateClient(ctx, objID, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %v", err)
	}
	return client, nil
}

// DeleteClient removes a client record. Client-count goals are not
// decremented: acquisitions count permanently.
func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid client ID: %v", err)
	}
	return s.repo.DeleteClient(ctx, objID)
}

// ImportClients bulk-creates clients for an agent (CSV import path). Each
// created client feeds the ledger like a regular creation. Returns the number
// of clients created.
func (s *ClientService) ImportClients(ctx context.Context, agentID primitive.ObjectID, clients []models.Client) (int, error) {
	created := 0
	for i := range clients {
		clients[i].AgentID = agentID
		if _, err := s.CreateClient(ctx, &clients[i]); err != nil {
			logrus.WithError(err).WithField("row", i+1).Warn("Skipping client row during import")
			continue
		}
		created++
	}

	logrus.WithFields(logrus.Fields{
		"agent_id": agentID.Hex(),
		"created":  created,
		"total":    len(clients),
	}).Info("Client import finished")
	return created, nil
}
