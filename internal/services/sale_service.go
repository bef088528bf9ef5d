package services

import (
	"context"
	"fmt"
	"time"

	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/repository"
	"github.com/nurzhan-dev/insurance-crm/pkg/logger"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SaleService encapsulates the business logic for sales/policies. Every
// lifecycle operation feeds the goal progress ledger after its own write has
// committed; ledger failures are logged and swallowed so they can never fail
// the sale operation itself.
type SaleService struct {
	repo            *repository.SaleRepository
	clientRepo      *repository.ClientRepository
	ProgressService *GoalProgressService
	ActivityService *ActivityService
}

// NewSaleService creates a new instance of SaleService.
func NewSaleService(repo *repository.SaleRepository, clientRepo *repository.ClientRepository, progressService *GoalProgressService, activityService *ActivityService) *SaleService {
	return &SaleService{
		repo:            repo,
		clientRepo:      clientRepo,
		ProgressService: progressService,
		ActivityService: activityService,
	}
}

func validateSale(sale *models.Sale) error {
	if sale.PremiumAmount <= 0 {
		return fmt.Errorf("premium amount must be positive")
	}
	if sale.CommissionAmount < 0 {
		return fmt.Errorf("commission amount cannot be negative")
	}
	if sale.PolicyType == "" {
		return fmt.Errorf("policy type is required")
	}
	return nil
}

// CreateSale stores a new sale and credits the agent's goals.
func (s *SaleService) CreateSale(ctx context.Context, sale *models.Sale) (*models.Sale, error) {
	if err := validateSale(sale); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetClientByID(ctx, sale.ClientID)
	if err != nil {
		return nil, fmt.Errorf("client not found: %v", err)
	}
	if client.AgentID != sale.AgentID {
		return nil, fmt.Errorf("client does not belong to this agent")
	}

	if sale.Status == "" {
		sale.Status = models.SaleStatusActive
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = time.Now()
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		logger.Log.WithError(err).Error("Service failed to create sale")
		return nil, fmt.Errorf("failed to create sale: %v", err)
	}

	if err := s.ProgressService.ApplySaleCreated(ctx, created.AgentID, created); err != nil {
		logger.Log.WithError(err).WithField("sale_id", created.ID.Hex()).
			Warn("Goal progress update failed after sale creation")
	}

	if err := s.ActivityService.LogActivity(ctx, created.AgentID, "sale_created", created.ID,
		fmt.Sprintf("Sold %s policy for $%.2f", created.PolicyType, created.PremiumAmount)); err != nil {
		logrus.WithError(err).Warn("Failed to log sale creation activity")
	}

	return created, nil
}

// GetSale retrieves a sale by its ID.
func (s *SaleService) GetSale(ctx context.Context, id string) (*models.Sale, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid sale ID: %v", err)
	}
	return s.repo.GetSaleByID(ctx, objID)
}

// GetSales retrieves an agent's sales, optionally filtered by client.
func (s *SaleService) GetSales(ctx context.Context, agentID primitive.ObjectID, clientID *primitive.ObjectID) ([]models.Sale, error) {
	return s.repo.GetSales(ctx, agentID, clientID)
}

// UpdateSale updates a sale and adjusts the agent's amount-based goals by the
// difference between the old and new amounts.
func (s *SaleService) UpdateSale(ctx context.Context, id string, updated *models.Sale) (*models.Sale, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid sale ID: %v", err)
	}

	existing, err := s.repo.GetSaleByID(ctx, objID)
	if err != nil {
		return nil, fmt.Errorf("sale not found: %v", err)
	}

	if err := validateSale(updated); err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.AgentID = existing.AgentID
	updated.CreatedAt = existing.CreatedAt
	if updated.ClientID.IsZero() {
		updated.ClientID = existing.ClientID
	}

	sale, err := s.repo.UpdateSale(ctx, objID, updated)
	if err != nil {
		logger.Log.WithError(err).WithField("sale_id", id).Error("Failed to update sale")
		return nil, fmt.Errorf("failed to update sale: %v", err)
	}

	if err := s.ProgressService.ApplySaleUpdated(ctx, sale.AgentID, existing, sale); err != nil {
		logger.Log.WithError(err).WithField("sale_id", sale.ID.Hex()).
			Warn("Goal progress update failed after sale update")
	}

	return sale, nil
}

// DeleteSale removes a sale and reverses its contribution to the agent's
// goals.
func (s *SaleService) DeleteSale(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid sale ID: %v", err)
	}

	existing, err := s.repo.GetSaleByID(ctx, objID)
	if err != nil {
		return fmt.Errorf("sale not found: %v", err)
	}

	if err := s.repo.DeleteSale(ctx, objID); err != nil {
		logger.Log.WithError(err).WithField("sale_id", id).Error("Failed to delete sale")
		return fmt.Errorf("failed to delete sale: %v", err)
	}

	if err := s.ProgressService.ApplySaleDeleted(ctx, existing.AgentID, existing); err != nil {
		logger.Log.WithError(err).WithField("sale_id", id).
			Warn("Goal progress reversal failed after sale deletion")
	}

	return nil
}
