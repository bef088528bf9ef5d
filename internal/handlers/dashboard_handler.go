package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/services"
	"github.com/nurzhan-dev/insurance-crm/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DashboardHandler serves the aggregated per-agent overview.
type DashboardHandler struct {
	Service *services.DashboardService
}

// NewDashboardHandler creates a new instance of DashboardHandler.
func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{Service: service}
}

// GetDashboardHandler returns the caller's dashboard. Managers may pass
// ?agent_id= to view an agent's dashboard; ?recalc=1 re-derives goal
// progress first.
func (h *DashboardHandler) GetDashboardHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	agentHex := claims.UserID
	if requested := r.URL.Query().Get("agent_id"); requested != "" {
		if claims.Role == models.RoleAgent && requested != claims.UserID {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		agentHex = requested
	}

	agentID, err := primitive.ObjectIDFromHex(agentHex)
	if err != nil {
		http.Error(w, "Invalid agent ID", http.StatusBadRequest)
		return
	}

	recalc := r.URL.Query().Get("recalc") == "1"

	summary, err := h.Service.GetDashboard(r.Context(), agentID, recalc)
	if err != nil {
		logrus.WithError(err).Error("Failed to build dashboard")
		http.Error(w, "Failed to build dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
