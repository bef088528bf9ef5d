package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/services"
	"github.com/nurzhan-dev/insurance-crm/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GoalHandler handles HTTP requests related to goals.
type GoalHandler struct {
	Service         *services.GoalService
	ProgressService *services.GoalProgressService
}

// NewGoalHandler creates a new instance of GoalHandler.
func NewGoalHandler(goalService *services.GoalService, progressService *services.GoalProgressService) *GoalHandler {
	return &GoalHandler{
		Service:         goalService,
		ProgressService: progressService,
	}
}

// CreateGoalHandler handles the creation of a new goal.
func (h *GoalHandler) CreateGoalHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		logrus.Warn("Unauthorized access attempt during goal creation")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var goal models.Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during goal creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	agentID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		logrus.WithError(err).Error("Failed to convert user ID")
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	// Managers may create goals on behalf of their agents; agents only for
	// themselves.
	if goal.AgentID.IsZero() || claims.Role == models.RoleAgent {
		goal.AgentID = agentID
	}

	createdGoal, err := h.Service.CreateGoal(r.Context(), &goal)
	if err != nil {
		logrus.WithError(err).Error("Failed to create goal")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logrus.WithField("goal_id", createdGoal.ID.Hex()).Info("Goal created")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createdGoal)
}

// GetGoalHandler handles fetching a single goal by ID.
func (h *GoalHandler) GetGoalHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	goal, err := h.Service.GetGoal(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}

	if goal.AgentID.Hex() != claims.UserID && claims.Role == models.RoleAgent {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(goal)
}

// GetGoalsHandler lists the caller's goals with derived status. Managers may
// pass ?agent_id= to inspect another agent's goals.
func (h *GoalHandler) GetGoalsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	agentHex := claims.UserID
	if requested := r.URL.Query().Get("agent_id"); requested != "" && claims.Role != models.RoleAgent {
		agentHex = requested
	}

	agentID, err := primitive.ObjectIDFromHex(agentHex)
	if err != nil {
		http.Error(w, "Invalid agent ID", http.StatusBadRequest)
		return
	}

	goals, err := h.Service.GetGoals(r.Context(), agentID, r.URL.Query().Get("metric_type"))
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch goals")
		http.Error(w, "Failed to fetch goals", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(goals)
}

// UpdateGoalHandler handles updating an existing goal.
func (h *GoalHandler) UpdateGoalHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	existing, err := h.Service.GetGoal(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}
	if existing.AgentID.Hex() != claims.UserID && claims.Role == models.RoleAgent {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var goal models.Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updatedGoal, err := h.Service.UpdateGoal(r.Context(), vars["id"], &goal)
	if err != nil {
		logrus.WithError(err).Error("Failed to update goal")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updatedGoal)
}

// DeleteGoalHandler handles deleting a goal.
func (h *GoalHandler) DeleteGoalHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	existing, err := h.Service.GetGoal(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Goal not found", http.StatusNotFound)
		return
	}
	if existing.AgentID.Hex() != claims.UserID && claims.Role == models.RoleAgent {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Service.DeleteGoal(r.Context(), vars["id"]); err != nil {
		logrus.WithError(err).Error("Failed to delete goal")
		http.Error(w, "Failed to delete goal", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecalculateGoalsHandler re-derives goal progress from the underlying
// sale/client history. Managers and admins only; ?agent_id= narrows the scope
// to one agent, otherwise every active goal is recalculated.
func (h *GoalHandler) RecalculateGoalsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var scope *primitive.ObjectID
	if agentHex := r.URL.Query().Get("agent_id"); agentHex != "" {
		agentID, err := primitive.ObjectIDFromHex(agentHex)
		if err != nil {
			http.Error(w, "Invalid agent ID", http.StatusBadRequest)
			return
		}
		scope = &agentID
	}

	if err := h.ProgressService.RecalculateAll(r.Context(), scope); err != nil {
		logrus.WithError(err).Error("Goal recalculation failed")
		http.Error(w, "Recalculation failed, please retry", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "recalculated"})
}

// GetAllGoalsHandler lists every goal in the system (admin view).
func (h *GoalHandler) GetAllGoalsHandler(w http.ResponseWriter, r *http.Request) {
	goals, err := h.Service.GetAllGoals(r.Context(), 100)
	if err != nil {
		http.Error(w, "Failed to fetch goals", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(goals)
}
