package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/services"
	"github.com/nurzhan-dev/insurance-crm/pkg/middleware"
	"github.com/sirupsen/logrus"
)

// ReminderHandler handles HTTP requests related to reminders.
type ReminderHandler struct {
	Service *services.ReminderService
}

// NewReminderHandler creates a new instance of ReminderHandler.
func NewReminderHandler(service *services.ReminderService) *ReminderHandler {
	return &ReminderHandler{Service: service}
}

// CreateReminderHandler creates a new reminder for the caller.
func (h *ReminderHandler) CreateReminderHandler(w http.ResponseWriter, r *http.Request) {
	agentID, err := callerAgentID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var reminder models.Reminder
	if err := json.NewDecoder(r.Body).Decode(&reminder); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	reminder.AgentID = agentID

	created, err := h.Service.CreateReminder(r.Context(), &reminder)
	if err != nil {
		logrus.WithError(err).Error("Failed to create reminder")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetRemindersHandler lists the caller's reminders. Pass ?all=1 to include
// completed ones.
func (h *ReminderHandler) GetRemindersHandler(w http.ResponseWriter, r *http.Request) {
	agentID, err := callerAgentID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	includeCompleted := r.URL.Query().Get("all") == "1"
	reminders, err := h.Service.GetReminders(r.Context(), agentID, includeCompleted)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch reminders")
		http.Error(w, "Failed to fetch reminders", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reminders)
}

// UpdateReminderHandler updates an existing reminder.
func (h *ReminderHandler) UpdateReminderHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	existing, err := h.Service.GetReminder(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Reminder not found", http.StatusNotFound)
		return
	}
	if existing.AgentID.Hex() != claims.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var reminder models.Reminder
	if err := json.NewDecoder(r.Body).Decode(&reminder); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateReminder(r.Context(), vars["id"], &reminder)
	if err != nil {
		logrus.WithError(err).Error("Failed to update reminder")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// CompleteReminderHandler marks a reminder as done.
func (h *ReminderHandler) CompleteReminderHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	existing, err := h.Service.GetReminder(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Reminder not found", http.StatusNotFound)
		return
	}
	if existing.AgentID.Hex() != claims.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	completed, err := h.Service.CompleteReminder(r.Context(), vars["id"])
	if err != nil {
		logrus.WithError(err).Error("Failed to complete reminder")
		http.Error(w, "Failed to complete reminder", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(completed)
}

// DeleteReminderHandler deletes a reminder.
func (h *ReminderHandler) DeleteReminderHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	existing, err := h.Service.GetReminder(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Reminder not found", http.StatusNotFound)
		return
	}
	if existing.AgentID.Hex() != claims.UserID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Service.DeleteReminder(r.Context(), vars["id"]); err != nil {
		logrus.WithError(err).Error("Failed to delete reminder")
		http.Error(w, "Failed to delete reminder", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
