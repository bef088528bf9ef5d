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

// SaleHandler handles HTTP requests related to sales/policies.
type SaleHandler struct {
	Service *services.SaleService
}

// NewSaleHandler creates a new instance of SaleHandler.
func NewSaleHandler(service *services.SaleService) *SaleHandler {
	return &SaleHandler{Service: service}
}

// CreateSaleHandler records a new sale. Goal progress is updated as a side
// effect inside the service.
func (h *SaleHandler) CreateSaleHandler(w http.ResponseWriter, r *http.Request) {
	agentID, err := callerAgentID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var sale models.Sale
	if err := json.NewDecoder(r.Body).Decode(&sale); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during sale creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	sale.AgentID = agentID

	created, err := h.Service.CreateSale(r.Context(), &sale)
	if err != nil {
		logrus.WithError(err).Error("Failed to create sale")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetSaleHandler fetches a single sale by ID.
func (h *SaleHandler) GetSaleHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	sale, err := h.Service.GetSale(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Sale not found", http.StatusNotFound)
		return
	}

	if sale.AgentID.Hex() != claims.UserID && claims.Role == models.RoleAgent {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sale)
}

// GetSalesHandler lists the caller's sales, optionally filtered by client.
func (h *SaleHandler) GetSalesHandler(w http.ResponseWriter, r *http.Request) {
	agentID, err := callerAgentID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var clientID *primitive.ObjectID
	if clientHex := r.URL.Query().Get("client_id"); clientHex != "" {
		id, err := primitive.ObjectIDFromHex(clientHex)
		if err != nil {
			http.Error(w, "Invalid client ID", http.StatusBadRequest)
			return
		}
		clientID = &id
	}

	sales, err := h.Service.GetSales(r.Context(), agentID, clientID)
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch sales")
		http.Error(w, "Failed to fetch sales", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sales)
}

// UpdateSaleHandler updates a sale; amount-based goals are adjusted by the
// difference inside the service.
func (h *SaleHandler) UpdateSaleHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	existing, err := h.Service.GetSale(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Sale not found", http.StatusNotFound)
		return
	}
	if existing.AgentID.Hex() != claims.UserID && claims.Role == models.RoleAgent {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var sale models.Sale
	if err := json.NewDecoder(r.Body).Decode(&sale); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateSale(r.Context(), vars["id"], &sale)
	if err != nil {
		logrus.WithError(err).Error("Failed to update sale")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// DeleteSaleHandler deletes a sale and reverses its goal contributions.
func (h *SaleHandler) DeleteSaleHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	existing, err := h.Service.GetSale(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Sale not found", http.StatusNotFound)
		return
	}
	if existing.AgentID.Hex() != claims.UserID && claims.Role == models.RoleAgent {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Service.DeleteSale(r.Context(), vars["id"]); err != nil {
		logrus.WithError(err).Error("Failed to delete sale")
		http.Error(w, "Failed to delete sale", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
