package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/services"
	"github.com/nurzhan-dev/insurance-crm/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClientHandler handles HTTP requests related to client records.
type ClientHandler struct {
	Service *services.ClientService
}

// NewClientHandler creates a new instance of ClientHandler.
func NewClientHandler(service *services.ClientService) *ClientHandler {
	return &ClientHandler{Service: service}
}

func callerAgentID(r *http.Request) (primitive.ObjectID, error) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		return primitive.NilObjectID, fmt.Errorf("unauthorized")
	}
	return primitive.ObjectIDFromHex(claims.UserID)
}

// CreateClientHandler handles the creation of a new client.
func (h *ClientHandler) CreateClientHandler(w http.ResponseWriter, r *http.Request) {
	agentID, err := callerAgentID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		logrus.WithError(err).Warn("Invalid request payload during client creation")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	client.AgentID = agentID

	created, err := h.Service.CreateClient(r.Context(), &client)
	if err != nil {
		logrus.WithError(err).Error("Failed to create client")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetClientHandler fetches a single client by ID.
func (h *ClientHandler) GetClientHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	client, err := h.Service.GetClient(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	if client.AgentID.Hex() != claims.UserID && claims.Role == models.RoleAgent {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(client)
}

// GetClientsHandler lists the caller's clients, optionally filtered by status.
func (h *ClientHandler) GetClientsHandler(w http.ResponseWriter, r *http.Request) {
	agentID, err := callerAgentID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	clients, err := h.Service.GetClients(r.Context(), agentID, r.URL.Query().Get("status"))
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch clients")
		http.Error(w, "Failed to fetch clients", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(clients)
}

// UpdateClientHandler handles updating an existing client.
func (h *ClientHandler) UpdateClientHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	existing, err := h.Service.GetClient(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}
	if existing.AgentID.Hex() != claims.UserID && claims.Role == models.RoleAgent {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	updated, err := h.Service.UpdateClient(r.Context(), vars["id"], &client)
	if err != nil {
		logrus.WithError(err).Error("Failed to update client")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// DeleteClientHandler handles deleting a client.
func (h *ClientHandler) DeleteClientHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	existing, err := h.Service.GetClient(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}
	if existing.AgentID.Hex() != claims.UserID && claims.Role == models.RoleAgent {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Service.DeleteClient(r.Context(), vars["id"]); err != nil {
		logrus.WithError(err).Error("Failed to delete client")
		http.Error(w, "Failed to delete client", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportClientsHandler streams the caller's book of business as CSV.
func (h *ClientHandler) ExportClientsHandler(w http.ResponseWriter, r *http.Request) {
	agentID, err := callerAgentID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	clients, err := h.Service.GetClients(r.Context(), agentID, "")
	if err != nil {
		http.Error(w, "Failed to fetch clients", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="clients.csv"`)

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"first_name", "last_name", "email", "phone", "status", "address", "notes"})
	for _, c := range clients {
		writer.Write([]string{c.FirstName, c.LastName, c.Email, c.Phone, c.Status, c.Address, c.Notes})
	}
}

// ImportClientsHandler bulk-creates clients from an uploaded CSV file with a
// header row matching the export format.
func (h *ClientHandler) ImportClientsHandler(w http.ResponseWriter, r *http.Request) {
	agentID, err := callerAgentID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "File too big or invalid format", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file in request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		http.Error(w, "Invalid CSV file", http.StatusBadRequest)
		return
	}
	if len(records) < 2 {
		http.Error(w, "CSV file has no data rows", http.StatusBadRequest)
		return
	}

	header := records[0]
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}

	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var clients []models.Client
	for _, row := range records[1:] {
		clients = append(clients, models.Client{
			FirstName: field(row, "first_name"),
			LastName:  field(row, "last_name"),
			Email:     field(row, "email"),
			Phone:     field(row, "phone"),
			Status:    field(row, "status"),
			Address:   field(row, "address"),
			Notes:     field(row, "notes"),
			CreatedAt: time.Now(),
		})
	}

	created, err := h.Service.ImportClients(r.Context(), agentID, clients)
	if err != nil {
		logrus.WithError(err).Error("Client import failed")
		http.Error(w, "Import failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"created": created, "total": len(clients)})
}
