package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nurzhan-dev/insurance-crm/internal/models"
	"github.com/nurzhan-dev/insurance-crm/internal/services"
	"github.com/nurzhan-dev/insurance-crm/pkg/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentHandler handles the agency document library: uploads, downloads,
// listing and deletion.
type DocumentHandler struct {
	Service   *services.DocumentService
	UploadDir string
}

// NewDocumentHandler creates a new instance of DocumentHandler.
func NewDocumentHandler(service *services.DocumentService, uploadDir string) *DocumentHandler {
	return &DocumentHandler{
		Service:   service,
		UploadDir: uploadDir,
	}
}

// UploadDocumentHandler accepts a multipart upload and stores the file on
// disk with its metadata record.
func (h *DocumentHandler) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Parse multipart form (max size: 20MB)
	if err := r.ParseMultipartForm(20 << 20); err != nil {
		http.Error(w, "File too big or invalid format", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file in request", http.StatusBadRequest)
		return
	}
	defer file.Close()

	uploadedBy, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusInternalServerError)
		return
	}

	if err := os.MkdirAll(h.UploadDir, os.ModePerm); err != nil {
		http.Error(w, "Failed to create upload folder", http.StatusInternalServerError)
		return
	}

	// Store under a unique name so uploads can never collide.
	ext := filepath.Ext(header.Filename)
	storedName := uuid.NewString() + ext
	savePath := filepath.Join(h.UploadDir, storedName)

	dst, err := os.Create(savePath)
	if err != nil {
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		http.Error(w, "Failed to store file", http.StatusInternalServerError)
		return
	}

	doc := &models.Document{
		Title:       r.FormValue("title"),
		Category:    r.FormValue("category"),
		FileName:    header.Filename,
		FilePath:    savePath,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   size,
		UploadedBy:  uploadedBy,
	}

	created, err := h.Service.CreateDocument(r.Context(), doc)
	if err != nil {
		logrus.WithError(err).Error("Failed to create document record")
		os.Remove(savePath)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	logrus.WithField("document_id", created.ID.Hex()).Info("Document uploaded")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

// GetDocumentsHandler lists the document library, optionally by category.
func (h *DocumentHandler) GetDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	docs, err := h.Service.GetDocuments(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		logrus.WithError(err).Error("Failed to fetch documents")
		http.Error(w, "Failed to fetch documents", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(docs)
}

// DownloadDocumentHandler streams the stored file back to the caller.
func (h *DocumentHandler) DownloadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doc, err := h.Service.GetDocument(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, doc.FileName))
	http.ServeFile(w, r, doc.FilePath)
}

// DeleteDocumentHandler removes a document. Only the uploader or an admin may
// delete.
func (h *DocumentHandler) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	doc, err := h.Service.GetDocument(r.Context(), vars["id"])
	if err != nil {
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	}

	if doc.UploadedBy.Hex() != claims.UserID && claims.Role != models.RoleAdmin {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if err := h.Service.DeleteDocument(r.Context(), vars["id"]); err != nil {
		logrus.WithError(err).Error("Failed to delete document")
		http.Error(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
