package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/ukydev/vehicle-logbook/internal/manager"
)

// DataHandler serves the bulk export/import/clear endpoints.
type DataHandler struct {
	mgr *manager.Manager
}

// NewDataHandler creates a new data handler.
func NewDataHandler(mgr *manager.Manager) *DataHandler {
	return &DataHandler{mgr: mgr}
}

// Export handles GET on /api/data/export.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	snapshot, err := h.mgr.ExportAllData(r.Context())
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// Import handles POST on /api/data/import. The clear query parameter wipes
// both collections before importing.
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	var snapshot manager.Snapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	clearFirst := r.URL.Query().Get("clear") == "true"
	report, err := h.mgr.ImportAllData(r.Context(), &snapshot, clearFirst)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Clear handles POST on /api/data/clear.
func (h *DataHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.mgr.ClearAllData(r.Context()); err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}
