package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ukydev/vehicle-logbook/internal/manager"
	"github.com/ukydev/vehicle-logbook/internal/models"
)

// MaintenanceHandler serves the maintenance record endpoints.
type MaintenanceHandler struct {
	mgr *manager.Manager
}

// NewMaintenanceHandler creates a new maintenance handler.
func NewMaintenanceHandler(mgr *manager.Manager) *MaintenanceHandler {
	return &MaintenanceHandler{mgr: mgr}
}

// Collection handles GET (list) and POST (add) on /api/maintenance.
func (h *MaintenanceHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := h.mgr.GetAllMaintenanceRecords(r.Context(), true)
		if err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, records)

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		var in models.MaintenanceInput
		if err := json.Unmarshal(body, &in); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		record, err := h.mgr.AddMaintenanceRecord(r.Context(), in)
		if err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, record)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Item handles GET, PUT and DELETE on /api/maintenance/{id}.
func (h *MaintenanceHandler) Item(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		record, err := h.mgr.GetMaintenanceRecordByID(r.Context(), id)
		if err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		var patch models.MaintenancePatch
		if err := json.Unmarshal(body, &patch); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		record, err := h.mgr.UpdateMaintenanceRecord(r.Context(), id, patch)
		if err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, record)

	case http.MethodDelete:
		if err := h.mgr.DeleteMaintenanceRecord(r.Context(), id); err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Search handles GET on /api/search/maintenance. Unparseable criteria are
// ignored rather than rejected.
func (h *MaintenanceHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	filter := manager.MaintenanceFilter{
		VehicleID:   q.Get("vehicleId"),
		ServiceType: q.Get("serviceType"),
	}
	if v := q.Get("minCost"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinCost = &f
		}
	}
	if v := q.Get("maxCost"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxCost = &f
		}
	}
	if v := q.Get("dateFrom"); v != "" {
		if t, err := models.ParseDate(v); err == nil {
			filter.DateFrom = &t
		}
	}
	if v := q.Get("dateTo"); v != "" {
		if t, err := models.ParseDate(v); err == nil {
			// A plain day means "through the end of that day".
			if len(v) == len("2006-01-02") {
				t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			}
			filter.DateTo = &t
		}
	}

	records, err := h.mgr.SearchMaintenanceRecords(r.Context(), filter)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
