package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/ukydev/vehicle-logbook/internal/manager"
	"github.com/ukydev/vehicle-logbook/internal/models"
)

// VehicleHandler serves the vehicle collection endpoints.
type VehicleHandler struct {
	mgr *manager.Manager
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(mgr *manager.Manager) *VehicleHandler {
	return &VehicleHandler{mgr: mgr}
}

// Collection handles GET (list) and POST (add) on /api/vehicles.
func (h *VehicleHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		vehicles, err := h.mgr.GetAllVehicles(r.Context(), true)
		if err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, vehicles)

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		var in models.VehicleInput
		if err := json.Unmarshal(body, &in); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		vehicle, err := h.mgr.AddVehicle(r.Context(), in)
		if err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, vehicle)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Item handles GET, PUT and DELETE on /api/vehicles/{id}.
func (h *VehicleHandler) Item(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		vehicle, err := h.mgr.GetVehicleByID(r.Context(), id)
		if err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, vehicle)

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		var patch models.VehiclePatch
		if err := json.Unmarshal(body, &patch); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		vehicle, err := h.mgr.UpdateVehicle(r.Context(), id, patch)
		if err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, vehicle)

	case http.MethodDelete:
		cascaded, err := h.mgr.DeleteVehicle(r.Context(), id)
		if err != nil {
			writeManagerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"cascadedMaintenanceRecords": cascaded})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Maintenance handles GET on /api/vehicles/{id}/maintenance.
func (h *VehicleHandler) Maintenance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	records, err := h.mgr.GetMaintenanceRecordsByVehicleID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Search handles GET on /api/search/vehicles. Unparseable criteria are
// ignored rather than rejected, so a bad query degrades to a broader search.
func (h *VehicleHandler) Search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	filter := manager.VehicleFilter{
		Make:  q.Get("make"),
		Model: q.Get("model"),
	}
	if v := q.Get("year"); v != "" {
		if year, err := strconv.Atoi(v); err == nil {
			filter.Year = &year
		}
	}
	if v := q.Get("minMileage"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinMileage = &f
		}
	}
	if v := q.Get("maxMileage"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxMileage = &f
		}
	}

	vehicles, err := h.mgr.SearchVehicles(r.Context(), filter)
	if err != nil {
		writeManagerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicles)
}
