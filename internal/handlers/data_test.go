package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/vehicle-logbook/internal/manager"
	"github.com/ukydev/vehicle-logbook/internal/models"
	"github.com/ukydev/vehicle-logbook/internal/store"
)

func TestDataHandler_ExportImportClear(t *testing.T) {
	mgr := newTestManager(t)
	vh := NewVehicleHandler(mgr)
	mh := NewMaintenanceHandler(mgr)
	h := NewDataHandler(mgr)

	v := createVehicle(t, vh, models.VehicleInput{Make: "Toyota", Model: "Corolla", Year: 2020})
	w := postJSON(t, mh.Collection, "/api/maintenance", models.MaintenanceInput{
		VehicleID: v.ID, Date: "2024-05-01", ServiceType: "oil change", Cost: 50,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Export.
	req := httptest.NewRequest(http.MethodGet, "/api/data/export", nil)
	rec := httptest.NewRecorder()
	h.Export(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot manager.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Len(t, snapshot.Vehicles, 1)
	assert.Len(t, snapshot.MaintenanceRecords, 1)
	assert.Equal(t, store.SchemaVersion, snapshot.SchemaVersion)

	// Clear.
	req = httptest.NewRequest(http.MethodPost, "/api/data/clear", nil)
	rec = httptest.NewRecorder()
	h.Clear(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	listReq := httptest.NewRequest(http.MethodGet, "/api/vehicles", nil)
	listRec := httptest.NewRecorder()
	vh.Collection(listRec, listReq)
	var vehicles []models.Vehicle
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &vehicles))
	assert.Empty(t, vehicles)

	// Import the snapshot back.
	rec = postJSON(t, h.Import, "/api/data/import?clear=true", snapshot)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report manager.ImportReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Vehicles.Imported)
	assert.Equal(t, 1, report.MaintenanceRecords.Imported)

	listRec = httptest.NewRecorder()
	vh.Collection(listRec, httptest.NewRequest(http.MethodGet, "/api/vehicles", nil))
	vehicles = nil
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &vehicles))
	require.Len(t, vehicles, 1)
	assert.Equal(t, v.ID, vehicles[0].ID)
}

func TestDataHandler_ImportInvalidJSON(t *testing.T) {
	mgr := newTestManager(t)
	h := NewDataHandler(mgr)

	req := httptest.NewRequest(http.MethodPost, "/api/data/import", nil)
	rec := httptest.NewRecorder()
	h.Import(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDataHandler_MethodChecks(t *testing.T) {
	mgr := newTestManager(t)
	h := NewDataHandler(mgr)

	rec := httptest.NewRecorder()
	h.Export(rec, httptest.NewRequest(http.MethodPost, "/api/data/export", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.Clear(rec, httptest.NewRequest(http.MethodGet, "/api/data/clear", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
