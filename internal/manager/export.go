package manager

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/vehicle-logbook/internal/models"
	"github.com/ukydev/vehicle-logbook/internal/store"
)

// Snapshot is a bulk export of both collections plus metadata. A nil
// collection in an import means "not provided" and is skipped.
type Snapshot struct {
	Vehicles           []models.Vehicle            `json:"vehicles"`
	MaintenanceRecords []models.MaintenanceRecord  `json:"maintenanceRecords"`
	ExportedAt         time.Time                   `json:"exportedAt"`
	SchemaVersion      string                      `json:"schemaVersion"`
}

// CollectionReport is the per-collection outcome of an import.
type CollectionReport struct {
	Imported int    `json:"imported"`
	Error    string `json:"error,omitempty"`
}

// ImportReport summarizes an import, one report per collection.
type ImportReport struct {
	Vehicles           CollectionReport `json:"vehicles"`
	MaintenanceRecords CollectionReport `json:"maintenanceRecords"`
}

// ExportAllData returns a snapshot of both collections with an export
// timestamp and the store schema version.
func (m *Manager) ExportAllData(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vehicles, err := m.loadVehicles(ctx, true)
	if err != nil {
		return nil, err
	}
	records, err := m.loadRecords(ctx, true)
	if err != nil {
		return nil, err
	}
	version, err := m.st.Version(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}
	return &Snapshot{
		Vehicles:           append([]models.Vehicle{}, vehicles...),
		MaintenanceRecords: append([]models.MaintenanceRecord{}, records...),
		ExportedAt:         m.now(),
		SchemaVersion:      version,
	}, nil
}

// ImportAllData writes the snapshot's collections verbatim, without
// per-record validation. When clearFirst is set both collections are emptied
// before the import. A failure in one collection does not abort the other;
// the report carries both outcomes.
func (m *Manager) ImportAllData(ctx context.Context, snap *Snapshot, clearFirst bool) (*ImportReport, error) {
	if snap == nil {
		return nil, fmt.Errorf("snapshot is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if clearFirst {
		if err := m.persistVehicles(ctx, []models.Vehicle{}); err != nil {
			return nil, err
		}
		if err := m.persistRecords(ctx, []models.MaintenanceRecord{}); err != nil {
			return nil, err
		}
	}

	report := &ImportReport{}
	if snap.Vehicles != nil {
		if err := m.persistVehicles(ctx, append([]models.Vehicle{}, snap.Vehicles...)); err != nil {
			report.Vehicles.Error = err.Error()
		} else {
			report.Vehicles.Imported = len(snap.Vehicles)
		}
	}
	if snap.MaintenanceRecords != nil {
		if err := m.persistRecords(ctx, append([]models.MaintenanceRecord{}, snap.MaintenanceRecords...)); err != nil {
			report.MaintenanceRecords.Error = err.Error()
		} else {
			report.MaintenanceRecords.Imported = len(snap.MaintenanceRecords)
		}
	}
	return report, nil
}

// SchemaVersion returns the store's current schema version.
func (m *Manager) SchemaVersion(ctx context.Context) (string, error) {
	version, err := m.st.Version(ctx)
	if err == store.ErrNotFound {
		return "", fmt.Errorf("schema version missing: %w", err)
	}
	return version, err
}
