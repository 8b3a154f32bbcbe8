// Package manager owns the two persisted collections (vehicles and
// maintenance records) and provides CRUD, search, cascade deletion and bulk
// snapshot operations over the key-value store, with a short-lived read
// cache per collection.
package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/vehicle-logbook/internal/models"
	"github.com/ukydev/vehicle-logbook/internal/store"
)

const (
	vehiclesKey = "logbook:vehicles"
	recordsKey  = "logbook:maintenance"
)

var (
	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidID is returned for blank or missing ids.
	ErrInvalidID = errors.New("invalid record id")
	// ErrDuplicateID is returned when adding a record whose explicit id
	// already exists in the collection.
	ErrDuplicateID = errors.New("record id already exists")
	// ErrVehicleNotFound is returned when a maintenance record references
	// a vehicle id that does not exist.
	ErrVehicleNotFound = errors.New("referenced vehicle not found")
)

// Manager is the single owner of the persisted collections. It is safe for
// concurrent use; every operation runs under one lock because persisting a
// collection is a read-modify-write of the whole serialized list.
type Manager struct {
	st *store.Store

	mu       sync.Mutex
	vehicles collectionCache[models.Vehicle]
	records  collectionCache[models.MaintenanceRecord]

	now func() time.Time
}

// New creates a manager over an opened store.
func New(st *store.Store) *Manager {
	return &Manager{st: st, now: time.Now}
}

// Close releases the underlying store.
func (m *Manager) Close(ctx context.Context) error {
	return m.st.Close(ctx)
}

// persistVehicles is the single write path for the vehicle collection. The
// cache is invalidated before the write so a store failure leaves it empty
// rather than diverging from persisted truth.
func (m *Manager) persistVehicles(ctx context.Context, list []models.Vehicle) error {
	m.vehicles.invalidate()
	if err := m.st.Set(ctx, vehiclesKey, list); err != nil {
		return fmt.Errorf("failed to persist vehicles: %w", err)
	}
	m.vehicles.put(m.now(), list)
	return nil
}

// persistRecords is the single write path for the maintenance collection.
func (m *Manager) persistRecords(ctx context.Context, list []models.MaintenanceRecord) error {
	m.records.invalidate()
	if err := m.st.Set(ctx, recordsKey, list); err != nil {
		return fmt.Errorf("failed to persist maintenance records: %w", err)
	}
	m.records.put(m.now(), list)
	return nil
}

// loadVehicles returns the current vehicle collection, from cache when
// allowed and fresh. Callers must hold m.mu and must not mutate the result
// in place.
func (m *Manager) loadVehicles(ctx context.Context, useCache bool) ([]models.Vehicle, error) {
	if useCache {
		if data, ok := m.vehicles.get(m.now(), cacheTTL); ok {
			return data, nil
		}
	}
	var list []models.Vehicle
	if err := m.st.Get(ctx, vehiclesKey, &list); err != nil && err != store.ErrNotFound {
		return nil, fmt.Errorf("failed to load vehicles: %w", err)
	}
	m.vehicles.put(m.now(), list)
	return list, nil
}

func (m *Manager) loadRecords(ctx context.Context, useCache bool) ([]models.MaintenanceRecord, error) {
	if useCache {
		if data, ok := m.records.get(m.now(), cacheTTL); ok {
			return data, nil
		}
	}
	var list []models.MaintenanceRecord
	if err := m.st.Get(ctx, recordsKey, &list); err != nil && err != store.ErrNotFound {
		return nil, fmt.Errorf("failed to load maintenance records: %w", err)
	}
	m.records.put(m.now(), list)
	return list, nil
}

// GetAllVehicles returns a copy of the vehicle collection.
func (m *Manager) GetAllVehicles(ctx context.Context, useCache bool) ([]models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadVehicles(ctx, useCache)
	if err != nil {
		return nil, err
	}
	return append([]models.Vehicle{}, list...), nil
}

// GetVehicleByID returns the vehicle with the given id, ErrInvalidID for a
// blank id or ErrNotFound when absent.
func (m *Manager) GetVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadVehicles(ctx, true)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			v := list[i]
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

// AddVehicle validates and appends a new vehicle. An explicit id that
// already exists is a hard error, never an overwrite.
func (m *Manager) AddVehicle(ctx context.Context, in models.VehicleInput) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadVehicles(ctx, true)
	if err != nil {
		return nil, err
	}
	if id := strings.TrimSpace(in.ID); id != "" {
		for i := range list {
			if list[i].ID == id {
				return nil, ErrDuplicateID
			}
		}
	}

	v, err := models.NewVehicle(in)
	if err != nil {
		return nil, err
	}
	if err := m.persistVehicles(ctx, append(append([]models.Vehicle{}, list...), *v)); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"id": v.ID, "make": v.Make, "model": v.Model}).Debug("vehicle added")
	out := *v
	return &out, nil
}

// UpdateVehicle applies a partial update to the vehicle with the given id.
// ID and CreatedAt are always preserved; on validation failure nothing
// changes.
func (m *Manager) UpdateVehicle(ctx context.Context, id string, patch models.VehiclePatch) (*models.Vehicle, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadVehicles(ctx, true)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	updated := list[idx]
	if err := updated.Apply(patch); err != nil {
		return nil, err
	}
	next := append([]models.Vehicle{}, list...)
	next[idx] = updated
	if err := m.persistVehicles(ctx, next); err != nil {
		return nil, err
	}
	out := updated
	return &out, nil
}

// DeleteVehicle removes the vehicle and cascades to every maintenance
// record referencing it, returning the number of cascade-deleted records.
func (m *Manager) DeleteVehicle(ctx context.Context, id string) (int, error) {
	if strings.TrimSpace(id) == "" {
		return 0, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadVehicles(ctx, true)
	if err != nil {
		return 0, err
	}
	next := make([]models.Vehicle, 0, len(list))
	found := false
	for i := range list {
		if list[i].ID == id {
			found = true
			continue
		}
		next = append(next, list[i])
	}
	if !found {
		return 0, ErrNotFound
	}
	if err := m.persistVehicles(ctx, next); err != nil {
		return 0, err
	}

	records, err := m.loadRecords(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("vehicle deleted but cascade cleanup failed: %w", err)
	}
	kept := make([]models.MaintenanceRecord, 0, len(records))
	cascaded := 0
	for i := range records {
		if records[i].VehicleID == id {
			cascaded++
			continue
		}
		kept = append(kept, records[i])
	}
	if cascaded > 0 {
		if err := m.persistRecords(ctx, kept); err != nil {
			return 0, fmt.Errorf("vehicle deleted but cascade cleanup failed: %w", err)
		}
	}
	log.WithFields(log.Fields{"id": id, "cascaded": cascaded}).Debug("vehicle deleted")
	return cascaded, nil
}

// GetAllMaintenanceRecords returns a copy of the maintenance collection.
func (m *Manager) GetAllMaintenanceRecords(ctx context.Context, useCache bool) ([]models.MaintenanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadRecords(ctx, useCache)
	if err != nil {
		return nil, err
	}
	return append([]models.MaintenanceRecord{}, list...), nil
}

// GetMaintenanceRecordByID returns the record with the given id.
func (m *Manager) GetMaintenanceRecordByID(ctx context.Context, id string) (*models.MaintenanceRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadRecords(ctx, true)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			r := list[i]
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

// GetMaintenanceRecordsByVehicleID returns every record referencing the
// given vehicle id.
func (m *Manager) GetMaintenanceRecordsByVehicleID(ctx context.Context, vehicleID string) ([]models.MaintenanceRecord, error) {
	if strings.TrimSpace(vehicleID) == "" {
		return nil, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadRecords(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]models.MaintenanceRecord, 0)
	for i := range list {
		if list[i].VehicleID == vehicleID {
			out = append(out, list[i])
		}
	}
	return out, nil
}

// AddMaintenanceRecord validates and appends a new record. The referenced
// vehicle must exist at creation time; integrity is not enforced after that.
func (m *Manager) AddMaintenanceRecord(ctx context.Context, in models.MaintenanceInput) (*models.MaintenanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadRecords(ctx, true)
	if err != nil {
		return nil, err
	}
	if id := strings.TrimSpace(in.ID); id != "" {
		for i := range list {
			if list[i].ID == id {
				return nil, ErrDuplicateID
			}
		}
	}

	r, err := models.NewMaintenanceRecord(in)
	if err != nil {
		return nil, err
	}

	vehicles, err := m.loadVehicles(ctx, true)
	if err != nil {
		return nil, err
	}
	exists := false
	for i := range vehicles {
		if vehicles[i].ID == r.VehicleID {
			exists = true
			break
		}
	}
	if !exists {
		return nil, ErrVehicleNotFound
	}

	if err := m.persistRecords(ctx, append(append([]models.MaintenanceRecord{}, list...), *r)); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"id": r.ID, "vehicleId": r.VehicleID, "serviceType": r.ServiceType}).Debug("maintenance record added")
	out := *r
	return &out, nil
}

// UpdateMaintenanceRecord applies a partial update to the record with the
// given id. ID and CreatedAt are always preserved.
func (m *Manager) UpdateMaintenanceRecord(ctx context.Context, id string, patch models.MaintenancePatch) (*models.MaintenanceRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadRecords(ctx, true)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range list {
		if list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	updated := list[idx]
	if err := updated.Apply(patch); err != nil {
		return nil, err
	}
	next := append([]models.MaintenanceRecord{}, list...)
	next[idx] = updated
	if err := m.persistRecords(ctx, next); err != nil {
		return nil, err
	}
	out := updated
	return &out, nil
}

// DeleteMaintenanceRecord removes the record with the given id.
func (m *Manager) DeleteMaintenanceRecord(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidID
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadRecords(ctx, true)
	if err != nil {
		return err
	}
	next := make([]models.MaintenanceRecord, 0, len(list))
	found := false
	for i := range list {
		if list[i].ID == id {
			found = true
			continue
		}
		next = append(next, list[i])
	}
	if !found {
		return ErrNotFound
	}
	return m.persistRecords(ctx, next)
}

// ClearAllData resets both collections to empty and drops the caches.
func (m *Manager) ClearAllData(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.persistVehicles(ctx, []models.Vehicle{}); err != nil {
		return err
	}
	return m.persistRecords(ctx, []models.MaintenanceRecord{})
}
