package manager

import (
	"context"
	"strings"
	"time"

	"github.com/ukydev/vehicle-logbook/internal/models"
)

// VehicleFilter selects vehicles by the logical AND of every set criterion.
// String criteria are case-insensitive substring matches; a zero filter
// matches everything.
type VehicleFilter struct {
	Make       string
	Model      string
	Year       *int
	MinMileage *float64
	MaxMileage *float64
}

func (f VehicleFilter) matches(v models.Vehicle) bool {
	if f.Make != "" && !containsFold(v.Make, f.Make) {
		return false
	}
	if f.Model != "" && !containsFold(v.Model, f.Model) {
		return false
	}
	if f.Year != nil && v.Year != *f.Year {
		return false
	}
	if f.MinMileage != nil && v.Mileage < *f.MinMileage {
		return false
	}
	if f.MaxMileage != nil && v.Mileage > *f.MaxMileage {
		return false
	}
	return true
}

// MaintenanceFilter selects maintenance records by the logical AND of every
// set criterion. Date bounds are inclusive.
type MaintenanceFilter struct {
	VehicleID   string
	ServiceType string
	MinCost     *float64
	MaxCost     *float64
	DateFrom    *time.Time
	DateTo      *time.Time
}

func (f MaintenanceFilter) matches(r models.MaintenanceRecord) bool {
	if f.VehicleID != "" && r.VehicleID != f.VehicleID {
		return false
	}
	if f.ServiceType != "" && !containsFold(r.ServiceType, f.ServiceType) {
		return false
	}
	if f.MinCost != nil && r.Cost < *f.MinCost {
		return false
	}
	if f.MaxCost != nil && r.Cost > *f.MaxCost {
		return false
	}
	if f.DateFrom != nil && r.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.Date.After(*f.DateTo) {
		return false
	}
	return true
}

// SearchVehicles returns every vehicle matching the filter, in collection
// order.
func (m *Manager) SearchVehicles(ctx context.Context, filter VehicleFilter) ([]models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadVehicles(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]models.Vehicle, 0)
	for i := range list {
		if filter.matches(list[i]) {
			out = append(out, list[i])
		}
	}
	return out, nil
}

// SearchMaintenanceRecords returns every record matching the filter, in
// collection order.
func (m *Manager) SearchMaintenanceRecords(ctx context.Context, filter MaintenanceFilter) ([]models.MaintenanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list, err := m.loadRecords(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]models.MaintenanceRecord, 0)
	for i := range list {
		if filter.matches(list[i]) {
			out = append(out, list[i])
		}
	}
	return out, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
