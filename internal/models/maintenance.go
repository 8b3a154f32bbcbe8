package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxCost is the highest accepted cost for a single service.
	MaxCost = 1_000_000
	// MaxDescriptionLen bounds the free-text description field.
	MaxDescriptionLen = 5000
)

// MaintenanceRecord represents one service event for a vehicle.
type MaintenanceRecord struct {
	ID          string    `json:"id"`
	VehicleID   string    `json:"vehicleId"`
	Date        time.Time `json:"date"`
	ServiceType string    `json:"serviceType"`
	Description string    `json:"description"`
	Cost        float64   `json:"cost"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MaintenanceInput is the caller-supplied portion of a new maintenance
// record. Date is an ISO 8601 string, either a full timestamp or a plain
// YYYY-MM-DD day.
type MaintenanceInput struct {
	ID          string  `json:"id"`
	VehicleID   string  `json:"vehicleId"`
	Date        string  `json:"date"`
	ServiceType string  `json:"serviceType"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
}

// ParseDate parses an ISO 8601 date, accepting RFC 3339 timestamps and plain
// YYYY-MM-DD days (interpreted in local time).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// NewMaintenanceRecord builds a record from input, filling the ID and
// timestamps, and validates it. An unparseable Date surfaces as a field
// error alongside the other checks. On failure the error is a
// ValidationErrors value.
func NewMaintenanceRecord(in MaintenanceInput) (*MaintenanceRecord, error) {
	now := time.Now()
	r := &MaintenanceRecord{
		ID:          strings.TrimSpace(in.ID),
		VehicleID:   strings.TrimSpace(in.VehicleID),
		ServiceType: strings.TrimSpace(in.ServiceType),
		Description: in.Description,
		Cost:        in.Cost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if in.Date != "" {
		// A failed parse leaves Date zero, which Validate reports.
		if t, err := ParseDate(in.Date); err == nil {
			r.Date = t
		}
	}
	if errs := r.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return r, nil
}

// Validate runs every field check and returns all failures. An empty result
// means the record is valid.
func (r *MaintenanceRecord) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(r.ID) == "" {
		errs = append(errs, FieldError{Field: "id", Message: "id is required"})
	}
	if strings.TrimSpace(r.VehicleID) == "" {
		errs = append(errs, FieldError{Field: "vehicleId", Message: "vehicleId is required"})
	}

	if r.Date.IsZero() {
		errs = append(errs, FieldError{Field: "date", Message: "date must be a valid ISO 8601 date"})
	} else if !dateInBounds(r.Date, time.Now()) {
		errs = append(errs, FieldError{Field: "date", Message: "date must not be in the future or more than 100 years ago"})
	}

	errs = checkName(errs, "serviceType", r.ServiceType)

	if len(r.Description) > MaxDescriptionLen {
		errs = append(errs, FieldError{
			Field:   "description",
			Message: fmt.Sprintf("description must be at most %d characters", MaxDescriptionLen),
		})
	}

	switch {
	case math.IsNaN(r.Cost) || math.IsInf(r.Cost, 0):
		errs = append(errs, FieldError{Field: "cost", Message: "cost must be a number"})
	case r.Cost < 0 || r.Cost > MaxCost:
		errs = append(errs, FieldError{
			Field:   "cost",
			Message: fmt.Sprintf("cost must be between 0 and %d", MaxCost),
		})
	case !hasCentPrecision(r.Cost):
		errs = append(errs, FieldError{Field: "cost", Message: "cost must have at most 2 decimal places"})
	}

	return errs
}

// MaintenancePatch is a partial update. Nil fields are left unchanged; ID
// and CreatedAt cannot be patched. Date, when set, must parse as ISO 8601.
type MaintenancePatch struct {
	VehicleID   *string  `json:"vehicleId"`
	Date        *string  `json:"date"`
	ServiceType *string  `json:"serviceType"`
	Description *string  `json:"description"`
	Cost        *float64 `json:"cost"`
}

// Apply merges the patch, revalidates the whole record and commits only if
// it is still valid; on failure the record is left untouched. A successful
// apply stamps UpdatedAt, never moving it backwards.
func (r *MaintenanceRecord) Apply(p MaintenancePatch) error {
	staged := *r
	if p.VehicleID != nil {
		staged.VehicleID = strings.TrimSpace(*p.VehicleID)
	}
	if p.Date != nil {
		t, err := ParseDate(*p.Date)
		if err != nil {
			return ValidationErrors{{Field: "date", Message: "date must be a valid ISO 8601 date"}}
		}
		staged.Date = t
	}
	if p.ServiceType != nil {
		staged.ServiceType = strings.TrimSpace(*p.ServiceType)
	}
	if p.Description != nil {
		staged.Description = *p.Description
	}
	if p.Cost != nil {
		staged.Cost = *p.Cost
	}
	if errs := staged.Validate(); len(errs) > 0 {
		return errs
	}
	if now := time.Now(); now.After(staged.UpdatedAt) {
		staged.UpdatedAt = now
	}
	*r = staged
	return nil
}

// ToJSON serializes the record.
func (r *MaintenanceRecord) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// MaintenanceRecordFromJSON deserializes a record.
func MaintenanceRecordFromJSON(data []byte) (*MaintenanceRecord, error) {
	var r MaintenanceRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode maintenance record: %w", err)
	}
	return &r, nil
}
