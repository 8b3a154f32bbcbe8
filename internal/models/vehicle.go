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
	// MinYear is the build year of the first production automobile.
	MinYear = 1886
	// MaxMileage is the highest accepted odometer reading.
	MaxMileage = 10_000_000
)

// Vehicle represents a vehicle in the logbook.
type Vehicle struct {
	ID        string    `json:"id"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Mileage   float64   `json:"mileage"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VehicleInput is the caller-supplied portion of a new vehicle. ID is
// optional; one is generated when absent.
type VehicleInput struct {
	ID      string  `json:"id"`
	Make    string  `json:"make"`
	Model   string  `json:"model"`
	Year    int     `json:"year"`
	Mileage float64 `json:"mileage"`
}

// NewVehicle builds a vehicle from input, filling the ID and timestamps, and
// validates it. On failure the error is a ValidationErrors value.
func NewVehicle(in VehicleInput) (*Vehicle, error) {
	now := time.Now()
	v := &Vehicle{
		ID:        strings.TrimSpace(in.ID),
		Make:      strings.TrimSpace(in.Make),
		Model:     strings.TrimSpace(in.Model),
		Year:      in.Year,
		Mileage:   in.Mileage,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if errs := v.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return v, nil
}

// Validate runs every field check and returns all failures. An empty result
// means the vehicle is valid.
func (v *Vehicle) Validate() ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(v.ID) == "" {
		errs = append(errs, FieldError{Field: "id", Message: "id is required"})
	}
	errs = checkName(errs, "make", v.Make)
	errs = checkName(errs, "model", v.Model)

	maxYear := time.Now().Year() + 1
	if v.Year < MinYear || v.Year > maxYear {
		errs = append(errs, FieldError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between %d and %d", MinYear, maxYear),
		})
	}

	if math.IsNaN(v.Mileage) || math.IsInf(v.Mileage, 0) {
		errs = append(errs, FieldError{Field: "mileage", Message: "mileage must be a number"})
	} else if v.Mileage < 0 || v.Mileage > MaxMileage {
		errs = append(errs, FieldError{
			Field:   "mileage",
			Message: fmt.Sprintf("mileage must be between 0 and %d", MaxMileage),
		})
	}

	return errs
}

// VehiclePatch is a partial update. Nil fields are left unchanged; ID and
// CreatedAt cannot be patched.
type VehiclePatch struct {
	Make    *string  `json:"make"`
	Model   *string  `json:"model"`
	Year    *int     `json:"year"`
	Mileage *float64 `json:"mileage"`
}

// Apply merges the patch, revalidates the whole vehicle and commits only if
// it is still valid; on failure the vehicle is left untouched. A successful
// apply stamps UpdatedAt, never moving it backwards.
func (v *Vehicle) Apply(p VehiclePatch) error {
	staged := *v
	if p.Make != nil {
		staged.Make = strings.TrimSpace(*p.Make)
	}
	if p.Model != nil {
		staged.Model = strings.TrimSpace(*p.Model)
	}
	if p.Year != nil {
		staged.Year = *p.Year
	}
	if p.Mileage != nil {
		staged.Mileage = *p.Mileage
	}
	if errs := staged.Validate(); len(errs) > 0 {
		return errs
	}
	if now := time.Now(); now.After(staged.UpdatedAt) {
		staged.UpdatedAt = now
	}
	*v = staged
	return nil
}

// ToJSON serializes the vehicle.
func (v *Vehicle) ToJSON() ([]byte, error) {
	return json.Marshal(v)
}

// VehicleFromJSON deserializes a vehicle.
func VehicleFromJSON(data []byte) (*Vehicle, error) {
	var v Vehicle
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode vehicle: %w", err)
	}
	return &v, nil
}
