package models

import (
	"strings"
	"testing"
	"time"
)

func TestNewVehicle_FillsDefaults(t *testing.T) {
	v, err := NewVehicle(VehicleInput{Make: "Toyota", Model: "Corolla", Year: 2020, Mileage: 15000})
	if err != nil {
		t.Fatalf("NewVehicle returned error: %v", err)
	}
	if v.ID == "" {
		t.Error("expected generated id")
	}
	if v.CreatedAt.IsZero() || v.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
	if !v.CreatedAt.Equal(v.UpdatedAt) {
		t.Error("expected createdAt and updatedAt to match on creation")
	}
}

func TestNewVehicle_KeepsExplicitID(t *testing.T) {
	v, err := NewVehicle(VehicleInput{ID: "veh-1", Make: "Ford", Model: "Focus", Year: 2018})
	if err != nil {
		t.Fatalf("NewVehicle returned error: %v", err)
	}
	if v.ID != "veh-1" {
		t.Errorf("expected id veh-1, got %s", v.ID)
	}
}

func TestVehicle_Validate(t *testing.T) {
	currentYear := time.Now().Year()
	valid := Vehicle{ID: "v1", Make: "Toyota", Model: "Corolla", Year: 2020, Mileage: 1000}

	tests := []struct {
		name      string
		mutate    func(v *Vehicle)
		wantField string
	}{
		{"valid vehicle", func(v *Vehicle) {}, ""},
		{"year 1886 is the lower bound", func(v *Vehicle) { v.Year = 1886 }, ""},
		{"year 1885 is too old", func(v *Vehicle) { v.Year = 1885 }, "year"},
		{"next year is allowed", func(v *Vehicle) { v.Year = currentYear + 1 }, ""},
		{"two years out is rejected", func(v *Vehicle) { v.Year = currentYear + 2 }, "year"},
		{"missing make", func(v *Vehicle) { v.Make = "  " }, "make"},
		{"make too long", func(v *Vehicle) { v.Make = strings.Repeat("x", 101) }, "make"},
		{"missing model", func(v *Vehicle) { v.Model = "" }, "model"},
		{"negative mileage", func(v *Vehicle) { v.Mileage = -1 }, "mileage"},
		{"mileage above cap", func(v *Vehicle) { v.Mileage = 10_000_001 }, "mileage"},
		{"mileage at cap", func(v *Vehicle) { v.Mileage = 10_000_000 }, ""},
		{"missing id", func(v *Vehicle) { v.ID = "" }, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := valid
			tt.mutate(&v)
			errs := v.Validate()
			if tt.wantField == "" {
				if len(errs) != 0 {
					t.Errorf("expected valid, got %v", errs)
				}
				return
			}
			if len(errs) == 0 {
				t.Fatalf("expected a %s error, got none", tt.wantField)
			}
			if errs[0].Field != tt.wantField {
				t.Errorf("expected first error on %s, got %s", tt.wantField, errs[0].Field)
			}
		})
	}
}

func TestVehicle_Validate_ReportsAllFields(t *testing.T) {
	v := Vehicle{ID: "v1", Make: "", Model: "", Year: 1885, Mileage: -5}
	errs := v.Validate()
	if len(errs) != 4 {
		t.Fatalf("expected 4 errors, got %d: %v", len(errs), errs)
	}
	want := []string{"make", "model", "year", "mileage"}
	for i, field := range want {
		if errs[i].Field != field {
			t.Errorf("error %d: expected field %s, got %s", i, field, errs[i].Field)
		}
	}
}

func TestVehicle_Apply_AtomicRollback(t *testing.T) {
	v, err := NewVehicle(VehicleInput{Make: "Toyota", Model: "Corolla", Year: 2020, Mileage: 1000})
	if err != nil {
		t.Fatalf("NewVehicle returned error: %v", err)
	}
	before := *v

	newMake := "Honda"
	badMileage := -50.0
	err = v.Apply(VehiclePatch{Make: &newMake, Mileage: &badMileage})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if *v != before {
		t.Errorf("vehicle changed after failed apply: before=%+v after=%+v", before, *v)
	}
}

func TestVehicle_Apply_EmptyPatch(t *testing.T) {
	v, err := NewVehicle(VehicleInput{Make: "Toyota", Model: "Corolla", Year: 2020, Mileage: 1000})
	if err != nil {
		t.Fatalf("NewVehicle returned error: %v", err)
	}
	before := *v

	if err := v.Apply(VehiclePatch{}); err != nil {
		t.Fatalf("empty patch failed: %v", err)
	}
	if v.Make != before.Make || v.Model != before.Model || v.Year != before.Year || v.Mileage != before.Mileage {
		t.Error("empty patch changed a data field")
	}
	if v.ID != before.ID || !v.CreatedAt.Equal(before.CreatedAt) {
		t.Error("empty patch changed id or createdAt")
	}
	if v.UpdatedAt.Before(before.UpdatedAt) {
		t.Error("updatedAt moved backwards")
	}
}

func TestVehicle_JSONRoundTrip(t *testing.T) {
	v, err := NewVehicle(VehicleInput{Make: "Toyota", Model: "Corolla", Year: 2020, Mileage: 15000.5})
	if err != nil {
		t.Fatalf("NewVehicle returned error: %v", err)
	}

	data, err := v.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	got, err := VehicleFromJSON(data)
	if err != nil {
		t.Fatalf("VehicleFromJSON failed: %v", err)
	}

	if got.ID != v.ID || got.Make != v.Make || got.Model != v.Model || got.Year != v.Year || got.Mileage != v.Mileage {
		t.Errorf("round trip changed fields: %+v vs %+v", v, got)
	}
	if !got.CreatedAt.Equal(v.CreatedAt) || !got.UpdatedAt.Equal(v.UpdatedAt) {
		t.Error("round trip changed timestamps")
	}
}
