package model

import (
	"math"
	"testing"
)

func TestNewVehicleValidation(t *testing.T) {
	if _, err := NewVehicle("AV-1", Sedan, 0, 10, false); err == nil {
		t.Fatal("expected error for zero capacity")
	}
	if _, err := NewVehicle("", Sedan, 60, 10, false); err == nil {
		t.Fatal("expected error for empty id")
	}
	if _, err := NewVehicle("AV-1", VehicleType(42), 60, 10, false); err == nil {
		t.Fatal("expected error for invalid type")
	}
}

func TestChargeClamped(t *testing.T) {
	v, err := NewVehicle("AV-1", Sedan, 60, 80, false)
	if err != nil {
		t.Fatalf("new vehicle: %v", err)
	}
	if v.CurrentCharge() != 60 {
		t.Fatalf("initial charge not clamped to capacity: %.2f", v.CurrentCharge())
	}

	v, _ = NewVehicle("AV-2", Sedan, 60, -5, false)
	if v.CurrentCharge() != 0 {
		t.Fatalf("negative initial charge not clamped: %.2f", v.CurrentCharge())
	}

	v.AddCharge(1000)
	if v.CurrentCharge() != 60 {
		t.Fatalf("AddCharge exceeded capacity: %.2f", v.CurrentCharge())
	}
	v.AddCharge(-10)
	if v.CurrentCharge() != 60 {
		t.Fatalf("negative AddCharge mutated charge: %.2f", v.CurrentCharge())
	}
}

func TestRequiredChargeAndPercent(t *testing.T) {
	v, _ := NewVehicle("AV-1", SUV, 80, 20, false)
	if v.RequiredCharge() != 60 {
		t.Fatalf("required charge: %.2f", v.RequiredCharge())
	}
	if math.Abs(v.ChargePercent()-25) > 1e-9 {
		t.Fatalf("charge percent: %.2f", v.ChargePercent())
	}
}

func TestPriority(t *testing.T) {
	cases := []struct {
		name     string
		typ      VehicleType
		capacity float64
		charge   float64
		reserved bool
		want     int
	}{
		{"reservation wins", Sedan, 60, 59, true, 0},
		{"sedan half", Sedan, 60, 30, false, 60},
		{"suv low", SUV, 80, 10, false, 22},
		{"truck", Truck, 100, 50, false, 70},
		{"bus", Bus, 150, 75, false, 80},
		{"floor applied", Sedan, 60, 20, false, 43}, // 33.33% -> 33 + 10
	}
	for _, tc := range cases {
		v, err := NewVehicle("AV-x", tc.typ, tc.capacity, tc.charge, tc.reserved)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got := v.Priority(); got != tc.want {
			t.Errorf("%s: priority %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestParseVehicleType(t *testing.T) {
	for _, s := range []string{"sedan", "SUV", "Truck", "bus"} {
		if _, err := ParseVehicleType(s); err != nil {
			t.Errorf("parse %q: %v", s, err)
		}
	}
	if _, err := ParseVehicleType("bicycle"); err == nil {
		t.Error("expected error for unknown type")
	}
}
