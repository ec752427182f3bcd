package adc

import (
	"errors"
	"math"
	"testing"

	"github.com/sweeney/counter-console/internal/logic"
)

func TestRawFromPinVoltage(t *testing.T) {
	tests := []struct {
		v    float64
		want int
	}{
		{0, 0},
		{3.3, MaxRaw},
		{1.65, 32768},
		{5, MaxRaw},
		{-0.2, 0},
	}
	for _, tt := range tests {
		if got := RawFromPinVoltage(tt.v); got != tt.want {
			t.Errorf("RawFromPinVoltage(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestFixedRoundTrips(t *testing.T) {
	f := NewFixed(3.1)
	v, err := logic.ReadVoltage(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(v-3.1) > 0.001 {
		t.Errorf("expected 3.1V, got %v", v)
	}
	if logic.FormatVoltage(v) != "3.10V" {
		t.Errorf("expected 3.10V, got %s", logic.FormatVoltage(v))
	}
}

func TestFakeReaderSequence(t *testing.T) {
	f := NewFakeReader(100, 200)
	for _, want := range []int{100, 200, 200} {
		got, err := f.Read()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected %d, got %d", want, got)
		}
	}
	if f.Max() != MaxRaw {
		t.Errorf("expected default max %d, got %d", MaxRaw, f.Max())
	}
	f.MaxRaw = 4095
	if f.Max() != 4095 {
		t.Errorf("expected max 4095, got %d", f.Max())
	}
}

func TestFakeReaderErrors(t *testing.T) {
	if _, err := NewFakeReader().Read(); err == nil {
		t.Error("expected error with no samples")
	}

	f := NewFakeReader(1)
	f.ReadError = errors.New("i2c nack")
	if _, err := f.Read(); err == nil || err.Error() != "i2c nack" {
		t.Errorf("expected scripted error, got %v", err)
	}

	f.Close()
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}
