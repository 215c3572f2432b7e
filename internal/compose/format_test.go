package compose

import (
	"testing"
	"time"
)

func TestFormatEUR(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0,00 €"},
		{8.5, "8,50 €"},
		{450, "450,00 €"},
		{1234.56, "1.234,56 €"},
		{1234567.89, "1.234.567,89 €"},
		{-20, "-20,00 €"},
	}
	for _, tt := range tests {
		if got := FormatEUR(tt.in); got != tt.want {
			t.Errorf("FormatEUR(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4, "4"},
		{1.5, "1,5"},
		{0.1, "0,1"},
		{2.25, "2,25"},
	}
	for _, tt := range tests {
		if got := FormatQuantity(tt.in); got != tt.want {
			t.Errorf("FormatQuantity(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDateAndKM(t *testing.T) {
	d := time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)
	if got := FormatDate(d); got != "07.03.2024" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatKM(45000); got != "45.000 km" {
		t.Errorf("FormatKM = %q", got)
	}
	if got := FormatKM(950); got != "950 km" {
		t.Errorf("FormatKM small = %q", got)
	}
}
