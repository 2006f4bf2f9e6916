package model

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
		ok   bool
	}{
		{"building", StatusBuilding, true},
		{"Building", StatusBuilding, true},
		{"  BUILDING  ", StatusBuilding, true},
		{"pending", StatusPendingReview, true},
		{"pending review", StatusPendingReview, true},
		{"pending_review", StatusPendingReview, true},
		{"Pending Review", StatusPendingReview, true},
		{"shipped", StatusShipped, true},
		{"Shipped", StatusShipped, true},
		{"", "", false},
		{"done", "", false},
		{"pendingreview", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseStatus(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestStatusFrozen(t *testing.T) {
	if StatusBuilding.Frozen() {
		t.Error("Building should not be frozen")
	}
	if !StatusPendingReview.Frozen() {
		t.Error("Pending Review should be frozen")
	}
	if !StatusShipped.Frozen() {
		t.Error("Shipped should be frozen")
	}
}

func TestSplitTrackerNames(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"my-app", []string{"my-app"}},
		{"a, b, c", []string{"a", "b", "c"}},
		{" a ,, b , a ", []string{"a", "b"}},
		{"one,one,one", []string{"one"}},
	}

	for _, tt := range tests {
		got := SplitTrackerNames(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("SplitTrackerNames(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("SplitTrackerNames(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "00:00:00"},
		{1, "01:00:00"},
		{1.5, "01:30:00"},
		{3.53, "03:31:48"},
		{0.01, "00:00:36"},
		{-2, "00:00:00"},
		{25.25, "25:15:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.hours); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestFormatHoursShort(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "0h 0m"},
		{3.53, "3h 32m"},
		{1.0, "1h 0m"},
		{0.5, "0h 30m"},
		{-1, "0h 0m"},
	}

	for _, tt := range tests {
		if got := FormatHoursShort(tt.hours); got != tt.want {
			t.Errorf("FormatHoursShort(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}
