package ginserver

import (
	"testing"
	"time"
)

func TestParseAvailabilityWireFormat(t *testing.T) {
	raw := `[{"start":"2024-06-01T00:00:00Z","end":"2024-06-20T00:00:00Z"}]`
	windows, err := parseAvailability(raw)
	if err != nil {
		t.Fatalf("parseAvailability: %v", err)
	}
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !windows[0].Start.Equal(want) {
		t.Errorf("start = %v, want %v", windows[0].Start, want)
	}
	if windows[0].End.IsZero() {
		t.Error("end not parsed")
	}
}

func TestParseAvailabilityRejectsMalformed(t *testing.T) {
	if _, err := parseAvailability(`{"start":"x"}`); err == nil {
		t.Fatal("expected error for non-array payload")
	}
}

func TestParseQueryDate(t *testing.T) {
	cases := []struct {
		raw     string
		ok      bool
		wantErr bool
	}{
		{"", false, false},
		{"2024-06-10", true, false},
		{"2024-06-10T15:04:05Z", true, false},
		{"next tuesday", false, true},
	}
	for _, tc := range cases {
		got, ok, err := parseQueryDate(tc.raw)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseQueryDate(%q) err = %v, wantErr %v", tc.raw, err, tc.wantErr)
			continue
		}
		if ok != tc.ok {
			t.Errorf("parseQueryDate(%q) ok = %v, want %v", tc.raw, ok, tc.ok)
		}
		if tc.raw == "2024-06-10" && !got.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("parseQueryDate(%q) = %v", tc.raw, got)
		}
	}
}
