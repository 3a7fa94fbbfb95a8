package serialprobe

import "testing"

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected float64
		ok       bool
	}{
		{"bare decimal", "-17.2", -17.2, true},
		{"bare integer", "-17", -17.0, true},
		{"positive value", "3.5", 3.5, true},
		{"json object", `{"temp": -16.8}`, -16.8, true},
		{"json with extra fields", `{"temp": -17.0, "battery": 3.3}`, -17.0, true},
		{"garbage", "hello", 0, false},
		{"malformed json", `{"temp": }`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseLine(tt.line)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if ok && got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}
