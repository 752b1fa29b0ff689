package cmd

import "testing"

func TestCableConfigAppliesFlagOverrides(t *testing.T) {
	origBackend, origVID, origPID := backendFlag, vidFlag, pidFlag
	defer func() { backendFlag, vidFlag, pidFlag = origBackend, origVID, origPID }()

	backendFlag, vidFlag, pidFlag = "sim", 0x1234, 0x5678
	cfg := cableConfig()
	if cfg.Backend != "sim" || cfg.VID != 0x1234 || cfg.PID != 0x5678 {
		t.Fatalf("cableConfig() = %+v, want overridden backend/vid/pid", cfg)
	}
}

func TestParseAddrAcceptsHexAndDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want uint32
	}{
		{"0x80001000", 0x80001000},
		{"1024", 1024},
	}
	for _, tt := range cases {
		got, err := parseAddr(tt.in)
		if err != nil {
			t.Fatalf("parseAddr(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parseAddr(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestParseAddrRejectsGarbage(t *testing.T) {
	if _, err := parseAddr("not-a-number"); err == nil {
		t.Fatalf("expected error for invalid address")
	}
}
