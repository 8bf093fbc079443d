package core_test

import (
	"testing"

	"orderdesk/internal/core"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      core.Status
		expectErr bool
	}{
		{name: "key", raw: "Confirmed", want: core.StatusConfirmed},
		{name: "label", raw: "Pedido Confirmado", want: core.StatusConfirmed},
		{name: "finished label", raw: "Concluído", want: core.StatusFinished},
		{name: "empty defaults to placed", raw: "", want: core.StatusPlaced},
		{name: "unknown", raw: "Shipped", expectErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := core.ParseStatus(tt.raw)
			if tt.expectErr {
				if err == nil {
					t.Errorf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStatus_Label(t *testing.T) {
	if got := core.StatusPlaced.Label(); got != "Pedido Realizado" {
		t.Errorf("label = %q", got)
	}
	if got := core.Status("Bogus").Label(); got != "Bogus" {
		t.Errorf("unknown status label = %q, want raw key", got)
	}
}

func TestValidTransition(t *testing.T) {
	// Back-office corrections may move between any two known statuses,
	// including backwards.
	for _, from := range core.Statuses() {
		for _, to := range core.Statuses() {
			if !core.ValidTransition(from, to) {
				t.Errorf("transition %s -> %s rejected", from, to)
			}
		}
	}
	if core.ValidTransition(core.StatusPlaced, core.Status("Shipped")) {
		t.Error("transition to unknown status accepted")
	}
	if core.ValidTransition(core.Status(""), core.StatusPlaced) {
		t.Error("transition from unknown status accepted")
	}
}
