package probe

import (
	"errors"
	"testing"

	"connwatch/internal/core/domain"
)

const statsLine = "8.8.8.8 : xmt/rcv/%loss = 5/5/0%, min/avg/max = 10.8/11.1/11.6"

func TestParseAvgLatency(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    float64
		wantErr bool
	}{
		{"full stats line", statsLine, 11.1, false},
		{"partial loss", "8.8.8.8 : xmt/rcv/%loss = 5/3/40%, min/avg/max = 11.0/12.5/14.0", 12.5, false},
		{"no stats section", "8.8.8.8 : xmt/rcv/%loss = 5/0/100%", 0, true},
		{"empty output", "", 0, true},
		{"garbage", "fping: command output changed", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAvgLatency(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got value %v", got)
				}
				if !errors.Is(err, domain.ErrUnparsableOutput) {
					t.Errorf("error %v, want ErrUnparsableOutput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseAvgLatency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLossPercent(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		want    float64
		wantErr bool
	}{
		{"zero loss", statsLine, 0, false},
		{"partial loss", "8.8.8.8 : xmt/rcv/%loss = 5/3/40%, min/avg/max = 11.0/12.5/14.0", 40, false},
		{"total loss without stats", "8.8.8.8 : xmt/rcv/%loss = 5/0/100%", 100, false},
		{"no percent sign", "nothing useful here", 0, true},
		{"empty output", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLossPercent(tt.output)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got value %v", got)
				}
				if !errors.Is(err, domain.ErrUnparsableOutput) {
					t.Errorf("error %v, want ErrUnparsableOutput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseLossPercent() = %v, want %v", got, tt.want)
			}
		})
	}
}
