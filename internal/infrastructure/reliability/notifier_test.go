package reliability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"connwatch/pkg/circuitbreaker"

	"go.uber.org/zap"
)

type flakyNotifier struct {
	mu       sync.Mutex
	failures int // fail this many calls before succeeding
	calls    int
	sent     []string
}

func (f *flakyNotifier) Send(ctx context.Context, message, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("gateway unavailable")
	}
	f.sent = append(f.sent, message)
	return nil
}

func (f *flakyNotifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// State change callbacks log from their own goroutine, so these tests use a
// nop logger rather than zaptest.
func TestReliableNotifier_SingleAttemptPerSend(t *testing.T) {
	logger := zap.NewNop().Sugar()
	target := &flakyNotifier{failures: 1}

	rn := NewReliableNotifier(target, circuitbreaker.DefaultConfig(), logger)

	if err := rn.Send(context.Background(), "Internet is DOWN!", "Internet Outage"); err == nil {
		t.Error("Send() error = nil, want failure passed through")
	}
	if got := target.callCount(); got != 1 {
		t.Errorf("call count = %d, want 1", got)
	}

	if err := rn.Send(context.Background(), "Internet is DOWN!", "Internet Outage"); err != nil {
		t.Fatalf("Send() error = %v, want nil", err)
	}
	if got := target.callCount(); got != 2 {
		t.Errorf("call count = %d, want 2", got)
	}
	if len(target.sent) != 1 || target.sent[0] != "Internet is DOWN!" {
		t.Errorf("delivered messages = %v, want the outage message once", target.sent)
	}
}

func TestReliableNotifier_OpensCircuitAfterRepeatedFailures(t *testing.T) {
	logger := zap.NewNop().Sugar()
	target := &flakyNotifier{failures: 1000}

	cbCfg := circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    2,
		Timeout:             time.Minute,
		MaxRequestsHalfOpen: 1,
	}
	rn := NewReliableNotifier(target, cbCfg, logger)

	for i := 0; i < 3; i++ {
		if err := rn.Send(context.Background(), "test", "test"); err == nil {
			t.Fatalf("Send() %d error = nil, want failure", i+1)
		}
	}
	if got := target.callCount(); got != 3 {
		t.Errorf("call count = %d, want 3", got)
	}
	if state := rn.Stats().State; state != circuitbreaker.StateOpen {
		t.Errorf("breaker state = %v, want open", state)
	}

	// Further sends are rejected outright while the circuit stays open.
	if err := rn.Send(context.Background(), "test", "test"); err == nil {
		t.Error("Send() error = nil, want rejection")
	}
	if got := target.callCount(); got != 3 {
		t.Errorf("call count after rejected send = %d, want 3", got)
	}
}

func TestReliableNotifier_RecoversAfterCooldown(t *testing.T) {
	logger := zap.NewNop().Sugar()
	target := &flakyNotifier{failures: 3}

	cbCfg := circuitbreaker.Config{
		FailureThreshold:    3,
		SuccessThreshold:    1,
		Timeout:             50 * time.Millisecond,
		MaxRequestsHalfOpen: 1,
	}
	rn := NewReliableNotifier(target, cbCfg, logger)

	for i := 0; i < 3; i++ {
		if err := rn.Send(context.Background(), "test", "test"); err == nil {
			t.Fatalf("Send() %d error = nil, want failure", i+1)
		}
	}
	if state := rn.Stats().State; state != circuitbreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", state)
	}

	time.Sleep(60 * time.Millisecond)

	// The cooldown elapsed and the target recovered, so the half-open probe
	// succeeds and closes the circuit.
	if err := rn.Send(context.Background(), "all clear", "Recovered"); err != nil {
		t.Fatalf("Send() after cooldown error = %v, want nil", err)
	}
	if state := rn.Stats().State; state != circuitbreaker.StateClosed {
		t.Errorf("breaker state = %v, want closed", state)
	}
	if len(target.sent) != 1 || target.sent[0] != "all clear" {
		t.Errorf("delivered messages = %v, want the recovery message once", target.sent)
	}
}

func TestReliableNotifier_Stats(t *testing.T) {
	logger := zap.NewNop().Sugar()
	target := &flakyNotifier{}

	rn := NewReliableNotifier(target, circuitbreaker.DefaultConfig(), logger)

	if err := rn.Send(context.Background(), "all clear", "Recovered"); err != nil {
		t.Fatalf("Send() error = %v, want nil", err)
	}

	stats := rn.Stats()
	if stats.State != circuitbreaker.StateClosed {
		t.Errorf("breaker state = %v, want closed", stats.State)
	}
	if stats.SuccessCount != 1 {
		t.Errorf("success count = %d, want 1", stats.SuccessCount)
	}
}
