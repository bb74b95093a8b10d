package testing

import (
	"context"
	"testing"
	"time"
)

// AssertEventually asserts that a condition becomes true within a timeout
func AssertEventually(t *testing.T, condition func() bool, timeout time.Duration, message string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return
		}
		<-ticker.C
		if time.Now().After(deadline) {
			t.Fatalf("Condition not met within timeout: %s", message)
			return
		}
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
