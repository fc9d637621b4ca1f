package eventz

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that no test leaves an operator goroutine behind:
// every processor must terminate once its inputs close or its context is
// canceled.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
