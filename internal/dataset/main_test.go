package dataset

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures watcher goroutines never outlive Stop.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Ignore known background goroutines
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("sync.runtime_Semacquire"),
	)
}
