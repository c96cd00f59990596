package lsp

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies Checker.Check (which recompiles a schema via
// smith.Compile on every call) never leaves a goroutine running behind it.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
