package logger

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

// Test returns a Logger that writes through t.Log.
func Test(t *testing.T) Logger {
	return Wrap(zaptest.NewLogger(t))
}
