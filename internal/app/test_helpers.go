package app

import (
	"testing"

	"github.com/vk/genmaths/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. It returns
// the app together with the buffer receiving the plan and the buffer
// receiving logs and diagnostics.
func SetupAppTest(t *testing.T, cfg *Config) (*App, *testutil.SafeBuffer, *testutil.SafeBuffer) {
	t.Helper()

	out := &testutil.SafeBuffer{}
	errOut := &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	testApp := NewApp(out, errOut, cfg)
	testutil.DumpLogsOnCleanup(t, errOut)

	return testApp, out, errOut
}
