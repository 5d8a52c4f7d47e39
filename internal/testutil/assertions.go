package testutil

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/require"
)

// RequireNoErrors fails the test when diags holds an error. Warnings are
// allowed.
func RequireNoErrors(t *testing.T, diags hcl.Diagnostics) {
	t.Helper()
	require.False(t, diags.HasErrors(), "unexpected error diagnostics: %s", diags.Error())
}

// RequireErrorSummary checks that diags holds an error and that the first
// error carries the given summary. It returns that diagnostic so callers can
// inspect its detail or range.
func RequireErrorSummary(t *testing.T, diags hcl.Diagnostics, summary string) *hcl.Diagnostic {
	t.Helper()
	for _, d := range diags {
		if d.Severity == hcl.DiagError {
			require.Equal(t, summary, d.Summary, "first error diagnostic: %s", d.Detail)
			return d
		}
	}
	require.Fail(t, "expected an error diagnostic", "summary %q", summary)
	return nil
}
