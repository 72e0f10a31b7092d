// Package testutil provides shared test helpers: status and JSON assertions,
// temporary dispatch files and a builder for tiny WASM core modules.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/sensecore/domain/entities"
)

// AssertStatus compares statuses by name so failures read "ITEM_UNAVAILABLE"
// rather than -3.
func AssertStatus(t *testing.T, expected, actual entities.Status, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, expected.String(), actual.String(), msgAndArgs...)
}

// RequireSuccess fails the test when s is an error status.
func RequireSuccess(t *testing.T, s entities.Status, msgAndArgs ...any) {
	t.Helper()
	require.False(t, s.IsError(), append([]any{"status %s"}, append([]any{s}, msgAndArgs...)...)...)
}

// AssertJSONEqual compares two JSON documents ignoring formatting.
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...any) {
	t.Helper()

	var want, got any
	require.NoError(t, json.Unmarshal([]byte(expected), &want), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &got), "actual JSON is invalid")
	assert.Equal(t, want, got, msgAndArgs...)
}

// AssertDurationWithin asserts |expected-actual| <= tolerance.
func AssertDurationWithin(t *testing.T, expected, actual, tolerance time.Duration, msgAndArgs ...any) {
	t.Helper()

	diff := expected - actual
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, diff, tolerance, msgAndArgs...)
}

// WriteFile writes data to name inside a fresh temporary directory and
// returns the full path.
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}
