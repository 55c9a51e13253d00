package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		topicsFormat = "table"
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	SetVersion("9.9.9")
	t.Cleanup(func() { SetVersion("0.1.0") })

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "relay v9.9.9\n", out)
}

func TestTopicsList(t *testing.T) {
	out, err := run(t, "topics", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "message-added")
	assert.Contains(t, out, "status-changed")
	assert.Contains(t, out, "settings-updated")
}

func TestTopicsGet(t *testing.T) {
	out, err := run(t, "topics", "get", "settings-updated", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "settings-updated"`)

	_, err = run(t, "topics", "get", "no-such-topic")
	assert.Error(t, err)
}

func TestTopicsValidate(t *testing.T) {
	out, err := run(t, "topics", "validate", "relay.message-added")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	_, err = run(t, "topics", "validate", "Not Valid")
	assert.Error(t, err)
}
