package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", "does-not-exist.env"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestStateCommands_RoundTrip(t *testing.T) {
	t.Setenv("STATE_SECRET", "cli-test-secret-cli-test-secret-")
	t.Setenv("LOG_LEVEL", "error")

	token, err := execute(t, "state", "encode", "--state", "abc", "--redirect-uri", "myapp://cb")
	require.NoError(t, err)
	token = strings.TrimSpace(token)
	require.NotEmpty(t, token)

	out, err := execute(t, "state", "decode", token)
	require.NoError(t, err)

	assert.JSONEq(t, `{"state":"abc","redirect_uri":"myapp://cb"}`, out)
}

func TestStateCommands_DecodeFallback(t *testing.T) {
	t.Setenv("STATE_SECRET", "cli-test-secret-cli-test-secret-")
	t.Setenv("MOBILE_REDIRECT_URI", "myapp://default")
	t.Setenv("LOG_LEVEL", "error")

	_, err := execute(t, "state", "decode", "not-a-state")
	require.Error(t, err)

	out, err := execute(t, "state", "decode", "--fallback", "not-a-state")
	require.NoError(t, err)
	var got decodedState
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, decodedState{State: "not-a-state", RedirectURI: "myapp://default"}, got)
}

func TestStateCommands_RequireSecret(t *testing.T) {
	t.Setenv("STATE_SECRET", "")
	t.Setenv("LOG_LEVEL", "error")

	_, err := execute(t, "state", "encode")
	assert.ErrorIs(t, err, errNoStateSecret)
}

func TestServe_RequiresClientCredentials(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "")
	t.Setenv("GOOGLE_CLIENT_SECRET", "")
	t.Setenv("LOG_LEVEL", "error")

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_CLIENT_ID")
}
