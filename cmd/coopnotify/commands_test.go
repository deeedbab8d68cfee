package main

import (
	"bytes"
	"strings"
	"testing"

	"coop_shift_notifier/internal/infra/config"
	"coop_shift_notifier/internal/infra/coop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialArgs(t *testing.T) {
	assert.NoError(t, credentialArgs(nil, nil))
	assert.NoError(t, credentialArgs(nil, []string{"member", "secret"}))
	assert.Error(t, credentialArgs(nil, []string{"member"}))
	assert.Error(t, credentialArgs(nil, []string{"a", "b", "c"}))
}

func TestCredentialsFrom(t *testing.T) {
	cfg := &config.AppConfig{CoopUsername: "env-user", CoopPassword: "env-pass"}

	assert.Equal(t, coop.Credentials{Username: "env-user", Password: "env-pass"}, credentialsFrom(cfg, nil))
	assert.Equal(t, coop.Credentials{Username: "cli", Password: "pw"}, credentialsFrom(cfg, []string{"cli", "pw"}))
}

func TestWriteCommittees(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCommittees(&buf, []coop.Committee{
		{ID: 58, Name: "Checkout"},
		{ID: 38, Name: "Cashier", Restricted: true},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Checkout")
	assert.Contains(t, lines[2], "training required")
}

func TestCommitteesCommand(t *testing.T) {
	cmd := committeesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Receiving: Stocking")
}
