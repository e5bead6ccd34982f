package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/SscSPs/statutory_ledger/internal/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestTokenIssue(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "cli-test")

	out, err := run(t, "token", "issue", "--user", "admin", "--company", "co-1", "--company", "co-2")
	require.NoError(t, err)

	claims := &middleware.LedgerClaims{}
	_, err = jwt.ParseWithClaims(out, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("cli-secret"), nil
	}, jwt.WithIssuer("cli-test"))
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, []string{"co-1", "co-2"}, claims.Companies)
}

func TestTokenIssue_RequiresUser(t *testing.T) {
	_, err := run(t, "token", "issue")
	assert.Error(t, err)
}

func TestTokenSecret(t *testing.T) {
	out, err := run(t, "token", "secret")
	require.NoError(t, err)
	assert.Len(t, out, 64)

	out, err = run(t, "token", "secret", "--bytes", "48", "--encoding", "base64url")
	require.NoError(t, err)
	assert.Len(t, out, 64)

	_, err = run(t, "token", "secret", "--bytes", "16")
	assert.Error(t, err)
}

func TestMigrateUp_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("PGSQL_URL", "")
	_, err := run(t, "migrate", "up")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PGSQL_URL")
}
