package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/meetscribe-cli/credentials"
)

// testEncryptionKey is a valid 32-byte (64 hex chars) encryption key for tests.
const testEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

// setupCredentialEnv isolates credential storage in a temp dir with a fixed
// encryption key, keeping tests away from the user's keyring and home dir.
func setupCredentialEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MSCRIBE_CONFIG_DIR", t.TempDir())
	t.Setenv("MSCRIBE_ENCRYPTION_KEY", testEncryptionKey)
	t.Setenv("MSCRIBE_TOKEN", "")
}

func executeAuth(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	cmd := NewAuthCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out, err
}

func TestValidateToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{name: "valid token", token: "msc_test-token-12345"},
		{name: "empty token", token: "", wantErr: "token is empty"},
		{name: "short token", token: "short", wantErr: "token is too short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateToken(tt.token)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoginWithTokenFlag(t *testing.T) {
	setupCredentialEnv(t)
	t.Cleanup(func() { authToken, authServer = "", "" })

	out, err := executeAuth(t, "login", "--token", "msc_test-token-12345", "--server", "https://captions.example.com")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Login successful!")
	assert.Contains(t, out.String(), "https://captions.example.com")
	assert.NotContains(t, out.String(), "msc_test-token-12345", "token must be masked in output")

	store, err := credentials.NewStore()
	require.NoError(t, err)
	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "msc_test-token-12345", creds.Token)
	assert.Equal(t, "https://captions.example.com", creds.ServerAddress)
}

func TestLoginNonInteractiveWithoutToken(t *testing.T) {
	setupCredentialEnv(t)
	t.Cleanup(func() { authToken, authServer, authNonInteractive = "", "", false })

	_, err := executeAuth(t, "login", "--non-interactive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token provided")
}

func TestLoginRejectsShortToken(t *testing.T) {
	setupCredentialEnv(t)
	t.Cleanup(func() { authToken = "" })

	_, err := executeAuth(t, "login", "--token", "short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestLogoutWithoutCredentials(t *testing.T) {
	setupCredentialEnv(t)

	out, err := executeAuth(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No stored credentials found.")
}

func TestLoginThenLogout(t *testing.T) {
	setupCredentialEnv(t)
	t.Cleanup(func() { authToken = "" })

	_, err := executeAuth(t, "login", "--token", "msc_test-token-12345")
	require.NoError(t, err)

	out, err := executeAuth(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Logged out successfully.")

	store, err := credentials.NewStore()
	require.NoError(t, err)
	assert.False(t, store.Exists())
}

func TestStatusNotAuthenticated(t *testing.T) {
	setupCredentialEnv(t)

	out, err := executeAuth(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Stored Credentials: None")
	assert.Contains(t, out.String(), "Not authenticated")
}

func TestStatusWithStoredCredentials(t *testing.T) {
	setupCredentialEnv(t)
	t.Cleanup(func() { authToken = "" })

	_, err := executeAuth(t, "login", "--token", "msc_test-token-12345")
	require.NoError(t, err)

	out, err := executeAuth(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Stored Credentials:")
	assert.Contains(t, out.String(), "Active Credential Source: Stored credentials")
	assert.NotContains(t, out.String(), "msc_test-token-12345")
}

func TestStatusWithEnvToken(t *testing.T) {
	setupCredentialEnv(t)
	t.Setenv("MSCRIBE_TOKEN", "msc_env-token-678901234567890")

	out, err := executeAuth(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "MSCRIBE_TOKEN:")
	assert.Contains(t, out.String(), "Active Credential Source: Environment variable")
}
