package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"PORT", "LOG_LEVEL", "GITHUB_WEBHOOK_SECRET", "STRICT_SIGNATURES", "TRACKED_EXTENSIONS",
	"BODY_LIMIT", "APNS_BUNDLE_ID", "APNS_ENVIRONMENT", "APNS_KEY_ID", "APNS_TEAM_ID",
	"APNS_AUTH_KEY_PATH", "APNS_CERT_PATH", "APNS_CERT_PASSWORD", "PUSH_TIMEOUT",
	"DISPATCH_CONCURRENCY", "DISPATCH_WAIT", "REGISTRY_BACKEND", "REDIS_ADDR",
	"REDIS_PASSWORD", "REDIS_DB", "REDIS_KEY", "SQLITE_PATH",
}

// baseEnv sets a minimal valid token-auth environment.
func baseEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("STRICT_SIGNATURES", "true")
	t.Setenv("TRACKED_EXTENSIONS", ".md")
	t.Setenv("BODY_LIMIT", "1048576")
	t.Setenv("APNS_ENVIRONMENT", "sandbox")
	t.Setenv("PUSH_TIMEOUT", "5s")
	t.Setenv("DISPATCH_CONCURRENCY", "8")
	t.Setenv("DISPATCH_WAIT", "8s")
	t.Setenv("REGISTRY_BACKEND", "memory")
	t.Setenv("REDIS_DB", "0")

	t.Setenv("GITHUB_WEBHOOK_SECRET", "shh")
	t.Setenv("APNS_BUNDLE_ID", "com.example.mdtalkman")
	t.Setenv("APNS_KEY_ID", "ABC123DEFG")
	t.Setenv("APNS_TEAM_ID", "TEAM123456")
	t.Setenv("APNS_AUTH_KEY_PATH", "/secrets/AuthKey.p8")
}

func TestLoad_TokenAuth(t *testing.T) {
	baseEnv(t)
	t.Setenv("PUSH_TIMEOUT", "3s")
	t.Setenv("APNS_ENVIRONMENT", "Production")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.StrictSignatures)
	assert.True(t, cfg.UsesTokenAuth())
	assert.True(t, cfg.Production())
	assert.Equal(t, 3*time.Second, cfg.PushTimeout)
	assert.Equal(t, BackendMemory, cfg.RegistryBackend)
}

func TestLoad_CertificateAuth(t *testing.T) {
	baseEnv(t)
	t.Setenv("APNS_KEY_ID", "")
	t.Setenv("APNS_TEAM_ID", "")
	t.Setenv("APNS_AUTH_KEY_PATH", "")
	t.Setenv("APNS_CERT_PATH", "/secrets/push.p12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.UsesTokenAuth())
	assert.False(t, cfg.Production())
}

func TestLoad_Credentials(t *testing.T) {
	t.Run("both modes", func(t *testing.T) {
		baseEnv(t)
		t.Setenv("APNS_CERT_PATH", "/secrets/push.p12")
		_, err := Load()
		assert.ErrorIs(t, err, ErrCredentials)
	})

	t.Run("neither mode", func(t *testing.T) {
		baseEnv(t)
		t.Setenv("APNS_KEY_ID", "")
		t.Setenv("APNS_TEAM_ID", "")
		t.Setenv("APNS_AUTH_KEY_PATH", "")
		_, err := Load()
		assert.ErrorIs(t, err, ErrCredentials)
	})

	t.Run("partial key triple", func(t *testing.T) {
		baseEnv(t)
		t.Setenv("APNS_TEAM_ID", "")
		_, err := Load()
		assert.ErrorIs(t, err, ErrCredentials)
	})
}

func TestLoad_StrictRequiresSecret(t *testing.T) {
	baseEnv(t)
	t.Setenv("GITHUB_WEBHOOK_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GITHUB_WEBHOOK_SECRET")

	t.Setenv("STRICT_SIGNATURES", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.StrictSignatures)
}

func TestLoad_UnparsableBoolStaysStrict(t *testing.T) {
	baseEnv(t)
	t.Setenv("STRICT_SIGNATURES", "nope")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.StrictSignatures)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"environment": {"APNS_ENVIRONMENT", "staging"},
		"backend":     {"REGISTRY_BACKEND", "etcd"},
		"timeout":     {"PUSH_TIMEOUT", "-1s"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			baseEnv(t)
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_MissingBundle(t *testing.T) {
	baseEnv(t)
	t.Setenv("APNS_BUNDLE_ID", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APNS_BUNDLE_ID")
}
