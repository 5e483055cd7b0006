package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("SHOPFLOOR_BACKEND", "")
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()
	want := &Config{
		Backend:        BackendRemote,
		APIURL:         "http://mes.local:8000",
		APIToken:       "tok",
		OperatorID:     "op-3",
		ListenAddr:     ":9090",
		LogLevel:       "debug",
		RequestTimeout: 3 * time.Second,
	}
	require.NoError(t, SaveConfig(dir, want))

	info, err := os.Stat(Path(dir))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	got, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, DirName), 0755))
	require.NoError(t, os.WriteFile(Path(dir), []byte("operator_id: op-1\nrequest_timeout: 2s\n"), 0644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "op-1", cfg.OperatorID)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, ":8080", cfg.ListenAddr)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveConfig(dir, &Config{Backend: BackendLocal, OperatorID: "op-file"}))

	t.Setenv("SHOPFLOOR_OPERATOR_ID", "op-env")
	t.Setenv("SHOPFLOOR_BACKEND", "REMOTE")
	t.Setenv("SHOPFLOOR_API_URL", "http://localhost:8080")
	t.Setenv("SHOPFLOOR_REQUEST_TIMEOUT", "750ms")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "op-env", cfg.OperatorID)
	assert.Equal(t, BackendRemote, cfg.Backend)
	assert.Equal(t, 750*time.Millisecond, cfg.RequestTimeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		env     map[string]string
		wantErr string
	}{
		{name: "malformed yaml", file: "backend: [", wantErr: "failed to parse config"},
		{name: "unknown backend", file: "backend: carrier-pigeon", wantErr: "unknown backend"},
		{name: "remote without url", file: "backend: remote", wantErr: "api_url is required"},
		{name: "bad timeout env", env: map[string]string{"SHOPFLOOR_REQUEST_TIMEOUT": "soon"}, wantErr: "SHOPFLOOR_REQUEST_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				require.NoError(t, os.MkdirAll(filepath.Join(dir, DirName), 0755))
				require.NoError(t, os.WriteFile(Path(dir), []byte(tt.file), 0644))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
