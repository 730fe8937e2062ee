package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atinyakov/shortlink/internal/config"
)

var envVars = []string{
	"PORT", "SERVER_ADDRESS", "DATABASE_URL", "SQLITE_PATH", "FILE_STORAGE_PATH",
	"GRPC_PORT", "LOG_LEVEL", "CODE_LENGTH", "MAX_ATTEMPTS", "TRUST_PROXY",
	"ENABLE_PPROF", "ENABLE_HTTPS", "TLS_HOSTS", "CONFIG",
}

// clearEnv blanks every variable the parser reads; empty counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
	}
}

func TestParseArgs_Defaults(t *testing.T) {
	clearEnv(t)

	opts, err := config.ParseArgs(nil)
	require.NoError(t, err)
	require.Equal(t, ":5000", opts.Port)
	require.Empty(t, opts.DatabaseDSN)
	require.Empty(t, opts.SQLitePath)
	require.Empty(t, opts.FilePath)
	require.Zero(t, opts.GRPCPort)
	require.Equal(t, "info", opts.LogLevel)
	require.Equal(t, 7, opts.CodeLength)
	require.Equal(t, 10, opts.MaxAttempts)
	require.True(t, opts.TrustProxy)
	require.False(t, opts.EnablePprof)
	require.False(t, opts.EnableHTTPS)
}

func TestParseArgs_Flags(t *testing.T) {
	clearEnv(t)

	opts, err := config.ParseArgs([]string{
		"-a", "127.0.0.1:9999", "-d", "postgres://flag", "-g", "9090",
		"-v", "debug", "-n", "9", "-r", "3", "-x=false", "-p",
	})
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", opts.Port)
	require.Equal(t, "postgres://flag", opts.DatabaseDSN)
	require.Equal(t, 9090, opts.GRPCPort)
	require.Equal(t, "debug", opts.LogLevel)
	require.Equal(t, 9, opts.CodeLength)
	require.Equal(t, 3, opts.MaxAttempts)
	require.False(t, opts.TrustProxy)
	require.True(t, opts.EnablePprof)
}

func TestParseArgs_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("SQLITE_PATH", "/tmp/links.db")
	t.Setenv("GRPC_PORT", "50051")
	t.Setenv("MAX_ATTEMPTS", "25")
	t.Setenv("TRUST_PROXY", "false")
	t.Setenv("ENABLE_HTTPS", "true")
	t.Setenv("TLS_HOSTS", "sho.rt, www.sho.rt")

	opts, err := config.ParseArgs([]string{"-a", "localhost:1", "-d", "postgres://flag"})
	require.NoError(t, err)
	require.Equal(t, ":8081", opts.Port)
	require.Equal(t, "postgres://env", opts.DatabaseDSN)
	require.Equal(t, "/tmp/links.db", opts.SQLitePath)
	require.Equal(t, 50051, opts.GRPCPort)
	require.Equal(t, 25, opts.MaxAttempts)
	require.False(t, opts.TrustProxy)
	require.True(t, opts.EnableHTTPS)
	require.Equal(t, []string{"sho.rt", "www.sho.rt"}, opts.Hosts())
}

func TestParseArgs_ServerAddressWinsOverPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("SERVER_ADDRESS", "0.0.0.0:7000")
	t.Setenv("DATABASE_URL", "postgres://env")

	opts, err := config.ParseArgs(nil)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:7000", opts.Port)
}

func TestParseArgs_ConfigFile(t *testing.T) {
	clearEnv(t)

	cfgPath := filepath.Join(t.TempDir(), "cfg.json")
	content, err := json.Marshal(map[string]any{
		"server_address": "10.0.0.1:8081",
		"database_dsn":   "postgres://file",
		"log_level":      "warn",
		"max_attempts":   4,
		"trust_proxy":    false,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))
	t.Setenv("CONFIG", cfgPath)
	t.Setenv("LOG_LEVEL", "error")

	opts, err := config.ParseArgs([]string{"-r", "6"})
	require.NoError(t, err)
	require.Equal(t, "10.0.0.1:8081", opts.Port)
	require.Equal(t, "postgres://file", opts.DatabaseDSN)
	// flag beats file
	require.Equal(t, 6, opts.MaxAttempts)
	// env beats file
	require.Equal(t, "error", opts.LogLevel)
	require.False(t, opts.TrustProxy)
	// absent from the file: default kept
	require.Equal(t, 7, opts.CodeLength)
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "bad int", env: map[string]string{"CODE_LENGTH": "seven"}},
		{name: "bad bool", env: map[string]string{"TRUST_PROXY": "maybe"}},
		{name: "zero length", args: []string{"-n", "0"}},
		{name: "zero attempts", env: map[string]string{"MAX_ATTEMPTS": "0"}},
		{name: "grpc port range", args: []string{"-g", "70000"}},
		{name: "https without hosts", args: []string{"-s"}},
		{name: "unknown flag", args: []string{"-zzz"}},
		{name: "missing config file", env: map[string]string{"CONFIG": "/does/not/exist.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.ParseArgs(tt.args)
			require.Error(t, err)
		})
	}
}

func TestParseArgs_DeployedRequiresDatabase(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")

	_, err := config.ParseArgs(nil)
	require.ErrorIs(t, err, config.ErrStoreRequired)

	t.Setenv("SQLITE_PATH", "/data/links.db")
	opts, err := config.ParseArgs(nil)
	require.NoError(t, err)
	require.Equal(t, ":8080", opts.Port)
}
