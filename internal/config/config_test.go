package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "jsonl", cfg.Format)
	assert.Equal(t, "png", cfg.ImageFormat)
	assert.Equal(t, 224, cfg.DPI)
	assert.Equal(t, 0, cfg.Page)
	assert.Equal(t, "stdio", cfg.Transport)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "docparse", cfg.ServerName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(100*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, 32, cfg.CacheSize)
	assert.Empty(t, cfg.PDFDirectory)
}

func TestLoad_Commands(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name: "text with output",
			args: []string{"text", "doc.pdf", "-o", "lines.jsonl"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, CommandText, cfg.Command)
				assert.Equal(t, "doc.pdf", cfg.InputPath)
				assert.Equal(t, "lines.jsonl", cfg.OutputPath)
				assert.Empty(t, cfg.PDFDirectory)
			},
		},
		{
			name: "render with flags before command",
			args: []string{"--dpi", "150", "render", "--page=2", "doc.pdf", "--image-format", "raw"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, CommandRender, cfg.Command)
				assert.Equal(t, 150, cfg.DPI)
				assert.Equal(t, 2, cfg.Page)
				assert.Equal(t, ImageFormatRaw, cfg.ImageFormat)
			},
		},
		{
			name: "short dpi flag",
			args: []string{"render", "doc.pdf", "-d", "72"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 72, cfg.DPI)
			},
		},
		{
			name: "serve defaults to working directory",
			args: []string{"serve"},
			check: func(t *testing.T, cfg *Config) {
				wd, err := os.Getwd()
				require.NoError(t, err)
				assert.Equal(t, wd, cfg.PDFDirectory)
				assert.Equal(t, TransportStdio, cfg.Transport)
				assert.False(t, cfg.StrictValidation)
			},
		},
		{
			name: "serve over http",
			args: []string{"serve", "--transport", "http", "--port", "9090", "--dir", "."},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, TransportHTTP, cfg.Transport)
				assert.Equal(t, "127.0.0.1:9090", cfg.Address())
				assert.True(t, filepath.IsAbs(cfg.PDFDirectory))
			},
		},
		{
			name: "strict validation",
			args: []string{"validate", "doc.pdf", "--strict"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.StrictValidation)
			},
		},
		{name: "missing command", args: nil, wantErr: "missing command"},
		{name: "unknown command", args: []string{"explode", "doc.pdf"}, wantErr: "unknown command"},
		{name: "missing file", args: []string{"text"}, wantErr: "requires a PDF file"},
		{name: "extra arguments", args: []string{"text", "a.pdf", "b.pdf"}, wantErr: "unexpected arguments"},
		{name: "bad format", args: []string{"text", "a.pdf", "--format", "xml"}, wantErr: "unsupported output format"},
		{name: "bad image format", args: []string{"render", "a.pdf", "--image-format", "gif"}, wantErr: "invalid image format"},
		{name: "zero dpi", args: []string{"render", "a.pdf", "--dpi", "0"}, wantErr: "dpi must be between"},
		{name: "negative page", args: []string{"render", "a.pdf", "--page", "-1"}, wantErr: "page index"},
		{name: "negative workers", args: []string{"text", "a.pdf", "--workers", "-2"}, wantErr: "workers"},
		{name: "bad transport", args: []string{"serve", "--transport", "carrier-pigeon"}, wantErr: "transport"},
		{name: "bad port", args: []string{"serve", "--transport", "http", "--port", "70000"}, wantErr: "port"},
		{name: "bad log level", args: []string{"pages", "a.pdf", "--loglevel", "loud"}, wantErr: "invalid log level"},
		{name: "bad max file size", args: []string{"pages", "a.pdf", "--maxfilesize", "0"}, wantErr: "maximum file size"},
		{name: "unknown flag", args: []string{"pages", "a.pdf", "--frobnicate"}, wantErr: "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			cfg, err := Load(tt.args, &stderr)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("DOCPARSE_DPI", "96")
	t.Setenv("DOCPARSE_FORMAT", "text")
	t.Setenv("DOCPARSE_IMAGE_FORMAT", "raw")
	t.Setenv("DOCPARSE_LOGLEVEL", "debug")
	t.Setenv("DOCPARSE_STRICT", "true")

	cfg, err := Load([]string{"render", "doc.pdf"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, 96, cfg.DPI)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, ImageFormatRaw, cfg.ImageFormat)
	assert.True(t, cfg.IsDebug())
	assert.True(t, cfg.StrictValidation)
}

func TestLoad_FlagOverridesEnvironment(t *testing.T) {
	t.Setenv("DOCPARSE_DPI", "96")

	cfg, err := Load([]string{"render", "doc.pdf", "--dpi", "300"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.DPI)
}

func TestLoad_VersionFlag(t *testing.T) {
	for _, flag := range []string{"--version", "-v"} {
		cfg, err := Load([]string{flag}, &bytes.Buffer{})
		require.NoError(t, err)
		assert.True(t, cfg.ShowVersion)
	}
}

func TestLoad_Help(t *testing.T) {
	var stderr bytes.Buffer
	_, err := Load([]string{"--help"}, &stderr)

	assert.ErrorIs(t, err, pflag.ErrHelp)
	assert.Contains(t, stderr.String(), "Usage: docparse <command>")
	assert.Contains(t, stderr.String(), "--dpi")
}

func TestConfigString(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Command = CommandText
	cfg.InputPath = "doc.pdf"

	s := cfg.String()
	for _, want := range []string{"Command: text", "Input: doc.pdf", "DPI: 224", "LogLevel: info"} {
		assert.True(t, strings.Contains(s, want), "String() = %q, missing %q", s, want)
	}
}
