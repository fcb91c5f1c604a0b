package config

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/presbrey/b64/base64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "standard", cfg.Codec.Alphabet)
	assert.True(t, cfg.Codec.Padding)
	assert.False(t, cfg.Codec.IgnoreNewlines)
	assert.Equal(t, "127.0.0.1:8064", cfg.ListenAddress())
	assert.Equal(t, "/metrics", cfg.Server.MetricsPath)
	assert.Equal(t, "zap", cfg.Log.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptySource(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
	assert.Empty(t, cfg.Source)
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "b64.yaml",
			content: `codec:
  alphabet: url
  padding: false
server:
  port: 9000
log:
  backend: logrus
  level: debug
`,
		},
		{
			name: "toml",
			file: "b64.toml",
			content: `[codec]
alphabet = "url"
padding = false

[server]
port = 9000

[log]
backend = "logrus"
level = "debug"
`,
		},
		{
			name:    "json",
			file:    "b64.json",
			content: `{"codec":{"alphabet":"url","padding":false},"server":{"port":9000},"log":{"backend":"logrus","level":"debug"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, path, cfg.Source)
			assert.Equal(t, "url", cfg.Codec.Alphabet)
			assert.False(t, cfg.Codec.Padding)
			assert.Equal(t, 9000, cfg.Server.Port)
			assert.Equal(t, "logrus", cfg.Log.Backend)
			assert.Equal(t, "debug", cfg.Log.Level)

			// Untouched keys keep their defaults
			assert.Equal(t, "/metrics", cfg.Server.MetricsPath)
			assert.Equal(t, int64(8<<20), cfg.Server.MaxBodyBytes)
		})
	}
}

func TestLoadFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/b64.toml":
			w.Write([]byte("[codec]\nignore_newlines = true\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	cfg, err := Load(server.URL + "/b64.toml")
	require.NoError(t, err)
	assert.True(t, cfg.Codec.IgnoreNewlines)

	_, err = Load(server.URL + "/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.json", "{not json")
	_, err = Load(bad)
	assert.Error(t, err)

	badAlphabet := writeFile(t, dir, "alphabet.yaml", "codec:\n  alphabet: base32\n")
	_, err = Load(badAlphabet)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")

	badPort := writeFile(t, dir, "port.yaml", "server:\n  port: 70000\n")
	_, err = Load(badPort)
	assert.Error(t, err)

	badBackend := writeFile(t, dir, "backend.yaml", "log:\n  backend: stdout\n")
	_, err = Load(badBackend)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "b64.yaml", "server:\n  port: 9000\n")

	t.Setenv("B64_PORT", "9100")
	t.Setenv("B64_ALPHABET", "url")
	t.Setenv("B64_PADDING", "no")
	t.Setenv("B64_IGNORE_NEWLINES", "1")
	t.Setenv("B64_MAX_BODY_BYTES", "1024")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "url", cfg.Codec.Alphabet)
	assert.False(t, cfg.Codec.Padding)
	assert.True(t, cfg.Codec.IgnoreNewlines)
	assert.Equal(t, int64(1024), cfg.Server.MaxBodyBytes)
}

func TestEnvOverrideInvalid(t *testing.T) {
	t.Setenv("B64_PORT", "eighty")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B64_PORT")

	t.Setenv("B64_PORT", "8080")
	t.Setenv("B64_PADDING", "maybe")
	_, err = Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B64_PADDING")
}

func TestBuildCodec(t *testing.T) {
	cfg := Default()
	cfg.Codec.Alphabet = "url"
	cfg.Codec.Padding = false
	cfg.Codec.IgnoreNewlines = true

	codec, err := cfg.BuildCodec()
	require.NoError(t, err)
	assert.Equal(t, base64.URLSafe, codec.Alphabet())
	assert.False(t, codec.Padded())

	decoded, err := codec.Decode("-_8\n")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfb, 0xff}, decoded)

	cfg.Codec.Alphabet = "base32"
	_, err = cfg.BuildCodec()
	assert.ErrorIs(t, err, base64.ErrUnknownAlphabet)
}
