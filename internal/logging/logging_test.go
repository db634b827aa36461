package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yolodolo42/ethwallet/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, lvl)

	lvl, err = ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestBuild_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(Config{Level: "info"}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("transaction broadcast", zap.String("tx", "0xabc"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "transaction broadcast")
	assert.Contains(t, out, "0xabc")
}

func TestBuild_ConsoleJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(Config{Level: "warn", JSON: true}, &buf)
	require.NoError(t, err)

	log.Warn("rpc chain id mismatch", zap.String("chain", "base"))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "base", entry["chain"])
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(testutil.TempDir(t), "logs", "ethwallet.log")

	log, err := New(Config{Level: "info", File: path})
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{"), "file output is JSON")
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestBuild_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(Config{Level: "info", JSON: true}, &buf)
	require.NoError(t, err)

	log.With(zap.String("Mnemonic", "test test junk")).
		Info("import", zap.String("password", "hunter22"), zap.String("address", "0xf39f"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hunter22")
	assert.NotContains(t, out, "test test junk")
	assert.Contains(t, out, Redacted)
	assert.Contains(t, out, "0xf39f")
}

func TestRedactFields(t *testing.T) {
	fields := []zapcore.Field{zap.String("chain", "sepolia")}
	assert.Equal(t, fields, RedactFields(fields), "no secrets leaves the slice alone")

	in := []zapcore.Field{zap.String("chain", "sepolia"), zap.String("private_key", "ac09")}
	out := RedactFields(in)
	assert.Equal(t, Redacted, out[1].String)
	assert.Equal(t, "ac09", in[1].String, "input is not modified")
	assert.True(t, IsSecretKey("API_KEY"))
	assert.False(t, IsSecretKey("address"))
}
