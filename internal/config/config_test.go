package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Websocket: WebsocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			SendQueueSize:   256,
			MaxMessageSize:  4096,
			PingInterval:    10 * time.Second,
			PongWait:        15 * time.Second,
			WriteTimeout:    10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestServerAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "0.0.0.0:3000", cfg.Server.Addr())
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestValidate_BadPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestValidate_BadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestValidate_PongWaitMustExceedPingInterval(t *testing.T) {
	cfg := validConfig()
	cfg.Websocket.PongWait = cfg.Websocket.PingInterval
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pong_wait")
}

func TestValidate_AggregatesViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = -1
	cfg.Websocket.SendQueueSize = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "send_queue_size")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 8080
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Defaults fill what the file omits.
	assert.Equal(t, 256, cfg.Websocket.SendQueueSize)
	assert.Equal(t, 10*time.Second, cfg.Websocket.PingInterval)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 70000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestPropertyPortValidation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := validConfig()
		port := rapid.IntRange(-1000, 100000).Draw(t, "port")
		cfg.Server.Port = port

		err := cfg.Validate()
		if port >= 1 && port <= 65535 {
			if err != nil {
				t.Fatalf("valid port %d rejected: %v", port, err)
			}
		} else if err == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}
