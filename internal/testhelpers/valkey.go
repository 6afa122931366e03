//go:build integration

package testhelpers

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/dynamic360/partnercenter-bridge/internal/config"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/log"
	"github.com/testcontainers/testcontainers-go/wait"
)

// RunValkeyContainer starts a password-protected Valkey container and returns
// an encrypted credential store configuration pointing at it. The container
// is terminated when the test ends.
func RunValkeyContainer(t *testing.T) config.StoreConfig {
	t.Helper()
	ctx := context.Background()

	const port = nat.Port("6379/tcp")
	password := rand.Text()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "valkey/valkey:9-alpine",
			Env: map[string]string{
				"VALKEY_EXTRA_FLAGS": "--requirepass " + password,
			},
			ExposedPorts: []string{string(port)},
			WaitingFor: wait.ForAll(
				wait.ForLog("Ready to accept connections"),
				wait.ForListeningPort(port),
			),
		},
		Started: true,
		Logger:  log.TestLogger(t),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)

	return config.StoreConfig{
		Type: "valkey",
		Valkey: config.ValkeyConfig{
			// IPv4 loopback avoids resolving localhost to ::1
			Address:   "127.0.0.1:" + mapped.Port(),
			Username:  "default",
			Password:  password,
			KeyPrefix: "test-" + rand.Text()[:8] + ":",
		},
		Encryption: config.StoreEncryptionConfig{
			Enabled:         true,
			KeysetFile:      WriteTestKeyset(t),
			RefreshInterval: time.Hour,
		},
	}
}
