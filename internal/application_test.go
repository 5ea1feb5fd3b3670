package application

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-relay/internal/config"
)

func freePort(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	return strconv.Itoa(listener.Addr().(*net.TCPAddr).Port)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	conf, err := config.Load("")
	require.NoError(t, err)
	conf.Port = freePort(t)

	return conf
}

func TestRun(t *testing.T) {
	t.Run("The relay serves until the context is canceled", func(t *testing.T) {
		// Given: a relay on a free port
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		conf := testConfig(t)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- Run(ctx, logger, conf)
		}()

		// When: it is up
		require.Eventually(t, func() bool {
			resp, err := http.Get("http://127.0.0.1:" + conf.Port + "/ping")
			if err != nil {
				return false
			}
			_ = resp.Body.Close()

			return resp.StatusCode == http.StatusOK
		}, 2*time.Second, 20*time.Millisecond)

		// Then: canceling stops it cleanly
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Fatal("relay did not stop")
		}
	})

	t.Run("An unreachable redis is reported", func(t *testing.T) {
		// Given: redis enabled on a port nobody listens on
		conf := testConfig(t)
		conf.Redis.Enabled = true
		conf.Redis.Host = "127.0.0.1"
		conf.Redis.Port = freePort(t)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		// When: the relay starts
		err := Run(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), conf)

		// Then: it fails before serving
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not connect to redis storage")
	})

	t.Run("A blank redis address is rejected", func(t *testing.T) {
		conf := testConfig(t)
		conf.Redis.Enabled = true
		conf.Redis.Host = ""

		err := Run(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), conf)

		assert.ErrorIs(t, err, ErrAddrNotFound)
	})
}
