// Package testnats provides a NATS server container for publisher tests.
package testnats

import (
	"context"
	"fmt"
	"testing"

	"github.com/akkm9120/sctp02-crud-mongo/testing/testenv"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const clientPort = "4222/tcp"

var shared = testenv.NewShared(startNATS)

type NATSContainer struct {
	Container testcontainers.Container
	URL       string
}

// SetupSharedNATS returns the package's NATS server, starting it on first
// use. Publishers connect to URL; Connect opens a subscriber for the test.
func SetupSharedNATS(t *testing.T) *NATSContainer {
	t.Helper()
	return shared.Get(t)
}

func startNATS(ctx context.Context) (*NATSContainer, error) {
	container, err := testcontainers.Run(ctx, "nats:2.10-alpine",
		testcontainers.WithExposedPorts(clientPort),
		testcontainers.WithWaitStrategy(wait.ForListeningPort(clientPort)),
	)
	if err != nil {
		return nil, fmt.Errorf("start nats: %w", err)
	}

	url, err := container.PortEndpoint(ctx, clientPort, "nats")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("nats endpoint: %w", err)
	}

	return &NATSContainer{Container: container, URL: url}, nil
}

func (nc *NATSContainer) Cleanup(t *testing.T) {
	t.Helper()
	testenv.Terminate(t, nc.Container)
}

func (nc *NATSContainer) Connect(t *testing.T) *nats.Conn {
	t.Helper()

	conn, err := nats.Connect(nc.URL, nats.Name("testnats-subscriber"))
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	return conn
}
