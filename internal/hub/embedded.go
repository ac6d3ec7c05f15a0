package hub

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

const serverReadyTimeout = 5 * time.Second

// ErrServerNotReady indicates the embedded server did not come up in time.
var ErrServerNotReady = errors.New("embedded NATS server not ready")

// StartEmbedded runs a loopback-only NATS server inside this process and
// returns a connection to it. The fanout never leaves the process; the
// server exists so subscriptions get NATS's per-subscriber queueing and
// slow-consumer drop semantics.
func StartEmbedded() (*server.Server, *nats.Conn, error) {
	opts := &server.Options{
		Host:   "127.0.0.1",
		Port:   server.RANDOM_PORT,
		NoLog:  true,
		NoSigs: true,
	}

	natsServer, err := server.NewServer(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create embedded NATS server: %w", err)
	}

	go natsServer.Start()

	if !natsServer.ReadyForConnections(serverReadyTimeout) {
		natsServer.Shutdown()

		return nil, nil, ErrServerNotReady
	}

	conn, err := nats.Connect(natsServer.ClientURL())
	if err != nil {
		natsServer.Shutdown()

		return nil, nil, fmt.Errorf("failed to connect to embedded NATS server: %w", err)
	}

	return natsServer, conn, nil
}
