// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package sink

import (
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
)

// EmbeddedBroker is an in-process NATS server for single-node
// deployments that want the event stream without running a broker.
type EmbeddedBroker struct {
	server *server.Server
}

// StartEmbeddedBroker starts a core NATS server on host:port (port -1
// picks a free port) and waits until it accepts connections.
func StartEmbeddedBroker(host string, port int) (*EmbeddedBroker, error) {
	if host == "" {
		host = "127.0.0.1"
	}
	ns, err := server.NewServer(&server.Options{
		ServerName: "sentinel",
		Host:       host,
		Port:       port,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("NATS server not ready within timeout")
	}
	return &EmbeddedBroker{server: ns}, nil
}

// ClientURL returns the URL clients connect to.
func (b *EmbeddedBroker) ClientURL() string {
	return b.server.ClientURL()
}

// Shutdown stops the server and waits for it to exit.
func (b *EmbeddedBroker) Shutdown() {
	b.server.Shutdown()
	b.server.WaitForShutdown()
}
