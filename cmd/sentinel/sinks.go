// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package main

import (
	"fmt"

	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/sink"
)

// sinkSet holds the durable-storage side of the process. Every field is
// nil when SINK_TYPE=none.
type sinkSet struct {
	mirror *sink.Mirror
	multi  *sink.Multi
	badger *sink.BadgerSink
	gc     *sink.GCService
	broker *sink.EmbeddedBroker
}

// initSinks opens the configured sinks and wraps them in a mirror. On
// error everything opened so far is closed.
func initSinks(cfg *config.Config) (*sinkSet, error) {
	set := &sinkSet{}
	var children []sink.Sink

	if cfg.Sink.UsesBadger() {
		b, err := sink.OpenBadger(cfg.BadgerSinkConfig())
		if err != nil {
			return nil, fmt.Errorf("open event store: %w", err)
		}
		set.badger = b
		set.gc = sink.NewGCService(b, cfg.Sink.Badger.GCInterval)
		children = append(children, b)
		logging.Info().
			Str("path", cfg.Sink.Badger.Path).
			Bool("in_memory", cfg.Sink.Badger.InMemory).
			Dur("retention", cfg.Sink.Badger.Retention).
			Msg("Badger event store opened")
	}

	if cfg.Sink.UsesNATS() {
		url := ""
		if cfg.Sink.NATS.EmbeddedServer {
			broker, err := sink.StartEmbeddedBroker(cfg.Sink.NATS.EmbeddedHost, cfg.Sink.NATS.EmbeddedPort)
			if err != nil {
				closeAll(children)
				return nil, fmt.Errorf("start embedded NATS: %w", err)
			}
			set.broker = broker
			url = broker.ClientURL()
			logging.Info().Str("url", url).Msg("Embedded NATS server started")
		}

		n, err := sink.NewNATSSink(cfg.NATSSinkConfig(url), logging.NewWatermillAdapter(logging.WithComponent("nats")))
		if err != nil {
			closeAll(children)
			if set.broker != nil {
				set.broker.Shutdown()
			}
			return nil, fmt.Errorf("connect NATS sink: %w", err)
		}
		children = append(children, n)
		logging.Info().
			Str("subject_prefix", cfg.Sink.NATS.SubjectPrefix).
			Msg("NATS event publisher connected")
	}

	if len(children) == 0 {
		logging.Warn().Msg("No event sink configured, events are kept in memory only")
		return set, nil
	}

	set.multi = sink.NewMulti(children...)
	set.mirror = sink.NewMirror(set.multi, cfg.MirrorConfig())
	return set, nil
}

// Close releases the sinks after the supervisor has stopped the mirror.
func (s *sinkSet) Close() {
	if s.multi != nil {
		if err := s.multi.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event sinks")
		}
		s.multi = nil
	}
	if s.broker != nil {
		s.broker.Shutdown()
		s.broker = nil
	}
}

func closeAll(sinks []sink.Sink) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			logging.Warn().Err(err).Str("sink", s.Name()).Msg("Error closing sink")
		}
	}
}
