// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package main

import (
	"fmt"

	"github.com/tomtom215/sentinel/internal/alerting"
	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/websocket"
)

type alertSet struct {
	dispatcher *alerting.Dispatcher
	memory     *alerting.MemoryChannel
	hub        *websocket.Hub
}

// initAlerts builds the dispatcher with the log and memory channels, plus
// the webhook and websocket channels when enabled.
func initAlerts(cfg *config.Config) (*alertSet, error) {
	set := &alertSet{memory: alerting.NewMemoryChannel(cfg.Alerts.RecentLimit)}
	channels := []alerting.Channel{
		alerting.NewLogChannel(logging.WithComponent("alerts")),
		set.memory,
	}

	if cfg.Alerts.Webhook.Enabled {
		wh, err := alerting.NewWebhookChannel(cfg.WebhookChannelConfig())
		if err != nil {
			return nil, fmt.Errorf("webhook channel: %w", err)
		}
		channels = append(channels, wh)
		logging.Info().Str("url", cfg.Alerts.Webhook.URL).Msg("Webhook alerts enabled")
	}

	if cfg.Alerts.WebSocket.Enabled {
		set.hub = websocket.NewHub(cfg.Alerts.WebSocket.AllowedOrigins...)
		channels = append(channels, set.hub)
	}

	set.dispatcher = alerting.NewDispatcher(cfg.DispatcherConfig(), channels...)
	logging.Info().Strs("channels", set.dispatcher.Channels()).Msg("Alert dispatcher configured")
	return set, nil
}
