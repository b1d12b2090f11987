// Sentinel - Security Audit and Risk Scoring Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package supervisor runs Sentinel's long-lived goroutines under suture v4.

	RootSupervisor ("sentinel")
	├── DataSupervisor ("data-layer")
	│   ├── event-mirror          (sink.Mirror, if a sink is configured)
	│   ├── badger-gc             (sink.GCService, if badger is used)
	│   └── blocklist-expiry      (engine.Engine)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── alert-dispatcher      (alerting.Dispatcher)
	│   └── websocket-hub         (websocket.Hub, if enabled)
	└── APISupervisor ("api-layer")
	    └── http-server           (services.HTTPServerService)

Every service implements suture.Service:

	Serve(ctx context.Context) error

Returning an error restarts the service. Returning after ctx is done ends
it. When a service fails more than FailureThreshold times within the decay
window its layer backs off for FailureBackoff before the next restart.

Shutdown is driven by canceling the context passed to Serve. Services that
do not return within ShutdownTimeout show up in UnstoppedServiceReport:

	report, _ := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    logging.Warn().Str("service", svc.Name).Msg("Service did not stop")
	}

The in-memory event store and the blocklist are not services; they live
inside the engine and go away with the process.
*/
package supervisor
