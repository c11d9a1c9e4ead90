// Package app wires the sprint dashboard together and runs it.
//
// NewApplication loads configuration, initializes logging and
// OpenTelemetry, resolves and loads the story-point spreadsheet, and builds
// the dashboard service, the WebSocket hub and the chi router on top of it.
// A missing spreadsheet never stops startup: the dashboard is served empty
// and readiness reports "degraded".
//
// Routes:
//
//	GET  /                   dashboard page
//	GET  /ws                 live interaction channel
//	GET  /metrics            Prometheus scrape endpoint
//	     /api/dashboard/...  derived views and exports
//	GET  /api/health[/ready|/live], /api/version, /api/metrics
//	POST /api/client-log     browser error reports
//
// Run blocks until SIGINT or SIGTERM, then notifies connected viewers,
// drains the HTTP server, stops the hub and flushes telemetry.
package app
