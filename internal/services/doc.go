// Package services sits between the transports and the view engine.
//
// DashboardService owns the dataset loaded at startup and answers every
// derived-view request: stat cards, the line chart, the summary table, the
// batched view computation used by the HTTP API and the interaction
// dispatcher used by WebSocket sessions. It also encodes exports.
//
// HealthService reports liveness, readiness and runtime statistics. A
// dashboard without a data file is degraded rather than unready, since it
// still serves empty views with an explanatory message.
package services
