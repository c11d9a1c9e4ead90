// Package http implements the HTTP handlers of the sprint dashboard. Handlers
// stay thin: they parse and validate requests, call the dashboard service and
// format the response.
//
// # Routes
//
//	GET  /api/dashboard/options           developer choices, axis bounds, slider marks
//	GET  /api/dashboard/stats             stat cards for ?developer=...
//	GET  /api/dashboard/chart             chart spec for the filter state in the query
//	GET  /api/dashboard/chart.png         the same chart rendered as an image
//	GET  /api/dashboard/summary           per-developer summary table
//	POST /api/dashboard/views             any subset of views for a full filter state
//	GET  /api/dashboard/export/{format}   csv, xlsx, parquet or png download
//	POST /api/client-log                  errors reported by the page
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version, /api/metrics
//
// The developer parameter repeats once per name (?developer=A&developer=B)
// and is never split on commas.
//
// # Responses
//
// Successful JSON responses are wrapped as {"status":"success","data":...}.
// Errors are RFC 7807 problem details produced by internal/errors:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Validation Failed",
//	    "status": 400,
//	    "instance": "/api/dashboard/views",
//	    "trace_id": "..."
//	}
package http
