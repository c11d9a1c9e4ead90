package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"

	"sprintdash/internal/dataset"
	"sprintdash/pkg/contracts"
)

// StatusSource reports how the dataset was loaded.
type StatusSource interface {
	Status() dataset.Status
}

// ClientCounter reports connected WebSocket viewers.
type ClientCounter interface {
	ClientCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	data      StatusSource
	clients   ClientCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// SystemStats represents system statistics
type SystemStats struct {
	UptimeSeconds    float64 `json:"uptime_seconds"`
	Uptime           string  `json:"uptime"`
	Records          int     `json:"records"`
	DataSource       string  `json:"data_source,omitempty"`
	WebSocketClients int     `json:"websocket_clients"`
	Goroutines       int     `json:"goroutines"`
	HeapAlloc        string  `json:"heap_alloc"`
	GoVersion        string  `json:"go_version"`
	OS               string  `json:"os"`
	Arch             string  `json:"arch"`
}

// Service states.
const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
	StatusNotReady = "not_ready"
)

// NewHealthService creates a health service. clients may be nil.
func NewHealthService(data StatusSource, clients ClientCounter, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		data:      data,
		clients:   clients,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck reports per-service readiness. A missing data file leaves
// the dashboard usable with empty views, so it degrades rather than fails.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services: map[string]interface{}{
			"data":      hs.checkDataHealth(),
			"websocket": hs.checkWebSocketHealth(),
		},
	}

	for _, service := range status.Services {
		sh, ok := service.(ServiceHealth)
		if !ok {
			continue
		}
		switch sh.Status {
		case StatusNotReady:
			status.Status = StatusNotReady
		case StatusDegraded:
			if status.Status == StatusReady {
				status.Status = StatusDegraded
			}
		}
	}

	if status.Status != StatusReady {
		hs.logger.DebugContext(ctx, "readiness check", slog.String("status", status.Status))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}

// SystemStats returns runtime and dataset statistics
func (hs *HealthService) SystemStats(ctx context.Context) SystemStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := SystemStats{
		UptimeSeconds: time.Since(hs.startTime).Seconds(),
		Uptime:        humanize.RelTime(hs.startTime, time.Now(), "", ""),
		Goroutines:    runtime.NumGoroutine(),
		HeapAlloc:     humanize.IBytes(mem.HeapAlloc),
		GoVersion:     runtime.Version(),
		OS:            runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
	if hs.data != nil {
		st := hs.data.Status()
		stats.Records = st.Records
		stats.DataSource = st.Source
	}
	if hs.clients != nil {
		stats.WebSocketClients = hs.clients.ClientCount()
	}
	return stats
}

func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.data == nil {
		return ServiceHealth{Status: StatusNotReady, Message: "dataset not initialized"}
	}

	st := hs.data.Status()
	if !st.Loaded {
		return ServiceHealth{
			Status:  StatusDegraded,
			Message: "No data file found; serving empty views",
			Details: st.Attempts,
		}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%s records loaded from %s", humanize.Comma(int64(st.Records)), st.Label),
		Details: map[string]interface{}{"source": st.Source, "loaded_at": st.LoadedAt},
	}
}

func (hs *HealthService) checkWebSocketHealth() ServiceHealth {
	if hs.clients == nil {
		return ServiceHealth{Status: StatusReady, Message: "WebSocket hub not attached"}
	}
	return ServiceHealth{
		Status:  StatusReady,
		Message: fmt.Sprintf("%d clients connected", hs.clients.ClientCount()),
	}
}
