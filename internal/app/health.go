package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/adeelchainz/base-server/internal/handler"
	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

const mib = 1024 * 1024

type HealthChecker struct {
	infra     Infrastructure
	responder *handler.Responder
	env       string
	startedAt time.Time
}

func NewHealthChecker(infra Infrastructure, responder *handler.Responder, env string) *HealthChecker {
	return &HealthChecker{
		infra:     infra,
		responder: responder,
		env:       env,
		startedAt: time.Now(),
	}
}

type healthReport struct {
	Application  applicationHealth `json:"application"`
	System       systemHealth      `json:"system"`
	Dependencies map[string]string `json:"dependencies"`
	Timestamp    int64             `json:"timeStamp"`
}

type applicationHealth struct {
	Environment string            `json:"environment"`
	Uptime      string            `json:"uptime"`
	MemoryUsage applicationMemory `json:"memoryUsage"`
}

type applicationMemory struct {
	HeapTotal string `json:"heapTotal"`
	HeapUsed  string `json:"heapUsed"`
}

type systemHealth struct {
	CPUs        int    `json:"cpus"`
	Goroutines  int    `json:"goroutines"`
	GoVersion   string `json:"goVersion"`
	TotalMemory string `json:"totalMemory"`
}

func (h *HealthChecker) check(ctx context.Context) map[string]error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	postgres := make(chan error, 1)
	redis := make(chan error, 1)

	go func() {
		postgres <- h.infra.Postgres().Ping(ctx)
	}()

	go func() {
		redis <- h.infra.Redis().Ping(ctx)
	}()

	return map[string]error{
		"postgres": <-postgres,
		"redis":    <-redis,
	}
}

func (h *HealthChecker) report(results map[string]error) healthReport {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	deps := make(map[string]string, len(results))
	for name, err := range results {
		deps[name] = "pass"
		if err != nil {
			deps[name] = "fail"
		}
	}

	return healthReport{
		Application: applicationHealth{
			Environment: h.env,
			Uptime:      fmt.Sprintf("%.2f Second", time.Since(h.startedAt).Seconds()),
			MemoryUsage: applicationMemory{
				HeapTotal: fmt.Sprintf("%.2f MB", float64(mem.HeapSys)/mib),
				HeapUsed:  fmt.Sprintf("%.2f MB", float64(mem.HeapAlloc)/mib),
			},
		},
		System: systemHealth{
			CPUs:        runtime.NumCPU(),
			Goroutines:  runtime.NumGoroutine(),
			GoVersion:   runtime.Version(),
			TotalMemory: fmt.Sprintf("%.2f MB", float64(mem.Sys)/mib),
		},
		Dependencies: deps,
		Timestamp:    time.Now().UnixMilli(),
	}
}

func (h *HealthChecker) Handler(c *gin.Context) {
	results := h.check(c.Request.Context())
	report := h.report(results)

	var errs []error
	for name, err := range results {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		_ = c.Error(err)
		h.responder.Write(c, http.StatusServiceUnavailable, false, "Service unavailable", report)
		return
	}

	h.responder.Success(c, http.StatusOK, handler.MsgSuccess, report)
}
