package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/sentineldesk/signalhub/internal/apperr"
	"github.com/sentineldesk/signalhub/internal/enrichment"
	"github.com/sentineldesk/signalhub/internal/pollers"
)

// SystemStatusProvider reports the reachability of this process's external
// dependencies (database, broker, market data) for GET /system/status.
type SystemStatusProvider interface {
	CheckDependencies(ctx context.Context) map[string]string
}

type systemHandlers struct {
	pollers   *pollers.Controller
	enrichment *enrichment.Service
	status    SystemStatusProvider
	log       zerolog.Logger
	startedAt time.Time
}

type systemStatusResponse struct {
	UptimeSeconds      float64                   `json:"uptime_seconds"`
	CPUPercent         float64                   `json:"cpu_percent"`
	RAMPercent         float64                   `json:"ram_percent"`
	Goroutines         int                       `json:"goroutines"`
	Sources            map[string]pollers.Status `json:"sources"`
	EnrichmentWarnings int                       `json:"enrichment_warnings"`
	Dependencies       map[string]string         `json:"dependencies,omitempty"`
}

func (h *systemHandlers) status(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := systemResourceUsage(h.log)

	resp := systemStatusResponse{
		UptimeSeconds:      time.Since(h.startedAt).Seconds(),
		CPUPercent:         cpuPercent,
		RAMPercent:         ramPercent,
		Goroutines:         runtime.NumGoroutine(),
		Sources:            h.pollers.StatusAll(),
		EnrichmentWarnings: h.enrichment.Warnings(),
	}
	if h.status != nil {
		resp.Dependencies = h.status.CheckDependencies(r.Context())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *systemHandlers) startSource(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.pollers.Start(r.Context(), name); err != nil {
		writeError(w, apperr.New(apperr.KindNotFound, "unknown source: "+name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *systemHandlers) stopSource(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.pollers.Stop(name); err != nil {
		writeError(w, apperr.New(apperr.KindNotFound, "unknown source: "+name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// systemResourceUsage returns the average CPU percentage (over a short
// sampling window) and current RAM usage percentage.
func systemResourceUsage(log zerolog.Logger) (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read cpu percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		log.Warn().Err(err).Msg("failed to read memory statistics")
		return cpuAvg(cpuPercent), 0
	}
	return cpuAvg(cpuPercent), memStat.UsedPercent
}

func cpuAvg(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return samples[0]
}
