package appointment

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/carepulse/intake-platform/internal/observability/metrics"
	"github.com/carepulse/intake-platform/pkg/logging"
)

// ViewCache stores rendered dashboard payloads. A (nil, nil) GetView result
// is a cache miss.
type ViewCache interface {
	GetView(ctx context.Context, path string) ([]byte, error)
	SetView(ctx context.Context, path string, body []byte) error
}

// DashboardResponse is the admin aggregate view: recent appointments plus
// counts per status.
type DashboardResponse struct {
	Counts
	Documents []Appointment `json:"documents"`
}

// DashboardHandler serves the admin aggregate view from cache when fresh,
// otherwise from a full listing. The lifecycle service invalidates the cached
// entry after every transition.
type DashboardHandler struct {
	service *Service
	cache   ViewCache
	metrics *metrics.IntakeMetrics
	logger  *logging.Logger
}

// NewDashboardHandler creates the admin dashboard handler. cache may be nil,
// which serves every request from the store.
func NewDashboardHandler(service *Service, cache ViewCache, m *metrics.IntakeMetrics, logger *logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardHandler{
		service: service,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// RecentAppointments handles GET /api/admin/appointments.
func (h *DashboardHandler) RecentAppointments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cache != nil {
		cached, err := h.cache.GetView(ctx, AdminPath)
		if err != nil {
			h.logger.Error("dashboard cache read failed", "error", err)
		} else if cached != nil {
			h.metrics.ObserveDashboard("hit")
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
	}
	h.metrics.ObserveDashboard("miss")

	appointments, err := h.service.List(ctx)
	if err != nil {
		h.logger.Error("dashboard listing did not complete", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "operation did not complete"})
		return
	}

	resp := DashboardResponse{
		Counts:    Aggregate(appointments),
		Documents: appointments,
	}
	body, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error("failed to marshal dashboard response", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "operation did not complete"})
		return
	}

	if h.cache != nil {
		if err := h.cache.SetView(ctx, AdminPath, body); err != nil {
			h.logger.Error("dashboard cache write failed", "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
