package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/tanjung/chroute/pkg/chbuild"
	"github.com/tanjung/chroute/pkg/snapindex"
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	service  *RouteService
	stats    chbuild.Stats
	numNodes uint32
	validate *validator.Validate
	log      *zap.Logger
}

// NewHandlers creates handlers backed by service, reporting stats verbatim
// in GET /api/v1/stats.
func NewHandlers(service *RouteService, numNodes uint32, stats chbuild.Stats, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		service:  service,
		stats:    stats,
		numNodes: numNodes,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		field := ""
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			field = verrs[0].Field()
		}
		writeError(w, http.StatusBadRequest, "invalid_coordinates", field)
		return
	}

	result, err := h.service.Route(r.Context(),
		LatLng{Lat: req.Start.Lat, Lng: req.Start.Lng},
		LatLng{Lat: req.End.Lat, Lng: req.End.Lng},
	)
	if err != nil {
		h.writeRouteError(w, err)
		return
	}

	resp := RouteResponse{
		TotalDistanceMeters: result.TotalDistanceMeters,
		Nodes:               result.Nodes,
	}
	for _, hop := range result.Hops {
		resp.Segments = append(resp.Segments, SegmentJSON{
			From:           LatLngJSON{Lat: hop.From.Lat, Lng: hop.From.Lng},
			To:             LatLngJSON{Lat: hop.To.Lat, Lng: hop.To.Lng},
			DistanceMeters: hop.DistanceMeters,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) writeRouteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, snapindex.ErrPointTooFar):
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "")
	case errors.Is(err, ErrNoRoute):
		writeError(w, http.StatusNotFound, "no_route_found", "")
	default:
		h.log.Error("route request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, StatsResponse{
		NumNodes:       h.numNodes,
		NumContracted:  h.stats.NodesContracted,
		ShortcutsAdded: h.stats.ShortcutsAdded,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Field: field})
}
