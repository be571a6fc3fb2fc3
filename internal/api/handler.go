package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/kartoza/boolnet-studio/internal/config"
	"github.com/kartoza/boolnet-studio/internal/form"
	"github.com/kartoza/boolnet-studio/internal/models"
	"github.com/kartoza/boolnet-studio/internal/plot"
	"github.com/kartoza/boolnet-studio/internal/session"
	"k8s.io/klog/v2"
)

// Handler provides HTTP API endpoints
type Handler struct {
	session *session.Session
	cfg     config.Config
}

// NewHandler creates a new API handler
func NewHandler(s *session.Session, cfg config.Config) *Handler {
	return &Handler{
		session: s,
		cfg:     cfg,
	}
}

// RegisterRoutes sets up all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Health and info
	r.HandleFunc("/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/info", h.handleInfo).Methods("GET")

	// View state
	r.HandleFunc("/state", h.handleState).Methods("GET")
	r.HandleFunc("/options", h.handleOptions).Methods("GET")

	// Form edits
	r.HandleFunc("/config/{field}", h.handleConfigField).Methods("PUT")
	r.HandleFunc("/layers/{index:[0-9]+}/{field}", h.handleLayerField).Methods("PUT")

	// Transitions
	r.HandleFunc("/train", h.handleTrain).Methods("POST")
	r.HandleFunc("/home", h.handleHome).Methods("POST")

	// Result
	r.HandleFunc("/plot", h.handlePlot).Methods("GET")
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		klog.Errorf("Error encoding response: %v", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// handleHealth returns server health status
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo returns server information
func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"version":   h.cfg.Version,
		"train_url": h.cfg.TrainURL,
	}
	respondJSON(w, http.StatusOK, info)
}

// handleState returns the current view state
func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// handleOptions returns the choices offered by the select fields
func (h *Handler) handleOptions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"activations":   form.Activations,
		"optimizers":    form.Optimizers,
		"lossFunctions": form.LossFunctions,
	})
}

// decodeValue reads the {"value": ...} body of a form edit
func decodeValue(r *http.Request) (string, bool) {
	var update models.FieldUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		return "", false
	}
	return update.Value, true
}

// handleConfigField applies an edit to one top-level field
func (h *Handler) handleConfigField(w http.ResponseWriter, r *http.Request) {
	field := mux.Vars(r)["field"]
	set, ok := form.ConfigSetter(field)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown field: "+field)
		return
	}
	value, ok := decodeValue(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	klog.V(1).Infof("Edit %s = %q", field, value)
	state := h.session.Update(func(c *form.NetworkConfiguration) { set(c, value) })
	respondJSON(w, http.StatusOK, state)
}

// handleLayerField applies an edit to one field of one layer
func (h *Handler) handleLayerField(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	field := vars["field"]
	set, ok := form.LayerSetter(field)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown layer field: "+field)
		return
	}
	index, err := strconv.Atoi(vars["index"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid layer index")
		return
	}
	value, ok := decodeValue(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	klog.V(1).Infof("Edit layers[%d].%s = %q", index, field, value)
	state := h.session.Update(func(c *form.NetworkConfiguration) { set(c, index, value) })
	respondJSON(w, http.StatusOK, state)
}

// handleTrain submits the configuration. A failed request is logged by the
// session and the unchanged state is returned with 200: the page stays on
// the form. The training request outlives a client that goes away.
func (h *Handler) handleTrain(w http.ResponseWriter, r *http.Request) {
	state, _ := h.session.Submit(context.WithoutCancel(r.Context()))
	respondJSON(w, http.StatusOK, state)
}

// handleHome returns to the form
func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.session.Home())
}

// handlePlot returns the Plotly figure for the current result
func (h *Handler) handlePlot(w http.ResponseWriter, r *http.Request) {
	state := h.session.Snapshot()
	if state.View != session.Viewing {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	fig := plot.NewFigure(state.Points)
	if fig == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"figure":  fig,
		"summary": plot.Summarize(state.Points),
	})
}
