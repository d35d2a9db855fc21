package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"supply-route-service/internal/api/dto"
	"supply-route-service/internal/domain"
	"supply-route-service/internal/services"

	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	Orders        *services.OrderService
	DefaultOrigin domain.Coordinates
}

func sessionResponse(s *services.Session) dto.SessionResponse {
	_, link, _ := s.LastRoute()
	return dto.SessionResponse{
		ID:        s.ID,
		Origin:    dto.NewCoordinates(s.Origin()),
		CreatedAt: s.CreatedAt,
		Layers:    dto.NewLayers(s.Layers()),
		ShareLink: link,
	}
}

// Create opens a map session at the requested origin or the default one.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	origin := h.DefaultOrigin
	if req.Origin != nil {
		origin = req.Origin.Domain()
	}

	s, err := h.Orders.CreateSession(origin)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, sessionResponse(s))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Orders.Session(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(s))
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Orders.DestroySession(chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetOrigin accepts either coordinates or a free-text address.
func (h *SessionHandler) SetOrigin(w http.ResponseWriter, r *http.Request) {
	var req dto.SetOriginRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var coords *domain.Coordinates
	if req.Origin != nil {
		c := req.Origin.Domain()
		coords = &c
	}

	origin, err := h.Orders.SetOrigin(r.Context(), chi.URLParam(r, "id"), coords, strings.TrimSpace(req.Address))
	if err != nil {
		var ve *domain.ValidationError
		if coords == nil && !errors.As(err, &ve) && !errors.Is(err, domain.ErrSessionNotFound) {
			log.Printf("set origin: address lookup failed: %v", err)
			writeError(w, r, http.StatusBadGateway, "address could not be resolved")
			return
		}
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"origin": dto.NewCoordinates(origin)})
}

func (h *SessionHandler) PlanRoute(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRouteRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	n := h.Orders.PlanRoute(r.Context(), chi.URLParam(r, "id"), req.Domain())
	writeNotification(w, r, n)
}

func (h *SessionHandler) Overlays(w http.ResponseWriter, r *http.Request) {
	s, err := h.Orders.Session(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewOverlaysResponse(s.Map.Snapshot()))
}

func (h *SessionHandler) Layers(w http.ResponseWriter, r *http.Request) {
	layers, err := h.Orders.Layers(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"layers": dto.NewLayers(layers)})
}

// LayerAction applies toggle, show or hide to one layer.
func (h *SessionHandler) LayerAction(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseLayerActionKind(chi.URLParam(r, "action"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	layers, err := h.Orders.ApplyLayerAction(chi.URLParam(r, "id"), domain.LayerAction{
		Kind:    kind,
		LayerID: chi.URLParam(r, "layerID"),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"layers": dto.NewLayers(layers)})
}

// Click forwards a feature click to the handler the session registered for
// the layer.
func (h *SessionHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req dto.ClickRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.FeatureID) == "" {
		writeError(w, r, http.StatusBadRequest, "feature_id is required")
		return
	}

	s, err := h.Orders.Session(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	n, err := s.Map.Click(r.Context(), chi.URLParam(r, "layerID"), req.FeatureID)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "layer is not clickable")
		return
	}
	writeNotification(w, r, n)
}

func (h *SessionHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req dto.ShareRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	n := h.Orders.Share(r.Context(), chi.URLParam(r, "id"), req.To)
	writeNotification(w, r, n)
}
