package handlers

import (
	"net/http"
	"slices"
	"strings"

	"supply-route-service/internal/adapters/catalog"
	"supply-route-service/internal/api/dto"
	"supply-route-service/internal/services"

	"github.com/go-chi/chi/v5"
)

type SupplyHandler struct {
	Orders *services.OrderService
}

// Materials lists the material catalogue in the order demands are sorted by.
func (h *SupplyHandler) Materials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"materials": dto.NewMaterials(h.Orders.Materials())})
}

// List returns the supply locations as a GeoJSON FeatureCollection, the
// source data of the supply layer.
func (h *SupplyHandler) List(w http.ResponseWriter, r *http.Request) {
	material := strings.TrimSpace(r.URL.Query().Get("material"))
	locations := slices.Collect(h.Orders.Catalog().SupplyLocations(r.Context(), material))

	writeJSON(w, r, http.StatusOK, catalog.FeatureCollection(locations))
}

func (h *SupplyHandler) Get(w http.ResponseWriter, r *http.Request) {
	loc, err := h.Orders.Catalog().SupplyLocation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewSupplyResponse(loc))
}
