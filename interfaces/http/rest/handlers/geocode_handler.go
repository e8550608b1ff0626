package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"fishdex/application/ports"
	"fishdex/pkg/common"
)

// GeocodeHandler exposes reverse geocoding to clients
type GeocodeHandler struct {
	geocoder ports.Geocoder
	logger   *zap.Logger
}

// NewGeocodeHandler creates a geocode handler
func NewGeocodeHandler(geocoder ports.Geocoder, logger *zap.Logger) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder, logger: logger}
}

// GeocodeResponse is the wire shape of a resolved address
type GeocodeResponse struct {
	Address          string `json:"address"`
	FormattedAddress string `json:"formatted_address"`
}

// Reverse handles GET /geocode/reverse?lat=&lng=
func (h *GeocodeHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "lat must be a number in [-90, 90]")
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION", "lng must be a number in [-180, 180]")
		return
	}

	resolved, err := h.geocoder.Resolve(r.Context(), lat, lng)
	if err != nil {
		h.logger.Warn("reverse geocode failed",
			zap.Float64("lat", lat),
			zap.Float64("lng", lng),
			zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, GeocodeResponse{
		Address:          resolved.Address,
		FormattedAddress: resolved.FormattedAddress,
	})
}
