package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"fishdex/application/ports"
)

type stubGeocoder struct {
	resolved ports.ResolvedAddress
	err      error
}

func (g *stubGeocoder) Resolve(ctx context.Context, lat, lng float64) (ports.ResolvedAddress, error) {
	if g.err != nil {
		return ports.ResolvedAddress{}, g.err
	}
	return g.resolved, nil
}

func TestGeocodeHandler_Reverse(t *testing.T) {
	handler := NewGeocodeHandler(&stubGeocoder{
		resolved: ports.ResolvedAddress{Address: "East Lake Pier (approx. 35m)", FormattedAddress: "1 Lakeside Rd"},
	}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/geocode/reverse?lat=30.55&lng=114.35", nil)
	rec := httptest.NewRecorder()
	handler.Reverse(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "East Lake Pier")
}

func TestGeocodeHandler_RejectsBadCoordinates(t *testing.T) {
	handler := NewGeocodeHandler(&stubGeocoder{}, zap.NewNop())

	cases := []string{
		"/geocode/reverse?lat=abc&lng=114.35",
		"/geocode/reverse?lat=91&lng=114.35",
		"/geocode/reverse?lat=30.55&lng=181",
		"/geocode/reverse?lat=30.55",
	}
	for _, target := range cases {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		handler.Reverse(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "target %s", target)
	}
}

func TestGeocodeHandler_ProviderFailure(t *testing.T) {
	handler := NewGeocodeHandler(&stubGeocoder{err: errors.New("provider down")}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/geocode/reverse?lat=30.55&lng=114.35", nil)
	rec := httptest.NewRecorder()
	handler.Reverse(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
