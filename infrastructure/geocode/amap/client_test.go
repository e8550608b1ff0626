package amap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSelectAddress_NearestPOIWithinRadius(t *testing.T) {
	client := NewClient(Config{APIKey: "k", RadiusM: 1000}, zap.NewNop())

	got := client.selectAddress([]poi{
		{Name: "East Lake Pier", Distance: "420.5"},
		{Name: "City Aquarium", Distance: "120"},
		{Name: "Far Marina", Distance: "2500"},
	}, "1 Lakeside Rd")

	assert.Equal(t, "City Aquarium (approx. 120m)", got)
}

func TestSelectAddress_FallsBackToFormattedAddress(t *testing.T) {
	client := NewClient(Config{APIKey: "k", RadiusM: 1000}, zap.NewNop())

	got := client.selectAddress([]poi{
		{Name: "Far Marina", Distance: "2500"},
		{Name: "", Distance: "10"},
		{Name: "Bad Distance", Distance: "n/a"},
	}, "1 Lakeside Rd")

	assert.Equal(t, "1 Lakeside Rd", got)
}

func TestResolve_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "k", query.Get("key"))
		assert.Equal(t, "all", query.Get("extensions"))
		assert.NotEmpty(t, query.Get("location"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "1",
			"regeocode": map[string]interface{}{
				"formatted_address": "1 Lakeside Rd",
				"pois": []map[string]string{
					{"name": "East Lake Pier", "distance": "35"},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, APIKey: "k", RadiusM: 1000}, zap.NewNop())

	got, err := client.Resolve(context.Background(), 30.55, 114.35)

	require.NoError(t, err)
	assert.Equal(t, "East Lake Pier (approx. 35m)", got.Address)
	assert.Equal(t, "1 Lakeside Rd", got.FormattedAddress)
}

func TestResolve_ProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "0", "info": "INVALID_USER_KEY"})
	}))
	defer server.Close()

	client := NewClient(Config{Endpoint: server.URL, APIKey: "bad", RadiusM: 1000}, zap.NewNop())

	_, err := client.Resolve(context.Background(), 30.55, 114.35)

	assert.Error(t, err)
}

func TestResolve_WithoutAPIKeyIsUnavailable(t *testing.T) {
	client := NewClient(Config{}, zap.NewNop())

	_, err := client.Resolve(context.Background(), 30.55, 114.35)

	assert.Error(t, err)
}
