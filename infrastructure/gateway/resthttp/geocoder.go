package resthttp

import (
	"context"
	"fmt"

	"fishdex/application/ports"
)

// RemoteGeocoder resolves addresses through the API server, so clients
// never hold the map provider's credentials.
type RemoteGeocoder struct {
	gateway    *Gateway
	identityID func() string
}

// NewRemoteGeocoder creates a geocoder that proxies through the
// gateway's API server. identityID supplies the caller's current
// identity per request.
func NewRemoteGeocoder(gateway *Gateway, identityID func() string) *RemoteGeocoder {
	return &RemoteGeocoder{gateway: gateway, identityID: identityID}
}

var _ ports.Geocoder = (*RemoteGeocoder)(nil)

type geocodeDTO struct {
	Address          string `json:"address"`
	FormattedAddress string `json:"formatted_address"`
}

// Resolve turns coordinates into a display address
func (g *RemoteGeocoder) Resolve(ctx context.Context, lat, lng float64) (ports.ResolvedAddress, error) {
	endpoint := fmt.Sprintf("%s/api/v1/geocode/reverse?lat=%f&lng=%f", g.gateway.baseURL, lat, lng)

	var dto geocodeDTO
	if err := g.gateway.do(ctx, "GET", endpoint, g.identityID(), nil, &dto); err != nil {
		return ports.ResolvedAddress{}, err
	}
	return ports.ResolvedAddress{
		Address:          dto.Address,
		FormattedAddress: dto.FormattedAddress,
	}, nil
}
