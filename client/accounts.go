// File: client/accounts.go
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"carhub/models"
)

// TokenResponse is the OAuth2 password-grant response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// SignIn exchanges user credentials for a bearer token via the OAuth2
// password grant. The client id/secret come from gateway configuration.
func (c *Client) SignIn(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)
	form.Set("client_id", c.cfg.OAuthClientID)
	form.Set("client_secret", c.cfg.OAuthClientSecret)

	var out TokenResponse
	if err := c.sendForm(ctx, "/o/token/", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if req.Role == "" {
		req.Role = "user"
	}
	return c.send(ctx, http.MethodPost, "/api/accounts/register/", "", nil, req, nil)
}

// ListStations returns all service stations.
func (c *Client) ListStations(ctx context.Context, token string) ([]models.ServiceStation, error) {
	var out []models.ServiceStation
	if err := c.send(ctx, http.MethodGet, "/api/accounts/service-stations/", token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Station returns a single service station by id.
func (c *Client) Station(ctx context.Context, token string, id int) (*models.ServiceStation, error) {
	var out models.ServiceStation
	path := fmt.Sprintf("/api/accounts/service-stations/%d/", id)
	if err := c.send(ctx, http.MethodGet, path, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateStation creates a service station.
func (c *Client) CreateStation(ctx context.Context, token string, station models.ServiceStation) error {
	return c.send(ctx, http.MethodPost, "/api/accounts/service-stations/", token, nil, station, nil)
}

// UpdateStation replaces a service station.
func (c *Client) UpdateStation(ctx context.Context, token string, id int, station models.ServiceStation) error {
	path := fmt.Sprintf("/api/accounts/service-stations/%d/", id)
	return c.send(ctx, http.MethodPut, path, token, nil, station, nil)
}

// DeleteStation removes a service station.
func (c *Client) DeleteStation(ctx context.Context, token string, id int) error {
	path := fmt.Sprintf("/api/accounts/service-stations/%d/", id)
	return c.send(ctx, http.MethodDelete, path, token, nil, nil, nil)
}

// NearbyStations queries stations around a point within a radius (km).
func (c *Client) NearbyStations(ctx context.Context, token string, lat, lng, radius float64) ([]models.ServiceStation, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("radius", strconv.FormatFloat(radius, 'f', -1, 64))

	var out []models.ServiceStation
	if err := c.send(ctx, http.MethodGet, "/api/accounts/service-stations/nearby/", token, params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ServiceTypes returns the service-type reference data.
func (c *Client) ServiceTypes(ctx context.Context, token string) ([]models.ServiceType, error) {
	var out []models.ServiceType
	if err := c.send(ctx, http.MethodGet, "/api/accounts/service-types/", token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StationServices returns the service types offered at one station.
func (c *Client) StationServices(ctx context.Context, token string, stationID int) ([]models.ServiceType, error) {
	var out []models.ServiceType
	path := fmt.Sprintf("/api/accounts/station-services/%d/", stationID)
	if err := c.send(ctx, http.MethodGet, path, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
