// Package resthttp implements the remote mark gateway over the REST
// API. The sync engine talks to this adapter; offline-capable callers
// can swap in a fake.
package resthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"fishdex/application/ports"
	"fishdex/domain/marks"
	apperrors "fishdex/pkg/errors"
)

// Gateway calls the mark endpoints of a running API server
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGateway creates a gateway against baseURL, e.g. "https://api.example.com"
func NewGateway(baseURL string, logger *zap.Logger) *Gateway {
	return &Gateway{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

var _ ports.MarkGateway = (*Gateway)(nil)

type markDTO struct {
	ID         string    `json:"id"`
	EntryID    string    `json:"entry_id"`
	Address    string    `json:"address"`
	RecordedAt time.Time `json:"recorded_at"`
}

type createMarkRequest struct {
	EntryID    string    `json:"entry_id"`
	Address    string    `json:"address"`
	RecordedAt time.Time `json:"recorded_at"`
}

type batchCreateRequest struct {
	Marks []createMarkRequest `json:"marks"`
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// List fetches marks for the identity, optionally scoped to one entry
func (g *Gateway) List(ctx context.Context, identityID, entityID string) ([]marks.Mark, error) {
	endpoint := g.baseURL + "/api/v1/marks"
	if entityID != "" {
		endpoint += "?entry_id=" + url.QueryEscape(entityID)
	}

	var dtos []markDTO
	if err := g.do(ctx, http.MethodGet, endpoint, identityID, nil, &dtos); err != nil {
		return nil, err
	}
	return decodeMarks(dtos)
}

// Create upserts one mark and returns the server record
func (g *Gateway) Create(ctx context.Context, identityID string, mark marks.Mark) (marks.Mark, error) {
	body := createMarkRequest{
		EntryID:    mark.EntityID,
		Address:    mark.Address,
		RecordedAt: mark.RecordedAt,
	}

	var dto markDTO
	if err := g.do(ctx, http.MethodPost, g.baseURL+"/api/v1/marks", identityID, body, &dto); err != nil {
		return marks.Mark{}, err
	}
	return decodeMark(dto)
}

// BatchCreate upserts a batch of marks in one request
func (g *Gateway) BatchCreate(ctx context.Context, identityID string, items []marks.Mark) ([]marks.Mark, error) {
	if len(items) == 0 {
		return nil, nil
	}

	body := batchCreateRequest{Marks: make([]createMarkRequest, 0, len(items))}
	for _, mark := range items {
		body.Marks = append(body.Marks, createMarkRequest{
			EntryID:    mark.EntityID,
			Address:    mark.Address,
			RecordedAt: mark.RecordedAt,
		})
	}

	var dtos []markDTO
	if err := g.do(ctx, http.MethodPost, g.baseURL+"/api/v1/marks/batch", identityID, body, &dtos); err != nil {
		return nil, err
	}
	return decodeMarks(dtos)
}

// Delete removes a mark by its server id
func (g *Gateway) Delete(ctx context.Context, identityID, markID string) error {
	endpoint := g.baseURL + "/api/v1/marks/" + url.PathEscape(markID)
	return g.do(ctx, http.MethodDelete, endpoint, identityID, nil, nil)
}

func (g *Gateway) do(ctx context.Context, method, endpoint, identityID string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError("failed to encode gateway request").WithCause(err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperrors.NewInternalError("failed to build gateway request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", identityID)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return apperrors.NewNetworkError("mark gateway request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return apperrors.NewExternalError("mark gateway", fmt.Errorf("status %d: %w", resp.StatusCode, err))
	}

	if resp.StatusCode >= http.StatusBadRequest || !envelope.Success {
		return gatewayError(resp.StatusCode, envelope)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return apperrors.NewExternalError("mark gateway", err)
		}
	}
	return nil
}

func gatewayError(status int, envelope apiEnvelope) error {
	message := "mark gateway request rejected"
	if envelope.Error != nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	switch status {
	case http.StatusNotFound:
		return apperrors.NewNotFoundError("mark")
	case http.StatusUnauthorized:
		return apperrors.NewUnauthorizedError(message)
	case http.StatusConflict:
		return apperrors.NewConflictError(message)
	case http.StatusBadRequest:
		return apperrors.NewValidationError(message)
	default:
		return apperrors.NewExternalError("mark gateway", fmt.Errorf("status %d: %s", status, message))
	}
}

func decodeMark(dto markDTO) (marks.Mark, error) {
	mark, err := marks.NewConfirmedMark(dto.ID, dto.EntryID, dto.Address, dto.RecordedAt)
	if err != nil {
		return marks.Mark{}, apperrors.NewExternalError("mark gateway", err)
	}
	return mark, nil
}

func decodeMarks(dtos []markDTO) ([]marks.Mark, error) {
	result := make([]marks.Mark, 0, len(dtos))
	for _, dto := range dtos {
		mark, err := decodeMark(dto)
		if err != nil {
			return nil, err
		}
		result = append(result, mark)
	}
	return result, nil
}
