package crud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/miniapp-template/dashboard/internal/models"
	apperrors "github.com/miniapp-template/dashboard/pkg/errors"
)

// DefaultRemoteTimeout bounds every call to the remote entity API.
const DefaultRemoteTimeout = 30 * time.Second

// RemoteConfig configures the remote entity API backend.
type RemoteConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// RemoteProvider implements Provider by forwarding every operation as a
// single HTTP call to the company entity service. Each call independently
// reports success or failure; non-2xx answers surface as upstream errors
// carrying the HTTP status and reason.
type RemoteProvider struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRemoteProvider constructs the remote backend.
func NewRemoteProvider(cfg RemoteConfig) (*RemoteProvider, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("crud remote: base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}

	return &RemoteProvider{
		baseURL: base + "/api/entities",
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// remoteEnvelope mirrors the upstream response convention.
type remoteEnvelope struct {
	Success  bool            `json:"success"`
	Data     json.RawMessage `json:"data"`
	Error    string          `json:"error"`
	Message  string          `json:"message"`
	Metadata *remoteMeta     `json:"metadata"`
}

type remoteMeta struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"pageSize"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

func (r *RemoteProvider) do(ctx context.Context, method, path string, query url.Values, body any) (*remoteEnvelope, error) {
	endpoint := r.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, apperrors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewUpstream(resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var env remoteEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(fmt.Errorf("decode response: %w", err))
	}

	if !env.Success {
		reason := env.Error
		if reason == "" {
			reason = "remote entity API reported failure"
		}
		return nil, apperrors.New(apperrors.ErrUpstream.Code, reason, http.StatusBadGateway)
	}

	return &env, nil
}

func listQuery(params FilterParams) url.Values {
	query := url.Values{}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.SortBy != "" {
		query.Set("sortBy", params.SortBy)
	}
	if params.SortOrder != "" {
		query.Set("sortOrder", params.SortOrder)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(params.PageSize))
	}
	if len(params.Filters) > 0 {
		if encoded, err := json.Marshal(params.Filters); err == nil {
			query.Set("filters", string(encoded))
		}
	}
	return query
}

// decodeEntities reads the envelope's data field as a slice. A success
// envelope without data (or an explicit null) means an empty result set,
// not a decode failure.
func decodeEntities(env *remoteEnvelope) ([]models.Entity, error) {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return []models.Entity{}, nil
	}

	var items []models.Entity
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(fmt.Errorf("decode entities: %w", err))
	}
	return items, nil
}

// List forwards the query to the remote service and relays its pagination.
func (r *RemoteProvider) List(ctx context.Context, params FilterParams) (*Page, error) {
	env, err := r.do(ctx, http.MethodGet, "", listQuery(params), nil)
	if err != nil {
		return nil, err
	}

	items, err := decodeEntities(env)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Items:    items,
		Page:     params.page(),
		PageSize: params.pageSize(),
	}
	if env.Metadata != nil {
		page.Page = env.Metadata.Page
		page.PageSize = env.Metadata.PageSize
		page.TotalPages = env.Metadata.TotalPages
		page.TotalItems = env.Metadata.TotalItems
		page.HasNext = env.Metadata.HasNext
		page.HasPrevious = env.Metadata.HasPrevious
	}
	return page, nil
}

func (r *RemoteProvider) decodeEntity(env *remoteEnvelope) (*models.Entity, error) {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, apperrors.ErrUpstream.WithInternal(errors.New("success envelope carried no entity data"))
	}

	var entity models.Entity
	if err := json.Unmarshal(env.Data, &entity); err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(fmt.Errorf("decode entity: %w", err))
	}
	return &entity, nil
}

// Get fetches one entity.
func (r *RemoteProvider) Get(ctx context.Context, id string) (*models.Entity, error) {
	env, err := r.do(ctx, http.MethodGet, "/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return r.decodeEntity(env)
}

// Create posts a new entity.
func (r *RemoteProvider) Create(ctx context.Context, data Input) (*models.Entity, error) {
	env, err := r.do(ctx, http.MethodPost, "", nil, data)
	if err != nil {
		return nil, err
	}
	return r.decodeEntity(env)
}

// Update puts a partial entity payload.
func (r *RemoteProvider) Update(ctx context.Context, id string, data Input) (*models.Entity, error) {
	env, err := r.do(ctx, http.MethodPut, "/"+url.PathEscape(id), nil, data)
	if err != nil {
		return nil, err
	}
	return r.decodeEntity(env)
}

// Delete removes one entity.
func (r *RemoteProvider) Delete(ctx context.Context, id string) error {
	_, err := r.do(ctx, http.MethodDelete, "/"+url.PathEscape(id), nil, nil)
	return err
}

// BulkDelete removes a batch of ids.
func (r *RemoteProvider) BulkDelete(ctx context.Context, ids []string) error {
	_, err := r.do(ctx, http.MethodPost, "/bulk-delete", nil, map[string]any{"ids": ids})
	return err
}

// BulkUpdate forwards the batch; the remote service applies items sequentially.
func (r *RemoteProvider) BulkUpdate(ctx context.Context, updates []BulkItem) ([]models.Entity, error) {
	env, err := r.do(ctx, http.MethodPost, "/bulk-update", nil, map[string]any{"updates": updates})
	if err != nil {
		return nil, err
	}
	return decodeEntities(env)
}

// Export returns the filtered raw rows from the remote service.
func (r *RemoteProvider) Export(ctx context.Context, params FilterParams) ([]models.Entity, error) {
	query := url.Values{}
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if len(params.Filters) > 0 {
		if encoded, err := json.Marshal(params.Filters); err == nil {
			query.Set("filters", string(encoded))
		}
	}

	env, err := r.do(ctx, http.MethodGet, "/export", query, nil)
	if err != nil {
		return nil, err
	}
	return decodeEntities(env)
}

// Import streams the uploaded file to the remote service.
func (r *RemoteProvider) Import(ctx context.Context, src io.Reader) (*ImportResult, error) {
	payload, err := io.ReadAll(src)
	if err != nil {
		return nil, apperrors.Wrap(err, "read import payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/import", bytes.NewReader(payload))
	if err != nil {
		return nil, apperrors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.NewUpstream(resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var env struct {
		Success bool         `json:"success"`
		Data    ImportResult `json:"data"`
		Error   string       `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperrors.ErrUpstream.WithInternal(fmt.Errorf("decode response: %w", err))
	}
	if !env.Success {
		return nil, apperrors.New(apperrors.ErrUpstream.Code, env.Error, http.StatusBadGateway)
	}
	return &env.Data, nil
}
