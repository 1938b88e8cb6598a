package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ScepterCode/Storemaster-sub000/models"
)

// HTTPAdapter talks to the Storemaster cloud API. Requests are rate limited
// to stay under the backend's per-key quota.
type HTTPAdapter struct {
	baseURL   string
	apiKey    string
	apiKeyHdr string
	http      *http.Client
	limiter   <-chan time.Time
}

func NewHTTPAdapter(apiKey string) (*HTTPAdapter, error) {
	baseURL := strings.TrimSpace(os.Getenv("STOREMASTER_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.storemaster.app"
	}
	apiKeyHeader := strings.TrimSpace(os.Getenv("STOREMASTER_API_KEY_HEADER"))
	if apiKeyHeader == "" {
		apiKeyHeader = "X-API-Key"
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("storemaster api key is empty")
	}
	rateLimitPerMin := int64(60)
	if v := strings.TrimSpace(os.Getenv("STOREMASTER_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &HTTPAdapter{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		apiKeyHdr: apiKeyHeader,
		http:      &http.Client{Timeout: 30 * time.Second},
		limiter:   time.Tick(interval),
	}, nil
}

type listResponse struct {
	Data       []json.RawMessage `json:"data"`
	Items      []json.RawMessage `json:"items"`
	NextCursor string            `json:"next_cursor"`
	HasMore    *bool             `json:"has_more"`
}

func (a *HTTPAdapter) do(ctx context.Context, method string, path string, params url.Values, body any) ([]byte, int, error) {
	<-a.limiter
	endpoint := a.baseURL + path
	if len(params) > 0 {
		endpoint = endpoint + "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set(a.apiKeyHdr, a.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusNotFound {
			return respBody, resp.StatusCode, ErrNotFound
		}
		return respBody, resp.StatusCode, fmt.Errorf("storemaster api error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, resp.StatusCode, nil
}

func (a *HTTPAdapter) FetchAll(ctx context.Context, kind models.EntityKind, userID string, orgID string) ([]json.RawMessage, error) {
	var all []json.RawMessage
	cursor := ""

	for {
		params := url.Values{}
		params.Set("user_id", userID)
		if orgID != "" {
			params.Set("organization_id", orgID)
		}
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		params.Set("limit", "200")

		body, _, err := a.do(ctx, http.MethodGet, "/v1/"+string(kind), params, nil)
		if err != nil {
			return all, err
		}

		var parsed listResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return all, err
		}
		items := parsed.Data
		if len(items) == 0 {
			items = parsed.Items
		}
		all = append(all, items...)

		if parsed.NextCursor == "" || (parsed.HasMore != nil && !*parsed.HasMore) {
			return all, nil
		}
		cursor = parsed.NextCursor
	}
}

func (a *HTTPAdapter) Create(ctx context.Context, kind models.EntityKind, record json.RawMessage, userID string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	body, _, err := a.do(ctx, http.MethodPost, "/v1/"+string(kind), params, record)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (a *HTTPAdapter) Update(ctx context.Context, kind models.EntityKind, record json.RawMessage) (json.RawMessage, error) {
	id, err := recordID(record)
	if err != nil {
		return nil, err
	}
	body, _, err := a.do(ctx, http.MethodPut, "/v1/"+string(kind)+"/"+url.PathEscape(id), nil, record)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (a *HTTPAdapter) Delete(ctx context.Context, kind models.EntityKind, id string) error {
	_, _, err := a.do(ctx, http.MethodDelete, "/v1/"+string(kind)+"/"+url.PathEscape(id), nil, nil)
	if errors.Is(err, ErrNotFound) {
		// Deleting an already-gone record is a no-op.
		return nil
	}
	return err
}

type bulkUpdateRequest struct {
	UserId           string  `json:"userId"`
	OrganizationNull bool    `json:"organizationNull"`
	OrganizationId   *string `json:"organizationId"`
}

type bulkUpdateResponse struct {
	Affected int64 `json:"affected"`
}

func (a *HTTPAdapter) BulkUpdate(ctx context.Context, filter BulkFilter, patch BulkPatch) (int64, error) {
	req := bulkUpdateRequest{
		UserId:           filter.UserId,
		OrganizationNull: filter.OrganizationNull,
		OrganizationId:   patch.OrganizationId,
	}
	body, _, err := a.do(ctx, http.MethodPost, "/v1/"+string(filter.Kind)+"/bulk-update", nil, req)
	if err != nil {
		return 0, err
	}
	var parsed bulkUpdateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, err
	}
	return parsed.Affected, nil
}

func (a *HTTPAdapter) FindMembership(ctx context.Context, userID string) (*models.OrganizationMember, error) {
	params := url.Values{}
	params.Set("user_id", userID)
	body, _, err := a.do(ctx, http.MethodGet, "/v1/memberships", params, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var member models.OrganizationMember
	if err := json.Unmarshal(body, &member); err != nil {
		return nil, err
	}
	if member.UserId == "" {
		return nil, nil
	}
	return &member, nil
}

func (a *HTTPAdapter) FindOrganization(ctx context.Context, id string) (*models.Organization, error) {
	body, _, err := a.do(ctx, http.MethodGet, "/v1/organizations/"+url.PathEscape(id), nil, nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var org models.Organization
	if err := json.Unmarshal(body, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (a *HTTPAdapter) CreateOrganization(ctx context.Context, org *models.Organization) (*models.Organization, error) {
	body, _, err := a.do(ctx, http.MethodPost, "/v1/organizations", nil, org)
	if err != nil {
		return nil, err
	}
	var created models.Organization
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *HTTPAdapter) CreateMembership(ctx context.Context, member *models.OrganizationMember) (*models.OrganizationMember, error) {
	body, _, err := a.do(ctx, http.MethodPost, "/v1/memberships", nil, member)
	if err != nil {
		return nil, err
	}
	var created models.OrganizationMember
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func recordID(record json.RawMessage) (string, error) {
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(record, &probe); err != nil {
		return "", err
	}
	if strings.TrimSpace(probe.ID) == "" {
		return "", errors.New("record id missing")
	}
	return probe.ID, nil
}
