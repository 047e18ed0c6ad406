package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/emiliopalmerini/xsvn/internal/domain"
)

const writeAccessPath = "/write-access"

// Client asks a remote policy authority for write-access verdicts.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	mu         sync.Mutex
	lastErrors []string
}

// NewClient creates a new policy authority client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("policy authority URL not configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type writeAccessRequest struct {
	Operation operationPayload       `json:"operation"`
	Items     map[string]itemPayload `json:"items"`
}

type operationPayload struct {
	Type         string         `json:"type"`
	RepositoryID string         `json:"repo_id"`
	Username     string         `json:"username"`
	Labels       []labelPayload `json:"labels"`
}

type labelPayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type itemPayload struct {
	Type        string              `json:"type"`
	Path        string              `json:"path"`
	SourceItems []sourceItemPayload `json:"source_items"`
}

type sourceItemPayload struct {
	Path     string `json:"path"`
	Revision int64  `json:"revision"`
}

type writeAccessResponse struct {
	Allowed *bool    `json:"allowed"`
	Errors  []string `json:"errors"`
}

// HasWriteAccess submits the operation and its items for a verdict. On a
// denial the authority's reasons are kept for AccessErrors.
func (c *Client) HasWriteAccess(ctx context.Context, op *domain.CommitOperation, items map[string]domain.OperationItem) (bool, error) {
	body, err := json.Marshal(newWriteAccessRequest(op, items))
	if err != nil {
		return false, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+writeAccessPath, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded writeAccessResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return false, fmt.Errorf("decoding response: %w", err)
	}
	if decoded.Allowed == nil {
		return false, fmt.Errorf("response has no verdict")
	}

	c.mu.Lock()
	if *decoded.Allowed {
		c.lastErrors = nil
	} else {
		c.lastErrors = decoded.Errors
	}
	c.mu.Unlock()

	return *decoded.Allowed, nil
}

// AccessErrors returns the reasons of the last denial.
func (c *Client) AccessErrors(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.lastErrors))
	copy(out, c.lastErrors)
	return out, nil
}

func newWriteAccessRequest(op *domain.CommitOperation, items map[string]domain.OperationItem) writeAccessRequest {
	labels := make([]labelPayload, len(op.Labels))
	for i, l := range op.Labels {
		labels[i] = labelPayload{Name: l.Name, Type: l.Type}
	}

	payload := make(map[string]itemPayload, len(items))
	for path, item := range items {
		sources := make([]sourceItemPayload, len(item.SourceItems))
		for i, s := range item.SourceItems {
			sources[i] = sourceItemPayload{Path: s.Path, Revision: s.Revision}
		}
		payload[path] = itemPayload{
			Type:        string(item.Type),
			Path:        item.Path,
			SourceItems: sources,
		}
	}

	return writeAccessRequest{
		Operation: operationPayload{
			Type:         string(op.Type),
			RepositoryID: op.RepositoryID,
			Username:     op.Username,
			Labels:       labels,
		},
		Items: payload,
	}
}
