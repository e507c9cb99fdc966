// Package identity talks to the identity service over HTTP and mirrors the
// identities it learns about into the local users projection.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/clipbook/backend/internal/dto"
	"github.com/clipbook/backend/internal/scheduling/models"
	"github.com/google/uuid"
)

// RefStore is where fetched identities land.
type RefStore interface {
	Upsert(ctx context.Context, ref *models.IdentityRef) error
}

type Client struct {
	baseURL string
	client  *http.Client
	refs    RefStore
}

func NewClient(baseURL string, refs RefStore) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		refs:    refs,
	}
}

// Sync fetches the identity and upserts it into the users projection. A 404
// just means the identity is not readable yet; the caller retries.
func (c *Client) Sync(ctx context.Context, identityID uuid.UUID) error {
	id, err := c.fetch(ctx, identityID)
	if err != nil {
		return err
	}
	return c.refs.Upsert(ctx, &models.IdentityRef{
		ID:       id.ID,
		Email:    id.Email,
		FullName: id.FullName,
	})
}

func (c *Client) fetch(ctx context.Context, identityID uuid.UUID) (*dto.IdentityResponse, error) {
	url := fmt.Sprintf("%s/api/identities/%s", c.baseURL, identityID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity service returned %d for %s", resp.StatusCode, identityID)
	}

	var out dto.IdentityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding identity response: %w", err)
	}
	return &out, nil
}
