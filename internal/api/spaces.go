package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ListSpaces fetches all currently open spaces.
func (c *Client) ListSpaces(ctx context.Context) ([]Space, error) {
	var spaces []Space
	if err := c.get(ctx, "/api/Spaces", nil, true, &spaces); err != nil {
		return nil, err
	}
	return spaces, nil
}

type createSpaceRequest struct {
	Title string `json:"title"`
}

type createSpaceResponse struct {
	ID int64 `json:"id"`
}

// CreateSpace opens a new space and returns its id. An empty or blank
// title is rejected before any network call.
func (c *Client) CreateSpace(ctx context.Context, title string) (int64, error) {
	if strings.TrimSpace(title) == "" {
		return 0, ErrEmptyTitle
	}
	var resp createSpaceResponse
	if err := c.post(ctx, "/api/Spaces/create", createSpaceRequest{Title: title}, true, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// SpaceDetails fetches the current roster snapshot for a space.
func (c *Client) SpaceDetails(ctx context.Context, spaceID int64) (*SpaceDetails, error) {
	var details SpaceDetails
	if err := c.get(ctx, fmt.Sprintf("/api/Spaces/%d", spaceID), nil, true, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// JoinSpace asks the signaling endpoint for a short-lived transport
// credential scoped to the space. A conflict response means this identity
// is already present in the channel and maps to ErrIdentityConflict.
func (c *Client) JoinSpace(ctx context.Context, spaceID int64) (*JoinGrant, error) {
	var grant JoinGrant
	err := c.post(ctx, fmt.Sprintf("/api/Spaces/%d/join", spaceID), struct{}{}, true, &grant)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusConflict || apiErr.Code == "identity_conflict") {
			return nil, fmt.Errorf("%w: %s", ErrIdentityConflict, apiErr.Message)
		}
		return nil, err
	}
	if grant.Token == "" || grant.Channel == "" {
		return nil, errors.New("signaling response missing credentials")
	}
	return &grant, nil
}
