package api

import "context"

// SaveProgress upserts the reading position for a book.
func (c *Client) SaveProgress(ctx context.Context, entry ProgressEntry) error {
	return c.post(ctx, "/api/Progress", entry, true, nil)
}

// MyProgress fetches the reading position for every book the caller
// has opened.
func (c *Client) MyProgress(ctx context.Context) ([]ProgressEntry, error) {
	var entries []ProgressEntry
	if err := c.get(ctx, "/api/Progress/my/all", nil, true, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
