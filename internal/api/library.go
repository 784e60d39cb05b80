package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// LibraryBooks fetches one page of the caller's library.
func (c *Client) LibraryBooks(ctx context.Context, pageNumber, pageSize int) (*BookPage, error) {
	q := url.Values{}
	q.Set("pageNumber", strconv.Itoa(pageNumber))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var page BookPage
	if err := c.get(ctx, "/api/MyLibrary/books", q, true, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// LibraryStatus reports whether the book is in the caller's library.
func (c *Client) LibraryStatus(ctx context.Context, bookID int64) (*LibraryStatus, error) {
	var status LibraryStatus
	path := fmt.Sprintf("/api/MyLibrary/books/%d/status", bookID)
	if err := c.get(ctx, path, nil, true, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// AddToLibrary adds a book to the caller's library.
func (c *Client) AddToLibrary(ctx context.Context, bookID int64) error {
	return c.post(ctx, fmt.Sprintf("/api/MyLibrary/books/%d", bookID), nil, true, nil)
}

// RemoveFromLibrary removes a book from the caller's library.
func (c *Client) RemoveFromLibrary(ctx context.Context, bookID int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/MyLibrary/books/%d", bookID), true, nil)
}
