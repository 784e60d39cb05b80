package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"
)

// ListBooks fetches one page of the public catalogue.
func (c *Client) ListBooks(ctx context.Context, pageNumber, pageSize int) (*BookPage, error) {
	q := url.Values{}
	q.Set("pageNumber", strconv.Itoa(pageNumber))
	q.Set("pageSize", strconv.Itoa(pageSize))

	var page BookPage
	if err := c.get(ctx, "/api/Books", q, false, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetBook fetches one book with its chapter list.
func (c *Client) GetBook(ctx context.Context, bookID int64) (*Book, error) {
	var book Book
	if err := c.get(ctx, fmt.Sprintf("/api/Books/%d", bookID), nil, false, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// TopRanked fetches the top-N ranked recommendations.
func (c *Client) TopRanked(ctx context.Context, topN int) ([]Book, error) {
	q := url.Values{}
	q.Set("topN", strconv.Itoa(topN))

	var books []Book
	if err := c.get(ctx, "/api/Books/recommendations/top-ranked", q, false, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// ContentRecommendations fetches books similar to the given one.
func (c *Client) ContentRecommendations(ctx context.Context, bookID int64, topN int) ([]Book, error) {
	q := url.Values{}
	q.Set("topN", strconv.Itoa(topN))

	var books []Book
	path := fmt.Sprintf("/api/Books/%d/recommendations/content", bookID)
	if err := c.get(ctx, path, q, false, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// FilterRecommendations fetches a filtered, paged recommendation listing.
func (c *Client) FilterRecommendations(ctx context.Context, filter BookFilter) (*BookPage, error) {
	q := url.Values{}
	if filter.PageNumber > 0 {
		q.Set("PageNumber", strconv.Itoa(filter.PageNumber))
	}
	if filter.PageSize > 0 {
		q.Set("PageSize", strconv.Itoa(filter.PageSize))
	}
	if filter.Category != "" {
		q.Set("Category", filter.Category)
	}
	if filter.Author != "" {
		q.Set("Author", filter.Author)
	}
	if filter.Language != "" {
		q.Set("Language", filter.Language)
	}
	if filter.Difficulty != "" {
		q.Set("Difficulty", filter.Difficulty)
	}
	if filter.MinViews > 0 {
		q.Set("MinViews", strconv.FormatInt(filter.MinViews, 10))
	}
	if filter.MinRating > 0 {
		q.Set("MinRating", strconv.FormatFloat(filter.MinRating, 'f', -1, 64))
	}
	if filter.RecentYears > 0 {
		q.Set("RecentYears", strconv.Itoa(filter.RecentYears))
	}

	var page BookPage
	if err := c.get(ctx, "/api/Books/recommendations/filter", q, false, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UploadBook submits a PDF for server-side processing (chapter splitting,
// summaries, quizzes). The PDF itself is never parsed client-side.
func (c *Client) UploadBook(ctx context.Context, title, filename string, pdf io.Reader) (*Book, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		var err error
		defer func() { pw.CloseWithError(err) }()
		if err = mw.WriteField("title", title); err != nil {
			return
		}
		var part io.Writer
		if part, err = mw.CreateFormFile("file", filename); err != nil {
			return
		}
		if _, err = io.Copy(part, pdf); err != nil {
			return
		}
		err = mw.Close()
	}()

	var book Book
	opts := requestOpts{
		authed:      true,
		raw:         pr,
		contentType: mw.FormDataContentType(),
	}
	if err := c.do(ctx, "POST", "/api/Books/process-upload", opts, &book); err != nil {
		return nil, err
	}
	return &book, nil
}
