package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyNote rejects note writes with no content before any network call.
var ErrEmptyNote = errors.New("note content must not be empty")

type noteRequest struct {
	BookID    int64  `json:"bookID"`
	ChapterID int64  `json:"chapterID"`
	Content   string `json:"content"`
}

// MyNotes fetches all of the caller's notes.
func (c *Client) MyNotes(ctx context.Context) ([]Note, error) {
	var notes []Note
	if err := c.get(ctx, "/api/UserNotes/my", nil, true, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote attaches a new note to a book chapter.
func (c *Client) CreateNote(ctx context.Context, bookID, chapterID int64, content string) (*Note, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyNote
	}
	var note Note
	req := noteRequest{BookID: bookID, ChapterID: chapterID, Content: content}
	if err := c.post(ctx, "/api/UserNotes", req, true, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// UpdateNote replaces a note's content, keeping its book/chapter binding.
func (c *Client) UpdateNote(ctx context.Context, noteID, bookID, chapterID int64, content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyNote
	}
	req := noteRequest{BookID: bookID, ChapterID: chapterID, Content: content}
	return c.put(ctx, fmt.Sprintf("/api/UserNotes/%d", noteID), req, true, nil)
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, noteID int64) error {
	return c.delete(ctx, fmt.Sprintf("/api/UserNotes/%d", noteID), true, nil)
}
