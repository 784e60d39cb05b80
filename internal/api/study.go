package api

import (
	"context"
	"fmt"
)

// ChapterSummary fetches the AI-generated summary for a chapter.
func (c *Client) ChapterSummary(ctx context.Context, chapterID int64) (*Summary, error) {
	var summary Summary
	path := fmt.Sprintf("/api/Summaries/chapters/%d/summary", chapterID)
	if err := c.get(ctx, path, nil, true, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ChapterQuiz fetches the AI-generated quiz for a chapter.
func (c *Client) ChapterQuiz(ctx context.Context, chapterID int64) (*Quiz, error) {
	var quiz Quiz
	path := fmt.Sprintf("/api/chapters/%d/quiz", chapterID)
	if err := c.get(ctx, path, nil, true, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}
