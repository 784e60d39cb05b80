package api

import (
	"context"
	"io"
	"mime/multipart"
)

// Me fetches the caller's profile and currently-reading books.
func (c *Client) Me(ctx context.Context) (*ProfilePage, error) {
	var page ProfilePage
	if err := c.get(ctx, "/api/Profile/me", nil, true, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateProfile replaces the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, profile Profile) error {
	return c.put(ctx, "/api/Profile/me", profile, true, nil)
}

type pictureResponse struct {
	ProfilePictureFullURL string `json:"profilePictureFullUrl"`
}

// UploadPicture uploads a new profile picture and returns its URL.
func (c *Client) UploadPicture(ctx context.Context, filename string, image io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		var err error
		defer func() { pw.CloseWithError(err) }()
		var part io.Writer
		if part, err = mw.CreateFormFile("file", filename); err != nil {
			return
		}
		if _, err = io.Copy(part, image); err != nil {
			return
		}
		err = mw.Close()
	}()

	var resp pictureResponse
	opts := requestOpts{
		authed:      true,
		raw:         pr,
		contentType: mw.FormDataContentType(),
	}
	if err := c.do(ctx, "POST", "/api/Profile/me/picture", opts, &resp); err != nil {
		return "", err
	}
	return resp.ProfilePictureFullURL, nil
}

// MyStreak fetches the caller's reading streak.
func (c *Client) MyStreak(ctx context.Context) (*Streak, error) {
	var streak Streak
	if err := c.get(ctx, "/api/Streak/my", nil, true, &streak); err != nil {
		return nil, err
	}
	return &streak, nil
}
