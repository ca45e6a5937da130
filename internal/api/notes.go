package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/diarynotes/diary-go/internal/model"
)

func notesPath(profileID string, noteID ...string) []string {
	path := []string{"v1", "medical-profiles", url.PathEscape(profileID), "notes"}
	for _, id := range noteID {
		path = append(path, url.PathEscape(id))
	}
	return path
}

// List fetches one page of notes. A limit <= 0 uses the default page size.
func (c *Client) List(ctx context.Context, limit, start int) (model.NotePage, error) {
	headers, profileID, err := c.session()
	if err != nil {
		return model.NotePage{}, err
	}
	if limit <= 0 {
		limit = model.DefaultPageSize
	}
	if start < 0 {
		start = 0
	}

	env, err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    notesPath(profileID),
		query:   url.Values{"limit": {strconv.Itoa(limit)}, "start": {strconv.Itoa(start)}},
		headers: headers,
	})
	if err != nil {
		return model.NotePage{}, err
	}
	if !env.Success {
		return model.NotePage{}, apiError(env.Message, "Failed to fetch notes")
	}

	page, err := DecodeNotePage(env.Data)
	if err != nil {
		if c.strict {
			return model.NotePage{}, err
		}
		c.log.Warn("notes list payload malformed, treating as empty", "error", err)
		return page, nil
	}
	if len(page.Notes) == 0 && (page.Cursor.Total > 0 || page.Cursor.Size > 0) {
		c.log.Warn("notes list empty although server reports notes",
			"total", page.Cursor.Total, "size", page.Cursor.Size)
	}
	return page, nil
}

// Create stores a new note. The returned note comes from the response when the
// server echoes it, otherwise it carries the submitted fields and an empty ID.
func (c *Client) Create(ctx context.Context, title, description, imageID string) (model.Note, error) {
	headers, profileID, err := c.session()
	if err != nil {
		return model.Note{}, err
	}

	req := model.NoteRequest{Title: title, Description: description, ImageID: imageID}
	env, err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    notesPath(profileID),
		headers: headers,
		body:    req,
	})
	if err != nil {
		return model.Note{}, err
	}
	if !env.Success {
		return model.Note{}, apiError(env.Message, "Failed to create note")
	}
	return c.noteOrEcho(env.Data, "", req), nil
}

// Update replaces the title, description and image of an existing note.
func (c *Client) Update(ctx context.Context, noteID, title, description, imageID string) (model.Note, error) {
	headers, profileID, err := c.session()
	if err != nil {
		return model.Note{}, err
	}

	req := model.NoteRequest{Title: title, Description: description, ImageID: imageID}
	env, err := c.do(ctx, request{
		method:  http.MethodPut,
		path:    notesPath(profileID, noteID),
		headers: headers,
		body:    req,
	})
	if err != nil {
		return model.Note{}, err
	}
	if !env.Success {
		return model.Note{}, apiError(env.Message, "Failed to update note")
	}
	return c.noteOrEcho(env.Data, noteID, req), nil
}

// Get fetches a single note.
func (c *Client) Get(ctx context.Context, noteID string) (model.Note, error) {
	headers, profileID, err := c.session()
	if err != nil {
		return model.Note{}, err
	}

	env, err := c.do(ctx, request{
		method:  http.MethodGet,
		path:    notesPath(profileID, noteID),
		headers: headers,
	})
	if err != nil {
		return model.Note{}, err
	}
	if !env.Success {
		return model.Note{}, apiError(env.Message, "Failed to fetch note details")
	}
	return DecodeNote(env.Data)
}

// Delete removes a note.
func (c *Client) Delete(ctx context.Context, noteID string) error {
	headers, profileID, err := c.session()
	if err != nil {
		return err
	}

	env, err := c.do(ctx, request{
		method:  http.MethodDelete,
		path:    notesPath(profileID, noteID),
		headers: headers,
	})
	if err != nil {
		return err
	}
	if !env.Success {
		return apiError(env.Message, "Failed to delete note")
	}
	return nil
}

func (c *Client) noteOrEcho(data []byte, noteID string, req model.NoteRequest) model.Note {
	note, err := DecodeNote(data)
	if err == nil {
		return note
	}
	c.log.Debug("save response carried no note, echoing request", "error", err)
	echo := model.Note{ID: noteID, Title: req.Title, Description: req.Description}
	if req.ImageID != "" {
		imageID := req.ImageID
		echo.ImageID = &imageID
	}
	return echo
}
