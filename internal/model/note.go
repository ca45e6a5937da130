package model

// DefaultPageSize is the page size used when none is requested.
const DefaultPageSize = 20

// Note is a diary note as held by the client. Timestamps are epoch milliseconds.
type Note struct {
	ID          string  `json:"_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageID     *string `json:"imageId"`
	ProfileID   *string `json:"medicalProfileId"`
	CreatedAt   int64   `json:"createdAt"`
	UpdatedAt   int64   `json:"updatedAt"`
	ImageURL    *string `json:"imageUrl"`
}

// NoteRequest is the body of the create and update calls.
// ImageID is always sent, as "" when the note has no image.
type NoteRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageID     string `json:"imageId"`
}

// PageCursor describes the last fetched page of notes.
type PageCursor struct {
	Limit int `json:"limit"`
	Start int `json:"start"`
	Total int `json:"total"`
	Size  int `json:"size"`
}

// HasMore reports whether the server holds notes beyond this page.
func (c PageCursor) HasMore() bool {
	return c.Start+c.Size < c.Total
}

// NotePage is one page of the notes list.
type NotePage struct {
	Notes  []Note
	Cursor PageCursor
}
