package model

import "encoding/json"

// Envelope wraps every response of the diary API.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NoteListData is the data payload of the notes list endpoint.
type NoteListData struct {
	Results []Note `json:"results"`
	Limit   int    `json:"limit"`
	Start   int    `json:"start"`
	Total   int    `json:"total"`
	Size    int    `json:"size"`
}
