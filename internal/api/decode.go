package api

import (
	"fmt"
	"strconv"

	"github.com/buger/jsonparser"

	"github.com/diarynotes/diary-go/internal/model"
)

// Pagination defaults applied per field when the server omits it or sends a non-number.
const (
	defaultLimit = model.DefaultPageSize
	defaultStart = 0
	defaultTotal = 0
	defaultSize  = 0
)

// DecodeNotePage reads the data payload of the notes list endpoint.
//
// A payload that is absent or not an object yields an empty page with a zero cursor
// together with ErrParse; callers choose whether to surface the error. Otherwise the
// notes come from "results", falling back to "data", falling back to none. Items
// without a string "_id" are dropped.
func DecodeNotePage(data []byte) (model.NotePage, error) {
	empty := model.NotePage{Notes: []model.Note{}}

	if !isObject(data) {
		return empty, fmt.Errorf("%w: notes list data is not an object", ErrParse)
	}

	notes := []model.Note{}
	if items, ok := arrayField(data, "results", "data"); ok {
		var itemErr error
		_, err := jsonparser.ArrayEach(items, func(value []byte, typ jsonparser.ValueType, _ int, err error) {
			if err != nil {
				itemErr = err
				return
			}
			if typ != jsonparser.Object {
				return
			}
			if note, ok := decodeNoteObject(value); ok {
				notes = append(notes, note)
			}
		})
		if err == nil {
			err = itemErr
		}
		if err != nil {
			return empty, fmt.Errorf("%w: notes array: %v", ErrParse, err)
		}
	}

	return model.NotePage{
		Notes: notes,
		Cursor: model.PageCursor{
			Limit: intField(data, "limit", defaultLimit),
			Start: intField(data, "start", defaultStart),
			Total: intField(data, "total", defaultTotal),
			Size:  intField(data, "size", defaultSize),
		},
	}, nil
}

// DecodeNote reads a single note object. It fails with ErrParse when data is not an
// object or has no string "_id".
func DecodeNote(data []byte) (model.Note, error) {
	if !isObject(data) {
		return model.Note{}, fmt.Errorf("%w: note data is not an object", ErrParse)
	}
	note, ok := decodeNoteObject(data)
	if !ok {
		return model.Note{}, fmt.Errorf("%w: note has no id", ErrParse)
	}
	return note, nil
}

func decodeNoteObject(obj []byte) (model.Note, bool) {
	id, ok := stringField(obj, "_id")
	if !ok || id == "" {
		return model.Note{}, false
	}

	title, _ := stringField(obj, "title")
	description, _ := stringField(obj, "description")

	return model.Note{
		ID:          id,
		Title:       title,
		Description: description,
		ImageID:     optStringField(obj, "imageId"),
		ProfileID:   optStringField(obj, "medicalProfileId"),
		CreatedAt:   int64Field(obj, "createdAt", 0),
		UpdatedAt:   int64Field(obj, "updatedAt", 0),
		ImageURL:    optStringField(obj, "imageUrl"),
	}, true
}

func isObject(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	_, typ, _, err := jsonparser.Get(data)
	return err == nil && typ == jsonparser.Object
}

// arrayField returns the first of keys holding an array.
func arrayField(obj []byte, keys ...string) ([]byte, bool) {
	for _, key := range keys {
		value, typ, _, err := jsonparser.Get(obj, key)
		if err == nil && typ == jsonparser.Array {
			return value, true
		}
	}
	return nil, false
}

func stringField(obj []byte, key string) (string, bool) {
	value, typ, _, err := jsonparser.Get(obj, key)
	if err != nil || typ != jsonparser.String {
		return "", false
	}
	s, err := jsonparser.ParseString(value)
	if err != nil {
		return "", false
	}
	return s, true
}

func optStringField(obj []byte, key string) *string {
	s, ok := stringField(obj, key)
	if !ok {
		return nil
	}
	return &s
}

func int64Field(obj []byte, key string, fallback int64) int64 {
	value, typ, _, err := jsonparser.Get(obj, key)
	if err != nil || typ != jsonparser.Number {
		return fallback
	}
	if n, err := strconv.ParseInt(string(value), 10, 64); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(string(value), 64)
	if err != nil {
		return fallback
	}
	return int64(f)
}

func intField(obj []byte, key string, fallback int) int {
	return int(int64Field(obj, key, int64(fallback)))
}
