package notification

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"
)

// ErrInvalidPayload is returned when a task context is malformed or incomplete.
var ErrInvalidPayload = errors.New("invalid notification payload")

var validate = validator.New()

// Payload is the task context published when a comment is created.
type Payload struct {
	CourseID            string `validate:"required"`
	SiteID              int64  `validate:"required,gt=0"`
	ThreadID            string `validate:"required"`
	ThreadAuthorID      int64  `validate:"required,gt=0"`
	ThreadCommentableID string `validate:"required"`

	// Optional fields used when present.
	CommentID   string
	CommentBody string

	// Fields holds every field of the context as published, for templates.
	Fields map[string]any
}

// ParsePayload decodes a task context. Ids may be JSON strings or numbers.
func ParsePayload(raw []byte) (*Payload, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidPayload)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: not a JSON object", ErrInvalidPayload)
	}

	siteID, err := intID(doc.Get("site_id"))
	if err != nil {
		return nil, fmt.Errorf("%w: site_id: %v", ErrInvalidPayload, err)
	}
	authorID, err := intID(doc.Get("thread_author_id"))
	if err != nil {
		return nil, fmt.Errorf("%w: thread_author_id: %v", ErrInvalidPayload, err)
	}

	fields, _ := doc.Value().(map[string]any)

	p := &Payload{
		CourseID:            doc.Get("course_id").String(),
		SiteID:              siteID,
		ThreadID:            stringID(doc.Get("thread_id")),
		ThreadAuthorID:      authorID,
		ThreadCommentableID: stringID(doc.Get("thread_commentable_id")),
		CommentID:           stringID(doc.Get("comment_id")),
		CommentBody:         doc.Get("comment_body").String(),
		Fields:              fields,
	}

	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, nil
}

// stringID reads an id published as a string or a number.
func stringID(r gjson.Result) string {
	switch r.Type {
	case gjson.String:
		return r.Str
	case gjson.Number:
		return r.Raw
	}
	return ""
}

// intID reads a numeric id published as a number or a numeric string.
// A missing id reads as zero and is left to validation.
func intID(r gjson.Result) (int64, error) {
	switch r.Type {
	case gjson.Null:
		return 0, nil
	case gjson.Number:
		return strconv.ParseInt(r.Raw, 10, 64)
	case gjson.String:
		if r.Str == "" {
			return 0, nil
		}
		return strconv.ParseInt(r.Str, 10, 64)
	}
	return 0, fmt.Errorf("unexpected %s", r.Type)
}
