// Package submission models the webhook payload posted by the forms provider.
package submission

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Envelope is the webhook body. Only Data.Fields drives processing; the event
// metadata is kept for logging and correlation.
type Envelope struct {
	EventID   string    `json:"eventId,omitempty"`
	EventType string    `json:"eventType,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	Data      Data      `json:"data"`
}

// Data is the form response carried by the envelope.
type Data struct {
	ResponseID string      `json:"responseId,omitempty"`
	FormID     string      `json:"formId,omitempty"`
	FormName   string      `json:"formName,omitempty"`
	Fields     []FormField `json:"fields"`
}

// FormField is one answered question.
type FormField struct {
	Key   string     `json:"key"`
	Label string     `json:"label,omitempty"`
	Type  string     `json:"type,omitempty"`
	Value FieldValue `json:"value"`
}

// FileRef points at an uploaded file hosted by the forms provider.
type FileRef struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	URL      string `json:"url"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// FieldValue is either text or a list of files.
type FieldValue struct {
	Text  string
	Files []FileRef
}

// Text builds a text value.
func Text(s string) FieldValue {
	return FieldValue{Text: s}
}

// Files builds a file-list value.
func Files(files ...FileRef) FieldValue {
	return FieldValue{Files: files}
}

// FirstFile returns the first file reference, if any.
func (v FieldValue) FirstFile() (FileRef, bool) {
	if len(v.Files) == 0 {
		return FileRef{}, false
	}
	return v.Files[0], true
}

// FirstURL returns the url of the first file or the empty string.
func (v FieldValue) FirstURL() string {
	f, _ := v.FirstFile()
	return f.URL
}

// UnmarshalJSON accepts the value shapes the forms provider emits: strings,
// numbers, booleans, null, arrays of file objects and arrays of scalars.
func (v *FieldValue) UnmarshalJSON(b []byte) error {
	*v = FieldValue{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	switch b[0] {
	case '"':
		return json.Unmarshal(b, &v.Text)
	case '[':
		return v.unmarshalList(b)
	case '{':
		var f FileRef
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("decode file value: %w", err)
		}
		if f.URL != "" {
			v.Files = []FileRef{f}
		}
		return nil
	default:
		// numbers and booleans keep their literal form
		v.Text = string(b)
		return nil
	}
}

func (v *FieldValue) unmarshalList(b []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("decode list value: %w", err)
	}

	var texts []string
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		switch item[0] {
		case '{':
			var f FileRef
			if err := json.Unmarshal(item, &f); err != nil {
				return fmt.Errorf("decode file in list: %w", err)
			}
			v.Files = append(v.Files, f)
		case '"':
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return err
			}
			texts = append(texts, s)
		default:
			if !bytes.Equal(item, []byte("null")) {
				texts = append(texts, string(item))
			}
		}
	}
	v.Text = strings.Join(texts, ",")
	return nil
}

// MarshalJSON writes files as a list and everything else as a string.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	if len(v.Files) > 0 {
		return json.Marshal(v.Files)
	}
	return json.Marshal(v.Text)
}

// String renders the value for logs and dry runs.
func (v FieldValue) String() string {
	if len(v.Files) == 0 {
		return v.Text
	}
	urls := make([]string, len(v.Files))
	for i, f := range v.Files {
		urls[i] = f.URL
	}
	return "[" + strings.Join(urls, " ") + "]"
}

// Decode reads an envelope from JSON.
func Decode(b []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	return &env, nil
}
