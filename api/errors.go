package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const GenericFailureMessage = "Something went wrong. Please try again."

// FieldError is one entry of a per-field validation response, in the order
// the server sent it.
type FieldError struct {
	Field    string
	Messages []string
}

// Error is a non-2xx response from the booking API.
type Error struct {
	StatusCode int
	Status     string
	Detail     string
	Fields     []FieldError
	Body       string
}

func (e *Error) Error() string {
	text := e.Detail
	if text == "" {
		text = e.Body
	}
	if text == "" {
		return fmt.Sprintf("request failed: %s", e.Status)
	}
	return fmt.Sprintf("request failed: %s: %s", e.Status, text)
}

// Message is the text shown to the user: the detail, else the first field
// message, else a generic failure message.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	for _, field := range e.Fields {
		if len(field.Messages) > 0 && field.Messages[0] != "" {
			return field.Messages[0]
		}
	}
	return GenericFailureMessage
}

func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// UserMessage converts any failure from this package into a message for the
// user. Transport failures carry no structured detail and get the fallback.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized {
			return "Not authenticated. Please log in again."
		}
		msg := apiErr.Message()
		if msg == GenericFailureMessage && fallback != "" {
			return fallback
		}
		return msg
	}
	if fallback != "" {
		return fallback
	}
	return GenericFailureMessage
}

func newError(resp *http.Response, body []byte) *Error {
	apiErr := &Error{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(body)),
	}
	if apiErr.Status == "" {
		apiErr.Status = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	apiErr.Detail, apiErr.Fields = parseErrorBody(body)
	return apiErr
}

// parseErrorBody understands {"detail": "..."} and {"field": ["msg", ...]}
// bodies. Keys are walked with a token decoder so field order is kept.
func parseErrorBody(body []byte) (string, []FieldError) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if _, err := dec.Token(); err != nil {
		return "", nil
	}

	var detail string
	var fields []FieldError
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return detail, fields
		}
		key, ok := tok.(string)
		if !ok {
			return detail, fields
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return detail, fields
		}
		messages := rawMessages(raw)
		if key == "detail" {
			if len(messages) > 0 {
				detail = messages[0]
			}
			continue
		}
		if len(messages) > 0 {
			fields = append(fields, FieldError{Field: key, Messages: messages})
		}
	}
	return detail, fields
}

func rawMessages(raw json.RawMessage) []string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		for _, value := range nested {
			if messages := rawMessages(value); len(messages) > 0 {
				return messages
			}
		}
	}
	return nil
}
