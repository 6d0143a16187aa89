// Package telegram contains the Bot API objects tgdocs consumes and the bot
// client that owns the remote capabilities (getFile, file download).
//
// Objects are decoded from Bot API JSON with a null-tolerant contract: an absent,
// null or empty object decodes to a nil pointer and no error. Objects that can
// fetch remote data hold a non-owning reference to the client that decoded them.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"
)

var (
	// ErrNoBot is returned when a delegating method is called on an object with no bound client.
	ErrNoBot = errors.New("telegram: no bot bound to object")
	// ErrMissingField is returned when a required Bot API field is absent.
	ErrMissingField = errors.New("telegram: required field missing")
	// ErrNoFilePath is returned when downloading a File the server returned without file_path.
	ErrNoFilePath = errors.New("telegram: file has no file_path")
	// ErrEmptyResult is returned when the Bot API reports success but sends no result.
	ErrEmptyResult = errors.New("telegram: empty result")
)

// RequestOption adds a free-form parameter to a Bot API request.
type RequestOption func(params url.Values)

// WithParam forwards key=value verbatim to the Bot API method.
func WithParam(key, value string) RequestOption {
	return func(params url.Values) {
		params.Set(key, value)
	}
}

// FileGetter is the getFile capability of a bot client.
// A timeout of zero means the client's default.
type FileGetter interface {
	GetFile(ctx context.Context, fileID string, timeout time.Duration, opts ...RequestOption) (*File, error)
}

// Downloader streams the content behind a file_path returned by getFile.
// Callers must close the returned reader.
type Downloader interface {
	DownloadFile(ctx context.Context, filePath string) (io.ReadCloser, error)
}

// flexString accepts any JSON scalar and keeps its string form, so ids sent as
// numbers still decode ("file_id": 123 -> "123").
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*s = ""
	case string:
		*s = flexString(t)
	case json.Number:
		*s = flexString(t.String())
	case bool:
		*s = flexString(strconv.FormatBool(t))
	default:
		return fmt.Errorf("telegram: cannot use %s as a string value", data)
	}
	return nil
}

// isEmpty reports whether data is absent, null or {}.
func isEmpty(data []byte) bool {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return true
	}
	if data[0] != '{' {
		return false
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return false
	}
	return len(m) == 0
}

func required(kind, field string, value flexString) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%s.%s: %w", kind, field, ErrMissingField)
	}
	return string(value), nil
}
