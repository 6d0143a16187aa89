package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Document is a general file sent in a message (as opposed to photos, voice
// messages and audio files).
//
// Two documents are the same entity when their FileID matches, whatever their
// other fields say. FileUniqueID is stable across bots but is deliberately not
// part of identity.
type Document struct {
	FileID       string     `json:"file_id"`
	FileUniqueID string     `json:"file_unique_id"`
	Thumb        *PhotoSize `json:"thumb,omitempty"`
	FileName     *string    `json:"file_name,omitempty"`
	MimeType     *string    `json:"mime_type,omitempty"`
	FileSize     *int64     `json:"file_size,omitempty"`

	bot FileGetter
}

type documentWire struct {
	FileID       flexString      `json:"file_id"`
	FileUniqueID flexString      `json:"file_unique_id"`
	Thumb        json.RawMessage `json:"thumb"`
	FileName     *string         `json:"file_name"`
	MimeType     *string         `json:"mime_type"`
	FileSize     *int64          `json:"file_size"`
}

// DecodeDocument decodes a Document bound to bot. Absent, null or empty input
// yields nil, nil. Unknown fields are ignored.
func DecodeDocument(data json.RawMessage, bot FileGetter) (*Document, error) {
	if isEmpty(data) {
		return nil, nil
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d.Bind(bot), nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var w documentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	fileID, err := required("document", "file_id", w.FileID)
	if err != nil {
		return err
	}
	uniqueID, err := required("document", "file_unique_id", w.FileUniqueID)
	if err != nil {
		return err
	}
	thumb, err := DecodePhotoSize(w.Thumb, nil)
	if err != nil {
		return fmt.Errorf("document.thumb: %w", err)
	}
	*d = Document{
		FileID:       fileID,
		FileUniqueID: uniqueID,
		Thumb:        thumb,
		FileName:     w.FileName,
		MimeType:     w.MimeType,
		FileSize:     w.FileSize,
	}
	return nil
}

// Bind attaches the client used by GetFile to the document and its thumbnail.
// The document does not own bot.
func (d *Document) Bind(bot FileGetter) *Document {
	d.bot = bot
	if d.Thumb != nil {
		d.Thumb.Bind(bot)
	}
	return d
}

// IDKey is the identity of the document: its file_id.
func (d *Document) IDKey() string { return d.FileID }

// Equal compares documents by file_id only.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.FileID == other.FileID
}

// GetFile is a shortcut for bot.GetFile(ctx, d.FileID, timeout, opts...).
// The client's result and error are returned as is.
func (d *Document) GetFile(ctx context.Context, timeout time.Duration, opts ...RequestOption) (*File, error) {
	if d.bot == nil {
		return nil, ErrNoBot
	}
	return d.bot.GetFile(ctx, d.FileID, timeout, opts...)
}
