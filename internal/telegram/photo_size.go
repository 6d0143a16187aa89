package telegram

import (
	"context"
	"encoding/json"
	"time"
)

// PhotoSize is one size of a photo or of a file/sticker thumbnail.
type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     *int64 `json:"file_size,omitempty"`

	bot FileGetter
}

type photoSizeWire struct {
	FileID       flexString `json:"file_id"`
	FileUniqueID flexString `json:"file_unique_id"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	FileSize     *int64     `json:"file_size"`
}

// DecodePhotoSize decodes a PhotoSize bound to bot. Absent, null or empty input yields nil, nil.
func DecodePhotoSize(data json.RawMessage, bot FileGetter) (*PhotoSize, error) {
	if isEmpty(data) {
		return nil, nil
	}
	var p PhotoSize
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p.Bind(bot), nil
}

func (p *PhotoSize) UnmarshalJSON(data []byte) error {
	var w photoSizeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	fileID, err := required("photo_size", "file_id", w.FileID)
	if err != nil {
		return err
	}
	uniqueID, err := required("photo_size", "file_unique_id", w.FileUniqueID)
	if err != nil {
		return err
	}
	*p = PhotoSize{
		FileID:       fileID,
		FileUniqueID: uniqueID,
		Width:        w.Width,
		Height:       w.Height,
		FileSize:     w.FileSize,
	}
	return nil
}

// Bind attaches the client used by GetFile.
func (p *PhotoSize) Bind(bot FileGetter) *PhotoSize {
	p.bot = bot
	return p
}

// IDKey is the identity of the photo size: its file_id.
func (p *PhotoSize) IDKey() string { return p.FileID }

// Equal compares photo sizes by file_id only.
func (p *PhotoSize) Equal(other *PhotoSize) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.FileID == other.FileID
}

// GetFile asks the bound client for the downloadable File behind this photo size.
func (p *PhotoSize) GetFile(ctx context.Context, timeout time.Duration, opts ...RequestOption) (*File, error) {
	if p.bot == nil {
		return nil, ErrNoBot
	}
	return p.bot.GetFile(ctx, p.FileID, timeout, opts...)
}
