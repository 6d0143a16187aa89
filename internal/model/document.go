package model

import "time"

// Document is an archived Telegram document.
// FileUniqueID is the archive key: it is stable across bots, unlike FileID.
type Document struct {
	ID           string    `json:"id"`
	FileID       string    `json:"file_id"`
	FileUniqueID string    `json:"file_unique_id"`
	FileName     string    `json:"file_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	StoragePath  string    `json:"storage_path"`
	ChatID       int64     `json:"chat_id"`
	CreatedAt    time.Time `json:"created_at"`
}
