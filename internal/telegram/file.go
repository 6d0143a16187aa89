package telegram

import (
	"context"
	"encoding/json"
	"io"
)

// File is a file ready to be downloaded, as returned by getFile.
// The link behind FilePath stays valid for at least one hour.
type File struct {
	FileID       string  `json:"file_id"`
	FileUniqueID string  `json:"file_unique_id"`
	FileSize     *int64  `json:"file_size,omitempty"`
	FilePath     *string `json:"file_path,omitempty"`

	dl Downloader
}

type fileWire struct {
	FileID       flexString `json:"file_id"`
	FileUniqueID flexString `json:"file_unique_id"`
	FileSize     *int64     `json:"file_size"`
	FilePath     *string    `json:"file_path"`
}

// DecodeFile decodes a File bound to dl. Absent, null or empty input yields nil, nil.
func DecodeFile(data json.RawMessage, dl Downloader) (*File, error) {
	if isEmpty(data) {
		return nil, nil
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Bind(dl), nil
}

func (f *File) UnmarshalJSON(data []byte) error {
	var w fileWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	fileID, err := required("file", "file_id", w.FileID)
	if err != nil {
		return err
	}
	uniqueID, err := required("file", "file_unique_id", w.FileUniqueID)
	if err != nil {
		return err
	}
	*f = File{
		FileID:       fileID,
		FileUniqueID: uniqueID,
		FileSize:     w.FileSize,
		FilePath:     w.FilePath,
	}
	return nil
}

// Bind attaches the downloader used by Download.
func (f *File) Bind(dl Downloader) *File {
	f.dl = dl
	return f
}

// Download streams the file content. The caller must close the reader.
func (f *File) Download(ctx context.Context) (io.ReadCloser, error) {
	if f.dl == nil {
		return nil, ErrNoBot
	}
	if f.FilePath == nil || *f.FilePath == "" {
		return nil, ErrNoFilePath
	}
	return f.dl.DownloadFile(ctx, *f.FilePath)
}
