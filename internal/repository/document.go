// Package repository contains data access abstractions for archived documents.
// Implementations live in subpackages (e.g., postgres).
package repository

import (
	"context"
	"errors"

	"tgdocs/internal/model"
)

// ErrDuplicate is returned by Create when a document with the same file_unique_id exists.
var ErrDuplicate = errors.New("document already exists")

// DocumentRepository defines data access for archived documents using SQL queries only.
// Lookups that find nothing return sql.ErrNoRows.
type DocumentRepository interface {
	// Create inserts a new document record and returns it as stored.
	// A file_unique_id that is already recorded fails with ErrDuplicate.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByFileUniqueID returns the document archived for a Telegram file_unique_id.
	FindByFileUniqueID(ctx context.Context, fileUniqueID string) (*model.Document, error)

	// List returns a paginated list of documents and total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
