package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tgdocs/internal/events"
	"tgdocs/internal/model"
	"tgdocs/internal/repository"
	"tgdocs/internal/storage"
	"tgdocs/internal/telegram"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("document not found")
	ErrNoDocument = errors.New("no document to archive")
)

const defaultContentType = "application/octet-stream"

var documentsArchivedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "tgdocs_documents_archived_total",
	Help: "Total number of Telegram documents written to the archive.",
})

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// ArchiveService defines the use cases for archived Telegram documents.
type ArchiveService interface {
	// Archive fetches the document through its bound bot, stores the content and records it.
	// A file_unique_id that is already archived returns the existing record.
	Archive(ctx context.Context, doc *telegram.Document, chatID int64) (*model.Document, error)

	// List returns documents using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document by its ID.
	Get(ctx context.Context, id string) (*model.Document, error)

	// Open returns the stored content of a document. The caller must close the reader.
	Open(ctx context.Context, id string) (io.ReadCloser, *model.Document, error)

	// DownloadURL returns a time-limited URL for the stored content.
	DownloadURL(ctx context.Context, id string) (string, error)

	// Delete removes a document by ID from both storage and repository.
	Delete(ctx context.Context, id string) error
}

// Options tunes an ArchiveService. Zero values pick defaults.
type Options struct {
	// FetchTimeout is passed to getFile; zero uses the bot's default.
	FetchTimeout  time.Duration
	PresignExpiry time.Duration
	Logger        *slog.Logger
}

type archiveService struct {
	store         storage.Storage
	repo          repository.DocumentRepository
	events        events.Publisher
	fetchTimeout  time.Duration
	presignExpiry time.Duration
	logger        *slog.Logger
	tracer        trace.Tracer
}

// NewArchiveService constructs a new ArchiveService.
func NewArchiveService(store storage.Storage, repo repository.DocumentRepository, pub events.Publisher, opts Options) ArchiveService {
	if pub == nil {
		pub = events.Nop{}
	}
	if opts.PresignExpiry <= 0 {
		opts.PresignExpiry = 15 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &archiveService{
		store:         store,
		repo:          repo,
		events:        pub,
		fetchTimeout:  opts.FetchTimeout,
		presignExpiry: opts.PresignExpiry,
		logger:        opts.Logger.With(slog.String("component", "archive")),
		tracer:        otel.Tracer("tgdocs/internal/service"),
	}
}

func (s *archiveService) Archive(ctx context.Context, doc *telegram.Document, chatID int64) (out *model.Document, err error) {
	if doc == nil {
		return nil, ErrNoDocument
	}

	ctx, span := s.tracer.Start(ctx, "ArchiveService.Archive", trace.WithAttributes(
		attribute.String("telegram.file_unique_id", doc.FileUniqueID),
		attribute.Int64("telegram.chat_id", chatID),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	existing, err := s.repo.FindByFileUniqueID(ctx, doc.FileUniqueID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lookup archive: %w", err)
	}

	file, err := doc.GetFile(ctx, s.fetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	body, err := file.Download(ctx)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer body.Close()

	name := deref(doc.FileName)
	contentType := deref(doc.MimeType)
	if contentType == "" {
		contentType = defaultContentType
	}
	size := int64(-1)
	switch {
	case file.FileSize != nil:
		size = *file.FileSize
	case doc.FileSize != nil:
		size = *doc.FileSize
	}

	key := storageKey(doc.FileUniqueID, name, deref(file.FilePath))
	objInfo, err := s.store.Put(ctx, key, body, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Filename:    name,
		Metadata: map[string]string{
			"telegram-file-id": doc.FileID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	rec := &model.Document{
		ID:           uuid.NewString(),
		FileID:       doc.FileID,
		FileUniqueID: doc.FileUniqueID,
		FileName:     name,
		MimeType:     contentType,
		Size:         objInfo.Size,
		StoragePath:  objInfo.Key,
		ChatID:       chatID,
		CreatedAt:    time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, rec)
	if errors.Is(err, repository.ErrDuplicate) {
		return s.resolveConflict(ctx, doc.FileUniqueID, key)
	}
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	documentsArchivedTotal.Inc()

	if pubErr := s.events.PublishDocumentArchived(ctx, stored); pubErr != nil {
		s.logger.Warn("publish archived event failed",
			slog.String("document_id", stored.ID),
			slog.String("error", pubErr.Error()),
		)
	}
	s.logger.Info("document archived",
		slog.String("document_id", stored.ID),
		slog.String("file_unique_id", stored.FileUniqueID),
		slog.Int64("size", stored.Size),
	)
	return stored, nil
}

// resolveConflict handles a concurrent archive of the same file_unique_id that
// recorded its row first. The winner's object is never deleted; ours is removed
// only when it lives under a different key.
func (s *archiveService) resolveConflict(ctx context.Context, fileUniqueID, key string) (*model.Document, error) {
	existing, err := s.repo.FindByFileUniqueID(ctx, fileUniqueID)
	if err != nil {
		return nil, fmt.Errorf("lookup archive after conflict: %w", err)
	}
	if existing.StoragePath != key {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.logger.Warn("remove duplicate object failed",
				slog.String("key", key),
				slog.String("error", delErr.Error()),
			)
		}
	}
	s.logger.Info("document archived concurrently",
		slog.String("document_id", existing.ID),
		slog.String("file_unique_id", fileUniqueID),
	)
	return existing, nil
}

// List returns paginated documents without exposing repository types.
func (s *archiveService) List(ctx context.Context, limit, offset int) (*DocumentListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a document by ID.
func (s *archiveService) Get(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *archiveService) Open(ctx context.Context, id string) (io.ReadCloser, *model.Document, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, doc.StoragePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	return rc, doc, nil
}

func (s *archiveService) DownloadURL(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, doc.StoragePath, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return u, nil
}

// Delete removes a document from storage, then deletes its record.
func (s *archiveService) Delete(ctx context.Context, id string) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	// Storage first; if this fails the row still points at the object.
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, id)
}

// storageKey builds documents/<file_unique_id><ext>. The extension comes from the
// sender's file name, else from the server-side file path.
func storageKey(fileUniqueID, fileName, filePath string) string {
	ext := path.Ext(fileName)
	if ext == "" {
		ext = path.Ext(filePath)
	}
	return "documents/" + fileUniqueID + strings.ToLower(ext)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
