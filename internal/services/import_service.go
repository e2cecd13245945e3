package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aceiro/internal/amqp"
	"aceiro/internal/core"
	"aceiro/internal/storage"
)

// SnapshotWriter stores validated tables.
type SnapshotWriter interface {
	ImportTables(ctx context.Context, info storage.ImportInfo, tables []core.RawTable) error
}

// ImportPublisher announces a finished import.
type ImportPublisher interface {
	PublishDatasetImported(ctx context.Context, msg *amqp.DatasetImportedMessage) error
}

// ImportResult summarizes a finished import.
type ImportResult struct {
	ImportID  string
	Rows      map[string]int
	Published bool
}

// ImportService copies the tables of a source into the SQLite snapshot.
type ImportService struct {
	loader    *DatasetLoader
	snapshot  SnapshotWriter
	publisher ImportPublisher
	source    string
}

// NewImportService wires an import. publisher may be nil.
func NewImportService(loader *DatasetLoader, snapshot SnapshotWriter, publisher ImportPublisher, source string) *ImportService {
	return &ImportService{
		loader:    loader,
		snapshot:  snapshot,
		publisher: publisher,
		source:    source,
	}
}

// Import validates the source with the same rules as the dashboard, so a
// snapshot never holds data the dashboard would reject, then replaces the
// snapshot. A failed notification does not fail the import.
func (s *ImportService) Import(ctx context.Context) (ImportResult, error) {
	tables, err := s.loader.ReadAll(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	if _, err := Build(tables, s.loader.location); err != nil {
		return ImportResult{}, err
	}

	info := storage.ImportInfo{ID: uuid.NewString(), Source: s.source, ImportedAt: time.Now().UTC()}
	if err := s.snapshot.ImportTables(ctx, info, tables); err != nil {
		return ImportResult{}, fmt.Errorf("write snapshot: %w", err)
	}

	rows := make(map[string]int, len(tables))
	for _, t := range tables {
		rows[t.Entity.String()] = len(t.Rows)
	}
	result := ImportResult{ImportID: info.ID, Rows: rows}

	if s.publisher == nil {
		s.loader.logger.InfoContext(ctx, "AMQP not configured, skipping import notification", "import_id", info.ID)
		return result, nil
	}
	msg := amqp.NewDatasetImportedMessage(info.ID, s.source, rows)
	if err := s.publisher.PublishDatasetImported(ctx, msg); err != nil {
		s.loader.logger.ErrorContext(ctx, "Failed to publish import notification",
			"import_id", info.ID, "error", err)
		return result, nil
	}
	result.Published = true
	return result, nil
}
