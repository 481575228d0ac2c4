package processed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/darshanbajgain/darshan-blog-temp/pkg/interfaces"
)

var _ interfaces.ProcessedStore = (*BunRepository)(nil)

var errNoDatabase = errors.New("processed: bun repository requires a database")

// BunRepository persists processed markers so announcements survive restarts.
type BunRepository struct {
	db *bun.DB
}

// NewBunRepository constructs a Bun-backed repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

// Migrate creates the markers table when it does not exist.
func (r *BunRepository) Migrate(ctx context.Context) error {
	if r.db == nil {
		return errNoDatabase
	}
	_, err := r.db.NewCreateTable().Model((*processedFileModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Has reports whether filename was marked.
func (r *BunRepository) Has(ctx context.Context, filename string) (bool, error) {
	if r.db == nil {
		return false, errNoDatabase
	}
	return r.db.NewSelect().Model((*processedFileModel)(nil)).Where("filename = ?", filename).Exists(ctx)
}

// Mark records filename as processed, replacing an earlier timestamp.
func (r *BunRepository) Mark(ctx context.Context, filename string, at time.Time) error {
	if r.db == nil {
		return errNoDatabase
	}
	if strings.TrimSpace(filename) == "" {
		return ErrEmptyFilename
	}
	model := &processedFileModel{Filename: filename, ProcessedAt: at.UTC()}
	_, err := r.db.NewInsert().
		Model(model).
		On("CONFLICT (filename) DO UPDATE").
		Set("processed_at = EXCLUDED.processed_at").
		Exec(ctx)
	return err
}

// Forget removes the marker for filename. Missing markers are ignored.
func (r *BunRepository) Forget(ctx context.Context, filename string) error {
	if r.db == nil {
		return errNoDatabase
	}
	_, err := r.db.NewDelete().Model((*processedFileModel)(nil)).Where("filename = ?", filename).Exec(ctx)
	return err
}

// List returns every marker ordered by filename.
func (r *BunRepository) List(ctx context.Context) ([]interfaces.ProcessedFile, error) {
	if r.db == nil {
		return nil, errNoDatabase
	}
	var models []processedFileModel
	if err := r.db.NewSelect().Model(&models).Order("filename ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]interfaces.ProcessedFile, 0, len(models))
	for _, model := range models {
		out = append(out, interfaces.ProcessedFile{Filename: model.Filename, ProcessedAt: model.ProcessedAt.UTC()})
	}
	return out, nil
}

type processedFileModel struct {
	bun.BaseModel `bun:"table:processed_posts"`

	Filename    string    `bun:"filename,pk"`
	ProcessedAt time.Time `bun:"processed_at,notnull"`
}
