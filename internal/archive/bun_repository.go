package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewRecordRepository builds the generic bun repository for records; Key is
// the secondary identifier.
func NewRecordRepository(db *bun.DB) repository.Repository[*Record] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Record]{
		NewRecord: func() *Record { return &Record{} },
		GetID: func(rec *Record) uuid.UUID {
			return rec.ID
		},
		SetID: func(rec *Record, id uuid.UUID) {
			rec.ID = id
		},
		GetIdentifier: func() string {
			return "key"
		},
		GetIdentifierValue: func(rec *Record) string {
			return rec.Key
		},
	})
}

// BunRepository stores records through go-repository-bun, optionally behind
// a go-repository-cache read cache.
type BunRepository struct {
	repo repository.Repository[*Record]
}

// NewBunRepository returns an uncached repository.
func NewBunRepository(db *bun.DB) *BunRepository {
	return NewBunRepositoryWithCache(db, nil, nil)
}

// NewBunRepositoryWithCache wraps the repository with cacheService when both
// cacheService and serializer are set.
func NewBunRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunRepository {
	base := NewRecordRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunRepository{repo: base}
}

// CreateSchema creates the records table when missing.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*Record)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (r *BunRepository) Save(ctx context.Context, rec *Record) (*Record, error) {
	_, err := r.repo.GetByID(ctx, rec.ID.String())
	switch {
	case err == nil:
		updated, err := r.repo.Update(ctx, rec,
			repository.UpdateByID(rec.ID.String()),
			repository.UpdateColumns("key", "path", "format", "checksum", "output", "stopped", "rendered_at"),
		)
		if err != nil {
			return nil, fmt.Errorf("archive: update %s: %w", rec.Key, err)
		}
		return updated, nil
	case isNotFound(err):
		created, err := r.repo.Create(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("archive: create %s: %w", rec.Key, err)
		}
		return created, nil
	default:
		return nil, mapRepositoryError(err, rec.Key)
	}
}

func (r *BunRepository) Get(ctx context.Context, path, format string) (*Record, error) {
	key := RecordKey(path, format)
	rec, err := r.repo.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, key)
	}
	return rec, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return rec, nil
}

func (r *BunRepository) List(ctx context.Context) ([]*Record, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("key ASC")
	}))
	return records, err
}

func (r *BunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.repo.Delete(ctx, &Record{ID: id})
}

func isNotFound(err error) bool {
	var nf *NotFoundError
	return goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) ||
		errors.Is(err, sql.ErrNoRows) ||
		errors.As(err, &nf)
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("archive: %s: %w", key, err)
}
