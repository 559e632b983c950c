package audiobooks

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/rodokubooks/rodoku/pkg/errcodes"
	"github.com/rodokubooks/rodoku/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveAudiobookOptions struct {
	ID *int

	IncludeRelations bool
}

type ListAudiobooksOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type UpdateAudiobookOptions struct {
	Columns []string

	// When non-nil, the corresponding join rows are replaced wholesale.
	GenreIDs  *[]int
	TagIDs    *[]int
	AuthorIDs *[]int
}

type CreateAudiobookOptions struct {
	GenreIDs  []int
	TagIDs    []int
	AuthorIDs []int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateAudiobook(ctx context.Context, audiobook *models.Audiobook, opts CreateAudiobookOptions) error {
	now := time.Now()
	if audiobook.CreatedAt.IsZero() {
		audiobook.CreatedAt = now
	}
	audiobook.UpdatedAt = audiobook.CreatedAt

	return svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(audiobook).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if err := replaceGenres(ctx, tx, audiobook.ID, opts.GenreIDs); err != nil {
			return err
		}
		if err := replaceTags(ctx, tx, audiobook.ID, opts.TagIDs); err != nil {
			return err
		}
		return replaceAuthors(ctx, tx, audiobook.ID, opts.AuthorIDs)
	})
}

func (svc *Service) RetrieveAudiobook(ctx context.Context, opts RetrieveAudiobookOptions) (*models.Audiobook, error) {
	audiobook := &models.Audiobook{}

	q := svc.db.
		NewSelect().
		Model(audiobook).
		ColumnExpr("ab.*").
		ColumnExpr("(SELECT COUNT(*) FROM chapters ch WHERE ch.audiobook_id = ab.id) AS chapter_count")

	if opts.ID != nil {
		q = q.Where("ab.id = ?", *opts.ID)
	}
	if opts.IncludeRelations {
		q = q.
			Relation("Genres.Genre").
			Relation("Tags.Tag").
			Relation("Authors.Author")
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Audiobook")
		}
		return nil, errors.WithStack(err)
	}

	return audiobook, nil
}

func (svc *Service) ListAudiobooks(ctx context.Context, opts ListAudiobooksOptions) ([]*models.Audiobook, error) {
	audiobooks, _, err := svc.listAudiobooksWithTotal(ctx, opts)
	return audiobooks, errors.WithStack(err)
}

func (svc *Service) ListAudiobooksWithTotal(ctx context.Context, opts ListAudiobooksOptions) ([]*models.Audiobook, int, error) {
	opts.includeTotal = true
	return svc.listAudiobooksWithTotal(ctx, opts)
}

func (svc *Service) listAudiobooksWithTotal(ctx context.Context, opts ListAudiobooksOptions) ([]*models.Audiobook, int, error) {
	var audiobooks []*models.Audiobook
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&audiobooks).
		ColumnExpr("ab.*").
		ColumnExpr("(SELECT COUNT(*) FROM chapters ch WHERE ch.audiobook_id = ab.id) AS chapter_count").
		Order("ab.title ASC")

	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("ab.title LIKE ? OR ab.narrator LIKE ?", "%"+*opts.Search+"%", "%"+*opts.Search+"%")
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return audiobooks, total, nil
}

func (svc *Service) UpdateAudiobook(ctx context.Context, audiobook *models.Audiobook, opts UpdateAudiobookOptions) error {
	return svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(opts.Columns) > 0 {
			now := time.Now()
			audiobook.UpdatedAt = now
			columns := append(opts.Columns, "updated_at")

			_, err := tx.
				NewUpdate().
				Model(audiobook).
				Column(columns...).
				WherePK().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		if opts.GenreIDs != nil {
			if err := deleteJoinRows(ctx, tx, (*models.AudiobookGenre)(nil), audiobook.ID); err != nil {
				return err
			}
			if err := replaceGenres(ctx, tx, audiobook.ID, *opts.GenreIDs); err != nil {
				return err
			}
		}
		if opts.TagIDs != nil {
			if err := deleteJoinRows(ctx, tx, (*models.AudiobookTag)(nil), audiobook.ID); err != nil {
				return err
			}
			if err := replaceTags(ctx, tx, audiobook.ID, *opts.TagIDs); err != nil {
				return err
			}
		}
		if opts.AuthorIDs != nil {
			if err := deleteJoinRows(ctx, tx, (*models.AudiobookAuthor)(nil), audiobook.ID); err != nil {
				return err
			}
			if err := replaceAuthors(ctx, tx, audiobook.ID, *opts.AuthorIDs); err != nil {
				return err
			}
		}

		return nil
	})
}

// DeleteAudiobook deletes an audiobook along with its chapters and
// genre/tag/author associations.
func (svc *Service) DeleteAudiobook(ctx context.Context, audiobookID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Cascades should handle these, but be explicit.
		_, err := tx.NewDelete().
			Model((*models.Chapter)(nil)).
			Where("audiobook_id = ?", audiobookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if err := deleteJoinRows(ctx, tx, (*models.AudiobookGenre)(nil), audiobookID); err != nil {
			return err
		}
		if err := deleteJoinRows(ctx, tx, (*models.AudiobookTag)(nil), audiobookID); err != nil {
			return err
		}
		if err := deleteJoinRows(ctx, tx, (*models.AudiobookAuthor)(nil), audiobookID); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*models.Audiobook)(nil)).
			Where("id = ?", audiobookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return errcodes.NotFound("Audiobook")
		}
		return nil
	})
}

func deleteJoinRows(ctx context.Context, tx bun.Tx, model any, audiobookID int) error {
	_, err := tx.NewDelete().
		Model(model).
		Where("audiobook_id = ?", audiobookID).
		Exec(ctx)
	return errors.WithStack(err)
}

func replaceGenres(ctx context.Context, tx bun.Tx, audiobookID int, genreIDs []int) error {
	for _, genreID := range genreIDs {
		join := &models.AudiobookGenre{AudiobookID: audiobookID, GenreID: genreID}
		if _, err := tx.NewInsert().Model(join).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func replaceTags(ctx context.Context, tx bun.Tx, audiobookID int, tagIDs []int) error {
	for _, tagID := range tagIDs {
		join := &models.AudiobookTag{AudiobookID: audiobookID, TagID: tagID}
		if _, err := tx.NewInsert().Model(join).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func replaceAuthors(ctx context.Context, tx bun.Tx, audiobookID int, authorIDs []int) error {
	for _, authorID := range authorIDs {
		join := &models.AudiobookAuthor{AudiobookID: audiobookID, AuthorID: authorID}
		if _, err := tx.NewInsert().Model(join).Exec(ctx); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
