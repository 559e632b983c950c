package chapters

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/rodokubooks/rodoku/pkg/errcodes"
	"github.com/rodokubooks/rodoku/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveChapterOptions struct {
	ID *int
}

type ListChaptersOptions struct {
	AudiobookID  int
	Page         int
	ItemsPerPage int
}

type UpdateChapterOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// NextChapterNumber returns the next available chapter number for an
// audiobook: max(chapter_number)+1, or 1 when the audiobook has no chapters.
func (svc *Service) NextChapterNumber(ctx context.Context, audiobookID int) (int, error) {
	var maxNumber sql.NullInt64
	err := svc.db.NewSelect().
		Model((*models.Chapter)(nil)).
		ColumnExpr("MAX(ch.chapter_number)").
		Where("ch.audiobook_id = ?", audiobookID).
		Scan(ctx, &maxNumber)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if !maxNumber.Valid {
		return 1, nil
	}
	return int(maxNumber.Int64) + 1, nil
}

func (svc *Service) CreateChapter(ctx context.Context, chapter *models.Chapter) error {
	now := time.Now()
	if chapter.CreatedAt.IsZero() {
		chapter.CreatedAt = now
	}
	chapter.UpdatedAt = chapter.CreatedAt

	if chapter.ChapterNumber == 0 {
		number, err := svc.NextChapterNumber(ctx, chapter.AudiobookID)
		if err != nil {
			return err
		}
		chapter.ChapterNumber = number
	}

	_, err := svc.db.
		NewInsert().
		Model(chapter).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveChapter(ctx context.Context, opts RetrieveChapterOptions) (*models.Chapter, error) {
	chapter := &models.Chapter{}

	q := svc.db.
		NewSelect().
		Model(chapter)

	if opts.ID != nil {
		q = q.Where("ch.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Chapter")
		}
		return nil, errors.WithStack(err)
	}

	return chapter, nil
}

// ListChaptersPage returns one page of an audiobook's chapters sorted by
// chapter number ascending (id breaks ties between duplicate numbers), along
// with the total chapter count. Page is 1-based; a page past the end returns
// an empty list.
func (svc *Service) ListChaptersPage(ctx context.Context, opts ListChaptersOptions) ([]*models.Chapter, int, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}

	chapters := make([]*models.Chapter, 0)
	total, err := svc.db.
		NewSelect().
		Model(&chapters).
		Where("ch.audiobook_id = ?", opts.AudiobookID).
		Order("ch.chapter_number ASC", "ch.id ASC").
		Limit(opts.ItemsPerPage).
		Offset((page - 1) * opts.ItemsPerPage).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return chapters, total, nil
}

func (svc *Service) UpdateChapter(ctx context.Context, chapter *models.Chapter, opts UpdateChapterOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	chapter.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	res, err := svc.db.
		NewUpdate().
		Model(chapter).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Chapter")
	}
	return nil
}

func (svc *Service) DeleteChapter(ctx context.Context, chapterID int) error {
	res, err := svc.db.NewDelete().
		Model((*models.Chapter)(nil)).
		Where("id = ?", chapterID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errcodes.NotFound("Chapter")
	}
	return nil
}
