package tags

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rodokubooks/rodoku/pkg/errcodes"
	"github.com/rodokubooks/rodoku/pkg/models"
	"github.com/uptrace/bun"
)

type RetrieveTagOptions struct {
	ID   *int
	Name *string
}

type ListTagsOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type UpdateTagOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateTag(ctx context.Context, tag *models.Tag) error {
	now := time.Now()
	if tag.CreatedAt.IsZero() {
		tag.CreatedAt = now
	}
	tag.UpdatedAt = tag.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(tag).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveTag(ctx context.Context, opts RetrieveTagOptions) (*models.Tag, error) {
	tag := &models.Tag{}

	q := svc.db.
		NewSelect().
		Model(tag)

	if opts.ID != nil {
		q = q.Where("t.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		// Case-insensitive match
		q = q.Where("LOWER(t.name) = LOWER(?)", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Tag")
		}
		return nil, errors.WithStack(err)
	}

	return tag, nil
}

// FindOrCreateTag finds an existing tag or creates a new one
// (case-insensitive match).
func (svc *Service) FindOrCreateTag(ctx context.Context, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("tag name cannot be empty")
	}

	tag, err := svc.RetrieveTag(ctx, RetrieveTagOptions{Name: &name})
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, errcodes.NotFound("Tag")) {
		return nil, err
	}

	tag = &models.Tag{Name: name}
	err = svc.CreateTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (svc *Service) ListTags(ctx context.Context, opts ListTagsOptions) ([]*models.Tag, error) {
	tags, _, err := svc.listTagsWithTotal(ctx, opts)
	return tags, errors.WithStack(err)
}

func (svc *Service) ListTagsWithTotal(ctx context.Context, opts ListTagsOptions) ([]*models.Tag, int, error) {
	opts.includeTotal = true
	return svc.listTagsWithTotal(ctx, opts)
}

func (svc *Service) listTagsWithTotal(ctx context.Context, opts ListTagsOptions) ([]*models.Tag, int, error) {
	var tags []*models.Tag
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&tags).
		Order("t.name ASC")

	if opts.Search != nil && *opts.Search != "" {
		q = q.Where("t.name LIKE ?", "%"+*opts.Search+"%")
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

	return tags, total, nil
}

func (svc *Service) UpdateTag(ctx context.Context, tag *models.Tag, opts UpdateTagOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	now := time.Now()
	tag.UpdatedAt = now
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(tag).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Tag")
		}
		return errors.WithStack(err)
	}
	return nil
}

// DeleteTag deletes a tag and all audiobook associations.
func (svc *Service) DeleteTag(ctx context.Context, tagID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.AudiobookTag)(nil)).
			Where("tag_id = ?", tagID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.Tag)(nil)).
			Where("id = ?", tagID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

// GetAudiobookCount returns the count of audiobooks with this tag.
func (svc *Service) GetAudiobookCount(ctx context.Context, tagID int) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.AudiobookTag)(nil)).
		Where("tag_id = ?", tagID).
		Count(ctx)
	return count, errors.WithStack(err)
}

// GetAudiobooks returns all audiobooks with this tag.
func (svc *Service) GetAudiobooks(ctx context.Context, tagID int) ([]*models.Audiobook, error) {
	var audiobooks []*models.Audiobook

	err := svc.db.NewSelect().
		Model(&audiobooks).
		Join("INNER JOIN audiobook_tags abt ON abt.audiobook_id = ab.id").
		Where("abt.tag_id = ?", tagID).
		Order("ab.title ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return audiobooks, nil
}

// MergeTags merges sourceTag into targetTag (moves all associations,
// deletes source).
func (svc *Service) MergeTags(ctx context.Context, targetID, sourceID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Move source associations that aren't already on the target to
		// avoid unique constraint violations.
		_, err := tx.NewRaw(`
			UPDATE audiobook_tags
			SET tag_id = ?
			WHERE tag_id = ?
			AND audiobook_id NOT IN (SELECT audiobook_id FROM audiobook_tags WHERE tag_id = ?)
		`, targetID, sourceID, targetID).Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		// Delete remaining source associations (duplicates)
		_, err = tx.NewDelete().
			Model((*models.AudiobookTag)(nil)).
			Where("tag_id = ?", sourceID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		// Delete the source tag
		_, err = tx.NewDelete().
			Model((*models.Tag)(nil)).
			Where("id = ?", sourceID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}
