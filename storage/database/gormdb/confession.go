package gormdb

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/confession"
)

type confessionRepository struct {
	db *gorm.DB
}

var _ confession.Repository = (*confessionRepository)(nil) // interface compliance check

func NewConfessionRepository(db *gorm.DB) *confessionRepository {
	return &confessionRepository{db: db}
}

func (repo confessionRepository) toModel(c confession.Confession) confessionModel {
	return confessionModel{
		ID:          c.ID,
		Content:     c.Content,
		AuthorID:    c.AuthorID,
		IsAnonymous: c.IsAnonymous,
		Category:    c.Category,
		Tags:        marshalTags(c.Tags),
		Likes:       c.Likes,
		IsModerated: c.IsModerated,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func (repo confessionRepository) fromModel(m confessionModel) confession.Confession {
	return confession.Confession{
		ID:          m.ID,
		Content:     m.Content,
		AuthorID:    m.AuthorID,
		Author:      toAuthor(m.Author),
		IsAnonymous: m.IsAnonymous,
		Category:    m.Category,
		Tags:        unmarshalTags(m.Tags),
		Likes:       m.Likes,
		IsModerated: m.IsModerated,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (repo confessionRepository) CreateConfession(ctx context.Context, c confession.Confession) (confession.Confession, error) {
	c.ID = uuid.New().String()
	m := repo.toModel(c)
	if err := repo.db.WithContext(ctx).Create(&m).Error; err != nil {
		return confession.Confession{}, errors.Wrap(err, "inserting confession")
	}
	return repo.fromModel(m), nil
}

func (repo confessionRepository) GetConfession(ctx context.Context, id string) (confession.Confession, error) {
	var m confessionModel
	err := repo.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return confession.Confession{}, confession.ErrNotFound
		}
		return confession.Confession{}, errors.Wrap(err, "finding confession")
	}
	return repo.fromModel(m), nil
}

func (repo confessionRepository) QueryConfessions(ctx context.Context, filter *confession.QueryFilter, ordering []core.DBOrdering) ([]confession.Confession, error) {
	q := repo.db.WithContext(ctx).Preload("Author")

	if filter != nil {
		if filter.Category != "" {
			q = q.Where("category = ?", filter.Category)
		}
		if filter.AuthorID != "" {
			q = q.Where("author_id = ?", filter.AuthorID)
		}
		if filter.SignedOnly {
			q = q.Where("is_anonymous = ?", false)
		}
		if filter.Search != "" {
			q = q.Where("LOWER(content) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
		}
	}
	q = applyOrdering(q, ordering, "created_at DESC")

	var rows []confessionModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying confessions")
	}
	if filter != nil && filter.Tag != "" {
		rows = lo.Filter(rows, func(m confessionModel, _ int) bool { return hasTag(m.Tags, filter.Tag) })
	}
	return lo.Map(rows, func(m confessionModel, _ int) confession.Confession { return repo.fromModel(m) }), nil
}

// UpdateConfession writes the editable columns only: likes move through their own statement.
func (repo confessionRepository) UpdateConfession(ctx context.Context, c confession.Confession) (confession.Confession, error) {
	m := repo.toModel(c)
	res := repo.db.WithContext(ctx).Model(&confessionModel{ID: c.ID}).Select("*").Omit("Author", "likes").Updates(&m)
	if res.Error != nil {
		return confession.Confession{}, errors.Wrap(res.Error, "updating confession")
	}
	if res.RowsAffected == 0 {
		return confession.Confession{}, confession.ErrNotFound
	}
	return repo.GetConfession(ctx, c.ID)
}

// DeleteConfession also drops the likes and reactions of the confession.
func (repo confessionRepository) DeleteConfession(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&confessionModel{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "deleting confession")
		}
		if deleted = res.RowsAffected > 0; !deleted {
			return nil
		}
		return deleteInteractions(tx, core.TargetConfession, id)
	})
	return deleted, err
}

func (repo confessionRepository) AddLike(ctx context.Context, id, userID string) (confession.Confession, error) {
	if err := setLike(ctx, repo.db, confessionModel{}.TableName(), core.TargetConfession, id, userID, true, confession.ErrNotFound); err != nil {
		return confession.Confession{}, err
	}
	return repo.GetConfession(ctx, id)
}

func (repo confessionRepository) RemoveLike(ctx context.Context, id, userID string) (confession.Confession, error) {
	if err := setLike(ctx, repo.db, confessionModel{}.TableName(), core.TargetConfession, id, userID, false, confession.ErrNotFound); err != nil {
		return confession.Confession{}, err
	}
	return repo.GetConfession(ctx, id)
}
