package gormdb

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/article"
)

type articleRepository struct {
	db *gorm.DB
}

var _ article.Repository = (*articleRepository)(nil) // interface compliance check

func NewArticleRepository(db *gorm.DB) *articleRepository {
	return &articleRepository{db: db}
}

func (repo articleRepository) toModel(a article.Article) articleModel {
	return articleModel{
		ID:          a.ID,
		Title:       a.Title,
		Content:     a.Content,
		Excerpt:     a.Excerpt,
		Category:    a.Category,
		Tags:        marshalTags(a.Tags),
		Status:      a.Status,
		AuthorID:    a.AuthorID,
		Likes:       a.Likes,
		Views:       a.Views,
		IsFeatured:  a.IsFeatured,
		IsModerated: a.IsModerated,
		ModeratedBy: stringPtr(a.ModeratedBy),
		ModeratedAt: timePtr(a.ModeratedAt),
		ImageURL:    a.ImageURL,
		PublishedAt: timePtr(a.PublishedAt),
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
}

func (repo articleRepository) fromModel(m articleModel) article.Article {
	return article.Article{
		ID:          m.ID,
		Title:       m.Title,
		Content:     m.Content,
		Excerpt:     m.Excerpt,
		Category:    m.Category,
		Tags:        unmarshalTags(m.Tags),
		Status:      m.Status,
		AuthorID:    m.AuthorID,
		Author:      toAuthor(m.Author),
		Likes:       m.Likes,
		Views:       m.Views,
		IsFeatured:  m.IsFeatured,
		IsModerated: m.IsModerated,
		ModeratedBy: nullString(m.ModeratedBy),
		ModeratedAt: nullTime(m.ModeratedAt),
		ImageURL:    m.ImageURL,
		PublishedAt: nullTime(m.PublishedAt),
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (repo articleRepository) CreateArticle(ctx context.Context, a article.Article) (article.Article, error) {
	a.ID = uuid.New().String()
	m := repo.toModel(a)
	if err := repo.db.WithContext(ctx).Create(&m).Error; err != nil {
		return article.Article{}, errors.Wrap(err, "inserting article")
	}
	return repo.fromModel(m), nil
}

func (repo articleRepository) GetArticle(ctx context.Context, id string) (article.Article, error) {
	var m articleModel
	err := repo.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return article.Article{}, article.ErrNotFound
		}
		return article.Article{}, errors.Wrap(err, "finding article")
	}
	return repo.fromModel(m), nil
}

func (repo articleRepository) QueryArticles(ctx context.Context, filter *article.QueryFilter, ordering []core.DBOrdering) ([]article.Article, error) {
	q := repo.db.WithContext(ctx).Preload("Author")

	if filter != nil {
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.AuthorID != "" {
			q = q.Where("author_id = ?", filter.AuthorID)
		}
		if filter.Category != "" {
			q = q.Where("LOWER(category) = ?", strings.ToLower(filter.Category))
		}
		if filter.Search != "" {
			val := "%" + strings.ToLower(filter.Search) + "%"
			q = q.Where("LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(excerpt) LIKE ?", val, val, val)
		}
	}
	q = applyOrdering(q, ordering, "created_at DESC")

	var rows []articleModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying articles")
	}
	// tags are a JSON list: filter them here to stay portable across engines
	if filter != nil && filter.Tag != "" {
		rows = lo.Filter(rows, func(m articleModel, _ int) bool { return hasTag(m.Tags, filter.Tag) })
	}
	return lo.Map(rows, func(m articleModel, _ int) article.Article { return repo.fromModel(m) }), nil
}

// UpdateArticle writes the editable columns only: likes and views move through their own statements.
func (repo articleRepository) UpdateArticle(ctx context.Context, a article.Article) (article.Article, error) {
	m := repo.toModel(a)
	res := repo.db.WithContext(ctx).Model(&articleModel{ID: a.ID}).Select("*").Omit("Author", "likes", "views").Updates(&m)
	if res.Error != nil {
		return article.Article{}, errors.Wrap(res.Error, "updating article")
	}
	if res.RowsAffected == 0 {
		return article.Article{}, article.ErrNotFound
	}
	return repo.GetArticle(ctx, a.ID)
}

// DeleteArticle also drops the likes and reactions of the article.
func (repo articleRepository) DeleteArticle(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&articleModel{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "deleting article")
		}
		if deleted = res.RowsAffected > 0; !deleted {
			return nil
		}
		return deleteInteractions(tx, core.TargetArticle, id)
	})
	return deleted, err
}

func (repo articleRepository) IncrementViews(ctx context.Context, id string) error {
	res := repo.db.WithContext(ctx).Model(&articleModel{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return errors.Wrap(res.Error, "incrementing views")
	}
	if res.RowsAffected == 0 {
		return article.ErrNotFound
	}
	return nil
}

func (repo articleRepository) AddLike(ctx context.Context, id, userID string) (article.Article, error) {
	if err := setLike(ctx, repo.db, articleModel{}.TableName(), core.TargetArticle, id, userID, true, article.ErrNotFound); err != nil {
		return article.Article{}, err
	}
	return repo.GetArticle(ctx, id)
}

func (repo articleRepository) RemoveLike(ctx context.Context, id, userID string) (article.Article, error) {
	if err := setLike(ctx, repo.db, articleModel{}.TableName(), core.TargetArticle, id, userID, false, article.ErrNotFound); err != nil {
		return article.Article{}, err
	}
	return repo.GetArticle(ctx, id)
}
