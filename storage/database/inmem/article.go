package inmemdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/article"
)

type articleRepository struct {
	db    *DB
	table *articleTable
}

var _ article.Repository = (*articleRepository)(nil) // interface compliance check

func NewArticleRepository(db *DB) *articleRepository {
	return &articleRepository{db: db, table: db.article}
}

// store keeps a copy of a: callers cannot alias the stored tags nor the joined author.
func (repo *articleRepository) store(a article.Article) {
	a.Tags = append([]string{}, a.Tags...)
	a.Author = nil
	a.Comments = nil
	repo.table.table[a.ID] = &a
}

func (repo *articleRepository) withAuthor(a article.Article) article.Article {
	a.Tags = append([]string{}, a.Tags...)
	a.Author = repo.db.author(a.AuthorID)
	return a
}

func (repo *articleRepository) CreateArticle(_ context.Context, a article.Article) (article.Article, error) {
	repo.table.Lock()
	defer repo.table.Unlock()

	a.ID = uuid.New().String()
	repo.store(a)
	return a, nil
}

func (repo *articleRepository) get(id string) (article.Article, bool) {
	repo.table.RLock()
	defer repo.table.RUnlock()
	a, ok := repo.table.table[id]
	if !ok {
		return article.Article{}, false
	}
	return *a, true
}

func (repo *articleRepository) GetArticle(_ context.Context, id string) (article.Article, error) {
	a, ok := repo.get(id)
	if !ok {
		return article.Article{}, article.ErrNotFound
	}
	return repo.withAuthor(a), nil
}

func (repo *articleRepository) QueryArticles(_ context.Context, filter *article.QueryFilter, ordering []core.DBOrdering) ([]article.Article, error) {
	repo.table.RLock()
	articles := make([]article.Article, 0, len(repo.table.table))
	for _, a := range repo.table.table {
		articles = append(articles, *a)
	}
	repo.table.RUnlock()

	if filter != nil {
		articles = lo.Filter(articles, func(a article.Article, _ int) bool {
			if filter.Status != "" && a.Status != filter.Status {
				return false
			}
			if filter.AuthorID != "" && a.AuthorID != filter.AuthorID {
				return false
			}
			if filter.Category != "" && compareStrings(a.Category, filter.Category) != 0 {
				return false
			}
			if filter.Tag != "" && !lo.Contains(a.Tags, filter.Tag) {
				return false
			}
			if filter.Search != "" && !containsFold(a.Title, filter.Search) &&
				!containsFold(a.Content, filter.Search) && !containsFold(a.Excerpt, filter.Search) {
				return false
			}
			return true
		})
	}

	sortByOrdering(articles, ordering, core.DBOrdering{Field: "created_at"}, func(a, b article.Article, field string) int {
		switch field {
		case "title":
			return compareStrings(a.Title, b.Title)
		case "category":
			return compareStrings(a.Category, b.Category)
		case "status":
			return compareStrings(a.Status, b.Status)
		case "likes":
			return compareInts(a.Likes, b.Likes)
		case "views":
			return compareInts(a.Views, b.Views)
		case "created_at":
			return compareTimes(a.CreatedAt, b.CreatedAt)
		case "updated_at":
			return compareTimes(a.UpdatedAt, b.UpdatedAt)
		case "published_at":
			return compareTimes(a.PublishedAt.Time, b.PublishedAt.Time)
		}
		return 0
	})
	return lo.Map(articles, func(a article.Article, _ int) article.Article { return repo.withAuthor(a) }), nil
}

// UpdateArticle keeps the stored likes and views: they move through their own calls.
func (repo *articleRepository) UpdateArticle(_ context.Context, a article.Article) (article.Article, error) {
	repo.table.Lock()
	defer repo.table.Unlock()

	orig, ok := repo.table.table[a.ID]
	if !ok {
		return article.Article{}, article.ErrNotFound
	}
	a.Likes, a.Views = orig.Likes, orig.Views
	repo.store(a)
	return a, nil
}

func (repo *articleRepository) DeleteArticle(_ context.Context, id string) (bool, error) {
	repo.table.Lock()
	defer repo.table.Unlock()

	if _, ok := repo.table.table[id]; !ok {
		return false, nil
	}
	delete(repo.table.table, id)
	repo.db.deleteInteractions(core.TargetArticle, id)
	return true, nil
}

func (repo *articleRepository) IncrementViews(_ context.Context, id string) error {
	repo.table.Lock()
	defer repo.table.Unlock()

	a, ok := repo.table.table[id]
	if !ok {
		return article.ErrNotFound
	}
	a.Views++
	return nil
}

func (repo *articleRepository) AddLike(ctx context.Context, id, userID string) (article.Article, error) {
	return repo.setLike(ctx, id, userID, true)
}

func (repo *articleRepository) RemoveLike(ctx context.Context, id, userID string) (article.Article, error) {
	return repo.setLike(ctx, id, userID, false)
}

func (repo *articleRepository) setLike(ctx context.Context, id, userID string, like bool) (article.Article, error) {
	repo.table.Lock()
	a, ok := repo.table.table[id]
	if ok && repo.db.setLike(userID, core.TargetArticle, id, like) {
		a.Likes = applyLike(a.Likes, like)
	}
	repo.table.Unlock()

	if !ok {
		return article.Article{}, article.ErrNotFound
	}
	return repo.GetArticle(ctx, id)
}
