package inmemdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/confession"
)

type confessionRepository struct {
	db    *DB
	table *confessionTable
}

var _ confession.Repository = (*confessionRepository)(nil) // interface compliance check

func NewConfessionRepository(db *DB) *confessionRepository {
	return &confessionRepository{db: db, table: db.confession}
}

func (repo *confessionRepository) store(c confession.Confession) {
	c.Tags = append([]string{}, c.Tags...)
	c.Author = nil
	c.Comments = nil
	repo.table.table[c.ID] = &c
}

func (repo *confessionRepository) withAuthor(c confession.Confession) confession.Confession {
	c.Tags = append([]string{}, c.Tags...)
	c.Author = repo.db.author(c.AuthorID)
	return c
}

func (repo *confessionRepository) CreateConfession(_ context.Context, c confession.Confession) (confession.Confession, error) {
	repo.table.Lock()
	defer repo.table.Unlock()

	c.ID = uuid.New().String()
	repo.store(c)
	return c, nil
}

func (repo *confessionRepository) GetConfession(_ context.Context, id string) (confession.Confession, error) {
	repo.table.RLock()
	c, ok := repo.table.table[id]
	var found confession.Confession
	if ok {
		found = *c
	}
	repo.table.RUnlock()

	if !ok {
		return confession.Confession{}, confession.ErrNotFound
	}
	return repo.withAuthor(found), nil
}

func (repo *confessionRepository) QueryConfessions(_ context.Context, filter *confession.QueryFilter, ordering []core.DBOrdering) ([]confession.Confession, error) {
	repo.table.RLock()
	confessions := make([]confession.Confession, 0, len(repo.table.table))
	for _, c := range repo.table.table {
		confessions = append(confessions, *c)
	}
	repo.table.RUnlock()

	if filter != nil {
		confessions = lo.Filter(confessions, func(c confession.Confession, _ int) bool {
			if filter.Category != "" && c.Category != filter.Category {
				return false
			}
			if filter.AuthorID != "" && c.AuthorID != filter.AuthorID {
				return false
			}
			if filter.SignedOnly && c.IsAnonymous {
				return false
			}
			if filter.Tag != "" && !lo.Contains(c.Tags, filter.Tag) {
				return false
			}
			if filter.Search != "" && !containsFold(c.Content, filter.Search) {
				return false
			}
			return true
		})
	}

	sortByOrdering(confessions, ordering, core.DBOrdering{Field: "created_at"}, func(a, b confession.Confession, field string) int {
		switch field {
		case "category":
			return compareStrings(a.Category, b.Category)
		case "likes":
			return compareInts(a.Likes, b.Likes)
		case "created_at":
			return compareTimes(a.CreatedAt, b.CreatedAt)
		case "updated_at":
			return compareTimes(a.UpdatedAt, b.UpdatedAt)
		}
		return 0
	})
	return lo.Map(confessions, func(c confession.Confession, _ int) confession.Confession { return repo.withAuthor(c) }), nil
}

// UpdateConfession keeps the stored likes: they move through their own calls.
func (repo *confessionRepository) UpdateConfession(_ context.Context, c confession.Confession) (confession.Confession, error) {
	repo.table.Lock()
	defer repo.table.Unlock()

	orig, ok := repo.table.table[c.ID]
	if !ok {
		return confession.Confession{}, confession.ErrNotFound
	}
	c.Likes = orig.Likes
	repo.store(c)
	return c, nil
}

func (repo *confessionRepository) DeleteConfession(_ context.Context, id string) (bool, error) {
	repo.table.Lock()
	defer repo.table.Unlock()

	if _, ok := repo.table.table[id]; !ok {
		return false, nil
	}
	delete(repo.table.table, id)
	repo.db.deleteInteractions(core.TargetConfession, id)
	return true, nil
}

func (repo *confessionRepository) AddLike(ctx context.Context, id, userID string) (confession.Confession, error) {
	return repo.setLike(ctx, id, userID, true)
}

func (repo *confessionRepository) RemoveLike(ctx context.Context, id, userID string) (confession.Confession, error) {
	return repo.setLike(ctx, id, userID, false)
}

func (repo *confessionRepository) setLike(ctx context.Context, id, userID string, like bool) (confession.Confession, error) {
	repo.table.Lock()
	c, ok := repo.table.table[id]
	if ok && repo.db.setLike(userID, core.TargetConfession, id, like) {
		c.Likes = applyLike(c.Likes, like)
	}
	repo.table.Unlock()

	if !ok {
		return confession.Confession{}, confession.ErrNotFound
	}
	return repo.GetConfession(ctx, id)
}
