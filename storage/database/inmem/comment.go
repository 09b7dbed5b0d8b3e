package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/comment"
)

type commentRepository struct {
	db *DB
}

var _ comment.Repository = (*commentRepository)(nil) // interface compliance check

func NewCommentRepository(db *DB) *commentRepository {
	return &commentRepository{db: db}
}

func (repo *commentRepository) table(kind string) (*commentTable, error) {
	tbl, ok := repo.db.comment[kind]
	if !ok {
		return nil, comment.ErrUnknownKind
	}
	return tbl, nil
}

func (repo *commentRepository) TargetExists(_ context.Context, kind, targetID string) (bool, error) {
	switch kind {
	case comment.KindArticle:
		repo.db.article.RLock()
		defer repo.db.article.RUnlock()
		_, ok := repo.db.article.table[targetID]
		return ok, nil
	case comment.KindConfession:
		repo.db.confession.RLock()
		defer repo.db.confession.RUnlock()
		_, ok := repo.db.confession.table[targetID]
		return ok, nil
	}
	return false, comment.ErrUnknownKind
}

func (repo *commentRepository) CreateComment(_ context.Context, c comment.Comment) (comment.Comment, error) {
	tbl, err := repo.table(c.Kind)
	if err != nil {
		return comment.Comment{}, err
	}
	tbl.Lock()
	defer tbl.Unlock()

	c.ID = uuid.New().String()
	stored := c
	stored.Author = nil
	stored.Replies = nil
	tbl.table[c.ID] = &stored
	return c, nil
}

func (repo *commentRepository) GetComment(_ context.Context, kind, id string) (comment.Comment, error) {
	tbl, err := repo.table(kind)
	if err != nil {
		return comment.Comment{}, err
	}
	tbl.RLock()
	c, ok := tbl.table[id]
	var found comment.Comment
	if ok {
		found = *c
	}
	tbl.RUnlock()

	if !ok {
		return comment.Comment{}, comment.ErrNotFound
	}
	found.Author = repo.db.author(found.AuthorID)
	return found, nil
}

func (repo *commentRepository) filter(kind string, keep func(c *comment.Comment) bool) ([]comment.Comment, error) {
	tbl, err := repo.table(kind)
	if err != nil {
		return nil, err
	}
	tbl.RLock()
	comments := make([]comment.Comment, 0)
	for _, c := range tbl.table {
		if keep(c) {
			comments = append(comments, *c)
		}
	}
	tbl.RUnlock()

	sortByOrdering(comments, nil, core.DBOrdering{Field: "created_at", Ascending: true}, func(a, b comment.Comment, _ string) int {
		return compareTimes(a.CreatedAt, b.CreatedAt)
	})
	for i := range comments {
		comments[i].Author = repo.db.author(comments[i].AuthorID)
	}
	return comments, nil
}

func (repo *commentRepository) QueryComments(_ context.Context, kind, targetID string) ([]comment.Comment, error) {
	return repo.filter(kind, func(c *comment.Comment) bool { return c.TargetID == targetID })
}

func (repo *commentRepository) QueryAllComments(_ context.Context, kind string) ([]comment.Comment, error) {
	return repo.filter(kind, func(*comment.Comment) bool { return true })
}

func (repo *commentRepository) UpdateComment(_ context.Context, c comment.Comment) (comment.Comment, error) {
	tbl, err := repo.table(c.Kind)
	if err != nil {
		return comment.Comment{}, err
	}
	tbl.Lock()
	defer tbl.Unlock()

	orig, ok := tbl.table[c.ID]
	if !ok {
		return comment.Comment{}, comment.ErrNotFound
	}
	orig.Content = c.Content
	orig.IsModerated = c.IsModerated
	orig.UpdatedAt = c.UpdatedAt
	c.Likes = orig.Likes
	return c, nil
}

func (repo *commentRepository) DeleteComment(_ context.Context, kind, id string) (bool, error) {
	tbl, err := repo.table(kind)
	if err != nil {
		return false, err
	}
	tbl.Lock()
	defer tbl.Unlock()

	if _, ok := tbl.table[id]; !ok {
		return false, nil
	}
	deleted := []string{id}
	delete(tbl.table, id)
	for replyID, c := range tbl.table {
		if c.ParentID.Valid && c.ParentID.String == id {
			delete(tbl.table, replyID)
			deleted = append(deleted, replyID)
		}
	}
	repo.db.deleteInteractions(core.TargetComment, deleted...)
	return true, nil
}

func (repo *commentRepository) DeleteTargetComments(_ context.Context, kind, targetID string) error {
	tbl, err := repo.table(kind)
	if err != nil {
		return err
	}
	tbl.Lock()
	defer tbl.Unlock()

	var deleted []string
	for id, c := range tbl.table {
		if c.TargetID == targetID {
			delete(tbl.table, id)
			deleted = append(deleted, id)
		}
	}
	repo.db.deleteInteractions(core.TargetComment, deleted...)
	return nil
}

func (repo *commentRepository) AddLike(ctx context.Context, kind, id, userID string) (comment.Comment, error) {
	return repo.setLike(ctx, kind, id, userID, true)
}

func (repo *commentRepository) RemoveLike(ctx context.Context, kind, id, userID string) (comment.Comment, error) {
	return repo.setLike(ctx, kind, id, userID, false)
}

func (repo *commentRepository) setLike(ctx context.Context, kind, id, userID string, like bool) (comment.Comment, error) {
	tbl, err := repo.table(kind)
	if err != nil {
		return comment.Comment{}, err
	}
	tbl.Lock()
	c, ok := tbl.table[id]
	if ok && repo.db.setLike(userID, core.TargetComment, id, like) {
		c.Likes = applyLike(c.Likes, like)
	}
	tbl.Unlock()

	if !ok {
		return comment.Comment{}, comment.ErrNotFound
	}
	return repo.GetComment(ctx, kind, id)
}
