package gormdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/comment"
)

type commentRepository struct {
	db *gorm.DB
}

var _ comment.Repository = (*commentRepository)(nil) // interface compliance check

func NewCommentRepository(db *gorm.DB) *commentRepository {
	return &commentRepository{db: db}
}

// commentTables describes where the comments of a kind live.
type commentTables struct {
	comments     string // comments table
	targetColumn string // column of the comments table pointing at the target
	targets      string // target table
}

func (repo commentRepository) tables(kind string) (commentTables, error) {
	switch kind {
	case comment.KindArticle:
		return commentTables{articleCommentModel{}.TableName(), "article_id", articleModel{}.TableName()}, nil
	case comment.KindConfession:
		return commentTables{confessionCommentModel{}.TableName(), "confession_id", confessionModel{}.TableName()}, nil
	}
	return commentTables{}, comment.ErrUnknownKind
}

// commentRow is a row of one of the comment tables.
type commentRow interface {
	articleCommentModel | confessionCommentModel
	toComment() comment.Comment
}

func newCommentModel(c comment.Comment) commentModel {
	return commentModel{
		ID:          c.ID,
		AuthorID:    c.AuthorID,
		Content:     c.Content,
		ParentID:    stringPtr(c.ParentID),
		Likes:       c.Likes,
		IsModerated: c.IsModerated,
		CreatedAt:   c.CreatedAt.UTC(),
		UpdatedAt:   c.UpdatedAt.UTC(),
	}
}

func (m commentModel) build(kind, targetID string, author *userModel) comment.Comment {
	return comment.Comment{
		ID:          m.ID,
		Kind:        kind,
		TargetID:    targetID,
		AuthorID:    m.AuthorID,
		Author:      toAuthor(author),
		Content:     m.Content,
		ParentID:    nullString(m.ParentID),
		Likes:       m.Likes,
		IsModerated: m.IsModerated,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func (m articleCommentModel) toComment() comment.Comment {
	return m.build(comment.KindArticle, m.ArticleID, m.Author)
}

func (m confessionCommentModel) toComment() comment.Comment {
	return m.build(comment.KindConfession, m.ConfessionID, m.Author)
}

func findComments[T commentRow](q *gorm.DB) ([]comment.Comment, error) {
	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}
	return lo.Map(rows, func(m T, _ int) comment.Comment { return m.toComment() }), nil
}

func (repo commentRepository) TargetExists(ctx context.Context, kind, targetID string) (bool, error) {
	tbl, err := repo.tables(kind)
	if err != nil {
		return false, err
	}
	var count int64
	if err = repo.db.WithContext(ctx).Table(tbl.targets).Where("id = ?", targetID).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "checking comment target")
	}
	return count > 0, nil
}

func (repo commentRepository) CreateComment(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	c.ID = uuid.New().String()
	m := newCommentModel(c)

	var row interface{}
	switch c.Kind {
	case comment.KindArticle:
		row = &articleCommentModel{commentModel: m, ArticleID: c.TargetID}
	case comment.KindConfession:
		row = &confessionCommentModel{commentModel: m, ConfessionID: c.TargetID}
	default:
		return comment.Comment{}, comment.ErrUnknownKind
	}
	if err := repo.db.WithContext(ctx).Create(row).Error; err != nil {
		return comment.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return m.build(c.Kind, c.TargetID, nil), nil
}

// find returns the comments of a kind matching scope, oldest first, authors attached.
func (repo commentRepository) find(ctx context.Context, kind string, scope func(q *gorm.DB, tbl commentTables) *gorm.DB) ([]comment.Comment, error) {
	tbl, err := repo.tables(kind)
	if err != nil {
		return nil, err
	}
	q := scope(repo.db.WithContext(ctx).Preload("Author"), tbl).Order("created_at ASC")
	if kind == comment.KindArticle {
		return findComments[articleCommentModel](q)
	}
	return findComments[confessionCommentModel](q)
}

func (repo commentRepository) GetComment(ctx context.Context, kind, id string) (comment.Comment, error) {
	comments, err := repo.find(ctx, kind, func(q *gorm.DB, _ commentTables) *gorm.DB {
		return q.Where("id = ?", id).Limit(1)
	})
	if err != nil {
		if errors.Cause(err) == comment.ErrUnknownKind {
			return comment.Comment{}, err
		}
		return comment.Comment{}, errors.Wrap(err, "finding comment")
	}
	if len(comments) == 0 {
		return comment.Comment{}, comment.ErrNotFound
	}
	return comments[0], nil
}

func (repo commentRepository) QueryComments(ctx context.Context, kind, targetID string) ([]comment.Comment, error) {
	return repo.find(ctx, kind, func(q *gorm.DB, tbl commentTables) *gorm.DB {
		return q.Where(tbl.targetColumn+" = ?", targetID)
	})
}

func (repo commentRepository) QueryAllComments(ctx context.Context, kind string) ([]comment.Comment, error) {
	return repo.find(ctx, kind, func(q *gorm.DB, _ commentTables) *gorm.DB { return q })
}

// UpdateComment writes the editable columns only.
func (repo commentRepository) UpdateComment(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	tbl, err := repo.tables(c.Kind)
	if err != nil {
		return comment.Comment{}, err
	}
	res := repo.db.WithContext(ctx).Table(tbl.comments).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"content":      c.Content,
		"is_moderated": c.IsModerated,
		"updated_at":   c.UpdatedAt.UTC(),
	})
	if res.Error != nil {
		return comment.Comment{}, errors.Wrap(res.Error, "updating comment")
	}
	if res.RowsAffected == 0 {
		return comment.Comment{}, comment.ErrNotFound
	}
	return repo.GetComment(ctx, c.Kind, c.ID)
}

// deleteWhere removes the matching comments along with their likes and reactions.
func (repo commentRepository) deleteWhere(ctx context.Context, table string, query string, args ...interface{}) (int64, error) {
	var deleted int64
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Table(table).Where(query, args...).Pluck("id", &ids).Error; err != nil {
			return errors.Wrap(err, "finding comments")
		}
		if len(ids) == 0 {
			return nil
		}
		res := tx.Table(table).Where("id IN ?", ids).Delete(&commentModel{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "deleting comments")
		}
		deleted = res.RowsAffected
		return deleteInteractions(tx, core.TargetComment, ids...)
	})
	return deleted, err
}

func (repo commentRepository) DeleteComment(ctx context.Context, kind, id string) (bool, error) {
	tbl, err := repo.tables(kind)
	if err != nil {
		return false, err
	}
	deleted, err := repo.deleteWhere(ctx, tbl.comments, "id = ? OR parent_id = ?", id, id)
	if err != nil {
		return false, errors.Wrap(err, "deleting comment")
	}
	return deleted > 0, nil
}

func (repo commentRepository) DeleteTargetComments(ctx context.Context, kind, targetID string) error {
	tbl, err := repo.tables(kind)
	if err != nil {
		return err
	}
	_, err = repo.deleteWhere(ctx, tbl.comments, tbl.targetColumn+" = ?", targetID)
	return err
}

func (repo commentRepository) AddLike(ctx context.Context, kind, id, userID string) (comment.Comment, error) {
	return repo.setLike(ctx, kind, id, userID, true)
}

func (repo commentRepository) RemoveLike(ctx context.Context, kind, id, userID string) (comment.Comment, error) {
	return repo.setLike(ctx, kind, id, userID, false)
}

func (repo commentRepository) setLike(ctx context.Context, kind, id, userID string, like bool) (comment.Comment, error) {
	tbl, err := repo.tables(kind)
	if err != nil {
		return comment.Comment{}, err
	}
	if err = setLike(ctx, repo.db, tbl.comments, core.TargetComment, id, userID, like, comment.ErrNotFound); err != nil {
		return comment.Comment{}, err
	}
	return repo.GetComment(ctx, kind, id)
}
