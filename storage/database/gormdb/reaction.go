package gormdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/Umairism/Teachers-Club/core/reaction"
)

type reactionRepository struct {
	db *gorm.DB
}

var _ reaction.Repository = (*reactionRepository)(nil) // interface compliance check

func NewReactionRepository(db *gorm.DB) *reactionRepository {
	return &reactionRepository{db: db}
}

func (repo reactionRepository) TargetExists(ctx context.Context, targetType, targetID string) (bool, error) {
	return targetExists(ctx, repo.db, targetType, targetID)
}

func (repo reactionRepository) GetUserReaction(ctx context.Context, userID, targetType, targetID string) (reaction.Reaction, error) {
	var m reactionModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reaction.Reaction{}, reaction.ErrNotFound
		}
		return reaction.Reaction{}, errors.Wrap(err, "finding reaction")
	}
	return reaction.Reaction{
		ID:         m.ID,
		UserID:     m.UserID,
		TargetType: m.TargetType,
		TargetID:   m.TargetID,
		Type:       m.Type,
		CreatedAt:  m.CreatedAt.UTC(),
	}, nil
}

// CreateReaction relies on the unique (user_id, target_type, target_id) index to refuse duplicates.
func (repo reactionRepository) CreateReaction(ctx context.Context, r reaction.Reaction) (reaction.Reaction, error) {
	r.ID = uuid.New().String()
	m := reactionModel{
		ID:         r.ID,
		UserID:     r.UserID,
		TargetType: r.TargetType,
		TargetID:   r.TargetID,
		Type:       r.Type,
		CreatedAt:  r.CreatedAt.UTC(),
	}
	if err := repo.db.WithContext(ctx).Create(&m).Error; err != nil {
		return reaction.Reaction{}, errors.Wrap(err, "inserting reaction")
	}
	return r, nil
}

func (repo reactionRepository) UpdateReactionType(ctx context.Context, id, typ string) error {
	res := repo.db.WithContext(ctx).Model(&reactionModel{}).Where("id = ?", id).UpdateColumn("type", typ)
	if res.Error != nil {
		return errors.Wrap(res.Error, "updating reaction")
	}
	if res.RowsAffected == 0 {
		return reaction.ErrNotFound
	}
	return nil
}

func (repo reactionRepository) DeleteReaction(ctx context.Context, id string) error {
	if err := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&reactionModel{}).Error; err != nil {
		return errors.Wrap(err, "deleting reaction")
	}
	return nil
}

func (repo reactionRepository) CountReactions(ctx context.Context, targetType, targetID string) (map[string]int, error) {
	var rows []struct {
		Type  string
		Count int
	}
	err := repo.db.WithContext(ctx).Model(&reactionModel{}).
		Select("type, COUNT(*) AS count").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "counting reactions")
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}
