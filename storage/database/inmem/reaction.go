package inmemdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/Umairism/Teachers-Club/core/reaction"
)

type reactionRepository struct {
	db    *DB
	table *reactionTable
}

var _ reaction.Repository = (*reactionRepository)(nil) // interface compliance check

func NewReactionRepository(db *DB) *reactionRepository {
	return &reactionRepository{db: db, table: db.reaction}
}

func (repo *reactionRepository) TargetExists(_ context.Context, targetType, targetID string) (bool, error) {
	return repo.db.targetExists(targetType, targetID), nil
}

// find must be called with the table lock held.
func (repo *reactionRepository) find(userID, targetType, targetID string) (*reaction.Reaction, bool) {
	for _, r := range repo.table.table {
		if r.UserID == userID && r.TargetType == targetType && r.TargetID == targetID {
			return r, true
		}
	}
	return nil, false
}

func (repo *reactionRepository) GetUserReaction(_ context.Context, userID, targetType, targetID string) (reaction.Reaction, error) {
	repo.table.RLock()
	defer repo.table.RUnlock()

	if r, ok := repo.find(userID, targetType, targetID); ok {
		return *r, nil
	}
	return reaction.Reaction{}, reaction.ErrNotFound
}

func (repo *reactionRepository) CreateReaction(_ context.Context, r reaction.Reaction) (reaction.Reaction, error) {
	repo.table.Lock()
	defer repo.table.Unlock()

	if _, ok := repo.find(r.UserID, r.TargetType, r.TargetID); ok {
		return reaction.Reaction{}, errors.Errorf("user %s already reacted to %s %s", r.UserID, r.TargetType, r.TargetID)
	}
	r.ID = uuid.New().String()
	stored := r
	repo.table.table[r.ID] = &stored
	return r, nil
}

func (repo *reactionRepository) UpdateReactionType(_ context.Context, id, typ string) error {
	repo.table.Lock()
	defer repo.table.Unlock()

	r, ok := repo.table.table[id]
	if !ok {
		return reaction.ErrNotFound
	}
	r.Type = typ
	return nil
}

func (repo *reactionRepository) DeleteReaction(_ context.Context, id string) error {
	repo.table.Lock()
	defer repo.table.Unlock()

	delete(repo.table.table, id)
	return nil
}

func (repo *reactionRepository) CountReactions(_ context.Context, targetType, targetID string) (map[string]int, error) {
	repo.table.RLock()
	defer repo.table.RUnlock()

	counts := make(map[string]int)
	for _, r := range repo.table.table {
		if r.TargetType == targetType && r.TargetID == targetID {
			counts[r.Type]++
		}
	}
	return counts, nil
}
