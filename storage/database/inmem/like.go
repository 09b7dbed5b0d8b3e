package inmemdb

import (
	"time"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/comment"
)

// setLike adds (like) or removes the like of a user in the ledger and tells whether the ledger changed.
// Callers hold the lock of the liked item's table so the ledger and the counter move together.
func (db *DB) setLike(userID, targetType, targetID string, like bool) bool {
	db.like.Lock()
	defer db.like.Unlock()

	key := likeKey{userID: userID, targetType: targetType, targetID: targetID}
	_, exists := db.like.table[key]
	switch {
	case like && !exists:
		db.like.table[key] = time.Now().UTC()
		return true
	case !like && exists:
		delete(db.like.table, key)
		return true
	}
	return false
}

// applyLike returns likes moved by one like or unlike. Likes never go below zero.
func applyLike(likes int, like bool) int {
	if like {
		return likes + 1
	}
	return max(likes-1, 0)
}

// deleteInteractions removes the likes and reactions left on deleted items.
func (db *DB) deleteInteractions(targetType string, targetIDs ...string) {
	if len(targetIDs) == 0 {
		return
	}
	ids := make(map[string]bool, len(targetIDs))
	for _, id := range targetIDs {
		ids[id] = true
	}

	db.like.Lock()
	for key := range db.like.table {
		if key.targetType == targetType && ids[key.targetID] {
			delete(db.like.table, key)
		}
	}
	db.like.Unlock()

	db.reaction.Lock()
	for id, r := range db.reaction.table {
		if r.TargetType == targetType && ids[r.TargetID] {
			delete(db.reaction.table, id)
		}
	}
	db.reaction.Unlock()
}

// targetExists tells whether the item a reaction, a like or a report points at exists.
func (db *DB) targetExists(targetType, targetID string) bool {
	switch targetType {
	case core.TargetUser:
		db.user.RLock()
		defer db.user.RUnlock()
		_, ok := db.user.table[targetID]
		return ok
	case core.TargetArticle:
		db.article.RLock()
		defer db.article.RUnlock()
		_, ok := db.article.table[targetID]
		return ok
	case core.TargetConfession:
		db.confession.RLock()
		defer db.confession.RUnlock()
		_, ok := db.confession.table[targetID]
		return ok
	case core.TargetComment:
		for _, kind := range comment.Kinds {
			tbl := db.comment[kind]
			tbl.RLock()
			_, ok := tbl.table[targetID]
			tbl.RUnlock()
			if ok {
				return true
			}
		}
	}
	return false
}
