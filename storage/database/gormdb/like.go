package gormdb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// setLike adds (like) or removes the like of userID on a row of table in one transaction.
// The likes column only moves when the ledger changed, so repeated calls are no-ops.
// notFound is returned when the row does not exist.
func setLike(ctx context.Context, db *gorm.DB, table, targetType, targetID, userID string, like bool, notFound error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table(table).Where("id = ?", targetID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "checking liked item")
		}
		if count == 0 {
			return notFound
		}

		var res *gorm.DB
		delta := 1
		if like {
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&likeModel{
				UserID:     userID,
				TargetType: targetType,
				TargetID:   targetID,
				CreatedAt:  time.Now().UTC(),
			})
		} else {
			delta = -1
			res = tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
				Delete(&likeModel{})
		}
		if res.Error != nil {
			return errors.Wrap(res.Error, "updating like ledger")
		}
		if res.RowsAffected == 0 {
			return nil
		}

		err := tx.Table(table).
			Where("id = ? AND likes + ? >= 0", targetID, delta).
			UpdateColumn("likes", gorm.Expr("likes + ?", delta)).Error
		return errors.Wrap(err, "updating likes")
	})
}

// deleteInteractions removes the likes and reactions left on deleted items.
func deleteInteractions(tx *gorm.DB, targetType string, targetIDs ...string) error {
	if len(targetIDs) == 0 {
		return nil
	}
	if err := tx.Where("target_type = ? AND target_id IN ?", targetType, targetIDs).Delete(&likeModel{}).Error; err != nil {
		return errors.Wrap(err, "deleting likes")
	}
	if err := tx.Where("target_type = ? AND target_id IN ?", targetType, targetIDs).Delete(&reactionModel{}).Error; err != nil {
		return errors.Wrap(err, "deleting reactions")
	}
	return nil
}
