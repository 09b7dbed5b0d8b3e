package gormdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/user"
)

type (
	userModel struct {
		ID                string `gorm:"primaryKey;size:36"`
		Email             string `gorm:"size:254;not null;uniqueIndex"`
		Name              string `gorm:"size:100;not null"`
		Role              string `gorm:"size:20;not null;index"`
		IsActive          bool   `gorm:"not null"`
		Bio               string
		ProfilePictureURL string
		PasswordHash      []byte
		LastLogin         *time.Time
		CreatedAt         time.Time `gorm:"index"`
		UpdatedAt         time.Time
	}

	articleModel struct {
		ID          string `gorm:"primaryKey;size:36"`
		Title       string `gorm:"size:200;not null"`
		Content     string `gorm:"not null"`
		Excerpt     string `gorm:"size:300"`
		Category    string `gorm:"size:50;index"`
		Tags        datatypes.JSON
		Status      string     `gorm:"size:20;not null;index"`
		AuthorID    string     `gorm:"size:36;not null;index"`
		Author      *userModel `gorm:"foreignKey:AuthorID"`
		Likes       int        `gorm:"not null"`
		Views       int        `gorm:"not null"`
		IsFeatured  bool       `gorm:"not null"`
		IsModerated bool       `gorm:"not null"`
		ModeratedBy *string    `gorm:"size:36"`
		ModeratedAt *time.Time
		ImageURL    string
		PublishedAt *time.Time
		CreatedAt   time.Time `gorm:"index"`
		UpdatedAt   time.Time
	}

	confessionModel struct {
		ID          string     `gorm:"primaryKey;size:36"`
		Content     string     `gorm:"not null"`
		AuthorID    string     `gorm:"size:36;not null;index"`
		Author      *userModel `gorm:"foreignKey:AuthorID"`
		IsAnonymous bool       `gorm:"not null"`
		Category    string     `gorm:"size:20;not null;index"`
		Tags        datatypes.JSON
		Likes       int       `gorm:"not null"`
		IsModerated bool      `gorm:"not null"`
		CreatedAt   time.Time `gorm:"index"`
		UpdatedAt   time.Time
	}

	// commentModel holds the columns shared by both comment tables.
	commentModel struct {
		ID          string  `gorm:"primaryKey;size:36"`
		AuthorID    string  `gorm:"size:36;not null;index"`
		Content     string  `gorm:"not null"`
		ParentID    *string `gorm:"size:36;index"`
		Likes       int     `gorm:"not null"`
		IsModerated bool    `gorm:"not null"`
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	articleCommentModel struct {
		commentModel
		ArticleID string     `gorm:"size:36;not null;index"`
		Author    *userModel `gorm:"foreignKey:AuthorID"`
	}

	confessionCommentModel struct {
		commentModel
		ConfessionID string     `gorm:"size:36;not null;index"`
		Author       *userModel `gorm:"foreignKey:AuthorID"`
	}

	// likeModel is the like ledger: one row per user and liked item.
	likeModel struct {
		UserID     string `gorm:"primaryKey;size:36"`
		TargetType string `gorm:"primaryKey;size:20;index:idx_likes_target"`
		TargetID   string `gorm:"primaryKey;size:36;index:idx_likes_target"`
		CreatedAt  time.Time
	}

	reactionModel struct {
		ID         string `gorm:"primaryKey;size:36"`
		UserID     string `gorm:"size:36;not null;uniqueIndex:idx_reactions_user_target"`
		TargetType string `gorm:"size:20;not null;uniqueIndex:idx_reactions_user_target;index:idx_reactions_target"`
		TargetID   string `gorm:"size:36;not null;uniqueIndex:idx_reactions_user_target;index:idx_reactions_target"`
		Type       string `gorm:"size:20;not null"`
		CreatedAt  time.Time
	}

	reportModel struct {
		ID          string `gorm:"primaryKey;size:36"`
		ReporterID  string `gorm:"size:36;not null;index"`
		TargetType  string `gorm:"size:20;not null"`
		TargetID    string `gorm:"size:36;not null"`
		Reason      string `gorm:"size:20;not null"`
		Description string
		Status      string  `gorm:"size:20;not null;index"`
		ResolvedBy  *string `gorm:"size:36"`
		ResolvedAt  *time.Time
		CreatedAt   time.Time `gorm:"index"`
	}

	adminLogModel struct {
		ID         string `gorm:"primaryKey;size:36"`
		AdminID    string `gorm:"size:36;not null;index"`
		Action     string `gorm:"size:50;not null;index"`
		TargetType string `gorm:"size:20;not null"`
		TargetID   string `gorm:"size:36;not null"`
		Details    string
		CreatedAt  time.Time `gorm:"index"`
	}
)

func (userModel) TableName() string              { return "users" }
func (articleModel) TableName() string           { return "articles" }
func (confessionModel) TableName() string        { return "confessions" }
func (articleCommentModel) TableName() string    { return "article_comments" }
func (confessionCommentModel) TableName() string { return "confession_comments" }
func (likeModel) TableName() string              { return "likes" }
func (reactionModel) TableName() string          { return "reactions" }
func (reportModel) TableName() string            { return "reports" }
func (adminLogModel) TableName() string          { return "admin_logs" }

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&articleModel{},
		&confessionModel{},
		&articleCommentModel{},
		&confessionCommentModel{},
		&likeModel{},
		&reactionModel{},
		&reportModel{},
		&adminLogModel{},
	)
}

// helpers

// targetExists tells whether the item a reaction, a like or a report points at exists.
func targetExists(ctx context.Context, db *gorm.DB, targetType, targetID string) (bool, error) {
	var tables []string
	switch targetType {
	case core.TargetUser:
		tables = []string{userModel{}.TableName()}
	case core.TargetArticle:
		tables = []string{articleModel{}.TableName()}
	case core.TargetConfession:
		tables = []string{confessionModel{}.TableName()}
	case core.TargetComment:
		tables = []string{articleCommentModel{}.TableName(), confessionCommentModel{}.TableName()}
	}

	for _, table := range tables {
		var count int64
		if err := db.WithContext(ctx).Table(table).Where("id = ?", targetID).Count(&count).Error; err != nil {
			return false, errors.Wrap(err, "checking target")
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func timePtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	utc := t.Time.UTC()
	return &utc
}

func nullTime(t *time.Time) null.Time {
	if t == nil {
		return null.Time{}
	}
	return null.TimeFrom(t.UTC())
}

func stringPtr(s null.String) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func nullString(s *string) null.String {
	return null.StringFromPtr(s)
}

func marshalTags(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	return datatypes.JSON(b)
}

func unmarshalTags(raw datatypes.JSON) []string {
	tags := make([]string, 0)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &tags)
	}
	return tags
}

func hasTag(raw datatypes.JSON, tag string) bool {
	for _, t := range unmarshalTags(raw) {
		if t == tag {
			return true
		}
	}
	return false
}

func toAuthor(u *userModel) *user.Author {
	if u == nil {
		return nil
	}
	return &user.Author{
		ID:                u.ID,
		Name:              u.Name,
		Role:              u.Role,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}
