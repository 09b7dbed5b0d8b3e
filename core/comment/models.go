package comment

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/user"
)

// Comment kinds: what a comment is attached to.
const (
	KindArticle    = "article"
	KindConfession = "confession"
)

var Kinds = []string{KindArticle, KindConfession}

func IsKind(kind string) bool {
	return kind == KindArticle || kind == KindConfession
}

type Comment struct {
	ID          string       `json:"id"`
	Kind        string       `json:"target_type"`
	TargetID    string       `json:"target_id"`
	AuthorID    string       `json:"author_id"`
	Author      *user.Author `json:"author"`
	Content     string       `json:"content"`
	ParentID    null.String  `json:"parent_id"`
	Likes       int          `json:"likes"`
	IsModerated bool         `json:"is_moderated"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Replies     []Comment    `json:"replies,omitempty"`
}

func (c Comment) IsReply() bool { return c.ParentID.Valid && c.ParentID.String != "" }

type NewComment struct {
	Content  string `json:"content" validate:"required,max=2000"`
	ParentID string `json:"parent_id"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Content = core.CleanString(nc.Content)
	nc.ParentID = core.CleanString(nc.ParentID)
	return validate.Struct(nc)
}

type UpdateComment struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func (uc *UpdateComment) Validate(validate *validator.Validate) error {
	uc.Content = core.CleanString(uc.Content)
	return validate.Struct(uc)
}

// BuildThread arranges a flat list of comments into top-level comments with their replies.
// Both levels are ordered oldest first. Replies whose parent is missing are dropped.
func BuildThread(comments []Comment) []Comment {
	sorted := make([]Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })

	roots := make([]Comment, 0, len(sorted))
	index := make(map[string]int, len(sorted))
	for _, c := range sorted {
		if !c.IsReply() {
			c.Replies = []Comment{}
			index[c.ID] = len(roots)
			roots = append(roots, c)
		}
	}
	for _, c := range sorted {
		if !c.IsReply() {
			continue
		}
		if idx, ok := index[c.ParentID.String]; ok {
			roots[idx].Replies = append(roots[idx].Replies, c)
		}
	}
	return roots
}
