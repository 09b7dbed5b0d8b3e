package article

import (
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/user"
)

// Statuses
const (
	StatusDraft       = "draft"
	StatusUnderReview = "under_review"
	StatusPublished   = "published"
	StatusArchived    = "archived"
)

const excerptLen = 150

var (
	Statuses = []string{StatusDraft, StatusUnderReview, StatusPublished, StatusArchived}

	// OrderingFields are the fields articles can be ordered by.
	OrderingFields = []string{"title", "category", "status", "likes", "views", "created_at", "updated_at", "published_at"}
)

type Article struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Excerpt     string            `json:"excerpt"`
	Category    string            `json:"category"`
	Tags        []string          `json:"tags"`
	Status      string            `json:"status"`
	AuthorID    string            `json:"author_id"`
	Author      *user.Author      `json:"author"`
	Likes       int               `json:"likes"`
	Views       int               `json:"views"`
	IsFeatured  bool              `json:"is_featured"`
	IsModerated bool              `json:"is_moderated"`
	ModeratedBy null.String       `json:"moderated_by"`
	ModeratedAt null.Time         `json:"moderated_at"`
	ImageURL    string            `json:"image_url"`
	PublishedAt null.Time         `json:"published_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Comments    []comment.Comment `json:"comments,omitempty"`
}

func (a Article) IsPublished() bool { return a.Status == StatusPublished }

// setStatus changes the status. PublishedAt is only set on the first publication.
func (a *Article) setStatus(status string, now time.Time) {
	a.Status = status
	if status == StatusPublished && !a.PublishedAt.Valid {
		a.PublishedAt = null.TimeFrom(now)
	}
}

type NewArticle struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Content    string   `json:"content" validate:"required"`
	Excerpt    string   `json:"excerpt" validate:"max=300"`
	Category   string   `json:"category" validate:"max=50"`
	Tags       []string `json:"tags" validate:"max=20,tags"`
	Status     string   `json:"status" validate:"article_status"`
	ImageURL   string   `json:"image_url" validate:"omitempty,url,max=2048"`
	IsFeatured bool     `json:"is_featured"`
}

func (na *NewArticle) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Content = strings.TrimSpace(na.Content)
	na.Excerpt = core.CleanString(na.Excerpt)
	na.Category = core.CleanString(na.Category)
	na.Tags = core.CleanTags(na.Tags)
	na.Status = core.CleanString(na.Status, true /* lower */)
	na.ImageURL = core.CleanString(na.ImageURL)
	return validate.Struct(na)
}

// UpdateArticle defines what information may be provided to modify an existing Article.
// nil fields are left untouched.
type UpdateArticle struct {
	Title      *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Content    *string  `json:"content" validate:"omitempty,min=1"`
	Excerpt    *string  `json:"excerpt" validate:"omitempty,max=300"`
	Category   *string  `json:"category" validate:"omitempty,max=50"`
	Tags       []string `json:"tags" validate:"omitempty,max=20,tags"`
	Status     *string  `json:"status" validate:"omitempty,article_status"`
	ImageURL   *string  `json:"image_url" validate:"omitempty,max=2048"`
	IsFeatured *bool    `json:"is_featured"`
}

func (ua *UpdateArticle) Validate(validate *validator.Validate) error {
	for _, s := range []*string{ua.Title, ua.Excerpt, ua.Category, ua.ImageURL} {
		if s != nil {
			*s = core.CleanString(*s)
		}
	}
	if ua.Content != nil {
		*ua.Content = strings.TrimSpace(*ua.Content)
	}
	if ua.Status != nil {
		*ua.Status = core.CleanString(*ua.Status, true /* lower */)
	}
	if ua.Tags != nil {
		ua.Tags = core.CleanTags(ua.Tags)
	}
	return validate.Struct(ua)
}

type QueryFilter struct {
	Status   string `query:"status"`
	AuthorID string `query:"author_id"`
	Category string `query:"category"`
	Tag      string `query:"tag"`
	Search   string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Status == "" && qf.AuthorID == "" && qf.Category == "" && qf.Tag == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.AuthorID = core.CleanString(qf.AuthorID)
	qf.Category = core.CleanString(qf.Category)
	qf.Tag = core.CleanString(qf.Tag)
	qf.Search = core.CleanString(qf.Search)
}

// MakeExcerpt returns the first 150 characters of content, cut at a word boundary when possible.
func MakeExcerpt(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	runes := []rune(content)
	if len(runes) <= excerptLen {
		return content
	}
	cut := runes[:excerptLen]
	if !unicode.IsSpace(runes[excerptLen]) {
		if idx := lastSpace(cut); idx > 0 {
			cut = cut[:idx]
		}
	}
	return strings.TrimSpace(string(cut)) + "..."
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}
