package confession

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/user"
)

// Categories
const (
	CategoryGeneral  = "general"
	CategoryAcademic = "academic"
	CategoryPersonal = "personal"
	CategoryCareer   = "career"
	CategoryStudy    = "study_tips"
	CategoryOther    = "other"
)

const anonymousName = "Anonymous"

var (
	Categories = []string{CategoryGeneral, CategoryAcademic, CategoryPersonal, CategoryCareer, CategoryStudy, CategoryOther}

	// OrderingFields are the fields confessions can be ordered by.
	OrderingFields = []string{"category", "likes", "created_at", "updated_at"}
)

type Confession struct {
	ID          string            `json:"id"`
	Content     string            `json:"content"`
	AuthorID    string            `json:"author_id"`
	Author      *user.Author      `json:"author"`
	IsAnonymous bool              `json:"is_anonymous"`
	Category    string            `json:"category"`
	Tags        []string          `json:"tags"`
	Likes       int               `json:"likes"`
	IsModerated bool              `json:"is_moderated"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Comments    []comment.Comment `json:"comments,omitempty"`
}

// mask hides the author's profile of an anonymous confession. AuthorID is kept.
func (c *Confession) mask() {
	if c.IsAnonymous {
		c.Author = &user.Author{Name: anonymousName}
	}
}

type NewConfession struct {
	Content     string   `json:"content" validate:"required,max=5000"`
	IsAnonymous bool     `json:"is_anonymous"`
	Category    string   `json:"category" validate:"confession_category"`
	Tags        []string `json:"tags" validate:"max=20,tags"`
}

func (nc *NewConfession) Validate(validate *validator.Validate) error {
	nc.Content = strings.TrimSpace(nc.Content)
	nc.Category = core.CleanString(nc.Category, true /* lower */)
	nc.Tags = core.CleanTags(nc.Tags)
	return validate.Struct(nc)
}

// UpdateConfession defines what information may be provided to modify an existing Confession.
// nil fields are left untouched.
type UpdateConfession struct {
	Content     *string  `json:"content" validate:"omitempty,min=1,max=5000"`
	IsAnonymous *bool    `json:"is_anonymous"`
	Category    *string  `json:"category" validate:"omitempty,confession_category"`
	Tags        []string `json:"tags" validate:"omitempty,max=20,tags"`
}

func (uc *UpdateConfession) Validate(validate *validator.Validate) error {
	if uc.Content != nil {
		*uc.Content = strings.TrimSpace(*uc.Content)
	}
	if uc.Category != nil {
		*uc.Category = core.CleanString(*uc.Category, true /* lower */)
	}
	if uc.Tags != nil {
		uc.Tags = core.CleanTags(uc.Tags)
	}
	return validate.Struct(uc)
}

type QueryFilter struct {
	Category string `query:"category"`
	AuthorID string `query:"author_id"`
	Tag      string `query:"tag"`
	Search   string `query:"search"`
	// SignedOnly drops anonymous confessions. Set by Service.Query.
	SignedOnly bool `query:"-"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Category == "" && qf.AuthorID == "" && qf.Tag == "" && qf.Search == ""
}

func (qf *QueryFilter) Clean() {
	qf.Category = core.CleanString(qf.Category, true /* lower */)
	qf.AuthorID = core.CleanString(qf.AuthorID)
	qf.Tag = core.CleanString(qf.Tag)
	qf.Search = core.CleanString(qf.Search)
}
