package reaction

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/volatiletech/null/v8"

	"github.com/Umairism/Teachers-Club/core"
)

// Reaction types
const (
	TypeThumbsUp   = "thumbs_up"
	TypeHeart      = "heart"
	TypeInsightful = "insightful"
	TypeBoring     = "boring"
)

var (
	Types       = []string{TypeThumbsUp, TypeHeart, TypeInsightful, TypeBoring}
	TargetTypes = []string{core.TargetArticle, core.TargetConfession, core.TargetComment}
)

func IsTargetType(targetType string) bool {
	return lo.Contains(TargetTypes, targetType)
}

// Reaction is unique per (UserID, TargetType, TargetID).
type Reaction struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	TargetType string    `json:"target_type"`
	TargetID   string    `json:"target_id"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
}

// Summary is the reactions overview of a target, as seen by one user.
type Summary struct {
	Counts       map[string]int `json:"counts"`
	Total        int            `json:"total"`
	UserReaction null.String    `json:"user_reaction"`
}

func newSummary(counts map[string]int) Summary {
	sum := Summary{Counts: make(map[string]int, len(Types))}
	for _, typ := range Types {
		n := counts[typ]
		sum.Counts[typ] = n
		sum.Total += n
	}
	return sum
}

type NewReaction struct {
	Type string `json:"type" validate:"required,reaction_type"`
}

func (nr *NewReaction) Validate(validate *validator.Validate) error {
	nr.Type = core.CleanString(nr.Type, true /* lower */)
	return validate.Struct(nr)
}
