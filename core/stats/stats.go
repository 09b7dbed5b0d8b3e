package stats

import (
	"time"

	"github.com/samber/lo"

	"github.com/Umairism/Teachers-Club/core/article"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/confession"
	"github.com/Umairism/Teachers-Club/core/user"
)

const (
	Week  = 7 * 24 * time.Hour
	Month = 30 * 24 * time.Hour
)

type (
	// Input holds the full collections the statistics are derived from.
	Input struct {
		Users              []user.User
		Articles           []article.Article
		Confessions        []confession.Confession
		ArticleComments    []comment.Comment
		ConfessionComments []comment.Comment
	}

	// Window reports the growth of the period ending at Snapshot.ComputedAt.
	Window struct {
		NewArticles       int `json:"new_articles"`
		ArticlesPublished int `json:"articles_published"`
		NewConfessions    int `json:"new_confessions"`
		NewUsers          int `json:"new_users"`
		// Engagement is the likes & comments accumulated by the articles and confessions created in the window.
		Engagement int `json:"engagement"`
	}

	// Snapshot is a read model: it can always be recomputed from scratch and discarded.
	Snapshot struct {
		TotalUsers         int       `json:"total_users"`
		ActiveUsers        int       `json:"active_users"`
		TotalArticles      int       `json:"total_articles"`
		PublishedArticles  int       `json:"published_articles"`
		TotalConfessions   int       `json:"total_confessions"`
		TotalLikes         int       `json:"total_likes"`
		TotalViews         int       `json:"total_views"`
		ArticleComments    int       `json:"article_comments"`
		ConfessionComments int       `json:"confession_comments"`
		TotalComments      int       `json:"total_comments"`
		Weekly             Window    `json:"weekly"`
		Monthly            Window    `json:"monthly"`
		ComputedAt         time.Time `json:"computed_at"`
	}
)

// Compute derives the statistics from in as of now.
//
// Users count when active; ActiveUsers are the active users who logged in at least once.
// Comment aggregates are kept apart per target kind, TotalComments sums them.
func Compute(in Input, now time.Time) Snapshot {
	activeUsers := lo.Filter(in.Users, func(u user.User, _ int) bool { return u.IsActive })

	snap := Snapshot{
		TotalUsers:         len(activeUsers),
		ActiveUsers:        lo.CountBy(activeUsers, func(u user.User) bool { return u.LastLogin.Valid }),
		TotalArticles:      len(in.Articles),
		PublishedArticles:  lo.CountBy(in.Articles, func(a article.Article) bool { return a.IsPublished() }),
		TotalConfessions:   len(in.Confessions),
		TotalViews:         lo.SumBy(in.Articles, func(a article.Article) int { return a.Views }),
		ArticleComments:    len(in.ArticleComments),
		ConfessionComments: len(in.ConfessionComments),
		ComputedAt:         now,
	}
	snap.TotalLikes = lo.SumBy(in.Articles, func(a article.Article) int { return a.Likes }) +
		lo.SumBy(in.Confessions, func(c confession.Confession) int { return c.Likes })
	snap.TotalComments = snap.ArticleComments + snap.ConfessionComments

	articleComments := countByTarget(in.ArticleComments)
	confessionComments := countByTarget(in.ConfessionComments)
	snap.Weekly = window(in, now.Add(-Week), articleComments, confessionComments)
	snap.Monthly = window(in, now.Add(-Month), articleComments, confessionComments)
	return snap
}

// window counts the items created strictly after since.
func window(in Input, since time.Time, articleComments, confessionComments map[string]int) Window {
	var win Window
	for _, a := range in.Articles {
		if a.CreatedAt.After(since) {
			win.NewArticles++
			if a.IsPublished() {
				win.ArticlesPublished++
			}
			win.Engagement += a.Likes + articleComments[a.ID]
		}
	}
	for _, c := range in.Confessions {
		if c.CreatedAt.After(since) {
			win.NewConfessions++
			win.Engagement += c.Likes + confessionComments[c.ID]
		}
	}
	win.NewUsers = lo.CountBy(in.Users, func(u user.User) bool { return u.CreatedAt.After(since) })
	return win
}

func countByTarget(comments []comment.Comment) map[string]int {
	counts := make(map[string]int, len(comments))
	for _, c := range comments {
		counts[c.TargetID]++
	}
	return counts
}
