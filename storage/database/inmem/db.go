package inmemdb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/article"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/confession"
	"github.com/Umairism/Teachers-Club/core/moderation"
	"github.com/Umairism/Teachers-Club/core/reaction"
	"github.com/Umairism/Teachers-Club/core/user"
)

type (
	DB struct {
		user       *userTable
		article    *articleTable
		confession *confessionTable
		comment    map[string]*commentTable // {kind: table}
		like       *likeTable
		reaction   *reactionTable
		report     *reportTable
		adminLog   *adminLogTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	articleTable struct {
		sync.RWMutex
		table map[string]*article.Article
	}

	confessionTable struct {
		sync.RWMutex
		table map[string]*confession.Confession
	}

	commentTable struct {
		sync.RWMutex
		table map[string]*comment.Comment
	}

	likeKey struct {
		userID, targetType, targetID string
	}

	likeTable struct {
		sync.Mutex
		table map[likeKey]time.Time
	}

	reactionTable struct {
		sync.RWMutex
		table map[string]*reaction.Reaction
	}

	reportTable struct {
		sync.RWMutex
		table map[string]*moderation.Report
	}

	adminLogTable struct {
		sync.RWMutex
		table []moderation.AdminLog
	}
)

// Open returns an empty in-memory database.
func Open() *DB {
	return &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		article:    &articleTable{table: make(map[string]*article.Article)},
		confession: &confessionTable{table: make(map[string]*confession.Confession)},
		comment: map[string]*commentTable{
			comment.KindArticle:    {table: make(map[string]*comment.Comment)},
			comment.KindConfession: {table: make(map[string]*comment.Comment)},
		},
		like:     &likeTable{table: make(map[likeKey]time.Time)},
		reaction: &reactionTable{table: make(map[string]*reaction.Reaction)},
		report:   &reportTable{table: make(map[string]*moderation.Report)},
		adminLog: &adminLogTable{},
	}
}

// author looks up the public profile of a user, nil if the user is gone.
func (db *DB) author(id string) *user.Author {
	db.user.RLock()
	defer db.user.RUnlock()
	if usr, ok := db.user.table[id]; ok {
		return usr.AsAuthor()
	}
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// sortByOrdering sorts items by each ordering in turn, falling back to fallback when ordering is empty.
// compare returns a negative number when a sorts before b on field, ascending.
func sortByOrdering[T any](items []T, ordering []core.DBOrdering, fallback core.DBOrdering, compare func(a, b T, field string) int) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{fallback}
	}
	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range ordering {
			c := compare(items[i], items[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compareStrings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

func compareTimes(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}
