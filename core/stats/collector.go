package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Umairism/Teachers-Club/core"
)

// Collector polls the statistics and publishes them as prometheus gauges.
type Collector struct {
	svc      *Service
	interval time.Duration
	logger   core.Logger

	totals *prometheus.GaugeVec
	growth *prometheus.GaugeVec

	mu     sync.RWMutex
	latest Snapshot
}

func NewCollector(svc *Service, interval time.Duration, reg prometheus.Registerer, logger core.Logger) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		svc:      svc,
		interval: interval,
		logger:   logger,
		totals: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "teachersclub_total",
			Help: "Community totals.",
		}, []string{"metric"}),
		growth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "teachersclub_growth",
			Help: "Community growth over a rolling window.",
		}, []string{"window", "metric"}),
	}
}

// Run collects the statistics every interval until ctx is done.
func (c *Collector) Run(ctx context.Context) error {
	c.collect(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.collect(ctx)
		}
	}
}

// Latest returns the last collected snapshot.
func (c *Collector) Latest() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.latest
}

func (c *Collector) collect(ctx context.Context) {
	snap, err := c.svc.Snapshot(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error(fmt.Sprintf("collecting stats: %v", err), err)
		}
		return
	}

	c.mu.Lock()
	c.latest = snap
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Collector) publish(snap Snapshot) {
	for name, val := range map[string]int{
		"users":               snap.TotalUsers,
		"active_users":        snap.ActiveUsers,
		"articles":            snap.TotalArticles,
		"published_articles":  snap.PublishedArticles,
		"confessions":         snap.TotalConfessions,
		"likes":               snap.TotalLikes,
		"views":               snap.TotalViews,
		"article_comments":    snap.ArticleComments,
		"confession_comments": snap.ConfessionComments,
		"comments":            snap.TotalComments,
	} {
		c.totals.WithLabelValues(name).Set(float64(val))
	}

	for window, win := range map[string]Window{"weekly": snap.Weekly, "monthly": snap.Monthly} {
		c.growth.WithLabelValues(window, "new_articles").Set(float64(win.NewArticles))
		c.growth.WithLabelValues(window, "articles_published").Set(float64(win.ArticlesPublished))
		c.growth.WithLabelValues(window, "new_confessions").Set(float64(win.NewConfessions))
		c.growth.WithLabelValues(window, "new_users").Set(float64(win.NewUsers))
		c.growth.WithLabelValues(window, "engagement").Set(float64(win.Engagement))
	}
}
