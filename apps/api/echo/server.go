package echoapi

import (
	"context"
	"net/http"
	"os"
	"syscall"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/article"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/confession"
	"github.com/Umairism/Teachers-Club/core/moderation"
	"github.com/Umairism/Teachers-Club/core/reaction"
	"github.com/Umairism/Teachers-Club/core/stats"
	"github.com/Umairism/Teachers-Club/core/user"
	mediasvc "github.com/Umairism/Teachers-Club/services/media"
)

const visitorIdleTimeout = 10 * time.Minute

type (
	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		Validate   *validator.Validate
		Translator ut.Translator

		UserSvc       *user.Service
		ArticleSvc    *article.Service
		ConfessionSvc *confession.Service
		CommentSvc    *comment.Service
		ReactionSvc   *reaction.Service
		ModerationSvc *moderation.Service
		StatsSvc      *stats.Service
		StatsPoller   *stats.Collector // optional, /stats computes a fresh snapshot without it
		MediaSvc      *mediasvc.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		addr     string
		shutdown chan os.Signal
		deps     *Deps
		app      *echo.Echo
		limiter  *ipRateLimiter
		done     chan struct{}
	}
)

var _ Server = (*server)(nil)

// NewServer builds the API. shutdown, when not nil, is signaled if a handler hits a shutdown error.
func NewServer(addr string, shutdown chan os.Signal, deps *Deps) Server {
	s := &server{
		addr:     addr,
		shutdown: shutdown,
		deps:     deps,
		app:      echo.New(),
		limiter:  newIPRateLimiter(deps.Conf.Server.AuthRateLimit, deps.Conf.Server.AuthRateBurst),
		done:     make(chan struct{}),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.Logger())
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.BodyLimit("6M"))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home(conf.AppName))
	if conf.Media.Backend == mediasvc.BackendLocal && conf.Media.Dir != "" {
		s.app.Static(conf.Media.BaseURL, conf.Media.Dir)
	}

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))
	authed := []echo.MiddlewareFunc{jwt, userMiddleware(s.deps.UserSvc)}

	registerAuthAPI(v1, jwt, s.limiter.middleware(), s.deps)
	registerUserAPI(v1, authed, s.deps)
	registerArticleAPI(v1, authed, s.deps)
	registerConfessionAPI(v1, authed, s.deps)
	registerCommentAPI(v1, authed, s.deps)
	registerReactionAPI(v1, authed, s.deps)
	registerModerationAPI(v1, authed, s.deps)
	registerStatsAPI(v1, authed, s.deps)
}

func (s *server) Start() error {
	go s.forgetVisitors()
	return s.app.Start(s.addr)
}

func (s *server) Stop(ctx context.Context) error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) signalShutdown() {
	if s.shutdown != nil {
		s.shutdown <- syscall.SIGTERM
	}
}

func (s *server) forgetVisitors() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.limiter.cleanup(visitorIdleTimeout)
		}
	}
}

func home(appName string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "Welcome to "+appName+" API!")
	}
}
