package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof on the default mux
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	echoapi "github.com/Umairism/Teachers-Club/apps/api/echo"
	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/article"
	"github.com/Umairism/Teachers-Club/core/comment"
	"github.com/Umairism/Teachers-Club/core/confession"
	"github.com/Umairism/Teachers-Club/core/moderation"
	"github.com/Umairism/Teachers-Club/core/reaction"
	"github.com/Umairism/Teachers-Club/core/stats"
	"github.com/Umairism/Teachers-Club/core/user"
	avatarsvc "github.com/Umairism/Teachers-Club/services/avatar"
	emailsvc "github.com/Umairism/Teachers-Club/services/email"
	logsvc "github.com/Umairism/Teachers-Club/services/logger"
	mediasvc "github.com/Umairism/Teachers-Club/services/media"
	"github.com/Umairism/Teachers-Club/storage/database"
	"github.com/Umairism/Teachers-Club/storage/database/gormdb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	defer logger.Close()

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = database.Close(db); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// set up services
	var mailSvc *emailsvc.Service
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	defer mailSvc.Wait()

	storage, err := mediasvc.NewStorage(conf.Media)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up media storage: %v", err), err)
	}

	usrRepo := gormdb.NewUserRepository(db)
	articleRepo := gormdb.NewArticleRepository(db)
	confessionRepo := gormdb.NewConfessionRepository(db)
	commentRepo := gormdb.NewCommentRepository(db)

	modSvc := moderation.NewService(gormdb.NewModerationRepository(db), logger)
	commentSvc := comment.NewService(commentRepo, modSvc, logger)
	usrSvc := user.NewService(usrRepo, modSvc, mailSvc, conf, logger)
	if conf.Avatars.Enabled {
		gravatar := avatarsvc.NewGravatar(conf.Avatars)
		defer func() { _ = gravatar.Close() }()
		usrSvc.WithAvatars(gravatar)
	}
	statsSvc := stats.NewService(usrRepo, articleRepo, confessionRepo, commentRepo, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	article.InitValidators(validate, translator)
	confession.InitValidators(validate, translator)
	reaction.InitValidators(validate, translator)
	moderation.InitValidators(validate, translator)

	user.LoadCommonPasswords(conf.Users.CommonPasswordsPath, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// =========================================================================
	// Start Stats Collector

	collector := stats.NewCollector(statsSvc, conf.Stats.Interval, prometheus.DefaultRegisterer, logger)
	go func() {
		if err := collector.Run(ctx); err != nil {
			logger.Error(fmt.Sprintf("stats collector stopped: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.
	// /metrics - Prometheus metrics, community statistics included.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	http.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(conf.Server.Address(), shutdown, &echoapi.Deps{
		Conf:          conf,
		Logger:        logger,
		Validate:      validate,
		Translator:    translator,
		UserSvc:       usrSvc,
		ArticleSvc:    article.NewService(articleRepo, commentSvc, modSvc, logger),
		ConfessionSvc: confession.NewService(confessionRepo, commentSvc, modSvc, logger),
		CommentSvc:    commentSvc,
		ReactionSvc:   reaction.NewService(gormdb.NewReactionRepository(db), logger),
		ModerationSvc: modSvc,
		StatsSvc:      statsSvc,
		StatsPoller:   collector,
		MediaSvc:      mediasvc.NewService(storage, conf.Media.MaxUploadSize),
	})

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("API listening on %s", conf.Server.Address()))
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			logger.Error(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		cancel()

		// give outstanding requests a deadline for completion
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancelShutdown()

		if err = server.Stop(shutdownCtx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB(conf *core.Config) (*gorm.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = gormdb.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
