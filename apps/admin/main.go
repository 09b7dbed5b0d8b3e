package main

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/stats"
	"github.com/Umairism/Teachers-Club/core/user"
	logsvc "github.com/Umairism/Teachers-Club/services/logger"
	"github.com/Umairism/Teachers-Club/storage/database"
	"github.com/Umairism/Teachers-Club/storage/database/gormdb"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(false)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}

	validate := validator.New()
	translator, _ := ut.New(en.New()).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(conf.Users.CommonPasswordsPath, logger)

	usrRepo := gormdb.NewUserRepository(db)
	commentRepo := gormdb.NewCommentRepository(db)

	// start CLI
	cli := commandLine{
		db:      db,
		usrRepo: usrRepo,
		usrSvc:  user.NewService(usrRepo, nil, nil, conf, logger),
		statsSvc: stats.NewService(
			usrRepo,
			gormdb.NewArticleRepository(db),
			gormdb.NewConfessionRepository(db),
			commentRepo,
			logger,
		),
		validate: validate,
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	if cErr := database.Close(db); cErr != nil {
		logger.Error(fmt.Sprintf("closing database: %v", cErr), cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
