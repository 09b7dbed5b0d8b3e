package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/article"
	"github.com/Umairism/Teachers-Club/core/confession"
	"github.com/Umairism/Teachers-Club/core/moderation"
	"github.com/Umairism/Teachers-Club/core/reaction"
	"github.com/Umairism/Teachers-Club/core/user"
	"github.com/Umairism/Teachers-Club/services/logger"
	"github.com/Umairism/Teachers-Club/storage/database"
	"github.com/Umairism/Teachers-Club/storage/database/gormdb"
)

// Password satisfies the password policy for users whose name & email share no letters with it.
const Password = "Xy7#Qw9$Zk2!"

// OpenDB opens a migrated in-memory SQLite database, closed when the test ends.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(core.NewTestConfig())
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	if err = gormdb.Migrate(db); err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(db); err != nil {
			t.Errorf("database.Close() failed: %v", err)
		}
	})
	return db
}

// NewLogger returns a logger that discards everything.
func NewLogger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), core.NewTestConfig())
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator, _ := ut.New(en.New()).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	article.InitValidators(validate, translator)
	confession.InitValidators(validate, translator)
	reaction.InitValidators(validate, translator)
	moderation.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if err := usr.SetPassword(Password); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// Users creates one active user per role.
type Users struct {
	Admin, Moderator, Teacher, Student user.User
}

func CreateUsers(t *testing.T, repo user.Repository) Users {
	t.Helper()
	return Users{
		Admin:     CreateUser(t, repo, "Alice", "alice@school.edu", user.RoleAdmin, true),
		Moderator: CreateUser(t, repo, "Mona", "mona@school.edu", user.RoleModerator, true),
		Teacher:   CreateUser(t, repo, "Ted", "ted@school.edu", user.RoleTeacher, true),
		Student:   CreateUser(t, repo, "Sam", "sam@school.edu", user.RoleStudent, true),
	}
}
