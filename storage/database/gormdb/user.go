package gormdb

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/user"
)

type userRepository struct {
	db *gorm.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *gorm.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo userRepository) toModel(usr user.User) userModel {
	return userModel{
		ID:                usr.ID,
		Email:             usr.Email,
		Name:              usr.Name,
		Role:              usr.Role,
		IsActive:          usr.IsActive,
		Bio:               usr.Bio,
		ProfilePictureURL: usr.ProfilePictureURL,
		PasswordHash:      usr.PasswordHash,
		LastLogin:         timePtr(usr.LastLogin),
		CreatedAt:         usr.CreatedAt.UTC(),
		UpdatedAt:         usr.UpdatedAt.UTC(),
	}
}

func (repo userRepository) fromModel(m userModel) user.User {
	return user.User{
		ID:                m.ID,
		Email:             m.Email,
		Name:              m.Name,
		Role:              m.Role,
		IsActive:          m.IsActive,
		Bio:               m.Bio,
		ProfilePictureURL: m.ProfilePictureURL,
		PasswordHash:      m.PasswordHash,
		LastLogin:         nullTime(m.LastLogin),
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

// trapNotFound maps gorm's "record not found" err to user.ErrNotFound
func (repo userRepository) trapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	q := repo.db.WithContext(ctx).Model(&userModel{}).Where("email = ?", strings.ToLower(email))
	if len(excludedUsers) > 0 {
		q = q.Where("id NOT IN ?", lo.Map(excludedUsers, func(u user.User, _ int) string { return u.ID }))
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	m := repo.toModel(usr)
	if err := repo.db.WithContext(ctx).Create(&m).Error; err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.fromModel(m), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	q := repo.db.WithContext(ctx)

	if filter != nil {
		// users with Name or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + strings.ToLower(filter.Search) + "%"
			q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", val, val)
		}
		if len(filter.Roles) > 0 {
			q = q.Where("role IN ?", filter.Roles)
		}
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			q = q.Where("created_at >= ?", filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			q = q.Where("created_at <= ?", filter.CreatedTo.UTC())
		}
	}
	q = applyOrdering(q, ordering, "name ASC")

	var rows []userModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return lo.Map(rows, func(m userModel, _ int) user.User { return repo.fromModel(m) }), nil
}

func (repo userRepository) GetUser(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	var m userModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return user.User{}, repo.trapNotFound(err, "finding user by ID")
	}
	return repo.fromModel(m), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var m userModel
	if err := repo.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&m).Error; err != nil {
		return user.User{}, repo.trapNotFound(err, "finding user by email")
	}
	return repo.fromModel(m), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	m := repo.toModel(usr)
	res := repo.db.WithContext(ctx).Model(&userModel{ID: usr.ID}).Select("*").Updates(&m)
	if res.Error != nil {
		return user.User{}, errors.Wrap(res.Error, "updating user")
	}
	if res.RowsAffected == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.fromModel(m), nil
}

func (repo userRepository) DeleteUser(ctx context.Context, id string) (bool, error) {
	res := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&userModel{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "deleting user")
	}
	return res.RowsAffected > 0, nil
}

// applyOrdering orders the query by the (whitelisted) ordering, or by fallback.
func applyOrdering(q *gorm.DB, ordering []core.DBOrdering, fallback string) *gorm.DB {
	if len(ordering) == 0 {
		return q.Order(fallback)
	}
	for _, ord := range ordering {
		q = q.Order(ord.String())
	}
	return q
}
