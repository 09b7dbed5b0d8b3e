package user

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/Umairism/Teachers-Club/core"
)

// Roles
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleTeacher   = "teacher"
	RoleStudent   = "student"
)

var (
	AllRoles = []string{RoleAdmin, RoleModerator, RoleTeacher, RoleStudent}

	rolePriorities = map[string]int{
		RoleAdmin:     40,
		RoleModerator: 30,
		RoleTeacher:   20,
		RoleStudent:   10,
	}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Moderator", Value: RoleModerator},
		{Name: "Admin", Value: RoleAdmin},
	}
)

func RolePriority(role string) int {
	return rolePriorities[role]
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Role              string    `json:"role"`
	IsActive          bool      `json:"is_active"`
	Bio               string    `json:"bio"`
	ProfilePictureURL string    `json:"profile_picture_url"`
	PasswordHash      []byte    `json:"-"`
	LastLogin         null.Time `json:"last_login"`
	CreatedAt         time.Time `json:"created_at"` // UTC
	UpdatedAt         time.Time `json:"updated_at"` // UTC
}

// MarshalJSON adds the permissions derived from the user's current role.
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		Permissions Permissions `json:"permissions"`
	}{alias(u), u.Permissions()})
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) Permissions() Permissions {
	return PermissionsFor(u.Role)
}

func (u User) IsAdmin() bool     { return u.Role == RoleAdmin }
func (u User) IsModerator() bool { return u.Role == RoleModerator }
func (u User) IsTeacher() bool   { return u.Role == RoleTeacher }
func (u User) IsStudent() bool   { return u.Role == RoleStudent }

// AsAuthor returns the public profile attached to the content the user authored.
func (u User) AsAuthor() *Author {
	return &Author{
		ID:                u.ID,
		Name:              u.Name,
		Role:              u.Role,
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

// Author is the public part of a User, resolved at read time for articles, confessions & comments.
type Author struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Role              string `json:"role"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
}

// Registration contains information needed for a User to sign up with an invite code.
type Registration struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	InviteCode      string `json:"invite_code" validate:"required"`
	Bio             string `json:"bio" validate:"max=500"`
}

func (r *Registration) Validate(validate *validator.Validate) error {
	r.Name = core.CleanString(r.Name)
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.InviteCode = core.CleanString(r.InviteCode)
	r.Bio = core.CleanString(r.Bio)
	return validate.Struct(r)
}

// NewUser contains information needed by an admin to create a new User.
type NewUser struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,role"`
	Bio             string `json:"bio" validate:"max=500"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	nu.Bio = core.CleanString(nu.Bio)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Role, IsActive & Email may only be changed by users who can manage users.
type UpdateUser struct {
	Name              string  `json:"name" validate:"max=100"`
	Email             string  `json:"email" validate:"omitempty,email"`
	Bio               *string `json:"bio" validate:"omitempty,max=500"`
	ProfilePictureURL *string `json:"profile_picture_url" validate:"omitempty,max=2048"`
	Role              string  `json:"role" validate:"omitempty,role"`
	IsActive          *bool   `json:"is_active"`
	Password          string  `json:"password" validate:"omitempty"`
	PasswordConfirm   string  `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Name = core.CleanString(uu.Name)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.Role = core.CleanString(uu.Role, true /* lower */)
	if uu.Bio != nil {
		bio := core.CleanString(*uu.Bio)
		uu.Bio = &bio
	}
	return validate.Struct(uu)
}

// changesPrivileges reports whether the update touches fields reserved to user managers.
func (uu UpdateUser) changesPrivileges(orig User) bool {
	return (uu.Role != "" && uu.Role != orig.Role) ||
		(uu.IsActive != nil && *uu.IsActive != orig.IsActive) ||
		(uu.Email != "" && uu.Email != orig.Email)
}

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// OrderingFields are the fields users can be ordered by.
var OrderingFields = []string{"name", "email", "role", "is_active", "created_at", "last_login"}
