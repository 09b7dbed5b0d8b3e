package user

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Umairism/Teachers-Club/core"
)

var (
	// errors
	ErrNotFound           = errors.New("user not found")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidInviteCode  = errors.New("invalid invite code")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account deactivated")
	ErrRoleNotAllowed     = errors.New("not enough rights to set this role")
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists if another user than excludedUsers uses email.
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name or User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetUser(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUser(ctx context.Context, id string) (bool, error)
	}

	// AvatarResolver finds a public avatar for an email address.
	AvatarResolver interface {
		Resolve(ctx context.Context, email string) (string, error)
	}

	Service struct {
		repo    Repository
		auditor core.Auditor
		mailSvc core.EmailService
		avatars AvatarResolver
		conf    *core.Config
		logger  core.Logger
	}
)

func NewService(repo Repository, auditor core.Auditor, mailSvc core.EmailService, conf *core.Config, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		mailSvc: mailSvc,
		conf:    conf,
		logger:  logger,
	}
}

// WithAvatars makes registration look up a default profile picture.
func (svc *Service) WithAvatars(avatars AvatarResolver) *Service {
	svc.avatars = avatars
	return svc
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewFieldError("email", ErrEmailExists)
		}
		return errors.Wrap(err, "checking email uniqueness")
	}
	return nil
}

// Register signs a user up. The invite code decides the user's role.
func (svc *Service) Register(ctx context.Context, reg Registration) (User, error) {
	role, ok := svc.conf.Users.InviteRole(reg.InviteCode)
	if !ok || RolePriority(role) == 0 {
		return User{}, core.NewFieldError("invite_code", ErrInvalidInviteCode)
	}
	if err := svc.checkUniqueness(ctx, reg.Email); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Name:      reg.Name,
		Email:     reg.Email,
		Role:      role,
		Bio:       reg.Bio,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(reg.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	if svc.avatars != nil {
		if url, err := svc.avatars.Resolve(ctx, usr.Email); err != nil {
			svc.logger.Warn(fmt.Sprintf("resolving avatar: %v", err), err)
		} else {
			usr.ProfilePictureURL = url
		}
	}

	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

// Create lets a user manager create a user with any role up to their own.
func (svc *Service) Create(ctx context.Context, nu NewUser, actor User) (User, error) {
	if !CanManageUsers(actor) {
		return User{}, core.ErrPermissionDenied
	}
	if !CanAssignRole(actor, nu.Role) {
		return User{}, core.NewFieldError("role", ErrRoleNotAllowed)
	}
	if err := svc.checkUniqueness(ctx, nu.Email); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		Bio:       nu.Bio,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}

	svc.auditor.LogAction(ctx, actor.ID, core.ActionCreateUser, core.TargetUser, usr.ID, fmt.Sprintf("role=%s", usr.Role))
	svc.sendWelcomeMail(usr)
	return usr, nil
}

// Authenticate checks the user's credentials and records the login.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !usr.IsActive {
		return User{}, ErrAccountDeactivated
	}
	return svc.SetLastLogin(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = null.TimeFrom(time.Now().UTC())
	usr, err := svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "setting last login")
	}
	return usr, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	return svc.repo.QueryUsers(ctx, filter, core.CleanOrdering(ordering, OrderingFields...))
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Update modifies a user. Users may edit their own profile; only user managers may edit others,
// change roles, emails or the active flag. Changes made by user managers are audited.
func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser, actor User) (User, error) {
	usr, err := svc.repo.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}

	isManager := CanManageUsers(actor)
	if !actor.IsActive || (actor.ID != usr.ID && !isManager) {
		return User{}, core.ErrPermissionDenied
	}
	if uu.changesPrivileges(usr) && !isManager {
		return User{}, core.ErrPermissionDenied
	}
	if uu.Role != "" && uu.Role != usr.Role && !CanAssignRole(actor, uu.Role) {
		return User{}, core.NewFieldError("role", ErrRoleNotAllowed)
	}
	if uu.Email != "" && uu.Email != usr.Email {
		if err = svc.checkUniqueness(ctx, uu.Email, usr); err != nil {
			return User{}, err
		}
	}

	changes := make([]string, 0, 4)
	if uu.Name != "" && uu.Name != usr.Name {
		usr.Name = uu.Name
		changes = append(changes, "name")
	}
	if uu.Email != "" && uu.Email != usr.Email {
		usr.Email = uu.Email
		changes = append(changes, "email")
	}
	if uu.Bio != nil {
		usr.Bio = *uu.Bio
		changes = append(changes, "bio")
	}
	if uu.ProfilePictureURL != nil {
		usr.ProfilePictureURL = *uu.ProfilePictureURL
		changes = append(changes, "profile_picture_url")
	}
	if uu.Role != "" && uu.Role != usr.Role {
		changes = append(changes, fmt.Sprintf("role=%s->%s", usr.Role, uu.Role))
		usr.Role = uu.Role // permissions follow the role
	}
	if uu.IsActive != nil && *uu.IsActive != usr.IsActive {
		usr.IsActive = *uu.IsActive
		changes = append(changes, fmt.Sprintf("is_active=%t", usr.IsActive))
	}
	if uu.Password != "" {
		if err = usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
		changes = append(changes, "password")
	}
	usr.UpdatedAt = time.Now().UTC()

	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "updating user")
	}
	if isManager {
		svc.auditor.LogAction(ctx, actor.ID, core.ActionUpdateUser, core.TargetUser, usr.ID, strings.Join(changes, ", "))
	}
	return usr, nil
}

// ResetPassword sets a new password for the user with the given email.
func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

// Delete removes a user according to the configured deletion policy:
// soft (default) deactivates the account, hard removes it.
// Returns false if the user does not exist or the actor is not allowed to delete them.
func (svc *Service) Delete(ctx context.Context, id string, actor User) (bool, error) {
	// Say No to Suicide! actor cannot delete themselves
	if !CanManageUsers(actor) || actor.ID == id {
		return false, nil
	}
	usr, err := svc.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "finding user")
	}
	if RolePriority(usr.Role) > RolePriority(actor.Role) {
		return false, nil
	}

	policy := svc.conf.Users.DeletionPolicy
	switch policy {
	case core.DeletionHard:
		deleted, err := svc.repo.DeleteUser(ctx, id)
		if err != nil {
			return false, errors.Wrap(err, "deleting user")
		}
		if !deleted {
			return false, nil
		}
	default:
		policy = core.DeletionSoft
		usr.IsActive = false
		usr.UpdatedAt = time.Now().UTC()
		if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
			return false, errors.Wrap(err, "deactivating user")
		}
	}

	svc.auditor.LogAction(ctx, actor.ID, core.ActionDeleteUser, core.TargetUser, id, fmt.Sprintf("policy=%s email=%s", policy, usr.Email))
	return true, nil
}

func (svc *Service) sendWelcomeMail(usr User) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to Teacher's Club",
		TemplateName: "welcome",
		TemplateData: usr,
	})
}
