package main

import (
	"context"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	// the password policy applies to admins too
	uu := user.UpdateUser{Name: usr.Name, Email: usr.Email, Password: pwd, PasswordConfirm: pwd}
	if err = uu.Validate(cli.validate); err != nil {
		return err
	}
	return cli.usrSvc.ResetPassword(ctx, email, pwd)
}

func (cli *commandLine) setRole(email, role string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	role = core.CleanString(role, true /* lower */)
	if user.RolePriority(role) == 0 {
		return errInvalidRole
	}
	usr.Role = role
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
