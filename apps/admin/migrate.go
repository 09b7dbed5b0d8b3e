package main

import (
	"fmt"

	"github.com/pkg/errors"
)

func (cli *commandLine) migrate() error {
	if err := migrateFunc(cli.db); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	_, _ = fmt.Fprintln(cli.out, "database schema is up to date")
	return nil
}
