package main

import (
	"context"

	"github.com/k0kubun/pp"
	"github.com/pkg/errors"
)

func (cli *commandLine) printStats() error {
	snap, err := cli.statsSvc.Snapshot(context.Background())
	if err != nil {
		return errors.Wrap(err, "computing stats")
	}
	_, err = pp.Fprintln(cli.out, snap)
	return err
}
