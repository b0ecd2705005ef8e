package main

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"prism/src/procsignal"
)

func newCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close <pid>",
		Short: "Ask a running prism to close its window",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			pid, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Errorf("pid %q is not a number", args[0])
			}
			return procsignal.RequestClose(pid)
		},
	}
}
