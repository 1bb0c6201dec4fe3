package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var cache bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove the saved permutation and cursor",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := requireOptions()
			if err != nil {
				return err
			}

			if err := opts.Store().Clear(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "iterator state cleared")

			if cache {
				if err := os.Remove(opts.CachePath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("remove cache: %w", err)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cache removed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cache, "cache", false, "Also remove the training cache")

	return cmd
}
