package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Noofbiz/scribeData/datasets"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Parse the raw ink and label files into the training cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := requireOptions()
			if err != nil {
				return err
			}

			path := opts.CachePath()
			if force {
				if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("remove cache: %w", err)
				}
			}

			raw, err := datasets.EnsureCache(path, opts.BuildOptions())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cache: %s (%d samples)\n", path, raw.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Rebuild the cache even when it exists")

	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Pair and parse every raw file without writing the cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := requireOptions()
			if err != nil {
				return err
			}

			raw, err := datasets.Build(opts.BuildOptions())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d samples\n", raw.Len())
			return nil
		},
	}
}
