package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vango-dev/enginepoll/internal/config"
	"github.com/vango-dev/enginepoll/internal/errors"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default enginepoll.json",
		Long: `Write enginepoll.json with every setting at its default value into
the current directory. serve picks the file up automatically.

Examples:
  enginepoll init
  enginepoll init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := runInit(".", force)
			if err != nil {
				return err
			}
			success("Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

// runInit writes the default config into dir and returns its path.
func runInit(dir string, force bool) (string, error) {
	if config.Exists(dir) && !force {
		return "", errors.New(errors.ConfigExists).
			WithField(filepath.Join(dir, config.ConfigFileName)).
			WithSuggestion("Pass --force to overwrite it")
	}

	cfg := config.New()
	if err := cfg.SaveTo(filepath.Join(dir, config.ConfigFileName)); err != nil {
		return "", err
	}
	return cfg.File(), nil
}
