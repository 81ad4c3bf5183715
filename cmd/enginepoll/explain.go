package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/enginepoll/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe an error code",
		Long: `Print the meaning of an error code such as E102. Without a code,
list every code.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := ""
			if len(args) == 1 {
				code = args[0]
			}
			return runExplain(cmd.OutOrStdout(), code)
		},
	}
}

func runExplain(w io.Writer, code string) error {
	if code == "" {
		for _, c := range errors.GetAllCodes() {
			t, _ := errors.GetTemplate(c)
			fmt.Fprintf(w, "%s  %-8s %s\n", c, t.Category, t.Message)
		}
		return nil
	}

	code = strings.ToUpper(code)
	t, ok := errors.GetTemplate(code)
	if !ok {
		return errors.Newf(errors.CategoryCLI, "unknown error code %q", code).
			WithSuggestion("Run 'enginepoll explain' to list codes")
	}
	fmt.Fprintf(w, "%s: %s\n\n  %s\n", code, t.Message, t.Detail)
	return nil
}
