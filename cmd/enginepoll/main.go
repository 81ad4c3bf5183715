package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/enginepoll/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌┐┌┌─┐┬┌┐┌┌─┐┌─┐┌─┐┬  ┬
  ├┤ ││││ ┬││││├┤ ├─┘│ ││  │
  └─┘┘└┘└─┘┴┘└┘└─┘┴  └─┘┴─┘┴─┘
`

func main() {
	if os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stderr) {
		errors.DisableColors()
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		asJSON, _ := root.PersistentFlags().GetBool("json")
		if asJSON {
			errors.FprintJSON(stderr, err)
		} else {
			errors.Fprint(stderr, err)
		}
		return 1
	}
	return 0
}

// isTerminal reports whether f is a character device.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "enginepoll",
		Short: "Engine.IO long-polling server and payload encoder",
		Long: `enginepoll serves engine.io sessions over HTTP long-polling and
websocket, and encodes outbound payloads in the v4, v3 binary and v3
string formats.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Bool("json", false, "Report errors as JSON on stderr")

	root.AddCommand(
		serveCmd(),
		encodeCmd(),
		initCmd(),
		explainCmd(),
		versionCmd(),
	)
	return root
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
