package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vango-dev/enginepoll/pkg/payload"
	"github.com/vango-dev/enginepoll/pkg/server"
)

// buildInfo describes this binary and the wire formats it speaks.
type buildInfo struct {
	Version   string
	Commit    string
	Date      string
	GoVersion string
	Platform  string
	Protocols []int
	Modes     []payload.Mode
}

func currentBuild() buildInfo {
	return buildInfo{
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Protocols: []int{server.ProtocolV3, server.ProtocolV4},
		Modes:     []payload.Mode{payload.ModeV4, payload.ModeV3Binary, payload.ModeV3String},
	}
}

func (b buildInfo) write(w io.Writer) {
	protocols := make([]string, len(b.Protocols))
	for i, p := range b.Protocols {
		protocols[i] = fmt.Sprintf("EIO=%d", p)
	}
	modes := make([]string, len(b.Modes))
	for i, m := range b.Modes {
		modes[i] = m.String()
	}

	fmt.Fprintf(w, "enginepoll %s (commit %s, built %s)\n", b.Version, b.Commit, b.Date)
	fmt.Fprintf(w, "  runtime:   %s %s\n", b.GoVersion, b.Platform)
	fmt.Fprintf(w, "  protocols: %s\n", strings.Join(protocols, ", "))
	fmt.Fprintf(w, "  payloads:  %s\n", strings.Join(modes, ", "))
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and supported protocols",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), version)
				return
			}
			currentBuild().write(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")

	return cmd
}
