package main

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

func printVersion(w io.Writer) {
	version, goVersion, revision, dirty := buildInfo()
	fmt.Fprintf(w, "refstore %s\n", version)
	fmt.Fprintf(w, "  Go version: %s\n", goVersion)
	fmt.Fprintf(w, "  Revision:   %s\n", revision)
	if dirty {
		fmt.Fprintf(w, "  Modified:   true\n")
	}
}

func buildInfo() (version, goVersion, revision string, dirty bool) {
	version, goVersion, revision = "unknown", "unknown", "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}
