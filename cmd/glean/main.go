// glean: capture the selection in any application, and type generated
// answers back into it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.design/x/hotkey/mainthread"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

// main hands the OS main thread to window and hotkey calls; on macOS it
// also runs the application event loop hotkeys are delivered on.
// Everything else runs in run.
func main() { mainthread.Init(run) }

func run() {
	root := &cobra.Command{
		Use:   "glean",
		Short: "Selection capture and auto-input daemon",
		Long: `glean captures the text selected in whatever application has focus
and types generated responses back into it through the clipboard.

Run "glean daemon" once per desktop session. Press the capture hotkey with
text selected to cache it and open the popup; front-ends talk to the
daemon with the remaining commands.

Config file search order (first found wins):
  /etc/glean/glean.toml
  $HOME/.config/glean/glean.toml
  path supplied via --config

All flags can be set via GLEAN_<FLAG> env vars or config-file keys.
See "glean daemon --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newDaemonCmd(),
		newSelectedCmd(),
		newCachedCmd(),
		newStreamCmd(),
		newTypeCmd(),
		newClickCmd(),
		newCopyCmd(),
		newHideCmd(),
		newFocusCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("glean %s\n", Version)
		},
	}
}
