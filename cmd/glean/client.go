package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/glean/internal/crypto"
	"go.klb.dev/glean/internal/dispatch"
	"go.klb.dev/glean/internal/ipc"
	"go.klb.dev/glean/internal/message"
)

const dialTimeout = 5 * time.Second

// clientCmd builds a command that talks to a running daemon. run receives
// a connected client.
func clientCmd(use, short string, args cobra.PositionalArgs, run func(*cobra.Command, *viper.Viper, *dispatch.Client, []string) error) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Args:    args,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE: func(cmd *cobra.Command, a []string) error {
			c, err := dialDaemon(cmd, v)
			if err != nil {
				return err
			}
			defer c.Close()
			return run(cmd, v, c, a)
		},
	}
	f := cmd.Flags()
	f.String("server", "", "daemon TCP address (default: local IPC socket)")
	f.String("token", "", "shared secret for --server")
	addConfigFlag(cmd)
	return cmd
}

// dialDaemon connects over IPC unless --server is given.
func dialDaemon(cmd *cobra.Command, v *viper.Viper) (*dispatch.Client, error) {
	if !cmd.Flags().Changed("server") {
		conn, err := ipc.Dial()
		if err != nil {
			return nil, fmt.Errorf("no local glean daemon at %s: %w", ipc.SocketPath(), err)
		}
		return dispatch.NewClient(conn, nil), nil
	}

	addr := v.GetString("server")
	key, err := crypto.DeriveKey(v.GetString("token"))
	if err != nil {
		return nil, fmt.Errorf("key derivation: %w", err)
	}
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return dispatch.NewClient(conn, key), nil
}

// textArg returns the joined args, or stdin when there are none.
func textArg(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func newSelectedCmd() *cobra.Command {
	return clientCmd("selected", "Capture and print the current selection", cobra.NoArgs,
		func(_ *cobra.Command, _ *viper.Viper, c *dispatch.Client, _ []string) error {
			text, err := c.GetSelected()
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		})
}

func newCachedCmd() *cobra.Command {
	return clientCmd("cached", "Print the selection captured by the last gesture", cobra.NoArgs,
		func(_ *cobra.Command, _ *viper.Viper, c *dispatch.Client, _ []string) error {
			text, err := c.GetCached()
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		})
}

func newStreamCmd() *cobra.Command {
	cmd := clientCmd("stream", "Type stdin into the captured window as it arrives", cobra.NoArgs,
		func(_ *cobra.Command, _ *viper.Viper, c *dispatch.Client, _ []string) error {
			// Each chunk is sent as the full text so far; the daemon types
			// only what is new.
			var sofar []byte
			sent := 0
			buf := make([]byte, 4096)
			for {
				n, err := os.Stdin.Read(buf)
				if n > 0 {
					sofar = append(sofar, buf[:n]...)
					if end := completeRunes(sofar); end > sent {
						if serr := c.AutoInput(validText(sofar[:end])); serr != nil {
							return serr
						}
						sent = end
					}
				}
				if err == io.EOF {
					if len(sofar) > sent {
						return c.AutoInput(validText(sofar))
					}
					return nil
				}
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}
		})
	cmd.Long = `Reads stdin and streams it into the window that had focus at the last
capture gesture. Pipe a generator's output here to watch it being typed.`
	return cmd
}

// completeRunes returns the length of the longest prefix of b that does not
// end in a rune split across reads. Invalid bytes count as complete.
func completeRunes(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return i
			}
			break
		}
	}
	return len(b)
}

func validText(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

func newTypeCmd() *cobra.Command {
	return clientCmd("type [text...]", "Hide the popup and type text (args or stdin) into the captured window", cobra.ArbitraryArgs,
		func(_ *cobra.Command, _ *viper.Viper, c *dispatch.Client, args []string) error {
			text, err := textArg(args)
			if err != nil {
				return err
			}
			return c.RunAutoInput(text)
		})
}

func newClickCmd() *cobra.Command {
	cmd := clientCmd("click", "Run a popup action: paste prompt and selection into the main window and send", cobra.NoArgs,
		func(_ *cobra.Command, v *viper.Viper, c *dispatch.Client, _ []string) error {
			return c.SelectClick(message.Select{
				Label:    v.GetString("label"),
				Prompt:   v.GetString("prompt"),
				Selected: v.GetString("selected"),
			})
		})
	f := cmd.Flags()
	f.String("label", "", "action label, for logs")
	f.String("prompt", "", "prompt template (default: template of the configured mode)")
	f.String("selected", "", "selection to use if none can be captured")
	return cmd
}

func newCopyCmd() *cobra.Command {
	return clientCmd("copy [text...]", "Put text (args or stdin) on the clipboard", cobra.ArbitraryArgs,
		func(_ *cobra.Command, _ *viper.Viper, c *dispatch.Client, args []string) error {
			text, err := textArg(args)
			if err != nil {
				return err
			}
			return c.Copy(text)
		})
}

func newHideCmd() *cobra.Command {
	return clientCmd("hide", "Hide the popup", cobra.NoArgs,
		func(_ *cobra.Command, _ *viper.Viper, c *dispatch.Client, _ []string) error {
			return c.Hide()
		})
}

func newFocusCmd() *cobra.Command {
	cmd := clientCmd("focus", "Report a window focus change to the daemon", cobra.NoArgs,
		func(_ *cobra.Command, v *viper.Viper, c *dispatch.Client, _ []string) error {
			return c.Focus(v.GetString("window"), v.GetBool("focused"))
		})
	cmd.Long = `Forwards a focus event from the window toolkit. The popup hides itself
when it is reported as having lost focus.`
	f := cmd.Flags()
	f.String("window", "select", "window identifier")
	f.Bool("focused", false, "whether the window gained focus")
	return cmd
}

func newStatusCmd() *cobra.Command {
	cmd := clientCmd("status", "Show daemon status", cobra.NoArgs,
		func(_ *cobra.Command, v *viper.Viper, c *dispatch.Client, _ []string) error {
			st, err := c.Status()
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			if v.GetBool("json") {
				enc, _ := json.MarshalIndent(st, "", "  ")
				fmt.Println(string(enc))
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "version\t%s\n", st.Version)
			fmt.Fprintf(tw, "mode\t%s\n", st.Mode)
			fmt.Fprintf(tw, "clipboard\t%s\n", st.Clipboard)
			fmt.Fprintf(tw, "foreground\t%#x\n", st.Foreground)
			fmt.Fprintf(tw, "popup\t%s\n", st.Popup)
			fmt.Fprintf(tw, "streaming\t%t\n", st.Streaming)
			fmt.Fprintf(tw, "cached selection\t%t\n", st.HasCached)
			return tw.Flush()
		})
	cmd.Flags().Bool("json", false, "output raw JSON")
	return cmd
}
