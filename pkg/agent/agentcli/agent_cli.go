package agentcli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/neuroplastio/neio-keycore/internal/monitor"
	"github.com/neuroplastio/neio-keycore/pkg/agent"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	dir, err := os.UserConfigDir()
	if err != nil {
		return err
	}
	cmd := NewRootCmd(filepath.Join(dir, "neio-keycore"))
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.ExecuteContext(ctx)
}

type agentProvider func() *agent.Agent

func NewRootCmd(configDir string) *cobra.Command {
	cfg := agent.DefaultConfig(configDir)
	rootCmd := &cobra.Command{
		Use:   "neio-keycore",
		Short: "Neuroplast.io keyboard core",
		Long: `neio-keycore runs the keyboard firmware core on a host: one-shot modifiers,
layers and the heartbeat gated side channel, behind a virtual HID keyboard.`,
		SilenceUsage: true,
	}
	var a *agent.Agent
	agentProvider := func() *agent.Agent {
		return a
	}
	var script string
	rootCmd.PersistentFlags().AddFlagSet(configFlags(&cfg))
	rootCmd.PersistentFlags().StringVar(&script, "script", "", "script file for the script source, stdin when empty")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if script != "" {
			sourceConfig, err := json.Marshal(map[string]string{"path": script})
			if err != nil {
				return err
			}
			cfg.Source = "script"
			cfg.SourceConfig = sourceConfig
		}
		var err error
		a, err = agent.NewAgent(cfg, agent.WithInput(cmd.InOrStdin()))
		return err
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return a.Close()
	}
	rootCmd.AddCommand(NewRun(agentProvider, &cfg))
	rootCmd.AddCommand(NewMonitor(agentProvider))
	rootCmd.AddCommand(NewListDevices(agentProvider))
	rootCmd.AddCommand(NewCaptures(agentProvider))
	rootCmd.AddCommand(NewKeymap(agentProvider))
	return rootCmd
}

func configFlags(cfg *agent.Config) *pflag.FlagSet {
	flags := pflag.NewFlagSet("config", pflag.ExitOnError)
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory")
	flags.StringVar(&cfg.EngineConfig, "engine-config", cfg.EngineConfig, "engine config file, created when missing")
	flags.StringVar(&cfg.Keymap, "keymap", cfg.Keymap, "keymap file (.md or .yml), built-in layout when empty")
	return flags
}

func NewRun(provider agentProvider, cfg *agent.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the firmware",
		Long: `Run the firmware loop. Key events come from a source (a script or an attached
keyboard) and reports leave through a transport (a uhid virtual keyboard by default).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return provider().Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&cfg.Transport, "transport", cfg.Transport, "output transport: uhid, log or memory")
	cmd.Flags().StringVar(&cfg.Source, "source", cfg.Source, "event source: script or hidraw")
	cmd.Flags().BoolVar(&cfg.NKRO, "nkro", cfg.NKRO, "send N-key rollover reports")
	return cmd
}

func NewMonitor(provider agentProvider) *cobra.Command {
	var (
		path   string
		record bool
	)
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Consume the side channel of a keyboard",
		Long: `Arm the side channel of a keyboard running the core and print every shadow
and diagnostic packet as a JSON line. The channel is disarmed on exit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			return provider().Monitor(cmd.Context(), path, record, func(c monitor.Capture) {
				if err := enc.Encode(c); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
				}
			})
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "hidraw path of the raw interface, first found when empty")
	cmd.Flags().BoolVar(&record, "record", false, "store captures in the data directory")
	return cmd
}

func NewListDevices(provider agentProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list-devices",
		Short: "List hidraw devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := provider().Devices()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), devices)
		},
	}
}

func NewCaptures(provider agentProvider) *cobra.Command {
	var (
		limit int
		clearAll bool
	)
	cmd := &cobra.Command{
		Use:   "captures",
		Short: "Show recorded side channel packets",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearAll {
				n, err := provider().ClearCaptures()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d captures\n", n)
				return nil
			}
			captures, err := provider().Captures(limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), captures)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "number of most recent captures to show")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete all captures")
	return cmd
}

func NewKeymap(provider agentProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "keymap",
		Short: "Print the keymap as markdown tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			km, err := provider().Keymap()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(km.Markdown())
			return err
		},
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
