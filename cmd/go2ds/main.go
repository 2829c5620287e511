package main

import (
	"flag"
	"os"
	"strconv"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

// cliState is shared by all subcommands once the root's pre-run has loaded the config.
type cliState struct {
	configPath string
	cfg        go2ds.Config
	klogFlags  *flag.FlagSet
}

func newRootCmd() (*cobra.Command, *cliState) {
	st := &cliState{
		cfg:       go2ds.DefaultConfig(),
		klogFlags: flag.NewFlagSet("klog", flag.ContinueOnError),
	}
	klog.InitFlags(st.klogFlags)
	st.klogFlags.Set("logtostderr", "true")

	root := &cobra.Command{
		Use:          "go2ds",
		Short:        "go2ds computes fundamental domains of Delaney-Dress symbols",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := go2ds.LoadConfig(st.configPath)
			if err != nil {
				return err
			}
			st.cfg = cfg
			if !cmd.Flags().Changed("v") {
				st.klogFlags.Set("v", strconv.Itoa(cfg.Verbosity))
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&st.configPath, "config", "", "TOML config file")
	root.PersistentFlags().AddGoFlagSet(st.klogFlags)

	root.AddCommand(newRunCmd(st))
	root.AddCommand(newInfoCmd(st))
	root.AddCommand(newCoordsCmd(st))
	root.AddCommand(newCatalogCmd(st))
	return root, st
}

func main() {
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	root, _ := newRootCmd()
	err := root.Execute()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
