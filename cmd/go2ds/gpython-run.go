package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/spf13/cobra"

	_ "github.com/2x3systems/go2ds/pyds"
	_ "github.com/go-python/gpython/stdlib"
)

// kStartupScript is run in the REPL's module before the first prompt, if present.
const kStartupScript = "lib/_REPL_startup.py"

func newRunCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "run [script.py]",
		Short: "Runs a gpython script with the _pyds module, or a REPL if no script is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pathname := ""
			if len(args) > 0 {
				pathname = args[0]
			}
			return goGpython(cmd, pathname)
		},
	}
}

func goGpython(cmd *cobra.Command, pathname string) error {
	ctx := py.NewContext(py.DefaultContextOpts())

	var err error
	if len(pathname) == 0 {
		replCtx := repl.New(ctx)
		if _, statErr := os.Stat(kStartupScript); statErr == nil {
			_, err = py.RunFile(ctx, kStartupScript, py.CompileOpts{}, replCtx.Module)
		}
		if err == nil {
			cli.RunREPL(replCtx)
		}
	} else {
		startTime := time.Now()
		fmt.Fprintf(cmd.OutOrStdout(), "<<<>>>   executing '%s'   <<<>>>\n", pathname)

		_, err = py.RunFile(ctx, pathname, py.CompileOpts{}, nil)
		if err == nil {
			elapsed := time.Since(startTime)
			fmt.Fprintf(cmd.OutOrStdout(), "<<<>>>   execution complete: %v   <<<>>>\n", elapsed)
		}
	}

	ctx.Close()
	<-ctx.Done()

	if err != nil {
		py.TracebackDump(err)
	}
	return err
}
