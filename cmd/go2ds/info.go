package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/2x3systems/go2ds/libds"
	"github.com/2x3systems/go2ds/libds/domain"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

// symbolsFlags selects where symbols are read from: the command line, a file, or both.
type symbolsFlags struct {
	file    string
	realize bool
	unique  bool
	maxSym  bool
}

func (sf *symbolsFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&sf.file, "file", "f", "", "read symbols from a file, one per line ('-' for stdin)")
	cmd.Flags().BoolVar(&sf.realize, "realize", true, "solve for the domain radius and relax coordinates")
	cmd.Flags().BoolVar(&sf.unique, "unique", false, "drop symbols equal up to renumbering")
	cmd.Flags().BoolVar(&sf.maxSym, "max-symmetry", false, "with --unique, drop symbols with equal maximal symmetry quotients")
}

// stream emits every symbol given on the command line and in sf.file, then processes and
// optionally dedupes them.  The returned func closes what the stream opened.
func (sf *symbolsFlags) stream(cmd *cobra.Command, cfg go2ds.Config, args []string) (*go2ds.SymbolStream, func(), error) {
	texts := append([]string{}, args...)
	if len(sf.file) > 0 {
		var in io.Reader = cmd.InOrStdin()
		if sf.file != "-" {
			file, err := os.Open(sf.file)
			if err != nil {
				return nil, nil, err
			}
			defer file.Close()
			in = file
		}
		more, err := readSymbols(in)
		if err != nil {
			return nil, nil, err
		}
		texts = append(texts, more...)
	}

	proc := &domain.Processor{
		Config:  cfg,
		Realize: sf.realize,
	}
	stream := go2ds.StreamSymbols(texts...).Process(proc)
	done := func() {}
	if sf.unique {
		dupes := libds.NewDropDupes(libds.SymbolSetOpts{MaxSymmetry: sf.maxSym})
		stream = stream.AddTo(dupes)
		done = dupes.Close
	}
	klog.V(2).Infof("read %d symbol(s)", len(texts))
	return stream, done, nil
}

// readSymbols returns the non-empty lines of in, skipping '#' comments.
func readSymbols(in io.Reader) ([]string, error) {
	var texts []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if len(line) > 0 {
			texts = append(texts, line)
		}
	}
	return texts, scanner.Err()
}

func newInfoCmd(st *cliState) *cobra.Command {
	var sf symbolsFlags
	opts := go2ds.DefaultPrintOpts

	cmd := &cobra.Command{
		Use:   "info [symbol ...]",
		Short: "Prints the orbifold name and invariants of each symbol",
		Long: `Prints the orbifold name and invariants of each symbol.
Symbols that fail to parse or glue are reported and skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stream, done, err := sf.stream(cmd, st.cfg, args)
			if err != nil {
				return err
			}
			count := stream.Print(cmd.OutOrStdout(), opts).PullAll()
			done()
			fmt.Fprintf(cmd.ErrOrStderr(), "%d symbol(s) processed\n", count)
			return nil
		},
	}
	sf.register(cmd)
	cmd.Flags().StringVar(&opts.Label, "label", "", "prefix label for each line")
	cmd.Flags().BoolVar(&opts.Symbol, "symbol", true, "print the symbol text")
	cmd.Flags().BoolVar(&opts.Name, "name", true, "print the orbifold name")
	cmd.Flags().BoolVar(&opts.Invariants, "invariants", true, "print the invariants")
	return cmd
}

func newCoordsCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "coords <symbol>",
		Short: "Realizes the fundamental domain of a symbol and prints its coordinates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := libds.Parse(args[0])
			if err != nil {
				return err
			}
			dom, err := domain.NewDomain(ds, st.cfg)
			if err != nil {
				return err
			}
			if err = dom.Realize(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			entry := go2ds.SymbolEntry{
				Text: ds.String(),
				Info: dom.Info(),
			}
			entry.WriteAsString(out, go2ds.DefaultPrintOpts)
			fmt.Fprintf(out, " fdl=%d passes=%d\n", dom.Invariants.Fdl, dom.Passes)
			dom.WriteCoords(out)
			return nil
		},
	}
}
