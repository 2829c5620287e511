package main

import (
	"fmt"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/2x3systems/go2ds/libds/catalog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newCatalogCmd(st *cliState) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Imports symbols into and selects symbols from a badger catalog",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "catalog directory (defaults to catalog_path from the config)")

	open := func(readOnly bool) (go2ds.CatalogContext, go2ds.Catalog, error) {
		path := dbPath
		if len(path) == 0 {
			path = st.cfg.CatalogPath
		}
		if len(path) == 0 {
			return nil, nil, errors.Wrap(go2ds.ErrBadCatalogParam, "no catalog path given (--db or catalog_path)")
		}
		ctx := go2ds.NewCatalogContext()
		cat, err := catalog.OpenCatalog(ctx, go2ds.CatalogOpts{
			DbPathName: path,
			ReadOnly:   readOnly,
		})
		if err != nil {
			ctx.Close()
			return nil, nil, err
		}
		return ctx, cat, nil
	}
	closeAll := func(ctx go2ds.CatalogContext) {
		ctx.Close()
		<-ctx.Done()
	}

	var sf symbolsFlags
	importCmd := &cobra.Command{
		Use:   "import [symbol ...]",
		Short: "Processes symbols and adds the new ones to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cat, err := open(false)
			if err != nil {
				return err
			}
			defer closeAll(ctx)

			stream, done, err := sf.stream(cmd, st.cfg, args)
			if err != nil {
				return err
			}
			added := stream.AddTo(cat).PullAll()
			done()

			fmt.Fprintf(cmd.OutOrStdout(), "%d symbol(s) added: %d hyperbolic, %d euclidean, %d spherical in catalog\n",
				added,
				cat.NumSymbols(go2ds.Hyperbolic),
				cat.NumSymbols(go2ds.Euclidean),
				cat.NumSymbols(go2ds.Spherical))
			return nil
		},
	}
	sf.register(importCmd)

	sel := go2ds.DefaultSymbolSelector
	var geometry string
	opts := go2ds.DefaultPrintOpts
	selectCmd := &cobra.Command{
		Use:   "select",
		Short: "Prints the catalog symbols matching the given criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel.Geometries = sel.Geometries[:0]
			if len(geometry) > 0 {
				g, err := parseGeometry(geometry)
				if err != nil {
					return err
				}
				sel.Geometries = append(sel.Geometries, g)
			}
			if sel.MinSize > sel.MaxSize {
				return errors.Wrapf(go2ds.ErrBadCatalogParam, "min-size %d > max-size %d", sel.MinSize, sel.MaxSize)
			}

			ctx, cat, err := open(true)
			if err != nil {
				return err
			}
			defer closeAll(ctx)

			count := go2ds.SelectFromCatalog(cat, sel).Print(cmd.OutOrStdout(), opts).PullAll()
			fmt.Fprintf(cmd.ErrOrStderr(), "%d symbol(s) selected\n", count)
			return nil
		},
	}
	selectCmd.Flags().StringVar(&geometry, "geometry", "", "hyperbolic, euclidean or spherical")
	selectCmd.Flags().Int32Var(&sel.MinSize, "min-size", sel.MinSize, "smallest symbol size")
	selectCmd.Flags().Int32Var(&sel.MaxSize, "max-size", sel.MaxSize, "largest symbol size")
	selectCmd.Flags().StringVar(&sel.GroupName, "name", "", "only symbols with this orbifold name")
	selectCmd.Flags().BoolVar(&sel.MaximalOnly, "maximal", false, "only maximal symmetry symbols")
	selectCmd.Flags().BoolVar(&sel.UniqueNames, "unique-names", false, "only the smallest symbol of each orbifold name")

	cmd.AddCommand(importCmd, selectCmd)
	return cmd
}

func parseGeometry(name string) (go2ds.Geometry, error) {
	for _, g := range []go2ds.Geometry{go2ds.Hyperbolic, go2ds.Euclidean, go2ds.Spherical} {
		if g.String() == name {
			return g, nil
		}
	}
	return 0, errors.Wrapf(go2ds.ErrBadCatalogParam, "unknown geometry %q", name)
}
