package domain

import (
	"fmt"
	"io"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/2x3systems/go2ds/libds"
)

// Domain is a Delaney symbol together with its glued and realized fundamental domain.
type Domain struct {
	Symbol     *libds.DSymbol
	Graph      *Graph
	Invariants Invariants
	Coords     *Coords
	Passes     int // relaxation passes made by Realize, 0 if not realized

	cfg go2ds.Config
}

// NewDomain builds, glues and indexes the domain of ds.  The domain is not yet realized.
func NewDomain(ds *libds.DSymbol, cfg go2ds.Config) (*Domain, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	g, err := BuildGraph(ds)
	if err != nil {
		return nil, err
	}
	inv, err := Glue(g, cfg)
	if err != nil {
		return nil, err
	}
	co, err := NewCoords(g)
	if err != nil {
		return nil, err
	}
	inv.Fdl = int32(co.Fdl)

	return &Domain{
		Symbol:     ds,
		Graph:      g,
		Invariants: inv,
		Coords:     co,
		cfg:        cfg,
	}, nil
}

// Realize places the domain in its model geometry.
func (dom *Domain) Realize() error {
	passes, err := Approximate(dom.Graph, &dom.Invariants, dom.Coords, dom.cfg)
	if err != nil {
		return err
	}
	dom.Passes = passes
	return nil
}

// Info returns the domain's invariants in catalog form.
func (dom *Domain) Info() go2ds.SymbolInfo {
	inv := &dom.Invariants
	return go2ds.SymbolInfo{
		Size:      int32(dom.Symbol.Size()),
		Geometry:  inv.Geometry,
		Curvature: inv.Crv,
		Chi:       inv.Chi,
		Defect:    inv.Def,
		Euler:     inv.Chr,
		Freedom:   inv.Fre,
		Radius:    inv.Rad,
		GroupName: inv.Name,
		Maximal:   libds.IsMaximalSymmetry(dom.Symbol),
		Oriented:  dom.Symbol.IsOriented(),
	}
}

// WriteCoords writes one line per drawable point: kind, id, x, y.
func (dom *Domain) WriteCoords(out io.Writer) {
	co := dom.Coords
	for ni := range co.Nodes {
		nc := &co.Nodes[ni]
		fmt.Fprintf(out, "node  %4d %+.9f %+.9f\n", nc.Node, nc.P.X, nc.P.Y)
	}
	for _, side := range co.Sides {
		fmt.Fprintf(out, "edge  %4d %+.9f %+.9f\n", side.Edge, side.P.X, side.P.Y)
	}
	for _, run := range co.Runs {
		fmt.Fprintf(out, "orbit %4d %+.9f %+.9f\n", run.Orbit, run.P.X, run.P.Y)
	}
}

// Processor computes the invariants of each entry of a go2ds.SymbolStream.
type Processor struct {
	Config  go2ds.Config
	Realize bool // if set, also solve for the domain radius
}

var _ go2ds.EntryProcessor = (*Processor)(nil)

// ProcessEntry parses entry.Text, normalizes it and fills in entry.Info.
func (proc *Processor) ProcessEntry(entry *go2ds.SymbolEntry) error {
	ds, err := libds.Parse(entry.Text)
	if err != nil {
		return err
	}
	dom, err := NewDomain(ds, proc.Config)
	if err != nil {
		return err
	}
	if proc.Realize {
		if err = dom.Realize(); err != nil {
			return err
		}
	}
	entry.Text = ds.String()
	entry.Info = dom.Info()
	return nil
}
