package go2ds

import (
	"fmt"
	"io"
	"math"
)

const (

	// MaxSize is the largest symbol (number of flags) the catalog and grammar accept.
	MaxSize = 1 << 16

	// SolverIterations caps the regula falsi radius search.
	SolverIterations = 1000
)

// Geometry names the model a fundamental domain is realized in, selected by the sign of its curvature.
type Geometry int8

const (
	Hyperbolic Geometry = -1
	Euclidean  Geometry = 0
	Spherical  Geometry = 1
)

func (g Geometry) String() string {
	switch g {
	case Hyperbolic:
		return "hyperbolic"
	case Spherical:
		return "spherical"
	}
	return "euclidean"
}

// GeometryOf returns the Geometry selected by a curvature value, treating |crv| <= tol as flat.
func GeometryOf(crv, tol float64) Geometry {
	switch {
	case crv < -tol:
		return Hyperbolic
	case crv > tol:
		return Spherical
	}
	return Euclidean
}

// SymbolInfo summarizes the invariants of a processed Delaney symbol.
type SymbolInfo struct {
	Size      int32    // number of flags
	Geometry  Geometry // model the domain is realized in
	Curvature float64  // crv: sum of 1/m over flags minus the flag count
	Chi       float64  // orbifold Euler characteristic (crv/2)
	Defect    float64  // def: pi * sum((1 - 2/i) * s) over corners
	Euler     int32    // chr: Euler characteristic of the underlying surface
	Freedom   int32    // fre: degrees of freedom
	Radius    float64  // rad: canonical domain radius
	GroupName string   // Conway orbifold signature
	Maximal   bool     // true if no proper quotient symbol exists
	Oriented  bool     // true if the symmetry group preserves orientation
}

// SymbolEntry is a Delaney symbol in canonical text form together with its invariants.
type SymbolEntry struct {
	Text string
	Info SymbolInfo
}

// OnSymbolHit is a callback proc used to return symbols meeting a set of selection criteria.
// Ownership of an entry also travels through the channel.
type OnSymbolHit chan<- *SymbolEntry

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs to be closed then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}

// CatalogOpts specifies params for opening a symbol Catalog
type CatalogOpts struct {
	DbPathName string // omit for in-memory db
	ReadOnly   bool   // open in read-only mode
}

type SymbolAdder interface {

	// Tries to add the given entry to this catalog.
	// If true is returned, the entry's text did not exist and was added.
	TryAddSymbol(entry *SymbolEntry) bool
}

// Catalog wraps a database of processed Delaney symbols.
type Catalog interface {
	SymbolAdder

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// NumSymbols returns the number of symbols in this catalog realized in the given geometry.
	NumSymbols(geom Geometry) int64

	// Select fires the given callback with each entry that meets the selection criteria.
	Select(sel SymbolSelector, onHit OnSymbolHit)

	Close() error
}

// SymbolSelector is an operator that either selects a given entry or not.
type SymbolSelector struct {
	Geometries  []Geometry // if non-empty, only these geometries are selected
	MinSize     int32      // lower size bound
	MaxSize     int32      // upper size bound
	GroupName   string     // if set, only entries with this orbifold name
	MaximalOnly bool       // only select maximal symmetry symbols
	UniqueNames bool       // only select the first entry for each orbifold name
}

// DefaultSymbolSelector selects all entries.
var DefaultSymbolSelector = SymbolSelector{
	MinSize: 1,
	MaxSize: MaxSize,
}

// SelectsEntry is a convenience function used to see if an entry is selected according to a SymbolSelector.
// UniqueNames is not evaluated here since it depends on what was already selected.
func (sel *SymbolSelector) SelectsEntry(entry *SymbolEntry) bool {
	info := &entry.Info
	if info.Size < sel.MinSize || info.Size > sel.MaxSize {
		return false
	}
	if sel.MaximalOnly && !info.Maximal {
		return false
	}
	if len(sel.GroupName) > 0 && sel.GroupName != info.GroupName {
		return false
	}
	if len(sel.Geometries) > 0 {
		for _, g := range sel.Geometries {
			if g == info.Geometry {
				return true
			}
		}
		return false
	}
	return true
}

// PrintOpts specifies what is printed when printing a symbol entry
type PrintOpts struct {
	Label      string // Prefix label
	Symbol     bool   // If set, prints the symbol text
	Name       bool   // If set, prints the orbifold name
	Invariants bool   // If set, prints curvature, characteristic, defect and freedom
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{
	Symbol:     true,
	Name:       true,
	Invariants: true,
}

func (entry *SymbolEntry) WriteAsString(out io.Writer, opts PrintOpts) {
	if len(opts.Label) > 0 {
		fmt.Fprintf(out, "%s ", opts.Label)
	}
	if opts.Symbol {
		fmt.Fprintf(out, "%s ", entry.Text)
	}
	info := &entry.Info
	if opts.Name {
		fmt.Fprintf(out, "%-10s ", info.GroupName)
	}
	if opts.Invariants {
		fmt.Fprintf(out, "%-10s crv=%+.6f chi=%+.6f def=%.6f chr=%d fre=%d",
			info.Geometry, info.Curvature, info.Chi, info.Defect, info.Euler, info.Freedom)
		if !math.IsNaN(info.Radius) {
			fmt.Fprintf(out, " rad=%.9f", info.Radius)
		}
	}
}
