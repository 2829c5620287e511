package catalog_test

import (
	"os"
	"path"
	"testing"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/2x3systems/go2ds/libds"
	"github.com/2x3systems/go2ds/libds/catalog"
	"github.com/2x3systems/go2ds/libds/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var symbols = []string{
	"<1.1:1:1,1,1:7,3>",       // *732
	"<1.1:1:1,1,1:5,4>",       // *542
	"<1.1:2:2,2,2:5,4>",       // 542
	"<1.1:1:1,1,1:4,4>",       // *442
	"<1.1:2:2,2,2:4,4>",       // 442
	"<1.1:2:2,2,2:4,4>",       // 442 again
	"<1.1:1:1,1,1:6,3>",       // *632
	"<1.1:2:2,1 2,1 2:4,4 4>", // *442 on two flags
	"<1.1:1:1,1,1:3,3>",       // *332
	"<1.1:1:1,1,1:5,3>",       // *532
	"<1.1:1:1,1,1:5>",         // bad
}

func fillCatalog(t *testing.T, cat go2ds.Catalog) int {
	proc := &domain.Processor{
		Config:  go2ds.DefaultConfig(),
		Realize: true,
	}
	dupes := libds.NewDropDupes(libds.SymbolSetOpts{})
	defer dupes.Close()

	return go2ds.StreamSymbols(symbols...).
		Process(proc).
		AddTo(dupes).
		AddTo(cat).
		PullAll()
}

func selectAll(cat go2ds.Catalog, sel go2ds.SymbolSelector) []*go2ds.SymbolEntry {
	return go2ds.SelectFromCatalog(cat, sel).Collect()
}

func TestCatalog(t *testing.T) {
	ctx := go2ds.NewCatalogContext()
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	cat, err := catalog.OpenCatalog(ctx, go2ds.CatalogOpts{})
	require.NoError(t, err)
	defer cat.Close()

	require.Equal(t, 9, fillCatalog(t, cat))
	assert.Equal(t, int64(3), cat.NumSymbols(go2ds.Hyperbolic))
	assert.Equal(t, int64(4), cat.NumSymbols(go2ds.Euclidean))
	assert.Equal(t, int64(2), cat.NumSymbols(go2ds.Spherical))

	// nothing new the second time around
	require.Equal(t, 0, fillCatalog(t, cat))

	all := selectAll(cat, go2ds.DefaultSymbolSelector)
	require.Len(t, all, 9)
	for i := 1; i < len(all); i++ {
		a, b := all[i-1].Info, all[i].Info
		assert.True(t, a.Geometry < b.Geometry || (a.Geometry == b.Geometry && a.Size <= b.Size))
	}
	assert.Equal(t, "*542", all[0].Info.GroupName)

	sel := go2ds.DefaultSymbolSelector
	sel.Geometries = []go2ds.Geometry{go2ds.Hyperbolic}
	sel.MaxSize = 1
	hits := selectAll(cat, sel)
	require.Len(t, hits, 2)
	for _, entry := range hits {
		assert.Equal(t, go2ds.Hyperbolic, entry.Info.Geometry)
		assert.True(t, entry.Info.Radius > 0)
	}

	sel = go2ds.DefaultSymbolSelector
	sel.GroupName = "442"
	hits = selectAll(cat, sel)
	require.Len(t, hits, 1)
	assert.Equal(t, "<1.1:2:2,2,2:4,4>", hits[0].Text)
	assert.Equal(t, int32(2), hits[0].Info.Euler)
	assert.True(t, hits[0].Info.Oriented)
	assert.False(t, hits[0].Info.Maximal)

	sel = go2ds.DefaultSymbolSelector
	sel.MaximalOnly = true
	assert.Len(t, selectAll(cat, sel), 6)

	sel = go2ds.DefaultSymbolSelector
	sel.UniqueNames = true
	sel.Geometries = []go2ds.Geometry{go2ds.Euclidean}
	hits = selectAll(cat, sel)
	require.Len(t, hits, 3)
	assert.Equal(t, "*442", hits[0].Info.GroupName)
	assert.Equal(t, int32(1), hits[0].Info.Size)
}

func TestCatalogPersists(t *testing.T) {
	dir, err := os.MkdirTemp("", "go2ds*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	ctx := go2ds.NewCatalogContext()
	opts := go2ds.CatalogOpts{
		DbPathName: path.Join(dir, "TestCatalogPersists"),
	}

	cat, err := catalog.OpenCatalog(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, 9, fillCatalog(t, cat))
	want := selectAll(cat, go2ds.DefaultSymbolSelector)
	require.NoError(t, cat.Close())

	opts.ReadOnly = true
	cat, err = catalog.OpenCatalog(ctx, opts)
	require.NoError(t, err)
	assert.True(t, cat.IsReadOnly())
	assert.Equal(t, int64(4), cat.NumSymbols(go2ds.Euclidean))
	assert.Equal(t, want, selectAll(cat, go2ds.DefaultSymbolSelector))
	assert.False(t, cat.TryAddSymbol(want[0]))

	ctx.Close()
	<-ctx.Done()
}

func TestCatalogParams(t *testing.T) {
	ctx := go2ds.NewCatalogContext()
	defer ctx.Close()

	_, err := catalog.OpenCatalog(ctx, go2ds.CatalogOpts{ReadOnly: true})
	assert.ErrorIs(t, err, go2ds.ErrBadCatalogParam)
}
