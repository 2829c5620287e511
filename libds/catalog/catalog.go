package catalog

import (
	"bytes"
	"runtime"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/dgraph-io/badger/v3"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

/***

Catalog database format:

	gCatalogStateKey => catalogState

	SymbolKey := geometry (byte, 1..3), size (3 bytes big endian), canonical symbol text
	SymbolKey => SymbolInfo

Symbols are grouped by geometry and sorted by size within a geometry, so selecting a geometry and a
size range is a single seek and scan per geometry.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

// catalog is a badger wrapper holding processed Delaney symbols.
type catalog struct {
	ctx        go2ds.CatalogContext
	readOnly   bool
	stateDirty bool
	state      catalogState
	db         *badger.DB
}

// OpenCatalog opens (or creates) the catalog at opts.DbPathName and attaches it to ctx.
func OpenCatalog(ctx go2ds.CatalogContext, opts go2ds.CatalogOpts) (go2ds.Catalog, error) {
	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // not needed so disable for performance
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(go2ds.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	// Once the db is open, the catalog ctx is blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = !cat.readOnly
		cat.state.MajorVers = kMajorVers
		cat.state.MinorVers = kMinorVers
	}
	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Wrapf(go2ds.ErrCatalogIncompatible, "found v%d.%d", cat.state.MajorVers, cat.state.MinorVers)
	}
	if err != nil {
		cat.Close()
		return nil, err
	}

	return cat, nil
}

func (cat *catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cat.state.Unmarshal(val)
		})
	})
}

func (cat *catalog) flushState() {
	if !cat.stateDirty || cat.db == nil {
		return
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gCatalogStateKey, cat.state.Marshal())
	})
	if err != nil {
		panic(err)
	}
	cat.stateDirty = false
}

func (cat *catalog) Close() error {
	cat.flushState()
	if cat.db != nil {
		cat.db.Close()
		cat.db = nil
		cat.ctx.DetachCatalog(cat)
		cat.ctx = nil
	}
	return nil
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) NumSymbols(g go2ds.Geometry) int64 {
	i := geometryIndex(g)
	if i < 0 || i >= len(cat.state.NumSymbols) {
		return 0
	}
	return int64(cat.state.NumSymbols[i])
}

// TryAddSymbol adds the given entry if its text is not already present.
//
// If true is returned, the entry was not present and was added.
// The entry text is expected to already be in canonical form; see libds.DropDupes.
func (cat *catalog) TryAddSymbol(entry *go2ds.SymbolEntry) bool {
	if cat.readOnly || len(entry.Text) == 0 {
		return false
	}
	info := &entry.Info
	key := formSymbolKey(nil, info.Geometry, info.Size, entry.Text)

	txn := cat.db.NewTransaction(true)
	defer txn.Discard()

	_, err := txn.Get(key)
	if err == nil {
		return false
	}
	if err != badger.ErrKeyNotFound {
		panic(err)
	}

	if err = txn.Set(key, marshalInfo(info, nil)); err == nil {
		err = txn.Commit()
	}
	if err != nil {
		panic(err)
	}

	cat.state.NumSymbols[geometryIndex(info.Geometry)]++
	cat.stateDirty = true
	return true
}

// Select sends each entry matching sel to onHit, ordered by geometry then size.
//
// Entries are sent in key order, so with sel.UniqueNames the smallest symbol of each name is the one sent.
func (cat *catalog) Select(sel go2ds.SymbolSelector, onHit go2ds.OnSymbolHit) {
	geoms := sel.Geometries
	if len(geoms) == 0 {
		geoms = []go2ds.Geometry{go2ds.Hyperbolic, go2ds.Euclidean, go2ds.Spherical}
	}

	var seen *redblacktree.Tree
	if sel.UniqueNames {
		seen = redblacktree.NewWithStringComparator()
	}

	txn := cat.db.NewTransaction(false)
	defer txn.Discard()

	for _, g := range geoms {
		if geometryIndex(g) < 0 || geometryIndex(g) > 2 {
			continue
		}
		var keyBuf [8]byte
		prefix := formSizeKey(keyBuf[:0], g, 0)[:1]
		minKey := formSizeKey(nil, g, sel.MinSize)

		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   300,
			Prefix:         prefix,
		})

		for it.Seek(minKey); it.Valid(); it.Next() {
			item := it.Item()
			key := item.Key()
			if !bytes.HasPrefix(key, prefix) || len(key) < 4 {
				break
			}
			size := int32(key[1])<<16 | int32(key[2])<<8 | int32(key[3])
			if size > sel.MaxSize {
				break
			}

			entry := &go2ds.SymbolEntry{
				Text: string(key[4:]),
			}
			err := item.Value(func(val []byte) error {
				return unmarshalInfo(val, &entry.Info)
			})
			if err != nil {
				klog.Warningf("skipping catalog entry %s: %v", entry.Text, err)
				continue
			}
			if !sel.SelectsEntry(entry) {
				continue
			}
			if seen != nil {
				if _, dupe := seen.Get(entry.Info.GroupName); dupe {
					continue
				}
				seen.Put(entry.Info.GroupName, struct{}{})
			}
			onHit <- entry
		}
		it.Close()
	}
}
