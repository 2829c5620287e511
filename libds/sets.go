package libds

import (
	"github.com/2x3systems/go2ds/go2ds"
	"github.com/dgraph-io/badger/v3"
	"github.com/plan-systems/klog"
)

// SymbolSet allows adding symbols and returning if an equivalent symbol has already been added.
type SymbolSet interface {

	// TryAdd adds the given symbol if it is not already present.
	//
	// If the canonic form of ds already is in this SymbolSet, this call has no effect and TryAdd() returns false.
	// If ds isn't in this set, ds is added and TryAdd() returns true.
	//
	// After one or more calls to TryAdd(), call Close() for cleanup.
	TryAdd(ds *DSymbol) bool

	// Close removes all previously added items from this set.
	//
	// If you make subsequent calls to TryAdd(), be sure you call Close() when you're done.
	Close()
}

// SymbolSetOpts specifies what two symbols must share to be considered equal.
type SymbolSetOpts struct {
	MaxSymmetry bool // if set, symbols with equal maximal symmetry quotients are considered equal
}

func NewSymbolSet(opts SymbolSetOpts) SymbolSet {
	return &symbolSet{
		opts: opts,
	}
}

type symbolSet struct {
	lsmSet
	opts SymbolSetOpts
}

func (set *symbolSet) TryAdd(ds *DSymbol) bool {
	if set.opts.MaxSymmetry {
		ds = MaxSymmetry(ds)
	}
	key := Canonical(ds).String()
	return set.tryAdd([]byte(key))
}

// NewDropDupes returns a go2ds.SymbolAdder that admits each symbol only once, up to renumbering.
// Entries that do not parse are not admitted.
func NewDropDupes(opts SymbolSetOpts) *DropDupes {
	return &DropDupes{
		set: NewSymbolSet(opts),
	}
}

type DropDupes struct {
	set SymbolSet
}

var _ go2ds.SymbolAdder = (*DropDupes)(nil)

func (dd *DropDupes) TryAddSymbol(entry *go2ds.SymbolEntry) bool {
	ds, err := Parse(entry.Text)
	if err != nil {
		klog.Warningf("skipping %s: %v", entry.Text, err)
		return false
	}
	return dd.set.TryAdd(ds)
}

func (dd *DropDupes) Close() {
	dd.set.Close()
}

type lsmSet struct {
	db *badger.DB
}

func (set *lsmSet) autoOpen() {
	if set.db == nil {
		dbOpts := badger.DefaultOptions("").WithInMemory(true)
		dbOpts.Logger = nil
		dbOpts.MetricsEnabled = false

		var err error
		set.db, err = badger.Open(dbOpts)
		if err != nil {
			panic(err)
		}
	}
}

func (set *lsmSet) tryAdd(key []byte) bool {
	set.autoOpen()

	txn := set.db.NewTransaction(true)
	defer txn.Commit()

	added := false
	_, err := txn.Get(key)
	if err == nil {
		// no-op since the key is already in the db
	} else if err == badger.ErrKeyNotFound {
		err = txn.Set(key, nil)
		added = true
	}

	if err != nil {
		panic(err)
	}

	return added
}

func (set *lsmSet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
}
