package go2ds

import (
	"fmt"
	"io"
	"strings"

	"github.com/plan-systems/klog"
)

// SymbolStream is a pipeline stage: entries arrive on Outlet until it is closed.
type SymbolStream struct {
	Outlet chan *SymbolEntry
}

// EntryProcessor fills in or transforms an entry.
// Returning an error drops the entry from the stream.
type EntryProcessor interface {
	ProcessEntry(entry *SymbolEntry) error
}

func NewSymbolStream() *SymbolStream {
	stream := &SymbolStream{
		Outlet: make(chan *SymbolEntry),
	}
	return stream
}

// StreamSymbols emits an entry for each given symbol text.
func StreamSymbols(texts ...string) *SymbolStream {
	next := &SymbolStream{
		Outlet: make(chan *SymbolEntry, 1),
	}

	go func() {
		for _, text := range texts {
			next.Outlet <- &SymbolEntry{Text: text}
		}
		next.Close()
	}()

	return next
}

func (stream *SymbolStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *SymbolStream) PushEntry(entry *SymbolEntry) {
	stream.Outlet <- entry
}

// PullAll drains this stream and returns the number of entries that came through.
func (stream *SymbolStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// Collect drains this stream into a slice.
func (stream *SymbolStream) Collect() []*SymbolEntry {
	var entries []*SymbolEntry
	for entry := range stream.Outlet {
		entries = append(entries, entry)
	}
	return entries
}

// Process runs each entry through proc.
// An entry that fails is reported and skipped; the stream continues with the next entry.
func (stream *SymbolStream) Process(proc EntryProcessor) *SymbolStream {
	next := &SymbolStream{
		Outlet: make(chan *SymbolEntry, 1),
	}

	go func() {
		skipped := 0
		for entry := range stream.Outlet {
			if err := proc.ProcessEntry(entry); err != nil {
				skipped++
				klog.Warningf("skipping %s: %v", entry.Text, err)
				continue
			}
			next.Outlet <- entry
		}
		if skipped > 0 {
			klog.V(2).Infof("%d symbol(s) skipped", skipped)
		}
		next.Close()
	}()

	return next
}

func (stream *SymbolStream) Print(
	out io.Writer,
	opts PrintOpts) *SymbolStream {

	next := &SymbolStream{
		Outlet: make(chan *SymbolEntry, 1),
	}

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		count := 0
		for entry := range stream.Outlet {
			count++
			fmt.Fprintf(&buf, "%06d,", count)
			entry.WriteAsString(&buf, opts)
			buf.WriteByte('\n')
			out.Write([]byte(buf.String()))
			buf.Reset()
			next.Outlet <- entry
		}
		next.Close()
	}()

	return next
}

func (stream *SymbolStream) AddTo(target SymbolAdder) *SymbolStream {
	next := &SymbolStream{
		Outlet: make(chan *SymbolEntry, 1),
	}

	go func() {
		for entry := range stream.Outlet {
			if target.TryAddSymbol(entry) {
				next.Outlet <- entry
			}
		}
		next.Close()
	}()

	return next
}

func SelectFromCatalog(cat Catalog, sel SymbolSelector) *SymbolStream {
	next := &SymbolStream{
		Outlet: make(chan *SymbolEntry, 1),
	}

	onHit := make(chan *SymbolEntry, 4)

	go func() {
		cat.Select(sel, onHit)
		close(onHit)
	}()

	go func() {
		for entry := range onHit {
			if sel.SelectsEntry(entry) {
				next.Outlet <- entry
			}
		}
		next.Close()
	}()

	return next
}

func (stream *SymbolStream) SelectFromStream(sel SymbolSelector) *SymbolStream {
	next := &SymbolStream{
		Outlet: make(chan *SymbolEntry, 1),
	}

	go func() {
		seen := make(map[string]struct{})
		for entry := range stream.Outlet {
			if !sel.SelectsEntry(entry) {
				continue
			}
			if sel.UniqueNames {
				if _, dupe := seen[entry.Info.GroupName]; dupe {
					continue
				}
				seen[entry.Info.GroupName] = struct{}{}
			}
			next.Outlet <- entry
		}
		next.Close()
	}()

	return next
}
