package go2ds

import "errors"

// Errors
var (
	ErrUnmarshal           = errors.New("unmarshal failed")
	ErrBadCatalogParam     = errors.New("bad catalog param")
	ErrBadConfig           = errors.New("bad config setting")
	ErrBadEncoding         = errors.New("bad symbol encoding")
	ErrBadIndex            = errors.New("flag, edge, or orbit index out of range")
	ErrBadInvolution       = errors.New("operation is not an involution")
	ErrBadEdgeType         = errors.New("bad edge type")
	ErrBrokenEdges         = errors.New("bad or inconsistent edge configuration")
	ErrBadValence          = errors.New("node does not have exactly 3 incident edges")
	ErrBadRotationOrder    = errors.New("rotation order is not a multiple of the orbit length")
	ErrInconsistentOrder   = errors.New("rotation order is not constant on an orbit")
	ErrDisconnected        = errors.New("glued node count does not match symbol size")
	ErrNoBoundary          = errors.New("no unglued edge to start boundary tracing")
	ErrNoSplitEdge         = errors.New("no edge available to cut a rotation orbit")
	ErrNoCorner            = errors.New("no boundary corner in a non-spherical domain")
	ErrInconsistentEuler   = errors.New("euler characteristic cross-check failed")
	ErrNilSymbol           = errors.New("nil symbol")
	ErrEmptySymbol         = errors.New("symbol has no flags")
	ErrCatalogIncompatible = errors.New("catalog version is incompatible")
)
