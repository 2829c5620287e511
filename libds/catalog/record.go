package catalog

import (
	"math"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

const (
	kMajorVers = 2024
	kMinorVers = 1
)

const (
	flagMaximal = 1 << iota
	flagOriented
)

// catalogState is the catalog header: version and a symbol count per geometry.
type catalogState struct {
	MajorVers  uint64
	MinorVers  uint64
	NumSymbols [3]uint64 // indexed by geometryIndex
}

func geometryIndex(g go2ds.Geometry) int {
	return int(g) + 1
}

func (state *catalogState) Marshal() []byte {
	buf := proto.NewBuffer(make([]byte, 0, 32))
	buf.EncodeVarint(state.MajorVers)
	buf.EncodeVarint(state.MinorVers)
	for _, n := range state.NumSymbols {
		buf.EncodeVarint(n)
	}
	return buf.Bytes()
}

func (state *catalogState) Unmarshal(val []byte) error {
	buf := proto.NewBuffer(val)
	var err error
	if state.MajorVers, err = buf.DecodeVarint(); err != nil {
		return errors.Wrap(go2ds.ErrUnmarshal, "catalog state")
	}
	if state.MinorVers, err = buf.DecodeVarint(); err != nil {
		return errors.Wrap(go2ds.ErrUnmarshal, "catalog state")
	}
	for i := range state.NumSymbols {
		if state.NumSymbols[i], err = buf.DecodeVarint(); err != nil {
			return errors.Wrap(go2ds.ErrUnmarshal, "catalog state")
		}
	}
	return nil
}

// marshalInfo appends the value stored for a symbol.
func marshalInfo(info *go2ds.SymbolInfo, out []byte) []byte {
	buf := proto.NewBuffer(out)
	buf.EncodeVarint(uint64(info.Size))
	buf.EncodeZigzag64(uint64(info.Geometry))
	buf.EncodeFixed64(math.Float64bits(info.Curvature))
	buf.EncodeFixed64(math.Float64bits(info.Chi))
	buf.EncodeFixed64(math.Float64bits(info.Defect))
	buf.EncodeZigzag64(uint64(info.Euler))
	buf.EncodeVarint(uint64(info.Freedom))
	buf.EncodeFixed64(math.Float64bits(info.Radius))
	buf.EncodeStringBytes(info.GroupName)

	flags := uint64(0)
	if info.Maximal {
		flags |= flagMaximal
	}
	if info.Oriented {
		flags |= flagOriented
	}
	buf.EncodeVarint(flags)
	return buf.Bytes()
}

func unmarshalInfo(val []byte, info *go2ds.SymbolInfo) error {
	buf := proto.NewBuffer(val)

	var x [8]uint64
	var err error
	decoders := [8]func() (uint64, error){
		buf.DecodeVarint,
		buf.DecodeZigzag64,
		buf.DecodeFixed64,
		buf.DecodeFixed64,
		buf.DecodeFixed64,
		buf.DecodeZigzag64,
		buf.DecodeVarint,
		buf.DecodeFixed64,
	}
	for i, decode := range decoders {
		if x[i], err = decode(); err != nil {
			return errors.Wrap(go2ds.ErrUnmarshal, "symbol info")
		}
	}
	name, err := buf.DecodeStringBytes()
	if err != nil {
		return errors.Wrap(go2ds.ErrUnmarshal, "symbol name")
	}
	flags, err := buf.DecodeVarint()
	if err != nil {
		return errors.Wrap(go2ds.ErrUnmarshal, "symbol flags")
	}

	*info = go2ds.SymbolInfo{
		Size:      int32(x[0]),
		Geometry:  go2ds.Geometry(int64(x[1])),
		Curvature: math.Float64frombits(x[2]),
		Chi:       math.Float64frombits(x[3]),
		Defect:    math.Float64frombits(x[4]),
		Euler:     int32(int64(x[5])),
		Freedom:   int32(x[6]),
		Radius:    math.Float64frombits(x[7]),
		GroupName: name,
		Maximal:   flags&flagMaximal != 0,
		Oriented:  flags&flagOriented != 0,
	}
	return nil
}

// formSymbolKey appends the key of a symbol: geometry, size (big endian) then the symbol text.
// Keys sort by geometry then size, so a size range is one contiguous scan.
func formSymbolKey(key []byte, g go2ds.Geometry, size int32, text string) []byte {
	key = formSizeKey(key, g, size)
	return append(key, text...)
}

func formSizeKey(key []byte, g go2ds.Geometry, size int32) []byte {
	return append(key, byte(geometryIndex(g)+1), byte(size>>16), byte(size>>8), byte(size))
}
