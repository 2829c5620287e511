package libds

import (
	"strconv"
	"strings"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// SymbolExpr is the parsed form of "<nr1.nr2:size[ dim]:op0,op1,op2:m01,m12>".
//
// Each op list holds s_i(a) only for the flags a with a <= s_i(a), in increasing order of a.
// Each m list holds one value per orbit, in increasing order of the orbit's smallest flag.
type SymbolExpr struct {
	Nr1  int   `parser:"\"<\" @Int \".\""`
	Nr2  int   `parser:"@Int \":\""`
	Size int   `parser:"@Int"`
	Dim  *int  `parser:"@Int? \":\""`
	Op0  []int `parser:"@Int* \",\""`
	Op1  []int `parser:"@Int* \",\""`
	Op2  []int `parser:"@Int* \":\""`
	M01  []int `parser:"@Int* \",\""`
	M12  []int `parser:"@Int* \">\""`
}

// Numbers only: "1.1" must not lex as a float.
var symbolLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `\d+`},
	{Name: "Punct", Pattern: `[<>.:,]`},
	{Name: "whitespace", Pattern: `\s+`},
})

var parseSymbolExpr = participle.MustBuild[SymbolExpr](
	participle.Lexer(symbolLexer),
)

// Parse reads a symbol from its text form and validates it.
func Parse(text string) (*DSymbol, error) {
	expr, err := parseSymbolExpr.ParseString("", text)
	if err != nil {
		return nil, errors.Wrapf(go2ds.ErrUnmarshal, "%v", err)
	}

	ds, err := expr.build()
	if err != nil {
		return nil, err
	}
	if err = ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// MustParse is Parse for symbols known to be well-formed.
func MustParse(text string) *DSymbol {
	ds, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return ds
}

func (expr *SymbolExpr) build() (*DSymbol, error) {
	n := expr.Size
	if n < 1 || n > go2ds.MaxSize {
		return nil, errors.Wrapf(go2ds.ErrBadEncoding, "size %d", n)
	}

	ds := New(n)
	ds.Nr1 = int32(expr.Nr1)
	ds.Nr2 = int32(expr.Nr2)
	if expr.Dim != nil {
		if *expr.Dim != Dim {
			return nil, errors.Wrapf(go2ds.ErrBadEncoding, "dimension %d not supported", *expr.Dim)
		}
		ds.dim = int32(*expr.Dim)
	}

	for i, list := range [NumOps][]int{expr.Op0, expr.Op1, expr.Op2} {
		pos := 0
		for a := Flag(1); int(a) <= n; a++ {
			if ds.ops[i][a-1] != 0 {
				continue
			}
			if pos >= len(list) {
				return nil, errors.Wrapf(go2ds.ErrBadEncoding, "op%d: too few entries", i)
			}
			b := Flag(list[pos])
			pos++
			if int(b) > n {
				return nil, errors.Wrapf(go2ds.ErrBadIndex, "op%d: s%d(%d) = %d", i, i, a, b)
			}
			if b < a || ds.ops[i][b-1] != 0 {
				return nil, errors.Wrapf(go2ds.ErrBadInvolution, "op%d: s%d(%d) = %d", i, i, a, b)
			}
			ds.SetOp(i, a, b)
		}
		if pos != len(list) {
			return nil, errors.Wrapf(go2ds.ErrBadEncoding, "op%d: too many entries", i)
		}
	}

	for p, list := range [2][]int{expr.M01, expr.M12} {
		i, j := p, p+1
		pos := 0
		var err error
		ds.ForEachOrbit(i, j, func(rep Flag, orbit []Flag) {
			if err != nil {
				return
			}
			if pos >= len(list) {
				err = errors.Wrapf(go2ds.ErrBadEncoding, "m%d%d: too few entries", i, j)
				return
			}
			for _, x := range orbit {
				ds.m[p][x-1] = int32(list[pos])
			}
			pos++
		})
		if err != nil {
			return nil, err
		}
		if pos != len(list) {
			return nil, errors.Wrapf(go2ds.ErrBadEncoding, "m%d%d: too many entries", i, j)
		}
	}

	return ds, nil
}

// String returns the text form of ds; Parse(ds.String()) reproduces ds.
func (ds *DSymbol) String() string {
	var buf strings.Builder
	buf.Grow(32 + 8*ds.Size())
	ds.appendTo(&buf)
	return buf.String()
}

func (ds *DSymbol) appendTo(buf *strings.Builder) {
	n := ds.Size()

	buf.WriteByte('<')
	buf.WriteString(strconv.Itoa(int(ds.Nr1)))
	buf.WriteByte('.')
	buf.WriteString(strconv.Itoa(int(ds.Nr2)))
	buf.WriteByte(':')
	buf.WriteString(strconv.Itoa(n))
	if ds.dim != 0 {
		buf.WriteByte(' ')
		buf.WriteString(strconv.Itoa(int(ds.dim)))
	}
	buf.WriteByte(':')

	for i := 0; i < NumOps; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		first := true
		for a := Flag(1); int(a) <= n; a++ {
			b := ds.Op(i, a)
			if b < a {
				continue
			}
			if !first {
				buf.WriteByte(' ')
			}
			first = false
			buf.WriteString(strconv.Itoa(int(b)))
		}
	}
	buf.WriteByte(':')

	for p := 0; p < 2; p++ {
		if p > 0 {
			buf.WriteByte(',')
		}
		first := true
		ds.ForEachOrbit(p, p+1, func(rep Flag, _ []Flag) {
			if !first {
				buf.WriteByte(' ')
			}
			first = false
			buf.WriteString(strconv.Itoa(int(ds.m[p][rep-1])))
		})
	}
	buf.WriteByte('>')
}
