package pyds

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/2x3systems/go2ds/libds"
	"github.com/2x3systems/go2ds/libds/catalog"
	"github.com/2x3systems/go2ds/libds/domain"
	"github.com/go-python/gpython/py"
	"github.com/pkg/errors"
)

var (
	LIB_VERSION = "v1.2024.1"
)

var (
	pySymbolType       = py.NewType("Symbol", "a two-dimensional Delaney-Dress symbol")
	pySymbolStreamType = py.NewType("SymbolStream", "go2ds.SymbolStream")
	pyCatalogType      = py.NewType("Catalog", "go2ds.Catalog")
	pyWorkspaceType    = py.NewType("Workspace", "collects active session resources and catalogs")
)

type pySymbol struct {
	*libds.DSymbol
}

func (ds pySymbol) Type() *py.Type {
	return pySymbolType
}

func (ds pySymbol) M__str__() (py.Object, error) {
	return py.String(ds.String()), nil
}

func (ds pySymbol) M__repr__() (py.Object, error) {
	return ds.M__str__()
}

func getSymbol(obj py.Object) (pySymbol, error) {
	switch v := obj.(type) {
	case pySymbol:
		return v, nil
	case py.String:
		ds, err := libds.Parse(string(v))
		if err != nil {
			return pySymbol{}, py.ExceptionNewf(py.ValueError, "%v", err)
		}
		return pySymbol{ds}, nil
	}
	return pySymbol{}, py.ExceptionNewf(py.TypeError, "expected Symbol or str (got %v)", obj.Type().Name)
}

// Arg 1 (str or Symbol): symbol text
func py_Symbol(module py.Object, args py.Tuple) (py.Object, error) {
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "Symbol takes exactly one argument")
	}
	ds, err := getSymbol(args[0])
	if err != nil {
		return nil, err
	}
	return py.Object(pySymbol{ds.Copy()}), nil
}

// Args: zero or more symbols or symbol texts
func py_StreamSymbols(module py.Object, args py.Tuple) (py.Object, error) {
	texts := make([]string, 0, len(args))
	for _, arg := range args {
		if text, isStr := arg.(py.String); isStr {
			texts = append(texts, string(text))
			continue
		}
		ds, err := getSymbol(arg)
		if err != nil {
			return nil, err
		}
		texts = append(texts, ds.String())
	}
	return wrapSymbolStream(go2ds.StreamSymbols(texts...)), nil
}

func py_Symbol_Size(self py.Object, args py.Tuple) (py.Object, error) {
	ds := self.(pySymbol)
	return py.Int(ds.Size()), nil
}

func py_Symbol_Curvature(self py.Object, args py.Tuple) (py.Object, error) {
	ds := self.(pySymbol)
	return py.Float(ds.Curvature()), nil
}

func py_Symbol_IsOriented(self py.Object, args py.Tuple) (py.Object, error) {
	ds := self.(pySymbol)
	return py.Bool(ds.IsOriented()), nil
}

func py_Symbol_IsMaximal(self py.Object, args py.Tuple) (py.Object, error) {
	ds := self.(pySymbol)
	return py.Bool(libds.IsMaximalSymmetry(ds.DSymbol)), nil
}

func py_Symbol_GroupName(self py.Object, args py.Tuple) (py.Object, error) {
	ds := self.(pySymbol)
	return py.String(libds.GroupName(ds.DSymbol)), nil
}

func py_Symbol_Dual(self py.Object, args py.Tuple) (py.Object, error) {
	ds := self.(pySymbol)
	return py.Object(pySymbol{libds.Dual(ds.DSymbol)}), nil
}

func py_Symbol_Orientate(self py.Object, args py.Tuple) (py.Object, error) {
	ds := self.(pySymbol)
	return py.Object(pySymbol{libds.Orientate(ds.DSymbol)}), nil
}

func py_Symbol_MaxSymmetry(self py.Object, args py.Tuple) (py.Object, error) {
	ds := self.(pySymbol)
	return py.Object(pySymbol{libds.MaxSymmetry(ds.DSymbol)}), nil
}

func py_Symbol_Canonical(self py.Object, args py.Tuple) (py.Object, error) {
	ds := self.(pySymbol)
	return py.Object(pySymbol{libds.Canonical(ds.DSymbol)}), nil
}

// Arg 1 (bool, optional): if set, the domain is also realized and "rad" is filled in
func py_Symbol_Info(self py.Object, args py.Tuple) (py.Object, error) {
	ds := self.(pySymbol)
	realize := false
	if len(args) > 0 {
		if err := py.LoadTuple(args, []interface{}{&realize}); err != nil {
			return nil, err
		}
	}

	dom, err := domain.NewDomain(ds.DSymbol, go2ds.DefaultConfig())
	if err == nil && realize {
		err = dom.Realize()
	}
	if err != nil {
		return nil, py.ExceptionNewf(py.ValueError, "%v", err)
	}
	return exportInfo(dom.Info()), nil
}

func py_Symbol_Stream(self py.Object, args py.Tuple) (py.Object, error) {
	ds := self.(pySymbol)
	return wrapSymbolStream(go2ds.StreamSymbols(ds.String())), nil
}

func exportInfo(info go2ds.SymbolInfo) py.StringDict {
	return py.StringDict{
		"size":     py.Int(info.Size),
		"geometry": py.String(info.Geometry.String()),
		"crv":      py.Float(info.Curvature),
		"chi":      py.Float(info.Chi),
		"def":      py.Float(info.Defect),
		"chr":      py.Int(info.Euler),
		"fre":      py.Int(info.Freedom),
		"rad":      py.Float(info.Radius),
		"name":     py.String(info.GroupName),
		"maximal":  py.Bool(info.Maximal),
		"oriented": py.Bool(info.Oriented),
	}
}

const (
	READ_ONLY = 0x01
)

const (
	kWorkspaceAttr = "_Workspace"
)

type Workspace struct {
	CatalogCtx go2ds.CatalogContext
}

func (ws *Workspace) Close() {
	ws.CatalogCtx.Close()
	<-ws.CatalogCtx.Done()
}

func (ws *Workspace) Type() *py.Type {
	return pyWorkspaceType
}

func py_GetWorkspace(module py.Object, args py.Tuple) (py.Object, error) {
	wsObj, _ := py.GetAttrString(module, kWorkspaceAttr)
	if wsObj == nil {
		ws := &Workspace{
			CatalogCtx: go2ds.NewCatalogContext(),
		}
		wsObj = ws
		py.SetAttrString(module, kWorkspaceAttr, wsObj)
	}
	return wsObj, nil
}

func py_Workspace_CatalogExists(self py.Object, args py.Tuple) (py.Object, error) {
	_ = self.(*Workspace)

	var pathname string
	err := py.LoadTuple(args, []interface{}{&pathname})
	if err != nil {
		return nil, err
	}
	_, err = os.Stat(pathname)
	if os.IsNotExist(err) {
		return py.False, nil
	}
	return py.True, nil
}

// Arg 1 (str): catalog pathname ("" for in-memory)
// Arg 2 (int): flags (READ_ONLY)
func py_Workspace_OpenCatalog(self py.Object, args py.Tuple) (py.Object, error) {
	ws := self.(*Workspace)

	var pathname string
	var flags int32
	err := py.LoadTuple(args, []interface{}{&pathname, &flags})
	if err != nil {
		return nil, err
	}

	opts := go2ds.CatalogOpts{
		ReadOnly:   (flags & READ_ONLY) != 0,
		DbPathName: pathname,
	}

	cat, err := catalog.OpenCatalog(ws.CatalogCtx, opts)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.Object(pyCatalog{cat}), nil
}

type pyCatalog struct {
	go2ds.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.Catalog != nil {
		cat.Close()
	}
	return py.None, nil
}

// See getSymbolSelector for the keyword args
func py_Catalog_Select(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	cat := self.(pyCatalog)
	sel := go2ds.DefaultSymbolSelector
	if err := getSymbolSelector(kwargs, &sel); err != nil {
		return nil, err
	}
	next := go2ds.SelectFromCatalog(cat, sel)
	return wrapSymbolStream(next), nil
}

// Arg 1 (int): geometry (-1, 0, 1)
func py_Catalog_NumSymbols(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)

	g, err := py.GetInt(args[0])
	if err != nil {
		return nil, err
	}
	return py.Int(cat.NumSymbols(go2ds.Geometry(g))), nil
}

type symbolStream struct {
	*go2ds.SymbolStream
}

func (stream symbolStream) Type() *py.Type {
	return pySymbolStreamType
}

func wrapSymbolStream(stream *go2ds.SymbolStream) py.Object {
	return py.Object(symbolStream{stream})
}

func py_SymbolStream_Go(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(symbolStream)
	count := stream.PullAll()
	return py.Int(count), nil
}

// Arg 1 (bool, optional): if set, each domain is also realized
func py_SymbolStream_Process(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(symbolStream)
	proc := &domain.Processor{
		Config: go2ds.DefaultConfig(),
	}
	if len(args) > 0 {
		if err := py.LoadTuple(args, []interface{}{&proc.Realize}); err != nil {
			return nil, err
		}
	}
	return wrapSymbolStream(stream.Process(proc)), nil
}

func py_SymbolStream_AddTo(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(symbolStream)
	if len(args) != 1 {
		return nil, py.ExceptionNewf(py.TypeError, "AddTo takes a Catalog")
	}
	cat, ok := args[0].(pyCatalog)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Catalog (got %v)", args[0].Type().Name)
	}
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "%v", errors.New("catalog is in read-only mode"))
	}

	next := stream.AddTo(cat)
	return wrapSymbolStream(next), nil
}

// Arg 1 (bool, optional): if set, symbols with the same maximal symmetry quotient are dupes
func py_SymbolStream_DropDupes(self py.Object, args py.Tuple) (py.Object, error) {
	stream := self.(symbolStream)
	opts := libds.SymbolSetOpts{}
	if len(args) > 0 {
		if err := py.LoadTuple(args, []interface{}{&opts.MaxSymmetry}); err != nil {
			return nil, err
		}
	}

	// The memory resident set is closed once the stream is drained
	dupes := libds.NewDropDupes(opts)
	next := stream.AddTo(dupes)
	out := &go2ds.SymbolStream{
		Outlet: make(chan *go2ds.SymbolEntry, 1),
	}
	go func() {
		for entry := range next.Outlet {
			out.Outlet <- entry
		}
		dupes.Close()
		out.Close()
	}()
	return wrapSymbolStream(out), nil
}

func py_SymbolStream_Select(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	stream := self.(symbolStream)
	sel := go2ds.DefaultSymbolSelector
	if err := getSymbolSelector(kwargs, &sel); err != nil {
		return nil, err
	}
	return wrapSymbolStream(stream.SelectFromStream(sel)), nil
}

type echoToWriter struct {
	stdout *os.File
	to     io.WriteCloser
}

func (echo *echoToWriter) Write(buf []byte) (int, error) {
	if echo.to == nil {
		return echo.stdout.Write(buf)
	}
	return echo.to.Write(buf)
}

func (echo *echoToWriter) Close() error {
	if echo.to != nil {
		return echo.to.Close()
	}
	return nil
}

var gOutCount = int32(0)

// Arg 1 (str, optional): label
// Keyword args: label, symbol, name, invariants (bool), file (str)
func py_SymbolStream_Print(self py.Object, args py.Tuple, kwargs py.StringDict) (py.Object, error) {
	stream := self.(symbolStream)
	var pathname string

	opts := go2ds.DefaultPrintOpts

	py.LoadTuple(args, []interface{}{&opts.Label})
	if opts.Label == "" {
		py.LoadAttr(kwargs, "label", &opts.Label)
	}

	// TODO: move the output counter to the Workspace so it is per session
	n := atomic.AddInt32(&gOutCount, 1)
	if opts.Label == "" {
		opts.Label = fmt.Sprintf("out[%d]", n)
	}

	py.LoadAttr(kwargs, "symbol", &opts.Symbol)
	py.LoadAttr(kwargs, "name", &opts.Name)
	py.LoadAttr(kwargs, "invariants", &opts.Invariants)
	py.LoadAttr(kwargs, "file", &pathname)

	writer := &echoToWriter{
		stdout: os.Stdout,
	}
	if len(pathname) > 0 {
		os.MkdirAll(filepath.Dir(pathname), 0700)

		file, err := os.OpenFile(pathname, os.O_TRUNC|os.O_WRONLY|os.O_CREATE, 0600)
		if err != nil {
			return nil, py.ExceptionNewf(py.FileNotFoundError, "%v", err)
		}
		writer.to = file
	}

	next := stream.Print(writer, opts)
	if writer.to == nil {
		return wrapSymbolStream(next), nil
	}

	// Close the output file once the stream is drained
	out := &go2ds.SymbolStream{
		Outlet: make(chan *go2ds.SymbolEntry, 1),
	}
	go func() {
		for entry := range next.Outlet {
			out.Outlet <- entry
		}
		writer.Close()
		out.Close()
	}()
	return wrapSymbolStream(out), nil
}

// getSymbolSelector reads keyword args: geometry (int), min_size, max_size (int), name (str),
// maximal, unique_names (bool).
func getSymbolSelector(kwargs py.StringDict, sel *go2ds.SymbolSelector) error {
	if kwargs == nil {
		return nil
	}
	if obj, ok := kwargs["geometry"]; ok {
		g, err := py.GetInt(obj)
		if err != nil {
			return err
		}
		if g < -1 || g > 1 {
			return py.ExceptionNewf(py.ValueError, "geometry must be -1, 0 or 1 (got %d)", g)
		}
		sel.Geometries = []go2ds.Geometry{go2ds.Geometry(g)}
	}
	for key, dst := range map[string]*int32{
		"min_size": &sel.MinSize,
		"max_size": &sel.MaxSize,
	} {
		if obj, ok := kwargs[key]; ok {
			v, err := py.GetInt(obj)
			if err != nil {
				return err
			}
			*dst = int32(v)
		}
	}
	if obj, ok := kwargs["name"]; ok {
		name, isStr := obj.(py.String)
		if !isStr {
			return py.ExceptionNewf(py.TypeError, "name must be a str")
		}
		sel.GroupName = string(name)
	}
	if obj, ok := kwargs["maximal"]; ok {
		sel.MaximalOnly = obj == py.True
	}
	if obj, ok := kwargs["unique_names"]; ok {
		sel.UniqueNames = obj == py.True
	}
	if sel.MinSize > sel.MaxSize {
		return py.ExceptionNewf(py.ValueError, "%v", errors.Wrapf(go2ds.ErrBadCatalogParam, "min_size %d > max_size %d", sel.MinSize, sel.MaxSize))
	}
	return nil
}

func init() {

	/////////////////////////////////
	// Symbol
	{
		pySymbolType.Dict["Size"] = py.MustNewMethod("Size", py_Symbol_Size, 0, "number of flags")
		pySymbolType.Dict["Curvature"] = py.MustNewMethod("Curvature", py_Symbol_Curvature, 0, "")
		pySymbolType.Dict["IsOriented"] = py.MustNewMethod("IsOriented", py_Symbol_IsOriented, 0, "")
		pySymbolType.Dict["IsMaximal"] = py.MustNewMethod("IsMaximal", py_Symbol_IsMaximal, 0, "")
		pySymbolType.Dict["GroupName"] = py.MustNewMethod("GroupName", py_Symbol_GroupName, 0, "Conway name of the symmetry group")
		pySymbolType.Dict["Dual"] = py.MustNewMethod("Dual", py_Symbol_Dual, 0, "")
		pySymbolType.Dict["Orientate"] = py.MustNewMethod("Orientate", py_Symbol_Orientate, 0, "")
		pySymbolType.Dict["MaxSymmetry"] = py.MustNewMethod("MaxSymmetry", py_Symbol_MaxSymmetry, 0, "")
		pySymbolType.Dict["Canonical"] = py.MustNewMethod("Canonical", py_Symbol_Canonical, 0, "")
		pySymbolType.Dict["Info"] = py.MustNewMethod("Info", py_Symbol_Info, 0, "returns the invariants of the fundamental domain as a dict")
		pySymbolType.Dict["Stream"] = py.MustNewMethod("Stream", py_Symbol_Stream, 0, "")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["Select"] = py.MustNewMethod("Select", py_Catalog_Select, 0, "")
		pyCatalogType.Dict["NumSymbols"] = py.MustNewMethod("NumSymbols", py_Catalog_NumSymbols, 0, "")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	/////////////////////////////////
	// Workspace
	{
		pyWorkspaceType.Dict["OpenCatalog"] = py.MustNewMethod("OpenCatalog", py_Workspace_OpenCatalog, 0, "")
		pyWorkspaceType.Dict["CatalogExists"] = py.MustNewMethod("CatalogExists", py_Workspace_CatalogExists, 0, "")
	}

	/////////////////////////////////
	// SymbolStream
	{
		pySymbolStreamType.Dict["Go"] = py.MustNewMethod("Go", py_SymbolStream_Go, 0, "counts the number of symbols output from the stream")
		pySymbolStreamType.Dict["Print"] = py.MustNewMethod("Print", py_SymbolStream_Print, 0, "prints each symbol from the stream")
		pySymbolStreamType.Dict["Process"] = py.MustNewMethod("Process", py_SymbolStream_Process, 0, "computes the invariants of each symbol")
		pySymbolStreamType.Dict["AddTo"] = py.MustNewMethod("AddTo", py_SymbolStream_AddTo, 0, "")
		pySymbolStreamType.Dict["DropDupes"] = py.MustNewMethod("DropDupes", py_SymbolStream_DropDupes, 0, "")
		pySymbolStreamType.Dict["Select"] = py.MustNewMethod("Select", py_SymbolStream_Select, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("Symbol", py_Symbol, 0, "parses a symbol"),
			py.MustNewMethod("StreamSymbols", py_StreamSymbols, 0, ""),
			py.MustNewMethod("GetWorkspace", py_GetWorkspace, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"PY_VERSION":  py.String("v3.4.0"),
			"MAX_SIZE":    py.Int(go2ds.MaxSize),
			"HYPERBOLIC":  py.Int(go2ds.Hyperbolic),
			"EUCLIDEAN":   py.Int(go2ds.Euclidean),
			"SPHERICAL":   py.Int(go2ds.Spherical),
			"READ_ONLY":   py.Int(READ_ONLY),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pyds",
				Doc:  "Delaney-Dress symbols and their fundamental domains",
			},
			Methods: methods,
			Globals: globals,
			OnContextClosed: func(m *py.Module) {
				wsObj, _ := py.GetAttrString(m, kWorkspaceAttr)
				if wsObj != nil {
					wsObj.(*Workspace).Close()
				}
			},
		})
	}
}
