package testutil

import (
	"encoding/binary"
	"sort"

	"github.com/reglet-dev/sensecore/internal/abi"
)

// WASM value types.
const (
	I32 byte = 0x7f
	I64 byte = 0x7e
)

// Instruction opcodes used by the module templates.
const (
	OpUnreachable byte = 0x00
	OpIf          byte = 0x04
	OpElse        byte = 0x05
	OpEnd         byte = 0x0b
	OpReturn      byte = 0x0f
	OpCall        byte = 0x10
	OpDrop        byte = 0x1a
	OpLocalGet    byte = 0x20
	OpI32Const    byte = 0x41
	OpI64Const    byte = 0x42
	OpI32Eq       byte = 0x46
	OpI32Ne       byte = 0x47

	BlockEmpty byte = 0x40
	BlockI32   byte = 0x7f
)

const (
	secType     = 1
	secImport   = 2
	secFunction = 3
	secMemory   = 5
	secExport   = 7
	secCode     = 10
	secData     = 11

	kindFunc   = 0
	kindMemory = 2
)

type funcType struct {
	params, results []byte
}

type importFunc struct {
	module, name string
	typ          uint32
}

type funcBody struct {
	typ  uint32
	code []byte
}

type export struct {
	name string
	kind byte
	idx  uint32
}

type dataSegment struct {
	offset uint32
	bytes  []byte
}

// ModuleBuilder assembles a WASM binary. Imported functions must be added
// before defined ones so function indexes stay stable.
type ModuleBuilder struct {
	types   []funcType
	imports []importFunc
	funcs   []funcBody
	exports []export
	data    []dataSegment
	pages   uint32
	memory  bool
}

// NewModuleBuilder returns an empty builder.
func NewModuleBuilder() *ModuleBuilder {
	return &ModuleBuilder{}
}

func (b *ModuleBuilder) typeIndex(params, results []byte) uint32 {
	for i, t := range b.types {
		if string(t.params) == string(params) && string(t.results) == string(results) {
			return uint32(i)
		}
	}
	b.types = append(b.types, funcType{params: params, results: results})
	return uint32(len(b.types) - 1)
}

// ImportFunc imports module.name and returns its function index.
func (b *ModuleBuilder) ImportFunc(module, name string, params, results []byte) uint32 {
	if len(b.funcs) > 0 {
		panic("testutil: imports must precede defined functions")
	}
	b.imports = append(b.imports, importFunc{module: module, name: name, typ: b.typeIndex(params, results)})
	return uint32(len(b.imports) - 1)
}

// Func defines a function with no extra locals. body excludes the final end.
func (b *ModuleBuilder) Func(params, results []byte, body []byte) uint32 {
	b.funcs = append(b.funcs, funcBody{typ: b.typeIndex(params, results), code: body})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// Export exports function idx as name.
func (b *ModuleBuilder) Export(name string, idx uint32) *ModuleBuilder {
	b.exports = append(b.exports, export{name: name, kind: kindFunc, idx: idx})
	return b
}

// Memory declares linear memory 0 with the given minimum pages and exports
// it as "memory".
func (b *ModuleBuilder) Memory(pages uint32) *ModuleBuilder {
	b.memory, b.pages = true, pages
	b.exports = append(b.exports, export{name: abi.ExportMemory, kind: kindMemory, idx: 0})
	return b
}

// Data places bytes at offset in memory 0.
func (b *ModuleBuilder) Data(offset uint32, bytes []byte) *ModuleBuilder {
	b.data = append(b.data, dataSegment{offset: offset, bytes: bytes})
	return b
}

// Bytes encodes the module.
func (b *ModuleBuilder) Bytes() []byte {
	out := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}

	if len(b.types) > 0 {
		var s []byte
		s = appendU32(s, uint32(len(b.types)))
		for _, t := range b.types {
			s = append(s, 0x60)
			s = appendBytes(s, t.params)
			s = appendBytes(s, t.results)
		}
		out = appendSection(out, secType, s)
	}
	if len(b.imports) > 0 {
		var s []byte
		s = appendU32(s, uint32(len(b.imports)))
		for _, im := range b.imports {
			s = appendName(s, im.module)
			s = appendName(s, im.name)
			s = append(s, kindFunc)
			s = appendU32(s, im.typ)
		}
		out = appendSection(out, secImport, s)
	}
	if len(b.funcs) > 0 {
		var s []byte
		s = appendU32(s, uint32(len(b.funcs)))
		for _, f := range b.funcs {
			s = appendU32(s, f.typ)
		}
		out = appendSection(out, secFunction, s)
	}
	if b.memory {
		s := appendU32(nil, 1)
		s = append(s, 0x00)
		s = appendU32(s, b.pages)
		out = appendSection(out, secMemory, s)
	}
	if len(b.exports) > 0 {
		exports := append([]export(nil), b.exports...)
		sort.SliceStable(exports, func(i, j int) bool { return exports[i].name < exports[j].name })
		var s []byte
		s = appendU32(s, uint32(len(exports)))
		for _, e := range exports {
			s = appendName(s, e.name)
			s = append(s, e.kind)
			s = appendU32(s, e.idx)
		}
		out = appendSection(out, secExport, s)
	}
	if len(b.funcs) > 0 {
		var s []byte
		s = appendU32(s, uint32(len(b.funcs)))
		for _, f := range b.funcs {
			body := appendU32(nil, 0) // no local declarations
			body = append(body, f.code...)
			body = append(body, OpEnd)
			s = appendBytes(s, body)
		}
		out = appendSection(out, secCode, s)
	}
	if len(b.data) > 0 {
		var s []byte
		s = appendU32(s, uint32(len(b.data)))
		for _, d := range b.data {
			s = append(s, 0x00, OpI32Const)
			s = AppendI32(s, int32(d.offset))
			s = append(s, OpEnd)
			s = appendBytes(s, d.bytes)
		}
		out = appendSection(out, secData, s)
	}
	return out
}

func appendSection(dst []byte, id byte, content []byte) []byte {
	dst = append(dst, id)
	return appendBytes(dst, content)
}

func appendBytes(dst, b []byte) []byte {
	dst = appendU32(dst, uint32(len(b)))
	return append(dst, b...)
}

func appendName(dst []byte, s string) []byte {
	return appendBytes(dst, []byte(s))
}

func appendU32(dst []byte, v uint32) []byte {
	return binary.AppendUvarint(dst, uint64(v))
}

// AppendI32 appends v as a signed LEB128 immediate.
func AppendI32(dst []byte, v int32) []byte {
	return AppendI64(dst, int64(v))
}

// AppendI64 appends v as a signed LEB128 immediate.
func AppendI64(dst []byte, v int64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(dst, c)
		}
		dst = append(dst, c|0x80)
	}
}

// I32Const returns the instruction pushing v.
func I32Const(v int32) []byte {
	return AppendI32([]byte{OpI32Const}, v)
}

// I64Const returns the instruction pushing v.
func I64Const(v int64) []byte {
	return AppendI64([]byte{OpI64Const}, v)
}

// Code concatenates instruction fragments.
func Code(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
