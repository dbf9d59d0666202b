// Package formula decodes the postfix-encoded formula blobs produced by the
// Quattro Pro and Works cell formats (spec §4.6) into a model.FormulaNode
// tree, resolving cell references against the position of the cell that
// owns the formula.
package formula

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-wps/wpscore/model"
)

// Dialect selects the file-format-specific bits of reference decoding:
// qpw's 16-bit wrap-add row field versus wb's 13-bit signed row field, and
// qpw's arity lift for VLOOKUP/HLOOKUP (spec §4.6).
type Dialect int

const (
	DialectWB Dialect = iota
	DialectQPW
)

// Origin is the (col, row) of the cell that owns the formula being
// decoded; relative reference components are resolved against it.
type Origin struct {
	Col, Row int
}

// refKind is the top-bits tag of a reference-section entry's leading type
// byte (spec §4.6: "a leading type whose top bits select: 0 = single cell,
// 1 = range, 2 = field, 3 = collection"). The exact byte layout within each
// kind is not specified further by the source material; this package uses
// a self-consistent 8/16/2-byte layout as documented on each decode* func.
type refKind byte

const (
	refSingleCell refKind = 0
	refRange      refKind = 1
	refField      refKind = 2
	refCollection refKind = 3
)

const (
	relSheetFlag = 0x8000
	relColFlag   = 0x4000
	relRowFlag   = 0x2000
	rowValueMask = 0x1FFF
)

// Decode parses one formula blob (spec §4.6 layout: total_len u16,
// ref_section_offset u16, postfix bytes, then the reference section) and
// resolves it relative to origin. A structurally truncated blob returns an
// error; a blob that parses but whose operator stack does not reduce to a
// single tree returns a node with Bad set and a nil error (the caller keeps
// the cell's cached result either way, per spec §4.6).
func Decode(blob []byte, dialect Dialect, origin Origin, sheetName func(idx int) string) (*model.FormulaNode, error) {
	if len(blob) < 4 {
		return nil, fmt.Errorf("formula: blob too short (%d bytes)", len(blob))
	}
	totalLen := int(binary.LittleEndian.Uint16(blob[0:2]))
	refOffset := int(binary.LittleEndian.Uint16(blob[2:4]))
	if totalLen > len(blob) {
		totalLen = len(blob)
	}
	if refOffset < 4 || refOffset > totalLen {
		return nil, fmt.Errorf("formula: ref section offset %d out of range [4,%d]", refOffset, totalLen)
	}

	refs, err := parseRefSection(blob[refOffset:totalLen], dialect, origin, sheetName)
	if err != nil {
		return nil, fmt.Errorf("formula: ref section: %w", err)
	}

	d := &decodeState{
		postfix: blob[4:refOffset],
		refs:    refs,
		dialect: dialect,
	}
	d.walk()

	if len(d.stack) != 1 {
		return &model.FormulaNode{Bad: true}, nil
	}
	return d.stack[0], nil
}

type decodeState struct {
	postfix []byte
	pos     int
	refs    []refEntry
	refPos  int
	dialect Dialect
	stack   []*model.FormulaNode
}

type refEntry struct {
	cell  *model.CellRef
	rng   *model.CellRange
}

func (d *decodeState) push(n *model.FormulaNode) {
	d.stack = append(d.stack, n)
}

func (d *decodeState) popN(n int) []*model.FormulaNode {
	if n > len(d.stack) {
		n = len(d.stack)
	}
	args := append([]*model.FormulaNode(nil), d.stack[len(d.stack)-n:]...)
	d.stack = d.stack[:len(d.stack)-n]
	return args
}

func (d *decodeState) nextRef() *refEntry {
	if d.refPos >= len(d.refs) {
		return nil
	}
	r := &d.refs[d.refPos]
	d.refPos++
	return r
}

func (d *decodeState) walk() {
	for d.pos < len(d.postfix) {
		op := d.postfix[d.pos]
		d.pos++
		switch {
		case op == 0x00:
			if d.pos+8 > len(d.postfix) {
				return
			}
			bits := binary.LittleEndian.Uint64(d.postfix[d.pos:])
			d.pos += 8
			d.push(&model.FormulaNode{Op: model.OpLiteralFloat, Float: math.Float64frombits(bits)})

		case op == 0x01:
			ref := d.nextRef()
			if ref == nil || ref.cell == nil {
				return
			}
			d.push(&model.FormulaNode{Op: model.OpCell, Cell: *ref.cell})

		case op == 0x02:
			ref := d.nextRef()
			if ref == nil || ref.rng == nil {
				return
			}
			d.push(&model.FormulaNode{Op: model.OpCellList, Range: *ref.rng})

		case op == 0x03:
			return

		case op == 0x04:
			args := d.popN(1)
			if len(args) != 1 {
				return
			}
			d.push(&model.FormulaNode{Op: model.OpOperator, Name: "()", Args: args})

		case op == 0x05:
			if d.pos+2 > len(d.postfix) {
				return
			}
			v := int16(binary.LittleEndian.Uint16(d.postfix[d.pos:]))
			d.pos += 2
			d.push(&model.FormulaNode{Op: model.OpLiteralInt, Int: int32(v)})

		case op == 0x06:
			start := d.pos
			for d.pos < len(d.postfix) && d.postfix[d.pos] != 0 {
				d.pos++
			}
			text := string(d.postfix[start:d.pos])
			if d.pos < len(d.postfix) {
				d.pos++ // skip NUL
			}
			d.push(&model.FormulaNode{Op: model.OpLiteralText, Text: text})

		case op == 0x07:
			d.push(&model.FormulaNode{Op: model.OpLiteralText, Name: "default-arg"})

		case op >= 0x08 && op <= 0x19:
			name, arity := operatorTable[op-0x08].name, operatorTable[op-0x08].arity
			args := d.popN(arity)
			if len(args) != arity {
				return
			}
			d.push(&model.FormulaNode{Op: model.OpOperator, Name: name, Args: args})

		case op == 0x1A:
			if d.pos+1 > len(d.postfix) {
				return
			}
			arity := int(int8(d.postfix[d.pos]))
			d.pos++
			if d.pos+4 > len(d.postfix) {
				return
			}
			id0 := binary.LittleEndian.Uint16(d.postfix[d.pos:])
			id1 := binary.LittleEndian.Uint16(d.postfix[d.pos+2:])
			d.pos += 4
			if arity < 0 {
				return
			}
			args := d.popN(arity)
			d.push(&model.FormulaNode{
				Op:   model.OpFunction,
				Name: fmt.Sprintf("DLL_%d_%d", id0, id1),
				Args: args,
			})

		default:
			d.walkFunction(op)
		}
	}
}

// walkFunction resolves a plain function opcode, applying the two fixed
// rewrites and the qpw VLOOKUP/HLOOKUP arity lift (spec §4.6).
func (d *decodeState) walkFunction(op byte) {
	fn, ok := functionTable[op]
	if !ok {
		return
	}
	arity := fn.arity
	if arity == arityFollows {
		if d.pos+1 > len(d.postfix) {
			return
		}
		arity = int(int8(d.postfix[d.pos]))
		d.pos++
	}
	if arity == arityUnimplemented {
		d.push(&model.FormulaNode{Op: model.OpFunction, Name: fn.name, Bad: true})
		return
	}
	name := fn.name
	if d.dialect == DialectQPW && (name == "VLOOKUP" || name == "HLOOKUP") {
		arity = 4
	}
	args := d.popN(arity)
	if len(args) != arity {
		return
	}

	switch name {
	case "TERM":
		// TERM(pmt, pint, fv) -> NPER(pint, -pmt, 0, fv)
		if len(args) == 3 {
			neg := &model.FormulaNode{Op: model.OpOperator, Name: "neg", Args: []*model.FormulaNode{args[0]}}
			zero := &model.FormulaNode{Op: model.OpLiteralFloat, Float: 0}
			d.push(&model.FormulaNode{Op: model.OpFunction, Name: "NPER", Args: []*model.FormulaNode{args[1], neg, zero, args[2]}})
			return
		}
	case "CTERM":
		// CTERM(pint, fv, pv) -> NPER(pint, 0, -pv, fv)
		if len(args) == 3 {
			zero := &model.FormulaNode{Op: model.OpLiteralFloat, Float: 0}
			neg := &model.FormulaNode{Op: model.OpOperator, Name: "neg", Args: []*model.FormulaNode{args[2]}}
			d.push(&model.FormulaNode{Op: model.OpFunction, Name: "NPER", Args: []*model.FormulaNode{args[0], zero, neg, args[1]}})
			return
		}
	}
	d.push(&model.FormulaNode{Op: model.OpFunction, Name: name, Args: args})
}
