// Package disasm prints an insn.Member back as a listing the parser
// accepts. Label names are generated, variable names come from the local
// table, and the metafactory bootstrap handle can be shortened to an alias.
package disasm

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"jasm/internal/ast"
	"jasm/internal/diag"
	"jasm/internal/insn"
	"jasm/internal/opcode"
	"jasm/internal/parser"
	"jasm/internal/types"
)

type Options struct {
	// IndyAlias prints the metafactory handle as ${H_META}.
	IndyAlias bool
	Logger    *zerolog.Logger
}

// Repair is one change made to the local table before printing.
type Repair struct {
	Code    diag.Code
	Message string
}

type Result struct {
	Root    *ast.Root
	Repairs []Repair
	// Member is the repaired copy that Root describes; Body[i] is the node
	// printed for Member.Instructions[i].
	Member *insn.Member
	Body   []ast.Node
}

// Text renders the listing.
func (r *Result) Text() string { return ast.Format(r.Root) }

type disassembler struct {
	m       *insn.Member
	opts    Options
	log     zerolog.Logger
	root    *ast.Root
	body    []ast.Node
	repairs []Repair

	labels map[insn.LabelID]string
	pos    map[insn.LabelID]int
	alias  bool
}

// Disassemble works on a copy of m; the member itself is never modified.
func Disassemble(m *insn.Member, opts Options) (*Result, error) {
	d := &disassembler{
		m:      m.Clone(),
		opts:   opts,
		root:   &ast.Root{},
		labels: make(map[insn.LabelID]string),
	}
	d.log = zerolog.Nop()
	if opts.Logger != nil {
		d.log = *opts.Logger
	}
	d.log = d.log.With().Str("member", m.Name).Logger()

	if d.m.Kind == insn.KindField {
		if err := d.m.Validate(); err != nil {
			return nil, err
		}
		d.field()
		return d.result(), nil
	}
	d.dropUnplaced()
	if err := d.m.Validate(); err != nil {
		return nil, err
	}
	if len(d.m.Locals) > 0 {
		d.enforceLabels()
	}
	d.pos = d.m.LabelPositions()
	d.splitSlots()
	d.renameShared()
	d.nameLabels()
	d.alias = opts.IndyAlias && d.usesMetaFactory()
	d.method()
	return d.result(), nil
}

func (d *disassembler) result() *Result {
	return &Result{Root: d.root, Repairs: d.repairs, Member: d.m, Body: d.body}
}

func (d *disassembler) add(n ast.Node) { d.root.Add(n) }

// at is the output line of the next node.
func (d *disassembler) at() ast.Pos { return ast.At(len(d.root.Nodes) + 1) }

func (d *disassembler) definition() *ast.Definition {
	def := &ast.Definition{
		Pos:  d.at(),
		Kind: d.m.Kind,
		Name: d.m.Name,
	}
	for _, name := range d.m.Access.Modifiers(d.m.Kind) {
		flag, _ := insn.ParseModifier(name)
		def.Modifiers = append(def.Modifiers, &ast.Modifier{Pos: def.Pos, Name: name, Flag: flag})
	}
	return def
}

func (d *disassembler) field() {
	def := d.definition()
	def.Type = d.m.Desc
	d.add(def)
	if d.m.Signature != "" {
		d.add(&ast.Signature{Pos: d.at(), Text: d.m.Signature})
	}
	if d.m.Value != nil {
		d.add(&ast.DefaultValue{Pos: d.at(), Value: *d.m.Value})
	}
}

func (d *disassembler) method() {
	def := d.definition()
	args, ret, _ := types.ParseMethod(d.m.Desc)
	def.Type = ret.Descriptor()
	def.Args = []*ast.Arg{}
	slot := 0
	if !d.m.IsStatic() {
		slot = 1
	}
	for _, a := range args {
		def.Args = append(def.Args, &ast.Arg{Desc: a.Descriptor(), Name: d.paramName(slot)})
		slot += a.Size()
	}
	d.add(def)
	if d.m.Signature != "" {
		d.add(&ast.Signature{Pos: d.at(), Text: d.m.Signature})
	}
	if d.alias {
		d.add(&ast.Alias{Pos: d.at(), Name: parser.MetaAlias, Value: ast.FormatHandle(insn.MetaFactory)})
	}
	for _, ex := range d.m.Exceptions {
		d.add(&ast.Throws{Pos: d.at(), Type: ex})
	}
	for _, tc := range d.m.TryCatches {
		d.add(&ast.TryCatch{
			Pos:     d.at(),
			Start:   d.labels[tc.Start],
			End:     d.labels[tc.End],
			Handler: d.labels[tc.Handler],
			Type:    tc.Type,
		})
	}
	for i := range d.m.Instructions {
		d.comment(i)
		n := d.node(i)
		d.body = append(d.body, n)
		d.add(n)
	}
	d.comment(len(d.m.Instructions))
}

// paramName is the table name that starts earliest on slot, or the slot
// number, which the assembler reads as an unnamed parameter.
func (d *disassembler) paramName(slot int) string {
	best, name := -1, ""
	for _, lv := range d.m.Locals {
		if lv.Index != slot {
			continue
		}
		if p := d.pos[lv.Start]; best < 0 || p < best {
			best, name = p, lv.Name
		}
	}
	if name == "" {
		return strconv.Itoa(slot)
	}
	return name
}

func (d *disassembler) comment(i int) {
	text, ok := d.m.Comments[i]
	if !ok {
		return
	}
	for _, line := range strings.Split(text, "\n") {
		d.add(&ast.Comment{Pos: d.at(), Text: line})
	}
}

func (d *disassembler) usesMetaFactory() bool {
	for i := range d.m.Instructions {
		in := &d.m.Instructions[i]
		if in.Op == opcode.Invokedynamic && in.Bootstrap != nil && *in.Bootstrap == insn.MetaFactory {
			return true
		}
	}
	return false
}
