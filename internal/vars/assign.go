package vars

import (
	"slices"

	"fortio.org/safecast"

	"jasm/internal/ast"
	"jasm/internal/diag"
	"jasm/internal/types"
)

// Assign lays out the slots of def's body.
func Assign(root *ast.Root, def *ast.Definition, opts Options) (*Cache, error) {
	c := newCache()
	static := def.IsStatic()
	if opts.Static != nil {
		static = *opts.Static
	}
	if err := c.assignParams(def, static, opts.Owner); err != nil {
		return nil, err
	}
	named, rawUse, order, err := c.scan(root)
	if err != nil {
		return nil, err
	}
	if err := c.reserveRaw(rawUse); err != nil {
		return nil, err
	}
	if err := c.applyBaseline(named, opts); err != nil {
		return nil, err
	}
	for _, name := range order {
		if _, ok := c.byName[name]; ok {
			continue
		}
		u := named[name]
		size := sizeOf(u.sort)
		if u.wide {
			size = 2
		}
		slot := c.next
		for c.taken(slot) || (size == 2 && c.taken(slot+1)) {
			slot++
		}
		c.bind(&Variable{
			Name:  name,
			Index: slot,
			Size:  size,
			Sort:  u.sort,
			Desc:  primitiveDesc(u.sort),
			First: u.first,
			Last:  u.last,
		})
		c.next = slot + size
	}
	if _, err := safecast.Conv[uint16](c.maxLocals); err != nil {
		return nil, errAt(def.Line(), diag.AsmBadOperandType, "%d local slots exceed the frame limit", c.maxLocals)
	}
	return c, nil
}

// assignParams binds the receiver and the declared parameters.
func (c *Cache) assignParams(def *ast.Definition, static bool, owner string) error {
	if !static {
		if owner == "" {
			owner = "java/lang/Object"
		}
		c.bind(&Variable{
			Name:  This,
			Index: 0,
			Size:  1,
			Sort:  types.Object,
			Desc:  types.ObjectOf(owner).Descriptor(),
			Param: true,
		})
		c.next = 1
	}
	for _, a := range def.Args {
		t, err := types.ParseField(a.Desc)
		if err != nil {
			return errAt(def.Line(), diag.AsmBadOperandType, "parameter %s: %v", a.Name, err)
		}
		if _, dup := c.byName[a.Name]; dup {
			return errAt(def.Line(), diag.AsmDuplicateArgument, "parameter %q declared twice", a.Name)
		}
		v := &Variable{
			Name:      a.Name,
			Index:     c.next,
			Size:      t.Size(),
			Sort:      computational(t),
			Desc:      a.Desc,
			Param:     true,
			Anonymous: isNumeric(a.Name),
		}
		c.bind(v)
		c.next += v.Size
	}
	return nil
}

// scan collects every variable reference of the body.
func (c *Cache) scan(root *ast.Root) (map[string]*usage, map[int]*usage, []string, error) {
	named := make(map[string]*usage)
	rawUse := make(map[int]*usage)
	var order []string
	for _, in := range root.Instructions() {
		ref, ok := in.Var()
		if !ok {
			continue
		}
		sort := in.Op.VarSort()
		if ref.IsRaw() {
			u := rawUse[ref.Index]
			if u == nil {
				u = &usage{sort: sort, first: in}
				rawUse[ref.Index] = u
			}
			u.last = in
			u.wide = u.wide || sizeOf(sort) == 2
			continue
		}
		if p, ok := c.byName[ref.Name]; ok && p.Param {
			if p.Sort != sort {
				return nil, nil, nil, errAt(in.Line(), diag.AsmBadOperandType,
					"%s %s is %s, %s expects %s", kindOf(p), ref.Name, p.Desc, in.Op, sort)
			}
			if p.First == nil {
				p.First = in
			}
			p.Last = in
			continue
		}
		u := named[ref.Name]
		if u == nil {
			u = &usage{sort: sort, first: in}
			named[ref.Name] = u
			order = append(order, ref.Name)
		} else if u.sort != sort {
			return nil, nil, nil, errAt(in.Line(), diag.AsmBadOperandType,
				"variable %s is used as %s and as %s", ref.Name, u.sort, sort)
		}
		u.last = in
		u.wide = u.wide || sizeOf(sort) == 2
	}
	return named, rawUse, order, nil
}

// reserveRaw claims slots referenced by number, plus the upper half of
// wide values. A raw slot may not overlap a parameter of another sort.
func (c *Cache) reserveRaw(rawUse map[int]*usage) error {
	slots := make([]int, 0, len(rawUse))
	for s := range rawUse {
		slots = append(slots, s)
	}
	slices.Sort(slots)
	for _, s := range slots {
		u := rawUse[s]
		if p, ok := c.bySlot[s]; ok {
			if p.Sort != u.sort {
				return errAt(u.first.Line(), diag.AsmVariableAliasing,
					"slot %d holds %s %s (%s) but %s uses it as %s", s, kindOf(p), p.Name, p.Desc, u.first.Op, u.sort)
			}
			continue
		}
		if owner, ok := c.companion[s]; ok {
			if p, ok := c.bySlot[owner]; ok {
				return errAt(u.first.Line(), diag.AsmVariableAliasing,
					"slot %d is the upper half of %s %s", s, kindOf(p), p.Name)
			}
			return errAt(u.first.Line(), diag.AsmVariableAliasing,
				"slot %d is the upper half of raw slot %d (%s)", s, owner, c.raw[owner])
		}
		c.raw[s] = u.sort
		c.grow(s + 1)
		if u.wide {
			if _, ok := c.bySlot[s+1]; !ok {
				c.companion[s+1] = s
			}
			c.grow(s + 2)
		}
	}
	return nil
}

// applyBaseline keeps the slots a previous layout gave to referenced names.
func (c *Cache) applyBaseline(named map[string]*usage, opts Options) error {
	for _, b := range opts.Baseline {
		u, ok := named[b.Name]
		if !ok {
			continue
		}
		if _, done := c.byName[b.Name]; done {
			continue
		}
		size := sizeOf(u.sort)
		if u.wide {
			size = 2
		}
		if p, ok := c.bySlot[b.Index]; ok && p.Param {
			continue
		}
		if _, ok := c.bySlot[b.Index]; ok {
			continue
		}
		if _, ok := c.companion[b.Index]; ok {
			continue
		}
		if size == 2 {
			if _, ok := c.bySlot[b.Index+1]; ok {
				continue
			}
			if _, ok := c.raw[b.Index+1]; ok {
				continue
			}
		}
		if rs, ok := c.raw[b.Index]; ok && rs != u.sort {
			return errAt(u.first.Line(), diag.AsmVariableAliasing,
				"variable %s (%s) shares slot %d with a raw %s reference", b.Name, u.sort, b.Index, rs)
		}
		c.bind(&Variable{
			Name:  b.Name,
			Index: b.Index,
			Size:  size,
			Sort:  u.sort,
			Desc:  primitiveDesc(u.sort),
			First: u.first,
			Last:  u.last,
		})
	}
	return nil
}

func kindOf(v *Variable) string {
	if v.Name == This {
		return "receiver"
	}
	if v.Param {
		return "parameter"
	}
	return "variable"
}

func primitiveDesc(s types.Sort) string {
	switch s {
	case types.Int:
		return "I"
	case types.Long:
		return "J"
	case types.Float:
		return "F"
	case types.Double:
		return "D"
	}
	return ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

