package convert

import "strings"

// ResolvedImport is a fully-qualified import chain resolved from a zen
// PackageObjectIndex (spec §4.2 "Import resolution"). Outer is nil at the
// root of the chain.
type ResolvedImport struct {
	ClassPackage string
	ClassName    string
	ObjectName   string
	Outer        *ResolvedImport
}

// key returns a structural-equality key for deduplication (spec §4.2
// "Deduplicate resolved imports by structural equality (the outer chain
// is part of the key)").
func (r *ResolvedImport) key() string {
	var b strings.Builder
	r.writeKey(&b)
	return b.String()
}

func (r *ResolvedImport) writeKey(b *strings.Builder) {
	if r == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteString(r.ClassPackage)
	b.WriteByte('\x00')
	b.WriteString(r.ClassName)
	b.WriteByte('\x00')
	b.WriteString(r.ObjectName)
	b.WriteByte('\x00')
	r.Outer.writeKey(b)
	b.WriteByte('\x01')
}

// importDedup deduplicates ResolvedImport values by structural equality,
// preserving first-seen order, and tracks the append-only mapping from a
// zen import slot to the deduplicated legacy slot (spec §4.2
// "Maintain an append-only import_order mapping").
type importDedup struct {
	order   []*ResolvedImport
	index   map[string]int
	bySlot  map[int]int // zen slot -> deduplicated legacy slot
}

func newImportDedup() *importDedup {
	return &importDedup{index: make(map[string]int), bySlot: make(map[int]int)}
}

// add registers the resolution of zen import slot zenSlot, returning the
// deduplicated legacy slot it was assigned.
func (d *importDedup) add(zenSlot int, ri *ResolvedImport) int {
	k := ri.key()
	if slot, ok := d.index[k]; ok {
		d.bySlot[zenSlot] = slot
		return slot
	}
	slot := len(d.order)
	d.order = append(d.order, ri)
	d.index[k] = slot
	d.bySlot[zenSlot] = slot
	return slot
}

func (d *importDedup) legacySlotForZenSlot(zenSlot int) (int, bool) {
	s, ok := d.bySlot[zenSlot]
	return s, ok
}
