package convert

import (
	"strings"

	"github.com/gbudweiser/zenlegacycodec/legacy"
	"github.com/gbudweiser/zenlegacycodec/namehash"
	"github.com/gbudweiser/zenlegacycodec/objidx"
)

// ltozState carries the per-conversion tables the LegacyToZen import
// translator accumulates: the package table (spec §4.3 "Allocate/lookup
// slots in the package table and hash table, dedup by value, preserving
// first-seen order") and the global public-export-hash table.
type ltozState struct {
	pkg            *legacy.Package
	ctx            Context
	ownPackagePath string

	packageIDIndex map[objidx.PackageID]int
	packageIDs     []objidx.PackageID
	packageNames   []string
	packageNumbers []int32

	hashIndex map[uint64]int
	hashes    []uint64
}

func newLtozState(pkg *legacy.Package, ctx Context) *ltozState {
	return &ltozState{
		pkg:            pkg,
		ctx:            ctx,
		ownPackagePath: pkg.FolderName,
		packageIDIndex: make(map[objidx.PackageID]int),
		hashIndex:      make(map[uint64]int),
	}
}

func (s *ltozState) internPackage(id objidx.PackageID, base string, number int32) int {
	if slot, ok := s.packageIDIndex[id]; ok {
		return slot
	}
	slot := len(s.packageIDs)
	s.packageIDIndex[id] = slot
	s.packageIDs = append(s.packageIDs, id)
	s.packageNames = append(s.packageNames, base)
	s.packageNumbers = append(s.packageNumbers, number)
	return slot
}

func (s *ltozState) internHash(h uint64) int {
	if slot, ok := s.hashIndex[h]; ok {
		return slot
	}
	slot := len(s.hashes)
	s.hashIndex[h] = slot
	s.hashes = append(s.hashes, h)
	return slot
}

// chainComponent is one step of an import's outer chain, kept as
// (base, number) rather than a pre-rendered string so callers can choose
// between the plain MappedName rendering and the zero-padded hashing
// convention (spec §4.3 "Name-suffix convention").
type chainComponent struct {
	base   string
	number int32
}

func (c chainComponent) suffixed() string { return renderSuffixed(c.base, c.number) }

// legacyImportChain walks slot's Outer chain up to its package root,
// returning components root-first. visited guards against a malformed
// cyclic outer chain.
func legacyImportChain(pkg *legacy.Package, slot int, visited map[int]bool) []chainComponent {
	if slot < 0 || slot >= len(pkg.Imports) || visited[slot] {
		return nil
	}
	visited[slot] = true
	imp := pkg.Imports[slot]
	self := chainComponent{base: nameMapAt(pkg.NameMap, imp.ObjectName.Index), number: int32(imp.ObjectName.Number)}

	outerSlot, isImport := imp.Outer.IsImport()
	if !isImport {
		return []chainComponent{self}
	}
	parent := legacyImportChain(pkg, outerSlot, visited)
	return append(parent, self)
}

func nameMapAt(nameMap []string, index uint32) string {
	if int(index) >= len(nameMap) {
		return ""
	}
	return nameMap[index]
}

// translateImport implements spec §4.3's "Import translation": classify
// by the fully-qualified outer-chain path, emitting ScriptImport, Null
// (package-root or self-reference), or PackageImport as appropriate.
func (s *ltozState) translateImport(slot int) objidx.PackageObjectIndex {
	imp := s.pkg.Imports[slot]
	chain := legacyImportChain(s.pkg, slot, make(map[int]bool))
	if len(chain) == 0 {
		return objidx.Null
	}

	if strings.HasPrefix(chain[0].base, "/Script/") {
		return s.translateScriptImport(chain)
	}

	if imp.Outer.IsNull() {
		// The import is itself a package root; zen makes packages implicit.
		return objidx.Null
	}

	packagePath := chain[0].suffixed()
	if packagePath == s.ownPackagePath {
		return objidx.Null
	}

	parts := make([]string, 0, len(chain)-1)
	for _, c := range chain[1:] {
		parts = append(parts, c.suffixed())
	}
	exportPath := strings.Join(parts, "/")

	packageID := objidx.NewPackageID(packagePath)
	hash := objidx.NewPublicExportHash(exportPath)

	pSlot := s.internPackage(packageID, chain[0].base, chain[0].number)
	hSlot := s.internHash(uint64(hash))
	return objidx.NewPackageImport(uint32(pSlot), uint32(hSlot))
}

func (s *ltozState) translateScriptImport(chain []chainComponent) objidx.PackageObjectIndex {
	fullPath := joinSuffixed(chain, "/")
	db := s.ctx.ScriptObjects
	if db != nil {
		if e, ok := db.LookupByPath(fullPath); ok {
			return objidx.NewScriptImport(e.Hash)
		}
		bareName := chain[len(chain)-1].suffixed()
		if e, ok := db.LookupByPath(bareName); ok {
			return objidx.NewScriptImport(e.Hash)
		}
	}
	return objidx.NewScriptImport(namehash.PathHash64(fullPath))
}

func joinSuffixed(chain []chainComponent, sep string) string {
	parts := make([]string, len(chain))
	for i, c := range chain {
		parts[i] = c.suffixed()
	}
	return strings.Join(parts, sep)
}

// buildImportMap runs translateImport across every legacy import in
// order, producing a positionally-matching zen ImportMap (the zen
// ImportMap slot for legacy import i is always i; spec §4.3 does not
// call for the reordering/dedup step its Zen→Legacy counterpart needs,
// since the zen ImportMap tolerates Null holes directly).
func (s *ltozState) buildImportMap() []objidx.PackageObjectIndex {
	out := make([]objidx.PackageObjectIndex, len(s.pkg.Imports))
	for i := range s.pkg.Imports {
		out[i] = s.translateImport(i)
	}
	return out
}

// legacyRefToZenRef translates a resolved legacy PackageIndex reference
// (export/import/null) into its zen PackageObjectIndex form, given the
// already-built import map.
func legacyRefToZenRef(ref objidx.PackageIndex, importMap []objidx.PackageObjectIndex) objidx.PackageObjectIndex {
	if ref.IsNull() {
		return objidx.Null
	}
	if n, ok := ref.IsExport(); ok {
		return objidx.NewExport(uint32(n))
	}
	if n, ok := ref.IsImport(); ok {
		if n >= 0 && n < len(importMap) {
			return importMap[n]
		}
	}
	return objidx.Null
}
