package convert

import (
	"fmt"
	"strings"

	"github.com/gbudweiser/zenlegacycodec/objidx"
	"github.com/gbudweiser/zenlegacycodec/scriptdb"
	"github.com/gbudweiser/zenlegacycodec/zen"
)

// resolveState carries the per-conversion context resolveImport needs to
// recurse through Export/ScriptImport/PackageImport chains without
// threading every parameter through every call (spec §4.2 "Import
// resolution").
type resolveState struct {
	zenPkg  *zen.Package
	ctx     Context
	degrade func(reason string)

	// cache memoizes non-Export resolutions so a reference touched both
	// while scanning ImportMap and while translating an export's
	// Class/Super/Template/Outer field resolves identically without
	// re-invoking (and re-logging) the degrade path twice.
	cache map[objidx.PackageObjectIndex]*ResolvedImport
}

// resolveImport resolves a single PackageObjectIndex into a ResolvedImport
// chain (spec §4.2). A nil result (with ok=false) means idx is Null and
// the slot must not allocate an import entry.
func (s *resolveState) resolveImport(idx objidx.PackageObjectIndex) (*ResolvedImport, bool) {
	if idx.IsNull() {
		return nil, false
	}
	if idx.Kind() == objidx.KindExport {
		n, _ := idx.AsExport()
		return s.resolveLocalExportAsImport(int(n)), true
	}
	if s.cache == nil {
		s.cache = make(map[objidx.PackageObjectIndex]*ResolvedImport)
	}
	if ri, ok := s.cache[idx]; ok {
		return ri, true
	}
	var ri *ResolvedImport
	switch idx.Kind() {
	case objidx.KindScriptImport:
		h, _ := idx.AsScriptImport()
		ri = s.resolveScriptImport(h)
	case objidx.KindPackageImport:
		p, h, _ := idx.AsPackageImport()
		ri = s.resolvePackageImport(p, h)
	default:
		return nil, false
	}
	s.cache[idx] = ri
	return ri, true
}

// resolveLocalExportAsImport treats a same-package export as if it were an
// import, recursively resolving its class and outer chain (spec §4.2
// "Export(n) → treat the referenced local export as if it were an
// import").
func (s *resolveState) resolveLocalExportAsImport(localIndex int) *ResolvedImport {
	if localIndex < 0 || localIndex >= len(s.zenPkg.ExportMap) {
		s.degrade(fmt.Sprintf("export-as-import index %d out of range", localIndex))
		return &ResolvedImport{ClassPackage: "/Script/CoreUObject", ClassName: "Object", ObjectName: fmt.Sprintf("Export_%d", localIndex)}
	}
	e := s.zenPkg.ExportMap[localIndex]
	name, _ := e.ObjectName.Render(s.zenPkg.NameMap)

	classPackage, className := s.classOf(e.Class)
	var outer *ResolvedImport
	if o, ok := s.resolveImport(e.Outer); ok {
		outer = o
	}
	return &ResolvedImport{ClassPackage: classPackage, ClassName: className, ObjectName: name, Outer: outer}
}

// classOf derives (class_package, class_name) for a reference used as an
// export/import's Class field, by resolving it like any other reference
// and reading off its own package root and leaf name.
func (s *resolveState) classOf(classRef objidx.PackageObjectIndex) (classPackage, className string) {
	ri, ok := s.resolveImport(classRef)
	if !ok || ri == nil {
		return "/Script/CoreUObject", "Object"
	}
	return packagePathOf(ri), ri.ObjectName
}

func packagePathOf(ri *ResolvedImport) string {
	for ri.Outer != nil {
		ri = ri.Outer
	}
	return ri.ObjectName
}

func lastPathComponent(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return path
	}
	return path[i+1:]
}

// resolveScriptImport implements spec §4.2's ScriptImport(hash) rule set,
// including the package-root base case, the class/CDO promotion, and the
// "database unavailable or hash unknown" synthetic-name fallback.
func (s *resolveState) resolveScriptImport(hash uint64) *ResolvedImport {
	db := s.ctx.ScriptObjects
	if db == nil {
		s.degrade("script-objects database unavailable")
		return syntheticScriptImport(hash)
	}
	entry, ok := db.Lookup(hash)
	if !ok {
		s.degrade(fmt.Sprintf("unknown script import hash 0x%X", hash))
		return syntheticScriptImport(hash)
	}
	return s.resolveScriptEntry(entry)
}

func syntheticScriptImport(hash uint64) *ResolvedImport {
	return &ResolvedImport{
		ClassPackage: "/Script/CoreUObject",
		ClassName:    "Object",
		ObjectName:   fmt.Sprintf("__ScriptImport_%x__", hash),
	}
}

func (s *resolveState) resolveScriptEntry(entry scriptdb.Entry) *ResolvedImport {
	objectName := lastPathComponent(entry.Path)
	if !entry.HasOuter {
		return &ResolvedImport{ClassPackage: "/Script/CoreUObject", ClassName: "Package", ObjectName: entry.Path}
	}

	var outer *ResolvedImport
	db := s.ctx.ScriptObjects
	if outerEntry, ok := db.Lookup(entry.OuterHash); ok {
		outer = s.resolveScriptEntry(outerEntry)
	} else {
		s.degrade(fmt.Sprintf("unknown script import outer hash 0x%X", entry.OuterHash))
		outer = syntheticScriptImport(entry.OuterHash)
	}

	className, classPackage := "Object", "/Script/CoreUObject"
	if entry.IsClass {
		className, classPackage = "Class", "/Script/CoreUObject"
	}

	// CDO detection: database flag is authoritative when present (spec
	// Open Question (b)); the heuristic (name prefix + outer-of-outer nil)
	// is the fallback when the database carries no CDOClassHash.
	isCDO := strings.HasPrefix(objectName, "Default__") && outer.Outer == nil
	if entry.CDOClassHash != 0 {
		if cdoClassEntry, ok := db.Lookup(entry.CDOClassHash); ok {
			resolvedClass := s.resolveScriptEntry(cdoClassEntry)
			className = resolvedClass.ObjectName
			classPackage = packagePathOf(resolvedClass)
		}
	} else if isCDO {
		// No authoritative CDOClassHash: fall back to the heuristic, but
		// without a class entry to promote from there is nothing further
		// to derive, so className/classPackage stay at the Object default.
	}

	return &ResolvedImport{ClassPackage: classPackage, ClassName: className, ObjectName: objectName, Outer: outer}
}

// resolvePackageImport implements spec §4.2's PackageImport(p, h) rule,
// including its three-step fallback chain.
func (s *resolveState) resolvePackageImport(packageSlot, hashSlot uint32) *ResolvedImport {
	if int(packageSlot) >= len(s.zenPkg.ImportedPackageIds) {
		s.degrade(fmt.Sprintf("package import slot %d out of range", packageSlot))
		return placeholderForeignExport(hashSlot, "")
	}

	var foreignPath string
	if int(packageSlot) < len(s.zenPkg.ImportedPackageNames) {
		base := s.zenPkg.ImportedPackageNames[packageSlot]
		var number int32
		if int(packageSlot) < len(s.zenPkg.ImportedPackageNameNumbers) {
			number = s.zenPkg.ImportedPackageNameNumbers[packageSlot]
		}
		foreignPath = renderSuffixed(base, number)
	}

	packageID := uint64(s.zenPkg.ImportedPackageIds[packageSlot])

	var publicHash uint64
	hasPublicHash := int(hashSlot) < len(s.zenPkg.ImportedPublicExportHashes)
	if hasPublicHash {
		publicHash = s.zenPkg.ImportedPublicExportHashes[hashSlot]
	}

	if s.ctx.ForeignPackages != nil {
		if fp, ok := s.ctx.ForeignPackages.ForeignPackage(packageID); ok {
			if objectName, className, classPackage, found := fp.ExportNameAndClassByPublicHash(publicHash); hasPublicHash && found {
				return &ResolvedImport{
					ClassPackage: classPackage,
					ClassName:    className,
					ObjectName:   objectName,
					Outer:        &ResolvedImport{ClassPackage: "/Script/CoreUObject", ClassName: "Package", ObjectName: fp.Path()},
				}
			}
			// fallback (a): foreign package has exactly one export.
			if fp.ExportCount() == 1 {
				if objectName, className, classPackage, ok := fp.ExportAt(0); ok {
					s.degrade(fmt.Sprintf("package import hash slot %d unmatched; used sole export of %s", hashSlot, fp.Path()))
					return &ResolvedImport{
						ClassPackage: classPackage,
						ClassName:    className,
						ObjectName:   objectName,
						Outer:        &ResolvedImport{ClassPackage: "/Script/CoreUObject", ClassName: "Package", ObjectName: fp.Path()},
					}
				}
			}
			// fallback (b): h < |foreign.exports|.
			if int(hashSlot) < fp.ExportCount() {
				if objectName, className, classPackage, ok := fp.ExportAt(int(hashSlot)); ok {
					s.degrade(fmt.Sprintf("package import hash slot %d unmatched; used export at matching index in %s", hashSlot, fp.Path()))
					return &ResolvedImport{
						ClassPackage: classPackage,
						ClassName:    className,
						ObjectName:   objectName,
						Outer:        &ResolvedImport{ClassPackage: "/Script/CoreUObject", ClassName: "Package", ObjectName: fp.Path()},
					}
				}
			}
			foreignPath = fp.Path()
		}
	}

	// fallback (c): placeholder under a package outer.
	s.degrade(fmt.Sprintf("package import (slot=%d, hash=%d) could not be resolved; emitted placeholder", packageSlot, hashSlot))
	return placeholderForeignExport(hashSlot, foreignPath)
}

func placeholderForeignExport(hashSlot uint32, foreignPath string) *ResolvedImport {
	outer := &ResolvedImport{ClassPackage: "/Script/CoreUObject", ClassName: "Package", ObjectName: foreignPath}
	return &ResolvedImport{
		ClassPackage: "/Script/CoreUObject",
		ClassName:    "Object",
		ObjectName:   fmt.Sprintf("Export_%d", hashSlot),
		Outer:        outer,
	}
}

// renderSuffixed applies the shared name-suffix convention (spec §4.3
// "when the legacy name carries number = k > 0, the path component ... is
// '<base>_<k-1 zero-padded to 2 digits>'"): number here is the 1-based
// MappedName-style field, 0 meaning no suffix at all.
func renderSuffixed(base string, number int32) string {
	if number <= 0 {
		return base
	}
	return fmt.Sprintf("%s_%02d", base, number-1)
}
