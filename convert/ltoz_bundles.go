package convert

import (
	"sort"
	"strings"

	"github.com/gbudweiser/zenlegacycodec/legacy"
	"github.com/gbudweiser/zenlegacycodec/objidx"
	"github.com/gbudweiser/zenlegacycodec/zen"
)

// exportBodyLayout holds the per-export cooked offset/size derived from
// sorted legacy serial offsets (spec §4.3 "Export map construction").
type exportBodyLayout struct {
	cookedOffset int64
	cookedSize   int64
}

// computeExportBodyLayout implements "compute cooked_serial_size[i] as the
// gap between sorted serial_offset values for all but the last export,
// and use the last export's declared serial_size directly". It returns
// the per-original-index layout plus the concatenated body bytes in
// sorted-offset order (the contiguous legacy layout, preserved rather
// than reshuffled).
func computeExportBodyLayout(pkg *legacy.Package, exportsBlob []byte, legacyHeaderSize int64) ([]exportBodyLayout, []byte) {
	n := len(pkg.Exports)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return pkg.Exports[order[a]].SerialOffset < pkg.Exports[order[b]].SerialOffset
	})

	layout := make([]exportBodyLayout, n)
	var body []byte
	var cursor int64
	for k, idx := range order {
		e := pkg.Exports[idx]
		var size int64
		if k == n-1 {
			size = e.SerialSize
		} else {
			size = pkg.Exports[order[k+1]].SerialOffset - e.SerialOffset
		}
		layout[idx] = exportBodyLayout{cookedOffset: cursor, cookedSize: size}

		start := e.SerialOffset - legacyHeaderSize
		end := start + size
		if start >= 0 && end <= int64(len(exportsBlob)) {
			body = append(body, exportsBlob[start:end]...)
		} else {
			body = append(body, make([]byte, size)...)
		}
		cursor += size
	}
	return layout, body
}

// exportPath renders export i's in-package path (without the package path
// itself) by walking its outer chain through sibling exports only (an
// export's outer is always another export or null within the same
// package), applying the shared zero-pad suffix convention at each step
// (spec §4.3's public-export-hash law). A top-level export's path is just
// its rendered name.
func (s *ltozState) exportPath(exportIndex int) string {
	var parts []string
	idx := exportIndex
	visited := make(map[int]bool)
	for idx >= 0 && idx < len(s.pkg.Exports) && !visited[idx] {
		visited[idx] = true
		e := s.pkg.Exports[idx]
		name := renderSuffixed(nameMapAt(s.pkg.NameMap, e.ObjectName.Index), int32(e.ObjectName.Number))
		parts = append([]string{name}, parts...)
		outerSlot, isExport := e.Outer.IsExport()
		if !isExport {
			break
		}
		idx = outerSlot
	}
	return strings.Join(parts, "/")
}

// buildExportMap implements spec §4.3's "Export map construction":
// translate every reference through the already-built import map, derive
// is_public_export_hash, and carry through the NotForClient/NotForServer
// filter bits.
func (s *ltozState) buildExportMap(importMap []objidx.PackageObjectIndex, layout []exportBodyLayout) []zen.Export {
	out := make([]zen.Export, len(s.pkg.Exports))
	for i, e := range s.pkg.Exports {
		filter := zen.FilterNone
		if e.NotForClient {
			filter = zen.FilterNotForClient
		} else if e.NotForServer {
			filter = zen.FilterNotForServer
		}

		var publicHash uint64
		if e.ObjectFlags&flagPublic != 0 {
			publicHash = uint64(objidx.NewPublicExportHash(s.exportPath(i)))
		}

		out[i] = zen.Export{
			CookedSerialOffset: layout[i].cookedOffset,
			CookedSerialSize:   layout[i].cookedSize,
			ObjectName:         e.ObjectName,
			ObjectFlags:        e.ObjectFlags,
			Filter:             filter,
			Class:              legacyRefToZenRef(e.Class, importMap),
			Super:              legacyRefToZenRef(e.Super, importMap),
			Template:           legacyRefToZenRef(e.Template, importMap),
			Outer:              legacyRefToZenRef(e.Outer, importMap),
			PublicExportHash:   publicHash,
		}
	}
	return out
}

// bundleNode identifies one (export, Create|Serialize) event in the
// dependency graph the single export bundle is ordered by.
type bundleNode struct {
	export  int
	command zen.BundleCommand
}

// buildExportBundle implements spec §4.3's "Bundles": a single bundle
// containing a Create then a Serialize entry per export, both sequences
// in topological order of outer-containment plus all four preload-arc
// edges. Cycles are broken by dropping the back edge (logged, not fatal).
func buildExportBundle(pkg *legacy.Package, onCycle func(from, to bundleNode)) []zen.ExportBundleEntry {
	n := len(pkg.Exports)
	nodeID := func(b bundleNode) int {
		id := b.export * 2
		if b.command == zen.CommandSerialize {
			id++
		}
		return id
	}
	nodeFor := func(id int) bundleNode {
		if id%2 == 0 {
			return bundleNode{export: id / 2, command: zen.CommandCreate}
		}
		return bundleNode{export: id / 2, command: zen.CommandSerialize}
	}

	adj := make([][]int, n*2)
	addEdge := func(from, to bundleNode) {
		adj[nodeID(from)] = append(adj[nodeID(from)], nodeID(to))
	}

	for i, e := range pkg.Exports {
		// Intrinsic: an export must be created before it is serialized.
		addEdge(bundleNode{export: i, command: zen.CommandCreate}, bundleNode{export: i, command: zen.CommandSerialize})

		if outerSlot, ok := e.Outer.IsExport(); ok {
			addEdge(bundleNode{export: outerSlot, command: zen.CommandCreate}, bundleNode{export: i, command: zen.CommandCreate})
		}

		if e.FirstExportDependencyIndex < 0 {
			continue
		}
		cursor := e.FirstExportDependencyIndex
		addArc := func(kind legacy.ArcKind, depCmd, selfCmd zen.BundleCommand) {
			count := e.ArcCounts[kind]
			for k := int32(0); k < count; k++ {
				idx := int(cursor) + int(k)
				if idx < 0 || idx >= len(pkg.PreloadDependencies) {
					continue
				}
				depSlot, ok := pkg.PreloadDependencies[idx].IsExport()
				if !ok {
					continue
				}
				addEdge(bundleNode{export: depSlot, command: depCmd}, bundleNode{export: i, command: selfCmd})
			}
			cursor += count
		}
		addArc(legacy.SerializeBeforeSerialize, zen.CommandSerialize, zen.CommandSerialize)
		addArc(legacy.CreateBeforeSerialize, zen.CommandCreate, zen.CommandSerialize)
		addArc(legacy.SerializeBeforeCreate, zen.CommandSerialize, zen.CommandCreate)
		addArc(legacy.CreateBeforeCreate, zen.CommandCreate, zen.CommandCreate)
	}

	for u := range adj {
		sort.Ints(adj[u])
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make([]int, n*2)
	var order []int

	var visit func(u int)
	visit = func(u int) {
		state[u] = visiting
		for _, v := range adj[u] {
			switch state[v] {
			case unvisited:
				visit(v)
			case visiting:
				if onCycle != nil {
					onCycle(nodeFor(u), nodeFor(v))
				}
				// back edge: drop it, do not recurse.
			case done:
				// already ordered, nothing to do.
			}
		}
		state[u] = done
		order = append(order, u)
	}

	for start := 0; start < n*2; start++ {
		if state[start] == unvisited {
			visit(start)
		}
	}

	// order is in reverse topological order (post-order DFS); reverse it.
	entries := make([]zen.ExportBundleEntry, len(order))
	for i, id := range order {
		b := nodeFor(id)
		entries[len(order)-1-i] = zen.ExportBundleEntry{LocalExportIndex: uint32(b.export), Command: b.command}
	}
	return entries
}
