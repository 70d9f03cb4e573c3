// Package convert implements the two cross-format conversion pipelines
// (spec §4.2 ZenToLegacy, §4.3 LegacyToZen) and the shared resolved-import
// dedup machinery they both lean on.
package convert

import (
	"go.uber.org/zap"

	"github.com/gbudweiser/zenlegacycodec/scriptdb"
)

// Options controls both pipelines' caller-configurable switches (spec §4.1
// strict/lossy encoder, §4.2/§9 rebuild-bodies open question, §6 "all set
// to zero when unversioned").
type Options struct {
	// LossyNames selects the ASCII-downgrading name encoder described in
	// spec §4.1 / Open Question (c). Defaults to false (the strict,
	// UTF-16-preserving encoder), which is the recommended default.
	LossyNames bool

	// RebuildExportBodies is accepted but not read by either pipeline:
	// export bodies are always copied through in the source layout, and no
	// re-ordering by export-bundle serialize entries takes place whatever
	// its value.
	RebuildExportBodies bool

	// Unversioned forces the legacy output's version fields/custom-version
	// vector to zero (spec §6 item 1/2).
	Unversioned bool

	// Logger receives structured progress/fallback records at each
	// pipeline stage boundary. A nil Logger falls back to zap.NewNop().
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// ForeignPackageView is the minimal read-only view the ZenToLegacy
// converter needs of a foreign zen package when resolving a PackageImport
// (spec §4.2 "if the caller-supplied context provides access to that
// package, scan its export map for an entry whose public_export_hash
// matches slot h"). Implementations typically wrap an already-parsed
// zen.Package plus whatever loader fetched it; fetching packages by id is
// the caller's responsibility (spec §1 "archive/pack extraction" is out
// of scope).
type ForeignPackageView interface {
	// ExportNameAndClassByPublicHash returns the rendered name/class for
	// the export whose public_export_hash equals hash, and whether such an
	// export was found.
	ExportNameAndClassByPublicHash(hash uint64) (objectName, className, classPackage string, found bool)
	// ExportCount reports how many exports the foreign package has, used
	// by the single-export and index fallback heuristics.
	ExportCount() int
	// ExportAt returns the Nth export's rendered name/class, used by the
	// index fallback heuristic (spec §4.2 fallback (b)).
	ExportAt(index int) (objectName, className, classPackage string, ok bool)
	// Path returns the foreign package's own path, used to build the
	// Export_<h> placeholder's outer.
	Path() string
}

// ForeignPackageProvider resolves a foreign package id to a
// ForeignPackageView. Returning (nil, false) signals "not available",
// which triggers the fallback chain in spec §4.2.
type ForeignPackageProvider interface {
	ForeignPackage(packageID uint64) (ForeignPackageView, bool)
}

// Context bundles the external collaborators the ZenToLegacy converter
// consults (spec §5 "process-wide script-objects database handle" plus
// the caller-supplied foreign-package context of §4.2).
type Context struct {
	ScriptObjects   scriptdb.Database
	ForeignPackages ForeignPackageProvider
}
