// Package resolver rewrites module specifiers for one file being
// transformed. Every import meets the same pipeline: classify, normalize
// against the referrer, offer to the import map, then apply the output
// extension policy. The resolver records every dependency it sees so the
// caller can hand the list to whoever fetches or bundles next.
package resolver

import (
	"path"
	"strings"

	"github.com/modpack-dev/modpack/internal/importmap"
	"github.com/modpack-dev/modpack/internal/logger"
)

// DependencyDescriptor is one resolved import of the module, in source order.
type DependencyDescriptor struct {
	// The specifier as written in the source
	Specifier string

	// The specifier after mapping and normalization
	Resolved string

	// True for "import(...)" dependencies
	IsDynamic bool

	// True when the specifier was left for a plugin to resolve later
	Pending bool
}

type Resolver struct {
	filename          string
	importMap         *importmap.ImportMap
	isDev             bool
	hasPluginResolves bool

	log    *logger.Log
	source *logger.Source

	deps      []DependencyDescriptor
	finalized bool
}

func New(filename string, im *importmap.ImportMap, isDev bool, hasPluginResolves bool, log *logger.Log, source *logger.Source) *Resolver {
	return &Resolver{
		filename:          filename,
		importMap:         im,
		isDev:             isDev,
		hasPluginResolves: hasPluginResolves,
		log:               log,
		source:            source,
	}
}

func isRemoteSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "http://") ||
		strings.HasPrefix(specifier, "https://") ||
		strings.HasPrefix(specifier, "//")
}

func isRelativeSpecifier(specifier string) bool {
	return strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../") ||
		specifier == "." || specifier == ".."
}

// Resolve maps one specifier and records the dependency. It never fails:
// anything that cannot be resolved passes through unchanged, at most with a
// warning on the log.
func (r *Resolver) Resolve(specifier string, loc logger.Loc, isDynamic bool) string {
	dep := DependencyDescriptor{Specifier: specifier, IsDynamic: isDynamic}

	switch {
	// Remote before the "/" arm: protocol-relative "//host/x" must not be
	// treated as an absolute path
	case isRemoteSpecifier(specifier):
		if mapped, ok := r.importMap.Resolve(specifier, r.filename); ok {
			dep.Resolved = mapped
		} else {
			dep.Resolved = specifier
		}

	case isRelativeSpecifier(specifier), strings.HasPrefix(specifier, "/"):
		normalized := r.normalizeLocal(specifier)
		if mapped, ok := r.importMap.Resolve(normalized, r.filename); ok {
			dep.Resolved = mapped
		} else if mapped, ok := r.importMap.Resolve(specifier, r.filename); ok {
			dep.Resolved = mapped
		} else {
			if !r.isDev {
				normalized = rewriteLocalExtension(normalized)
			}
			dep.Resolved = normalized
		}

	default:
		// Bare specifier
		if mapped, ok := r.importMap.Resolve(specifier, r.filename); ok {
			dep.Resolved = mapped
		} else if r.hasPluginResolves {
			dep.Resolved = specifier
			dep.Pending = true
		} else {
			dep.Resolved = specifier
			r.log.AddWarning(r.source, loc,
				"Bare specifier \""+specifier+"\" is not covered by the import map")
		}
	}

	r.deps = append(r.deps, dep)
	return dep.Resolved
}

// normalizeLocal resolves "." and ".." segments against the referrer
// directory, preserving any query or fragment suffix.
func (r *Resolver) normalizeLocal(specifier string) string {
	base, suffix := splitQuery(specifier)

	if strings.HasPrefix(base, "/") {
		return path.Clean(base) + suffix
	}

	dir := path.Dir(r.filename)
	joined := path.Join(dir, base)
	if !strings.HasPrefix(joined, "/") && !strings.HasPrefix(joined, ".") {
		joined = "./" + joined
	}
	return joined + suffix
}

func splitQuery(specifier string) (string, string) {
	if i := strings.IndexAny(specifier, "?#"); i >= 0 {
		return specifier[:i], specifier[i:]
	}
	return specifier, ""
}

// rewriteLocalExtension maps a source file reference onto the emitted .js
// artifact. Used in production mode only; the dev server serves modules under
// their original names.
func rewriteLocalExtension(specifier string) string {
	base, suffix := splitQuery(specifier)
	switch path.Ext(base) {
	case ".ts", ".tsx", ".jsx", ".mjs":
		base = strings.TrimSuffix(base, path.Ext(base)) + ".js"
	case "":
		base += ".js"
	}
	return base + suffix
}

// Finalize marks the traversal complete and returns the dependency list in
// the order the specifiers were seen.
func (r *Resolver) Finalize() []DependencyDescriptor {
	r.finalized = true
	if r.deps == nil {
		return []DependencyDescriptor{}
	}
	return r.deps
}

// Finalized reports whether the owning traversal already completed.
func (r *Resolver) Finalized() bool {
	return r.finalized
}
