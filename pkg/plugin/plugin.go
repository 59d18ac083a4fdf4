// Package plugin defines the loader and resolver hooks the dev server and
// the transform API accept. A plugin claims files by regexp filter and turns
// them into something servable, or claims bare specifiers the import map did
// not cover.
package plugin

import "regexp"

type ResolveArgs struct {
	// The specifier as written in the source
	Specifier string

	// The file that contains the import
	Importer string
}

type ResolveResult struct {
	Path string
}

type LoadArgs struct {
	// Absolute path of the file being loaded
	Path string
}

type LoadResult struct {
	Contents string

	// MIME type for the dev server response, "text/css" for style loaders
	ContentType string

	// Extra files whose changes should invalidate this one
	WatchFiles []string
}

type Plugin struct {
	Name string

	// Filter selects the files Load applies to. Nil means the plugin only
	// resolves.
	Filter *regexp.Regexp

	// Resolve claims a bare specifier. Returning false passes the specifier
	// to the next plugin.
	Resolve func(args ResolveArgs) (ResolveResult, bool)

	Load func(args LoadArgs) (LoadResult, error)
}

// HasResolvers reports whether any plugin in the list installs a resolve
// hook. Bare specifiers the import map misses stay pending instead of
// warning when this is true.
func HasResolvers(plugins []Plugin) bool {
	for _, p := range plugins {
		if p.Resolve != nil {
			return true
		}
	}
	return false
}

// LoaderFor returns the first plugin whose filter matches the path.
func LoaderFor(plugins []Plugin, path string) (Plugin, bool) {
	for _, p := range plugins {
		if p.Load != nil && p.Filter != nil && p.Filter.MatchString(path) {
			return p, true
		}
	}
	return Plugin{}, false
}
