// Package api is the public entry point. Transform runs the single-module
// pipeline on one source file; DevServe runs the transform-on-demand
// development server on top of it.
package api

import "github.com/modpack-dev/modpack/pkg/plugin"

type Target uint8

const (
	// DefaultTarget is es2020
	DefaultTarget Target = iota
	ES2015
	ES2016
	ES2017
	ES2018
	ES2019
	ES2020
	ES2021
	ES2022
	ESNext
)

type Mode uint8

const (
	// ModeDevelopment keeps original extensions, emits a source map, and
	// instruments components for fast refresh
	ModeDevelopment Mode = iota

	// ModeProduction rewrites local imports onto their emitted .js names
	// and skips dev instrumentation
	ModeProduction
)

type Location struct {
	File     string
	LineText string

	// Line is 1-based, Column is 0-based (in bytes)
	Line   int
	Column int
	Length int
}

type Message struct {
	Text     string
	Location *Location
}

// Dependency is one import of the transformed module, in source order.
type Dependency struct {
	Specifier string
	Resolved  string
	IsDynamic bool

	// True when the specifier was left for a plugin to resolve
	Pending bool
}

type TransformOptions struct {
	// Filename names the module being transformed and anchors relative
	// specifier normalization. Its extension selects the syntax.
	Filename string

	SourceText string

	// ImportMapJSON is the raw import map, empty for none
	ImportMapJSON string

	Target             Target
	JSXFactory         string
	JSXFragmentFactory string
	Mode               Mode

	Plugins []plugin.Plugin
}

type TransformResult struct {
	Errors   []Message
	Warnings []Message

	Code string

	// Source map JSON, produced in development mode only
	Map string

	Dependencies []Dependency
}

type DevServeOptions struct {
	Host string
	Port uint16

	// Root is the directory files are served and transformed from
	Root string

	// ImportMapPath is relative to Root, "importmap.json" when empty
	ImportMapPath string

	JSXFactory         string
	JSXFragmentFactory string

	Plugins []plugin.Plugin
}

// Transform runs the pipeline on one module. Failures are reported through
// TransformResult.Errors; a result with no errors always carries code.
func Transform(options TransformOptions) TransformResult {
	return transformImpl(options)
}

// TransformFromRequest decodes a JSON transform request and runs it. The
// request format is the strict wire schema: filename, sourceText, importMap,
// swcOptions.
func TransformFromRequest(request []byte, plugins ...plugin.Plugin) TransformResult {
	return transformFromRequestImpl(request, plugins)
}
