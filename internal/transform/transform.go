// Package transform runs the per-module pipeline: parse, rewrite import
// specifiers through the import map, lower JSX, instrument for fast refresh
// in dev mode, then print the result with an optional source map.
package transform

import (
	"errors"
	"fmt"

	"github.com/modpack-dev/modpack/internal/config"
	"github.com/modpack-dev/modpack/internal/js_ast"
	"github.com/modpack-dev/modpack/internal/js_parser"
	"github.com/modpack-dev/modpack/internal/js_printer"
	"github.com/modpack-dev/modpack/internal/logger"
	"github.com/modpack-dev/modpack/internal/resolver"
	"github.com/modpack-dev/modpack/internal/sourcemap"
)

// Engine abstracts the parse and print halves of the pipeline so tests can
// substitute either side.
type Engine interface {
	Parse(log *logger.Log, source *logger.Source, options js_parser.Options) (js_ast.AST, bool)
	Print(tree *js_ast.AST, options js_printer.Options) (js_printer.PrintResult, error)
}

type defaultEngine struct{}

func (defaultEngine) Parse(log *logger.Log, source *logger.Source, options js_parser.Options) (js_ast.AST, bool) {
	return js_parser.Parse(log, source, options)
}

func (defaultEngine) Print(tree *js_ast.AST, options js_printer.Options) (js_printer.PrintResult, error) {
	return js_printer.Print(tree, options)
}

// DefaultEngine is the in-process parser and printer.
var DefaultEngine Engine = defaultEngine{}

// ErrParse reports that the source text could not be parsed. The details are
// on the log.
var ErrParse = errors.New("parse failed")

// EmitError reports that a transformed tree could not be printed.
type EmitError struct {
	Underlying error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("emit failed: %v", e.Underlying)
}

func (e *EmitError) Unwrap() error {
	return e.Underlying
}

type Result struct {
	Code string

	// Source map JSON, only produced in dev mode
	Map string

	Dependencies []resolver.DependencyDescriptor
}

// Transpile transforms one module. Warnings accumulate on the log; an error
// return means the transform produced no output.
func Transpile(engine Engine, log *logger.Log, options config.Options, hasPluginResolves bool) (Result, error) {
	source := &logger.Source{
		KeyPath:    logger.Path{Text: options.Filename},
		PrettyPath: options.Filename,
		Contents:   options.SourceText,
	}

	tree, ok := engine.Parse(log, source, js_parser.OptionsForFilename(options.Filename))
	if !ok {
		return Result{}, ErrParse
	}

	res := resolver.New(options.Filename, options.ImportMap, options.IsDev, hasPluginResolves, log, source)

	t := &transformer{
		engine:  engine,
		options: options,
		res:     res,
	}
	if options.IsDev {
		t.refresh = newRefreshState(&tree)
	}

	visitor := &js_ast.ASTVisitor{
		EnterStmt: t.enterStmt,
		EnterExpr: t.enterExpr,
		ExitExpr:  t.exitExpr,
	}
	js_ast.TraverseAST(&tree, visitor)

	if t.refresh != nil {
		t.refresh.inject(engine, &tree)
	}

	deps := res.Finalize()

	var printOptions js_printer.Options
	if options.IsDev {
		printOptions.SourceForSourceMap = source
	}
	printed, err := engine.Print(&tree, printOptions)
	if err != nil {
		return Result{}, &EmitError{Underlying: err}
	}

	result := Result{Code: string(printed.JS), Dependencies: deps}
	if options.IsDev {
		result.Map = sourcemap.Generate(options.Filename, options.SourceText, printed.Mappings)
	}
	return result, nil
}

type transformer struct {
	engine  Engine
	options config.Options
	res     *resolver.Resolver
	refresh *refreshState
}

func (t *transformer) enterStmt(stmt *js_ast.Stmt, path *js_ast.NodePath, iterator *js_ast.StmtIterator) {
	switch s := stmt.Data.(type) {
	case *js_ast.SImport:
		if !s.IsTypeOnly {
			s.Path.Text = t.res.Resolve(s.Path.Text, s.Path.Loc, false)
		}
	case *js_ast.SExportFrom:
		s.Path.Text = t.res.Resolve(s.Path.Text, s.Path.Loc, false)
	case *js_ast.SExportStar:
		s.Path.Text = t.res.Resolve(s.Path.Text, s.Path.Loc, false)
	}
}

func (t *transformer) enterExpr(expr *js_ast.Expr, path *js_ast.NodePath) {
	switch e := expr.Data.(type) {
	case *js_ast.EImportCall:
		if str, isString := e.Expr.Data.(*js_ast.EString); isString {
			str.Value = t.res.Resolve(str.Value, e.Expr.Loc, true)
		}
	case *js_ast.ECall:
		if t.refresh != nil {
			t.refresh.observeCall(expr, e, path)
		}
	}
}

func (t *transformer) exitExpr(expr *js_ast.Expr, path *js_ast.NodePath) {
	if e, isJSX := expr.Data.(*js_ast.EJSXElement); isJSX {
		expr.Data = t.lowerJSXElement(expr.Loc, e)
	}
}
