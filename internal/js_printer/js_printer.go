// Package js_printer renders an AST back into JavaScript text, collecting
// source mappings along the way. The output is normalized: two-space indent,
// double-quoted strings, semicolons on every statement.
package js_printer

import (
	"fmt"
	"strings"

	"github.com/modpack-dev/modpack/internal/js_ast"
	"github.com/modpack-dev/modpack/internal/js_lexer"
	"github.com/modpack-dev/modpack/internal/logger"
	"github.com/modpack-dev/modpack/internal/sourcemap"
)

type Options struct {
	// Collect source mappings against this source. Nil disables collection.
	SourceForSourceMap *logger.Source
}

type PrintResult struct {
	JS       []byte
	Mappings []sourcemap.Mapping
}

// Print renders the module. It fails when the tree still contains nodes that
// have no JavaScript form, like JSX elements that were never lowered.
func Print(tree *js_ast.AST, options Options) (PrintResult, error) {
	p := &printer{options: options}
	if options.SourceForSourceMap != nil {
		p.lineOffsetTables = sourcemap.GenerateLineOffsetTable(options.SourceForSourceMap.Contents)
	}

	if tree.Directive != "" {
		p.print(quoteString(tree.Directive))
		p.print(";\n")
	}
	for i := range tree.Stmts {
		p.printStmt(&tree.Stmts[i])
	}

	if p.err != nil {
		return PrintResult{}, p.err
	}
	return PrintResult{JS: p.js, Mappings: p.mappings}, nil
}

type printer struct {
	options Options
	js      []byte
	err     error

	indent int

	// Positions used to decide when "{" or "function" would be misparsed
	stmtStart      int
	arrowExprStart int

	lineOffsetTables []int32
	mappings         []sourcemap.Mapping
	generatedLine    int32
	lineStart        int
}

func (p *printer) print(text string) {
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			p.generatedLine++
			p.lineStart = len(p.js) + i + 1
		}
	}
	p.js = append(p.js, text...)
}

func (p *printer) printIndent() {
	for i := 0; i < p.indent; i++ {
		p.print("  ")
	}
}

func (p *printer) addMapping(loc logger.Loc) {
	if p.lineOffsetTables == nil || loc.Start < 0 {
		return
	}
	srcLine, srcCol := sourcemap.LineAndColumn(p.lineOffsetTables, loc.Start)
	p.mappings = append(p.mappings, sourcemap.Mapping{
		GenLine: p.generatedLine,
		GenCol:  int32(len(p.js) - p.lineStart),
		SrcLine: srcLine,
		SrcCol:  srcCol,
	})
}

func quoteString(text string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range text {
		switch r {
		case '"':
			sb.WriteString("\\\"")
		case '\\':
			sb.WriteString("\\\\")
		case '\n':
			sb.WriteString("\\n")
		case '\r':
			sb.WriteString("\\r")
		case '\t':
			sb.WriteString("\\t")
		case '\u2028':
			sb.WriteString("\\u2028")
		case '\u2029':
			sb.WriteString("\\u2029")
		default:
			if r < 0x20 {
				sb.WriteString(fmt.Sprintf("\\u%04x", r))
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func (p *printer) printPropertyKey(key js_ast.Expr) {
	switch k := key.Data.(type) {
	case *js_ast.EString:
		if js_lexer.IsIdentifier(k.Value) {
			p.print(k.Value)
		} else {
			p.print(quoteString(k.Value))
		}
	case *js_ast.ENumber:
		p.print(k.Raw)
	default:
		p.printExpr(key, js_ast.LComma)
	}
}

func (p *printer) printProperty(property *js_ast.Property, isClass bool) {
	if property.Kind == js_ast.PropertySpread {
		p.print("...")
		p.printExpr(property.ValueOrNil, js_ast.LComma)
		return
	}

	if property.Flags.Has(js_ast.PropertyIsStatic) {
		p.print("static ")
	}

	// Method, getter, or setter
	if fn, isFn := property.ValueOrNil.Data.(*js_ast.EFunction); isFn &&
		(property.Kind == js_ast.PropertyMethod || property.Kind == js_ast.PropertyGetter ||
			property.Kind == js_ast.PropertySetter) {
		switch property.Kind {
		case js_ast.PropertyGetter:
			p.print("get ")
		case js_ast.PropertySetter:
			p.print("set ")
		}
		if fn.Fn.IsAsync {
			p.print("async ")
		}
		if fn.Fn.IsGenerator {
			p.print("*")
		}
		if property.Flags.Has(js_ast.PropertyIsComputed) {
			p.print("[")
			p.printExpr(property.Key, js_ast.LComma)
			p.print("]")
		} else {
			p.printPropertyKey(property.Key)
		}
		p.printFnArgsAndBody(&fn.Fn)
		return
	}

	if property.Flags.Has(js_ast.PropertyIsComputed) {
		p.print("[")
		p.printExpr(property.Key, js_ast.LComma)
		p.print("]")
	} else {
		p.printPropertyKey(property.Key)
	}

	if isClass {
		if property.InitializerOrNil.Data != nil {
			p.print(" = ")
			p.printExpr(property.InitializerOrNil, js_ast.LComma)
		}
		p.print(";")
		return
	}

	if property.Flags.Has(js_ast.PropertyWasShorthand) && property.ValueOrNil.Data == nil {
		if property.InitializerOrNil.Data != nil {
			p.print(" = ")
			p.printExpr(property.InitializerOrNil, js_ast.LComma)
		}
		return
	}

	p.print(": ")
	p.printExpr(property.ValueOrNil, js_ast.LComma)
}

func (p *printer) printFnArgsAndBody(fn *js_ast.Fn) {
	p.printArgs(fn.Args, fn.HasRestArg)
	p.print(" ")
	p.printBlock(&fn.Body.Block)
}

func (p *printer) printArgs(args []js_ast.Arg, hasRest bool) {
	p.print("(")
	for i := range args {
		if i > 0 {
			p.print(", ")
		}
		if hasRest && i == len(args)-1 {
			p.print("...")
		}
		p.printBinding(args[i].Binding)
		if args[i].DefaultOrNil.Data != nil {
			p.print(" = ")
			p.printExpr(args[i].DefaultOrNil, js_ast.LComma)
		}
	}
	p.print(")")
}

func (p *printer) printBinding(binding js_ast.Binding) {
	switch b := binding.Data.(type) {
	case *js_ast.BIdentifier:
		p.print(b.Name)

	case *js_ast.BArray:
		p.print("[")
		for i := range b.Items {
			if i > 0 {
				p.print(", ")
			}
			item := &b.Items[i]
			if item.Binding.Data == nil {
				continue // hole
			}
			if item.IsSpread {
				p.print("...")
			}
			p.printBinding(item.Binding)
			if item.DefaultOrNil.Data != nil {
				p.print(" = ")
				p.printExpr(item.DefaultOrNil, js_ast.LComma)
			}
		}
		p.print("]")

	case *js_ast.BObject:
		p.print("{ ")
		for i := range b.Properties {
			if i > 0 {
				p.print(", ")
			}
			property := &b.Properties[i]
			if property.IsSpread {
				p.print("...")
				p.printBinding(property.Value)
				continue
			}
			if property.IsComputed {
				p.print("[")
				p.printExpr(property.Key, js_ast.LComma)
				p.print("]: ")
				p.printBinding(property.Value)
			} else if property.WasShorthand {
				p.printPropertyKey(property.Key)
			} else {
				p.printPropertyKey(property.Key)
				p.print(": ")
				p.printBinding(property.Value)
			}
			if property.DefaultOrNil.Data != nil {
				p.print(" = ")
				p.printExpr(property.DefaultOrNil, js_ast.LComma)
			}
		}
		p.print(" }")
	}
}

func (p *printer) printClass(class *js_ast.Class) {
	p.print("class")
	if class.Name != "" {
		p.print(" ")
		p.print(class.Name)
	}
	if class.ExtendsOrNil.Data != nil {
		p.print(" extends ")
		p.printExpr(class.ExtendsOrNil, js_ast.LNew)
	}
	p.print(" {\n")
	p.indent++
	for i := range class.Properties {
		p.printIndent()
		p.printProperty(&class.Properties[i], true)
		p.print("\n")
	}
	p.indent--
	p.printIndent()
	p.print("}")
}

func (p *printer) printBlock(block *js_ast.SBlock) {
	p.print("{\n")
	p.indent++
	for i := range block.Stmts {
		p.printStmt(&block.Stmts[i])
	}
	p.indent--
	p.printIndent()
	p.print("}")
}
