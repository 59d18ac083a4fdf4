package transform

import (
	"strings"
	"unicode"

	"github.com/modpack-dev/modpack/internal/js_ast"
	"github.com/modpack-dev/modpack/internal/logger"
)

// memberChain turns a dotted pragma like "React.createElement" into the
// member expression that calls it.
func memberChain(loc logger.Loc, pragma string) js_ast.Expr {
	parts := strings.Split(pragma, ".")
	expr := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: parts[0]}}
	for _, part := range parts[1:] {
		expr = js_ast.Expr{Loc: loc, Data: &js_ast.EDot{Target: expr, Name: part, NameLoc: loc}}
	}
	return expr
}

// isIntrinsicTag reports whether a JSX tag refers to a host element rather
// than a component binding: lowercase names and names with "-" or ":".
func isIntrinsicTag(name string) bool {
	if name == "" {
		return false
	}
	if strings.ContainsAny(name, "-:") {
		return true
	}
	first := []rune(name)[0]
	return unicode.IsLower(first)
}

// lowerJSXElement rewrites one element into a factory call. Children were
// already lowered because this runs on expression exit.
func (t *transformer) lowerJSXElement(loc logger.Loc, e *js_ast.EJSXElement) js_ast.E {
	var tag js_ast.Expr
	switch {
	case e.TagOrNil.Data == nil:
		tag = memberChain(loc, t.options.JSXFragmentFactory)
	default:
		if id, isIdentifier := e.TagOrNil.Data.(*js_ast.EIdentifier); isIdentifier && isIntrinsicTag(id.Name) {
			tag = js_ast.Expr{Loc: e.TagOrNil.Loc, Data: &js_ast.EString{Value: id.Name}}
		} else {
			tag = e.TagOrNil
		}
	}

	var props js_ast.Expr
	if len(e.Properties) == 0 {
		props = js_ast.Expr{Loc: loc, Data: &js_ast.ENull{}}
	} else {
		props = js_ast.Expr{Loc: loc, Data: &js_ast.EObject{Properties: e.Properties}}
	}

	args := make([]js_ast.Expr, 0, 2+len(e.Children))
	args = append(args, tag, props)
	args = append(args, e.Children...)

	return &js_ast.ECall{
		Target: memberChain(loc, t.options.JSXFactory),
		Args:   args,
	}
}
