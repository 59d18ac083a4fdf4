package transform

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/modpack-dev/modpack/internal/js_ast"
	"github.com/modpack-dev/modpack/internal/js_printer"
)

// Fast refresh instrumentation. Components are found in a pre-pass over the
// top-level statements; their hook calls are collected during the main
// traversal; registrations and hook signatures are injected afterwards. The
// $RefreshReg$ and $RefreshSig$ globals are provided by the dev client.

var builtinHooks = map[string]bool{
	"useState":              true,
	"useReducer":            true,
	"useEffect":             true,
	"useLayoutEffect":       true,
	"useMemo":               true,
	"useCallback":           true,
	"useRef":                true,
	"useContext":            true,
	"useImperativeHandle":   true,
	"useDebugValue":         true,
	"useDeferredValue":      true,
	"useTransition":         true,
	"useId":                 true,
	"useSyncExternalStore":  true,
	"useInsertionEffect":    true,
}

type componentInfo struct {
	name string

	// Nil for class components, which carry no hook signature
	body *js_ast.FnBody

	hooks       []js_ast.Expr // hook call expressions in source order
	customHooks []js_ast.Expr // callees of non-builtin hooks
	sigName     string
}

type refreshState struct {
	components []*componentInfo
	byBodyLoc  map[int32]*componentInfo
}

func newRefreshState(tree *js_ast.AST) *refreshState {
	r := &refreshState{byBodyLoc: map[int32]*componentInfo{}}
	for i := range tree.Stmts {
		r.registerTopLevel(&tree.Stmts[i])
	}
	return r
}

func isComponentName(name string) bool {
	first, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(first)
}

func isHookName(name string) bool {
	if len(name) < 4 || name[:3] != "use" {
		return false
	}
	first, _ := utf8.DecodeRuneInString(name[3:])
	return unicode.IsUpper(first)
}

// extendsComponentClass matches "extends React.Component",
// "extends React.PureComponent", and the bare imported names.
func extendsComponentClass(extends js_ast.Expr) bool {
	switch e := extends.Data.(type) {
	case *js_ast.EDot:
		return e.Name == "Component" || e.Name == "PureComponent"
	case *js_ast.EIdentifier:
		return e.Name == "Component" || e.Name == "PureComponent"
	}
	return false
}

func (r *refreshState) register(name string, body *js_ast.FnBody) {
	comp := &componentInfo{name: name, body: body}
	r.components = append(r.components, comp)
	if body != nil {
		r.byBodyLoc[body.Loc.Start] = comp
	}
}

func (r *refreshState) registerTopLevel(stmt *js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SFunction:
		if s.IsExport && isComponentName(s.Fn.Name) {
			r.register(s.Fn.Name, &s.Fn.Body)
		}

	case *js_ast.SExportDefault:
		switch value := s.Value.Data.(type) {
		case *js_ast.SFunction:
			if isComponentName(value.Fn.Name) {
				r.register(value.Fn.Name, &value.Fn.Body)
			}
		case *js_ast.SClass:
			if value.Class.Name != "" && extendsComponentClass(value.Class.ExtendsOrNil) {
				r.register(value.Class.Name, nil)
			}
		}

	case *js_ast.SLocal:
		if !s.IsExport {
			return
		}
		for i := range s.Decls {
			decl := &s.Decls[i]
			id, isIdentifier := decl.Binding.Data.(*js_ast.BIdentifier)
			if !isIdentifier || !isComponentName(id.Name) {
				continue
			}
			switch value := decl.ValueOrNil.Data.(type) {
			case *js_ast.EArrow:
				r.register(id.Name, &value.Body)
			case *js_ast.EFunction:
				r.register(id.Name, &value.Fn.Body)
			}
		}

	case *js_ast.SClass:
		if s.Class.Name != "" && extendsComponentClass(s.Class.ExtendsOrNil) {
			r.register(s.Class.Name, nil)
		}
	}
}

// observeCall records hook calls made directly inside a registered component
// body. Calls inside nested closures belong to the closure, not the
// component, so only the nearest enclosing function counts.
func (r *refreshState) observeCall(expr *js_ast.Expr, call *js_ast.ECall, path *js_ast.NodePath) {
	name := calleeName(call.Target)
	if !isHookName(name) {
		return
	}

	bodyLoc, found := nearestFnBodyLoc(path)
	if !found {
		return
	}
	comp, registered := r.byBodyLoc[bodyLoc]
	if !registered {
		return
	}

	comp.hooks = append(comp.hooks, *expr)
	if !builtinHooks[name] {
		comp.customHooks = append(comp.customHooks, call.Target)
	}
}

func calleeName(target js_ast.Expr) string {
	switch e := target.Data.(type) {
	case *js_ast.EIdentifier:
		return e.Name
	case *js_ast.EDot:
		return e.Name
	}
	return ""
}

func nearestFnBodyLoc(path *js_ast.NodePath) (int32, bool) {
	for node := path.ParentPath; node != nil; node = node.ParentPath {
		switch n := node.Node.(type) {
		case *js_ast.Expr:
			switch e := n.Data.(type) {
			case *js_ast.EArrow:
				return e.Body.Loc.Start, true
			case *js_ast.EFunction:
				return e.Fn.Body.Loc.Start, true
			}
		case *js_ast.Stmt:
			if s, isFn := n.Data.(*js_ast.SFunction); isFn {
				return s.Fn.Body.Loc.Start, true
			}
		}
	}
	return 0, false
}

// Synthesized node helpers

func synthIdent(name string) js_ast.Expr {
	return js_ast.Expr{Loc: js_ast.SyntheticLoc, Data: &js_ast.EIdentifier{Name: name}}
}

func synthString(value string) js_ast.Expr {
	return js_ast.Expr{Loc: js_ast.SyntheticLoc, Data: &js_ast.EString{Value: value}}
}

func synthCall(target js_ast.Expr, args ...js_ast.Expr) js_ast.Expr {
	return js_ast.Expr{Loc: js_ast.SyntheticLoc, Data: &js_ast.ECall{Target: target, Args: args}}
}

func synthExprStmt(value js_ast.Expr) js_ast.Stmt {
	return js_ast.Stmt{Loc: js_ast.SyntheticLoc, Data: &js_ast.SExpr{Value: value}}
}

func synthVarDecl(name string, value js_ast.Expr) js_ast.Stmt {
	return js_ast.Stmt{Loc: js_ast.SyntheticLoc, Data: &js_ast.SLocal{
		Kind: js_ast.LocalVar,
		Decls: []js_ast.Decl{{
			Binding:    js_ast.Binding{Loc: js_ast.SyntheticLoc, Data: &js_ast.BIdentifier{Name: name}},
			ValueOrNil: value,
		}},
	}}
}

// signatureHash prints the component's hook calls and hashes the text, so
// the signature changes exactly when the hook usage changes.
func (r *refreshState) signatureHash(engine Engine, comp *componentInfo) string {
	mini := js_ast.AST{}
	for _, hook := range comp.hooks {
		mini.Stmts = append(mini.Stmts, js_ast.Stmt{Loc: js_ast.SyntheticLoc, Data: &js_ast.SExpr{Value: hook}})
	}
	printed, err := engine.Print(&mini, js_printer.Options{})
	if err != nil {
		return ""
	}
	sum := md5.Sum(printed.JS)
	return hex.EncodeToString(sum[:])
}

// inject adds the signature and registration statements around the module.
func (r *refreshState) inject(engine Engine, tree *js_ast.AST) {
	if len(r.components) == 0 {
		return
	}

	var head []js_ast.Stmt
	var tail []js_ast.Stmt
	sigIndex := 0

	for _, comp := range r.components {
		if comp.body != nil && len(comp.hooks) > 0 {
			comp.sigName = fmt.Sprintf("_s%d", sigIndex)
			sigIndex++

			head = append(head, synthVarDecl(comp.sigName, synthCall(synthIdent("$RefreshSig$"))))
			comp.body.Block.Stmts = append(
				[]js_ast.Stmt{synthExprStmt(synthCall(synthIdent(comp.sigName)))},
				comp.body.Block.Stmts...)

			args := []js_ast.Expr{synthIdent(comp.name), synthString(r.signatureHash(engine, comp))}
			if len(comp.customHooks) > 0 {
				returnList := js_ast.Expr{Loc: js_ast.SyntheticLoc, Data: &js_ast.EArray{Items: comp.customHooks}}
				customFn := js_ast.Expr{Loc: js_ast.SyntheticLoc, Data: &js_ast.EFunction{Fn: js_ast.Fn{
					Body: js_ast.FnBody{Loc: js_ast.SyntheticLoc, Block: js_ast.SBlock{Stmts: []js_ast.Stmt{
						{Loc: js_ast.SyntheticLoc, Data: &js_ast.SReturn{ValueOrNil: returnList}},
					}}},
				}}}
				args = append(args,
					js_ast.Expr{Loc: js_ast.SyntheticLoc, Data: &js_ast.EBoolean{Value: false}},
					customFn)
			}
			tail = append(tail, synthExprStmt(synthCall(synthIdent(comp.sigName), args...)))
		}

		tail = append(tail, synthExprStmt(synthCall(
			synthIdent("$RefreshReg$"), synthIdent(comp.name), synthString(comp.name))))
	}

	tree.Stmts = append(head, tree.Stmts...)
	tree.Stmts = append(tree.Stmts, tail...)
}
