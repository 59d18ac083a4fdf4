package js_printer

import (
	"errors"

	"github.com/modpack-dev/modpack/internal/js_ast"
)

func (p *printer) printExpr(expr js_ast.Expr, level js_ast.L) {
	if expr.Data == nil {
		return // array hole
	}
	p.addMapping(expr.Loc)

	switch e := expr.Data.(type) {
	case *js_ast.EIdentifier:
		p.print(e.Name)

	case *js_ast.EString:
		p.print(quoteString(e.Value))

	case *js_ast.ENumber:
		p.print(e.Raw)

	case *js_ast.EBoolean:
		if e.Value {
			p.print("true")
		} else {
			p.print("false")
		}

	case *js_ast.ENull:
		p.print("null")

	case *js_ast.EUndefined:
		p.print("undefined")

	case *js_ast.EThis:
		p.print("this")

	case *js_ast.ESuper:
		p.print("super")

	case *js_ast.EImportMeta:
		p.print("import.meta")

	case *js_ast.ERegExp:
		p.print(e.Raw)

	case *js_ast.ETemplate:
		if e.TagOrNil.Data != nil {
			p.printExpr(e.TagOrNil, js_ast.LPostfix)
		}
		p.print("`")
		p.print(e.HeadRaw)
		for i := range e.Parts {
			p.print("${")
			p.printExpr(e.Parts[i].Value, js_ast.LLowest)
			p.print("}")
			p.print(e.Parts[i].TailRaw)
		}
		p.print("`")

	case *js_ast.EArray:
		p.print("[")
		for i := range e.Items {
			if i > 0 {
				p.print(", ")
			}
			p.printExpr(e.Items[i], js_ast.LComma)
		}
		p.print("]")

	case *js_ast.EObject:
		wrap := len(p.js) == p.stmtStart || len(p.js) == p.arrowExprStart
		if wrap {
			p.print("(")
		}
		if len(e.Properties) == 0 {
			p.print("{}")
		} else {
			p.print("{ ")
			for i := range e.Properties {
				if i > 0 {
					p.print(", ")
				}
				p.printProperty(&e.Properties[i], false)
			}
			p.print(" }")
		}
		if wrap {
			p.print(")")
		}

	case *js_ast.ESpread:
		p.print("...")
		p.printExpr(e.Value, js_ast.LComma)

	case *js_ast.EUnary:
		entry := js_ast.OpTable[e.Op]
		if e.Op.IsPrefix() {
			wrap := level >= js_ast.LPrefix
			if wrap {
				p.print("(")
			}
			p.print(entry.Text)
			if entry.IsKeyword {
				p.print(" ")
			} else if needsSpaceAfterSign(e.Op, e.Value) {
				p.print(" ")
			}
			p.printExpr(e.Value, js_ast.LPrefix-1)
			if wrap {
				p.print(")")
			}
		} else {
			wrap := level >= js_ast.LPostfix
			if wrap {
				p.print("(")
			}
			p.printExpr(e.Value, js_ast.LPostfix-1)
			p.print(entry.Text)
			if wrap {
				p.print(")")
			}
		}

	case *js_ast.EBinary:
		entry := js_ast.OpTable[e.Op]
		wrap := level >= entry.Level
		if wrap {
			p.print("(")
		}
		leftLevel := entry.Level - 1
		rightLevel := entry.Level - 1
		if e.Op.IsRightAssociative() {
			leftLevel = entry.Level
		}
		if e.Op.IsLeftAssociative() {
			rightLevel = entry.Level
		}
		// Unary operands of "**" always need parentheses
		if e.Op == js_ast.BinOpPow {
			if unary, isUnary := e.Left.Data.(*js_ast.EUnary); isUnary && unary.Op.IsPrefix() {
				leftLevel = js_ast.LCall
			}
		}
		p.printExpr(e.Left, leftLevel)
		if e.Op == js_ast.BinOpComma {
			p.print(", ")
		} else {
			p.print(" ")
			p.print(entry.Text)
			p.print(" ")
		}
		p.printExpr(e.Right, rightLevel)
		if wrap {
			p.print(")")
		}

	case *js_ast.EIf:
		wrap := level >= js_ast.LConditional
		if wrap {
			p.print("(")
		}
		p.printExpr(e.Test, js_ast.LConditional)
		p.print(" ? ")
		p.printExpr(e.Yes, js_ast.LComma)
		p.print(" : ")
		p.printExpr(e.No, js_ast.LComma)
		if wrap {
			p.print(")")
		}

	case *js_ast.EDot:
		if _, isNumber := e.Target.Data.(*js_ast.ENumber); isNumber {
			p.print("(")
			p.printExpr(e.Target, js_ast.LLowest)
			p.print(")")
		} else {
			p.printExpr(e.Target, js_ast.LPostfix)
		}
		if e.OptionalChain {
			p.print("?.")
		} else {
			p.print(".")
		}
		p.addMapping(e.NameLoc)
		p.print(e.Name)

	case *js_ast.EIndex:
		p.printExpr(e.Target, js_ast.LPostfix)
		if e.OptionalChain {
			p.print("?.")
		}
		p.print("[")
		p.printExpr(e.Index, js_ast.LLowest)
		p.print("]")

	case *js_ast.ECall:
		wrap := level >= js_ast.LCall
		if wrap {
			p.print("(")
		}
		p.printExpr(e.Target, js_ast.LPostfix)
		if e.OptionalChain {
			p.print("?.")
		}
		p.print("(")
		for i := range e.Args {
			if i > 0 {
				p.print(", ")
			}
			p.printExpr(e.Args[i], js_ast.LComma)
		}
		p.print(")")
		if wrap {
			p.print(")")
		}

	case *js_ast.ENew:
		wrap := level >= js_ast.LCall
		if wrap {
			p.print("(")
		}
		p.print("new ")
		p.printExpr(e.Target, js_ast.LCall)
		p.print("(")
		for i := range e.Args {
			if i > 0 {
				p.print(", ")
			}
			p.printExpr(e.Args[i], js_ast.LComma)
		}
		p.print(")")
		if wrap {
			p.print(")")
		}

	case *js_ast.EImportCall:
		p.print("import(")
		p.printExpr(e.Expr, js_ast.LComma)
		if e.OptionsOrNil.Data != nil {
			p.print(", ")
			p.printExpr(e.OptionsOrNil, js_ast.LComma)
		}
		p.print(")")

	case *js_ast.EAwait:
		wrap := level >= js_ast.LPrefix
		if wrap {
			p.print("(")
		}
		p.print("await ")
		p.printExpr(e.Value, js_ast.LPrefix-1)
		if wrap {
			p.print(")")
		}

	case *js_ast.EYield:
		wrap := level >= js_ast.LAssign
		if wrap {
			p.print("(")
		}
		p.print("yield")
		if e.IsStar {
			p.print("*")
		}
		if e.ValueOrNil.Data != nil {
			p.print(" ")
			p.printExpr(e.ValueOrNil, js_ast.LYield)
		}
		if wrap {
			p.print(")")
		}

	case *js_ast.EArrow:
		wrap := level >= js_ast.LAssign
		if wrap {
			p.print("(")
		}
		if e.IsAsync {
			p.print("async ")
		}
		p.printArgs(e.Args, e.HasRestArg)
		p.print(" => ")
		if e.PreferExpr && len(e.Body.Block.Stmts) == 1 {
			if ret, isReturn := e.Body.Block.Stmts[0].Data.(*js_ast.SReturn); isReturn && ret.ValueOrNil.Data != nil {
				p.arrowExprStart = len(p.js)
				p.printExpr(ret.ValueOrNil, js_ast.LComma)
				if wrap {
					p.print(")")
				}
				return
			}
		}
		p.printBlock(&e.Body.Block)
		if wrap {
			p.print(")")
		}

	case *js_ast.EFunction:
		wrap := len(p.js) == p.stmtStart
		if wrap {
			p.print("(")
		}
		if e.Fn.IsAsync {
			p.print("async ")
		}
		p.print("function")
		if e.Fn.IsGenerator {
			p.print("*")
		}
		if e.Fn.Name != "" {
			p.print(" ")
			p.print(e.Fn.Name)
		}
		p.printFnArgsAndBody(&e.Fn)
		if wrap {
			p.print(")")
		}

	case *js_ast.EClass:
		wrap := len(p.js) == p.stmtStart
		if wrap {
			p.print("(")
		}
		p.printClass(&e.Class)
		if wrap {
			p.print(")")
		}

	case *js_ast.EJSXElement:
		if p.err == nil {
			p.err = errors.New("cannot print a JSX element that was not transformed")
		}

	default:
		if p.err == nil {
			p.err = errors.New("cannot print unknown expression node")
		}
	}
}

// needsSpaceAfterSign avoids gluing "+ +a" into "++a".
func needsSpaceAfterSign(op js_ast.OpCode, value js_ast.Expr) bool {
	unary, isUnary := value.Data.(*js_ast.EUnary)
	if !isUnary {
		return false
	}
	switch op {
	case js_ast.UnOpPos:
		return unary.Op == js_ast.UnOpPos || unary.Op == js_ast.UnOpPreInc
	case js_ast.UnOpNeg:
		return unary.Op == js_ast.UnOpNeg || unary.Op == js_ast.UnOpPreDec
	}
	return false
}

func (p *printer) printDecls(kind js_ast.LocalKind, decls []js_ast.Decl) {
	p.print(kind.String())
	p.print(" ")
	for i := range decls {
		if i > 0 {
			p.print(", ")
		}
		p.printBinding(decls[i].Binding)
		if decls[i].ValueOrNil.Data != nil {
			p.print(" = ")
			p.printExpr(decls[i].ValueOrNil, js_ast.LComma)
		}
	}
}

// printBody prints a statement that hangs off a control keyword.
func (p *printer) printBody(stmt js_ast.Stmt) {
	if block, isBlock := stmt.Data.(*js_ast.SBlock); isBlock {
		p.print(" ")
		p.printBlock(block)
		return
	}
	p.print("\n")
	p.indent++
	p.printStmt(&stmt)
	p.indent--
	p.printIndent()
}

func (p *printer) printClauseItems(items []js_ast.ClauseItem) {
	p.print("{ ")
	for i, item := range items {
		if i > 0 {
			p.print(", ")
		}
		p.print(item.Name)
		if item.Alias != "" {
			p.print(" as ")
			p.print(item.Alias)
		}
	}
	p.print(" }")
}

func (p *printer) printForLoopInit(stmt js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SLocal:
		p.printDecls(s.Kind, s.Decls)
	case *js_ast.SExpr:
		p.printExpr(s.Value, js_ast.LLowest)
	}
}

func (p *printer) printStmt(stmt *js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SEmpty:
		return

	case *js_ast.SComment:
		p.printIndent()
		p.addMapping(stmt.Loc)
		p.print(s.Text)
		p.print("\n")
		return
	}

	p.printIndent()
	p.addMapping(stmt.Loc)

	switch s := stmt.Data.(type) {
	case *js_ast.SDirective:
		p.print(quoteString(s.Value))
		p.print(";\n")

	case *js_ast.SDebugger:
		p.print("debugger;\n")

	case *js_ast.SBlock:
		p.printBlock(s)
		p.print("\n")

	case *js_ast.SExpr:
		p.stmtStart = len(p.js)
		p.printExpr(s.Value, js_ast.LLowest)
		p.print(";\n")

	case *js_ast.SLocal:
		if s.IsExport {
			p.print("export ")
		}
		p.printDecls(s.Kind, s.Decls)
		p.print(";\n")

	case *js_ast.SFunction:
		if s.IsExport {
			p.print("export ")
		}
		if s.Fn.IsAsync {
			p.print("async ")
		}
		p.print("function")
		if s.Fn.IsGenerator {
			p.print("*")
		}
		if s.Fn.Name != "" {
			p.print(" ")
			p.print(s.Fn.Name)
		}
		p.printFnArgsAndBody(&s.Fn)
		p.print("\n")

	case *js_ast.SClass:
		if s.IsExport {
			p.print("export ")
		}
		p.printClass(&s.Class)
		p.print("\n")

	case *js_ast.SIf:
		p.printIf(s)

	case *js_ast.SFor:
		p.print("for (")
		if s.InitOrNil.Data != nil {
			p.printForLoopInit(s.InitOrNil)
		}
		p.print("; ")
		if s.TestOrNil.Data != nil {
			p.printExpr(s.TestOrNil, js_ast.LLowest)
		}
		p.print("; ")
		if s.UpdateOrNil.Data != nil {
			p.printExpr(s.UpdateOrNil, js_ast.LLowest)
		}
		p.print(")")
		p.printBody(s.Body)
		p.print("\n")

	case *js_ast.SForIn:
		p.print("for (")
		p.printForLoopInit(s.Init)
		p.print(" in ")
		p.printExpr(s.Value, js_ast.LLowest)
		p.print(")")
		p.printBody(s.Body)
		p.print("\n")

	case *js_ast.SForOf:
		p.print("for ")
		if s.IsAwait {
			p.print("await ")
		}
		p.print("(")
		p.printForLoopInit(s.Init)
		p.print(" of ")
		p.printExpr(s.Value, js_ast.LComma)
		p.print(")")
		p.printBody(s.Body)
		p.print("\n")

	case *js_ast.SWhile:
		p.print("while (")
		p.printExpr(s.Test, js_ast.LLowest)
		p.print(")")
		p.printBody(s.Body)
		p.print("\n")

	case *js_ast.SDoWhile:
		p.print("do")
		p.printBody(s.Body)
		p.print(" while (")
		p.printExpr(s.Test, js_ast.LLowest)
		p.print(");\n")

	case *js_ast.SReturn:
		if s.ValueOrNil.Data != nil {
			p.print("return ")
			p.printExpr(s.ValueOrNil, js_ast.LLowest)
			p.print(";\n")
		} else {
			p.print("return;\n")
		}

	case *js_ast.SThrow:
		p.print("throw ")
		p.printExpr(s.Value, js_ast.LLowest)
		p.print(";\n")

	case *js_ast.SBreak:
		if s.Label != "" {
			p.print("break ")
			p.print(s.Label)
			p.print(";\n")
		} else {
			p.print("break;\n")
		}

	case *js_ast.SContinue:
		if s.Label != "" {
			p.print("continue ")
			p.print(s.Label)
			p.print(";\n")
		} else {
			p.print("continue;\n")
		}

	case *js_ast.SLabel:
		p.print(s.Name)
		p.print(":")
		p.printBody(s.Stmt)
		p.print("\n")

	case *js_ast.STry:
		p.print("try ")
		p.printBlock(&s.Block)
		if s.Catch != nil {
			p.print(" catch ")
			if s.Catch.BindingOrNil.Data != nil {
				p.print("(")
				p.printBinding(s.Catch.BindingOrNil)
				p.print(") ")
			}
			p.printBlock(&s.Catch.Block)
		}
		if s.Finally != nil {
			p.print(" finally ")
			p.printBlock(&s.Finally.Block)
		}
		p.print("\n")

	case *js_ast.SSwitch:
		p.print("switch (")
		p.printExpr(s.Test, js_ast.LLowest)
		p.print(") {\n")
		p.indent++
		for i := range s.Cases {
			c := &s.Cases[i]
			p.printIndent()
			if c.ValueOrNil.Data != nil {
				p.print("case ")
				p.printExpr(c.ValueOrNil, js_ast.LLowest)
				p.print(":\n")
			} else {
				p.print("default:\n")
			}
			p.indent++
			for j := range c.Body {
				p.printStmt(&c.Body[j])
			}
			p.indent--
		}
		p.indent--
		p.printIndent()
		p.print("}\n")

	case *js_ast.SImport:
		if s.IsTypeOnly {
			return
		}
		p.print("import ")
		hasClause := false
		if s.DefaultName != "" {
			p.print(s.DefaultName)
			hasClause = true
		}
		if s.StarName != "" {
			if hasClause {
				p.print(", ")
			}
			p.print("* as ")
			p.print(s.StarName)
			hasClause = true
		}
		if s.Items != nil {
			if hasClause {
				p.print(", ")
			}
			p.printClauseItems(*s.Items)
			hasClause = true
		}
		if hasClause {
			p.print(" from ")
		}
		p.addMapping(s.Path.Loc)
		p.print(quoteString(s.Path.Text))
		p.print(";\n")

	case *js_ast.SExportClause:
		p.print("export ")
		p.printClauseItems(s.Items)
		p.print(";\n")

	case *js_ast.SExportFrom:
		p.print("export ")
		p.printClauseItems(s.Items)
		p.print(" from ")
		p.addMapping(s.Path.Loc)
		p.print(quoteString(s.Path.Text))
		p.print(";\n")

	case *js_ast.SExportStar:
		p.print("export *")
		if s.Alias != "" {
			p.print(" as ")
			p.print(s.Alias)
		}
		p.print(" from ")
		p.addMapping(s.Path.Loc)
		p.print(quoteString(s.Path.Text))
		p.print(";\n")

	case *js_ast.SExportDefault:
		p.print("export default ")
		switch value := s.Value.Data.(type) {
		case *js_ast.SExpr:
			p.stmtStart = len(p.js)
			p.printExpr(value.Value, js_ast.LComma)
			p.print(";\n")
		case *js_ast.SFunction:
			if value.Fn.IsAsync {
				p.print("async ")
			}
			p.print("function")
			if value.Fn.IsGenerator {
				p.print("*")
			}
			if value.Fn.Name != "" {
				p.print(" ")
				p.print(value.Fn.Name)
			}
			p.printFnArgsAndBody(&value.Fn)
			p.print("\n")
		case *js_ast.SClass:
			p.printClass(&value.Class)
			p.print("\n")
		}

	default:
		if p.err == nil {
			p.err = errors.New("cannot print unknown statement node")
		}
	}
}

func (p *printer) printIf(s *js_ast.SIf) {
	p.print("if (")
	p.printExpr(s.Test, js_ast.LLowest)
	p.print(")")
	p.printIfBody(s)
}

// printIfBody prints the branches of an "if" whose condition was already
// emitted.
func (p *printer) printIfBody(s *js_ast.SIf) {
	yes, yesIsBlock := s.Yes.Data.(*js_ast.SBlock)
	if yesIsBlock {
		p.print(" ")
		p.printBlock(yes)
	} else {
		p.print("\n")
		p.indent++
		p.printStmt(&s.Yes)
		p.indent--
		if s.NoOrNil.Data != nil {
			p.printIndent()
		}
	}

	if s.NoOrNil.Data == nil {
		if yesIsBlock {
			p.print("\n")
		}
		return
	}

	if yesIsBlock {
		p.print(" else")
	} else {
		p.print("else")
	}

	switch no := s.NoOrNil.Data.(type) {
	case *js_ast.SBlock:
		p.print(" ")
		p.printBlock(no)
		p.print("\n")
	case *js_ast.SIf:
		p.print(" if (")
		p.printExpr(no.Test, js_ast.LLowest)
		p.print(")")
		p.printIfBody(no)
	default:
		p.print("\n")
		p.indent++
		p.printStmt(&s.NoOrNil)
		p.indent--
	}
}
