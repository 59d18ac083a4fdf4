// Package js_parser builds an AST from one module's source text. It is a
// recursive descent parser with precedence climbing for expressions. Lexer
// and parser errors unwind with a LexerPanic that Parse converts into a
// failed result; the messages are already on the log by then.
package js_parser

import (
	"strings"

	"github.com/modpack-dev/modpack/internal/js_ast"
	"github.com/modpack-dev/modpack/internal/js_lexer"
	"github.com/modpack-dev/modpack/internal/logger"
)

type Options struct {
	// Parse JSX elements when "<" appears in expression position
	JSX bool

	// Strip TypeScript type annotations and type-only declarations
	TS bool
}

// OptionsForFilename infers the source dialect from the file extension the
// way the loader does: everything is JSX-capable except .ts and .mjs.
func OptionsForFilename(filename string) Options {
	switch {
	case strings.HasSuffix(filename, ".tsx"):
		return Options{TS: true, JSX: true}
	case strings.HasSuffix(filename, ".ts"):
		return Options{TS: true}
	case strings.HasSuffix(filename, ".mjs"):
		return Options{}
	default:
		return Options{JSX: true}
	}
}

type parser struct {
	log     *logger.Log
	source  *logger.Source
	lexer   js_lexer.Lexer
	options Options

	// "in" is not a binary operator inside a for loop initializer
	allowIn bool
}

// Parse turns source text into an AST. When ok is false the log carries at
// least one error message and the tree must not be used.
func Parse(log *logger.Log, source *logger.Source, options Options) (tree js_ast.AST, ok bool) {
	ok = true
	defer func() {
		if r := recover(); r != nil {
			if _, isLexerPanic := r.(js_lexer.LexerPanic); isLexerPanic {
				ok = false
			} else {
				panic(r)
			}
		}
	}()

	p := &parser{
		log:     log,
		source:  source,
		options: options,
		allowIn: true,
	}
	p.lexer = js_lexer.NewLexer(log, source)

	stmts := p.parseStmtsUpTo(js_lexer.TEndOfFile)

	// Hoist a leading "use strict" out of the statement list
	if len(stmts) > 0 {
		if expr, isExpr := stmts[0].Data.(*js_ast.SExpr); isExpr {
			if str, isStr := expr.Value.Data.(*js_ast.EString); isStr && str.Value == "use strict" {
				tree.Directive = str.Value
				stmts = stmts[1:]
			}
		}
	}
	tree.Stmts = stmts
	return
}

func (p *parser) parseStmtsUpTo(end js_lexer.T) []js_ast.Stmt {
	stmts := []js_ast.Stmt{}
	for p.lexer.Token != end {
		if p.lexer.Token == js_lexer.TEndOfFile {
			p.lexer.Expected(end)
		}
		stmts = append(stmts, p.parseStmt())
	}
	return stmts
}

// expectSemicolon consumes an explicit ";" or accepts an inserted one.
func (p *parser) expectSemicolon() {
	switch {
	case p.lexer.Token == js_lexer.TSemicolon:
		p.lexer.Next()
	case p.lexer.HasNewlineBefore,
		p.lexer.Token == js_lexer.TCloseBrace,
		p.lexer.Token == js_lexer.TEndOfFile:
	default:
		p.lexer.Expected(js_lexer.TSemicolon)
	}
}

// peekToken looks at the token after the current one without committing.
func (p *parser) peekToken() js_lexer.T {
	result := js_lexer.TSyntaxError
	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, isLexerPanic := r.(js_lexer.LexerPanic); !isLexerPanic {
					panic(r)
				}
			}
		}()
		lexer := p.lexer
		lexer.IsLogDisabled = true
		lexer.Next()
		result = lexer.Token
	}()
	return result
}

func (p *parser) parseStmt() js_ast.Stmt {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TSemicolon:
		p.lexer.Next()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace)
		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBlock{Stmts: stmts}}

	case js_lexer.TDebugger:
		p.lexer.Next()
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SDebugger{}}

	case js_lexer.TVar:
		p.lexer.Next()
		decls := p.parseDecls()
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{Kind: js_ast.LocalVar, Decls: decls}}

	case js_lexer.TConst:
		p.lexer.Next()
		decls := p.parseDecls()
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{Kind: js_ast.LocalConst, Decls: decls}}

	case js_lexer.TFunction:
		return p.parseFnStmt(loc, false, false)

	case js_lexer.TClass:
		p.lexer.Next()
		class := p.parseClass()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SClass{Class: class}}

	case js_lexer.TIf:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		yes := p.parseStmt()
		var no js_ast.Stmt
		if p.lexer.Token == js_lexer.TElse {
			p.lexer.Next()
			no = p.parseStmt()
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SIf{Test: test, Yes: yes, NoOrNil: no}}

	case js_lexer.TDo:
		p.lexer.Next()
		body := p.parseStmt()
		p.lexer.Expect(js_lexer.TWhile)
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		if p.lexer.Token == js_lexer.TSemicolon {
			p.lexer.Next()
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SDoWhile{Body: body, Test: test}}

	case js_lexer.TWhile:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		body := p.parseStmt()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SWhile{Test: test, Body: body}}

	case js_lexer.TFor:
		return p.parseForStmt(loc)

	case js_lexer.TSwitch:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		p.lexer.Expect(js_lexer.TOpenBrace)
		var cases []js_ast.Case
		for p.lexer.Token != js_lexer.TCloseBrace {
			var value js_ast.Expr
			if p.lexer.Token == js_lexer.TDefault {
				p.lexer.Next()
			} else {
				p.lexer.Expect(js_lexer.TCase)
				value = p.parseExpr(js_ast.LLowest)
			}
			p.lexer.Expect(js_lexer.TColon)
			var body []js_ast.Stmt
			for p.lexer.Token != js_lexer.TCase && p.lexer.Token != js_lexer.TDefault &&
				p.lexer.Token != js_lexer.TCloseBrace {
				body = append(body, p.parseStmt())
			}
			cases = append(cases, js_ast.Case{ValueOrNil: value, Body: body})
		}
		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SSwitch{Test: test, Cases: cases}}

	case js_lexer.TBreak:
		p.lexer.Next()
		label := ""
		if p.lexer.Token == js_lexer.TIdentifier && !p.lexer.HasNewlineBefore {
			label = p.lexer.Identifier
			p.lexer.Next()
		}
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBreak{Label: label}}

	case js_lexer.TContinue:
		p.lexer.Next()
		label := ""
		if p.lexer.Token == js_lexer.TIdentifier && !p.lexer.HasNewlineBefore {
			label = p.lexer.Identifier
			p.lexer.Next()
		}
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SContinue{Label: label}}

	case js_lexer.TReturn:
		p.lexer.Next()
		var value js_ast.Expr
		if !p.lexer.HasNewlineBefore && p.lexer.Token != js_lexer.TSemicolon &&
			p.lexer.Token != js_lexer.TCloseBrace && p.lexer.Token != js_lexer.TEndOfFile {
			value = p.parseExpr(js_ast.LLowest)
		}
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SReturn{ValueOrNil: value}}

	case js_lexer.TThrow:
		p.lexer.Next()
		value := p.parseExpr(js_ast.LLowest)
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SThrow{Value: value}}

	case js_lexer.TTry:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenBrace)
		block := js_ast.SBlock{Stmts: p.parseStmtsUpTo(js_lexer.TCloseBrace)}
		p.lexer.Expect(js_lexer.TCloseBrace)
		var catch *js_ast.Catch
		var finally *js_ast.Finally
		if p.lexer.Token == js_lexer.TCatch {
			p.lexer.Next()
			var binding js_ast.Binding
			if p.lexer.Token == js_lexer.TOpenParen {
				p.lexer.Next()
				binding = p.parseBinding()
				if p.options.TS && p.lexer.Token == js_lexer.TColon {
					p.skipTypeAnnotation()
				}
				p.lexer.Expect(js_lexer.TCloseParen)
			}
			p.lexer.Expect(js_lexer.TOpenBrace)
			catchBlock := js_ast.SBlock{Stmts: p.parseStmtsUpTo(js_lexer.TCloseBrace)}
			p.lexer.Expect(js_lexer.TCloseBrace)
			catch = &js_ast.Catch{BindingOrNil: binding, Block: catchBlock}
		}
		if p.lexer.Token == js_lexer.TFinally {
			p.lexer.Next()
			p.lexer.Expect(js_lexer.TOpenBrace)
			finallyBlock := js_ast.SBlock{Stmts: p.parseStmtsUpTo(js_lexer.TCloseBrace)}
			p.lexer.Expect(js_lexer.TCloseBrace)
			finally = &js_ast.Finally{Block: finallyBlock}
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.STry{Block: block, Catch: catch, Finally: finally}}

	case js_lexer.TImport:
		return p.parseImportStmt(loc)

	case js_lexer.TExport:
		return p.parseExportStmt(loc)

	case js_lexer.TEnum:
		// Enums generate runtime code and are outside type stripping
		p.lexer.SyntaxError()

	case js_lexer.TIdentifier:
		name := p.lexer.Identifier
		switch name {
		case "let":
			switch p.peekToken() {
			case js_lexer.TIdentifier, js_lexer.TOpenBracket, js_lexer.TOpenBrace:
				p.lexer.Next()
				decls := p.parseDecls()
				p.expectSemicolon()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{Kind: js_ast.LocalLet, Decls: decls}}
			}
		case "async":
			if p.peekToken() == js_lexer.TFunction {
				p.lexer.Next()
				return p.parseFnStmt(loc, false, true)
			}
		case "interface":
			if p.options.TS && p.peekToken() == js_lexer.TIdentifier {
				p.skipInterfaceDecl()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}
			}
		case "type":
			if p.options.TS && p.peekToken() == js_lexer.TIdentifier {
				p.skipTypeAliasDecl()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}
			}
		case "declare":
			if p.options.TS && !p.lexer.HasNewlineBefore {
				p.skipAmbientDecl()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}
			}
		}
		if p.peekToken() == js_lexer.TColon {
			p.lexer.Next()
			p.lexer.Expect(js_lexer.TColon)
			stmt := p.parseStmt()
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SLabel{Name: name, Stmt: stmt}}
		}
	}

	expr := p.parseExpr(js_ast.LLowest)
	p.expectSemicolon()
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: expr}}
}

func (p *parser) parseForStmt(loc logger.Loc) js_ast.Stmt {
	p.lexer.Expect(js_lexer.TFor)
	isAwait := false
	if p.lexer.IsContextualKeyword("await") {
		isAwait = true
		p.lexer.Next()
	}
	p.lexer.Expect(js_lexer.TOpenParen)

	var init js_ast.Stmt
	initLoc := p.lexer.Loc()

	if p.lexer.Token != js_lexer.TSemicolon {
		kind := js_ast.LocalVar
		isDecl := false
		switch {
		case p.lexer.Token == js_lexer.TVar:
			isDecl = true
			p.lexer.Next()
		case p.lexer.Token == js_lexer.TConst:
			isDecl = true
			kind = js_ast.LocalConst
			p.lexer.Next()
		case p.lexer.IsContextualKeyword("let"):
			switch p.peekToken() {
			case js_lexer.TIdentifier, js_lexer.TOpenBracket, js_lexer.TOpenBrace:
				isDecl = true
				kind = js_ast.LocalLet
				p.lexer.Next()
			}
		}

		if isDecl {
			binding := p.parseBinding()
			if p.options.TS && p.lexer.Token == js_lexer.TColon {
				p.skipTypeAnnotation()
			}
			if p.lexer.Token == js_lexer.TIn {
				p.lexer.Next()
				init = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SLocal{Kind: kind, Decls: []js_ast.Decl{{Binding: binding}}}}
				return p.parseForInOrOfBody(loc, init, true, isAwait)
			}
			if p.lexer.IsContextualKeyword("of") {
				p.lexer.Next()
				init = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SLocal{Kind: kind, Decls: []js_ast.Decl{{Binding: binding}}}}
				return p.parseForInOrOfBody(loc, init, false, isAwait)
			}
			decls := []js_ast.Decl{}
			var value js_ast.Expr
			if p.lexer.Token == js_lexer.TEquals {
				p.lexer.Next()
				p.allowIn = false
				value = p.parseExpr(js_ast.LComma)
				p.allowIn = true
			}
			decls = append(decls, js_ast.Decl{Binding: binding, ValueOrNil: value})
			for p.lexer.Token == js_lexer.TComma {
				p.lexer.Next()
				p.allowIn = false
				decls = append(decls, p.parseDecl())
				p.allowIn = true
			}
			init = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SLocal{Kind: kind, Decls: decls}}
		} else {
			p.allowIn = false
			expr := p.parseExpr(js_ast.LLowest)
			p.allowIn = true
			if p.lexer.Token == js_lexer.TIn {
				p.lexer.Next()
				init = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SExpr{Value: expr}}
				return p.parseForInOrOfBody(loc, init, true, isAwait)
			}
			if p.lexer.IsContextualKeyword("of") {
				p.lexer.Next()
				init = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SExpr{Value: expr}}
				return p.parseForInOrOfBody(loc, init, false, isAwait)
			}
			init = js_ast.Stmt{Loc: initLoc, Data: &js_ast.SExpr{Value: expr}}
		}
	}

	p.lexer.Expect(js_lexer.TSemicolon)
	var test js_ast.Expr
	if p.lexer.Token != js_lexer.TSemicolon {
		test = p.parseExpr(js_ast.LLowest)
	}
	p.lexer.Expect(js_lexer.TSemicolon)
	var update js_ast.Expr
	if p.lexer.Token != js_lexer.TCloseParen {
		update = p.parseExpr(js_ast.LLowest)
	}
	p.lexer.Expect(js_lexer.TCloseParen)
	body := p.parseStmt()
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SFor{InitOrNil: init, TestOrNil: test, UpdateOrNil: update, Body: body}}
}

func (p *parser) parseForInOrOfBody(loc logger.Loc, init js_ast.Stmt, isIn bool, isAwait bool) js_ast.Stmt {
	value := p.parseExpr(js_ast.LComma)
	p.lexer.Expect(js_lexer.TCloseParen)
	body := p.parseStmt()
	if isIn {
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SForIn{Init: init, Value: value, Body: body}}
	}
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SForOf{IsAwait: isAwait, Init: init, Value: value, Body: body}}
}

func (p *parser) parseFnStmt(loc logger.Loc, isExport bool, isAsync bool) js_ast.Stmt {
	p.lexer.Expect(js_lexer.TFunction)
	isGenerator := false
	if p.lexer.Token == js_lexer.TAsterisk {
		isGenerator = true
		p.lexer.Next()
	}
	name := ""
	nameLoc := p.lexer.Loc()
	if p.lexer.Token == js_lexer.TIdentifier {
		name = p.lexer.Identifier
		p.lexer.Next()
	}
	fn := p.parseFn(isAsync, isGenerator)
	fn.Name = name
	fn.NameLoc = nameLoc
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SFunction{Fn: fn, IsExport: isExport}}
}

// parseFn parses from the argument list onward. The caller fills in the name.
func (p *parser) parseFn(isAsync bool, isGenerator bool) js_ast.Fn {
	if p.options.TS && p.lexer.Token == js_lexer.TLessThan {
		p.skipTypeParams()
	}
	args, hasRest := p.parseFnArgs()
	if p.options.TS && p.lexer.Token == js_lexer.TColon {
		p.lexer.Next()
		p.skipType(false)
	}
	bodyLoc := p.lexer.Loc()
	p.lexer.Expect(js_lexer.TOpenBrace)
	stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace)
	p.lexer.Expect(js_lexer.TCloseBrace)
	return js_ast.Fn{
		Args:        args,
		Body:        js_ast.FnBody{Loc: bodyLoc, Block: js_ast.SBlock{Stmts: stmts}},
		IsAsync:     isAsync,
		IsGenerator: isGenerator,
		HasRestArg:  hasRest,
	}
}

func (p *parser) parseFnArgs() ([]js_ast.Arg, bool) {
	p.lexer.Expect(js_lexer.TOpenParen)
	var args []js_ast.Arg
	hasRest := false
	for p.lexer.Token != js_lexer.TCloseParen {
		if p.lexer.Token == js_lexer.TDotDotDot {
			hasRest = true
			p.lexer.Next()
		}
		if p.options.TS {
			// Parameter property modifiers on constructor arguments
			for p.lexer.Token == js_lexer.TIdentifier {
				switch p.lexer.Identifier {
				case "public", "private", "protected", "readonly":
					if t := p.peekToken(); t == js_lexer.TIdentifier || t == js_lexer.TOpenBrace || t == js_lexer.TOpenBracket {
						p.lexer.Next()
						continue
					}
				}
				break
			}
		}
		binding := p.parseBinding()
		if p.options.TS {
			if p.lexer.Token == js_lexer.TQuestion {
				p.lexer.Next()
			}
			if p.lexer.Token == js_lexer.TColon {
				p.skipTypeAnnotation()
			}
		}
		var def js_ast.Expr
		if p.lexer.Token == js_lexer.TEquals {
			p.lexer.Next()
			def = p.parseExpr(js_ast.LComma)
		}
		args = append(args, js_ast.Arg{Binding: binding, DefaultOrNil: def})
		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}
	p.lexer.Expect(js_lexer.TCloseParen)
	return args, hasRest
}

func (p *parser) parseDecl() js_ast.Decl {
	binding := p.parseBinding()
	if p.options.TS {
		if p.lexer.Token == js_lexer.TExclamation {
			p.lexer.Next()
		}
		if p.lexer.Token == js_lexer.TColon {
			p.skipTypeAnnotation()
		}
	}
	var value js_ast.Expr
	if p.lexer.Token == js_lexer.TEquals {
		p.lexer.Next()
		value = p.parseExpr(js_ast.LComma)
	}
	return js_ast.Decl{Binding: binding, ValueOrNil: value}
}

func (p *parser) parseDecls() []js_ast.Decl {
	decls := []js_ast.Decl{p.parseDecl()}
	for p.lexer.Token == js_lexer.TComma {
		p.lexer.Next()
		decls = append(decls, p.parseDecl())
	}
	return decls
}

func (p *parser) parseBinding() js_ast.Binding {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TIdentifier:
		name := p.lexer.Identifier
		p.lexer.Next()
		return js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: name}}

	case js_lexer.TOpenBracket:
		p.lexer.Next()
		var items []js_ast.BArrayItem
		for p.lexer.Token != js_lexer.TCloseBracket {
			if p.lexer.Token == js_lexer.TComma {
				// Hole
				items = append(items, js_ast.BArrayItem{})
				p.lexer.Next()
				continue
			}
			isSpread := false
			if p.lexer.Token == js_lexer.TDotDotDot {
				isSpread = true
				p.lexer.Next()
			}
			binding := p.parseBinding()
			var def js_ast.Expr
			if p.lexer.Token == js_lexer.TEquals {
				p.lexer.Next()
				def = p.parseExpr(js_ast.LComma)
			}
			items = append(items, js_ast.BArrayItem{Binding: binding, DefaultOrNil: def, IsSpread: isSpread})
			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}
		p.lexer.Expect(js_lexer.TCloseBracket)
		return js_ast.Binding{Loc: loc, Data: &js_ast.BArray{Items: items}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		var properties []js_ast.BProperty
		for p.lexer.Token != js_lexer.TCloseBrace {
			if p.lexer.Token == js_lexer.TDotDotDot {
				p.lexer.Next()
				value := p.parseBinding()
				properties = append(properties, js_ast.BProperty{Value: value, IsSpread: true})
				break
			}
			property := p.parseBindingProperty()
			properties = append(properties, property)
			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}
		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Binding{Loc: loc, Data: &js_ast.BObject{Properties: properties}}
	}

	p.lexer.Expected(js_lexer.TIdentifier)
	return js_ast.Binding{}
}

func (p *parser) parseBindingProperty() js_ast.BProperty {
	keyLoc := p.lexer.Loc()
	var key js_ast.Expr
	isComputed := false

	switch {
	case p.lexer.Token == js_lexer.TOpenBracket:
		isComputed = true
		p.lexer.Next()
		key = p.parseExpr(js_ast.LComma)
		p.lexer.Expect(js_lexer.TCloseBracket)
	case p.lexer.Token == js_lexer.TStringLiteral:
		key = js_ast.Expr{Loc: keyLoc, Data: &js_ast.EString{Value: p.lexer.StringValue}}
		p.lexer.Next()
	case p.lexer.Token == js_lexer.TNumericLiteral:
		key = js_ast.Expr{Loc: keyLoc, Data: &js_ast.ENumber{Raw: p.lexer.Number}}
		p.lexer.Next()
	case p.lexer.IsIdentifierOrKeyword():
		name := p.lexer.Identifier
		key = js_ast.Expr{Loc: keyLoc, Data: &js_ast.EString{Value: name}}
		p.lexer.Next()
		if p.lexer.Token != js_lexer.TColon {
			// Shorthand "{ a }" or "{ a = 1 }"
			var def js_ast.Expr
			if p.lexer.Token == js_lexer.TEquals {
				p.lexer.Next()
				def = p.parseExpr(js_ast.LComma)
			}
			return js_ast.BProperty{
				Key:          key,
				Value:        js_ast.Binding{Loc: keyLoc, Data: &js_ast.BIdentifier{Name: name}},
				DefaultOrNil: def,
				WasShorthand: true,
			}
		}
	default:
		p.lexer.Expected(js_lexer.TIdentifier)
	}

	p.lexer.Expect(js_lexer.TColon)
	value := p.parseBinding()
	var def js_ast.Expr
	if p.lexer.Token == js_lexer.TEquals {
		p.lexer.Next()
		def = p.parseExpr(js_ast.LComma)
	}
	return js_ast.BProperty{Key: key, Value: value, DefaultOrNil: def, IsComputed: isComputed}
}

func (p *parser) parseClass() js_ast.Class {
	name := ""
	nameLoc := p.lexer.Loc()
	if p.lexer.Token == js_lexer.TIdentifier {
		name = p.lexer.Identifier
		p.lexer.Next()
	}
	if p.options.TS && p.lexer.Token == js_lexer.TLessThan {
		p.skipTypeParams()
	}
	var extends js_ast.Expr
	if p.lexer.Token == js_lexer.TExtends {
		p.lexer.Next()
		extends = p.parseExpr(js_ast.LNew)
		if p.options.TS && p.lexer.Token == js_lexer.TLessThan {
			p.skipTypeParams()
		}
	}
	if p.options.TS && p.lexer.IsContextualKeyword("implements") {
		for p.lexer.Token != js_lexer.TOpenBrace && p.lexer.Token != js_lexer.TEndOfFile {
			p.lexer.Next()
		}
	}
	p.lexer.Expect(js_lexer.TOpenBrace)
	var properties []js_ast.Property
	for p.lexer.Token != js_lexer.TCloseBrace {
		if p.lexer.Token == js_lexer.TSemicolon {
			p.lexer.Next()
			continue
		}
		properties = append(properties, p.parseProperty(true))
	}
	p.lexer.Expect(js_lexer.TCloseBrace)
	return js_ast.Class{Name: name, NameLoc: nameLoc, ExtendsOrNil: extends, Properties: properties}
}

// modifierStartsMember reports whether the token after a would-be modifier
// still looks like the start of a class member.
func (p *parser) modifierStartsMember() bool {
	switch p.peekToken() {
	case js_lexer.TIdentifier, js_lexer.TStringLiteral, js_lexer.TNumericLiteral,
		js_lexer.TOpenBracket, js_lexer.TAsterisk:
		return true
	}
	return false
}

func (p *parser) parseProperty(isClass bool) js_ast.Property {
	loc := p.lexer.Loc()

	if p.lexer.Token == js_lexer.TDotDotDot {
		p.lexer.Next()
		value := p.parseExpr(js_ast.LComma)
		return js_ast.Property{Loc: loc, Kind: js_ast.PropertySpread, ValueOrNil: value}
	}

	var flags js_ast.PropertyFlags
	if isClass {
		for p.lexer.Token == js_lexer.TIdentifier {
			name := p.lexer.Identifier
			if name == "static" && p.modifierStartsMember() {
				flags |= js_ast.PropertyIsStatic
				p.lexer.Next()
				continue
			}
			if p.options.TS && p.modifierStartsMember() {
				switch name {
				case "public", "private", "protected", "readonly", "abstract", "override", "declare":
					p.lexer.Next()
					continue
				}
			}
			break
		}
	}

	kind := js_ast.PropertyField
	isAsync := false
	isGenerator := false
	if p.lexer.IsContextualKeyword("get") && p.modifierStartsMember() {
		kind = js_ast.PropertyGetter
		p.lexer.Next()
	} else if p.lexer.IsContextualKeyword("set") && p.modifierStartsMember() {
		kind = js_ast.PropertySetter
		p.lexer.Next()
	} else if p.lexer.IsContextualKeyword("async") && !p.lexer.HasNewlineBefore && p.modifierStartsMember() {
		isAsync = true
		p.lexer.Next()
	}
	if p.lexer.Token == js_lexer.TAsterisk {
		isGenerator = true
		p.lexer.Next()
	}

	keyLoc := p.lexer.Loc()
	var key js_ast.Expr
	switch {
	case p.lexer.Token == js_lexer.TOpenBracket:
		flags |= js_ast.PropertyIsComputed
		p.lexer.Next()
		key = p.parseExpr(js_ast.LComma)
		p.lexer.Expect(js_lexer.TCloseBracket)
	case p.lexer.Token == js_lexer.TStringLiteral:
		key = js_ast.Expr{Loc: keyLoc, Data: &js_ast.EString{Value: p.lexer.StringValue}}
		p.lexer.Next()
	case p.lexer.Token == js_lexer.TNumericLiteral:
		key = js_ast.Expr{Loc: keyLoc, Data: &js_ast.ENumber{Raw: p.lexer.Number}}
		p.lexer.Next()
	case p.lexer.IsIdentifierOrKeyword():
		name := p.lexer.Identifier
		key = js_ast.Expr{Loc: keyLoc, Data: &js_ast.EString{Value: name}}
		p.lexer.Next()
		if !isClass && p.lexer.Token != js_lexer.TColon && p.lexer.Token != js_lexer.TOpenParen &&
			p.lexer.Token != js_lexer.TLessThan {
			// Shorthand "{ a }" or "{ a = 1 }" inside destructuring targets
			var initializer js_ast.Expr
			if p.lexer.Token == js_lexer.TEquals {
				p.lexer.Next()
				initializer = p.parseExpr(js_ast.LComma)
			}
			return js_ast.Property{
				Loc:              loc,
				Kind:             kind,
				Key:              key,
				InitializerOrNil: initializer,
				Flags:            flags | js_ast.PropertyWasShorthand,
			}
		}
	default:
		p.lexer.Expected(js_lexer.TIdentifier)
	}

	if p.options.TS && isClass {
		if p.lexer.Token == js_lexer.TQuestion || p.lexer.Token == js_lexer.TExclamation {
			p.lexer.Next()
		}
	}

	// Method, getter, or setter
	if p.lexer.Token == js_lexer.TOpenParen || (p.options.TS && p.lexer.Token == js_lexer.TLessThan) {
		fn := p.parseFn(isAsync, isGenerator)
		if kind == js_ast.PropertyField {
			kind = js_ast.PropertyMethod
		}
		return js_ast.Property{
			Loc:        loc,
			Kind:       kind,
			Key:        key,
			ValueOrNil: js_ast.Expr{Loc: keyLoc, Data: &js_ast.EFunction{Fn: fn}},
			Flags:      flags,
		}
	}

	if isClass {
		if p.options.TS && p.lexer.Token == js_lexer.TColon {
			p.skipTypeAnnotation()
		}
		var initializer js_ast.Expr
		if p.lexer.Token == js_lexer.TEquals {
			p.lexer.Next()
			initializer = p.parseExpr(js_ast.LComma)
		}
		if p.lexer.Token == js_lexer.TSemicolon {
			p.lexer.Next()
		}
		return js_ast.Property{Loc: loc, Kind: kind, Key: key, InitializerOrNil: initializer, Flags: flags}
	}

	p.lexer.Expect(js_lexer.TColon)
	value := p.parseExpr(js_ast.LComma)
	return js_ast.Property{Loc: loc, Kind: kind, Key: key, ValueOrNil: value, Flags: flags}
}

func (p *parser) parsePath() js_ast.Path {
	pathLoc := p.lexer.Loc()
	text := p.lexer.StringValue
	p.lexer.Expect(js_lexer.TStringLiteral)
	return js_ast.Path{Loc: pathLoc, Text: text}
}

func (p *parser) parseImportStmt(loc logger.Loc) js_ast.Stmt {
	p.lexer.Next()

	// "import(...)" and "import.meta" are expressions
	if p.lexer.Token == js_lexer.TOpenParen || p.lexer.Token == js_lexer.TDot {
		expr := p.parseImportExpr(loc)
		expr = p.parseSuffix(expr, js_ast.LLowest)
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: expr}}
	}

	stmt := js_ast.SImport{}

	if p.options.TS && p.lexer.IsContextualKeyword("type") {
		switch p.peekToken() {
		case js_lexer.TOpenBrace, js_lexer.TAsterisk:
			stmt.IsTypeOnly = true
			p.lexer.Next()
		case js_lexer.TIdentifier:
			// "import type from 'x'" keeps "type" as the default name
			clone := p.lexer
			clone.IsLogDisabled = true
			clone.Next()
			if clone.Identifier != "from" {
				stmt.IsTypeOnly = true
				p.lexer.Next()
			}
		}
	}

	switch p.lexer.Token {
	case js_lexer.TStringLiteral:
		// Side-effect import
		stmt.Path = p.parsePath()
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &stmt}

	case js_lexer.TAsterisk:
		p.lexer.Next()
		p.lexer.ExpectContextualKeyword("as")
		stmt.StarName = p.lexer.Identifier
		p.lexer.Expect(js_lexer.TIdentifier)

	case js_lexer.TOpenBrace:
		items := p.parseImportClause()
		stmt.Items = &items

	case js_lexer.TIdentifier:
		stmt.DefaultName = p.lexer.Identifier
		p.lexer.Next()
		if p.lexer.Token == js_lexer.TComma {
			p.lexer.Next()
			switch p.lexer.Token {
			case js_lexer.TAsterisk:
				p.lexer.Next()
				p.lexer.ExpectContextualKeyword("as")
				stmt.StarName = p.lexer.Identifier
				p.lexer.Expect(js_lexer.TIdentifier)
			case js_lexer.TOpenBrace:
				items := p.parseImportClause()
				stmt.Items = &items
			default:
				p.lexer.Expected(js_lexer.TOpenBrace)
			}
		}

	default:
		p.lexer.Expected(js_lexer.TStringLiteral)
	}

	p.lexer.ExpectContextualKeyword("from")
	stmt.Path = p.parsePath()
	p.expectSemicolon()
	return js_ast.Stmt{Loc: loc, Data: &stmt}
}

func (p *parser) parseImportClause() []js_ast.ClauseItem {
	p.lexer.Expect(js_lexer.TOpenBrace)
	items := []js_ast.ClauseItem{}
	for p.lexer.Token != js_lexer.TCloseBrace {
		// Inline type specifiers vanish with the rest of the types
		if p.options.TS && p.lexer.IsContextualKeyword("type") {
			if t := p.peekToken(); t == js_lexer.TIdentifier || t >= js_lexer.TBreak {
				p.lexer.Next()
				p.lexer.Next()
				if p.lexer.IsContextualKeyword("as") {
					p.lexer.Next()
					p.lexer.Expect(js_lexer.TIdentifier)
				}
				if p.lexer.Token != js_lexer.TComma {
					break
				}
				p.lexer.Next()
				continue
			}
		}
		itemLoc := p.lexer.Loc()
		if !p.lexer.IsIdentifierOrKeyword() {
			p.lexer.Expected(js_lexer.TIdentifier)
		}
		item := js_ast.ClauseItem{Loc: itemLoc, Name: p.lexer.Identifier}
		p.lexer.Next()
		if p.lexer.IsContextualKeyword("as") {
			p.lexer.Next()
			item.Alias = p.lexer.Identifier
			p.lexer.Expect(js_lexer.TIdentifier)
		}
		items = append(items, item)
		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}
	p.lexer.Expect(js_lexer.TCloseBrace)
	return items
}

func (p *parser) parseExportStmt(loc logger.Loc) js_ast.Stmt {
	p.lexer.Next()

	switch p.lexer.Token {
	case js_lexer.TDefault:
		p.lexer.Next()
		valueLoc := p.lexer.Loc()
		var value js_ast.Stmt
		switch {
		case p.lexer.Token == js_lexer.TFunction:
			value = p.parseFnStmt(valueLoc, false, false)
		case p.lexer.IsContextualKeyword("async") && p.peekToken() == js_lexer.TFunction:
			p.lexer.Next()
			value = p.parseFnStmt(valueLoc, false, true)
		case p.lexer.Token == js_lexer.TClass:
			p.lexer.Next()
			class := p.parseClass()
			value = js_ast.Stmt{Loc: valueLoc, Data: &js_ast.SClass{Class: class}}
		default:
			expr := p.parseExpr(js_ast.LComma)
			p.expectSemicolon()
			value = js_ast.Stmt{Loc: valueLoc, Data: &js_ast.SExpr{Value: expr}}
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{Value: value}}

	case js_lexer.TAsterisk:
		p.lexer.Next()
		alias := ""
		if p.lexer.IsContextualKeyword("as") {
			p.lexer.Next()
			alias = p.lexer.Identifier
			p.lexer.Expect(js_lexer.TIdentifier)
		}
		p.lexer.ExpectContextualKeyword("from")
		path := p.parsePath()
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportStar{Alias: alias, Path: path}}

	case js_lexer.TOpenBrace:
		items := p.parseImportClause()
		if p.lexer.IsContextualKeyword("from") {
			p.lexer.Next()
			path := p.parsePath()
			p.expectSemicolon()
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportFrom{Items: items, Path: path}}
		}
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportClause{Items: items}}

	case js_lexer.TVar:
		p.lexer.Next()
		decls := p.parseDecls()
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{Kind: js_ast.LocalVar, Decls: decls, IsExport: true}}

	case js_lexer.TConst:
		p.lexer.Next()
		decls := p.parseDecls()
		p.expectSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{Kind: js_ast.LocalConst, Decls: decls, IsExport: true}}

	case js_lexer.TFunction:
		return p.parseFnStmt(loc, true, false)

	case js_lexer.TClass:
		p.lexer.Next()
		class := p.parseClass()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SClass{Class: class, IsExport: true}}

	case js_lexer.TIdentifier:
		switch p.lexer.Identifier {
		case "let":
			p.lexer.Next()
			decls := p.parseDecls()
			p.expectSemicolon()
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{Kind: js_ast.LocalLet, Decls: decls, IsExport: true}}
		case "async":
			if p.peekToken() == js_lexer.TFunction {
				p.lexer.Next()
				return p.parseFnStmt(loc, true, true)
			}
		case "type":
			if p.options.TS {
				if p.peekToken() == js_lexer.TOpenBrace {
					// "export type { A } from 'x'" carries no runtime binding
					p.lexer.Next()
					p.parseImportClause()
					if p.lexer.IsContextualKeyword("from") {
						p.lexer.Next()
						p.parsePath()
					}
					p.expectSemicolon()
					return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}
				}
				p.skipTypeAliasDecl()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}
			}
		case "interface":
			if p.options.TS {
				p.skipInterfaceDecl()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}
			}
		case "declare":
			if p.options.TS {
				p.skipAmbientDecl()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}
			}
		}
	}

	p.lexer.SyntaxError()
	return js_ast.Stmt{}
}

func (p *parser) parseImportExpr(loc logger.Loc) js_ast.Expr {
	// Token is "(" or "." just after "import"
	if p.lexer.Token == js_lexer.TDot {
		p.lexer.Next()
		p.lexer.ExpectContextualKeyword("meta")
		return js_ast.Expr{Loc: loc, Data: &js_ast.EImportMeta{}}
	}
	p.lexer.Expect(js_lexer.TOpenParen)
	value := p.parseExpr(js_ast.LComma)
	var options js_ast.Expr
	if p.lexer.Token == js_lexer.TComma {
		p.lexer.Next()
		if p.lexer.Token != js_lexer.TCloseParen {
			options = p.parseExpr(js_ast.LComma)
			if p.lexer.Token == js_lexer.TComma {
				p.lexer.Next()
			}
		}
	}
	p.lexer.Expect(js_lexer.TCloseParen)
	return js_ast.Expr{Loc: loc, Data: &js_ast.EImportCall{Expr: value, OptionsOrNil: options}}
}
