package js_parser

import (
	"strings"

	"github.com/modpack-dev/modpack/internal/js_ast"
	"github.com/modpack-dev/modpack/internal/js_lexer"
	"github.com/modpack-dev/modpack/internal/logger"
)

func (p *parser) parseExpr(level js_ast.L) js_ast.Expr {
	expr := p.parsePrefix(level)
	return p.parseSuffix(expr, level)
}

// tokenStartsExpr reports whether the current token can begin an expression.
// Used to disambiguate "await"/"yield" used as plain identifiers.
func (p *parser) tokenStartsExpr() bool {
	switch p.lexer.Token {
	case js_lexer.TIdentifier, js_lexer.TNumericLiteral, js_lexer.TStringLiteral,
		js_lexer.TNoSubstitutionTemplateLiteral, js_lexer.TTemplateHead,
		js_lexer.TOpenParen, js_lexer.TOpenBracket, js_lexer.TOpenBrace,
		js_lexer.TFunction, js_lexer.TClass, js_lexer.TNew, js_lexer.TThis,
		js_lexer.TSuper, js_lexer.TImport, js_lexer.TTrue, js_lexer.TFalse,
		js_lexer.TNull, js_lexer.TSlash, js_lexer.TSlashEquals,
		js_lexer.TExclamation, js_lexer.TTilde, js_lexer.TPlus, js_lexer.TMinus,
		js_lexer.TPlusPlus, js_lexer.TMinusMinus, js_lexer.TTypeof,
		js_lexer.TVoid, js_lexer.TDelete:
		return true
	case js_lexer.TLessThan:
		return p.options.JSX
	}
	return false
}

func (p *parser) parsePrefix(level js_ast.L) js_ast.Expr {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TNumericLiteral:
		raw := p.lexer.Number
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENumber{Raw: raw}}

	case js_lexer.TStringLiteral:
		value := p.lexer.StringValue
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: value}}

	case js_lexer.TNoSubstitutionTemplateLiteral, js_lexer.TTemplateHead:
		return p.parseTemplate(loc, js_ast.Expr{})

	case js_lexer.TSlash, js_lexer.TSlashEquals:
		p.lexer.ScanRegExp()
		raw := p.lexer.Raw()
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ERegExp{Raw: raw}}

	case js_lexer.TTrue:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: true}}

	case js_lexer.TFalse:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: false}}

	case js_lexer.TNull:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENull{}}

	case js_lexer.TThis:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EThis{}}

	case js_lexer.TSuper:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ESuper{}}

	case js_lexer.TImport:
		p.lexer.Next()
		return p.parseImportExpr(loc)

	case js_lexer.TExclamation:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpNot, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TTilde:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpCpl, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TPlus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPos, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TMinus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpNeg, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TPlusPlus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPreInc, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TMinusMinus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPreDec, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TTypeof:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpTypeof, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TVoid:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpVoid, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TDelete:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpDelete, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TFunction:
		p.lexer.Next()
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
		fn := p.parseFn(false, isGenerator)
		fn.Name = name
		fn.NameLoc = nameLoc
		return js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: fn}}

	case js_lexer.TClass:
		p.lexer.Next()
		class := p.parseClass()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EClass{Class: class}}

	case js_lexer.TNew:
		p.lexer.Next()
		target := p.parseExprWithoutCalls()
		var args []js_ast.Expr
		if p.lexer.Token == js_lexer.TOpenParen {
			args = p.parseCallArgs()
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENew{Target: target, Args: args}}

	case js_lexer.TOpenParen:
		if p.isParenArrow() {
			args, hasRest := p.parseFnArgs()
			if p.options.TS && p.lexer.Token == js_lexer.TColon {
				p.lexer.Next()
				p.skipType(true)
			}
			p.lexer.Expect(js_lexer.TEqualsGreaterThan)
			return p.parseArrowBody(loc, args, false, hasRest)
		}
		p.lexer.Next()
		value := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		return value

	case js_lexer.TOpenBracket:
		p.lexer.Next()
		items := []js_ast.Expr{}
		for p.lexer.Token != js_lexer.TCloseBracket {
			if p.lexer.Token == js_lexer.TComma {
				// Hole
				items = append(items, js_ast.Expr{Loc: p.lexer.Loc()})
				p.lexer.Next()
				continue
			}
			if p.lexer.Token == js_lexer.TDotDotDot {
				spreadLoc := p.lexer.Loc()
				p.lexer.Next()
				items = append(items, js_ast.Expr{Loc: spreadLoc, Data: &js_ast.ESpread{Value: p.parseExpr(js_ast.LComma)}})
			} else {
				items = append(items, p.parseExpr(js_ast.LComma))
			}
			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}
		p.lexer.Expect(js_lexer.TCloseBracket)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EArray{Items: items}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		properties := []js_ast.Property{}
		for p.lexer.Token != js_lexer.TCloseBrace {
			properties = append(properties, p.parseProperty(false))
			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}
		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EObject{Properties: properties}}

	case js_lexer.TLessThan:
		if p.options.JSX {
			p.lexer.NextInsideJSXElement()
			element := p.parseJSXElementInside(loc)
			// The closing ">" is still the current token
			p.lexer.Next()
			return element
		}
		if p.options.TS {
			// "<T>expr" type assertion
			p.skipTypeParams()
			return p.parseExpr(js_ast.LPrefix)
		}
		p.lexer.SyntaxError()

	case js_lexer.TIdentifier:
		name := p.lexer.Identifier
		p.lexer.Next()

		switch name {
		case "async":
			if !p.lexer.HasNewlineBefore {
				switch p.lexer.Token {
				case js_lexer.TFunction:
					p.lexer.Next()
					isGenerator := false
					if p.lexer.Token == js_lexer.TAsterisk {
						isGenerator = true
						p.lexer.Next()
					}
					fnName := ""
					fnNameLoc := p.lexer.Loc()
					if p.lexer.Token == js_lexer.TIdentifier {
						fnName = p.lexer.Identifier
						p.lexer.Next()
					}
					fn := p.parseFn(true, isGenerator)
					fn.Name = fnName
					fn.NameLoc = fnNameLoc
					return js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: fn}}

				case js_lexer.TIdentifier:
					// "async x => ..."
					argLoc := p.lexer.Loc()
					argName := p.lexer.Identifier
					if p.peekToken() == js_lexer.TEqualsGreaterThan {
						p.lexer.Next()
						p.lexer.Expect(js_lexer.TEqualsGreaterThan)
						args := []js_ast.Arg{{Binding: js_ast.Binding{Loc: argLoc, Data: &js_ast.BIdentifier{Name: argName}}}}
						return p.parseArrowBody(loc, args, true, false)
					}

				case js_lexer.TOpenParen:
					if p.isParenArrow() {
						args, hasRest := p.parseFnArgs()
						if p.options.TS && p.lexer.Token == js_lexer.TColon {
							p.lexer.Next()
							p.skipType(true)
						}
						p.lexer.Expect(js_lexer.TEqualsGreaterThan)
						return p.parseArrowBody(loc, args, true, hasRest)
					}
				}
			}

		case "await":
			if !p.lexer.HasNewlineBefore && p.tokenStartsExpr() {
				return js_ast.Expr{Loc: loc, Data: &js_ast.EAwait{Value: p.parseExpr(js_ast.LPrefix)}}
			}

		case "yield":
			if !p.lexer.HasNewlineBefore {
				isStar := false
				if p.lexer.Token == js_lexer.TAsterisk {
					isStar = true
					p.lexer.Next()
				}
				if isStar || p.tokenStartsExpr() {
					var value js_ast.Expr
					if p.tokenStartsExpr() {
						value = p.parseExpr(js_ast.LYield)
					}
					return js_ast.Expr{Loc: loc, Data: &js_ast.EYield{ValueOrNil: value, IsStar: isStar}}
				}
			}
		}

		if p.lexer.Token == js_lexer.TEqualsGreaterThan && !p.lexer.HasNewlineBefore {
			p.lexer.Next()
			args := []js_ast.Arg{{Binding: js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: name}}}}
			return p.parseArrowBody(loc, args, false, false)
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: name}}
	}

	p.lexer.SyntaxError()
	return js_ast.Expr{}
}

// parseExprWithoutCalls parses the callee of "new": member access binds but
// call parentheses are left for the caller.
func (p *parser) parseExprWithoutCalls() js_ast.Expr {
	expr := p.parsePrefix(js_ast.LCall)
	return p.parseSuffix(expr, js_ast.LCall)
}

func (p *parser) parseCallArgs() []js_ast.Expr {
	p.lexer.Expect(js_lexer.TOpenParen)
	args := []js_ast.Expr{}
	for p.lexer.Token != js_lexer.TCloseParen {
		if p.lexer.Token == js_lexer.TDotDotDot {
			spreadLoc := p.lexer.Loc()
			p.lexer.Next()
			args = append(args, js_ast.Expr{Loc: spreadLoc, Data: &js_ast.ESpread{Value: p.parseExpr(js_ast.LComma)}})
		} else {
			args = append(args, p.parseExpr(js_ast.LComma))
		}
		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}
	p.lexer.Expect(js_lexer.TCloseParen)
	return args
}

func (p *parser) parseArrowBody(loc logger.Loc, args []js_ast.Arg, isAsync bool, hasRest bool) js_ast.Expr {
	bodyLoc := p.lexer.Loc()
	if p.lexer.Token == js_lexer.TOpenBrace {
		p.lexer.Next()
		stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace)
		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EArrow{
			Args:       args,
			Body:       js_ast.FnBody{Loc: bodyLoc, Block: js_ast.SBlock{Stmts: stmts}},
			IsAsync:    isAsync,
			HasRestArg: hasRest,
		}}
	}
	value := p.parseExpr(js_ast.LComma)
	return js_ast.Expr{Loc: loc, Data: &js_ast.EArrow{
		Args:       args,
		Body:       js_ast.FnBody{Loc: bodyLoc, Block: js_ast.SBlock{Stmts: []js_ast.Stmt{{Loc: bodyLoc, Data: &js_ast.SReturn{ValueOrNil: value}}}}},
		PreferExpr: true,
		IsAsync:    isAsync,
		HasRestArg: hasRest,
	}}
}

// isParenArrow scans ahead from an "(" to see whether it begins the argument
// list of an arrow function. The probe works on a copy of the lexer with
// errors suppressed.
func (p *parser) isParenArrow() (result bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isLexerPanic := r.(js_lexer.LexerPanic); isLexerPanic {
				result = false
			} else {
				panic(r)
			}
		}
	}()
	lexer := p.lexer
	lexer.IsLogDisabled = true
	depth := 0
	for {
		switch lexer.Token {
		case js_lexer.TOpenParen:
			depth++
		case js_lexer.TCloseParen:
			depth--
			if depth == 0 {
				lexer.Next()
				if lexer.Token == js_lexer.TEqualsGreaterThan {
					return true
				}
				if p.options.TS && lexer.Token == js_lexer.TColon {
					// Maybe "(args): Type =>". Keep scanning for the arrow.
					typeDepth := 0
					for {
						lexer.Next()
						switch lexer.Token {
						case js_lexer.TOpenParen, js_lexer.TOpenBracket, js_lexer.TOpenBrace, js_lexer.TLessThan:
							typeDepth++
						case js_lexer.TCloseParen, js_lexer.TCloseBracket, js_lexer.TGreaterThan:
							typeDepth--
							if typeDepth < 0 {
								return false
							}
						case js_lexer.TCloseBrace:
							typeDepth--
							if typeDepth < 0 {
								return false
							}
						case js_lexer.TEqualsGreaterThan:
							if typeDepth == 0 {
								return true
							}
						case js_lexer.TSemicolon, js_lexer.TComma, js_lexer.TEndOfFile:
							if typeDepth == 0 {
								return false
							}
						}
					}
				}
				return false
			}
		case js_lexer.TEndOfFile:
			return false
		}
		lexer.Next()
	}
}

func (p *parser) parseTemplate(loc logger.Loc, tag js_ast.Expr) js_ast.Expr {
	if p.lexer.Token == js_lexer.TNoSubstitutionTemplateLiteral {
		head := p.lexer.RawTemplate
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ETemplate{TagOrNil: tag, HeadRaw: head}}
	}

	head := p.lexer.RawTemplate
	p.lexer.Next()
	var parts []js_ast.TemplatePart
	for {
		value := p.parseExpr(js_ast.LLowest)
		p.lexer.RescanTemplatePart()
		parts = append(parts, js_ast.TemplatePart{Value: value, TailRaw: p.lexer.RawTemplate})
		if p.lexer.Token == js_lexer.TTemplateTail {
			p.lexer.Next()
			break
		}
		// TTemplateMiddle: continue with the next substitution
		p.lexer.Next()
	}
	return js_ast.Expr{Loc: loc, Data: &js_ast.ETemplate{TagOrNil: tag, HeadRaw: head, Parts: parts}}
}

// binaryOpForToken maps an operator token to its opcode and precedence.
func binaryOpForToken(token js_lexer.T) (js_ast.OpCode, js_ast.L, bool) {
	switch token {
	case js_lexer.TComma:
		return js_ast.BinOpComma, js_ast.LComma, true
	case js_lexer.TPlus:
		return js_ast.BinOpAdd, js_ast.LAdd, true
	case js_lexer.TMinus:
		return js_ast.BinOpSub, js_ast.LAdd, true
	case js_lexer.TAsterisk:
		return js_ast.BinOpMul, js_ast.LMultiply, true
	case js_lexer.TSlash:
		return js_ast.BinOpDiv, js_ast.LMultiply, true
	case js_lexer.TPercent:
		return js_ast.BinOpRem, js_ast.LMultiply, true
	case js_lexer.TAsteriskAsterisk:
		return js_ast.BinOpPow, js_ast.LExponentiation, true
	case js_lexer.TLessThan:
		return js_ast.BinOpLt, js_ast.LCompare, true
	case js_lexer.TLessThanEquals:
		return js_ast.BinOpLe, js_ast.LCompare, true
	case js_lexer.TGreaterThan:
		return js_ast.BinOpGt, js_ast.LCompare, true
	case js_lexer.TGreaterThanEquals:
		return js_ast.BinOpGe, js_ast.LCompare, true
	case js_lexer.TIn:
		return js_ast.BinOpIn, js_ast.LCompare, true
	case js_lexer.TInstanceof:
		return js_ast.BinOpInstanceof, js_ast.LCompare, true
	case js_lexer.TLessThanLessThan:
		return js_ast.BinOpShl, js_ast.LShift, true
	case js_lexer.TGreaterThanGreaterThan:
		return js_ast.BinOpShr, js_ast.LShift, true
	case js_lexer.TGreaterThanGreaterThanGreaterThan:
		return js_ast.BinOpUShr, js_ast.LShift, true
	case js_lexer.TEqualsEquals:
		return js_ast.BinOpLooseEq, js_ast.LEquals, true
	case js_lexer.TExclamationEquals:
		return js_ast.BinOpLooseNe, js_ast.LEquals, true
	case js_lexer.TEqualsEqualsEquals:
		return js_ast.BinOpStrictEq, js_ast.LEquals, true
	case js_lexer.TExclamationEqualsEquals:
		return js_ast.BinOpStrictNe, js_ast.LEquals, true
	case js_lexer.TQuestionQuestion:
		return js_ast.BinOpNullishCoalescing, js_ast.LNullishCoalescing, true
	case js_lexer.TBarBar:
		return js_ast.BinOpLogicalOr, js_ast.LLogicalOr, true
	case js_lexer.TAmpersandAmpersand:
		return js_ast.BinOpLogicalAnd, js_ast.LLogicalAnd, true
	case js_lexer.TBar:
		return js_ast.BinOpBitwiseOr, js_ast.LBitwiseOr, true
	case js_lexer.TAmpersand:
		return js_ast.BinOpBitwiseAnd, js_ast.LBitwiseAnd, true
	case js_lexer.TCaret:
		return js_ast.BinOpBitwiseXor, js_ast.LBitwiseXor, true
	case js_lexer.TEquals:
		return js_ast.BinOpAssign, js_ast.LAssign, true
	case js_lexer.TPlusEquals:
		return js_ast.BinOpAddAssign, js_ast.LAssign, true
	case js_lexer.TMinusEquals:
		return js_ast.BinOpSubAssign, js_ast.LAssign, true
	case js_lexer.TAsteriskEquals:
		return js_ast.BinOpMulAssign, js_ast.LAssign, true
	case js_lexer.TSlashEquals:
		return js_ast.BinOpDivAssign, js_ast.LAssign, true
	case js_lexer.TPercentEquals:
		return js_ast.BinOpRemAssign, js_ast.LAssign, true
	case js_lexer.TAsteriskAsteriskEquals:
		return js_ast.BinOpPowAssign, js_ast.LAssign, true
	case js_lexer.TLessThanLessThanEquals:
		return js_ast.BinOpShlAssign, js_ast.LAssign, true
	case js_lexer.TGreaterThanGreaterThanEquals:
		return js_ast.BinOpShrAssign, js_ast.LAssign, true
	case js_lexer.TGreaterThanGreaterThanGreaterThanEquals:
		return js_ast.BinOpUShrAssign, js_ast.LAssign, true
	case js_lexer.TBarEquals:
		return js_ast.BinOpBitwiseOrAssign, js_ast.LAssign, true
	case js_lexer.TAmpersandEquals:
		return js_ast.BinOpBitwiseAndAssign, js_ast.LAssign, true
	case js_lexer.TCaretEquals:
		return js_ast.BinOpBitwiseXorAssign, js_ast.LAssign, true
	case js_lexer.TQuestionQuestionEquals:
		return js_ast.BinOpNullishCoalescingAssign, js_ast.LAssign, true
	case js_lexer.TBarBarEquals:
		return js_ast.BinOpLogicalOrAssign, js_ast.LAssign, true
	case js_lexer.TAmpersandAmpersandEquals:
		return js_ast.BinOpLogicalAndAssign, js_ast.LAssign, true
	}
	return 0, 0, false
}

func (p *parser) parseSuffix(left js_ast.Expr, level js_ast.L) js_ast.Expr {
	for {
		switch p.lexer.Token {
		case js_lexer.TDot:
			p.lexer.Next()
			if !p.lexer.IsIdentifierOrKeyword() {
				p.lexer.Expected(js_lexer.TIdentifier)
			}
			nameLoc := p.lexer.Loc()
			name := p.lexer.Identifier
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EDot{Target: left, Name: name, NameLoc: nameLoc}}

		case js_lexer.TQuestionDot:
			p.lexer.Next()
			switch p.lexer.Token {
			case js_lexer.TOpenParen:
				if level >= js_ast.LCall {
					return left
				}
				args := p.parseCallArgs()
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ECall{Target: left, Args: args, OptionalChain: true}}
			case js_lexer.TOpenBracket:
				p.lexer.Next()
				index := p.parseExpr(js_ast.LLowest)
				p.lexer.Expect(js_lexer.TCloseBracket)
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIndex{Target: left, Index: index, OptionalChain: true}}
			default:
				if !p.lexer.IsIdentifierOrKeyword() {
					p.lexer.Expected(js_lexer.TIdentifier)
				}
				nameLoc := p.lexer.Loc()
				name := p.lexer.Identifier
				p.lexer.Next()
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EDot{Target: left, Name: name, NameLoc: nameLoc, OptionalChain: true}}
			}

		case js_lexer.TOpenBracket:
			p.lexer.Next()
			index := p.parseExpr(js_ast.LLowest)
			p.lexer.Expect(js_lexer.TCloseBracket)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIndex{Target: left, Index: index}}

		case js_lexer.TOpenParen:
			if level >= js_ast.LCall {
				return left
			}
			args := p.parseCallArgs()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ECall{Target: left, Args: args}}

		case js_lexer.TNoSubstitutionTemplateLiteral, js_lexer.TTemplateHead:
			if level >= js_ast.LCall {
				return left
			}
			left = p.parseTemplate(left.Loc, left)

		case js_lexer.TPlusPlus:
			if p.lexer.HasNewlineBefore || level >= js_ast.LPostfix {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPostInc, Value: left}}

		case js_lexer.TMinusMinus:
			if p.lexer.HasNewlineBefore || level >= js_ast.LPostfix {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPostDec, Value: left}}

		case js_lexer.TQuestion:
			if level >= js_ast.LConditional {
				return left
			}
			p.lexer.Next()
			yes := p.parseExpr(js_ast.LComma)
			p.lexer.Expect(js_lexer.TColon)
			no := p.parseExpr(js_ast.LComma)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIf{Test: left, Yes: yes, No: no}}

		case js_lexer.TExclamation:
			// Non-null assertion
			if p.options.TS && !p.lexer.HasNewlineBefore {
				p.lexer.Next()
				continue
			}
			return left

		case js_lexer.TIn:
			if !p.allowIn {
				return left
			}
			fallthrough

		default:
			if p.options.TS && p.lexer.IsContextualKeyword("as") && !p.lexer.HasNewlineBefore {
				p.lexer.Next()
				p.skipType(false)
				continue
			}

			op, opLevel, ok := binaryOpForToken(p.lexer.Token)
			if !ok || level >= opLevel {
				return left
			}
			p.lexer.Next()
			rightLevel := opLevel
			if op.IsRightAssociative() {
				rightLevel--
			}
			right := p.parseExpr(rightLevel)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: op, Left: left, Right: right}}
		}
	}
}

// Type stripping

func (p *parser) skipTypeAnnotation() {
	p.lexer.Expect(js_lexer.TColon)
	p.skipType(false)
}

// skipType consumes a type expression without interpreting it. It stops at a
// token that cannot continue a type at nesting depth zero. When stopOnArrow
// is set a top-level "=>" ends the type; otherwise it is consumed as part of
// a function type.
func (p *parser) skipType(stopOnArrow bool) {
	depth := 0
	prev := js_lexer.TColon
	for {
		t := p.lexer.Token
		if depth == 0 {
			switch t {
			case js_lexer.TComma, js_lexer.TSemicolon, js_lexer.TEquals,
				js_lexer.TCloseParen, js_lexer.TCloseBracket, js_lexer.TCloseBrace,
				js_lexer.TGreaterThan, js_lexer.TEndOfFile:
				return
			case js_lexer.TEqualsGreaterThan:
				if stopOnArrow || prev != js_lexer.TCloseParen {
					return
				}
			case js_lexer.TOpenBrace:
				// An object type only follows a type operator
				switch prev {
				case js_lexer.TColon, js_lexer.TBar, js_lexer.TAmpersand,
					js_lexer.TEqualsGreaterThan, js_lexer.TComma, js_lexer.TLessThan,
					js_lexer.TOpenParen, js_lexer.TOpenBracket:
				default:
					return
				}
			}
		}
		switch t {
		case js_lexer.TOpenParen, js_lexer.TOpenBracket, js_lexer.TOpenBrace, js_lexer.TLessThan:
			depth++
		case js_lexer.TCloseParen, js_lexer.TCloseBracket, js_lexer.TCloseBrace, js_lexer.TGreaterThan:
			depth--
		case js_lexer.TEndOfFile:
			return
		}
		prev = t
		p.lexer.Next()
	}
}

// skipTypeParams consumes a balanced "<...>" group.
func (p *parser) skipTypeParams() {
	depth := 0
	for {
		switch p.lexer.Token {
		case js_lexer.TLessThan, js_lexer.TLessThanLessThan:
			depth++
		case js_lexer.TGreaterThan:
			depth--
		case js_lexer.TGreaterThanGreaterThan:
			depth -= 2
		case js_lexer.TGreaterThanGreaterThanGreaterThan:
			depth -= 3
		case js_lexer.TEndOfFile:
			return
		}
		p.lexer.Next()
		if depth <= 0 {
			return
		}
	}
}

func (p *parser) skipBalancedBraces() {
	p.lexer.Expect(js_lexer.TOpenBrace)
	depth := 1
	for depth > 0 {
		switch p.lexer.Token {
		case js_lexer.TOpenBrace:
			depth++
		case js_lexer.TCloseBrace:
			depth--
		case js_lexer.TEndOfFile:
			p.lexer.Expected(js_lexer.TCloseBrace)
		}
		p.lexer.Next()
	}
}

func (p *parser) skipInterfaceDecl() {
	p.lexer.Next() // "interface"
	p.lexer.Expect(js_lexer.TIdentifier)
	if p.lexer.Token == js_lexer.TLessThan {
		p.skipTypeParams()
	}
	for p.lexer.Token != js_lexer.TOpenBrace && p.lexer.Token != js_lexer.TEndOfFile {
		p.lexer.Next()
	}
	p.skipBalancedBraces()
}

func (p *parser) skipTypeAliasDecl() {
	p.lexer.Next() // "type"
	p.lexer.Expect(js_lexer.TIdentifier)
	if p.lexer.Token == js_lexer.TLessThan {
		p.skipTypeParams()
	}
	p.lexer.Expect(js_lexer.TEquals)
	p.skipType(false)
	p.expectSemicolon()
}

// skipAmbientDecl skips a "declare ..." declaration: everything through a
// balanced closing brace or a top-level semicolon.
func (p *parser) skipAmbientDecl() {
	p.lexer.Next() // "declare"
	depth := 0
	for {
		switch p.lexer.Token {
		case js_lexer.TOpenBrace:
			depth++
		case js_lexer.TCloseBrace:
			depth--
			if depth == 0 {
				p.lexer.Next()
				return
			}
		case js_lexer.TSemicolon:
			if depth == 0 {
				p.lexer.Next()
				return
			}
		case js_lexer.TEndOfFile:
			return
		}
		p.lexer.Next()
	}
}

// JSX

// parseJSXElementInside parses an element whose "<" was already consumed by a
// NextInsideJSXElement call. On return the current token is the final ">" of
// the element; the caller decides which scanning mode resumes after it.
func (p *parser) parseJSXElementInside(loc logger.Loc) js_ast.Expr {
	// Fragment: "<>"
	if p.lexer.Token == js_lexer.TGreaterThan {
		children := p.parseJSXChildren("")
		return js_ast.Expr{Loc: loc, Data: &js_ast.EJSXElement{Children: children}}
	}

	tagText, tag := p.parseJSXTag()

	// Attributes
	var properties []js_ast.Property
	for {
		if p.lexer.Token == js_lexer.TIdentifier {
			nameLoc := p.lexer.Loc()
			name := p.lexer.Identifier
			p.lexer.NextInsideJSXElement()
			value := js_ast.Expr{Loc: nameLoc, Data: &js_ast.EBoolean{Value: true}}
			if p.lexer.Token == js_lexer.TEquals {
				p.lexer.NextInsideJSXElement()
				switch p.lexer.Token {
				case js_lexer.TStringLiteral:
					value = js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EString{Value: p.lexer.StringValue}}
					p.lexer.NextInsideJSXElement()
				case js_lexer.TOpenBrace:
					p.lexer.Next()
					value = p.parseExpr(js_ast.LComma)
					if p.lexer.Token != js_lexer.TCloseBrace {
						p.lexer.Expected(js_lexer.TCloseBrace)
					}
					p.lexer.NextInsideJSXElement()
				default:
					p.lexer.Expected(js_lexer.TStringLiteral)
				}
			}
			properties = append(properties, js_ast.Property{
				Loc:        nameLoc,
				Kind:       js_ast.PropertyField,
				Key:        js_ast.Expr{Loc: nameLoc, Data: &js_ast.EString{Value: name}},
				ValueOrNil: value,
			})
			continue
		}
		if p.lexer.Token == js_lexer.TOpenBrace {
			// Spread attribute: "{...props}"
			spreadLoc := p.lexer.Loc()
			p.lexer.Next()
			p.lexer.Expect(js_lexer.TDotDotDot)
			value := p.parseExpr(js_ast.LComma)
			if p.lexer.Token != js_lexer.TCloseBrace {
				p.lexer.Expected(js_lexer.TCloseBrace)
			}
			p.lexer.NextInsideJSXElement()
			properties = append(properties, js_ast.Property{
				Loc:        spreadLoc,
				Kind:       js_ast.PropertySpread,
				ValueOrNil: value,
			})
			continue
		}
		break
	}

	// Self-closing: "/>"
	if p.lexer.Token == js_lexer.TSlash {
		p.lexer.NextInsideJSXElement()
		if p.lexer.Token != js_lexer.TGreaterThan {
			p.lexer.Expected(js_lexer.TGreaterThan)
		}
		return js_ast.Expr{Loc: loc, Data: &js_ast.EJSXElement{TagOrNil: tag, Properties: properties}}
	}

	if p.lexer.Token != js_lexer.TGreaterThan {
		p.lexer.Expected(js_lexer.TGreaterThan)
	}

	children := p.parseJSXChildren(tagText)
	return js_ast.Expr{Loc: loc, Data: &js_ast.EJSXElement{TagOrNil: tag, Properties: properties, Children: children}}
}

// parseJSXTag reads a tag name: an identifier possibly extended with ":" and
// "." segments. The text form is kept for matching the closing tag.
func (p *parser) parseJSXTag() (string, js_ast.Expr) {
	loc := p.lexer.Loc()
	if p.lexer.Token != js_lexer.TIdentifier {
		p.lexer.Expected(js_lexer.TIdentifier)
	}
	text := p.lexer.Identifier
	p.lexer.NextInsideJSXElement()

	if p.lexer.Token == js_lexer.TColon {
		p.lexer.NextInsideJSXElement()
		if p.lexer.Token != js_lexer.TIdentifier {
			p.lexer.Expected(js_lexer.TIdentifier)
		}
		text += ":" + p.lexer.Identifier
		p.lexer.NextInsideJSXElement()
		return text, js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: text}}
	}

	tag := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: text}}
	for p.lexer.Token == js_lexer.TDot {
		p.lexer.NextInsideJSXElement()
		if p.lexer.Token != js_lexer.TIdentifier {
			p.lexer.Expected(js_lexer.TIdentifier)
		}
		nameLoc := p.lexer.Loc()
		name := p.lexer.Identifier
		text += "." + name
		tag = js_ast.Expr{Loc: loc, Data: &js_ast.EDot{Target: tag, Name: name, NameLoc: nameLoc}}
		p.lexer.NextInsideJSXElement()
	}
	return text, tag
}

// parseJSXChildren consumes children after an opening ">" through the
// matching closing tag, leaving the lexer on the closing ">".
func (p *parser) parseJSXChildren(tagText string) []js_ast.Expr {
	var children []js_ast.Expr
	for {
		p.lexer.NextJSXElementChild()
		switch p.lexer.Token {
		case js_lexer.TStringLiteral:
			if text := cleanJSXText(p.lexer.StringValue); text != "" {
				children = append(children, js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EString{Value: text}})
			}

		case js_lexer.TOpenBrace:
			p.lexer.Next()
			if p.lexer.Token == js_lexer.TCloseBrace {
				// Empty expression container: "{}" or a comment
				continue
			}
			value := p.parseExpr(js_ast.LComma)
			if p.lexer.Token != js_lexer.TCloseBrace {
				p.lexer.Expected(js_lexer.TCloseBrace)
			}
			children = append(children, value)

		case js_lexer.TLessThan:
			childLoc := p.lexer.Loc()
			p.lexer.NextInsideJSXElement()
			if p.lexer.Token == js_lexer.TSlash {
				// Closing tag
				p.lexer.NextInsideJSXElement()
				closing := ""
				if p.lexer.Token == js_lexer.TIdentifier {
					closing, _ = p.parseJSXTag()
				}
				if closing != tagText {
					p.log.AddError(p.source, childLoc,
						"Expected closing tag \"</"+tagText+">\" but found \"</"+closing+">\"")
					panic(js_lexer.LexerPanic{})
				}
				if p.lexer.Token != js_lexer.TGreaterThan {
					p.lexer.Expected(js_lexer.TGreaterThan)
				}
				return children
			}
			children = append(children, p.parseJSXElementInside(childLoc))

		case js_lexer.TEndOfFile:
			p.lexer.Expected(js_lexer.TGreaterThan)
		}
	}
}

// cleanJSXText normalizes literal text the way JSX does: lines are trimmed
// and non-empty lines joined with single spaces. Single-line text keeps its
// interior spacing.
func cleanJSXText(text string) string {
	if !strings.ContainsRune(text, '\n') {
		if strings.TrimSpace(text) == "" {
			return ""
		}
		return text
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, " ")
}
