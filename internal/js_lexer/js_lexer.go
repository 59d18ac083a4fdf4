// Package js_lexer turns source text into a token stream. The lexer is a
// value type so the parser can snapshot and restore it during arrow-function
// lookahead. Lexer errors are reported through the log and then unwound with
// a LexerPanic, which the parser converts into a fatal parse error.
package js_lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/modpack-dev/modpack/internal/logger"
)

type T uint8

const (
	TEndOfFile T = iota
	TSyntaxError

	// Literals
	TNoSubstitutionTemplateLiteral
	TNumericLiteral
	TStringLiteral
	TTemplateHead
	TTemplateMiddle
	TTemplateTail
	TRegExpLiteral

	// Punctuation
	TAmpersand
	TAmpersandAmpersand
	TAsterisk
	TAsteriskAsterisk
	TBar
	TBarBar
	TCaret
	TCloseBrace
	TCloseBracket
	TCloseParen
	TColon
	TComma
	TDot
	TDotDotDot
	TEqualsEquals
	TEqualsEqualsEquals
	TEqualsGreaterThan
	TExclamation
	TExclamationEquals
	TExclamationEqualsEquals
	TGreaterThan
	TGreaterThanEquals
	TGreaterThanGreaterThan
	TGreaterThanGreaterThanGreaterThan
	TLessThan
	TLessThanEquals
	TLessThanLessThan
	TMinus
	TMinusMinus
	TOpenBrace
	TOpenBracket
	TOpenParen
	TPercent
	TPlus
	TPlusPlus
	TQuestion
	TQuestionDot
	TQuestionQuestion
	TSemicolon
	TSlash
	TTilde

	// Assignments
	TAmpersandAmpersandEquals
	TAmpersandEquals
	TAsteriskAsteriskEquals
	TAsteriskEquals
	TBarBarEquals
	TBarEquals
	TCaretEquals
	TEquals
	TGreaterThanGreaterThanEquals
	TGreaterThanGreaterThanGreaterThanEquals
	TLessThanLessThanEquals
	TMinusEquals
	TPercentEquals
	TPlusEquals
	TQuestionQuestionEquals
	TSlashEquals

	// Identifiers and keywords
	TIdentifier
	TBreak
	TCase
	TCatch
	TClass
	TConst
	TContinue
	TDebugger
	TDefault
	TDelete
	TDo
	TElse
	TEnum
	TExport
	TExtends
	TFalse
	TFinally
	TFor
	TFunction
	TIf
	TImport
	TIn
	TInstanceof
	TNew
	TNull
	TReturn
	TSuper
	TSwitch
	TThis
	TThrow
	TTrue
	TTry
	TTypeof
	TVar
	TVoid
	TWhile
	TWith
)

var Keywords = map[string]T{
	"break":      TBreak,
	"case":       TCase,
	"catch":      TCatch,
	"class":      TClass,
	"const":      TConst,
	"continue":   TContinue,
	"debugger":   TDebugger,
	"default":    TDefault,
	"delete":     TDelete,
	"do":         TDo,
	"else":       TElse,
	"enum":       TEnum,
	"export":     TExport,
	"extends":    TExtends,
	"false":      TFalse,
	"finally":    TFinally,
	"for":        TFor,
	"function":   TFunction,
	"if":         TIf,
	"import":     TImport,
	"in":         TIn,
	"instanceof": TInstanceof,
	"new":        TNew,
	"null":       TNull,
	"return":     TReturn,
	"super":      TSuper,
	"switch":     TSwitch,
	"this":       TThis,
	"throw":      TThrow,
	"true":       TTrue,
	"try":        TTry,
	"typeof":     TTypeof,
	"var":        TVar,
	"void":       TVoid,
	"while":      TWhile,
	"with":       TWith,
}

var tokenNames = map[T]string{
	TEndOfFile:         "end of file",
	TCloseBrace:        "\"}\"",
	TCloseBracket:      "\"]\"",
	TCloseParen:        "\")\"",
	TColon:             "\":\"",
	TComma:             "\",\"",
	TEquals:            "\"=\"",
	TEqualsGreaterThan: "\"=>\"",
	TGreaterThan:       "\">\"",
	TIdentifier:        "identifier",
	TOpenBrace:         "\"{\"",
	TOpenBracket:       "\"[\"",
	TOpenParen:         "\"(\"",
	TSemicolon:         "\";\"",
	TStringLiteral:     "string literal",
}

type LexerPanic struct{}

type Lexer struct {
	log    *logger.Log
	source *logger.Source

	current int // position of the next byte to scan
	start   int // start of the current token
	end     int // end of the current token

	Token            T
	HasNewlineBefore bool

	Identifier  string // TIdentifier and keyword text
	StringValue string // TStringLiteral contents after escape processing
	Number      string // TNumericLiteral raw text
	RawTemplate string // template token contents without delimiters

	// Errors are suppressed while a cloned lexer probes ahead
	IsLogDisabled bool
}

func NewLexer(log *logger.Log, source *logger.Source) Lexer {
	lexer := Lexer{log: log, source: source}
	lexer.Next()
	return lexer
}

func (l *Lexer) Loc() logger.Loc {
	return logger.Loc{Start: int32(l.start)}
}

func (l *Lexer) Range() logger.Range {
	return logger.Range{Loc: logger.Loc{Start: int32(l.start)}, Len: int32(l.end - l.start)}
}

func (l *Lexer) Raw() string {
	return l.source.Contents[l.start:l.end]
}

func (l *Lexer) addError(loc logger.Loc, text string) {
	if !l.IsLogDisabled {
		l.log.AddError(l.source, loc, text)
	}
	panic(LexerPanic{})
}

func (l *Lexer) SyntaxError() {
	l.addError(logger.Loc{Start: int32(l.start)}, "Unexpected "+l.describe())
}

func (l *Lexer) describe() string {
	switch l.Token {
	case TEndOfFile:
		return "end of file"
	case TIdentifier:
		return "\"" + l.Identifier + "\""
	default:
		if l.end > l.start {
			return "\"" + l.Raw() + "\""
		}
		return "token"
	}
}

func (l *Lexer) Expected(token T) {
	if name, ok := tokenNames[token]; ok {
		l.addError(logger.Loc{Start: int32(l.start)}, "Expected "+name+" but found "+l.describe())
	}
	l.addError(logger.Loc{Start: int32(l.start)}, "Unexpected "+l.describe())
}

func (l *Lexer) Expect(token T) {
	if l.Token != token {
		l.Expected(token)
	}
	l.Next()
}

func (l *Lexer) ExpectContextualKeyword(text string) {
	if !l.IsContextualKeyword(text) {
		l.addError(logger.Loc{Start: int32(l.start)}, "Expected \""+text+"\" but found "+l.describe())
	}
	l.Next()
}

func (l *Lexer) IsContextualKeyword(text string) bool {
	return l.Token == TIdentifier && l.Identifier == text
}

func (l *Lexer) IsIdentifierOrKeyword() bool {
	return l.Token >= TIdentifier
}

func IsIdentifierStart(r rune) bool {
	return r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= utf8.RuneSelf && unicode.IsLetter(r))
}

func IsIdentifierContinue(r rune) bool {
	return IsIdentifierStart(r) || (r >= '0' && r <= '9') ||
		(r >= utf8.RuneSelf && unicode.IsDigit(r))
}

// IsIdentifier reports whether text is usable as a bare identifier.
func IsIdentifier(text string) bool {
	if text == "" {
		return false
	}
	for i, r := range text {
		if i == 0 && !IsIdentifierStart(r) {
			return false
		}
		if i > 0 && !IsIdentifierContinue(r) {
			return false
		}
	}
	return true
}

func (l *Lexer) peek(offset int) byte {
	if l.current+offset < len(l.source.Contents) {
		return l.source.Contents[l.current+offset]
	}
	return 0
}

func (l *Lexer) skipWhitespaceAndComments() {
	contents := l.source.Contents
	for l.current < len(contents) {
		c := contents[l.current]
		switch c {
		case '\n':
			l.HasNewlineBefore = true
			l.current++
		case ' ', '\t', '\r', '\v', '\f':
			l.current++
		case '/':
			if l.peek(1) == '/' {
				l.current += 2
				for l.current < len(contents) && contents[l.current] != '\n' {
					l.current++
				}
			} else if l.peek(1) == '*' {
				l.current += 2
				for {
					if l.current >= len(contents) {
						l.addError(logger.Loc{Start: int32(l.current)}, "Expected \"*/\" to terminate multi-line comment")
					}
					if contents[l.current] == '\n' {
						l.HasNewlineBefore = true
					}
					if contents[l.current] == '*' && l.peek(1) == '/' {
						l.current += 2
						break
					}
					l.current++
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) Next() {
	l.HasNewlineBefore = l.end == 0
	l.skipWhitespaceAndComments()
	l.start = l.current
	contents := l.source.Contents

	if l.current >= len(contents) {
		l.Token = TEndOfFile
		l.end = l.current
		return
	}

	c := contents[l.current]
	switch {
	case c == '\'' || c == '"':
		l.scanString(c)
	case c == '`':
		l.scanTemplate(l.current+1, true)
	case c >= '0' && c <= '9':
		l.scanNumber()
	case c == '.' && l.peek(1) >= '0' && l.peek(1) <= '9':
		l.scanNumber()
	default:
		r, width := utf8.DecodeRuneInString(contents[l.current:])
		if IsIdentifierStart(r) {
			l.current += width
			for l.current < len(contents) {
				r, width = utf8.DecodeRuneInString(contents[l.current:])
				if !IsIdentifierContinue(r) {
					break
				}
				l.current += width
			}
			l.Identifier = contents[l.start:l.current]
			if token, ok := Keywords[l.Identifier]; ok {
				l.Token = token
			} else {
				l.Token = TIdentifier
			}
		} else {
			l.scanPunctuation(c)
		}
	}
	l.end = l.current
}

func (l *Lexer) scanPunctuation(c byte) {
	switch c {
	case '(':
		l.Token = TOpenParen
		l.current++
	case ')':
		l.Token = TCloseParen
		l.current++
	case '[':
		l.Token = TOpenBracket
		l.current++
	case ']':
		l.Token = TCloseBracket
		l.current++
	case '{':
		l.Token = TOpenBrace
		l.current++
	case '}':
		l.Token = TCloseBrace
		l.current++
	case ',':
		l.Token = TComma
		l.current++
	case ';':
		l.Token = TSemicolon
		l.current++
	case ':':
		l.Token = TColon
		l.current++
	case '~':
		l.Token = TTilde
		l.current++
	case '.':
		if l.peek(1) == '.' && l.peek(2) == '.' {
			l.Token = TDotDotDot
			l.current += 3
		} else {
			l.Token = TDot
			l.current++
		}
	case '?':
		switch {
		case l.peek(1) == '.':
			l.Token = TQuestionDot
			l.current += 2
		case l.peek(1) == '?' && l.peek(2) == '=':
			l.Token = TQuestionQuestionEquals
			l.current += 3
		case l.peek(1) == '?':
			l.Token = TQuestionQuestion
			l.current += 2
		default:
			l.Token = TQuestion
			l.current++
		}
	case '+':
		switch l.peek(1) {
		case '+':
			l.Token = TPlusPlus
			l.current += 2
		case '=':
			l.Token = TPlusEquals
			l.current += 2
		default:
			l.Token = TPlus
			l.current++
		}
	case '-':
		switch l.peek(1) {
		case '-':
			l.Token = TMinusMinus
			l.current += 2
		case '=':
			l.Token = TMinusEquals
			l.current += 2
		default:
			l.Token = TMinus
			l.current++
		}
	case '*':
		switch {
		case l.peek(1) == '*' && l.peek(2) == '=':
			l.Token = TAsteriskAsteriskEquals
			l.current += 3
		case l.peek(1) == '*':
			l.Token = TAsteriskAsterisk
			l.current += 2
		case l.peek(1) == '=':
			l.Token = TAsteriskEquals
			l.current += 2
		default:
			l.Token = TAsterisk
			l.current++
		}
	case '/':
		if l.peek(1) == '=' {
			l.Token = TSlashEquals
			l.current += 2
		} else {
			l.Token = TSlash
			l.current++
		}
	case '%':
		if l.peek(1) == '=' {
			l.Token = TPercentEquals
			l.current += 2
		} else {
			l.Token = TPercent
			l.current++
		}
	case '=':
		switch {
		case l.peek(1) == '=' && l.peek(2) == '=':
			l.Token = TEqualsEqualsEquals
			l.current += 3
		case l.peek(1) == '=':
			l.Token = TEqualsEquals
			l.current += 2
		case l.peek(1) == '>':
			l.Token = TEqualsGreaterThan
			l.current += 2
		default:
			l.Token = TEquals
			l.current++
		}
	case '!':
		switch {
		case l.peek(1) == '=' && l.peek(2) == '=':
			l.Token = TExclamationEqualsEquals
			l.current += 3
		case l.peek(1) == '=':
			l.Token = TExclamationEquals
			l.current += 2
		default:
			l.Token = TExclamation
			l.current++
		}
	case '<':
		switch {
		case l.peek(1) == '<' && l.peek(2) == '=':
			l.Token = TLessThanLessThanEquals
			l.current += 3
		case l.peek(1) == '<':
			l.Token = TLessThanLessThan
			l.current += 2
		case l.peek(1) == '=':
			l.Token = TLessThanEquals
			l.current += 2
		default:
			l.Token = TLessThan
			l.current++
		}
	case '>':
		switch {
		case l.peek(1) == '>' && l.peek(2) == '>' && l.peek(3) == '=':
			l.Token = TGreaterThanGreaterThanGreaterThanEquals
			l.current += 4
		case l.peek(1) == '>' && l.peek(2) == '>':
			l.Token = TGreaterThanGreaterThanGreaterThan
			l.current += 3
		case l.peek(1) == '>' && l.peek(2) == '=':
			l.Token = TGreaterThanGreaterThanEquals
			l.current += 3
		case l.peek(1) == '>':
			l.Token = TGreaterThanGreaterThan
			l.current += 2
		case l.peek(1) == '=':
			l.Token = TGreaterThanEquals
			l.current += 2
		default:
			l.Token = TGreaterThan
			l.current++
		}
	case '&':
		switch {
		case l.peek(1) == '&' && l.peek(2) == '=':
			l.Token = TAmpersandAmpersandEquals
			l.current += 3
		case l.peek(1) == '&':
			l.Token = TAmpersandAmpersand
			l.current += 2
		case l.peek(1) == '=':
			l.Token = TAmpersandEquals
			l.current += 2
		default:
			l.Token = TAmpersand
			l.current++
		}
	case '|':
		switch {
		case l.peek(1) == '|' && l.peek(2) == '=':
			l.Token = TBarBarEquals
			l.current += 3
		case l.peek(1) == '|':
			l.Token = TBarBar
			l.current += 2
		case l.peek(1) == '=':
			l.Token = TBarEquals
			l.current += 2
		default:
			l.Token = TBar
			l.current++
		}
	case '^':
		if l.peek(1) == '=' {
			l.Token = TCaretEquals
			l.current += 2
		} else {
			l.Token = TCaret
			l.current++
		}
	case '#':
		// Private names are scanned as identifiers prefixed with "#"
		l.current++
		r, width := utf8.DecodeRuneInString(l.source.Contents[l.current:])
		if !IsIdentifierStart(r) {
			l.SyntaxError()
		}
		l.current += width
		for l.current < len(l.source.Contents) {
			r, width = utf8.DecodeRuneInString(l.source.Contents[l.current:])
			if !IsIdentifierContinue(r) {
				break
			}
			l.current += width
		}
		l.Identifier = l.source.Contents[l.start:l.current]
		l.Token = TIdentifier
	default:
		l.addError(logger.Loc{Start: int32(l.start)}, "Syntax error \""+string(c)+"\"")
	}
}

func (l *Lexer) scanString(quote byte) {
	contents := l.source.Contents
	l.current++
	var sb strings.Builder
	for {
		if l.current >= len(contents) {
			l.addError(logger.Loc{Start: int32(l.start)}, "Unterminated string literal")
		}
		c := contents[l.current]
		switch c {
		case quote:
			l.current++
			l.Token = TStringLiteral
			l.StringValue = sb.String()
			return
		case '\\':
			l.current++
			sb.WriteString(l.scanEscape())
		case '\n':
			l.addError(logger.Loc{Start: int32(l.current)}, "Unterminated string literal")
		default:
			_, width := utf8.DecodeRuneInString(contents[l.current:])
			sb.WriteString(contents[l.current : l.current+width])
			l.current += width
		}
	}
}

func (l *Lexer) scanEscape() string {
	contents := l.source.Contents
	if l.current >= len(contents) {
		l.addError(logger.Loc{Start: int32(l.current)}, "Unterminated escape sequence")
	}
	c := contents[l.current]
	l.current++
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		return "\x00"
	case '\n':
		return "" // line continuation
	case '\r':
		if l.current < len(contents) && contents[l.current] == '\n' {
			l.current++
		}
		return ""
	case 'x':
		if l.current+2 <= len(contents) {
			if v, ok := parseHex(contents[l.current : l.current+2]); ok {
				l.current += 2
				return string(rune(v))
			}
		}
		l.addError(logger.Loc{Start: int32(l.current)}, "Invalid hexadecimal escape")
	case 'u':
		if l.current < len(contents) && contents[l.current] == '{' {
			end := strings.IndexByte(contents[l.current:], '}')
			if end > 1 {
				if v, ok := parseHex(contents[l.current+1 : l.current+end]); ok {
					l.current += end + 1
					return string(rune(v))
				}
			}
		} else if l.current+4 <= len(contents) {
			if v, ok := parseHex(contents[l.current : l.current+4]); ok {
				l.current += 4
				return string(rune(v))
			}
		}
		l.addError(logger.Loc{Start: int32(l.current)}, "Invalid unicode escape")
	}
	return string(c)
}

func parseHex(text string) (int32, bool) {
	var value int32
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= '0' && c <= '9':
			value = value*16 + int32(c-'0')
		case c >= 'a' && c <= 'f':
			value = value*16 + int32(c-'a'+10)
		case c >= 'A' && c <= 'F':
			value = value*16 + int32(c-'A'+10)
		default:
			return 0, false
		}
	}
	return value, true
}

func (l *Lexer) scanNumber() {
	contents := l.source.Contents
	isLegacyBase := false
	if contents[l.current] == '0' && l.current+1 < len(contents) {
		switch contents[l.current+1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			isLegacyBase = true
			l.current += 2
			for l.current < len(contents) && isHexOrSeparator(contents[l.current]) {
				l.current++
			}
		}
	}
	if !isLegacyBase {
		for l.current < len(contents) && isDigitOrSeparator(contents[l.current]) {
			l.current++
		}
		if l.current < len(contents) && contents[l.current] == '.' {
			l.current++
			for l.current < len(contents) && isDigitOrSeparator(contents[l.current]) {
				l.current++
			}
		}
		if l.current < len(contents) && (contents[l.current] == 'e' || contents[l.current] == 'E') {
			l.current++
			if l.current < len(contents) && (contents[l.current] == '+' || contents[l.current] == '-') {
				l.current++
			}
			for l.current < len(contents) && isDigitOrSeparator(contents[l.current]) {
				l.current++
			}
		}
	}
	// BigInt suffix
	if l.current < len(contents) && contents[l.current] == 'n' {
		l.current++
	}
	l.Token = TNumericLiteral
	l.Number = contents[l.start:l.current]
}

func isDigitOrSeparator(c byte) bool {
	return (c >= '0' && c <= '9') || c == '_'
}

func isHexOrSeparator(c byte) bool {
	return isDigitOrSeparator(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// scanTemplate scans a template literal starting at "from" (just past the
// opening backtick or the "}" ending a substitution). isHead is true only
// for the backtick case; a rescan after a substitution produces the middle
// or tail token instead.
func (l *Lexer) scanTemplate(from int, isHead bool) {
	contents := l.source.Contents
	l.current = from
	for {
		if l.current >= len(contents) {
			l.addError(logger.Loc{Start: int32(l.start)}, "Unterminated template literal")
		}
		c := contents[l.current]
		switch c {
		case '`':
			l.RawTemplate = contents[from:l.current]
			l.current++
			if isHead {
				l.Token = TNoSubstitutionTemplateLiteral
			} else {
				l.Token = TTemplateTail
			}
			l.end = l.current
			return
		case '$':
			if l.peek(1) == '{' {
				l.RawTemplate = contents[from:l.current]
				l.current += 2
				if isHead {
					l.Token = TTemplateHead
				} else {
					l.Token = TTemplateMiddle
				}
				l.end = l.current
				return
			}
			l.current++
		case '\\':
			l.current += 2
		default:
			l.current++
		}
	}
}

// RescanTemplatePart re-reads the "}" that closed a template substitution as
// the start of the next template chunk.
func (l *Lexer) RescanTemplatePart() {
	if l.Token != TCloseBrace {
		l.Expected(TCloseBrace)
	}
	l.scanTemplate(l.start+1, false)
}

// ScanRegExp re-reads the current "/" or "/=" token as a regular expression
// literal. The parser calls this when a slash appears in prefix position.
func (l *Lexer) ScanRegExp() {
	contents := l.source.Contents
	l.current = l.start + 1
	inClass := false
	for {
		if l.current >= len(contents) || contents[l.current] == '\n' {
			l.addError(logger.Loc{Start: int32(l.start)}, "Unterminated regular expression")
		}
		c := contents[l.current]
		switch c {
		case '[':
			inClass = true
		case ']':
			inClass = false
		case '\\':
			l.current++
		case '/':
			if !inClass {
				l.current++
				for l.current < len(contents) {
					r, width := utf8.DecodeRuneInString(contents[l.current:])
					if !IsIdentifierContinue(r) {
						break
					}
					l.current += width
				}
				l.Token = TRegExpLiteral
				l.end = l.current
				return
			}
		}
		l.current++
	}
}

// NextInsideJSXElement scans the next token using the JSX element grammar:
// identifiers may contain dashes, and strings are taken verbatim.
func (l *Lexer) NextInsideJSXElement() {
	l.skipWhitespaceAndComments()
	l.start = l.current
	contents := l.source.Contents

	if l.current >= len(contents) {
		l.Token = TEndOfFile
		l.end = l.current
		return
	}

	c := contents[l.current]
	switch c {
	case '>':
		l.Token = TGreaterThan
		l.current++
	case '/':
		l.Token = TSlash
		l.current++
	case '=':
		l.Token = TEquals
		l.current++
	case '{':
		l.Token = TOpenBrace
		l.current++
	case '.':
		l.Token = TDot
		l.current++
	case ':':
		l.Token = TColon
		l.current++
	case '<':
		l.Token = TLessThan
		l.current++
	case '\'', '"':
		quote := c
		l.current++
		for {
			if l.current >= len(contents) {
				l.addError(logger.Loc{Start: int32(l.start)}, "Unterminated string literal")
			}
			if contents[l.current] == quote {
				break
			}
			l.current++
		}
		l.StringValue = contents[l.start+1 : l.current]
		l.current++
		l.Token = TStringLiteral
	default:
		r, width := utf8.DecodeRuneInString(contents[l.current:])
		if !IsIdentifierStart(r) {
			l.SyntaxError()
		}
		l.current += width
		for l.current < len(contents) {
			r, width = utf8.DecodeRuneInString(contents[l.current:])
			if !IsIdentifierContinue(r) && r != '-' {
				break
			}
			l.current += width
		}
		l.Identifier = contents[l.start:l.current]
		l.Token = TIdentifier
	}
	l.end = l.current
}

// NextJSXElementChild scans in JSX child position: raw text up to the next
// "{" or "<", or that punctuation itself.
func (l *Lexer) NextJSXElementChild() {
	l.start = l.current
	contents := l.source.Contents

	if l.current >= len(contents) {
		l.Token = TEndOfFile
		l.end = l.current
		return
	}

	switch contents[l.current] {
	case '<':
		l.Token = TLessThan
		l.current++
	case '{':
		l.Token = TOpenBrace
		l.current++
	default:
		for l.current < len(contents) && contents[l.current] != '<' && contents[l.current] != '{' {
			l.current++
		}
		l.StringValue = contents[l.start:l.current]
		l.Token = TStringLiteral
	}
	l.end = l.current
}
