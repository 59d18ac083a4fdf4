package js_ast

import (
	"github.com/modpack-dev/modpack/internal/logger"
)

// Every call parses one module into a single AST owned by that call. The tree
// is mutated in place by the transform passes and then consumed by the
// printer. Identifiers carry their names directly; this transformer never
// renames symbols, so there is no symbol table.

// L is an operator precedence level.
// https://developer.mozilla.org/en-US/docs/Web/JavaScript/Reference/Operators/Operator_Precedence
type L uint8

const (
	LLowest L = iota
	LComma
	LSpread
	LYield
	LAssign
	LConditional
	LNullishCoalescing
	LLogicalOr
	LLogicalAnd
	LBitwiseOr
	LBitwiseXor
	LBitwiseAnd
	LEquals
	LCompare
	LShift
	LAdd
	LMultiply
	LExponentiation
	LPrefix
	LPostfix
	LNew
	LCall
	LMember
)

type OpCode uint8

const (
	// Prefix
	UnOpPos OpCode = iota
	UnOpNeg
	UnOpCpl
	UnOpNot
	UnOpVoid
	UnOpTypeof
	UnOpDelete

	// Prefix update
	UnOpPreDec
	UnOpPreInc

	// Postfix update
	UnOpPostDec
	UnOpPostInc

	// Left-associative
	BinOpAdd
	BinOpSub
	BinOpMul
	BinOpDiv
	BinOpRem
	BinOpPow
	BinOpLt
	BinOpLe
	BinOpGt
	BinOpGe
	BinOpIn
	BinOpInstanceof
	BinOpShl
	BinOpShr
	BinOpUShr
	BinOpLooseEq
	BinOpLooseNe
	BinOpStrictEq
	BinOpStrictNe
	BinOpNullishCoalescing
	BinOpLogicalOr
	BinOpLogicalAnd
	BinOpBitwiseOr
	BinOpBitwiseAnd
	BinOpBitwiseXor

	// Non-associative
	BinOpComma

	// Right-associative
	BinOpAssign
	BinOpAddAssign
	BinOpSubAssign
	BinOpMulAssign
	BinOpDivAssign
	BinOpRemAssign
	BinOpPowAssign
	BinOpShlAssign
	BinOpShrAssign
	BinOpUShrAssign
	BinOpBitwiseOrAssign
	BinOpBitwiseAndAssign
	BinOpBitwiseXorAssign
	BinOpNullishCoalescingAssign
	BinOpLogicalOrAssign
	BinOpLogicalAndAssign
)

func (op OpCode) IsPrefix() bool {
	return op < UnOpPostDec
}

func (op OpCode) IsLeftAssociative() bool {
	return op >= BinOpAdd && op < BinOpComma && op != BinOpPow
}

func (op OpCode) IsRightAssociative() bool {
	return op >= BinOpAssign || op == BinOpPow
}

type OpTableEntry struct {
	Text      string
	Level     L
	IsKeyword bool
}

var OpTable = []OpTableEntry{
	// Prefix
	{"+", LPrefix, false},
	{"-", LPrefix, false},
	{"~", LPrefix, false},
	{"!", LPrefix, false},
	{"void", LPrefix, true},
	{"typeof", LPrefix, true},
	{"delete", LPrefix, true},

	// Prefix update
	{"--", LPrefix, false},
	{"++", LPrefix, false},

	// Postfix update
	{"--", LPostfix, false},
	{"++", LPostfix, false},

	// Left-associative
	{"+", LAdd, false},
	{"-", LAdd, false},
	{"*", LMultiply, false},
	{"/", LMultiply, false},
	{"%", LMultiply, false},
	{"**", LExponentiation, false}, // Right-associative
	{"<", LCompare, false},
	{"<=", LCompare, false},
	{">", LCompare, false},
	{">=", LCompare, false},
	{"in", LCompare, true},
	{"instanceof", LCompare, true},
	{"<<", LShift, false},
	{">>", LShift, false},
	{">>>", LShift, false},
	{"==", LEquals, false},
	{"!=", LEquals, false},
	{"===", LEquals, false},
	{"!==", LEquals, false},
	{"??", LNullishCoalescing, false},
	{"||", LLogicalOr, false},
	{"&&", LLogicalAnd, false},
	{"|", LBitwiseOr, false},
	{"&", LBitwiseAnd, false},
	{"^", LBitwiseXor, false},

	// Non-associative
	{",", LComma, false},

	// Right-associative
	{"=", LAssign, false},
	{"+=", LAssign, false},
	{"-=", LAssign, false},
	{"*=", LAssign, false},
	{"/=", LAssign, false},
	{"%=", LAssign, false},
	{"**=", LAssign, false},
	{"<<=", LAssign, false},
	{">>=", LAssign, false},
	{">>>=", LAssign, false},
	{"|=", LAssign, false},
	{"&=", LAssign, false},
	{"^=", LAssign, false},
	{"??=", LAssign, false},
	{"||=", LAssign, false},
	{"&&=", LAssign, false},
}

// Path is a module specifier as written in the source, carried directly on
// the import/export node that references it. The transform pass rewrites
// Text in place.
type Path struct {
	Loc  logger.Loc
	Text string
}

type ClauseItem struct {
	Loc logger.Loc

	// "import { Name } from ..." / "export { Name }"
	Name string

	// "import { Name as Alias } from ...", empty when there is no alias
	Alias string
}

type Decl struct {
	Binding    Binding
	ValueOrNil Expr
}

type LocalKind uint8

const (
	LocalVar LocalKind = iota
	LocalLet
	LocalConst
)

func (kind LocalKind) String() string {
	switch kind {
	case LocalVar:
		return "var"
	case LocalLet:
		return "let"
	default:
		return "const"
	}
}

type Arg struct {
	Binding      Binding
	DefaultOrNil Expr
}

type Fn struct {
	Name    string // empty for anonymous function expressions
	NameLoc logger.Loc
	Args    []Arg
	Body    FnBody

	IsAsync     bool
	IsGenerator bool
	HasRestArg  bool
}

type FnBody struct {
	Loc   logger.Loc
	Block SBlock
}

type Class struct {
	Name         string // empty for anonymous class expressions
	NameLoc      logger.Loc
	ExtendsOrNil Expr
	Properties   []Property
}

type PropertyKind uint8

const (
	PropertyField PropertyKind = iota
	PropertyMethod
	PropertyGetter
	PropertySetter
	PropertySpread
)

type PropertyFlags uint8

const (
	PropertyIsComputed PropertyFlags = 1 << iota
	PropertyIsStatic
	PropertyWasShorthand
)

func (flags PropertyFlags) Has(flag PropertyFlags) bool {
	return (flags & flag) != 0
}

type Property struct {
	Loc  logger.Loc
	Kind PropertyKind

	Key Expr

	// Omitted for shorthand object properties and uninitialized class fields
	ValueOrNil Expr

	// Used for default values in binding patterns and class field initializers
	InitializerOrNil Expr

	Flags PropertyFlags
}

type TemplatePart struct {
	Value   Expr
	TailRaw string
}

// Bindings

type B interface{ isBinding() }

type BIdentifier struct{ Name string }

type BArrayItem struct {
	// Nil binding marks a hole: "[, x] = y"
	Binding      Binding
	DefaultOrNil Expr
	IsSpread     bool
}

type BArray struct {
	Items []BArrayItem
}

type BProperty struct {
	Key          Expr
	Value        Binding
	DefaultOrNil Expr
	IsComputed   bool
	IsSpread     bool
	WasShorthand bool
}

type BObject struct {
	Properties []BProperty
}

func (*BIdentifier) isBinding() {}
func (*BArray) isBinding()      {}
func (*BObject) isBinding()     {}

type Binding struct {
	Loc  logger.Loc
	Data B
}

// Expressions

type E interface{ isExpr() }

type EArray struct{ Items []Expr }

type EObject struct{ Properties []Property }

type EUnary struct {
	Op    OpCode
	Value Expr
}

type EBinary struct {
	Op    OpCode
	Left  Expr
	Right Expr
}

type ECall struct {
	Target        Expr
	Args          []Expr
	OptionalChain bool
}

type ENew struct {
	Target Expr
	Args   []Expr
}

type EDot struct {
	Target        Expr
	Name          string
	NameLoc       logger.Loc
	OptionalChain bool
}

type EIndex struct {
	Target        Expr
	Index         Expr
	OptionalChain bool
}

type EIdentifier struct{ Name string }

type EString struct{ Value string }

// Numbers keep the raw source text so printing never changes representation.
type ENumber struct{ Raw string }

type EBoolean struct{ Value bool }

type ENull struct{}

type EUndefined struct{}

type EThis struct{}

type ESuper struct{}

type EImportMeta struct{}

type ERegExp struct{ Raw string }

type ETemplate struct {
	TagOrNil Expr
	HeadRaw  string
	Parts    []TemplatePart
}

type ESpread struct{ Value Expr }

type EIf struct {
	Test Expr
	Yes  Expr
	No   Expr
}

type EArrow struct {
	Args       []Arg
	Body       FnBody
	PreferExpr bool // print as "() => expr" when the body is one return
	IsAsync    bool
	HasRestArg bool
}

type EFunction struct{ Fn Fn }

type EClass struct{ Class Class }

type EAwait struct{ Value Expr }

type EYield struct {
	ValueOrNil Expr
	IsStar     bool
}

// EImportCall is a dynamic "import(...)" call. Its specifier, when it is a
// string literal, is rewritten in place by the transform pass.
type EImportCall struct {
	Expr         Expr
	OptionsOrNil Expr
}

// EJSXElement survives only between parsing and the JSX lowering pass. The
// printer rejects it.
type EJSXElement struct {
	// Nil for fragments
	TagOrNil Expr

	// Attributes: PropertyField entries keyed by EString, or PropertySpread
	Properties []Property

	Children []Expr
}

func (*EArray) isExpr()      {}
func (*EObject) isExpr()     {}
func (*EUnary) isExpr()      {}
func (*EBinary) isExpr()     {}
func (*ECall) isExpr()       {}
func (*ENew) isExpr()        {}
func (*EDot) isExpr()        {}
func (*EIndex) isExpr()      {}
func (*EIdentifier) isExpr() {}
func (*EString) isExpr()     {}
func (*ENumber) isExpr()     {}
func (*EBoolean) isExpr()    {}
func (*ENull) isExpr()       {}
func (*EUndefined) isExpr()  {}
func (*EThis) isExpr()       {}
func (*ESuper) isExpr()      {}
func (*EImportMeta) isExpr() {}
func (*ERegExp) isExpr()     {}
func (*ETemplate) isExpr()   {}
func (*ESpread) isExpr()     {}
func (*EIf) isExpr()         {}
func (*EArrow) isExpr()      {}
func (*EFunction) isExpr()   {}
func (*EClass) isExpr()      {}
func (*EAwait) isExpr()      {}
func (*EYield) isExpr()      {}
func (*EImportCall) isExpr() {}
func (*EJSXElement) isExpr() {}

type Expr struct {
	Loc  logger.Loc
	Data E
}

// Statements

type S interface{ isStmt() }

type SBlock struct{ Stmts []Stmt }

type SEmpty struct{}

type SDirective struct{ Value string }

type SComment struct{ Text string }

type SDebugger struct{}

type SExpr struct{ Value Expr }

type SLocal struct {
	Kind     LocalKind
	Decls    []Decl
	IsExport bool
}

type SFunction struct {
	Fn       Fn
	IsExport bool
}

type SClass struct {
	Class    Class
	IsExport bool
}

type SIf struct {
	Test    Expr
	Yes     Stmt
	NoOrNil Stmt
}

type SFor struct {
	InitOrNil   Stmt // SLocal or SExpr
	TestOrNil   Expr
	UpdateOrNil Expr
	Body        Stmt
}

type SForIn struct {
	Init  Stmt
	Value Expr
	Body  Stmt
}

type SForOf struct {
	IsAwait bool
	Init    Stmt
	Value   Expr
	Body    Stmt
}

type SWhile struct {
	Test Expr
	Body Stmt
}

type SDoWhile struct {
	Body Stmt
	Test Expr
}

type SReturn struct{ ValueOrNil Expr }

type SThrow struct{ Value Expr }

type SBreak struct{ Label string }

type SContinue struct{ Label string }

type SLabel struct {
	Name string
	Stmt Stmt
}

type Catch struct {
	BindingOrNil Binding
	Block        SBlock
}

type Finally struct{ Block SBlock }

type STry struct {
	Block   SBlock
	Catch   *Catch
	Finally *Finally
}

type Case struct {
	ValueOrNil Expr // nil for "default:"
	Body       []Stmt
}

type SSwitch struct {
	Test  Expr
	Cases []Case
}

// SImport covers every static import form. Exactly one call resolves the
// Path; the resolver may rewrite Path.Text in place.
type SImport struct {
	// "import Default from ..."
	DefaultName string

	// "import { a, b as c } from ...", nil when there is no clause
	Items *[]ClauseItem

	// "import * as ns from ..."
	StarName string

	Path Path

	// "import type ..." in TypeScript sources: kept in the tree but ignored
	// by the resolver and dropped by the printer
	IsTypeOnly bool
}

// "export { a, b as c }"
type SExportClause struct{ Items []ClauseItem }

// "export { a, b as c } from ..."
type SExportFrom struct {
	Items []ClauseItem
	Path  Path
}

// "export * from ..." / "export * as ns from ..."
type SExportStar struct {
	Alias string
	Path  Path
}

// "export default ...": Value is an SExpr, SFunction, or SClass
type SExportDefault struct{ Value Stmt }

func (*SBlock) isStmt()         {}
func (*SEmpty) isStmt()         {}
func (*SDirective) isStmt()     {}
func (*SComment) isStmt()       {}
func (*SDebugger) isStmt()      {}
func (*SExpr) isStmt()          {}
func (*SLocal) isStmt()         {}
func (*SFunction) isStmt()      {}
func (*SClass) isStmt()         {}
func (*SIf) isStmt()            {}
func (*SFor) isStmt()           {}
func (*SForIn) isStmt()         {}
func (*SForOf) isStmt()         {}
func (*SWhile) isStmt()         {}
func (*SDoWhile) isStmt()       {}
func (*SReturn) isStmt()        {}
func (*SThrow) isStmt()         {}
func (*SBreak) isStmt()         {}
func (*SContinue) isStmt()      {}
func (*SLabel) isStmt()         {}
func (*STry) isStmt()           {}
func (*SSwitch) isStmt()        {}
func (*SImport) isStmt()        {}
func (*SExportClause) isStmt()  {}
func (*SExportFrom) isStmt()    {}
func (*SExportStar) isStmt()    {}
func (*SExportDefault) isStmt() {}

type Stmt struct {
	Loc  logger.Loc
	Data S
}

// AST is the parsed module. It is exclusively owned by one call: mutated
// during the traversal pass, then consumed by the printer.
type AST struct {
	Directive string
	Stmts     []Stmt
}

// SyntheticLoc marks nodes injected by a transform pass. The printer maps
// them to the position of the nearest enclosing original node.
var SyntheticLoc = logger.Loc{Start: -1}
