package js_ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exprStmt(name string) Stmt {
	return Stmt{Data: &SExpr{Value: Expr{Data: &EIdentifier{Name: name}}}}
}

func stmtName(s *Stmt) string {
	expr, ok := s.Data.(*SExpr)
	if !ok {
		return ""
	}
	ident, ok := expr.Value.Data.(*EIdentifier)
	if !ok {
		return ""
	}
	return ident.Name
}

func TestTraverseVisitsInSourceOrder(t *testing.T) {
	tree := AST{Stmts: []Stmt{
		exprStmt("a"),
		{Data: &SBlock{Stmts: []Stmt{exprStmt("b"), exprStmt("c")}}},
		exprStmt("d"),
	}}

	var names []string
	TraverseAST(&tree, &ASTVisitor{
		EnterExpr: func(e *Expr, path *NodePath) {
			if ident, ok := e.Data.(*EIdentifier); ok {
				names = append(names, ident.Name)
			}
		},
	})
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
}

func TestTraverseIteratorInsertsSiblings(t *testing.T) {
	tree := AST{Stmts: []Stmt{exprStmt("a"), exprStmt("b")}}

	TraverseAST(&tree, &ASTVisitor{
		EnterStmt: func(s *Stmt, path *NodePath, iterator *StmtIterator) {
			if stmtName(s) == "b" {
				iterator.InsertBefore(exprStmt("before"))
				iterator.InsertAfter(exprStmt("after"))
			}
		},
	})

	var names []string
	for i := range tree.Stmts {
		names = append(names, stmtName(&tree.Stmts[i]))
	}
	assert.Equal(t, []string{"a", "before", "b", "after"}, names)
}

// Statements that are not part of a list get no iterator, so a callback
// cannot splice siblings into the wrong list.
func TestTraverseNestedStatementsHaveNoIterator(t *testing.T) {
	ifStmt := Stmt{Data: &SIf{
		Test: Expr{Data: &EIdentifier{Name: "cond"}},
		Yes:  exprStmt("branch"),
	}}
	tree := AST{Stmts: []Stmt{ifStmt}}

	iterators := map[string]bool{}
	TraverseAST(&tree, &ASTVisitor{
		EnterStmt: func(s *Stmt, path *NodePath, iterator *StmtIterator) {
			switch s.Data.(type) {
			case *SIf:
				iterators["if"] = iterator != nil
			case *SExpr:
				iterators["branch"] = iterator != nil
			}
		},
	})

	require.Contains(t, iterators, "if")
	require.Contains(t, iterators, "branch")
	assert.True(t, iterators["if"])
	assert.False(t, iterators["branch"])
}
