package js_ast

// A single mutating traversal over the tree. Visitor callbacks receive a
// pointer to the node so they can replace its Data in place, a NodePath
// linking back to the enclosing nodes, and (for statements) an iterator that
// can insert siblings around the current statement. The iterator is nil for
// statements that are not part of a list, like an "if" branch or a loop body.

type visitorInterface interface {
	enterStmt(s *Stmt, path *NodePath, iterator *StmtIterator)
	exitStmt(s *Stmt, path *NodePath, iterator *StmtIterator)
	enterExpr(e *Expr, path *NodePath)
	exitExpr(e *Expr, path *NodePath)
}

type NodePath struct {
	ParentPath *NodePath
	Node       interface{} // *Stmt or *Expr, nil at the root
}

type ASTVisitor struct {
	EnterStmt func(s *Stmt, path *NodePath, iterator *StmtIterator)
	ExitStmt  func(s *Stmt, path *NodePath, iterator *StmtIterator)
	EnterExpr func(e *Expr, path *NodePath)
	ExitExpr  func(e *Expr, path *NodePath)
}

func (visitor *ASTVisitor) enterStmt(s *Stmt, path *NodePath, iterator *StmtIterator) {
	if visitor.EnterStmt != nil {
		visitor.EnterStmt(s, path, iterator)
	}
}

func (visitor *ASTVisitor) exitStmt(s *Stmt, path *NodePath, iterator *StmtIterator) {
	if visitor.ExitStmt != nil {
		visitor.ExitStmt(s, path, iterator)
	}
}

func (visitor *ASTVisitor) enterExpr(e *Expr, path *NodePath) {
	if visitor.EnterExpr != nil {
		visitor.EnterExpr(e, path)
	}
}

func (visitor *ASTVisitor) exitExpr(e *Expr, path *NodePath) {
	if visitor.ExitExpr != nil {
		visitor.ExitExpr(e, path)
	}
}

func insert[K any](a []K, index int, value K) ([]K, bool) {
	if index < 0 {
		return a, false
	}
	if len(a) == index {
		return append(a, value), true
	}
	a = append(a[:index+1], a[index:]...)
	a[index] = value
	return a, true
}

type StmtIterator struct {
	stmts  *[]Stmt
	cursor int
}

func newStmtIterator(stmts *[]Stmt) StmtIterator {
	return StmtIterator{stmts: stmts}
}

func (iterator *StmtIterator) Next() (*Stmt, bool) {
	if iterator.cursor >= len(*iterator.stmts) {
		return nil, false
	}
	stmt := &(*iterator.stmts)[iterator.cursor]
	iterator.cursor++
	return stmt, true
}

func (iterator *StmtIterator) InsertBefore(s Stmt) {
	if stmts, ok := insert(*iterator.stmts, iterator.cursor-1, s); ok {
		*iterator.stmts = stmts
		iterator.cursor++
	}
}

func (iterator *StmtIterator) InsertAfter(s Stmt) {
	if stmts, ok := insert(*iterator.stmts, iterator.cursor, s); ok {
		*iterator.stmts = stmts
	}
}

func visitStmts(stmts *[]Stmt, visitor visitorInterface, parentPath *NodePath) {
	iterator := newStmtIterator(stmts)
	for {
		stmt, ok := iterator.Next()
		if !ok {
			break
		}
		visitStmt(stmt, visitor, parentPath, &iterator)
	}
}

func visitArgs(args []Arg, visitor visitorInterface, parentPath *NodePath) {
	for i := range args {
		visitBinding(&args[i].Binding, visitor, parentPath)
		if args[i].DefaultOrNil.Data != nil {
			visitExpr(&args[i].DefaultOrNil, visitor, parentPath)
		}
	}
}

func visitBinding(binding *Binding, visitor visitorInterface, parentPath *NodePath) {
	switch b := binding.Data.(type) {
	case *BArray:
		for i := range b.Items {
			item := &b.Items[i]
			if item.Binding.Data != nil {
				visitBinding(&item.Binding, visitor, parentPath)
			}
			if item.DefaultOrNil.Data != nil {
				visitExpr(&item.DefaultOrNil, visitor, parentPath)
			}
		}
	case *BObject:
		for i := range b.Properties {
			property := &b.Properties[i]
			if property.IsComputed {
				visitExpr(&property.Key, visitor, parentPath)
			}
			if property.Value.Data != nil {
				visitBinding(&property.Value, visitor, parentPath)
			}
			if property.DefaultOrNil.Data != nil {
				visitExpr(&property.DefaultOrNil, visitor, parentPath)
			}
		}
	}
}

func visitProperties(properties []Property, visitor visitorInterface, parentPath *NodePath) {
	for i := range properties {
		property := &properties[i]
		visitExpr(&property.Key, visitor, parentPath)
		if property.ValueOrNil.Data != nil {
			visitExpr(&property.ValueOrNil, visitor, parentPath)
		}
		if property.InitializerOrNil.Data != nil {
			visitExpr(&property.InitializerOrNil, visitor, parentPath)
		}
	}
}

func visitClass(class *Class, visitor visitorInterface, parentPath *NodePath) {
	if class.ExtendsOrNil.Data != nil {
		visitExpr(&class.ExtendsOrNil, visitor, parentPath)
	}
	visitProperties(class.Properties, visitor, parentPath)
}

func visitStmt(stmt *Stmt, visitor visitorInterface, parentPath *NodePath, iterator *StmtIterator) {
	if stmt == nil || stmt.Data == nil {
		return
	}
	stmtPath := &NodePath{ParentPath: parentPath, Node: stmt}
	visitor.enterStmt(stmt, stmtPath, iterator)

	switch s := stmt.Data.(type) {
	case *SBlock:
		visitStmts(&s.Stmts, visitor, stmtPath)
	case *SExpr:
		visitExpr(&s.Value, visitor, stmtPath)
	case *SLocal:
		for i := range s.Decls {
			visitBinding(&s.Decls[i].Binding, visitor, stmtPath)
			if s.Decls[i].ValueOrNil.Data != nil {
				visitExpr(&s.Decls[i].ValueOrNil, visitor, stmtPath)
			}
		}
	case *SFunction:
		visitArgs(s.Fn.Args, visitor, stmtPath)
		visitStmts(&s.Fn.Body.Block.Stmts, visitor, stmtPath)
	case *SClass:
		visitClass(&s.Class, visitor, stmtPath)
	case *SIf:
		visitExpr(&s.Test, visitor, stmtPath)
		visitStmt(&s.Yes, visitor, stmtPath, nil)
		if s.NoOrNil.Data != nil {
			visitStmt(&s.NoOrNil, visitor, stmtPath, nil)
		}
	case *SFor:
		if s.InitOrNil.Data != nil {
			visitStmt(&s.InitOrNil, visitor, stmtPath, nil)
		}
		if s.TestOrNil.Data != nil {
			visitExpr(&s.TestOrNil, visitor, stmtPath)
		}
		if s.UpdateOrNil.Data != nil {
			visitExpr(&s.UpdateOrNil, visitor, stmtPath)
		}
		visitStmt(&s.Body, visitor, stmtPath, nil)
	case *SForIn:
		visitStmt(&s.Init, visitor, stmtPath, nil)
		visitExpr(&s.Value, visitor, stmtPath)
		visitStmt(&s.Body, visitor, stmtPath, nil)
	case *SForOf:
		visitStmt(&s.Init, visitor, stmtPath, nil)
		visitExpr(&s.Value, visitor, stmtPath)
		visitStmt(&s.Body, visitor, stmtPath, nil)
	case *SWhile:
		visitExpr(&s.Test, visitor, stmtPath)
		visitStmt(&s.Body, visitor, stmtPath, nil)
	case *SDoWhile:
		visitStmt(&s.Body, visitor, stmtPath, nil)
		visitExpr(&s.Test, visitor, stmtPath)
	case *SReturn:
		if s.ValueOrNil.Data != nil {
			visitExpr(&s.ValueOrNil, visitor, stmtPath)
		}
	case *SThrow:
		visitExpr(&s.Value, visitor, stmtPath)
	case *SLabel:
		visitStmt(&s.Stmt, visitor, stmtPath, nil)
	case *STry:
		visitStmts(&s.Block.Stmts, visitor, stmtPath)
		if s.Catch != nil {
			visitStmts(&s.Catch.Block.Stmts, visitor, stmtPath)
		}
		if s.Finally != nil {
			visitStmts(&s.Finally.Block.Stmts, visitor, stmtPath)
		}
	case *SSwitch:
		visitExpr(&s.Test, visitor, stmtPath)
		for i := range s.Cases {
			if s.Cases[i].ValueOrNil.Data != nil {
				visitExpr(&s.Cases[i].ValueOrNil, visitor, stmtPath)
			}
			visitStmts(&s.Cases[i].Body, visitor, stmtPath)
		}
	case *SExportDefault:
		visitStmt(&s.Value, visitor, stmtPath, nil)
	}

	visitor.exitStmt(stmt, stmtPath, iterator)
}

func visitExpr(expr *Expr, visitor visitorInterface, parentPath *NodePath) {
	if expr == nil || expr.Data == nil {
		return
	}
	exprPath := &NodePath{ParentPath: parentPath, Node: expr}
	visitor.enterExpr(expr, exprPath)

	switch e := expr.Data.(type) {
	case *EArray:
		for i := range e.Items {
			visitExpr(&e.Items[i], visitor, exprPath)
		}
	case *EObject:
		visitProperties(e.Properties, visitor, exprPath)
	case *EUnary:
		visitExpr(&e.Value, visitor, exprPath)
	case *EBinary:
		visitExpr(&e.Left, visitor, exprPath)
		visitExpr(&e.Right, visitor, exprPath)
	case *ECall:
		visitExpr(&e.Target, visitor, exprPath)
		for i := range e.Args {
			visitExpr(&e.Args[i], visitor, exprPath)
		}
	case *ENew:
		visitExpr(&e.Target, visitor, exprPath)
		for i := range e.Args {
			visitExpr(&e.Args[i], visitor, exprPath)
		}
	case *EDot:
		visitExpr(&e.Target, visitor, exprPath)
	case *EIndex:
		visitExpr(&e.Target, visitor, exprPath)
		visitExpr(&e.Index, visitor, exprPath)
	case *ETemplate:
		if e.TagOrNil.Data != nil {
			visitExpr(&e.TagOrNil, visitor, exprPath)
		}
		for i := range e.Parts {
			visitExpr(&e.Parts[i].Value, visitor, exprPath)
		}
	case *ESpread:
		visitExpr(&e.Value, visitor, exprPath)
	case *EIf:
		visitExpr(&e.Test, visitor, exprPath)
		visitExpr(&e.Yes, visitor, exprPath)
		visitExpr(&e.No, visitor, exprPath)
	case *EArrow:
		visitArgs(e.Args, visitor, exprPath)
		visitStmts(&e.Body.Block.Stmts, visitor, exprPath)
	case *EFunction:
		visitArgs(e.Fn.Args, visitor, exprPath)
		visitStmts(&e.Fn.Body.Block.Stmts, visitor, exprPath)
	case *EClass:
		visitClass(&e.Class, visitor, exprPath)
	case *EAwait:
		visitExpr(&e.Value, visitor, exprPath)
	case *EYield:
		if e.ValueOrNil.Data != nil {
			visitExpr(&e.ValueOrNil, visitor, exprPath)
		}
	case *EImportCall:
		visitExpr(&e.Expr, visitor, exprPath)
		if e.OptionsOrNil.Data != nil {
			visitExpr(&e.OptionsOrNil, visitor, exprPath)
		}
	case *EJSXElement:
		if e.TagOrNil.Data != nil {
			visitExpr(&e.TagOrNil, visitor, exprPath)
		}
		visitProperties(e.Properties, visitor, exprPath)
		for i := range e.Children {
			visitExpr(&e.Children[i], visitor, exprPath)
		}
	}

	visitor.exitExpr(expr, exprPath)
}

// TraverseAST walks the whole module in source order.
func TraverseAST(tree *AST, visitor *ASTVisitor) {
	root := &NodePath{}
	visitStmts(&tree.Stmts, visitor, root)
}
