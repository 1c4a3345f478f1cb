package ast

// Visitor dispatches on concrete node types.
type Visitor interface {
	VisitFile(node *File) interface{}

	VisitImportDeclaration(node *ImportDeclaration) interface{}
	VisitExportFromDeclaration(node *ExportFromDeclaration) interface{}
	VisitExportClauseDeclaration(node *ExportClauseDeclaration) interface{}
	VisitExportAllDeclaration(node *ExportAllDeclaration) interface{}
	VisitExportDefaultDeclaration(node *ExportDefaultDeclaration) interface{}
	VisitClauseItem(node *ClauseItem) interface{}

	VisitVariableDeclaration(node *VariableDeclaration) interface{}
	VisitNamedDeclaration(node *NamedDeclaration) interface{}
	VisitBlockStatement(node *BlockStatement) interface{}
	VisitRawStatement(node *RawStatement) interface{}

	VisitLiteral(node *Literal) interface{}
	VisitRawExpression(node *RawExpression) interface{}
}

// BaseVisitor provides a default implementation of the Visitor interface
// that returns nil for all visits, so concrete visitors only override the
// methods they need.
type BaseVisitor struct{}

func (v *BaseVisitor) VisitFile(node *File) interface{}                           { return nil }
func (v *BaseVisitor) VisitImportDeclaration(node *ImportDeclaration) interface{} { return nil }
func (v *BaseVisitor) VisitExportFromDeclaration(node *ExportFromDeclaration) interface{} {
	return nil
}
func (v *BaseVisitor) VisitExportClauseDeclaration(node *ExportClauseDeclaration) interface{} {
	return nil
}
func (v *BaseVisitor) VisitExportAllDeclaration(node *ExportAllDeclaration) interface{} {
	return nil
}
func (v *BaseVisitor) VisitExportDefaultDeclaration(node *ExportDefaultDeclaration) interface{} {
	return nil
}
func (v *BaseVisitor) VisitClauseItem(node *ClauseItem) interface{}                   { return nil }
func (v *BaseVisitor) VisitVariableDeclaration(node *VariableDeclaration) interface{} { return nil }
func (v *BaseVisitor) VisitNamedDeclaration(node *NamedDeclaration) interface{}       { return nil }
func (v *BaseVisitor) VisitBlockStatement(node *BlockStatement) interface{}           { return nil }
func (v *BaseVisitor) VisitRawStatement(node *RawStatement) interface{}               { return nil }
func (v *BaseVisitor) VisitLiteral(node *Literal) interface{}                         { return nil }
func (v *BaseVisitor) VisitRawExpression(node *RawExpression) interface{}             { return nil }

// VisitStatements calls Accept on each statement in order.
func VisitStatements(v Visitor, stmts []Statement) {
	for _, s := range stmts {
		s.Accept(v)
	}
}
