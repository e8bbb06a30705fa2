package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer renders AST nodes in constructor form, for example
// Assign(=, res, Binary(+, a, Binary(*, b, 3))).
// In tree mode every node starts on its own indented line.
type Printer struct {
	w      io.Writer
	tree   bool
	indent int
	err    error
}

// NewPrinter creates a Printer that writes the single-line form to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewTreePrinter creates a Printer that writes one node per line,
// indenting children under their parent.
func NewTreePrinter(w io.Writer) *Printer {
	return &Printer{w: w, tree: true}
}

// Print writes node to the underlying writer.
func (p *Printer) Print(node Node) error {
	p.printNode(node)
	return p.err
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) printNode(node Node) {
	switch n := node.(type) {
	case nil:
		p.printf("<nil>")
	case *Program:
		for _, s := range n.Stmts {
			p.printNode(s)
			p.printf("\n")
		}
	case *ExprStmt:
		p.printNode(n.Expr)
	case *EmptyStmt:
		p.printf("Empty")
	case Expr:
		p.printExpr(n)
	default:
		p.printf("<%T>", node)
	}
}

func (p *Printer) printExpr(e Expr) {
	switch n := e.(type) {
	case *Ident:
		p.printf("%s", n.Name)
	case *NumLit:
		p.printf("%s", n.Raw)
	case *UnaryExpr:
		p.call("Unary", n.Op.String(), n.Expr)
	case *PostfixExpr:
		p.call("Postfix", n.Expr, n.Op.String())
	case *IndexExpr:
		p.call("Index", n.Array, n.Index)
	case *BinaryExpr:
		p.call("Binary", n.Op.String(), n.Left, n.Right)
	case *AssignExpr:
		p.call("Assign", n.Op.String(), n.Left, n.Right)
	case *CondExpr:
		p.call("Conditional", n.Cond, n.Then, n.Else)
	case *CommaExpr:
		p.call("Comma", n.Left, n.Right)
	default:
		p.printf("<%T>", e)
	}
}

// call prints name(args...). Each arg is an Expr or an operator spelling.
func (p *Printer) call(name string, args ...any) {
	p.printf("%s(", name)
	p.indent++
	for i, a := range args {
		if i > 0 {
			p.printf(",")
			if !p.tree {
				p.printf(" ")
			}
		}
		if p.tree {
			p.printf("\n%s", strings.Repeat("  ", p.indent))
		}
		switch a := a.(type) {
		case string:
			p.printf("%s", a)
		case Expr:
			p.printExpr(a)
		}
	}
	p.indent--
	if p.tree {
		p.printf("\n%s", strings.Repeat("  ", p.indent))
	}
	p.printf(")")
}

// String returns the single-line constructor form of node.
func String(node Node) string {
	var sb strings.Builder
	NewPrinter(&sb).Print(node)
	return sb.String()
}

// Tree returns the indented multi-line form of node.
func Tree(node Node) string {
	var sb strings.Builder
	NewTreePrinter(&sb).Print(node)
	return sb.String()
}
