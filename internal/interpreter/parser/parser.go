// Package parser implements a hand-written recursive-descent / Pratt
// parser over the lexer's token stream, producing the ast node set. There
// is no reliance on Python's own grammar definition or a parser-combinator
// library; this mirrors the teacher's hand-rolled DSL evaluators.
package parser

import (
	"fmt"
	"strconv"

	"github.com/jbhoffman613/camel-prompt-injection/internal/interpreter/ast"
	"github.com/jbhoffman613/camel-prompt-injection/internal/interpreter/lexer"
)

// ParseError reports a malformed or unsupported-syntax source fragment.
type ParseError struct {
	Msg  string
	Line int
	Col  int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("ParseError: %s (line %d)", e.Msg, e.Line)
}

// unsupportedKeywords enumerates the statement/expression forms spec §4.3
// rejects explicitly: import, def, async/await, try/except, with,
// global/nonlocal, yield, lambda.
var unsupportedKeywords = map[string]bool{
	"import": true, "from": true, "def": true, "async": true, "await": true,
	"try": true, "except": true, "finally": true, "with": true,
	"global": true, "nonlocal": true, "yield": true, "lambda": true,
}

type Parser struct {
	toks []lexer.Token
	pos  int
}

// Parse tokenizes and parses a full module (sequence of statements).
func Parse(src string) ([]ast.Node, error) {
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}
	p := &Parser{toks: toks}
	var stmts []ast.Node
	p.skipNewlines()
	for !p.atEOF() {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		p.skipNewlines()
	}
	return stmts, nil
}

func (p *Parser) cur() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return lexer.Token{Kind: lexer.EOF}
	}
	return p.toks[p.pos+n]
}

func (p *Parser) atEOF() bool { return p.cur().Kind == lexer.EOF }

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) pos_() ast.Pos { return ast.Pos{Line: p.cur().Line, Col: p.cur().Col} }

func (p *Parser) errf(format string, args ...any) error {
	t := p.cur()
	return &ParseError{Msg: fmt.Sprintf(format, args...), Line: t.Line, Col: t.Col}
}

func (p *Parser) isOp(text string) bool {
	return p.cur().Kind == lexer.OP && p.cur().Text == text
}
func (p *Parser) isKeyword(text string) bool {
	return p.cur().Kind == lexer.KEYWORD && p.cur().Text == text
}

func (p *Parser) expectOp(text string) error {
	if !p.isOp(text) {
		return p.errf("expected %q, got %q", text, p.cur().Text)
	}
	p.advance()
	return nil
}

func (p *Parser) expectKeyword(text string) error {
	if !p.isKeyword(text) {
		return p.errf("expected keyword %q, got %q", text, p.cur().Text)
	}
	p.advance()
	return nil
}

func (p *Parser) skipNewlines() {
	for p.cur().Kind == lexer.NEWLINE {
		p.advance()
	}
}

// ---- statements ----

func (p *Parser) parseBlock() ([]ast.Node, error) {
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	if p.cur().Kind == lexer.NEWLINE {
		p.advance()
		if p.cur().Kind != lexer.INDENT {
			return nil, p.errf("expected indented block")
		}
		p.advance()
		var stmts []ast.Node
		p.skipNewlines()
		for p.cur().Kind != lexer.DEDENT && !p.atEOF() {
			s, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, s)
			p.skipNewlines()
		}
		if p.cur().Kind == lexer.DEDENT {
			p.advance()
		}
		return stmts, nil
	}
	// Simple one-liner block: `if x: y = 1`
	s, err := p.parseSimpleStatement()
	if err != nil {
		return nil, err
	}
	return []ast.Node{s}, nil
}

func (p *Parser) parseStatement() (ast.Node, error) {
	t := p.cur()
	if t.Kind == lexer.KEYWORD && unsupportedKeywords[t.Text] {
		return nil, p.errf("unsupported syntax: %q is not part of the supported language subset", t.Text)
	}
	switch {
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("while"):
		return p.parseWhile()
	case p.isKeyword("for"):
		return p.parseFor()
	case p.isKeyword("class"):
		return p.parseClassDef()
	default:
		return p.parseSimpleStatement()
	}
}

func (p *Parser) parseSimpleStatement() (ast.Node, error) {
	pos := p.pos_()
	switch {
	case p.isKeyword("pass"):
		p.advance()
		p.endSimple()
		return ast.Pass{base: ast.At(pos)}, nil
	case p.isKeyword("break"):
		p.advance()
		p.endSimple()
		return ast.Break{base: ast.At(pos)}, nil
	case p.isKeyword("continue"):
		p.advance()
		p.endSimple()
		return ast.Continue{base: ast.At(pos)}, nil
	case p.isKeyword("raise"):
		return p.parseRaise()
	default:
		return p.parseExprOrAssignStatement()
	}
}

func (p *Parser) endSimple() {
	if p.cur().Kind == lexer.NEWLINE {
		p.advance()
	}
}

func (p *Parser) parseRaise() (ast.Node, error) {
	pos := p.pos_()
	p.advance()
	var exc, cause ast.Node
	if p.cur().Kind != lexer.NEWLINE && !p.atEOF() {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exc = e
		if p.isKeyword("from") {
			p.advance()
			c, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			cause = c
		}
	}
	p.endSimple()
	return ast.Raise{base: ast.At(pos), Exc: exc, Cause: cause}, nil
}

func (p *Parser) parseIf() (ast.Node, error) {
	pos := p.pos_()
	p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBody []ast.Node
	if p.isKeyword("elif") {
		// Desugar elif into a nested if inside else.
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		elseBody = []ast.Node{nested}
	} else if p.isKeyword("else") {
		p.advance()
		elseBody, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return ast.If{base: ast.At(pos), Cond: cond, Body: body, Else: elseBody}, nil
}

func (p *Parser) parseWhile() (ast.Node, error) {
	pos := p.pos_()
	p.advance()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBody []ast.Node
	if p.isKeyword("else") {
		p.advance()
		elseBody, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return ast.While{base: ast.At(pos), Cond: cond, Body: body, Else: elseBody}, nil
}

func (p *Parser) parseFor() (ast.Node, error) {
	pos := p.pos_()
	p.advance()
	target, err := p.parseTargetList()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBody []ast.Node
	if p.isKeyword("else") {
		p.advance()
		elseBody, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return ast.For{base: ast.At(pos), Target: target, Iter: iter, Body: body, Else: elseBody}, nil
}

func (p *Parser) parseClassDef() (ast.Node, error) {
	pos := p.pos_()
	p.advance()
	if p.cur().Kind != lexer.NAME {
		return nil, p.errf("expected class name")
	}
	name := p.advance().Text
	var bases []ast.Node
	if p.isOp("(") {
		p.advance()
		for !p.isOp(")") {
			b, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			bases = append(bases, b)
			if p.isOp(",") {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.ClassDef{base: ast.At(pos), Name: name, Bases: bases, Body: body}, nil
}

// parseTargetList parses a for-loop or assignment target, supporting
// tuple/list unpacking: `a, b` or `(a, b)` or `[a, b]`.
func (p *Parser) parseTargetList() (ast.Node, error) {
	pos := p.pos_()
	first, err := p.parseTarget()
	if err != nil {
		return nil, err
	}
	if p.isOp(",") {
		elts := []ast.Node{first}
		for p.isOp(",") {
			p.advance()
			if p.isKeyword("in") || p.isOp("=") || p.isOp(":") {
				break
			}
			t, err := p.parseTarget()
			if err != nil {
				return nil, err
			}
			elts = append(elts, t)
		}
		return ast.TupleExpr{base: ast.At(pos), Elts: elts}, nil
	}
	return first, nil
}

func (p *Parser) parseTarget() (ast.Node, error) {
	if p.isOp("(") || p.isOp("[") {
		closeOp := ")"
		if p.isOp("[") {
			closeOp = "]"
		}
		p.advance()
		var elts []ast.Node
		for !p.isOp(closeOp) {
			t, err := p.parseTarget()
			if err != nil {
				return nil, err
			}
			elts = append(elts, t)
			if p.isOp(",") {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectOp(closeOp); err != nil {
			return nil, err
		}
		return ast.TupleExpr{base: ast.At(p.pos_()), Elts: elts}, nil
	}
	return p.parsePostfix()
}

// parseExprOrAssignStatement handles expression statements, simple/aug/ann
// assignment, and chained multi-assignment (`a = b = expr`).
func (p *Parser) parseExprOrAssignStatement() (ast.Node, error) {
	pos := p.pos_()
	first, err := p.parseTestListAsTarget()
	if err != nil {
		return nil, err
	}

	if p.cur().Kind == lexer.OP {
		switch p.cur().Text {
		case ":":
			p.advance()
			typ, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			var val ast.Node
			if p.isOp("=") {
				p.advance()
				val, err = p.parseExpr()
				if err != nil {
					return nil, err
				}
			}
			p.endSimple()
			return ast.AnnAssign{base: ast.At(pos), Target: first, Type: typ, Value: val}, nil
		case "=":
			targets := []ast.Node{first}
			var value ast.Node
			for p.isOp("=") {
				p.advance()
				v, err := p.parseTestListAsTarget()
				if err != nil {
					return nil, err
				}
				targets = append(targets, v)
			}
			// The last parsed value is the RHS; everything before is a target.
			value, targets = peelTargets(targets)
			p.endSimple()
			return ast.Assign{base: ast.At(pos), Targets: targets, Value: value}, nil
		default:
			if augOp, ok := augAssignOp(p.cur().Text); ok {
				p.advance()
				val, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				p.endSimple()
				return ast.AugAssign{base: ast.At(pos), Target: first, Op: augOp, Value: val}, nil
			}
		}
	}
	p.endSimple()
	return ast.ExprStmt{base: ast.At(pos), X: first}, nil
}

// peelTargets reconstructs (value, targets) from a flattened chain
// collected by repeated `=`.
func peelTargets(chain []ast.Node) (ast.Node, []ast.Node) {
	value := chain[len(chain)-1]
	targets := chain[:len(chain)-1]
	return value, targets
}

func augAssignOp(op string) (string, bool) {
	switch op {
	case "+=":
		return "+", true
	case "-=":
		return "-", true
	case "*=":
		return "*", true
	case "/=":
		return "/", true
	case "//=":
		return "//", true
	case "%=":
		return "%", true
	case "**=":
		return "**", true
	default:
		return "", false
	}
}

// parseTestListAsTarget parses a bare expression or a comma-separated
// tuple (used both as an assignment target and as its RHS).
func (p *Parser) parseTestListAsTarget() (ast.Node, error) {
	pos := p.pos_()
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.isOp(",") {
		elts := []ast.Node{first}
		for p.isOp(",") {
			p.advance()
			if p.cur().Kind == lexer.NEWLINE || p.isOp("=") || p.atEOF() {
				break
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elts = append(elts, e)
		}
		return ast.TupleExpr{base: ast.At(pos), Elts: elts}, nil
	}
	return first, nil
}

// ---- expressions (Pratt-style precedence climbing) ----

var binPrec = map[string]int{
	"or": 1, "and": 2,
	"==": 4, "!=": 4, "<": 4, "<=": 4, ">": 4, ">=": 4, "in": 4, "is": 4,
	"+": 6, "-": 6,
	"*": 7, "/": 7, "//": 7, "%": 7,
	"**": 9,
}

func (p *Parser) parseExpr() (ast.Node, error) {
	return p.parseIfExpOrBinary(0)
}

func (p *Parser) parseIfExpOrBinary(minPrec int) (ast.Node, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	lhs, err = p.parseBinaryRHS(lhs, minPrec)
	if err != nil {
		return nil, err
	}
	if p.isKeyword("if") {
		pos := p.pos_()
		p.advance()
		cond, err := p.parseIfExpOrBinary(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("else"); err != nil {
			return nil, err
		}
		orElse, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.IfExp{base: ast.At(pos), Cond: cond, Body: lhs, OrElse: orElse}, nil
	}
	if p.isOp(":=") {
		name, ok := lhs.(ast.Name)
		if !ok {
			return nil, p.errf("walrus target must be a name")
		}
		pos := p.pos_()
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NamedExpr{base: ast.At(pos), Target: name.Ident, Value: val}, nil
	}
	return lhs, nil
}

func (p *Parser) tokenOpText() (string, bool) {
	t := p.cur()
	if t.Kind == lexer.OP {
		return t.Text, true
	}
	if t.Kind == lexer.KEYWORD && (t.Text == "and" || t.Text == "or" || t.Text == "in" || t.Text == "is" || t.Text == "not") {
		return t.Text, true
	}
	return "", false
}

func (p *Parser) parseBinaryRHS(lhs ast.Node, minPrec int) (ast.Node, error) {
	for {
		opText, ok := p.tokenOpText()
		if !ok {
			return lhs, nil
		}
		// `not in` handling
		notIn := false
		if opText == "not" {
			if p.peekAt(1).Kind == lexer.KEYWORD && p.peekAt(1).Text == "in" {
				notIn = true
				opText = "in"
			} else {
				return lhs, nil
			}
		}
		isOp := opText == "is"
		notIs := false
		prec, known := binPrec[opText]
		if !known {
			return lhs, nil
		}
		if prec < minPrec {
			return lhs, nil
		}
		pos := p.pos_()
		if notIn {
			p.advance()
			p.advance()
		} else {
			p.advance()
			if isOp && p.isKeyword("not") {
				notIs = true
				p.advance()
			}
		}

		if opText == "and" || opText == "or" {
			rhs, err := p.parseIfExpOrBinary(prec + 1)
			if err != nil {
				return nil, err
			}
			lhs = flattenBoolOp(opText, lhs, rhs, pos)
			continue
		}
		if isComparisonOp(opText) {
			comparators := []ast.Node{}
			ops := []string{}
			curOp := opText
			for {
				rhs, err := p.parseIfExpOrBinary(prec + 1)
				if err != nil {
					return nil, err
				}
				op := curOp
				if curOp == "in" && notIn {
					op = "not in"
				}
				if curOp == "is" && notIs {
					op = "is not"
				}
				ops = append(ops, op)
				comparators = append(comparators, rhs)
				nextOpText, ok := p.tokenOpText()
				notIn, notIs = false, false
				if ok && nextOpText == "not" && p.peekAt(1).Text == "in" {
					notIn = true
					nextOpText = "in"
				}
				if !ok || !isComparisonOp(nextOpText) {
					break
				}
				if p2, known := binPrec[nextOpText]; !known || p2 != prec {
					break
				}
				curOp = nextOpText
				if notIn {
					p.advance()
					p.advance()
				} else {
					p.advance()
					if curOp == "is" && p.isKeyword("not") {
						notIs = true
						p.advance()
					}
				}
			}
			lhs = ast.Compare{base: ast.At(pos), Left: lhs, Ops: ops, Comparators: comparators}
			continue
		}
		rhs, err := p.parseIfExpOrBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		lhs = ast.BinOp{base: ast.At(pos), Op: opText, Lhs: lhs, Rhs: rhs}
	}
}

func isComparisonOp(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=", "in", "is":
		return true
	default:
		return false
	}
}

func flattenBoolOp(op string, lhs, rhs ast.Node, pos ast.Pos) ast.Node {
	if b, ok := lhs.(ast.BoolOp); ok && b.Op == op {
		return ast.BoolOp{base: b.base, Op: op, Values: append(b.Values, rhs)}
	}
	return ast.BoolOp{base: ast.At(pos), Op: op, Values: []ast.Node{lhs, rhs}}
}

func (p *Parser) parseUnary() (ast.Node, error) {
	pos := p.pos_()
	if p.isKeyword("not") {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{base: ast.At(pos), Op: "not", Operand: operand}, nil
	}
	if p.isOp("-") || p.isOp("+") || p.isOp("~") {
		op := p.advance().Text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{base: ast.At(pos), Op: op, Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Node, error) {
	expr, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		pos := p.pos_()
		switch {
		case p.isOp("."):
			p.advance()
			if p.cur().Kind != lexer.NAME {
				return nil, p.errf("expected attribute name")
			}
			attr := p.advance().Text
			expr = ast.Attribute{base: ast.At(pos), Recv: expr, Attr: attr}
		case p.isOp("("):
			call, err := p.parseCallArgs(expr, pos)
			if err != nil {
				return nil, err
			}
			expr = call
		case p.isOp("["):
			p.advance()
			sub, err := p.parseSubscriptOrSlice(expr, pos)
			if err != nil {
				return nil, err
			}
			expr = sub
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseCallArgs(fn ast.Node, pos ast.Pos) (ast.Node, error) {
	p.advance() // consume (
	call := ast.Call{base: ast.At(pos), Func: fn, Kwargs: map[string]ast.Node{}}
	for !p.isOp(")") {
		if p.isOp("*") {
			p.advance()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.StarArgs = e
		} else if p.isOp("**") {
			p.advance()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.StarKwargs = e
		} else if p.cur().Kind == lexer.NAME && p.peekAt(1).Kind == lexer.OP && p.peekAt(1).Text == "=" {
			name := p.advance().Text
			p.advance() // =
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Kwargs[name] = e
		} else {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, e)
		}
		if p.isOp(",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parseSubscriptOrSlice(recv ast.Node, pos ast.Pos) (ast.Node, error) {
	var start, stop, step ast.Node
	isSlice := false
	if !p.isOp(":") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		start = e
	}
	if p.isOp(":") {
		isSlice = true
		p.advance()
		if !p.isOp(":") && !p.isOp("]") {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stop = e
		}
		if p.isOp(":") {
			p.advance()
			if !p.isOp("]") {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				step = e
			}
		}
	}
	if err := p.expectOp("]"); err != nil {
		return nil, err
	}
	if isSlice {
		return ast.Slice{base: ast.At(pos), Recv: recv, Start: start, Stop: stop, Step: step}, nil
	}
	return ast.Subscript{base: ast.At(pos), Recv: recv, Index: start}, nil
}

func (p *Parser) parseAtom() (ast.Node, error) {
	pos := p.pos_()
	t := p.cur()
	switch t.Kind {
	case lexer.INT:
		p.advance()
		n, err := strconv.ParseInt(t.Text, 10, 64)
		if err != nil {
			return nil, p.errf("invalid int literal %q", t.Text)
		}
		return ast.IntLit{base: ast.At(pos), Value: n}, nil
	case lexer.FLOAT:
		p.advance()
		f, err := strconv.ParseFloat(t.Text, 64)
		if err != nil {
			return nil, p.errf("invalid float literal %q", t.Text)
		}
		return ast.FloatLit{base: ast.At(pos), Value: f}, nil
	case lexer.STRING:
		p.advance()
		// Adjacent string literal concatenation, Python-style.
		text := t.Text
		for p.cur().Kind == lexer.STRING {
			text += p.advance().Text
		}
		return ast.StrLit{base: ast.At(pos), Value: text}, nil
	case lexer.FSTRING:
		p.advance()
		return p.parseFString(t.Text, pos)
	case lexer.NAME:
		p.advance()
		return ast.Name{base: ast.At(pos), Ident: t.Text}, nil
	case lexer.KEYWORD:
		switch t.Text {
		case "True":
			p.advance()
			return ast.BoolLit{base: ast.At(pos), Value: true}, nil
		case "False":
			p.advance()
			return ast.BoolLit{base: ast.At(pos), Value: false}, nil
		case "None":
			p.advance()
			return ast.NoneLit{base: ast.At(pos)}, nil
		default:
			return nil, p.errf("unexpected keyword %q", t.Text)
		}
	case lexer.OP:
		switch t.Text {
		case "(":
			return p.parseParenExpr()
		case "[":
			return p.parseListOrComprehension()
		case "{":
			return p.parseSetOrDictOrComprehension()
		default:
			return nil, p.errf("unexpected token %q", t.Text)
		}
	default:
		return nil, p.errf("unexpected token")
	}
}

func (p *Parser) parseFString(raw string, pos ast.Pos) (ast.Node, error) {
	var parts []ast.FStringPart
	var lit []rune
	runes := []rune(raw)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '{' {
			if i+1 < len(runes) && runes[i+1] == '{' {
				lit = append(lit, '{')
				i++
				continue
			}
			if len(lit) > 0 {
				parts = append(parts, ast.FStringPart{Text: string(lit)})
				lit = nil
			}
			depth := 1
			start := i + 1
			j := start
			for j < len(runes) && depth > 0 {
				if runes[j] == '{' {
					depth++
				} else if runes[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			exprSrc := string(runes[start:j])
			sub, err := Parse(exprSrc + "\n")
			if err != nil {
				return nil, err
			}
			if len(sub) != 1 {
				return nil, &ParseError{Msg: "invalid f-string expression", Line: pos.Line}
			}
			stmt, ok := sub[0].(ast.ExprStmt)
			if !ok {
				return nil, &ParseError{Msg: "invalid f-string expression", Line: pos.Line}
			}
			parts = append(parts, ast.FStringPart{Expr: stmt.X})
			i = j
			continue
		}
		if r == '}' && i+1 < len(runes) && runes[i+1] == '}' {
			lit = append(lit, '}')
			i++
			continue
		}
		lit = append(lit, r)
	}
	if len(lit) > 0 {
		parts = append(parts, ast.FStringPart{Text: string(lit)})
	}
	return ast.FString{base: ast.At(pos), Parts: parts}, nil
}

func (p *Parser) parseParenExpr() (ast.Node, error) {
	pos := p.pos_()
	p.advance()
	if p.isOp(")") {
		p.advance()
		return ast.TupleExpr{base: ast.At(pos)}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if comp, ok, err := p.maybeParseComprehensionTail("gen", first, nil, nil, pos); ok || err != nil {
		return comp, err
	}
	if p.isOp(",") {
		elts := []ast.Node{first}
		for p.isOp(",") {
			p.advance()
			if p.isOp(")") {
				break
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elts = append(elts, e)
		}
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return ast.TupleExpr{base: ast.At(pos), Elts: elts}, nil
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return first, nil
}

func (p *Parser) parseListOrComprehension() (ast.Node, error) {
	pos := p.pos_()
	p.advance()
	if p.isOp("]") {
		p.advance()
		return ast.ListExpr{base: ast.At(pos)}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if comp, ok, err := p.maybeParseComprehensionTail("list", first, nil, nil, pos); ok || err != nil {
		return comp, err
	}
	elts := []ast.Node{first}
	for p.isOp(",") {
		p.advance()
		if p.isOp("]") {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if err := p.expectOp("]"); err != nil {
		return nil, err
	}
	return ast.ListExpr{base: ast.At(pos), Elts: elts}, nil
}

func (p *Parser) parseSetOrDictOrComprehension() (ast.Node, error) {
	pos := p.pos_()
	p.advance()
	if p.isOp("}") {
		p.advance()
		return ast.DictExpr{base: ast.At(pos)}, nil
	}
	firstKey, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.isOp(":") {
		p.advance()
		firstVal, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if comp, ok, err := p.maybeParseComprehensionTail("dict", nil, firstKey, firstVal, pos); ok || err != nil {
			return comp, err
		}
		keys := []ast.Node{firstKey}
		vals := []ast.Node{firstVal}
		for p.isOp(",") {
			p.advance()
			if p.isOp("}") {
				break
			}
			k, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(":"); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
			vals = append(vals, v)
		}
		if err := p.expectOp("}"); err != nil {
			return nil, err
		}
		return ast.DictExpr{base: ast.At(pos), Keys: keys, Values: vals}, nil
	}
	if comp, ok, err := p.maybeParseComprehensionTail("set", firstKey, nil, nil, pos); ok || err != nil {
		return comp, err
	}
	elts := []ast.Node{firstKey}
	for p.isOp(",") {
		p.advance()
		if p.isOp("}") {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	if err := p.expectOp("}"); err != nil {
		return nil, err
	}
	return ast.SetExpr{base: ast.At(pos), Elts: elts}, nil
}

func (p *Parser) maybeParseComprehensionTail(kind string, elt, key, val ast.Node, pos ast.Pos) (ast.Node, bool, error) {
	if !p.isKeyword("for") {
		return nil, false, nil
	}
	var clauses []ast.CompClause
	for p.isKeyword("for") {
		p.advance()
		target, err := p.parseTargetList()
		if err != nil {
			return nil, true, err
		}
		if err := p.expectKeyword("in"); err != nil {
			return nil, true, err
		}
		// Iterables and filters are parsed without the ternary form, so a
		// following `if` starts a filter instead of a conditional expression.
		iter, err := p.parseUnary()
		if err == nil {
			iter, err = p.parseBinaryRHS(iter, binPrec["or"])
		}
		if err != nil {
			return nil, true, err
		}
		clause := ast.CompClause{Target: target, Iter: iter}
		for p.isKeyword("if") {
			p.advance()
			cond, err := p.parseUnary()
			if err == nil {
				cond, err = p.parseBinaryRHS(cond, binPrec["or"])
			}
			if err != nil {
				return nil, true, err
			}
			clause.Ifs = append(clause.Ifs, cond)
		}
		clauses = append(clauses, clause)
	}
	closeOp := closingFor(kind)
	if err := p.expectOp(closeOp); err != nil {
		return nil, true, err
	}
	return ast.Comprehension{base: ast.At(pos), Kind: kind, Elt: elt, Key: key, Value: val, Clauses: clauses}, true, nil
}

func closingFor(kind string) string {
	switch kind {
	case "list":
		return "]"
	case "gen":
		return ")"
	default:
		return "}"
	}
}
