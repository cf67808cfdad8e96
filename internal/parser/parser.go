// Package parser turns lexer tokens into the S-expression AST of
// internal/ast. A non-empty list's first child determines the construct's
// head when it is a Symbol; everything else is left for the codegen
// dispatcher in internal/codegen to interpret.
package parser

import (
	"strconv"

	"sexpc/internal/ast"
	"sexpc/internal/diag"
	"sexpc/internal/lexer"
)

type Parser struct {
	file  *diag.File
	toks  []lexer.Token
	pos   int
	diags *diag.Bag
}

// Parse lexes and parses a single top-level form. Most programs are a
// sequence of top-level forms, so ParseProgram (which wraps them implicitly)
// is the usual entry point; Parse is exposed for callers that already know
// they have exactly one form (e.g. tests).
func Parse(file *diag.File) (ast.Node, *diag.Bag) {
	toks := lexer.Lex(file)
	p := &Parser{file: file, toks: toks, diags: &diag.Bag{}}
	n := p.parseForm()
	return n, p.diags
}

// ParseProgram parses every top-level form in the file and returns them as
// the children of a synthetic outer list, mirroring how internal/codegen's
// module emitter wraps the program in an implicit (scope ...).
func ParseProgram(file *diag.File) (*ast.List, *diag.Bag) {
	toks := lexer.Lex(file)
	p := &Parser{file: file, toks: toks, diags: &diag.Bag{}}
	start := p.peek().Span
	var items []ast.Node
	for !p.at(lexer.TokenEOF) {
		items = append(items, p.parseForm())
	}
	end := p.prev().Span
	span := start
	if len(items) > 0 {
		span = joinSpan(items[0].Span(), end)
	}
	return &ast.List{Items: items, S: span}, p.diags
}

func (p *Parser) parseForm() ast.Node {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenLParen:
		return p.parseList()
	case lexer.TokenNumber:
		p.advance()
		n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.errorAt(tok.Span, "malformed integer literal: "+tok.Lexeme)
		}
		return &ast.Number{Value: n, S: tok.Span}
	case lexer.TokenFractional:
		p.advance()
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.errorAt(tok.Span, "malformed fractional literal: "+tok.Lexeme)
		}
		return &ast.Fractional{Value: f, S: tok.Span}
	case lexer.TokenString:
		p.advance()
		return &ast.String{Raw: tok.Lexeme, S: tok.Span}
	case lexer.TokenSymbol:
		p.advance()
		return &ast.Symbol{Name: tok.Lexeme, S: tok.Span}
	case lexer.TokenRParen:
		p.errorAt(tok.Span, "unexpected closing bracket")
		p.advance()
		return &ast.List{S: tok.Span}
	default:
		p.errorAt(tok.Span, "expected an expression")
		p.advance()
		return &ast.List{S: tok.Span}
	}
}

func (p *Parser) parseList() *ast.List {
	open := p.advance() // '(' or '['
	var items []ast.Node
	for !p.at(lexer.TokenRParen) && !p.at(lexer.TokenEOF) {
		items = append(items, p.parseForm())
	}
	close := p.expect(lexer.TokenRParen, "expected closing `)` or `]`")
	return &ast.List{Items: items, S: joinSpan(open.Span, close.Span)}
}

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) prev() lexer.Token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *Parser) at(k lexer.Kind) bool { return p.peek().Kind == k }

func (p *Parser) advance() lexer.Token {
	t := p.peek()
	if t.Kind != lexer.TokenEOF {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k lexer.Kind, msg string) lexer.Token {
	if p.at(k) {
		return p.advance()
	}
	p.errorAt(p.peek().Span, msg)
	return p.peek()
}

func (p *Parser) errorAt(s diag.Span, msg string) {
	p.diags.AddAt(s.Loc(), msg)
}

func joinSpan(a, b diag.Span) diag.Span {
	if a.File == nil {
		return b
	}
	if b.File == nil {
		return a
	}
	start := a.Start
	if b.Start < start {
		start = b.Start
	}
	end := a.End
	if b.End > end {
		end = b.End
	}
	return diag.Span{File: a.File, Start: start, End: end}
}
