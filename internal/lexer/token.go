package lexer

import "sexpc/internal/diag"

type Kind int

const (
	TokenEOF Kind = iota
	TokenBad

	TokenLParen // ( or [
	TokenRParen // ) or ]

	TokenNumber
	TokenFractional
	TokenString
	TokenSymbol
)

type Token struct {
	Kind   Kind
	Lexeme string
	Span   diag.Span
}
