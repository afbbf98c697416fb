package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Token represents a lexical token
type Token struct {
	Kind  TokenKind
	Value string
	Lit   any // decoded literal for TokString and TokNumber
	Pos   int
}

// TokenKind is the type of token
type TokenKind int

const (
	TokIdent TokenKind = iota
	TokString
	TokNumber
	TokAnd
	TokOr
	TokNot
	TokLParen
	TokRParen
	TokLBracket
	TokRBracket
	TokComma
	TokDot
	TokEq
	TokNe
	TokGt
	TokGte
	TokLt
	TokLte
	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokPercent
	TokEOF
)

var tokenNames = [...]string{
	TokIdent:    "Ident",
	TokString:   "String",
	TokNumber:   "Number",
	TokAnd:      "And",
	TokOr:       "Or",
	TokNot:      "Not",
	TokLParen:   "LParen",
	TokRParen:   "RParen",
	TokLBracket: "LBracket",
	TokRBracket: "RBracket",
	TokComma:    "Comma",
	TokDot:      "Dot",
	TokEq:       "Eq",
	TokNe:       "Ne",
	TokGt:       "Gt",
	TokGte:      "Gte",
	TokLt:       "Lt",
	TokLte:      "Lte",
	TokPlus:     "Plus",
	TokMinus:    "Minus",
	TokStar:     "Star",
	TokSlash:    "Slash",
	TokPercent:  "Percent",
	TokEOF:      "EOF",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "Unknown"
}

// SyntaxError reports malformed predicate source
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

func syntaxErrorf(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// pairs are the two-rune operators, matched before punct
var pairs = map[[2]rune]TokenKind{
	{'&', '&'}: TokAnd,
	{'|', '|'}: TokOr,
	{'=', '='}: TokEq,
	{'!', '='}: TokNe,
	{'>', '='}: TokGte,
	{'<', '='}: TokLte,
}

var punct = map[rune]TokenKind{
	'!': TokNot,
	'(': TokLParen,
	')': TokRParen,
	'[': TokLBracket,
	']': TokRBracket,
	',': TokComma,
	'.': TokDot,
	'>': TokGt,
	'<': TokLt,
	'+': TokPlus,
	'-': TokMinus,
	'*': TokStar,
	'/': TokSlash,
	'%': TokPercent,
}

// Lexer tokenizes predicate source
type Lexer struct {
	input []rune
	pos   int
}

// NewLexer creates a new lexer for the input string
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: []rune(input),
		pos:   0,
	}
}

// Lex tokenizes the entire input
func Lex(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok, err := lexer.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}

	return tokens, nil
}

// Next returns the next token
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Kind: TokEOF, Pos: start}, nil
	}

	ch := l.input[l.pos]

	if kind, ok := pairs[[2]rune{ch, l.peek(1)}]; ok {
		l.pos += 2
		return Token{Kind: kind, Pos: start}, nil
	}
	if kind, ok := punct[ch]; ok {
		l.pos++
		return Token{Kind: kind, Pos: start}, nil
	}

	if ch == '"' || ch == '\'' {
		return l.scanString(ch)
	}

	if unicode.IsDigit(ch) {
		return l.scanNumber()
	}

	if isIdentStart(ch) {
		return l.scanIdent()
	}

	return Token{}, syntaxErrorf(start, "unexpected character %q", ch)
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) peek(offset int) rune {
	pos := l.pos + offset
	if pos < len(l.input) {
		return l.input[pos]
	}
	return 0
}

func (l *Lexer) scanString(quote rune) (Token, error) {
	start := l.pos
	l.pos++ // consume opening quote
	var sb strings.Builder

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == quote {
			l.pos++ // consume closing quote
			s := sb.String()
			return Token{Kind: TokString, Value: s, Lit: s, Pos: start}, nil
		}
		if ch == '\\' && l.pos+1 < len(l.input) {
			l.pos++
			switch l.input[l.pos] {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			default:
				sb.WriteRune(l.input[l.pos])
			}
			l.pos++
			continue
		}
		sb.WriteRune(ch)
		l.pos++
	}

	return Token{}, syntaxErrorf(start, "unterminated string")
}

func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos
	isFloat := false

	for l.pos < len(l.input) && unicode.IsDigit(l.input[l.pos]) {
		l.pos++
	}

	// Decimal part; a dot not followed by a digit is member access
	if l.pos < len(l.input) && l.input[l.pos] == '.' && unicode.IsDigit(l.peek(1)) {
		isFloat = true
		l.pos++
		for l.pos < len(l.input) && unicode.IsDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	numStr := string(l.input[start:l.pos])
	if isFloat {
		f, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return Token{}, syntaxErrorf(start, "invalid number %s", numStr)
		}
		return Token{Kind: TokNumber, Value: numStr, Lit: f, Pos: start}, nil
	}
	n, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return Token{}, syntaxErrorf(start, "invalid number %s", numStr)
	}
	return Token{Kind: TokNumber, Value: numStr, Lit: n, Pos: start}, nil
}

func (l *Lexer) scanIdent() (Token, error) {
	start := l.pos

	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}

	value := string(l.input[start:l.pos])

	// Word forms of the logical operators
	switch strings.ToUpper(value) {
	case "AND":
		return Token{Kind: TokAnd, Pos: start}, nil
	case "OR":
		return Token{Kind: TokOr, Pos: start}, nil
	case "NOT":
		return Token{Kind: TokNot, Pos: start}, nil
	}

	return Token{Kind: TokIdent, Value: value, Pos: start}, nil
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}
