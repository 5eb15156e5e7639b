// Package compiler implements wisp's single-pass Pratt compiler.
//
// Compile consumes tokens from a lexer.Scanner one at a time and emits
// instructions and constants directly into a bytecode.Chunk — there is no
// intermediate AST. Expression parsing is precedence-driven: each token
// type has a ParseRule naming its prefix parse function (if it can start
// an expression), its infix parse function (if it can continue one), and
// its binding precedence. parsePrecedence consumes a prefix, then loops
// consuming infix operators whose precedence is at least the requested
// floor — the classic Pratt/Vaughan-Pratt algorithm.
//
// A Parser owns the scanner/token state and writes directly into the
// Chunk it was given — there is no separate AST-building pass to lower
// afterward. The rule-table dispatch is grounded directly on compiler.c
// in _examples/original_source.
package compiler

import (
	"fmt"
	"os"
	"strconv"

	"github.com/kristofer/wisp/internal/bytecode"
	"github.com/kristofer/wisp/internal/lexer"
	"github.com/kristofer/wisp/internal/object"
	"github.com/kristofer/wisp/internal/value"
)

// Precedence levels, low to high. Each binary operator's infix rule parses
// its right-hand side at precedence+1, making every binary operator
// left-associative.
type precedence int

const (
	precNone       precedence = iota
	precAssignment            // =
	precOr                    // or
	precAnd                   // and
	precEquality              // == !=
	precComparison            // < > <= >=
	precTerm                  // + -
	precFactor                // * /
	precUnary                 // ! - not
	precCall                  // . ()
	precPrimary
)

type parseFn func(p *Parser)

// parseRule is the (prefix, infix, precedence) triple looked up by token
// type during expression parsing.
type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence precedence
}

// Parser holds all state for one compile: the token stream, the chunk
// being filled, the heap used to intern string constants, and panic-mode
// error recovery state. A Parser is used for exactly one Compile call.
type Parser struct {
	scanner *lexer.Scanner
	heap    *object.Heap
	chunk   *bytecode.Chunk

	current  lexer.Token
	previous lexer.Token

	hadError  bool
	panicMode bool
}

var rules map[lexer.TokenType]parseRule

func init() {
	rules = map[lexer.TokenType]parseRule{
		lexer.TokenLeftParen:    {prefix: (*Parser).grouping, precedence: precNone},
		lexer.TokenMinus:        {prefix: (*Parser).unary, infix: (*Parser).binary, precedence: precTerm},
		lexer.TokenPlus:         {infix: (*Parser).binary, precedence: precTerm},
		lexer.TokenSlash:        {infix: (*Parser).binary, precedence: precFactor},
		lexer.TokenStar:         {infix: (*Parser).binary, precedence: precFactor},
		lexer.TokenBang:         {prefix: (*Parser).unary, precedence: precNone},
		lexer.TokenNot:          {prefix: (*Parser).unary, precedence: precNone},
		lexer.TokenBangEqual:    {infix: (*Parser).binary, precedence: precEquality},
		lexer.TokenEqualEqual:   {infix: (*Parser).binary, precedence: precEquality},
		lexer.TokenGreater:      {infix: (*Parser).binary, precedence: precComparison},
		lexer.TokenGreaterEqual: {infix: (*Parser).binary, precedence: precComparison},
		lexer.TokenLess:         {infix: (*Parser).binary, precedence: precComparison},
		lexer.TokenLessEqual:    {infix: (*Parser).binary, precedence: precComparison},
		lexer.TokenIdentifier:   {prefix: (*Parser).variable, precedence: precNone},
		lexer.TokenString:       {prefix: (*Parser).string, precedence: precNone},
		lexer.TokenNumber:       {prefix: (*Parser).number, precedence: precNone},
		lexer.TokenTrue:         {prefix: (*Parser).literal, precedence: precNone},
		lexer.TokenFalse:        {prefix: (*Parser).literal, precedence: precNone},
		lexer.TokenNone:         {prefix: (*Parser).literal, precedence: precNone},
	}
}

func getRule(t lexer.TokenType) parseRule {
	return rules[t]
}

// Compile compiles source into chunk, interning any string constants via
// heap. It returns false if any compile error was reported, in which case
// chunk's contents are unspecified and must not be executed — matching
// spec.md §4.2's compile contract exactly.
func Compile(source string, heap *object.Heap, chunk *bytecode.Chunk) bool {
	p := &Parser{
		scanner: lexer.New(source),
		heap:    heap,
		chunk:   chunk,
	}

	p.advance()
	for !p.match(lexer.TokenEOF) {
		p.declaration()
	}
	p.endCompiler()

	return !p.hadError
}

// --- token stream plumbing ---

func (p *Parser) advance() {
	p.previous = p.current

	for {
		p.current = p.scanner.Next()
		if p.current.Type != lexer.TokenError {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.current.Type == t
}

func (p *Parser) match(t lexer.TokenType) bool {
	if !p.check(t) {
		return false
	}
	p.advance()
	return true
}

func (p *Parser) consume(t lexer.TokenType, message string) {
	if p.current.Type == t {
		p.advance()
		return
	}
	p.errorAtCurrent(message)
}

// --- error reporting ---

func (p *Parser) errorAt(tok lexer.Token, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	fmt.Fprintf(os.Stderr, "[line %d] Error", tok.Line)
	switch tok.Type {
	case lexer.TokenEOF:
		fmt.Fprint(os.Stderr, " at end")
	case lexer.TokenError:
		// Nothing: the lexeme already is the message.
	default:
		fmt.Fprintf(os.Stderr, " at '%s'", tok.Lexeme)
	}
	fmt.Fprintf(os.Stderr, ": %s\n", message)

	p.hadError = true
}

func (p *Parser) errorAtCurrent(message string) {
	p.errorAt(p.current, message)
}

func (p *Parser) error(message string) {
	p.errorAt(p.previous, message)
}

// synchronize discards tokens until it reaches a likely statement boundary
// — a semicolon just consumed, one of the declaration/statement starting
// keywords, or EOF — so one syntax error doesn't cascade into a wall of
// follow-on diagnostics.
func (p *Parser) synchronize() {
	p.panicMode = false

	for p.current.Type != lexer.TokenEOF {
		if p.previous.Type == lexer.TokenSemicolon {
			return
		}

		switch p.current.Type {
		case lexer.TokenClass, lexer.TokenDef, lexer.TokenIf, lexer.TokenFor,
			lexer.TokenWhile, lexer.TokenPrint, lexer.TokenReturn:
			return
		}

		p.advance()
	}
}

// --- emission ---

func (p *Parser) emitByte(b byte) {
	p.chunk.Write(b, p.previous.Line)
}

func (p *Parser) emitOp(op bytecode.Opcode) {
	p.chunk.WriteOp(op, p.previous.Line)
}

func (p *Parser) emitOps(a, b bytecode.Opcode) {
	p.emitOp(a)
	p.emitOp(b)
}

func (p *Parser) endCompiler() {
	p.emitOp(bytecode.OpReturn)
}

// makeConstant appends value to the chunk's constant pool and returns its
// index as a byte, reporting a compile error if the pool has overflowed
// the 256 entries a single byte operand can index.
func (p *Parser) makeConstant(v value.Value) byte {
	idx := p.chunk.AddConstant(v)
	if idx > 255 {
		p.error("Too many constants for a single chunk.")
		return 0
	}
	return byte(idx)
}

func (p *Parser) emitConstant(v value.Value) {
	p.emitOp(bytecode.OpConstant)
	p.emitByte(p.makeConstant(v))
}

func (p *Parser) identifierConstant(name lexer.Token) byte {
	return p.makeConstant(value.FromObj(p.heap.Intern(name.Lexeme)))
}

// --- declarations & statements ---

func (p *Parser) declaration() {
	if p.match(lexer.TokenVar) {
		p.varDeclaration()
	} else {
		p.statement()
	}

	if p.panicMode {
		p.synchronize()
	}
}

func (p *Parser) parseVariable(message string) byte {
	p.consume(lexer.TokenIdentifier, message)
	return p.identifierConstant(p.previous)
}

func (p *Parser) defineVariable(global byte) {
	p.emitOp(bytecode.OpDefineGlobal)
	p.emitByte(global)
}

func (p *Parser) varDeclaration() {
	global := p.parseVariable("Expect variable name.")

	if p.match(lexer.TokenEqual) {
		p.expression()
	} else {
		p.emitOp(bytecode.OpNone)
	}

	p.consume(lexer.TokenSemicolon, "Expect ';' after variable declaration.")
	p.defineVariable(global)
}

func (p *Parser) statement() {
	if p.match(lexer.TokenPrint) {
		p.printStatement()
	} else {
		p.expressionStatement()
	}
}

func (p *Parser) printStatement() {
	p.expression()
	p.consume(lexer.TokenSemicolon, "Expect ';' after value.")
	p.emitOp(bytecode.OpPrint)
}

func (p *Parser) expressionStatement() {
	p.expression()
	p.consume(lexer.TokenSemicolon, "Expect ';' after expression.")
	p.emitOp(bytecode.OpPop)
}

// --- expressions ---

func (p *Parser) expression() {
	p.parsePrecedence(precAssignment)
}

func (p *Parser) parsePrecedence(prec precedence) {
	p.advance()
	rule := getRule(p.previous.Type)
	if rule.prefix == nil {
		p.error("Expect expression.")
		return
	}
	rule.prefix(p)

	for prec <= getRule(p.current.Type).precedence {
		p.advance()
		infix := getRule(p.previous.Type).infix
		infix(p)
	}
}

func (p *Parser) grouping() {
	p.expression()
	p.consume(lexer.TokenRightParen, "Expect ')' after expression.")
}

func (p *Parser) number() {
	n, _ := strconv.ParseFloat(p.previous.Lexeme, 64)
	p.emitConstant(value.Number(n))
}

func (p *Parser) string() {
	// Trim the surrounding quotes.
	raw := p.previous.Lexeme
	str := p.heap.Intern(raw[1 : len(raw)-1])
	p.emitConstant(value.FromObj(str))
}

func (p *Parser) literal() {
	switch p.previous.Type {
	case lexer.TokenNone:
		p.emitOp(bytecode.OpNone)
	case lexer.TokenTrue:
		p.emitOp(bytecode.OpTrue)
	case lexer.TokenFalse:
		p.emitOp(bytecode.OpFalse)
	}
}

func (p *Parser) namedVariable(name lexer.Token) {
	arg := p.identifierConstant(name)
	p.emitOp(bytecode.OpGetGlobal)
	p.emitByte(arg)
}

func (p *Parser) variable() {
	p.namedVariable(p.previous)
}

func (p *Parser) unary() {
	opType := p.previous.Type

	p.parsePrecedence(precUnary)

	switch opType {
	case lexer.TokenNot, lexer.TokenBang:
		p.emitOp(bytecode.OpNot)
	case lexer.TokenMinus:
		p.emitOp(bytecode.OpNegate)
	}
}

func (p *Parser) binary() {
	opType := p.previous.Type
	rule := getRule(opType)
	p.parsePrecedence(rule.precedence + 1)

	switch opType {
	case lexer.TokenBangEqual:
		p.emitOps(bytecode.OpEqual, bytecode.OpNot)
	case lexer.TokenEqualEqual:
		p.emitOp(bytecode.OpEqual)
	case lexer.TokenGreater:
		p.emitOp(bytecode.OpGreater)
	case lexer.TokenGreaterEqual:
		p.emitOps(bytecode.OpLess, bytecode.OpNot)
	case lexer.TokenLess:
		p.emitOp(bytecode.OpLess)
	case lexer.TokenLessEqual:
		p.emitOps(bytecode.OpGreater, bytecode.OpNot)
	case lexer.TokenPlus:
		p.emitOp(bytecode.OpAdd)
	case lexer.TokenMinus:
		p.emitOp(bytecode.OpSubtract)
	case lexer.TokenStar:
		p.emitOp(bytecode.OpMultiply)
	case lexer.TokenSlash:
		p.emitOp(bytecode.OpDivide)
	}
}
