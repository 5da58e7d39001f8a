package main

import (
	"fmt"
	"io"

	"github.com/jcorbin/light/internal/flushio"
)

// Interp is the interpreter context threaded through every evaluator
// entry point (spec §9 Design Notes: "package these into an Interpreter
// context value ... this also makes the interpreter reentrant"). It owns
// the token array, the symbol table, the frame stack, the function
// registry used by the cache-eligibility scan, and the output sink.
//
// A single mutable cursor (pos) into toks drives the whole evaluation:
// there is no separate AST, matching spec §1's "single-pass parse/
// evaluate loop."
type Interp struct {
	toks []token
	pos  int

	syms  *symbolTable
	stack *callStack
	sp    stringPool

	funcsBySym  map[uint32]*Function
	activeCalls []*callRecord

	out      flushio.WriteFlusher
	testMode bool

	sourceName string
	source     string

	logf func(format string, args ...interface{})
}

func (ev *Interp) cur() token  { return ev.toks[ev.pos] }
func (ev *Interp) peek() token { return ev.toks[ev.pos] }

func (ev *Interp) advance() token {
	t := ev.toks[ev.pos]
	if ev.pos < len(ev.toks)-1 {
		ev.pos++
	}
	return t
}

// expect consumes the current token unconditionally; callers use it only
// once they have already verified (via a switch on cur().kind) that it
// is the expected kind.
func (ev *Interp) expect(k tokKind) token { return ev.advance() }

func (ev *Interp) expectTok(k tokKind) error {
	if ev.cur().kind != k {
		return ev.errorf(ev.cur(), "expected %v, got %v %q", k, ev.cur().kind, ev.cur().text)
	}
	ev.advance()
	return nil
}

func (ev *Interp) errorf(tok token, format string, args ...interface{}) error {
	return &runtimeError{
		tok:        tok,
		message:    fmt.Sprintf(format, args...),
		sourceName: ev.sourceName,
		source:     ev.source,
		stackDepth: ev.stack.depth(),
	}
}

func (ev *Interp) skipSemis() {
	for ev.cur().kind == tokSemi {
		ev.advance()
	}
}

// evalBlock evaluates a `{ ... }` block, returning the value of its last
// statement (Undefined if empty). The current token must be '{'.
func (ev *Interp) evalBlock() (Value, error) {
	ev.advance() // '{'
	var last Value
	for {
		ev.skipSemis()
		switch ev.cur().kind {
		case tokRBrace:
			ev.advance()
			return last, nil
		case tokEOF:
			return Value{}, ev.errorf(ev.cur(), "expected '}'")
		}
		v, err := ev.evalStatement()
		if err != nil {
			return Value{}, err
		}
		last = v
	}
}

// evalBlockOrExpr evaluates a function body starting at tok index start,
// which is either a `{ ... }` block or a brace-less single-expression
// body terminated by `;` (spec §4.4 step 4).
func (ev *Interp) evalBlockOrExpr(start int) (Value, error) {
	ev.pos = start
	if ev.cur().kind == tokLBrace {
		return ev.evalBlock()
	}
	v, err := ev.evalExpression(false)
	if err != nil {
		return Value{}, err
	}
	if ev.cur().kind == tokSemi {
		ev.advance()
	}
	return v, nil
}

// scanBlockEnd returns the token index one past the `}` matching the `{`
// at index start, by simple brace counting -- no evaluation happens, so
// this is safe to use to skip an un-taken branch (spec §4.3 "if": "skips
// the then-block (scanning balanced {…})").
func (ev *Interp) scanBlockEnd(start int) int {
	depth := 0
	i := start
	for i < len(ev.toks) {
		switch ev.toks[i].kind {
		case tokLBrace:
			depth++
		case tokRBrace:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return i
}

// evalStatement dispatches on the current token (spec §4.3
// "eval_statement"): let, fn, print, if, tuples/grouped expressions,
// blocks, bare expressions, `;`, and the secret cowsay statement.
func (ev *Interp) evalStatement() (Value, error) {
	switch ev.cur().kind {
	case tokLet:
		return ev.evalLet()
	case tokLBrace:
		return ev.evalBlock()
	case tokSemi:
		ev.advance()
		return Undefined(), nil
	default:
		v, err := ev.evalExpression(false)
		if err != nil {
			return Value{}, err
		}
		if ev.cur().kind == tokSemi {
			ev.advance()
		}
		return v, nil
	}
}

// evalLet implements `let NAME = EXPR` (spec §4.3 "let"). `let _ = EXPR`
// still evaluates EXPR for its side effects and discards the result
// (spec §9 Open Question, resolved in SPEC_FULL.md §10). `let NAME = fn
// (...) => BODY` routes through the closure machinery so the bound name
// is known to the cache-eligibility scan for self-recursive calls.
func (ev *Interp) evalLet() (Value, error) {
	ev.advance() // 'let'
	nameTok := ev.cur()
	if nameTok.kind != tokIdentifier {
		return Value{}, ev.errorf(nameTok, "expected identifier after let")
	}
	ev.advance()
	wildcard := nameTok.text == "_"

	if err := ev.expectTok(tokAssign); err != nil {
		return Value{}, err
	}

	var val Value
	if ev.cur().kind == tokFn {
		fn, err := ev.defineClosure(nameTok.sym)
		if err != nil {
			return Value{}, err
		}
		val = Closure(fn)
		if !wildcard {
			ev.funcsBySym[nameTok.sym] = fn
		}
	} else {
		v, err := ev.evalExpression(false)
		if err != nil {
			return Value{}, err
		}
		val = v
	}

	if !wildcard {
		ev.stack.define(nameTok.sym, val)
	}
	return val, nil
}

// --- expression precedence ladder (spec §4.3) ---
//
// Every level takes a `skip` flag: when true, the expression is parsed
// structurally (so the cursor still advances correctly) but no side
// effect is performed and no value is produced -- this is how `&&` and
// `||` implement short-circuit evaluation (spec §5, §8) without ever
// materializing a separate AST to walk twice: the right operand's tokens
// still have to be consumed, just not evaluated.

func (ev *Interp) evalExpression(skip bool) (Value, error) {
	return ev.evalAssignment(skip)
}

func (ev *Interp) evalAssignment(skip bool) (Value, error) {
	if ev.cur().kind == tokIdentifier && ev.toks[ev.pos+1].kind == tokAssign {
		nameTok := ev.advance()
		ev.advance() // '='
		val, err := ev.evalAssignment(skip)
		if err != nil {
			return Value{}, err
		}
		if skip {
			return Value{}, nil
		}
		if !ev.stack.assign(nameTok.sym, val) {
			return Value{}, ev.errorf(nameTok, "undefined identifier %q", nameTok.text)
		}
		return val, nil
	}
	return ev.evalOr(skip)
}

func (ev *Interp) evalOr(skip bool) (Value, error) {
	left, err := ev.evalAnd(skip)
	if err != nil {
		return Value{}, err
	}
	for ev.cur().kind == tokOr {
		opTok := ev.advance()
		if skip {
			if _, err := ev.evalAnd(true); err != nil {
				return Value{}, err
			}
			continue
		}
		if !left.IsBoolean() {
			return Value{}, ev.errorf(opTok, "left operand of || must be boolean")
		}
		if left.Bool() {
			if _, err := ev.evalAnd(true); err != nil { // short-circuit: parse only
				return Value{}, err
			}
			continue
		}
		right, err := ev.evalAnd(false)
		if err != nil {
			return Value{}, err
		}
		if !right.IsBoolean() {
			return Value{}, ev.errorf(opTok, "right operand of || must be boolean")
		}
		left = right
	}
	return left, nil
}

func (ev *Interp) evalAnd(skip bool) (Value, error) {
	left, err := ev.evalComparison(skip)
	if err != nil {
		return Value{}, err
	}
	for ev.cur().kind == tokAnd {
		opTok := ev.advance()
		if skip {
			if _, err := ev.evalComparison(true); err != nil {
				return Value{}, err
			}
			continue
		}
		if !left.IsBoolean() {
			return Value{}, ev.errorf(opTok, "left operand of && must be boolean")
		}
		if !left.Bool() {
			if _, err := ev.evalComparison(true); err != nil { // short-circuit: parse only
				return Value{}, err
			}
			continue
		}
		right, err := ev.evalComparison(false)
		if err != nil {
			return Value{}, err
		}
		if !right.IsBoolean() {
			return Value{}, ev.errorf(opTok, "right operand of && must be boolean")
		}
		left = right
	}
	return left, nil
}

func (ev *Interp) evalComparison(skip bool) (Value, error) {
	left, err := ev.evalAdditive(skip)
	if err != nil {
		return Value{}, err
	}
	for {
		switch ev.cur().kind {
		case tokEq, tokNotEq, tokLt, tokLtEq, tokGt, tokGtEq:
			opTok := ev.advance()
			right, err := ev.evalAdditive(skip)
			if err != nil {
				return Value{}, err
			}
			if skip {
				continue
			}
			v, err := ev.compare(opTok, left, right)
			if err != nil {
				return Value{}, err
			}
			left = v
		default:
			return left, nil
		}
	}
}

func (ev *Interp) compare(opTok token, a, b Value) (Value, error) {
	switch opTok.kind {
	case tokEq, tokNotEq:
		if a.Kind() != b.Kind() {
			return Value{}, ev.errorf(opTok, "cannot compare %v to %v", a.Kind(), b.Kind())
		}
		eq := a.equal(b)
		if opTok.kind == tokNotEq {
			eq = !eq
		}
		return Boolean(eq), nil
	case tokLt, tokLtEq, tokGt, tokGtEq:
		if !a.IsInteger() || !b.IsInteger() {
			return Value{}, ev.errorf(opTok, "comparison %v requires integer operands", opTok.kind)
		}
		var result bool
		switch opTok.kind {
		case tokLt:
			result = a.Int() < b.Int()
		case tokLtEq:
			result = a.Int() <= b.Int()
		case tokGt:
			result = a.Int() > b.Int()
		case tokGtEq:
			result = a.Int() >= b.Int()
		}
		return Boolean(result), nil
	}
	return Value{}, ev.errorf(opTok, "unknown comparison operator")
}

func (ev *Interp) evalAdditive(skip bool) (Value, error) {
	left, err := ev.evalMultiplicative(skip)
	if err != nil {
		return Value{}, err
	}
	for ev.cur().kind == tokPlus || ev.cur().kind == tokMinus {
		opTok := ev.advance()
		right, err := ev.evalMultiplicative(skip)
		if err != nil {
			return Value{}, err
		}
		if skip {
			continue
		}
		v, err := ev.additive(opTok, left, right)
		if err != nil {
			return Value{}, err
		}
		left = v
	}
	return left, nil
}

// additive implements spec §4.3's typing rules for `+`/`-`: `+` on two
// integers adds; `+` where at least one side is non-integer concatenates
// the textual form of both operands. `-` is integer-only.
func (ev *Interp) additive(opTok token, a, b Value) (Value, error) {
	if opTok.kind == tokMinus {
		if !a.IsInteger() || !b.IsInteger() {
			return Value{}, ev.errorf(opTok, "'-' requires integer operands")
		}
		return Integer(a.Int() - b.Int()), nil
	}
	if a.IsInteger() && b.IsInteger() {
		return Integer(a.Int() + b.Int()), nil
	}
	if a.IsTuple() || b.IsTuple() {
		return Value{}, ev.errorf(opTok, "'+' does not support tuple operands")
	}
	return String(ev.sp.concat(a.text(), b.text())), nil
}

func (ev *Interp) evalMultiplicative(skip bool) (Value, error) {
	left, err := ev.evalPrimary(skip)
	if err != nil {
		return Value{}, err
	}
	for {
		switch ev.cur().kind {
		case tokStar, tokSlash, tokPercent:
			opTok := ev.advance()
			right, err := ev.evalPrimary(skip)
			if err != nil {
				return Value{}, err
			}
			if skip {
				continue
			}
			v, err := ev.multiplicative(opTok, left, right)
			if err != nil {
				return Value{}, err
			}
			left = v
		default:
			return left, nil
		}
	}
}

func (ev *Interp) multiplicative(opTok token, a, b Value) (Value, error) {
	if !a.IsInteger() || !b.IsInteger() {
		return Value{}, ev.errorf(opTok, "%v requires integer operands", opTok.kind)
	}
	switch opTok.kind {
	case tokStar:
		return Integer(a.Int() * b.Int()), nil
	case tokSlash:
		if b.Int() == 0 {
			return Value{}, ev.errorf(opTok, "division by zero")
		}
		return Integer(a.Int() / b.Int()), nil
	case tokPercent:
		if b.Int() == 0 {
			return Value{}, ev.errorf(opTok, "modulo by zero")
		}
		return Integer(a.Int() % b.Int()), nil
	}
	return Value{}, ev.errorf(opTok, "unknown operator")
}

// evalPrimary parses and (unless skip) evaluates the tightest-binding
// forms (spec §4.3 "Primary forms").
func (ev *Interp) evalPrimary(skip bool) (Value, error) {
	tok := ev.cur()
	switch tok.kind {
	case tokIdentifier:
		ev.advance()
		if ev.cur().kind == tokLParen {
			return ev.evalCall(tok, skip)
		}
		if skip {
			return Value{}, nil
		}
		v, ok := ev.stack.lookup(tok.sym)
		if !ok {
			return Value{}, ev.errorf(tok, "undefined identifier %q", tok.text)
		}
		return v, nil

	case tokNumber:
		ev.advance()
		return Integer(tok.litInt), nil

	case tokString:
		ev.advance()
		return String(tok.litStr), nil

	case tokTrue:
		ev.advance()
		return Boolean(true), nil

	case tokFalse:
		ev.advance()
		return Boolean(false), nil

	case tokFn:
		fn, err := ev.defineClosure(0)
		if err != nil {
			return Value{}, err
		}
		return Closure(fn), nil

	case tokFirst:
		return ev.evalTupleAccessor(tok, skip, Value.First)

	case tokSecond:
		return ev.evalTupleAccessor(tok, skip, Value.Second)

	case tokPrint:
		return ev.evalPrint(tok, skip, false)

	case tokCowsay:
		return ev.evalPrint(tok, skip, true)

	case tokIf:
		return ev.evalIf(skip)

	case tokLParen:
		return ev.evalParenOrTuple(skip)
	}

	return Value{}, ev.errorf(tok, "unexpected token %q", tok.text)
}

func (ev *Interp) evalCall(nameTok token, skip bool) (Value, error) {
	ev.advance() // '('
	var args []Value
	if ev.cur().kind != tokRParen {
		for {
			v, err := ev.evalExpression(skip)
			if err != nil {
				return Value{}, err
			}
			args = append(args, v)
			if ev.cur().kind == tokComma {
				ev.advance()
				continue
			}
			break
		}
	}
	if err := ev.expectTok(tokRParen); err != nil {
		return Value{}, err
	}
	if skip {
		return Value{}, nil
	}

	callee, ok := ev.stack.lookup(nameTok.sym)
	if !ok {
		return Value{}, ev.errorf(nameTok, "undefined identifier %q", nameTok.text)
	}
	if !callee.IsClosure() {
		return Value{}, ev.errorf(nameTok, "%q is not callable", nameTok.text)
	}
	return ev.callClosure(callee.Func(), args, nameTok)
}

func (ev *Interp) evalTupleAccessor(tok token, skip bool, access func(Value) Value) (Value, error) {
	ev.advance() // 'first'/'second'
	if err := ev.expectTok(tokLParen); err != nil {
		return Value{}, err
	}
	v, err := ev.evalExpression(skip)
	if err != nil {
		return Value{}, err
	}
	if err := ev.expectTok(tokRParen); err != nil {
		return Value{}, err
	}
	if skip {
		return Value{}, nil
	}
	if !v.IsTuple() {
		return Value{}, ev.errorf(tok, "%v requires a tuple argument", tok.kind)
	}
	return access(v), nil
}

func (ev *Interp) evalPrint(tok token, skip bool, cow bool) (Value, error) {
	ev.advance() // 'print'/'cowsay'
	if err := ev.expectTok(tokLParen); err != nil {
		return Value{}, err
	}
	v, err := ev.evalExpression(skip)
	if err != nil {
		return Value{}, err
	}
	if err := ev.expectTok(tokRParen); err != nil {
		return Value{}, err
	}
	if skip {
		return Value{}, nil
	}

	ev.notePrint()
	if !ev.testMode {
		if cow {
			writeCowsay(ev.out, v.text())
		} else {
			io.WriteString(ev.out, v.text())
			io.WriteString(ev.out, "\n")
		}
	}
	return v, nil
}

func (ev *Interp) evalParenOrTuple(skip bool) (Value, error) {
	ev.advance() // '('
	first, err := ev.evalExpression(skip)
	if err != nil {
		return Value{}, err
	}
	if ev.cur().kind == tokComma {
		ev.advance()
		second, err := ev.evalExpression(skip)
		if err != nil {
			return Value{}, err
		}
		if err := ev.expectTok(tokRParen); err != nil {
			return Value{}, err
		}
		if skip {
			return Value{}, nil
		}
		return Tuple(first, second), nil
	}
	if err := ev.expectTok(tokRParen); err != nil {
		return Value{}, err
	}
	return first, nil
}

// evalIf implements spec §4.3 "if", including the fast-path jump cache:
// the first time a given `if` token executes, the end of its then-block
// and (if present) else-block are recorded on the token itself, so later
// executions of the same `if` (e.g. inside a recursive function) skip
// straight past the un-taken branch without re-scanning it.
func (ev *Interp) evalIf(skip bool) (Value, error) {
	ifIdx := ev.pos
	ev.advance() // 'if'
	if err := ev.expectTok(tokLParen); err != nil {
		return Value{}, err
	}
	cond, err := ev.evalExpression(skip)
	if err != nil {
		return Value{}, err
	}
	if err := ev.expectTok(tokRParen); err != nil {
		return Value{}, err
	}

	thenStart := ev.pos
	if ev.toks[thenStart].kind != tokLBrace {
		return Value{}, ev.errorf(ev.toks[thenStart], "expected '{' to start if-block")
	}

	var thenEnd, elseEnd int
	hasElse := false
	if ev.toks[ifIdx].cached {
		thenEnd = ev.toks[ifIdx].thenEnd
		elseEnd = ev.toks[ifIdx].elseEnd
		hasElse = elseEnd > thenEnd
	} else {
		thenEnd = ev.scanBlockEnd(thenStart)
		elseEnd = thenEnd
		if thenEnd < len(ev.toks) && ev.toks[thenEnd].kind == tokElse {
			hasElse = true
			elseBodyStart := thenEnd + 1
			if elseBodyStart >= len(ev.toks) || ev.toks[elseBodyStart].kind != tokLBrace {
				return Value{}, ev.errorf(ev.toks[thenEnd], "expected '{' to start else-block")
			}
			elseEnd = ev.scanBlockEnd(elseBodyStart)
		}
		ev.toks[ifIdx].thenEnd = thenEnd
		ev.toks[ifIdx].elseEnd = elseEnd
		ev.toks[ifIdx].cached = true
	}

	if skip {
		ev.pos = elseEnd
		return Value{}, nil
	}

	if !cond.IsBoolean() {
		return Value{}, ev.errorf(ev.toks[ifIdx], "if condition must be boolean")
	}

	if cond.Bool() {
		ev.pos = thenStart
		v, err := ev.evalBlock()
		if err != nil {
			return Value{}, err
		}
		ev.pos = elseEnd
		return v, nil
	}

	if hasElse {
		ev.pos = thenEnd + 1 // past 'else'
		v, err := ev.evalBlock()
		if err != nil {
			return Value{}, err
		}
		ev.pos = elseEnd
		return v, nil
	}

	ev.pos = elseEnd
	return Undefined(), nil
}
