package main

import (
	"fmt"
	"strings"

	"github.com/jcorbin/light/internal/runeio"
)

// runtimeError is a fatal error carrying the offending token, formatted
// by the evaluator's errorf helper (spec §4.6 "Error reporter"). All
// errors are fatal (spec §7): there is no recovery, so runtimeError is
// the only error type the evaluator ever constructs; it propagates as a
// normal Go error return up the (Value, error) evaluation chain to Run
// (see api.go), which returns it to the caller; main.go prints it.
type runtimeError struct {
	tok     token
	message string

	sourceName string
	source     string
	stackDepth int
}

func (e *runtimeError) Error() string { return e.message }

// Format renders the full diagnostic the teacher's halt path would have
// printed directly: a red "Error:" label, the message, a parenthesized
// context, the offending source line, and a caret line -- spec §4.6.
func (e *runtimeError) Format(f fmt.State, c rune) {
	var sb strings.Builder
	writeRed(&sb, "Error: ")
	sb.WriteString(e.message)
	fmt.Fprintf(&sb, " (%q %s %s:%d:%d depth=%d)\n",
		e.tok.text, e.tok.kind, e.sourceName, e.tok.line, e.tok.col, e.stackDepth)

	line := sourceLine(e.source, e.tok.line)
	runeio.WriteANSIString(&sb, line)
	sb.WriteByte('\n')
	for i := 1; i < e.tok.col; i++ {
		if i-1 < len(line) && line[i-1] == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte('^')

	fmt.Fprint(f, sb.String())
}

func writeRed(sb *strings.Builder, s string) {
	sb.WriteString("\x1b[31m")
	runeio.WriteANSIString(sb, s)
	sb.WriteString("\x1b[0m")
}

func sourceLine(source string, line int) string {
	n := 1
	start := 0
	for i := 0; i < len(source); i++ {
		if n == line {
			start = i
			break
		}
		if source[i] == '\n' {
			n++
		}
	}
	if n != line {
		return ""
	}
	end := strings.IndexByte(source[start:], '\n')
	if end < 0 {
		return source[start:]
	}
	return source[start : start+end]
}
