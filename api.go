package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/jcorbin/light/internal/flushio"
	"github.com/jcorbin/light/internal/panicerr"
)

// New builds an Interp from the given options (spec §9 "Design notes":
// "package these into an Interpreter context value"), following the
// teacher's functional-options construction in the original api.go.
func New(opts ...InterpOption) *Interp {
	ev := &Interp{
		syms:       newSymbolTable(),
		funcsBySym: make(map[uint32]*Function),
	}
	defaultOptions.apply(ev)
	InterpOptions(opts...).apply(ev)
	return ev
}

// Run lexes and evaluates source under the given name, returning the
// last evaluated value and any fatal error (spec §6 "External
// interfaces": the embedding contract). Any unexpected Go-level panic
// (not a runtimeError -- those are returned as ordinary errors from the
// evaluation chain) is recovered into an error here rather than
// crashing the host process, mirroring the teacher's panicerr.Recover
// use at its own VM.Run boundary.
func (ev *Interp) Run(ctx context.Context, sourceName, source string) (Value, error) {
	var result Value
	err := panicerr.Recover("interp", func() error {
		v, err := ev.runSource(ctx, sourceName, source)
		result = v
		return err
	})
	return result, err
}

func (ev *Interp) runSource(ctx context.Context, sourceName, source string) (Value, error) {
	ev.sourceName = sourceName
	ev.source = source

	toks, err := tokenize(source, ev.syms)
	if err != nil {
		return Value{}, err
	}
	ev.toks = toks
	ev.pos = 0

	v, err := ev.runChecked(ctx)
	if flerr := ev.out.Flush(); err == nil {
		err = flerr
	}
	return v, err
}

// runChecked wraps run with a context-deadline check between top-level
// statements (SPEC_FULL.md §5: "-timeout wires a context.Context
// deadline checked between top-level statements").
func (ev *Interp) runChecked(ctx context.Context) (Value, error) {
	var last Value
	for {
		ev.skipSemis()
		if ev.cur().kind == tokEOF {
			return last, nil
		}
		select {
		case <-ctx.Done():
			return Value{}, fmt.Errorf("%w: %s", ErrHalted, ctx.Err())
		default:
		}
		v, err := ev.evalStatement()
		if err != nil {
			return Value{}, err
		}
		last = v
	}
}

func WithOutput(w io.Writer) InterpOption         { return withOutput(w) }
func WithTee(w io.Writer) InterpOption            { return withTee(w) }
func WithStackLimit(limit int) InterpOption       { return withStackLimit(limit) }
func WithTestMode(testMode bool) InterpOption     { return withTestMode(testMode) }
func WithLogf(logfn func(mess string, args ...interface{})) InterpOption {
	return withLogfn(logfn)
}

type InterpOption interface{ apply(ev *Interp) }

var defaultOptions = InterpOptions(
	withOutput(ioutil.Discard),
	withStackLimit(defaultStackLimit),
)

func InterpOptions(opts ...InterpOption) InterpOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noption struct{}

func (noption) apply(ev *Interp) {}

type options []InterpOption

func (opts options) apply(ev *Interp) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(ev)
		}
	}
}

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(ev *Interp) { ev.logf = logfn }

type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type stackLimitOption int
type testModeOption bool

func withOutput(w io.Writer) outputOption       { return outputOption{w} }
func withTee(w io.Writer) teeOption             { return teeOption{w} }
func withStackLimit(limit int) stackLimitOption { return stackLimitOption(limit) }
func withTestMode(on bool) testModeOption       { return testModeOption(on) }

func (o outputOption) apply(ev *Interp) {
	if ev.out != nil {
		ev.out.Flush()
	}
	ev.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(ev *Interp) {
	ev.out = flushio.WriteFlushers(ev.out, flushio.NewWriteFlusher(o.Writer))
}

func (lim stackLimitOption) apply(ev *Interp) {
	ev.stack = newCallStack(int(lim))
}

func (t testModeOption) apply(ev *Interp) { ev.testMode = bool(t) }

// ErrHalted is returned by Run when evaluation is aborted by context
// cancellation before reaching end of input.
var ErrHalted = errors.New("interpreter halted")
