package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jcorbin/light/internal/fileinput"
	"github.com/jcorbin/light/internal/logio"
)

func main() {
	var (
		stackLimit int
		timeout    time.Duration
		trace      bool
		dump       bool
	)
	flag.IntVar(&stackLimit, "stack-limit", 0, "override the call-stack depth limit (0: default)")
	flag.DurationVar(&timeout, "timeout", 0, "abort evaluation after this long")
	flag.BoolVar(&trace, "trace", false, "log each closure call to stderr")
	flag.BoolVar(&dump, "dump", false, "print an interpreter state dump after execution")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	if flag.NArg() != 1 {
		log.Errorf("usage: %s <script-path>", os.Args[0])
		return
	}
	scriptPath := flag.Arg(0)

	source, err := readSource(scriptPath)
	if err != nil {
		log.Errorf("%s", err)
		return
	}

	var opts []InterpOption
	opts = append(opts, WithOutput(os.Stdout))
	if stackLimit > 0 {
		opts = append(opts, WithStackLimit(stackLimit))
	}
	if trace {
		opts = append(opts, WithLogf(log.Leveledf("TRACE")))
	}

	ev := New(opts...)

	if dump {
		defer interpDumper{ev: ev, out: &logio.Writer{Logf: log.Leveledf("DUMP")}}.dump()
	}

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	last, err := ev.Run(ctx, scriptPath, source)
	if err != nil {
		log.Errorf("%+v", err)
		return
	}
	if trace {
		log.Leveledf("TRACE")("last value: %v", last)
	}
}

// readSource slurps the named script file through internal/fileinput's
// rune reader, which also gives us line-tracked diagnostics for free if
// the lexer ever needs to report read errors against a Location instead
// of just a byte offset.
func readSource(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	in := &fileinput.Input{Queue: []io.Reader{f}}
	var sb strings.Builder
	for {
		r, _, err := in.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}
