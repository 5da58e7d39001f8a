package main

import (
	"fmt"
	"io"
)

// interpDumper prints a snapshot of interpreter state after a run, for
// the `-dump` flag. Grounded on the teacher's dumper.go shape (a small
// dump() entry point fanning out to per-concern helpers) generalized
// from a memory/dictionary dump to a frame-stack/function-cache dump.
type interpDumper struct {
	ev  *Interp
	out io.Writer
}

func (d interpDumper) dump() {
	fmt.Fprintf(d.out, "# Interpreter Dump\n")
	d.dumpStack()
	d.dumpFuncs()
}

func (d interpDumper) dumpStack() {
	fmt.Fprintf(d.out, "  stack depth: %d/%d\n", d.ev.stack.depth(), d.ev.stack.limit)
	for i, fr := range d.ev.stack.frames {
		label := fmt.Sprintf("frame %d", i)
		if i == 0 {
			label = "global"
		}
		fmt.Fprintf(d.out, "  %s:\n", label)
		for id, s := range fr.slots {
			if !s.occupied {
				continue
			}
			fmt.Fprintf(d.out, "    %s = %v\n", d.ev.syms.name(uint32(id)), s.val)
		}
	}
}

func (d interpDumper) dumpFuncs() {
	fmt.Fprintf(d.out, "  functions:\n")
	for sym, fn := range d.ev.funcsBySym {
		occ := 0
		for _, e := range fn.cache.slots {
			if e.occupied {
				occ++
			}
		}
		fmt.Fprintf(d.out, "    %s: eligible=%v runtimeDisabled=%v cache=%d/%d\n",
			d.ev.syms.name(sym), fn.eligible, fn.runtimeDisabled, occ, cacheSize)
	}
}
