package main

import (
	"io"
	"strings"
)

// writeCowsay renders text in a speech bubble above the classic cowsay
// ASCII cow (spec §3 glossary: "the secret identifier" -- cowsay is the
// undocumented statement form reachable only by using that identifier as
// a keyword). It reuses the same text rendering print does.
func writeCowsay(w io.Writer, text string) {
	width := len(text)
	top := "_" + strings.Repeat("_", width+2) + "_"
	bottom := strings.Repeat("-", width+2)
	io.WriteString(w, " "+top+"\n")
	io.WriteString(w, "< "+text+" >\n")
	io.WriteString(w, " "+bottom+"\n")
	io.WriteString(w, cowArt)
}

const cowArt = `        \   ^__^
         \  (oo)\_______
            (__)\       )\/\
                ||----w |
                ||     ||
`
