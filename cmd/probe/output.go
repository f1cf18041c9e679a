package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/hookkit/probe"
)

var (
	foundColor   = color.New(color.FgGreen, color.Bold)
	absentColor  = color.New(color.FgRed)
	declaredMark = color.New(color.FgYellow)
	headerColor  = color.New(color.Bold)
)

type output struct {
	w io.Writer
}

// newOutput applies the color mode: auto colors only when stdout is a
// terminal.
func newOutput(w io.Writer, mode string) *output {
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		color.NoColor = !isTerminal(os.Stdout)
	}
	return &output{w: w}
}

func (o *output) header(format string, args ...any) {
	_, _ = headerColor.Fprintf(o.w, format+"\n", args...)
}

func (o *output) line(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format+"\n", args...)
}

// records prints one colored line per record.
func (o *output) records(records []probe.Record) {
	if len(records) == 0 {
		probe.FprintRecords(o.w, nil)
		return
	}
	for _, rec := range records {
		text := strings.TrimSuffix(probe.SprintRecords([]probe.Record{rec}), "\n")
		switch {
		case !rec.Success:
			text = absentColor.Sprint(text)
		case rec.Declared:
			text = declaredMark.Sprint(text)
		default:
			text = foundColor.Sprint(text)
		}
		_, _ = fmt.Fprintln(o.w, text)
		if !rec.Success && rec.Error != "" {
			_, _ = fmt.Fprintf(o.w, "    %s\n", rec.Error)
		}
	}
}

func (o *output) status(found bool) string {
	if found {
		return foundColor.Sprint("found")
	}
	return absentColor.Sprint("absent")
}

func (o *output) summary(s probe.Summary) {
	s.Fprint(o.w)
}
