package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/joshharrison/metra/internal/mpm"
	"github.com/joshharrison/metra/internal/reporter"
	"github.com/joshharrison/metra/internal/ui"
)

// stepThrough drives a Player from line-based input until the user quits or
// input ends, then prints the confirmed schedule.
func stepThrough(in io.Reader, out io.Writer, tr *mpm.Trace) error {
	r := reporter.New(out)
	p := mpm.NewPlayer(tr)
	if p.Len() == 0 {
		fmt.Fprintln(out, ui.Dim("nothing to step through"))
		return nil
	}

	show := func() {
		fmt.Fprintln(out)
		r.PrintStep(p.Current(), p.Len(), true)
		fmt.Fprintf(out, "\n%s ", ui.Dim("[n]ext  [p]rev  [q]uit >"))
	}

	show()
	sc := bufio.NewScanner(in)
	for !p.Exited() && sc.Scan() {
		switch strings.ToLower(strings.TrimSpace(sc.Text())) {
		case "", "n", "next":
			if p.AtEnd() {
				fmt.Fprintf(out, "%s ", ui.Dim("(last step)"))
				continue
			}
			p.Advance()
		case "p", "prev":
			if p.AtStart() {
				fmt.Fprintf(out, "%s ", ui.Dim("(first step)"))
				continue
			}
			p.Retreat()
		case "q", "quit", "exit":
			p.Exit()
			continue
		default:
			fmt.Fprintf(out, "%s ", ui.Yellow("use n, p or q >"))
			continue
		}
		show()
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	res := p.Exit()
	fmt.Fprintln(out)
	fmt.Fprintln(out)
	r.PrintSchedule(res)
	return nil
}
