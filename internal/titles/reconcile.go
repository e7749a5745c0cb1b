package titles

import (
	"strings"

	"github.com/lehigh-university-libraries/shopik/internal/sanitize"
)

// Reconciliation maps the lines of one model response back onto the titles
// that were sent.
type Reconciliation struct {
	// Titles has exactly one entry per input, in input order.
	Titles []string
	// Missing lists input positions no usable line was found for. Those
	// positions hold the input title unchanged.
	Missing []int
	// Surplus counts lines that could not be placed.
	Surplus int
}

// Reconcile places response lines onto input positions. When most lines are
// numbered, the numbers decide the position; otherwise line i goes to input i.
// Positions that end up without a line keep their input title.
func Reconcile(inputs []string, response string) Reconciliation {
	var lines []string
	marked := 0
	for _, line := range strings.Split(response, "\n") {
		if sanitize.CleanModelTitle(line) == "" {
			continue
		}
		if sanitize.HasEnumeration(line) {
			marked++
		}
		lines = append(lines, line)
	}

	r := Reconciliation{Titles: make([]string, len(inputs))}
	filled := make([]bool, len(inputs))

	if marked > 0 && marked*2 > len(lines) {
		for _, line := range lines {
			n := sanitize.EnumerationIndex(line)
			if n < 1 || n > len(inputs) || filled[n-1] {
				r.Surplus++
				continue
			}
			r.Titles[n-1] = sanitize.CleanModelTitle(line)
			filled[n-1] = true
		}
	} else {
		for i, line := range lines {
			if i >= len(inputs) {
				r.Surplus++
				continue
			}
			r.Titles[i] = sanitize.CleanModelTitle(line)
			filled[i] = true
		}
	}

	for i, ok := range filled {
		if !ok {
			r.Titles[i] = inputs[i]
			r.Missing = append(r.Missing, i)
		}
	}
	return r
}
