package interp

import (
	"context"
	"fmt"
	"strconv"
)

func init() {
	register("history", biHistory)
}

func biHistory(ctx context.Context, r *Runner, args []string) error {
	if len(args) > 1 && args[1] == "-c" {
		r.History = NewHistory()
		return nil
	}
	lines := r.History.Lines()
	start := 0
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil && n >= 0 && n < len(lines) {
			start = len(lines) - n
		}
	}
	for i := start; i < len(lines); i++ {
		fmt.Fprintf(r.Stdout, "%5d  %s\n", i+1, lines[i])
	}
	return nil
}
