package buddy

import (
	"fmt"
	"io"
)

// Dump writes one line to w: for each order from MinOrder to MaxOrder
// inclusive, "{count}:{1<<o >> 10}K ", where count is the number of
// free heads at that order, followed by a newline. The trailing space
// before the newline is part of the format (spec.md §6).
func (a *Allocator) Dump(w io.Writer) error {
	for o := a.arena.MinOrder(); o <= a.arena.MaxOrder(); o++ {
		sizeKB := (uint64(1) << o) >> 10
		if _, err := fmt.Fprintf(w, "%d:%dK ", a.reg.CountFree(o), sizeKB); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
