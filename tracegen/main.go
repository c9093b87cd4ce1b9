// Command tracegen emits a synthetic trace of "A size" / "F id" lines
// (spec.md §6's grammar) for replay by the root trace-driver. Sizes are
// drawn from the same three bands the teacher used to pre-populate its
// memory pools: 4KB-64KB, 64KB-1MB, 1MB-4MB.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
)

const (
	KB = 1024
	MB = 1024 * 1024

	smallMin, smallSpan   = 4 * KB, 60 * KB
	mediumMin, mediumSpan = 64 * KB, 936 * KB
	largeMin, largeSpan   = 1 * MB, 3 * MB
)

func main() {
	out := flag.String("out", "", "output trace file (defaults to stdout)")
	lines := flag.Int("lines", 1000, "number of trace lines to emit")
	freeRatio := flag.Float64("free-ratio", 0.4, "fraction of lines that are frees, once allocations exist")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("could not create output file: %v", err)
		}
		defer f.Close()
		w = f
	}

	bw := bufio.NewWriter(w)
	defer bw.Flush()

	rng := rand.New(rand.NewSource(*seed))
	emitTrace(bw, rng, *lines, *freeRatio)
}

func emitTrace(w *bufio.Writer, rng *rand.Rand, lines int, freeRatio float64) {
	live := 0
	for i := 0; i < lines; i++ {
		if live > 0 && rng.Float64() < freeRatio {
			id := rng.Intn(live) + 1
			fmt.Fprintf(w, "F %d\n", id)
			continue
		}
		fmt.Fprintf(w, "A %d\n", randomSize(rng))
		live++
	}
}

// randomSize draws from the small, medium, or large band with equal
// probability, mirroring the teacher's SmallPoolSize/MediumPoolSize/
// LargePoolSize pre-allocation bands.
func randomSize(rng *rand.Rand) uint64 {
	switch rng.Intn(3) {
	case 0:
		return uint64(rng.Intn(smallSpan) + smallMin)
	case 1:
		return uint64(rng.Intn(mediumSpan) + mediumMin)
	default:
		return uint64(rng.Intn(largeSpan) + largeMin)
	}
}
