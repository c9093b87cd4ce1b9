package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/shenjiangwei/buddyalloc/buddy"
)

func main() {
	tracePath := flag.String("trace", "", "path to a trace file of 'A size' / 'F id' lines")
	dumpMode := flag.String("dump", "eof", "when to call Dump: 'each' line or 'eof' only")
	minOrder := flag.Uint("min-order", 12, "minimum block order (2^min-order bytes)")
	maxOrder := flag.Uint("max-order", 20, "maximum block order (2^max-order bytes, arena size)")
	flag.Parse()

	if *tracePath == "" {
		fmt.Println("usage: buddyalloc -trace <file> [-dump each|eof] [-min-order N] [-max-order N]")
		os.Exit(1)
	}

	f, err := os.Open(*tracePath)
	if err != nil {
		log.Fatalf("could not open trace file: %v", err)
	}
	defer f.Close()

	a, err := buddy.New(buddy.WithOrders(*minOrder, *maxOrder))
	if err != nil {
		log.Fatalf("could not initialize allocator: %v", err)
	}

	if err := runTrace(a, f, os.Stdout, *dumpMode == "each"); err != nil {
		log.Fatalf("trace replay failed: %v", err)
	}

	if *dumpMode != "each" {
		if err := a.Dump(os.Stdout); err != nil {
			log.Fatalf("dump failed: %v", err)
		}
	}
}

// runTrace replays lines of the form "A size" or "F id" against a,
// where id is the 1-based index into the sequence of successful "A"
// lines seen so far (spec.md §6's trace file grammar).
func runTrace(a *buddy.Allocator, r *os.File, out *os.File, dumpEach bool) error {
	var allocated []uint64

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			return fmt.Errorf("line %d: expected 'A size' or 'F id', got %q", lineNo, line)
		}

		switch fields[0] {
		case "A":
			size, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return fmt.Errorf("line %d: invalid size %q: %w", lineNo, fields[1], err)
			}
			addr, err := a.Alloc(size)
			if err != nil {
				fmt.Fprintf(out, "line %d: alloc %d failed: %v\n", lineNo, size, err)
				break
			}
			allocated = append(allocated, addr)
			fmt.Fprintf(out, "line %d: alloc %d -> %d\n", lineNo, size, addr)

		case "F":
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return fmt.Errorf("line %d: invalid id %q: %w", lineNo, fields[1], err)
			}
			if id < 1 || id > len(allocated) {
				return fmt.Errorf("line %d: id %d out of range (1..%d)", lineNo, id, len(allocated))
			}
			addr := allocated[id-1]
			if err := a.Free(addr); err != nil {
				fmt.Fprintf(out, "line %d: free %d failed: %v\n", lineNo, addr, err)
			} else {
				fmt.Fprintf(out, "line %d: free %d ok\n", lineNo, addr)
			}

		default:
			return fmt.Errorf("line %d: unknown opcode %q", lineNo, fields[0])
		}

		if dumpEach {
			if err := a.Dump(out); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}
