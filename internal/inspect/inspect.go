// Package inspect is an interactive REPL for poking at a loaded model
// without running a full enumeration — encode/decode k-grams, look up a
// level, or dump sorted-bucket sizes. Built on chzyer/readline, including
// history file and Ctrl+C handling.
package inspect

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/omenforge/omen/internal/model"
	"github.com/omenforge/omen/internal/sortedindex"
)

// Run starts the REPL against m, reading commands from stdin via readline
// and writing results to out. Returns when the user types "exit"/"quit" or
// sends EOF/Ctrl+D; Ctrl+C cancels the current line without exiting.
func Run(m *model.Model, historyFile string, out io.Writer) error {
	idx := sortedindex.Build(m)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "omen> ",
		HistoryFile:     historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		handle(out, m, idx, line)
	}
}

func handle(out io.Writer, m *model.Model, idx *sortedindex.Indices, line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "level":
		handleLevel(out, m, fields)
	case "buckets":
		handleBuckets(out, idx, m, fields)
	case "encode":
		handleEncode(out, m, fields)
	case "decode":
		handleDecode(out, m, fields)
	case "help":
		fmt.Fprintln(out, "commands: level ip|cp|ep <gram>; buckets <level>; encode <gram>; decode <code> <k>; exit")
	default:
		fmt.Fprintf(out, "unknown command %q (try \"help\")\n", fields[0])
	}
}

func handleLevel(out io.Writer, m *model.Model, fields []string) {
	if len(fields) != 3 {
		fmt.Fprintln(out, "usage: level ip|cp|ep <gram>")
		return
	}
	code, ok := m.Alphabet.Encode([]byte(fields[2]))
	if !ok {
		fmt.Fprintln(out, "gram contains a character outside the alphabet")
		return
	}
	var arr []int
	switch fields[1] {
	case "ip":
		arr = m.IP
	case "cp":
		arr = m.CP
	case "ep":
		arr = m.EP
	default:
		fmt.Fprintln(out, "array must be one of ip, cp, ep")
		return
	}
	if code >= len(arr) {
		fmt.Fprintln(out, "gram out of range for this array (wrong length for this n-gram order?)")
		return
	}
	fmt.Fprintf(out, "%d\n", arr[code])
}

func handleBuckets(out io.Writer, idx *sortedindex.Indices, m *model.Model, fields []string) {
	if len(fields) != 2 {
		fmt.Fprintln(out, "usage: buckets <level>")
		return
	}
	level, err := strconv.Atoi(fields[1])
	if err != nil || level < 0 || level >= m.MaxLevel {
		fmt.Fprintln(out, "level out of range")
		return
	}
	fmt.Fprintf(out, "IP_sorted[%d]: %d codes\n", level, len(idx.IP.Codes[level]))
	total := 0
	for _, bucket := range idx.CP.Buckets[level] {
		total += len(bucket)
	}
	fmt.Fprintf(out, "CP_sorted[%d]: %d extensions across %d prefixes\n", level, total, len(idx.CP.Buckets[level]))
}

func handleEncode(out io.Writer, m *model.Model, fields []string) {
	if len(fields) != 2 {
		fmt.Fprintln(out, "usage: encode <gram>")
		return
	}
	code, ok := m.Alphabet.Encode([]byte(fields[1]))
	if !ok {
		fmt.Fprintln(out, "gram contains a character outside the alphabet")
		return
	}
	fmt.Fprintf(out, "%d\n", code)
}

func handleDecode(out io.Writer, m *model.Model, fields []string) {
	if len(fields) != 3 {
		fmt.Fprintln(out, "usage: decode <code> <k>")
		return
	}
	code, err1 := strconv.Atoi(fields[1])
	k, err2 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || k < 1 {
		fmt.Fprintln(out, "code and k must be positive integers")
		return
	}
	fmt.Fprintf(out, "%s\n", m.Alphabet.DecodeString(code, k))
}
