package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Urethramancer/mips32/assembler"
	"github.com/Urethramancer/mips32/loader"
	"github.com/grimdork/climate/arg"
)

func main() {
	opt := arg.New("asm32")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "o", "output", "Output file (default standard output).", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "B", "base", "Address of the first word.", "0x00400000", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "l", "labels", "Print the label table to standard error.", false, false, arg.VarBool, nil)
	opt.SetPositional("SOURCE", "Assembly source file.", "", true, arg.VarString)

	err := opt.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, arg.ErrNoArgs) {
			opt.PrintHelp()
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	base, err := strconv.ParseUint(opt.GetString("base"), 0, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid base address %q\n", opt.GetString("base"))
		os.Exit(1)
	}

	data, err := os.ReadFile(opt.GetPosString("SOURCE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading source: %v\n", err)
		os.Exit(1)
	}

	asm := assembler.New()
	words, err := asm.Assemble(string(data), uint32(base))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Assembly error: %v\n", err)
		os.Exit(1)
	}

	if opt.GetBool("labels") {
		for name, addr := range asm.Labels() {
			fmt.Fprintf(os.Stderr, "%-16s 0x%08x\n", name, addr)
		}
	}

	text := loader.Format(words)
	out := opt.GetString("output")
	if out == "" {
		fmt.Print(text)
		return
	}

	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%d words (%d bytes) written to %s\n", len(words), len(words)*4, out)
}
