package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Urethramancer/mips32/cpu"
	"github.com/Urethramancer/mips32/disassembler"
	"github.com/Urethramancer/mips32/loader"
	"github.com/grimdork/climate/arg"
)

func main() {
	opt := arg.New("dis32")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "o", "output", "Output file (default standard output).", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "B", "base", "Address of the first word.", "0x00400000", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "b", "binary", "Input is a little-endian binary image instead of hex text.", false, false, arg.VarBool, nil)
	opt.SetPositional("IMAGE", "Program image to disassemble.", "", true, arg.VarString)

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
	if err != nil || base%4 != 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid base address %q\n", opt.GetString("base"))
		os.Exit(1)
	}

	words, err := readImage(opt.GetPosString("IMAGE"), opt.GetBool("binary"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
		os.Exit(1)
	}

	text := disassembler.Disassemble(words, uint32(base))
	out := opt.GetString("output")
	if out == "" {
		fmt.Print(text)
		return
	}

	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Disassembly written to %s\n", out)
}

func readImage(path string, binary bool) ([]uint32, error) {
	if !binary {
		return loader.ReadFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return cpu.BytesToWords(data), nil
}
