package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/Urethramancer/mips32/cpu"
	"github.com/Urethramancer/mips32/loader"
	"github.com/Urethramancer/mips32/monitor"
	"github.com/grimdork/climate/arg"
	"github.com/sirupsen/logrus"
)

func main() {
	opt := arg.New("mumips")
	opt.SetDefaultHelp(true)
	opt.SetOption(arg.GroupDefault, "v", "verbose", "Log every executed instruction.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "L", "loglevel", "Log level (panic, fatal, error, warn, info, debug, trace).", "warn", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "b", "binary", "Program is a little-endian binary image instead of hex text.", false, false, arg.VarBool, nil)
	opt.SetOption(arg.GroupDefault, "B", "base", "Load address and initial PC.", "0x00400000", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "s", "script", "Lua script to run before the prompt.", "", false, arg.VarString, nil)
	opt.SetOption(arg.GroupDefault, "r", "run", "Run to completion, dump the registers and exit.", false, false, arg.VarBool, nil)
	opt.SetPositional("PROGRAM", "Program image to load.", "", true, arg.VarString)

	err := opt.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, arg.ErrNoArgs) {
			opt.PrintHelp()
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(opt.GetString("loglevel"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	log.SetLevel(level)
	if opt.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}

	base, err := strconv.ParseUint(opt.GetString("base"), 0, 32)
	if err != nil || base%4 != 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid base address %q\n", opt.GetString("base"))
		os.Exit(1)
	}

	cfg := cpu.DefaultConfig()
	cfg.TextBase = uint32(base)
	cfg.Logger = log
	prog := loader.File{
		Path:   opt.GetPosString("PROGRAM"),
		Binary: opt.GetBool("binary"),
		Log:    log,
	}
	sim, err := cpu.New(cfg, prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	err = run(sim, log, opt.GetString("script"), opt.GetBool("run"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(sim *cpu.Simulator, log logrus.FieldLogger, script string, batch bool) error {
	mon := monitor.New(sim, os.Stdout, log)
	defer mon.Close()

	ctx := context.Background()
	if !batch {
		fmt.Print("\n**************************\n")
		fmt.Print("Welcome to MU-MIPS SIM...\n")
		fmt.Print("**************************\n\n")
	}

	if script != "" {
		err := mon.RunScript(script)
		if errors.Is(err, monitor.ErrQuit) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	if batch {
		err := mon.Execute(ctx, "sim")
		if err != nil {
			return err
		}
		mon.RegisterDump()
		return nil
	}

	return mon.Serve(ctx, os.Stdin)
}
