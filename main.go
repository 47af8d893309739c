package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"lemu64/diag"
	"lemu64/parser"
	"lemu64/vm"
)

const errorLimit = 3

func main() {
	var (
		help      = flag.Bool("help", false, "print help, exit 0")
		zeroPage  = flag.Bool("zero-page", false, "enable the 4096-byte zero page")
		limitErr  = flag.Bool("limit-errors", false, "cap diagnostics at 3")
		debugMode = flag.Bool("debug", false, "enter the debugger REPL")
		stdioMode = flag.Bool("stdio", false, "run the LSP on stdin/stdout")
	)
	flag.BoolVar(help, "h", false, "print help, exit 0")
	flag.BoolVar(zeroPage, "z", false, "enable the 4096-byte zero page")
	flag.BoolVar(limitErr, "l", false, "cap diagnostics at 3")
	flag.BoolVar(debugMode, "d", false, "enter the debugger REPL")
	flag.Parse()

	if *help {
		printHelp()
		os.Exit(0)
	}

	if *stdioMode {
		fmt.Fprintln(os.Stderr, "the language-server interface is not part of this build")
		os.Exit(0)
	}
	if *debugMode {
		fmt.Fprintln(os.Stderr, "the interactive debugger is not part of this build")
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: lemu64 [-h] [-z] [-l] <file>")
		os.Exit(1)
	}

	limit := 0
	if *limitErr {
		limit = errorLimit
	}

	os.Exit(run(args[0], *zeroPage, limit))
}

func run(path string, zeroPage bool, errLimit int) int {
	result, source, err := parser.AssembleFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lemu64: %s\n", err)
		return 1
	}

	if !result.OK() {
		result.Diagnostics.Render(os.Stderr, errLimit)
		return 1
	}
	result.Diagnostics.RenderWarnings(os.Stderr)

	prog := vm.Program{
		Words:       result.Words,
		Positions:   result.Positions,
		SourceLines: strings.Split(source, "\n"),
		Labels:      labelsOf(result.Labels),
	}

	machine := vm.NewVM(prog, zeroPage, os.Stdout)
	machine.Run()

	if machine.State == vm.StateFaulted {
		d := machine.Diagnostic()
		d.Render(os.Stderr, diag.ColorEnabled())
		return machine.ExitCode()
	}
	return machine.ExitCode()
}

func labelsOf(table *parser.LabelTable) []vm.Label {
	if table == nil {
		return nil
	}
	names := table.Names()
	out := make([]vm.Label, 0, len(names))
	for _, name := range names {
		idx, _ := table.Lookup(name)
		out = append(out, vm.Label{Name: name, InstrIndex: idx})
	}
	return out
}

func printHelp() {
	fmt.Println(`lemu64 - assembler and virtual machine for the 64-bit academic ISA

usage: lemu64 [flags] <file>

flags:
  -h, --help            print this help and exit
  -z, --zero-page       enable the 4096-byte zero page at address 0
  -l, --limit-errors    cap diagnostics at 3, with a "(N errors omitted)" summary
  -d, --debug           enter the debugger REPL (not built into this binary)
      --stdio           run the language server on stdin/stdout (not built into this binary)

exit codes:
  0   execution ran off the end of the program with no exception raised
  1   CLI misuse, assembler errors, or a VM exception (including HALT)`)
}
