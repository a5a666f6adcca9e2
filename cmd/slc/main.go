/*
Slc compiles one or more source files and reports diagnostics.

It reads each file given on the command line, resolves them together as a
single program, and prints every diagnostic raised to stderr. If resolution
completes with no errors, the control-flow graph for every function and
modifier body is built as well.

Usage:

	slc [flags] FILE [FILE...]

The flags are:

	-v, --version
		Give the current version of the compiler and then exit.

	-t, --target NAME
		Select the compilation target. One of "evm" (default) or "soroban".
*/
package main

import (
	"fmt"
	"os"

	"github.com/dekarrin/solfront"
	"github.com/dekarrin/solfront/internal/types"
	"github.com/dekarrin/solfront/internal/version"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitCompileError indicates an unsuccessful compile due to one or more
	// error-severity diagnostics.
	ExitCompileError

	// ExitInitError indicates an unsuccessful program execution due to an
	// issue initializing the session or reading a source file.
	ExitInitError
)

var (
	returnCode  int     = ExitSuccess
	flagVersion *bool   = pflag.BoolP("version", "v", false, "Gives the version info")
	flagTarget  *string = pflag.StringP("target", "t", "evm", "The compilation target: evm or soroban")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			panic(fmt.Sprintf("unrecoverable panic occured: %v", panicErr))
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.Current)
		return
	}

	files := pflag.Args()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "ERROR: no source files given\nDo -h for help.\n")
		returnCode = ExitInitError
		return
	}

	target, err := targetFor(*flagTarget)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	sess := solfront.New(target)

	for _, path := range files {
		contents, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
		if _, err := sess.AddFile(path, contents); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
			returnCode = ExitInitError
			return
		}
	}

	ns, err := sess.Compile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		returnCode = ExitInitError
		return
	}

	for _, d := range ns.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}

	if ns.HasErrors() {
		returnCode = ExitCompileError
	}
}

func targetFor(name string) (types.Target, error) {
	switch name {
	case "evm", "":
		return types.EVM(), nil
	case "soroban":
		return types.Soroban(), nil
	default:
		return types.Target{}, fmt.Errorf("unknown target %q: must be evm or soroban", name)
	}
}
