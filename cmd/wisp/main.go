// Command wisp is the language's command-line front end: run a source
// file, start an interactive REPL, precompile to bytecode, or disassemble
// a compiled chunk.
//
// Subcommands are dispatched through github.com/spf13/cobra, and the REPL
// is built on github.com/chzyer/readline for history and line editing.
// Exit codes follow the convention spec.md §6 names as the CLI
// collaborator's contract: 0 on success, 65 on a compile error, 70 on a
// runtime error.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kristofer/wisp/internal/bytecode"
	"github.com/kristofer/wisp/internal/disasm"
	"github.com/kristofer/wisp/internal/vm"
)

const version = "0.1.0"

const (
	exitOK           = 0
	exitCompileError = 65
	exitRuntimeError = 70
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:     "wisp",
		Short:   "wisp runs and inspects wisp programs",
		Version: version,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each instruction dispatched by the VM")

	root.AddCommand(
		newRunCmd(),
		newReplCmd(),
		newCompileCmd(),
		newDisasmCmd(),
	)

	// No subcommand but a bare file argument is shorthand for "run"; a
	// cobra root with no subcommand has no natural home for that, so it's
	// its own thin subcommand-free path.
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return replLoop(newTracedVM())
		}
		return runPath(args[0])
	}
	root.Args = cobra.ArbitraryArgs

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitRuntimeError)
	}
}

func newTracedVM() *vm.VM {
	v := vm.New()
	if verbose {
		logger := logrus.New()
		logger.SetLevel(logrus.DebugLevel)
		v.SetTracer(logger)
	}
	return v
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "run a .wisp source file or a .sg compiled chunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPath(args[0])
		},
	}
}

func runPath(path string) error {
	v := newTracedVM()

	if isBytecodeFile(path) {
		f, err := os.Open(path)
		if err != nil {
			os.Exit(exitRuntimeError)
		}
		defer f.Close()

		chunk, err := v.LoadChunk(f)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitRuntimeError)
		}

		if v.InterpretChunk(chunk) == vm.InterpretRuntimeError {
			os.Exit(exitRuntimeError)
		}
		return nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitRuntimeError)
	}

	switch v.Interpret(string(source)) {
	case vm.InterpretCompileError:
		os.Exit(exitCompileError)
	case vm.InterpretRuntimeError:
		os.Exit(exitRuntimeError)
	}
	return nil
}

func isBytecodeFile(path string) bool {
	return len(path) > 3 && path[len(path)-3:] == ".sg"
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "start an interactive read-eval-print loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return replLoop(newTracedVM())
		},
	}
}

// replLoop keeps one VM alive across lines, so a global defined on one line
// (var x = 1;) is visible to statements typed afterward.
func replLoop(v *vm.VM) error {
	rl, err := readline.New("wisp> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Printf("wisp %s\n", version)
	fmt.Println("ctrl-d to exit")

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
		if line == "" {
			continue
		}

		v.Interpret(line)
	}
}

func newCompileCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "compile <input.wisp> [output.sg]",
		Short: "compile a .wisp source file to a .sg bytecode file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			out := output
			if len(args) == 2 {
				out = args[1]
			}
			if out == "" {
				out = defaultOutputName(input)
			}
			return compileFile(input, out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output .sg path (default: <input> with a .wisp extension replaced by .sg, otherwise .sg appended)")
	return cmd
}

func defaultOutputName(input string) string {
	if len(input) > 5 && input[len(input)-5:] == ".wisp" {
		return input[:len(input)-5] + ".sg"
	}
	return input + ".sg"
}

func compileFile(input, output string) error {
	source, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	v := vm.New()
	chunk, ok := v.Compile(string(source))
	if !ok {
		os.Exit(exitCompileError)
	}

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := bytecode.Encode(chunk, out); err != nil {
		return err
	}

	fmt.Printf("compiled %s -> %s\n", input, output)
	return nil
}

func newDisasmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "disasm <file.sg>",
		Aliases: []string{"disassemble"},
		Short:   "print a human-readable listing of a compiled .sg chunk",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			v := vm.New()
			chunk, err := v.LoadChunk(f)
			if err != nil {
				return err
			}

			disasm.Chunk(os.Stdout, chunk, path)
			return nil
		},
	}
}
