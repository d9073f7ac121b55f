// Command gcl is the reference command-line front end for the feather
// interpreter core: a REPL when stdin is a terminal, a script runner
// otherwise, and a set of --parse* flags that check whether a file parses
// as a script, without evaluating it, and print the parse status code and
// message. No token dump is printed, and all three flags use the script
// parser.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/feather-lang/feather"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// fitToWidth truncates s to fit within width display columns, using
// go-runewidth's East-Asian-aware column accounting rather than a plain
// rune count, so a wide error message doesn't wrap unpredictably on a
// narrow terminal.
func fitToWidth(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}

func printErr(err error) {
	msg := err.Error()
	if width, _, werr := term.GetSize(int(os.Stderr.Fd())); werr == nil && width > 0 {
		msg = fitToWidth(msg, width)
	}
	fmt.Fprintln(os.Stderr, msg)
}

var (
	flagParseScript bool
	flagParseExpr   bool
	flagParseSubst  bool
	flagConfig      string
)

func main() {
	root := &cobra.Command{
		Use:   "gcl [file]",
		Short: "Evaluate a feather script, or start an interactive prompt",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	root.Flags().BoolVar(&flagParseScript, "parse", false, "check that the file parses as a script and print the parse status and message instead of evaluating it")
	root.Flags().BoolVar(&flagParseExpr, "parse-expr", false, "same as --parse (the file is checked with the script parser)")
	root.Flags().BoolVar(&flagParseSubst, "parse-subst", false, "same as --parse (the file is checked with the script parser)")
	root.Flags().StringVar(&flagConfig, "config", "", "path to a YAML file whose top-level keys are installed as global variables before the script runs")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	ip := feather.New()
	defer ip.Close()

	scriptArgs := []string{}
	if len(args) > 0 {
		scriptArgs = args[1:]
	}
	ip.SetVars(map[string]any{
		"argv0": progArg(args),
		"argv":  scriptArgs,
		"argc":  len(scriptArgs),
	})

	if flagConfig != "" {
		cfg, err := os.ReadFile(flagConfig)
		if err != nil {
			return err
		}
		if err := ip.LoadYAMLConfig(cfg); err != nil {
			return err
		}
	}

	switch {
	case flagParseScript, flagParseExpr, flagParseSubst:
		return runParseDump(ip, args)
	case len(args) == 1:
		return runFile(ip, args[0])
	default:
		return runREPL(ip)
	}
}

func progArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func runParseDump(ip *feather.Interp, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("--parse flags require exactly one file argument")
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	result := ip.Parse(string(src))
	fmt.Println(result.Status, result.Message)
	return nil
}

func runFile(ip *feather.Interp, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	ip.SetVar("argv0", path)
	ip.SetScriptPath(path)
	result, err := ip.Eval(string(src))
	if err != nil {
		printErr(err)
		os.Exit(1)
	}
	_ = result // a sourced file's top-level result is conventionally discarded
	return nil
}

func runREPL(ip *feather.Interp) error {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return runPipedScript(ip)
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	var pending string
	for {
		prompt := "% "
		if pending != "" {
			prompt = "> "
		}
		input, err := ln.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				break
			}
			fmt.Fprintln(os.Stderr, err)
			break
		}
		ln.AppendHistory(input)

		if pending != "" {
			pending += "\n" + input
		} else {
			pending = input
		}

		status := ip.Parse(pending)
		switch status.Status {
		case feather.ParseIncomplete:
			continue
		case feather.ParseError:
			fmt.Fprintf(os.Stderr, "parse error: %s\n", status.Message)
			pending = ""
			continue
		}

		result, err := ip.Eval(pending)
		pending = ""
		if err != nil {
			printErr(err)
			continue
		}
		if s := result.String(); s != "" {
			fmt.Println(s)
		}
	}
	return nil
}

func runPipedScript(ip *feather.Interp) error {
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	result, err := ip.Eval(string(src))
	if err != nil {
		printErr(err)
		os.Exit(1)
	}
	if s := result.String(); s != "" {
		fmt.Println(s)
	}
	return nil
}
