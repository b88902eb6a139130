package eazerepy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
)

// Run parses flags and executes the selected command.
func Run(args []string) {
	if err := run(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, ferr.Message)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		closeApp()
		os.Exit(1)
	}
	closeApp()
}

func run(args []string) error {
	setConfigPath(extractConfigPath(args))
	setVerbose(extractVerbose(args))

	opts := &Options{}
	var first string
	if len(args) > 0 {
		first = args[0]
	}
	opts.Init(first)

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.SubcommandsOptional = true
	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}
	// Global version flag: print and exit successfully.
	if opts.Version {
		fmt.Println(Version())
		return nil
	}
	if parser.Active == nil {
		parser.WriteHelp(os.Stdout)
	}
	return nil
}

// extractConfigPath scans raw args for -f/--config before full parsing so that
// the application can be initialised by sub-command Execute.
func extractConfigPath(args []string) string {
	for i, a := range args {
		switch a {
		case "-f", "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		default:
			if strings.HasPrefix(a, "--config=") {
				return strings.TrimPrefix(a, "--config=")
			}
		}
	}
	return ""
}

func extractVerbose(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--verbose" {
			return true
		}
		if a == "--" {
			break
		}
	}
	return false
}
