// Command reminderctl is the terminal client of the reminder tracker.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/notexe/reminder-tracker/internal/ui"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the CLI with args and returns the process exit code.
func execute(args []string, out, errOut io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(errOut, ui.NewFormatter(isTerminal(errOut)).FormatError(err))
		return 1
	}
	return 0
}
