package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vesshelm/vesshelm/pkg/vesshelm"
)

// Output styles. They render plainly when colors are disabled.
var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	nameStyle   = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// stdin is where confirmations are read from.
var stdin io.Reader = os.Stdin

// newClient builds a library client from the global flags.
func newClient() (*vesshelm.Client, error) {
	return vesshelm.New(vesshelm.Options{
		ConfigPath:   configPath,
		LockfilePath: lockfilePath,
		Logger:       logger,
	})
}

// interactive reports whether both stdin and stdout are terminals.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// confirm asks a yes/no question on stdin. Anything but y or yes is no.
func confirm(question string) (bool, error) {
	fmt.Printf("%s [y/N] ", question)
	scanner := bufio.NewScanner(stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return false, fmt.Errorf("reading answer: %w", err)
		}
		return false, nil
	}
	return isYes(scanner.Text()), nil
}

func isYes(answer string) bool {
	switch strings.TrimSpace(strings.ToLower(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// mark renders a bracketed status tag such as [OK].
func mark(style lipgloss.Style, tag string) string {
	return style.Render("[" + tag + "]")
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// warnf prints a warning to stderr unless quiet mode is active.
func warnf(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stderr, warnStyle.Render("warning:")+" "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, failStyle.Render("error:")+" "+format+"\n", args...)
}
