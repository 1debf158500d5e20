package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/cosmez/reapi-go/internal/api"
	"github.com/cosmez/reapi-go/internal/bridge"
	"github.com/cosmez/reapi-go/internal/command"
	"github.com/cosmez/reapi-go/internal/output"
)

// console runs REPL lines against the executor and prints the envelopes
// the HTTP endpoint would return.
type console struct {
	exec    api.Executor
	reg     *command.Registry
	target  string // shown in the prompt
	db      int
	out     io.Writer
	color   bool
	confirm func(question string) bool
}

// prompt follows redis-cli: the database is shown when it is not 0.
func (c *console) prompt() string {
	if c.db == 0 {
		return c.target + "> "
	}
	return fmt.Sprintf("%s[%d]> ", c.target, c.db)
}

func (c *console) printOpts() output.PrintOpts {
	return output.PrintOpts{Color: c.color, Newline: true}
}

// handleLine runs one console line and reports whether the console should
// exit.
func (c *console) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	parsed, err := command.Parse(line, c.reg)
	if err != nil {
		c.fail("Parse error: %v", err)
		return false
	}
	if parsed.Name == "" {
		return false
	}

	switch parsed.Name {
	case "EXIT", "QUIT":
		return true
	case "CLEAR":
		fmt.Fprint(c.out, "\033[2J\033[H")
	case "HELP":
		c.handleHelp(parsed)
	case "USE", "SELECT":
		c.handleUse(ctx, parsed)
	default:
		c.handleStandardCommand(ctx, parsed)
	}
	return false
}

func (c *console) handleHelp(parsed *command.ParsedCommand) {
	if len(parsed.Args) == 0 {
		c.warn("Usage: HELP <command>")
		return
	}
	doc := findDoc(c.reg, strings.Join(parsed.Args, " "))
	if doc == nil {
		c.fail("Unknown command: %s", strings.ToUpper(parsed.Args[0]))
		return
	}
	c.paint(color.FgCyan, "%s %s", doc.Command, doc.Arguments)
	fmt.Fprintln(c.out, doc.Summary)
	if doc.Since != "" {
		c.paint(color.FgBlue, "Since: %s", doc.Since)
	}
}

// handleUse switches the console's database after checking the backend
// accepts it. SELECT is handled the same way, since the executor picks the
// database per line.
func (c *console) handleUse(ctx context.Context, parsed *command.ParsedCommand) {
	if len(parsed.Args) != 1 {
		c.warn("Usage: USE <db>")
		return
	}
	db, err := strconv.Atoi(parsed.Args[0])
	if err != nil || db < 0 {
		c.fail("Invalid database: %s", parsed.Args[0])
		return
	}

	if _, err := c.exec.Execute(ctx, &command.Invocation{DB: db, Name: "PING"}); err != nil {
		output.PrintError(c.out, err.Error(), c.printOpts())
		return
	}
	c.db = db
	output.PrintResult(c.out, "OK", c.printOpts())
}

func (c *console) handleStandardCommand(ctx context.Context, parsed *command.ParsedCommand) {
	if c.reg.IsDangerous(parsed.Name) && c.confirm != nil {
		question := fmt.Sprintf("The command %s is considered dangerous to execute, execute anyway? (Y/N)", parsed.Name)
		if !c.confirm(question) {
			c.warn("Aborted.")
			return
		}
	}

	v, err := c.exec.Execute(ctx, parsed.Invocation(c.db))
	if err != nil {
		output.PrintError(c.out, err.Error(), c.printOpts())
		if bridge.KindOf(err) == bridge.InternalFailure {
			c.warn("The backend could not be reached; the next command will reconnect.")
		}
		return
	}

	conv, err := output.ToJSON(v)
	if err != nil {
		output.PrintError(c.out, err.Error(), c.printOpts())
		return
	}
	output.PrintResult(c.out, conv, c.printOpts())
}

func (c *console) paint(attr color.Attribute, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if c.color {
		text = color.New(attr).Sprint(text)
	}
	fmt.Fprintln(c.out, text)
}

func (c *console) warn(format string, args ...any) {
	c.paint(color.FgYellow, format, args...)
}

func (c *console) fail(format string, args ...any) {
	c.paint(color.FgRed, format, args...)
}
