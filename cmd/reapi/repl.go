package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cosmez/reapi-go/internal/bridge"
	"github.com/cosmez/reapi-go/internal/command"
	"github.com/cosmez/reapi-go/internal/config"
	"github.com/cosmez/reapi-go/internal/logging"
	"github.com/cosmez/reapi-go/internal/serializer"
)

func newReplCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "repl [key value ...]",
		Short: "Run commands interactively against the configured backend",
		Long: `Run commands interactively through the same executor the gateway
uses. Replies are printed as the JSON the HTTP endpoint would return.

Append #:codec (base64, gzip, snappy) to a line to encode SET values and
decode the reply. USE <db> switches the database for later lines.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, unknown, err := loadConfig(v, cmd, args)
			if err != nil {
				return err
			}
			for _, key := range unknown {
				color.Yellow("Warning: ignoring unknown setting %q", key)
			}
			return runRepl(cmd.Context(), cfg)
		},
	}
}

// replCompleter implements readline.AutoCompleter for tab completion.
type replCompleter struct {
	reg *command.Registry
}

// Do returns completion candidates based on the current input.
func (c *replCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	text := string(line[:pos])

	// Codec names after the #: marker
	if i := strings.LastIndex(text, "#:"); i != -1 {
		prefix := text[i+2:]
		for _, name := range serializer.Names() {
			if strings.HasPrefix(name, prefix) {
				newLine = append(newLine, []rune(name[len(prefix):]))
			}
		}
		return newLine, len(prefix)
	}

	// Only complete the first word
	if strings.Contains(text, " ") {
		return nil, 0
	}

	for _, match := range c.reg.GetCommands(text) {
		remaining := strings.ToUpper(match[len(text):])
		newLine = append(newLine, []rune(remaining+" "))
	}
	return newLine, len(text)
}

// replHinter implements readline.Painter and readline.Listener to display
// command hints below the input line. Paint only clears stale hints; the
// hint itself is written by OnChange after readline has redrawn the line,
// so readline's cursor math is never affected.
type replHinter struct {
	reg       *command.Registry
	promptLen int
}

// copyAppend returns line + suffix in a new slice.
func copyAppend(line []rune, suffix string) []rune {
	sfx := []rune(suffix)
	out := make([]rune, len(line)+len(sfx))
	copy(out, line)
	copy(out[len(line):], sfx)
	return out
}

// Paint clears any stale hint below the input line.
func (h *replHinter) Paint(line []rune, _ int) []rune {
	return copyAppend(line, "\033[J")
}

// OnChange writes a command hint on the line below the input and moves the
// cursor back to where readline left it.
func (h *replHinter) OnChange(line []rune, pos int, _ rune) ([]rune, int, bool) {
	if len(line) == 0 {
		return nil, 0, false
	}

	text := string(line)
	parts := strings.SplitN(text, " ", 2)
	cmd := parts[0]

	// Uppercase the command word once it matches a known command.
	if cmd != "" {
		upper := strings.ToUpper(cmd)
		if cmd != upper && h.reg.Get(upper) != nil {
			return []rune(upper + text[len(cmd):]), pos, true
		}
	}

	if len(parts) < 2 || cmd == "" {
		return nil, 0, false
	}

	doc := findDoc(h.reg, text)
	if doc == nil {
		return nil, 0, false
	}

	hint := fmt.Sprintf("%s %s", doc.Command, doc.Arguments)
	col := h.promptLen + pos

	hintWidth := 2 + len(hint) + 3 + len(doc.Summary) // "  <hint> - <summary>"
	hintRows := 1
	if w := readline.GetScreenWidth(); w > 0 {
		hintRows = (hintWidth + w - 1) / w
	}

	fmt.Fprintf(os.Stdout, "\n\r\033[K  \033[36m%s\033[0m\033[34m - %s\033[0m\033[%dA\r\033[%dC",
		hint, doc.Summary, hintRows, col)

	return nil, 0, false
}

// findDoc looks up the documentation for a partly typed line.
func findDoc(reg *command.Registry, text string) *command.CommandDoc {
	return reg.Lookup(strings.Fields(text))
}

func runRepl(ctx context.Context, cfg *config.Config) error {
	reg, err := command.NewRegistry()
	if err != nil {
		return fmt.Errorf("loading command docs: %w", err)
	}

	// Log lines would interleave with replies; only failures are shown.
	logCfg := cfg.Logging
	logCfg.Level = "error"
	log := logging.New(logCfg, version)

	exec := bridge.NewExecutor(openBackend(cfg, log, reg), log)
	defer exec.Close()

	target := cfg.RedisAddr()
	if cfg.Backend == config.BackendMemory {
		target = "memory"
	}
	color.Green("reapi %s, %s backend at %s", version, cfg.Backend, target)

	homeDir, _ := os.UserHomeDir()
	hinter := &replHinter{reg: reg}

	rl, err := readline.NewEx(&readline.Config{
		HistoryFile:     filepath.Join(homeDir, ".reapi_history"),
		AutoComplete:    &replCompleter{reg: reg},
		Painter:         hinter,
		Listener:        hinter,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	r := &console{
		exec:   exec,
		reg:    reg,
		target: target,
		out:    rl.Stdout(),
		color:  true,
		confirm: func(question string) bool {
			color.Yellow("%s", question)
			rl.SetPrompt("(Y/N) ")
			answer, err := rl.Readline()
			if err != nil {
				return false
			}
			answer = strings.TrimSpace(answer)
			return answer != "" && (answer[0] == 'Y' || answer[0] == 'y')
		},
	}

	for {
		prompt := r.prompt()
		hinter.promptLen = len(prompt)
		rl.SetPrompt(prompt)

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		} else if err == io.EOF {
			return nil
		}

		if r.handleLine(ctx, line) {
			return nil
		}
	}
}
