package command

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

//go:embed simple_commands.json
var commandsJSON []byte

// consoleCommands are handled by the console itself and never reach a
// backend.
var consoleCommands = []CommandDoc{
	{Command: "EXIT", Summary: "Exit the console", Group: "application"},
	{Command: "HELP", Summary: "Show help for a command", Arguments: "[command]", Group: "application"},
	{Command: "CLEAR", Summary: "Clear the screen", Group: "application"},
	{Command: "USE", Summary: "Run following commands against another database", Arguments: "db", Group: "application"},
}

// dangerousCommands need confirmation in the console.
var dangerousCommands = []string{
	"FLUSHDB", "FLUSHALL", "KEYS", "PEXPIRE", "DEL", "CONFIG",
	"SHUTDOWN", "BGREWRITEAOF", "BGSAVE", "SAVE", "SPOP", "SREM",
	"RENAME", "DEBUG", "SWAPDB",
}

// Registry holds the documentation of known commands. The console uses it
// for completion, hints and HELP, and the metrics use it to bound the
// command label. Names are stored uppercased.
//
// A Registry is not safe for concurrent mutation; merge server commands
// before sharing it.
type Registry struct {
	docs      map[string]*CommandDoc
	names     []string // sorted
	dangerous map[string]bool
}

// NewRegistry loads the embedded command docs.
func NewRegistry() (*Registry, error) {
	var docs []CommandDoc
	if err := json.Unmarshal(commandsJSON, &docs); err != nil {
		return nil, fmt.Errorf("parsing embedded command docs: %w", err)
	}

	r := &Registry{
		docs:      make(map[string]*CommandDoc, len(docs)+len(consoleCommands)),
		dangerous: make(map[string]bool, len(dangerousCommands)),
	}
	for _, doc := range append(docs, consoleCommands...) {
		r.add(doc)
	}
	for _, name := range dangerousCommands {
		r.dangerous[name] = true
	}
	return r, nil
}

func (r *Registry) add(doc CommandDoc) {
	doc.Command = strings.ToUpper(doc.Command)
	if _, exists := r.docs[doc.Command]; !exists {
		i := sort.SearchStrings(r.names, doc.Command)
		r.names = append(r.names, "")
		copy(r.names[i+1:], r.names[i:])
		r.names[i] = doc.Command
	}
	r.docs[doc.Command] = &doc
}

// Get returns the documentation of a command, or nil. Compound names such
// as "CLIENT INFO" are looked up as given.
func (r *Registry) Get(cmd string) *CommandDoc {
	return r.docs[strings.ToUpper(cmd)]
}

// Lookup finds the documentation for a tokenized command line, preferring
// a compound name made of the first two words ("CLIENT INFO") over the
// first word alone.
func (r *Registry) Lookup(words []string) *CommandDoc {
	if len(words) == 0 {
		return nil
	}
	if len(words) > 1 {
		if doc := r.Get(words[0] + " " + words[1]); doc != nil {
			return doc
		}
	}
	return r.Get(words[0])
}

// Len is the number of documented commands.
func (r *Registry) Len() int {
	return len(r.names)
}

// GetCommands returns the command names starting with prefix, sorted.
func (r *Registry) GetCommands(prefix string) []string {
	prefix = strings.ToUpper(prefix)
	var matches []string
	for i := sort.SearchStrings(r.names, prefix); i < len(r.names); i++ {
		if !strings.HasPrefix(r.names[i], prefix) {
			break
		}
		matches = append(matches, r.names[i])
	}
	return matches
}

// IsDangerous reports whether the console should ask before running cmd.
func (r *Registry) IsDangerous(cmd string) bool {
	return r.dangerous[strings.ToUpper(cmd)]
}

// MergeServerCommands adds the commands a server reports through COMMAND.
// Documented commands keep their docs; new ones get an argument hint built
// from their arity. Commands in the @dangerous ACL category are marked
// dangerous.
func (r *Registry) MergeServerCommands(cmds []ServerCommand) {
	for _, sc := range cmds {
		r.mergeOne(sc)
		for _, sub := range sc.Subcommands {
			r.mergeOne(sub)
		}
	}
}

func (r *Registry) mergeOne(sc ServerCommand) {
	name := strings.ToUpper(sc.Name)
	for _, cat := range sc.ACLCats {
		if cat == "@dangerous" && !strings.Contains(name, " ") {
			r.dangerous[name] = true
		}
	}
	if r.docs[name] != nil {
		return
	}
	r.add(CommandDoc{
		Command:   name,
		Arguments: arityHint(sc.Arity),
		Group:     primaryACLGroup(sc.ACLCats),
	})
}

// arityHint renders placeholder arguments for a COMMAND arity. The arity
// counts the command name; a negative arity is a minimum.
func arityHint(arity int64) string {
	n := arity
	if n < 0 {
		n = -n
	}
	args := make([]string, 0, n)
	for i := int64(1); i < n; i++ {
		args = append(args, fmt.Sprintf("arg%d", i))
	}
	if arity < 0 {
		args = append(args, "[arg ...]")
	}
	return strings.Join(args, " ")
}

// metaCategories describe how a command behaves rather than what it
// operates on.
var metaCategories = map[string]bool{
	"@read": true, "@write": true, "@fast": true, "@slow": true,
	"@admin": true, "@dangerous": true, "@keyspace": true, "@blocking": true,
}

// primaryACLGroup picks a group name from ACL categories: the first domain
// category, else "admin" for admin commands, else "".
func primaryACLGroup(cats []string) string {
	admin := false
	for _, cat := range cats {
		if strings.HasPrefix(cat, "@") && !metaCategories[cat] {
			return cat[1:]
		}
		admin = admin || cat == "@admin"
	}
	if admin {
		return "admin"
	}
	return ""
}
