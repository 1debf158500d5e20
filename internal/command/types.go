package command

// Invocation is a single command to run against one logical database.
// It is built once per request and discarded after the response.
type Invocation struct {
	DB    int      // logical database index, 0 when not given
	Name  string   // command name, never empty for a valid invocation
	Args  []string // positional arguments, in order
	Codec string   // payload codec name e.g. "gzip", empty if none
}

// ParsedCommand represents a command line typed into the console.
type ParsedCommand struct {
	Text     string      // original input text
	Name     string      // command name (uppercased), empty if none
	Args     []string    // command arguments, empty if none
	Modifier string      // codec name e.g. "gzip", empty if none
	Doc      *CommandDoc // documentation, nil if not found
}

// Invocation turns the console line into an invocation against db.
func (p *ParsedCommand) Invocation(db int) *Invocation {
	return &Invocation{
		DB:    db,
		Name:  p.Name,
		Args:  p.Args,
		Codec: p.Modifier,
	}
}

// CommandDoc represents the documentation for a single Redis command.
type CommandDoc struct {
	Command   string `json:"command"`
	Summary   string `json:"summary"`
	Arguments string `json:"arguments"`
	Since     string `json:"since"`
	Group     string `json:"group"`
}

// ServerCommand represents a command discovered from the Redis COMMAND response.
// Defined here (not in conn) so conn can produce these and command can consume
// them without a circular import.
type ServerCommand struct {
	Name        string          // e.g. "CONFIG SET" (uppercased, pipe replaced with space)
	Arity       int64           // positive = exact arg count, negative = minimum
	ACLCats     []string        // e.g. ["@string", "@read", "@fast"]
	Subcommands []ServerCommand // recursive subcommands
}
