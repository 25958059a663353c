package pipeline

// Operator tokens. They are only recognised as whole tokens: "a>b" is an
// ordinary argument.
const (
	OpPipe        = "|" // stdout → stdin of the next stage
	OpRedirectIn  = "<" // read stdin from file (must exist)
	OpRedirectOut = ">" // write stdout to file (create/truncate)
)

// Kind is the classification of one tokenized line.
type Kind int

const (
	KindEmpty    Kind = iota // nothing to do
	KindPipeline             // two or more external stages joined by |
	KindBuiltin              // first token names a built-in
	KindExternal             // a single external program
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindPipeline:
		return "pipeline"
	case KindBuiltin:
		return "builtin"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Command is one program invocation with its redirections resolved.
type Command struct {
	Args        []string // program name followed by its arguments
	RedirectIn  string   // file path for stdin redirect (<), empty if none
	RedirectOut string   // file path for stdout redirect (>), empty if none
}

// Name returns the program name.
func (c Command) Name() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// Pipeline is an ordered list of stages; stage i's stdout feeds stage i+1.
type Pipeline struct {
	Stages []Command
}
