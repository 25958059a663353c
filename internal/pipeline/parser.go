package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyStage reports a | at the start or end of a line or next to
	// another |.
	ErrEmptyStage = errors.New("empty pipeline stage")

	// ErrMissingTarget reports a redirection operator with no file after it.
	ErrMissingTarget = errors.New("redirection requires a file path")

	// ErrNoProgram reports a command made only of redirections.
	ErrNoProgram = errors.New("missing command")

	// ErrAmbiguousRedirect reports a redirection that would fight with a
	// pipe: < after the first stage or > before the last.
	ErrAmbiguousRedirect = errors.New("ambiguous redirect")
)

// Classify decides how a tokenized line is executed. The order is fixed:
// pipeline detection wins over built-in detection, so a built-in name used
// as a pipeline stage is looked up as an external program.
func Classify(tokens []string, isBuiltin func(name string) bool) Kind {
	if len(tokens) == 0 {
		return KindEmpty
	}
	for _, tok := range tokens {
		if tok == OpPipe {
			return KindPipeline
		}
	}
	if isBuiltin != nil && isBuiltin(tokens[0]) {
		return KindBuiltin
	}
	return KindExternal
}

// SplitPipeline cuts tokens at every | into stage token lists. Every stage
// must be non-empty.
func SplitPipeline(tokens []string) ([][]string, error) {
	var (
		stages  [][]string
		current []string
	)
	for _, tok := range tokens {
		if tok != OpPipe {
			current = append(current, tok)
			continue
		}
		if len(current) == 0 {
			return nil, fmt.Errorf("%w before %s (stage %d)", ErrEmptyStage, OpPipe, len(stages))
		}
		stages = append(stages, current)
		current = nil
	}
	if len(current) == 0 {
		return nil, fmt.Errorf("%w after %s (stage %d)", ErrEmptyStage, OpPipe, len(stages))
	}
	return append(stages, current), nil
}

// ParseRedirects extracts < and > from one command's tokens. The token after
// an operator is its target; both are dropped from Args. When an operator
// repeats, the last one wins.
func ParseRedirects(tokens []string) (Command, error) {
	cmd := Command{Args: make([]string, 0, len(tokens))}
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case OpRedirectIn, OpRedirectOut:
			if i+1 >= len(tokens) {
				return Command{}, fmt.Errorf("%s: %w", tokens[i], ErrMissingTarget)
			}
			target := tokens[i+1]
			if target == OpRedirectIn || target == OpRedirectOut || target == OpPipe {
				return Command{}, fmt.Errorf("%s: %w (got %q)", tokens[i], ErrMissingTarget, target)
			}
			if tokens[i] == OpRedirectIn {
				cmd.RedirectIn = target
			} else {
				cmd.RedirectOut = target
			}
			i++
		default:
			cmd.Args = append(cmd.Args, tokens[i])
		}
	}
	if len(cmd.Args) == 0 {
		return Command{}, ErrNoProgram
	}
	return cmd, nil
}

// Parse builds a Pipeline from a line classified as KindPipeline. Input
// redirection is allowed on the first stage and output redirection on the
// last; anywhere else it is rejected.
func Parse(tokens []string) (*Pipeline, error) {
	parts, err := SplitPipeline(tokens)
	if err != nil {
		return nil, err
	}
	if len(parts) < 2 {
		return nil, fmt.Errorf("pipeline needs at least two stages, got %d", len(parts))
	}

	p := &Pipeline{Stages: make([]Command, 0, len(parts))}
	last := len(parts) - 1
	for i, part := range parts {
		cmd, err := ParseRedirects(part)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		if cmd.RedirectIn != "" && i != 0 {
			return nil, fmt.Errorf("stage %d (%s): %w: %s inside a pipeline", i, cmd.Name(), ErrAmbiguousRedirect, OpRedirectIn)
		}
		if cmd.RedirectOut != "" && i != last {
			return nil, fmt.Errorf("stage %d (%s): %w: %s inside a pipeline", i, cmd.Name(), ErrAmbiguousRedirect, OpRedirectOut)
		}
		p.Stages = append(p.Stages, cmd)
	}
	return p, nil
}
