package mount

import (
	"fmt"
	"strings"

	"github.com/en9inerd/go-mount/pipeline"
)

// Policy decides what a Router reports to its enclosing chain after
// delegating a matched request.
type Policy uint8

const (
	// AlwaysStop halts the enclosing chain.
	AlwaysStop Policy = iota
	// AlwaysContinue lets the enclosing chain go on with its next stage.
	AlwaysContinue
	// PassThrough reports whatever the nested pipeline returned.
	PassThrough
)

// ParsePolicy parses the textual form used in configuration files.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "terminal", "stop":
		return AlwaysStop, nil
	case "non-terminal", "nonterminal", "continue":
		return AlwaysContinue, nil
	case "filter", "pass-through", "passthrough":
		return PassThrough, nil
	default:
		return 0, fmt.Errorf("unknown mount policy %q", s)
	}
}

func (p Policy) String() string {
	switch p {
	case AlwaysStop:
		return "terminal"
	case AlwaysContinue:
		return "non-terminal"
	case PassThrough:
		return "filter"
	default:
		return fmt.Sprintf("Policy(%d)", uint8(p))
	}
}

func (p Policy) resolve(nested pipeline.Signal) pipeline.Signal {
	switch p {
	case AlwaysStop:
		return pipeline.Stop
	case AlwaysContinue:
		return pipeline.Continue
	default:
		return nested
	}
}
