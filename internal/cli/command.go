package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	sdkerrors "github.com/wagiedev/mathlink-go/internal/errors"
)

// ErrUnterminatedQuote indicates a command line ends inside a quoted word.
var ErrUnterminatedQuote = errors.New("unterminated quote in command line")

// LaunchSpec is the decoded form of a launch argument vector.
type LaunchSpec struct {
	// Name is the -linkname value.
	Name string
	// Mode is the -linkmode value.
	Mode string
	// Program is the kernel executable taken from Name.
	Program string
	// Args are the kernel arguments that follow the program in Name.
	Args []string
}

// ParseLinkArgs decodes a NUL-terminated argument vector. A nil element ends
// the vector. Only launch mode is supported.
func ParseLinkArgs(argv [][]byte) (*LaunchSpec, error) {
	args := make([]string, 0, len(argv))

	for _, buf := range argv {
		if buf == nil {
			break
		}

		if i := bytes.IndexByte(buf, 0); i >= 0 {
			buf = buf[:i]
		}

		args = append(args, string(buf))
	}

	spec := &LaunchSpec{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-linkname":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-linkname: missing value")
			}

			i++
			spec.Name = args[i]
		case "-linkmode":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("-linkmode: missing value")
			}

			i++
			spec.Mode = args[i]
		case "":
			// Empty trailing terminator.
		default:
			return nil, fmt.Errorf("unknown link argument %q", args[i])
		}
	}

	if spec.Mode != "launch" {
		return nil, fmt.Errorf("%w: %q", sdkerrors.ErrUnsupportedLinkMode, spec.Mode)
	}

	words, err := SplitCommandLine(spec.Name)
	if err != nil {
		return nil, fmt.Errorf("-linkname: %w", err)
	}

	if len(words) == 0 {
		return nil, fmt.Errorf("-linkname: empty kernel location")
	}

	spec.Program = words[0]
	spec.Args = words[1:]

	return spec, nil
}

// SplitCommandLine splits s into words. Double quotes group words containing
// spaces and are removed; backslashes are literal so Windows paths survive.
func SplitCommandLine(s string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		inWord  bool
		quoted  bool
	)

	for _, r := range s {
		switch {
		case r == '"':
			quoted = !quoted
			inWord = true
		case !quoted && (r == ' ' || r == '\t' || r == '\n'):
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quoted {
		return nil, ErrUnterminatedQuote
	}

	if inWord {
		words = append(words, current.String())
	}

	return words, nil
}

// BuildEnvironment returns the current environment with extra variables
// added or overridden. Extra keys are applied in sorted order.
func BuildEnvironment(extra map[string]string) []string {
	env := os.Environ()

	env = append(env, "MATHLINK_CLIENT=mathlink-go")

	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		env = append(env, fmt.Sprintf("%s=%s", key, extra[key]))
	}

	return env
}
