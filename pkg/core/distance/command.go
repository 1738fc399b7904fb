package distance

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CommandSource runs an external helper that prints the distance in miles on stdout.
// The helper is invoked as `<name> <args...> <locationA> <locationB>` and prints -1
// when it cannot measure the pair.
type CommandSource struct {
	Name    string
	Args    []string
	WorkDir string
}

// NewCommandSource creates a CommandSource, e.g. NewCommandSource("node", []string{"ziphelper.js"}, "client")
func NewCommandSource(name string, args []string, workDir string) *CommandSource {
	return &CommandSource{Name: name, Args: args, WorkDir: workDir}
}

// Lookup runs the helper and parses its output. The context bounds the process lifetime.
func (s *CommandSource) Lookup(ctx context.Context, locationA, locationB string) (float64, error) {
	args := append(append([]string{}, s.Args...), locationA, locationB)
	cmd := exec.CommandContext(ctx, s.Name, args...)
	cmd.Dir = s.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		return -1, fmt.Errorf("distance helper failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	return parseMiles(stdout.String())
}

// parseMiles reads the helper's stdout, which is a single number
func parseMiles(output string) (float64, error) {
	val := strings.TrimSpace(output)
	if val == "" {
		return -1, fmt.Errorf("distance helper produced no output")
	}
	miles, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return -1, fmt.Errorf("failed to parse distance %q: %w", val, err)
	}
	return miles, nil
}
