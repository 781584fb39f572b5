package provider

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Cmdline implements Provider by shelling out to a CLI tool (claude, codex,
// ollama run, ...). The prompt is written to stdin and stdout is returned as
// the completion. Timeouts come from the caller's context; the process is
// killed on cancellation.
type Cmdline struct {
	command string
	args    []string
}

// NewCmdline creates a cmdline provider. The command string may embed
// arguments ("claude -p"); an empty command defaults to "claude".
func NewCmdline(command string) *Cmdline {
	if command == "" {
		command = "claude"
	}
	fields := strings.Fields(command)
	return &Cmdline{
		command: fields[0],
		args:    fields[1:],
	}
}

// Generate runs the CLI with the prompt on stdin and returns trimmed stdout.
func (p *Cmdline) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	// Generation options are not portable across CLI tools; the configured
	// command string is responsible for model/length flags.
	cmd := exec.CommandContext(ctx, p.command, p.args...)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return "", &BackendError{Backend: TypeCmdline, Op: p.command, Err: err}
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", &BackendError{Backend: TypeCmdline, Op: p.command, Err: fmt.Errorf("empty completion")}
	}
	return out, nil
}

// Name returns TypeCmdline
func (p *Cmdline) Name() Type {
	return TypeCmdline
}
