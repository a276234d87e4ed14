// Package gitops translates validated client action requests into git
// subprocess invocations and parses git's textual output.
//
// This is the security boundary of the engine: every request is validated
// against null bytes, path escapes, and oversized commit messages before a
// subprocess is spawned, and git is always invoked with an explicit argument
// vector, never through a shell.
package gitops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/groblegark/dashd/internal/pathcheck"
)

// MaxCommitMessage is the longest accepted commit message, in characters.
const MaxCommitMessage = 10000

// Action kinds accepted by the gateway.
const (
	ActionStage   = "stage"
	ActionUnstage = "unstage"
	ActionCommit  = "commit"
	ActionRevert  = "revert"
)

var (
	ErrInvalidCommitMessage = errors.New("invalid commit message")
	ErrUnknownAction        = errors.New("unknown git action")
	ErrNoFiles              = errors.New("no files specified")
)

// ActionRequest is a client-requested repository mutation. It is created
// from a parsed inbound message and consumed exactly once.
type ActionRequest struct {
	Kind    string
	Files   []string
	Message string
}

// Runner executes a git invocation and returns its stdout. The production
// runner shells out to the git executable; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// PathValidator is the external collaborator consulted before any
// filesystem access. A validation error means "do not touch the filesystem".
type PathValidator func(path, root string) error

// Gateway validates and executes git operations against one project root.
type Gateway struct {
	root     string
	runner   Runner
	validate PathValidator
}

// New returns a gateway for the given project root using the real git
// executable and the default path validator.
func New(root string) *Gateway {
	return &Gateway{root: root, runner: execRunner{}, validate: pathcheck.Validate}
}

// NewWithRunner returns a gateway with a custom runner and validator.
// A nil validator falls back to the default.
func NewWithRunner(root string, r Runner, v PathValidator) *Gateway {
	if v == nil {
		v = pathcheck.Validate
	}
	return &Gateway{root: root, runner: r, validate: v}
}

// Root returns the project root this gateway operates on.
func (g *Gateway) Root() string { return g.root }

// Execute validates req and performs exactly one git invocation.
// Validation failures are returned before any subprocess is spawned.
func (g *Gateway) Execute(ctx context.Context, req *ActionRequest) (string, error) {
	for _, f := range req.Files {
		if err := g.validate(f, g.root); err != nil {
			return "", err
		}
	}

	switch req.Kind {
	case ActionStage:
		if len(req.Files) == 0 {
			return g.runner.Run(ctx, g.root, "add", "-A")
		}
		return g.runner.Run(ctx, g.root, append([]string{"add", "--"}, req.Files...)...)

	case ActionUnstage:
		if len(req.Files) == 0 {
			return "", ErrNoFiles
		}
		return g.runner.Run(ctx, g.root, append([]string{"restore", "--staged", "--"}, req.Files...)...)

	case ActionCommit:
		if strings.ContainsRune(req.Message, '\x00') || len(req.Message) > MaxCommitMessage {
			return "", ErrInvalidCommitMessage
		}
		return g.runner.Run(ctx, g.root, "commit", "-m", req.Message)

	case ActionRevert:
		if len(req.Files) == 0 {
			return "", ErrNoFiles
		}
		return g.runner.Run(ctx, g.root, append([]string{"checkout", "--"}, req.Files...)...)

	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, req.Kind)
	}
}

// FileDiff returns the diff for one file, scoped to the index when staged is
// true. An invalid path or a git failure yields an empty string, never an
// error: the diff view simply shows nothing.
func (g *Gateway) FileDiff(ctx context.Context, file string, staged bool) string {
	if err := g.validate(file, g.root); err != nil {
		return ""
	}

	args := []string{"diff"}
	if staged {
		args = append(args, "--cached")
	}
	args = append(args, "--", file)

	out, err := g.runner.Run(ctx, g.root, args...)
	if err != nil {
		slog.Warn("gitops: diff failed", "file", file, "staged", staged, "err", err)
		return ""
	}
	return out
}

// execRunner invokes the external git executable with an explicit argument
// vector and the project root as working directory.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], msg)
	}
	return stdout.String(), nil
}
