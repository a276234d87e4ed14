package gitops

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
)

// FileEntry is one file in a status snapshot.
type FileEntry struct {
	Path   string `json:"path"`
	File   string `json:"file"`
	Status string `json:"status"`
}

// Status is a parsed git status result. It is recomputed on demand and
// never cached.
type Status struct {
	Branch   string      `json:"branch"`
	Staged   []FileEntry `json:"staged"`
	Unstaged []FileEntry `json:"unstaged"`
}

// DiffStats counts added and removed lines in a unified diff.
type DiffStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// statusNames maps porcelain status codes to client-facing names.
var statusNames = map[byte]string{
	'M': "modified",
	'A': "added",
	'D': "deleted",
	'R': "renamed",
	'C': "copied",
}

// defaultStatus is returned whenever git itself cannot be consulted.
func defaultStatus() *Status {
	return &Status{Branch: "unknown", Staged: []FileEntry{}, Unstaged: []FileEntry{}}
}

// Status invokes a branch-name query and a machine-readable status query and
// parses the result. Any execution failure degrades to the default snapshot;
// this function never returns an error.
func (g *Gateway) Status(ctx context.Context) *Status {
	branch, err := g.runner.Run(ctx, g.root, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		slog.Warn("gitops: branch query failed", "err", err)
		return defaultStatus()
	}

	porcelain, err := g.runner.Run(ctx, g.root, "status", "--porcelain")
	if err != nil {
		slog.Warn("gitops: status query failed", "err", err)
		return defaultStatus()
	}

	st := defaultStatus()
	st.Branch = strings.TrimSpace(branch)
	if st.Branch == "" {
		st.Branch = "unknown"
	}

	for _, line := range strings.Split(porcelain, "\n") {
		if len(line) < 4 {
			continue
		}
		index, worktree := line[0], line[1]
		path := strings.TrimSpace(line[3:])
		// Renames are reported as "old -> new"; the new path is the one
		// the dashboard cares about.
		if i := strings.LastIndex(path, " -> "); i >= 0 {
			path = path[i+4:]
		}
		entry := func(code byte) FileEntry {
			return FileEntry{Path: path, File: filepath.Base(path), Status: statusNames[code]}
		}

		if index == '?' && worktree == '?' {
			// Untracked files appear only in the unstaged list.
			e := entry(0)
			e.Status = "untracked"
			st.Unstaged = append(st.Unstaged, e)
			continue
		}
		// A file may legitimately appear in both lists, e.g. "MM".
		if name := statusNames[index]; name != "" {
			st.Staged = append(st.Staged, entry(index))
		}
		if name := statusNames[worktree]; name != "" {
			st.Unstaged = append(st.Unstaged, entry(worktree))
		}
	}

	return st
}

// ParseDiffStats scans unified-diff text counting added and removed lines.
// File header lines (+++/---) are excluded; empty input yields zeros.
func ParseDiffStats(diff string) DiffStats {
	var stats DiffStats
	for _, line := range strings.Split(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"):
		case strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			stats.Additions++
		case strings.HasPrefix(line, "-"):
			stats.Deletions++
		}
	}
	return stats
}
