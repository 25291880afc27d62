// Package gitutil wraps the git CLI as a set of narrow, testable Go functions.
// It never shells out to libgit2; every call is a plain os/exec invocation.
package gitutil

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
)

// CommandError carries the failing git invocation's arguments and captured
// stdio so callers can build diagnostic messages without re-running git.
type CommandError struct {
	Args   []string
	Stdout string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + strings.TrimSpace(e.Stderr)
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

func runGit(dir string, args ...string) (string, string, error) {
	// Disable background auto-maintenance so state-machine commits stay
	// deterministic and don't spawn extra long-running git helpers.
	base := []string{
		"-C", dir,
		"-c", "maintenance.auto=0",
		"-c", "gc.auto=0",
	}
	cmd := exec.Command("git", append(base, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	outStr := stdout.String()
	errStr := stderr.String()
	if err != nil {
		return outStr, errStr, &CommandError{Args: args, Stdout: outStr, Stderr: errStr, Err: err}
	}
	return outStr, errStr, nil
}

// IsRepo reports whether dir is inside a git working tree.
func IsRepo(dir string) bool {
	out, _, err := runGit(dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false
	}
	return strings.TrimSpace(out) == "true"
}

// TopLevel returns the working tree root for dir ("git rev-parse --show-toplevel").
func TopLevel(dir string) (string, error) {
	out, _, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SuperprojectWorkingTree returns the superproject root when dir is a
// submodule checkout, or "" if dir has no superproject.
func SuperprojectWorkingTree(dir string) (string, error) {
	out, _, err := runGit(dir, "rev-parse", "--show-superproject-working-tree")
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(out), nil
}

// HeadSHA returns the current HEAD commit SHA.
func HeadSHA(dir string) (string, error) {
	out, _, err := runGit(dir, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// StatusPorcelain returns "git status --porcelain" output, unfiltered.
func StatusPorcelain(dir string) (string, error) {
	out, _, err := runGit(dir, "status", "--porcelain")
	if err != nil {
		return "", err
	}
	return out, nil
}

// StagedFiles returns the list of currently staged paths ("git diff --cached --name-only").
func StagedFiles(dir string) ([]string, error) {
	out, _, err := runGit(dir, "diff", "--cached", "--name-only")
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(out), nil
}

// HasStagedChanges reports whether the index has any staged changes.
func HasStagedChanges(dir string) (bool, error) {
	files, err := StagedFiles(dir)
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}

// StagedDiff returns "git diff --cached" unabridged.
func StagedDiff(dir string) (string, error) {
	out, _, err := runGit(dir, "diff", "--cached")
	if err != nil {
		return "", err
	}
	return out, nil
}

// AddPath stages exactly one path, following the state machine's rule of
// never staging anything but the file it is about to commit.
func AddPath(dir, path string) error {
	_, _, err := runGit(dir, "add", "--", path)
	return err
}

// ensureIdentity retries a failed git invocation with a fallback committer
// identity when the failure looks like a missing user.name/user.email.
func ensureIdentity(dir string, args ...string) (string, string, error) {
	out, errOut, err := runGit(dir, args...)
	if err == nil {
		return out, errOut, nil
	}
	if strings.Contains(err.Error(), "Author identity unknown") ||
		strings.Contains(err.Error(), "Please tell me who you are") ||
		strings.Contains(err.Error(), "unable to auto-detect email address") {
		withIdentity := append([]string{
			"-c", "user.name=autoeng-bot",
			"-c", "user.email=autoeng-bot@local",
		}, args...)
		return runGit(dir, withIdentity...)
	}
	return out, errOut, err
}

// Commit creates a commit with the given message over whatever is currently
// staged. It does not stage anything itself.
func Commit(dir, message string) error {
	_, _, err := ensureIdentity(dir, "commit", "-m", message)
	return err
}

// Tag creates a lightweight tag pointing at HEAD.
func Tag(dir, name string) error {
	_, _, err := runGit(dir, "tag", name)
	return err
}

// TagsWithPrefix lists tag names starting with prefix, newest-first by
// git's default refname sort is not guaranteed; callers re-sort by the
// embedded timestamp.
func TagsWithPrefix(dir, prefix string) ([]string, error) {
	out, _, err := runGit(dir, "tag", "--list", prefix+"*")
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(out), nil
}

// TagCommit resolves a tag to the commit SHA it points at.
func TagCommit(dir, tag string) (string, error) {
	out, _, err := runGit(dir, "rev-list", "-n", "1", tag)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ShowFileAt returns the content of path as it existed in ref, without
// touching the working tree or HEAD.
func ShowFileAt(dir, ref, path string) (string, error) {
	out, _, err := runGit(dir, "show", ref+":"+path)
	if err != nil {
		return "", err
	}
	return out, nil
}

// Log returns "git log -n<limit> --oneline".
func Log(dir string, limit int) (string, error) {
	out, _, err := runGit(dir, "log", fmt.Sprintf("-%d", limit), "--oneline")
	if err != nil {
		return "", err
	}
	return out, nil
}

// CommitInfo is the subset of a commit's metadata the state machine needs to
// rebuild a StateSnapshot from a tag.
type CommitInfo struct {
	SHA      string
	Message  string
	UnixTime int64
}

// ShowCommit resolves ref to its SHA, subject+body message and committer
// unix timestamp in one invocation.
func ShowCommit(dir, ref string) (CommitInfo, error) {
	out, _, err := runGit(dir, "log", "-1", "--format=%H%x00%ct%x00%B", ref)
	if err != nil {
		return CommitInfo{}, err
	}
	parts := strings.SplitN(strings.TrimRight(out, "\n"), "\x00", 3)
	if len(parts) != 3 {
		return CommitInfo{}, fmt.Errorf("unexpected git log output for %s", ref)
	}
	var unixTime int64
	if _, err := fmt.Sscanf(parts[1], "%d", &unixTime); err != nil {
		return CommitInfo{}, fmt.Errorf("parse commit time for %s: %w", ref, err)
	}
	return CommitInfo{SHA: parts[0], Message: strings.TrimRight(parts[2], "\n"), UnixTime: unixTime}, nil
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
