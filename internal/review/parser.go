// Package review resolves the external reviewer binary, assembles review
// prompts from project state, executes the reviewer, and parses its verdict.
package review

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects which review checklist and output grammar a prompt uses.
type Mode int

const (
	// ModeRegular reviews staged changes against the active task's spec.
	ModeRegular Mode = iota
	// ModeDeep additionally validates a task state transition and is only
	// triggered on CompleteTask/BlockTask transitions.
	ModeDeep
)

// Verdict is the reviewer's overall judgment.
type Verdict int

const (
	VerdictFail Verdict = iota
	VerdictPass
	VerdictWarn
)

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "PASS"
	case VerdictWarn:
		return "WARN"
	default:
		return "FAIL"
	}
}

// Severity ranks a single reported issue.
type Severity int

const (
	SeverityWarn Severity = iota
	SeverityError
	SeverityCritical
)

func (s Severity) icon() string {
	switch s {
	case SeverityCritical:
		return "\U0001F534"
	case SeverityError:
		return "⚠️"
	default:
		return "\U0001F4A1"
	}
}

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityError:
		return "ERROR"
	default:
		return "WARN"
	}
}

// Issue is one reported problem with a staged change.
type Issue struct {
	Severity    Severity
	Description string
}

// Result is the parsed outcome of one reviewer invocation.
type Result struct {
	Verdict              Verdict
	StateTransitionValid bool // only meaningful in ModeDeep
	Issues               []Issue
}

// FormatErrorMessage renders Result as the denial text surfaced to the caller
// of a failed review.
func (r Result) FormatErrorMessage() string {
	var b strings.Builder
	b.WriteString("\n❌ Code Review Failed:\n\n")
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "   %s [%s] %s\n", issue.Severity.icon(), issue.Severity, issue.Description)
	}
	if !r.StateTransitionValid {
		b.WriteString("\n⛔ State transition is invalid. Please fix issues before changing task status.\n")
	}
	b.WriteString("\n\U0001F4A1 Fix the issues above and try again.\n")
	return b.String()
}

var (
	verdictRegexp         = regexp.MustCompile(`(?i)VERDICT:\s*(PASS|FAIL|WARN)`)
	stateTransitionRegexp = regexp.MustCompile(`(?i)STATE_TRANSITION_VALID:\s*(YES|NO)`)
	issueRegexp           = regexp.MustCompile(`(?i)-\s*\[Severity:\s*(CRITICAL|ERROR|WARN)\]\s*(.+)`)
)

// ParseOutput parses a reviewer's raw stdout into a Result, applying the
// same defaults the prompt's "Output format" footer promises: a missing
// VERDICT line defaults to Fail, a missing STATE_TRANSITION_VALID line in
// deep mode defaults to valid with an appended warning, and a Fail verdict
// with no parsed issues gets one synthetic Critical issue embedding the raw
// output so a denial message is never empty.
func ParseOutput(output string, mode Mode) Result {
	verdict := VerdictFail
	stateTransitionValid := true
	var issues []Issue

	if m := verdictRegexp.FindStringSubmatch(output); m != nil {
		switch strings.ToUpper(m[1]) {
		case "PASS":
			verdict = VerdictPass
		case "WARN":
			verdict = VerdictWarn
		default:
			verdict = VerdictFail
		}
	}

	if mode == ModeDeep {
		if m := stateTransitionRegexp.FindStringSubmatch(output); m != nil {
			stateTransitionValid = strings.EqualFold(m[1], "YES")
		} else {
			issues = append(issues, Issue{
				Severity:    SeverityWarn,
				Description: "Missing STATE_TRANSITION_VALID in deep review output; assumed YES",
			})
		}
	}

	for _, m := range issueRegexp.FindAllStringSubmatch(output, -1) {
		var sev Severity
		switch strings.ToUpper(m[1]) {
		case "CRITICAL":
			sev = SeverityCritical
		case "ERROR":
			sev = SeverityError
		default:
			sev = SeverityWarn
		}
		issues = append(issues, Issue{Severity: sev, Description: strings.TrimSpace(m[2])})
	}

	if verdict == VerdictFail && len(issues) == 0 {
		issues = append(issues, Issue{
			Severity:    SeverityCritical,
			Description: fmt.Sprintf("Review failed but no specific issues were parsed. Raw reviewer output:\n\n%s", output),
		})
	}

	return Result{Verdict: verdict, StateTransitionValid: stateTransitionValid, Issues: issues}
}
