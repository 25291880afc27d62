package review

import (
	"strings"
	"testing"
)

func TestParseOutputPassVerdict(t *testing.T) {
	result := ParseOutput("\nVERDICT: PASS\nISSUES:\n", ModeRegular)
	if result.Verdict != VerdictPass {
		t.Errorf("verdict = %v, want Pass", result.Verdict)
	}
	if len(result.Issues) != 0 {
		t.Errorf("issues = %v, want none", result.Issues)
	}
}

func TestParseOutputFailWithIssues(t *testing.T) {
	output := `
VERDICT: FAIL
ISSUES:
- [Severity: ERROR] Missing error handling
- [Severity: WARN] Consider adding documentation
`
	result := ParseOutput(output, ModeRegular)
	if result.Verdict != VerdictFail {
		t.Fatalf("verdict = %v, want Fail", result.Verdict)
	}
	if len(result.Issues) != 2 {
		t.Fatalf("issues = %v, want 2", result.Issues)
	}
	if result.Issues[0].Severity != SeverityError {
		t.Errorf("issues[0].Severity = %v, want Error", result.Issues[0].Severity)
	}
}

func TestParseOutputDeepReview(t *testing.T) {
	output := `
VERDICT: PASS
STATE_TRANSITION_VALID: YES
ISSUES:
- [Severity: WARN] Minor style issue
`
	result := ParseOutput(output, ModeDeep)
	if result.Verdict != VerdictPass {
		t.Fatalf("verdict = %v, want Pass", result.Verdict)
	}
	if !result.StateTransitionValid {
		t.Errorf("StateTransitionValid = false, want true")
	}
	if len(result.Issues) != 1 {
		t.Errorf("issues = %v, want 1", result.Issues)
	}
}

func TestParseOutputMissingStateTransitionDefaultsValidWithWarning(t *testing.T) {
	result := ParseOutput("VERDICT: PASS\nISSUES:\n", ModeDeep)
	if !result.StateTransitionValid {
		t.Errorf("StateTransitionValid = false, want true (default)")
	}
	if len(result.Issues) != 1 || result.Issues[0].Severity != SeverityWarn {
		t.Fatalf("issues = %+v, want one synthetic Warn issue", result.Issues)
	}
}

func TestParseOutputNoVerdictDefaultsFail(t *testing.T) {
	result := ParseOutput("Some random output without a verdict line", ModeRegular)
	if result.Verdict != VerdictFail {
		t.Errorf("verdict = %v, want Fail", result.Verdict)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("issues = %v, want 1 synthetic issue", result.Issues)
	}
}

func TestFormatErrorMessageIncludesTransitionWarning(t *testing.T) {
	result := Result{
		Verdict:              VerdictFail,
		StateTransitionValid: false,
		Issues:               []Issue{{Severity: SeverityCritical, Description: "broken"}},
	}
	msg := result.FormatErrorMessage()
	if !strings.Contains(msg, "broken") || !strings.Contains(msg, "State transition is invalid") {
		t.Errorf("FormatErrorMessage = %q", msg)
	}
}
