package statemachine

import (
	"testing"

	"github.com/danshapiro/autoeng/internal/model"
)

func TestValidateTransitionFromIdleAllowsOnlyPlanning(t *testing.T) {
	if err := ValidateTransition(model.StateIdle, model.StatePlanning); err != nil {
		t.Errorf("Idle -> Planning should be allowed, got %v", err)
	}
	if err := ValidateTransition(model.StateIdle, model.StateCompleted); err == nil {
		t.Error("Idle -> Completed should be rejected")
	}
	if err := ValidateTransition(model.StateIdle, model.StateReviewing); err == nil {
		t.Error("Idle -> Reviewing should be rejected")
	}
}

func TestValidateTransitionRejectsSkippingTesting(t *testing.T) {
	if err := ValidateTransition(model.StatePlanning, model.StateCompleted); err == nil {
		t.Error("Planning -> Completed should be rejected")
	}
}

func TestValidateTransitionAllowsRollbackFromTestingToCoding(t *testing.T) {
	if err := ValidateTransition(model.StateTesting, model.StateCoding); err != nil {
		t.Errorf("Testing -> Coding should be allowed, got %v", err)
	}
}

func TestValidateTransitionAllowsBlockedFromAnyActiveState(t *testing.T) {
	if err := ValidateTransition(model.StateCoding, model.StateBlocked); err != nil {
		t.Errorf("Coding -> Blocked should be allowed, got %v", err)
	}
	if err := ValidateTransition(model.StateBlocked, model.StateTesting); err != nil {
		t.Errorf("Blocked -> Testing should be allowed, got %v", err)
	}
}

func TestValidateTransitionSameStateAlwaysAllowed(t *testing.T) {
	if err := ValidateTransition(model.StateCoding, model.StateCoding); err != nil {
		t.Errorf("same-state transition should be allowed, got %v", err)
	}
}

func TestNextStatesForCoding(t *testing.T) {
	next := NextStates(model.StateCoding)
	want := map[model.StateID]bool{model.StateTesting: true, model.StateReviewing: true, model.StateBlocked: true}
	if len(next) != len(want) {
		t.Fatalf("NextStates(Coding) = %v", next)
	}
	for _, s := range next {
		if !want[s] {
			t.Errorf("unexpected next state %s", s)
		}
	}
}

func TestRecommendNextState(t *testing.T) {
	got, ok := RecommendNextState(model.StatePlanning)
	if !ok || got != model.StateCoding {
		t.Errorf("RecommendNextState(Planning) = %v, %v", got, ok)
	}
	if _, ok := RecommendNextState(model.StateBlocked); ok {
		t.Error("RecommendNextState(Blocked) should require a human decision")
	}
}

func TestIsTerminalAndActiveState(t *testing.T) {
	if !IsTerminalState(model.StateCompleted) || !IsTerminalState(model.StateBlocked) {
		t.Error("Completed and Blocked should be terminal")
	}
	if !IsActiveState(model.StateCoding) || IsActiveState(model.StateCompleted) {
		t.Error("Coding should be active, Completed should not")
	}
}
