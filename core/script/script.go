// Package script defines walkthrough scripts: ordered, narrated steps that
// may ask the user to trigger a control or fill a field.
package script

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
)

type ActionKind string

const (
	// ActionInvoke triggers a named control when the target phrase is heard.
	ActionInvoke ActionKind = "invoke"
	// ActionCollect transcribes speech into a named field.
	ActionCollect ActionKind = "collect"
)

var (
	ErrEmptyScript   = errors.New("script: no steps")
	ErrInvalidAction = errors.New("script: invalid action")
	ErrEmptyStepText = errors.New("script: step text is empty")
)

// Action is the user action a step waits for.
type Action struct {
	Kind ActionKind `json:"kind" yaml:"kind" jsonschema:"title=Kind,description=What the user does to complete the step,enum=invoke,enum=collect"`
	// TargetPhrase is the phrase that triggers an invoke action.
	TargetPhrase string `json:"targetPhrase,omitempty" yaml:"targetPhrase,omitempty" jsonschema:"title=Target phrase,description=Phrase that triggers the control"`
	// ControlRef is the id of the control an invoke action clicks.
	ControlRef string `json:"controlRef,omitempty" yaml:"controlRef,omitempty" jsonschema:"title=Control,description=Id of the control to click"`
	// FieldRef is the id of the field a collect action fills.
	FieldRef string `json:"fieldRef,omitempty" yaml:"fieldRef,omitempty" jsonschema:"title=Field,description=Id of the field to fill"`
}

func Invoke(targetPhrase, controlRef string) *Action {
	return &Action{Kind: ActionInvoke, TargetPhrase: targetPhrase, ControlRef: controlRef}
}

func Collect(fieldRef string) *Action {
	return &Action{Kind: ActionCollect, FieldRef: fieldRef}
}

func (a *Action) IsInvoke() bool  { return a != nil && a.Kind == ActionInvoke }
func (a *Action) IsCollect() bool { return a != nil && a.Kind == ActionCollect }

func (a *Action) Validate() error {
	if a == nil {
		return nil
	}

	switch a.Kind {
	case ActionInvoke:
		if strings.TrimSpace(a.TargetPhrase) == "" {
			return fmt.Errorf("%w: invoke action needs a target phrase", ErrInvalidAction)
		}
		if strings.TrimSpace(a.ControlRef) == "" {
			return fmt.Errorf("%w: invoke action needs a control", ErrInvalidAction)
		}
	case ActionCollect:
		if strings.TrimSpace(a.FieldRef) == "" {
			return fmt.Errorf("%w: collect action needs a field", ErrInvalidAction)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, a.Kind)
	}

	return nil
}

// Step is one narrated unit of a walkthrough.
type Step struct {
	// ID is assigned by Load, starting at 1.
	ID   int    `json:"-" yaml:"-"`
	Text string `json:"text" yaml:"text" jsonschema:"title=Text,description=What is narrated for this step"`
	// FocusTarget is the id of the element highlighted while the step plays.
	FocusTarget string  `json:"focusTarget,omitempty" yaml:"focusTarget,omitempty" jsonschema:"title=Focus target,description=Id of the element to highlight"`
	Action      *Action `json:"action,omitempty" yaml:"action,omitempty" jsonschema:"title=Action,description=Optional action the step waits for"`
}

// TargetPhrase returns the phrase an invoke step listens for.
func (s Step) TargetPhrase() string {
	if s.Action.IsInvoke() {
		return s.Action.TargetPhrase
	}
	return ""
}

// Load copies steps, validates them and numbers them from 1. The input
// slice is left untouched, so a host can load the same definition again to
// get a fresh numbering.
func Load(steps []Step) ([]Step, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyScript
	}

	loaded := make([]Step, 0, len(steps))
	if err := copier.CopyWithOption(&loaded, &steps, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("failed to copy script steps: %w", err)
	}

	for i := range loaded {
		loaded[i].ID = i + 1
		if strings.TrimSpace(loaded[i].Text) == "" {
			return nil, fmt.Errorf("step %d: %w", i+1, ErrEmptyStepText)
		}
		if err := loaded[i].Action.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return loaded, nil
}
