package gate

import "context"

// Auto is a policy gate for non-interactive runs: it approves every
// successful round and finalizes as soon as the confidence bar is cleared.
// Failed rounds stop the session so errors never auto-approve through.
type Auto struct{}

// NewAuto creates an auto-approval gate
func NewAuto() *Auto {
	return &Auto{}
}

// Decide applies the auto-approval policy
func (a *Auto) Decide(ctx context.Context, p Prompt) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return DecisionStop, err
	}
	if p.Error != "" {
		return DecisionStop, nil
	}
	if p.ReadyToFinalize {
		return DecisionFinalize, nil
	}
	return DecisionApprove, nil
}

// Name returns "auto"
func (a *Auto) Name() string {
	return "auto"
}
