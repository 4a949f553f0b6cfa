package preflight

import (
	"context"
	"log/slog"

	"github.com/Aman-CERP/serverpreflight/internal/config"
)

// Validator checks one area of the configuration before services start.
type Validator interface {
	Name() string
	Run(ctx context.Context) Result
}

// Constructor builds a validator from the resolved configuration.
type Constructor func(snap *config.Snapshot) (Validator, error)

// Step is one named check of a validator.
type Step struct {
	Name  string
	Check func(ctx context.Context) Outcome
}

// Result collects the outcomes of a validator run.
type Result struct {
	Validator string    `json:"validator"`
	Status    Status    `json:"status"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Fatal returns the failing outcome, if any.
func (r Result) Fatal() (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Status == StatusFail {
			return o, true
		}
	}
	return Outcome{}, false
}

// Warnings returns the warning outcomes in the order they were recorded.
func (r Result) Warnings() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusWarn {
			out = append(out, o)
		}
	}
	return out
}

// RunSteps runs steps in order. Warnings are logged and the run continues;
// the first failure is recorded and the remaining steps are skipped.
func RunSteps(ctx context.Context, logger *slog.Logger, validator string, steps []Step) Result {
	if logger == nil {
		logger = slog.Default()
	}
	res := Result{Validator: validator, Status: StatusPass}

	for _, step := range steps {
		var o Outcome
		if err := ctx.Err(); err != nil {
			o = Fail("", "preflight interrupted: "+err.Error())
		} else {
			o = step.Check(ctx)
		}
		o.Check = step.Name
		res.Outcomes = append(res.Outcomes, o)

		switch o.Status {
		case StatusWarn:
			logger.Warn(o.Headline(),
				slog.String("validator", validator),
				slog.String("check", step.Name),
				slog.String("code", o.Code))
			if res.Status < StatusWarn {
				res.Status = StatusWarn
			}
		case StatusFail:
			logger.Error(o.Headline(),
				slog.String("validator", validator),
				slog.String("check", step.Name),
				slog.String("code", o.Code))
			res.Status = StatusFail
			return res
		default:
			logger.Debug("preflight check passed",
				slog.String("validator", validator),
				slog.String("check", step.Name))
		}
	}
	return res
}
