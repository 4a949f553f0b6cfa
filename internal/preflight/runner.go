package preflight

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Aman-CERP/serverpreflight/internal/config"
	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
)

// Registry holds validator constructors in registration order.
type Registry struct {
	names        []string
	constructors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register adds a constructor. Registering a name twice replaces the
// constructor but keeps the original position.
func (r *Registry) Register(name string, c Constructor) {
	if _, ok := r.constructors[name]; !ok {
		r.names = append(r.names, name)
	}
	r.constructors[name] = c
}

// Names returns the registered validator names in order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Runner constructs and runs every registered validator against one snapshot.
type Runner struct {
	registry *Registry
	verbose  bool
	asJSON   bool
	output   io.Writer
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithVerbose includes passing checks in the text report.
func WithVerbose(verbose bool) Option {
	return func(r *Runner) {
		r.verbose = verbose
	}
}

// WithJSON prints the report as JSON.
func WithJSON(asJSON bool) Option {
	return func(r *Runner) {
		r.asJSON = asJSON
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.output = w
	}
}

// WithLogger sets the logger handed to validators' step runs.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates a Runner over registry.
func NewRunner(registry *Registry, opts ...Option) *Runner {
	r := &Runner{
		registry: registry,
		output:   os.Stdout,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run constructs every validator fresh from snap and runs them in order.
// A validator that cannot be constructed is reported as a failure.
func (r *Runner) Run(ctx context.Context, snap *config.Snapshot) *Report {
	report := &Report{StartedAt: r.now()}

	for _, name := range r.registry.names {
		v, err := r.registry.constructors[name](snap)
		if err != nil {
			r.logger.Error("failed to construct validator",
				append([]any{slog.String("validator", name)}, perrors.FormatForLog(err)...)...)
			o := Fail(perrors.GetCode(err), err.Error())
			o.Check = "construct"
			report.Results = append(report.Results, Result{
				Validator: name,
				Status:    StatusFail,
				Outcomes:  []Outcome{o},
			})
			continue
		}

		r.logger.Debug("running validator", slog.String("validator", v.Name()))
		report.Results = append(report.Results, v.Run(ctx))
	}

	report.Duration = r.now().Sub(report.StartedAt)
	return report
}

// Report is the outcome of one preflight run.
type Report struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Results   []Result      `json:"results"`
}

// HasFatal returns true if any validator failed.
func (rep *Report) HasFatal() bool {
	for _, res := range rep.Results {
		if res.Status == StatusFail {
			return true
		}
	}
	return false
}

// Fatals returns every failing outcome across validators.
func (rep *Report) Fatals() []Outcome {
	var out []Outcome
	for _, res := range rep.Results {
		if o, ok := res.Fatal(); ok {
			out = append(out, o)
		}
	}
	return out
}

// Warnings returns every warning outcome across validators.
func (rep *Report) Warnings() []Outcome {
	var out []Outcome
	for _, res := range rep.Results {
		out = append(out, res.Warnings()...)
	}
	return out
}

// SummaryStatus returns a summary status string for the report.
func (rep *Report) SummaryStatus() string {
	if rep.HasFatal() {
		return "failed"
	}
	if len(rep.Warnings()) > 0 {
		return "ready_with_warnings"
	}
	return "ready"
}

// Err returns a coded error when the report holds a failure.
func (rep *Report) Err() error {
	fatals := rep.Fatals()
	if len(fatals) == 0 {
		return nil
	}
	codes := make([]string, 0, len(fatals))
	for _, o := range fatals {
		codes = append(codes, o.Code)
	}
	return perrors.New(perrors.ErrCodePreflightFailed,
		fmt.Sprintf("preflight failed: %s", strings.Join(codes, ", ")), nil).
		WithDetail("codes", strings.Join(codes, ",")).
		WithSuggestion("Fix the reported settings and run preflight again")
}

// PrintReport prints the report to the configured output.
func (r *Runner) PrintReport(rep *Report) error {
	if r.asJSON {
		return rep.WriteJSON(r.output)
	}
	rep.WriteText(r.output, r.verbose)
	return nil
}

// WriteJSON writes the report and its summary status as indented JSON.
func (rep *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Status string `json:"status"`
		*Report
	}{Status: rep.SummaryStatus(), Report: rep})
}

// WriteText writes a human-readable report. Passing checks are listed only when verbose.
func (rep *Report) WriteText(w io.Writer, verbose bool) {
	_, _ = fmt.Fprintln(w, "Chef Infra Server Preflight")
	_, _ = fmt.Fprintln(w, "===========================")
	_, _ = fmt.Fprintln(w)

	for _, res := range rep.Results {
		for _, o := range res.Outcomes {
			if o.Status == StatusPass && !verbose {
				continue
			}
			line := fmt.Sprintf("[%s] %s/%s", o.Status, res.Validator, o.Check)
			if h := o.Headline(); h != "" {
				line += ": " + h
			}
			_, _ = fmt.Fprintln(w, line)
		}
		if !verbose && res.Status == StatusPass {
			_, _ = fmt.Fprintf(w, "[%s] %s\n", StatusPass, res.Validator)
		}
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Status: %s\n", strings.ToUpper(rep.SummaryStatus()))

	if fatals := rep.Fatals(); len(fatals) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "%d error(s):\n", len(fatals))
		for _, o := range fatals {
			writeBlock(w, o.Message)
		}
	}

	if warnings := rep.Warnings(); len(warnings) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "%d warning(s):\n", len(warnings))
		for _, o := range warnings {
			writeBlock(w, o.Message)
		}
	}
}

func writeBlock(w io.Writer, msg string) {
	msg = strings.Trim(msg, "\n")
	for _, line := range strings.Split(msg, "\n") {
		_, _ = fmt.Fprintf(w, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w)
}
