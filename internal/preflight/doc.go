// Package preflight provides the validator framework that runs before
// dependent services are reconfigured or started.
//
// A Validator is built from the resolved configuration snapshot by a
// Constructor and runs an ordered list of Steps. A Warn outcome is recorded
// and the run continues; the first Fail outcome stops the remaining steps.
//
// Validators are registered once and run in order by a Runner:
//
//	reg := preflight.NewRegistry()
//	reg.Register("host", preflight.NewHostConstructor(dataDir))
//	report := preflight.NewRunner(reg).Run(ctx, snapshot)
//	if report.HasFatal() {
//	    // refuse to continue
//	}
package preflight
