// Package preflight provides readiness checks for the external services and
// filesystem paths the pipeline depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunAll at startup; failures are logged so an operator
//     sees a doomed configuration before the first job burns an LLM call.
//   - The CLI "storyreel status" command renders individual results to show
//     service health.
//
// Each check is gated by its config toggle; disabled features are skipped.
package preflight
