// Package preflight provides readiness checks for external services
// and filesystem paths that voice2sign depends on.
//
// These checks run in two contexts:
//   - The web server calls RunAll at startup and logs every failure so a
//     missing dataset or unwritable cache shows up before the first request.
//   - The CLI "voice2sign status" command renders RunAll and CheckSystemDeps
//     as tables.
//
// Emotion backend checks are gated by the emotion toggle.
package preflight
