// Package preflight provides readiness checks for the external programs,
// services, and filesystem paths that subman depends on.
//
// The doctor command runs RunAll and prints one line per result. The
// download and generate commands call the individual checks they need
// (CheckSystemDeps, CheckQuizProvider) before doing any work so that a
// missing yt-dlp or API key is reported up front.
//
// Checks that depend on optional configuration are skipped when it is unset.
package preflight
