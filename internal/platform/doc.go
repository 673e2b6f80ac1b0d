// Package platform provides cross-platform permission handling: the
// executable mode for installed hooks, chmod (a no-op on Windows), and
// access(2)-based writability and readability probes with a stat-based
// Windows approximation.
package platform
