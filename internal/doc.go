// Package internal holds primitives shared by the taskauth engine that must
// not become public API: reset-token entropy generation lives here, and the
// login throttle lives in the throttle subpackage.
package internal
