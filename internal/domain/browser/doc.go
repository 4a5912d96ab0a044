// Package browser defines the browser capabilities the navigation guard
// needs from the host extension.
//
// The guard never reaches for a global browser API. A Host is passed to
// the interceptors at construction time: the extension bridge in
// production and a recording fake in tests.
package browser
