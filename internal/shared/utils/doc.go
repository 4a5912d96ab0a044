// Package utils provides URL helpers shared by the interceptors and the
// approval ledger.
package utils
