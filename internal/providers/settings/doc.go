// Package settings persists the guard's user settings: the classifier
// credential (key "profileToken") and the protection flag (key
// "safewatersActive", on when absent).
//
// Memory backs tests and runs without a DSN; SQLite keeps the values in a
// single GORM-managed key/value table.
package settings
