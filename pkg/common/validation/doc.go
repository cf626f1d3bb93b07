// Package validation provides the configuration checks shared by the
// flowchan packages.
//
// Every helper returns a *errors.ValidationError naming the module and
// field, so constructors report misconfiguration the same way everywhere.
package validation
