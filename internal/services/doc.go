// Package services defines the error taxonomy shared by every pipeline
// component and the outcome classification surfaced to the operator.
//
// Components tag failures with a sentinel marker through Wrap so callers can
// branch on the class of failure without string matching, and Classify folds
// a finished operation's error into the success/warning/error triple the
// presentation layer reports.
package services
