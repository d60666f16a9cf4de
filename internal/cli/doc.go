// Package cli implements the command-line interface for dance-events.
//
// The root command takes one optional start date, reads the rest of its
// configuration from the environment, scrapes every configured site and
// prints a run report as text or JSON.
package cli
