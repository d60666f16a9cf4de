// Package uploader stores finished event records.
//
// Records are sent one at a time as a flat map of column name to text. The
// Airtable implementation posts each map as a new table row; the dry-run
// implementation prints the rows instead, which is how the tool is exercised
// without credentials.
package uploader
