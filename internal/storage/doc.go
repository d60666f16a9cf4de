// Package storage keeps a history of run reports on disk.
//
// Each run is written as report_<run id>.json in the data directory and
// latest.json is replaced with the same content, so the previous run can be
// inspected without listing the directory.
package storage
