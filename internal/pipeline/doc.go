// Package pipeline runs one scrape across a set of sites.
//
// Each site's entries go through the same steps: required fields are checked,
// the date text is parsed, the detail page is fetched and summarized, and one
// record per performance day is uploaded. A failing entry is counted under a
// skip reason and the run moves on; only cancellation stops a run early.
package pipeline
