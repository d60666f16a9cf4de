// Package event provides the data model for scraped dance performances.
//
// A ListingEntry is read from a site's listing page, a DetailRecord from the
// event's own page. Raw site date text is expanded into a Span of calendar
// days by a Parser configured with an explicit Locale, and BuildRecords turns
// one entry into one UploadRecord per day of its span.
package event
