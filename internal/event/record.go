package event

// BuildRecords returns one UploadRecord per day of span, in span order.
// All records share every field except Date. An empty span yields no records.
func BuildRecords(entry ListingEntry, detail DetailRecord, span Span, summary string, loc *Locale) []UploadRecord {
	imageURL := detail.ImageURL
	if imageURL == "" {
		imageURL = entry.ImageURL
	}

	base := UploadRecord{
		EventName:  detail.EventName,
		Location:   detail.VenueName,
		VenueURL:   detail.VenueURL,
		ImageURL:   imageURL,
		Summary:    summary,
		DetailsURL: entry.URL,
	}

	records := make([]UploadRecord, 0, len(span))
	for _, day := range span {
		rec := base
		rec.Date = loc.FormatLong(day)
		records = append(records, rec)
	}
	return records
}
