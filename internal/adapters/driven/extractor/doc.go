// Package extractor holds ContentExtractor adapters.
//
// web fetches pages over HTTP and extracts readable text with goquery.
// mock produces deterministic placeholder text for a URL, and fallback
// chains the two so ingestion always produces something answerable.
package extractor
