// Package render turns a flattened document into its two output encodings:
// the interactive document model (highlighted content, anchors, search index)
// and the flat transcript for language model ingestion.
//
// Both encodings consume the same ordered flatten.Document and never
// re-filter, re-fetch or re-order. They are independent: either can be
// produced without the other.
package render
