// Package csvtable turns the trending-repositories CSV into rows and records.
//
// The parser is deliberately forgiving. It never returns an error: quoted
// fields, doubled quotes and CRLF line endings are honoured, and anything
// malformed (an unterminated quote, stray quotes mid-field) degrades into
// whatever field boundaries the scanner reaches. [ParseWithReport] exposes
// what it noticed so callers can log it.
//
// # Columns
//
// Records are mapped by position, not by header name:
//
//	0 name          owner/repo
//	1 stars         stars gained in the sampling window
//	2 createdAt     repository creation timestamp
//	3 currentStars  total stargazers at collection time
//	4 summary       optional AI-generated summary
//
// The first parsed row is always treated as the header and is never mapped
// to a record.
package csvtable
