// Package combiner lists downloaded transcripts and concatenates a selection
// of them into a manuscript.
//
// Entries are sorted by folder, then by playlist order; files whose names are
// not integers sort after every ordered file in their folder. Each selected
// transcript is preceded by an 80-column banner naming its origin.
package combiner
