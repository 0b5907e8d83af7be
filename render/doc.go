// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package render turns view state into terminal text.

A card looks like this once results are visible:

	🗳️ Lunch?  [p1]
	   ( ) Pizza   25.0%  [A]
	   (•) Sushi   75.0%  [B]
	   4 votes
	   ❤️ 1,234  by alice • 13 Oct 2026 (3 days ago)

The bracketed ids are what the vote and like commands take. Before the
viewer votes, and while nobody has, percentages are hidden. Counts and
relative dates go through go-humanize.

Golden files for the layouts live in testdata/golden.
*/
package render
