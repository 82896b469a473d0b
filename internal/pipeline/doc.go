// Package pipeline orchestrates the three-phase run: collect raw notices
// from every district board, analyze collected notices into structured
// fields, and deliver unsent notices to subscribers.
//
// Each phase is a set difference against the store: collect skips content
// already stored for the district, analyze processes raw rows with no
// analyzed counterpart, deliver sends analyzed rows with no delivery
// marker. A crash between phases loses nothing; the next run picks up the
// remaining difference.
package pipeline
