// Package model defines the record types flowing through the three-stage
// pipeline: raw scraped notices, analyzed notices with structured fields,
// and sent markers. The content hash defined here is the join key that
// links the three stages.
package model
