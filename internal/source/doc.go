// Package source holds the static descriptor table for the 16 Busan district
// obituary boards. Each descriptor is declarative endpoint and extraction
// configuration; the parsing logic that interprets it lives in the scraper
// package.
package source
