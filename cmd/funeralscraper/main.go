// Package main provides the entry point for the funeral notice scraper CLI.
//
// The scraper crawls the sixteen Busan district boards for public funeral
// notices, stores new notices, runs them through analysis, and delivers
// unsent notices to the subscriber channel.
//
// Usage:
//
//	funeralscraper run
//	funeralscraper cleanup
//
// See --help for all available options.
package main

// main is the entry point for the scraper.
func main() {
	Execute()
}
