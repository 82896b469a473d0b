// Package report renders a pipeline run as a Markdown document: run
// info, phase timings, per-district outcomes, and a severity chart of
// successes against failures. Written to a file for operators who want
// more than the channel narration.
package report
