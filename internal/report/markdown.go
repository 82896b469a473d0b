package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/moah0o0/public-funeral-scrapper/internal/metrics"
)

// MarkdownWriter renders run reports in GitHub-flavored Markdown.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a writer that renders to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

// WriteFile renders the run report to the given path, creating parent
// directories as needed.
func WriteFile(path string, run *metrics.Run) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("report: create output directory: %w", err)
	}
	f, err := os.Create(path) //nolint:gosec // user-provided report path is intentional
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	return NewMarkdownWriter(f).Write(run)
}

// Write renders the full run report.
func (w *MarkdownWriter) Write(run *metrics.Run) error {
	if run == nil {
		return fmt.Errorf("report: nil run")
	}

	md := markdown.NewMarkdown(w.output)
	w.writeHeader(md, run)
	w.writePhases(md, run)
	w.writeSources(md, run)
	return md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *metrics.Run) {
	md.H1("Crawl Run Report")
	md.PlainText("")

	ended := "in progress"
	if !run.EndedAt.IsZero() {
		ended = run.EndedAt.Format("2006-01-02 15:04:05 MST")
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Ended", ended},
			{"Duration", fmt.Sprintf("%.1fs", run.TotalDuration().Seconds())},
			{"Peak memory", fmt.Sprintf("%.1f MB", run.PeakMemoryMB)},
			{"Sources crawled", strconv.Itoa(len(run.SourceResults))},
			{"Notices analyzed", strconv.Itoa(run.ItemsAnalyzed)},
			{"Notices delivered", strconv.Itoa(run.ItemsSent)},
		},
	})
	md.PlainText("")

	if run.FailureCount() > 0 {
		md.Warning(
			fmt.Sprintf("%d of %d sources failed this run.",
				run.FailureCount(), len(run.SourceResults)))
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writePhases(md *markdown.Markdown, run *metrics.Run) {
	md.H2("Phase Timings")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Phase", "Duration"},
		Rows: [][]string{
			{"Collect", fmt.Sprintf("%.1fs", run.CollectDuration.Seconds())},
			{"Analyze", fmt.Sprintf("%.1fs", run.AnalyzeDuration.Seconds())},
			{"Deliver", fmt.Sprintf("%.1fs", run.SendDuration.Seconds())},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSources(md *markdown.Markdown, run *metrics.Run) {
	md.H2("Sources")
	md.PlainText("")

	if len(run.SourceResults) == 0 {
		md.PlainText("No sources were crawled (collect phase skipped).")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(run.SourceResults))
	for _, src := range run.SourceResults {
		status := "ok"
		if !src.Success {
			status = "failed"
		}
		via := "direct"
		if src.UsedTor {
			via = "tor"
		}
		rows = append(rows, []string{
			src.Source,
			status,
			strconv.Itoa(src.Items),
			fmt.Sprintf("%.1fs", src.Duration.Seconds()),
			via,
			src.Error,
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Status", "New items", "Duration", "Via", "Error"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeOutcomeChart(md, run)
}

// writeOutcomeChart draws the success/failure split as a mermaid pie
// chart.
func (w *MarkdownWriter) writeOutcomeChart(md *markdown.Markdown, run *metrics.Run) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Source Outcomes"),
		piechart.WithShowData(true),
	)
	if n := run.SuccessCount(); n > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(n))
	}
	if n := run.FailureCount(); n > 0 {
		chart.LabelAndIntValue("Failed", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}
