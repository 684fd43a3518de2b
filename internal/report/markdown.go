package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/samber/lo"

	"github.com/iranrevolution2026/posters/internal/model"
)

// digestPrefix is how much of a digest the poster table shows.
const digestPrefix = 16

// MarkdownWriter outputs the summary as a Markdown document, suitable for
// attaching to the print order or an issue.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writePosters(md, summary)
	w.writeWarnings(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("Memorial Poster Run")
	md.PlainText("")

	rows := [][]string{
		{"Input", "`" + s.Input + "`"},
		{"Output", "`" + s.OutputDir + "`"},
		{"Template", s.Template},
		{"Duration", s.Duration.Round(time.Millisecond).String()},
	}
	if !s.StartedAt.IsZero() {
		rows = append(rows, []string{"Started", s.StartedAt.Format("2006-01-02 15:04:05 MST")})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, s *model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	withPhoto := s.Succeeded - s.Placeholders
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Written with photo", strconv.Itoa(withPhoto)},
			{"Written with placeholder", strconv.Itoa(s.Placeholders)},
			{"Failed", strconv.Itoa(s.Failed)},
			{"Canceled", strconv.Itoa(s.Canceled)},
			{"Biography skipped", strconv.Itoa(s.BioSkipped)},
			{"Biography clipped", strconv.Itoa(s.BioOverflow)},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**"},
		},
	})
	md.PlainText("")

	if s.Total > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Poster Outcomes"),
			piechart.WithShowData(true),
		)
		for _, slice := range []struct {
			label string
			n     int
		}{
			{"Photo", withPhoto},
			{"Placeholder", s.Placeholders},
			{"Failed", s.Failed},
			{"Canceled", s.Canceled},
		} {
			if slice.n > 0 {
				chart.LabelAndIntValue(slice.label, uint64(slice.n))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case s.Failed > 0:
		md.Cautionf("%d poster(s) could not be written. See the table below.", s.Failed)
	case s.Canceled > 0:
		md.Warningf("The run was interrupted; %d record(s) were not processed.", s.Canceled)
	case s.Placeholders > 0 || s.BioOverflow > 0:
		md.Importantf("%d poster(s) use the photo placeholder and %d biography(ies) were clipped.",
			s.Placeholders, s.BioOverflow)
	default:
		md.Tip("Every poster was written with its photo and full biography.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePosters(md *markdown.Markdown, s *model.Summary) {
	md.H2("Posters")
	md.PlainText("")

	if len(s.Outcomes) == 0 {
		md.PlainText("No records in the batch.")
		md.PlainText("")
		return
	}

	rows := lo.Map(s.Outcomes, func(o model.Outcome, _ int) []string {
		file, digest, photo, bio := "-", "-", "-", "-"
		if o.Path != "" {
			file = filepath.Base(o.Path)
			photo = o.Image.String()
		}
		if o.Digest != "" {
			digest = "`" + truncateString(o.Digest, digestPrefix) + "`"
		}
		switch {
		case o.BioSkipped:
			bio = "skipped"
		case o.BioFontSize > 0:
			bio = strconv.FormatFloat(o.BioFontSize, 'f', -1, 64) + "pt"
			if o.BioOverflow {
				bio += " (clipped)"
			}
		}
		status := o.Status.String()
		if o.Error != "" {
			status += ": " + truncateString(o.Error, 60)
		}
		return []string{strconv.Itoa(o.Index + 1), o.ID, o.Name, status, photo, bio, file, digest}
	})

	md.Table(markdown.TableSet{
		Header: []string{"#", "ID", "Name", "Status", "Photo", "Bio", "File", "SHA3-256"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeWarnings(md *markdown.Markdown, s *model.Summary) {
	degraded := s.Degraded()
	if len(degraded) == 0 {
		return
	}

	md.H2("Warnings")
	md.PlainText("")
	for _, o := range degraded {
		md.Details(fmt.Sprintf("%s (%s)", o.Name, o.ID), lo.Reduce(o.Warnings, func(acc, warning string, _ int) string {
			return acc + "- " + warning + "\n"
		}, ""))
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by posters. Every QR code links to the verified record.*")
}

// truncateString truncates a string to maxLen bytes with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
