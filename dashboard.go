package main

import (
	"fmt"
	"io"
	"strings"

	"go_client/core"
	"go_client/syncview"
	"go_client/uploads"

	"github.com/fatih/color"
)

// Dashboard renders monitored-view snapshots to the console.
type Dashboard struct {
	out io.Writer

	header    *color.Color
	ok        *color.Color
	warn      *color.Color
	fail      *color.Color
	dim       *color.Color
	highlight *color.Color
}

// NewDashboard builds a renderer writing to out.
func NewDashboard(out io.Writer) *Dashboard {
	return &Dashboard{
		out:       out,
		header:    color.New(color.FgCyan, color.Bold),
		ok:        color.New(color.FgGreen),
		warn:      color.New(color.FgYellow),
		fail:      color.New(color.FgRed, color.Bold),
		dim:       color.New(color.Faint),
		highlight: color.New(color.FgWhite, color.Bold),
	}
}

// RenderConfigs prints one page of the config list collection.
func (d *Dashboard) RenderConfigs(snap syncview.Snapshot[core.ConfigSummary]) {
	d.renderBanner("Generation Configs", snap.Pagination, snap.LiveMode, snap.Status)
	if snap.ServerError != "" {
		d.fail.Fprintf(d.out, "  server error: %s\n", snap.ServerError)
	}
	if len(snap.Records) == 0 {
		d.dim.Fprintln(d.out, "  (no configs on this page)")
		return
	}

	for _, c := range snap.Records {
		bar := progressBar(c.ProgressPercent, 20)
		name := c.Name
		if name == "" {
			name = c.DisplayID
		}
		fmt.Fprintf(d.out, "  %-10s %-28s %s %3d%%  %d/%d  %.1f tok/s",
			c.DisplayID, truncate(name, 28), bar, c.ProgressPercent,
			c.TotalResponsesGenerated, c.NumberOfSamples, c.AvgTokensPerSecond)
		if c.Complete() {
			if c.DatasetUploaded {
				d.ok.Fprint(d.out, "  uploaded")
			} else {
				d.warn.Fprint(d.out, "  done")
			}
		}
		fmt.Fprintln(d.out)
	}
}

// RenderSamples prints one page of a config's sample collection.
func (d *Dashboard) RenderSamples(snap syncview.Snapshot[core.SampleRecord]) {
	title := "Samples"
	if snap.Config != nil {
		title = fmt.Sprintf("Samples - %s (%d/%d, %d%%)",
			snap.Config.Name,
			snap.Config.Progress.Completed, snap.Config.Progress.Total,
			snap.Config.Progress.Percent)
	}
	d.renderBanner(title, snap.Pagination, snap.LiveMode, snap.Status)
	if snap.ServerError != "" {
		d.fail.Fprintf(d.out, "  server error: %s\n", snap.ServerError)
	}
	if len(snap.Records) == 0 {
		d.dim.Fprintln(d.out, "  (no samples on this page)")
		return
	}

	for _, s := range snap.Records {
		fmt.Fprintf(d.out, "  %-10s temp=%.2f top_p=%.2f %4d tok  %.1f tok/s  %.2fs\n",
			s.DisplayID, s.Temperature, s.TopP, s.TotalTokens, s.TokensPerSecond, s.Latency)
		d.dim.Fprintf(d.out, "    %s\n", truncate(strings.ReplaceAll(s.ResponseText, "\n", " "), 100))
	}
}

// RenderTasks prints the current upload task list.
func (d *Dashboard) RenderTasks(tasks []uploads.UploadTask) {
	d.header.Fprintln(d.out, "Upload Tasks")
	for _, t := range tasks {
		switch t.State {
		case uploads.TaskCompleted:
			d.ok.Fprintf(d.out, "  %-30s completed", t.Filename)
			if t.ConfigID != "" {
				d.dim.Fprintf(d.out, "  config=%s", t.ConfigID)
			}
			fmt.Fprintln(d.out)
		case uploads.TaskFailed:
			d.fail.Fprintf(d.out, "  %-30s failed: %s\n", t.Filename, t.Error)
		default:
			d.warn.Fprintf(d.out, "  %-30s %s\n", t.Filename, t.State)
		}
	}
}

func (d *Dashboard) renderBanner(title string, p core.PaginationInfo, live bool, status syncview.Status) {
	d.header.Fprintf(d.out, "%s", title)
	d.dim.Fprintf(d.out, "  page %d/%d  %d items", p.Page, p.TotalPages, p.TotalCount)
	if live {
		d.ok.Fprint(d.out, "  [live]")
	} else {
		d.warn.Fprint(d.out, "  [frozen]")
	}
	if status == syncview.StatusDisconnected {
		d.fail.Fprint(d.out, "  DISCONNECTED")
	}
	fmt.Fprintln(d.out)
}

// progressBar renders a fixed-width unicode progress bar.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
