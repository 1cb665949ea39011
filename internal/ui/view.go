package ui

import (
	"fmt"
	"strings"

	"vidsqueeze/internal/model"
	"vidsqueeze/internal/progress"
)

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("vidsqueeze")
	mode := "compress"
	if m.opts.Mode == model.ModeExtractAudio {
		mode = "extract audio"
	}
	sub := m.styles.Subtitle.Render(fmt.Sprintf("mode: %s • q: quit", mode))
	return title + "\n" + sub
}

func (m Model) viewJob() string {
	js := m.job

	stageStyle := m.styles.JobInfo
	switch js.stage {
	case progress.StageProbing:
		stageStyle = m.styles.StageProbe
	case progress.StagePlanning:
		stageStyle = m.styles.StagePlan
	case progress.StageEncoding:
		stageStyle = m.styles.StageEnc
	case progress.StageCompleted:
		stageStyle = m.styles.Success
	case progress.StageError:
		stageStyle = m.styles.Error
	}

	left := m.styles.JobTitle.Render(truncate(js.input, 48))
	stage := stageStyle.Render(string(js.stage))

	var right string
	switch {
	case js.percent >= 0 && js.percent <= 100:
		right = fmt.Sprintf("%s %5.1f%%", js.bar.ViewAs(js.percent/100.0), js.percent)
		if js.speed != "" {
			right += "  " + m.styles.Faint.Render(js.speed)
		}
	case js.done && js.err == nil:
		right = m.styles.Success.Render("✓ done")
	case js.err != nil:
		right = m.styles.Error.Render("✗ error")
	default:
		right = m.styles.Spinner.Render(js.spinner.View()) + " " + m.styles.Faint.Render("working")
	}

	line1 := fmt.Sprintf("%s  %s", left, stage)
	line2 := m.styles.JobInfo.Render(js.status)
	body := line1 + "\n" + right + "\n" + line2
	if js.done && js.err == nil && js.overshot {
		warn := fmt.Sprintf("output exceeds target size by %.0f%%", (js.overshootRatio-1)*100)
		body += "\n" + m.styles.Warning.Render(warn)
	}
	return m.styles.Box.Render(body) + "\n"
}

func (m Model) viewLogs() string {
	if !m.opts.Verbose || len(m.job.logsRing) == 0 {
		return ""
	}
	n := len(m.job.logsRing)
	if n > 6 {
		n = 6
	}
	lines := m.job.logsRing[len(m.job.logsRing)-n:]
	var b strings.Builder
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString(m.styles.Faint.Render("  " + truncate(l, 100)))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
