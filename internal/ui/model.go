package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"vidsqueeze/internal/logging"
	"vidsqueeze/internal/model"
	"vidsqueeze/internal/pipeline"
	"vidsqueeze/internal/progress"
	"vidsqueeze/internal/util/deps"
)

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	// App state (deps)
	depsChecked bool
	depsErr     error
	ffmpegPath  string
	ffprobePath string

	opts model.Options
	job  *jobState

	// UI
	width, height int
	styles        Styles

	// Internal event channel used by the reporter to feed tea messages
	eventCh chan tea.Msg
}

func NewModel(ctx context.Context, opts model.Options) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	js := newJobState("job-0", opts.InputPath, sty)

	return Model{
		ctx:     c,
		cancel:  cancel,
		opts:    opts,
		job:     &js,
		styles:  sty,
		eventCh: make(chan tea.Msg, 256),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.job.spinner.Tick,
		m.listenEventsCmd(),
		m.checkDepsCmd(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case depsCheckedMsg:
		m.depsChecked = true
		m.depsErr = msg.Err
		m.ffmpegPath = msg.FFmpegPath
		m.ffprobePath = msg.FFprobePath
		if m.depsErr != nil {
			m.job.stage = progress.StageError
			m.job.status = fmt.Sprintf("Dependency error: %v", m.depsErr)
			m.job.err = m.depsErr
			m.job.done = true
			return m, tea.Quit
		}
		go m.runJob()
		return m, nil

	case jobUpdateMsg:
		u := msg.U
		if u.JobID == m.job.id {
			m.job.stage = u.Stage
			m.job.percent = u.Percent
			m.job.status = u.Message
			if u.Bytes != nil {
				m.job.bytes = *u.Bytes
			}
			if u.Speed != nil {
				m.job.speed = *u.Speed
			}
		}
	case jobLogMsg:
		l := msg.L
		if l.JobID == m.job.id {
			line := strings.TrimRight(l.Line, "\r\n")
			if len(m.job.logsRing) > 200 {
				m.job.logsRing = m.job.logsRing[1:]
			}
			m.job.logsRing = append(m.job.logsRing, line)
		}
	case jobResultMsg:
		r := msg.R
		if r.JobID == m.job.id {
			m.job.done = true
			m.job.err = r.Err
			if r.Err == nil {
				m.job.stage = progress.StageCompleted
				m.job.percent = 100
				m.job.outputPath = r.OutputPath
				m.job.bytes = r.Bytes
				m.job.overshot = r.Overshot
				m.job.overshootRatio = r.OvershootRatio
			} else {
				m.job.stage = progress.StageError
				m.job.status = r.Err.Error()
				m.job.percent = -1
			}
			return m, tea.Quit
		}
	case doneMsg:
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	var c tea.Cmd
	m.job.spinner, c = m.job.spinner.Update(msg)
	if c != nil {
		cmds = append(cmds, c)
	}
	cmds = append(cmds, m.listenEventsCmd())
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	return m.viewHeader() + "\n\n" + m.viewJob() + m.viewLogs()
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return doneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

func (m Model) checkDepsCmd() tea.Cmd {
	return func() tea.Msg {
		fp, perr := deps.FindFFprobe(m.opts.FFprobePath)
		if perr != nil {
			return depsCheckedMsg{Err: perr}
		}
		ff := ""
		if !m.opts.DryRun {
			var ferr error
			ff, ferr = deps.FindFFmpeg(m.opts.FFmpegPath)
			if ferr != nil {
				return depsCheckedMsg{Err: ferr}
			}
		}
		return depsCheckedMsg{FFmpegPath: ff, FFprobePath: fp, Err: nil}
	}
}

func (m Model) runJob() {
	rep := teaReporter{ch: m.eventCh}

	svc := pipeline.NewService(
		pipeline.WithFFmpegPath(m.ffmpegPath),
		pipeline.WithFFprobePath(m.ffprobePath),
		pipeline.WithOptions(m.opts),
		pipeline.WithReporter(rep),
		pipeline.WithJobID(m.job.id),
		pipeline.WithLogger(logging.Nop()),
	)

	// RunJob emits the final Saved/Planned result itself on success.
	if _, err := svc.RunJob(m.ctx); err != nil {
		rep.Result(progress.Result{JobID: m.job.id, Err: err})
	}
}

type teaReporter struct {
	ch chan tea.Msg
}

func (r teaReporter) Update(u progress.Update) {
	// Block on terminal stage messages to ensure they're delivered
	if u.Stage == progress.StageCompleted || u.Stage == progress.StageError {
		r.ch <- jobUpdateMsg{U: u}
		return
	}
	select {
	case r.ch <- jobUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Log(l progress.Log) {
	select {
	case r.ch <- jobLogMsg{L: l}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	// Always block on Result messages, they end the program
	r.ch <- jobResultMsg{R: res}
}
