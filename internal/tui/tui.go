package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type SnapshotProvider interface {
	GetSnapshot() Snapshot
}

// Controller is the dashboard's command surface. Commands are queued and
// return immediately; their outcome shows up in a later snapshot.
type Controller interface {
	SnapshotProvider
	StartMonitoring(interval string)
	StopMonitoring()
	CheckNow()
	RefreshHistory()
	ClearLogs()
}

type keyMap struct {
	Start    key.Binding
	Stop     key.Binding
	CheckNow key.Binding
	Refresh  key.Binding
	Clear    key.Binding
	Edit     key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	Up       key.Binding
	Down     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Start:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		Stop:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		CheckNow: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "check now")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh history")),
		Clear:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "clear log")),
		Edit:     key.NewBinding(key.WithKeys("i", "tab"), key.WithHelp("i", "edit interval")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.CheckNow, k.Refresh, k.Clear, k.Edit, k.Submit, k.Cancel, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Up, k.Down}}
}

type Model struct {
	ctrl            Controller
	snapshot        Snapshot
	refreshInterval time.Duration

	interval textinput.Model
	editing  bool
	keys     keyMap
	help     help.Model
	logView  viewport.Model

	width  int
	height int
	ready  bool
}

type tickMsg time.Time

func NewModel(ctrl Controller, refreshInterval time.Duration, defaultInterval int) Model {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 6
	in.Width = 8
	in.SetValue(strconv.Itoa(defaultInterval))

	m := Model{
		ctrl:            ctrl,
		snapshot:        ctrl.GetSnapshot(),
		refreshInterval: refreshInterval,
		interval:        in,
		keys:            newKeyMap(),
		help:            help.New(),
		logView:         viewport.New(0, 0),
	}
	m.syncKeys()
	m.logView.SetContent(renderLog(m.snapshot.Log))
	return m
}

func (m Model) Init() tea.Cmd {
	return tickCmd(m.refreshInterval)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Start):
			m.ctrl.StartMonitoring(m.interval.Value())
		case key.Matches(msg, m.keys.Stop):
			m.ctrl.StopMonitoring()
		case key.Matches(msg, m.keys.CheckNow):
			m.ctrl.CheckNow()
		case key.Matches(msg, m.keys.Refresh):
			m.ctrl.RefreshHistory()
		case key.Matches(msg, m.keys.Clear):
			m.ctrl.ClearLogs()
		case key.Matches(msg, m.keys.Edit):
			m.editing = true
			m.syncKeys()
			cmd := m.interval.Focus()
			return m, cmd
		default:
			var cmd tea.Cmd
			m.logView, cmd = m.logView.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		m.logView.Width = msg.Width
		return m, nil

	case tickMsg:
		m.snapshot = m.ctrl.GetSnapshot()
		// Monitoring may have been started elsewhere.
		if m.editing && !m.snapshot.Controls.IntervalEditable {
			m.editing = false
			m.interval.Blur()
		}
		m.syncKeys()
		m.logView.SetContent(renderLog(m.snapshot.Log))
		return m, tickCmd(m.refreshInterval)
	}

	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		m.editing = false
		m.interval.Blur()
		m.syncKeys()
		m.ctrl.StartMonitoring(m.interval.Value())
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.interval.Blur()
		m.syncKeys()
		return m, nil
	}

	var cmd tea.Cmd
	m.interval, cmd = m.interval.Update(msg)
	return m, cmd
}

// syncKeys mirrors the snapshot's control states onto the key bindings, so
// disabled commands neither fire nor show up in the help line.
func (m *Model) syncKeys() {
	c := m.snapshot.Controls
	m.keys.Start.SetEnabled(!m.editing && c.StartEnabled)
	m.keys.Stop.SetEnabled(!m.editing && c.StopEnabled)
	m.keys.CheckNow.SetEnabled(!m.editing && c.CheckNowEnabled)
	m.keys.Edit.SetEnabled(!m.editing && c.IntervalEditable)
	m.keys.Refresh.SetEnabled(!m.editing)
	m.keys.Clear.SetEnabled(!m.editing)
	m.keys.Submit.SetEnabled(m.editing)
	m.keys.Cancel.SetEnabled(m.editing)
}

func (m Model) View() string {
	snap := m.snapshot

	var top strings.Builder
	top.WriteString(renderHeader(snap))
	top.WriteString("\n")
	top.WriteString(sectionStyle.Render("📡 Session"))
	top.WriteString("\n")
	top.WriteString(renderStatus(snap))
	top.WriteString(renderControls(snap.Controls, m.interval.View()))
	top.WriteString(sectionStyle.Render("📊 History"))
	top.WriteString("\n")
	top.WriteString(renderStats(snap.Stats))
	top.WriteString(renderCaptcha(snap.Captcha))
	top.WriteString(sectionStyle.Render("📝 Activity"))

	toast := renderToast(snap.Toast)
	footer := footerStyle.Render("Last updated: " + snap.Timestamp.Format("15:04:05") + " │ " + m.help.View(m.keys))

	logs := renderLog(snap.Log)
	if m.ready {
		vp := m.logView
		vp.Height = max(3, m.height-lipgloss.Height(top.String())-lipgloss.Height(toast)-lipgloss.Height(footer))
		logs = vp.View()
	}

	parts := []string{top.String(), logs}
	if toast != "" {
		parts = append(parts, toast)
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
