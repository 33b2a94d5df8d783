package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Flyrell/shopweek/internal/board"
	"github.com/Flyrell/shopweek/internal/calendar"
	"github.com/Flyrell/shopweek/internal/job"
)

// scheduleLoader computes the board for the planning window around anchor.
type scheduleLoader func(anchor time.Time, dim job.Dimension) (board.View, error)

type scheduleKeys struct {
	Prev    key.Binding
	Next    key.Binding
	Today   key.Binding
	View    key.Binding
	Backlog key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k scheduleKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Today, k.View, k.Backlog, k.Refresh, k.Quit}
}

func (k scheduleKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var scheduleKeyMap = scheduleKeys{
	Prev:    key.NewBinding(key.WithKeys("left", "h", "p"), key.WithHelp("←/h", "prev week")),
	Next:    key.NewBinding(key.WithKeys("right", "l", "n"), key.WithHelp("→/l", "next week")),
	Today:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "this week")),
	View:    key.NewBinding(key.WithKeys("tab", "v"), key.WithHelp("tab", "fab/cut")),
	Backlog: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "backlog")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// backlogItem shows an unscheduled job in the backlog pane.
type backlogItem struct {
	job job.Job
	dim job.Dimension
}

func (i backlogItem) Title() string {
	title := job.FormatTitle(i.job.Title)
	if i.job.Ref != "" {
		title += "  " + i.job.Ref
	}
	return title
}

func (i backlogItem) Description() string {
	return fmt.Sprintf("%s %s · %s", job.FormatHours(i.job.Hours(i.dim)), i.dim, i.job.Category)
}

func (i backlogItem) FilterValue() string { return i.job.Title + " " + i.job.Ref }

type scheduleModel struct {
	load        scheduleLoader
	title       string
	today       time.Time // Monday of the current week
	monday      time.Time // Monday of the displayed week
	dim         job.Dimension
	view        board.View
	err         error
	width       int
	height      int
	keys        scheduleKeys
	help        help.Model
	backlog     list.Model
	showBacklog bool
}

func newScheduleModel(load scheduleLoader, title string, now, monday time.Time, dim job.Dimension) scheduleModel {
	backlog := list.New(nil, list.NewDefaultDelegate(), 120, 36)
	backlog.SetShowHelp(false)
	m := scheduleModel{
		load:    load,
		title:   title,
		today:   calendar.StartOfWeek(now),
		monday:  monday,
		dim:     dim,
		width:   120,
		height:  40,
		keys:    scheduleKeyMap,
		help:    help.New(),
		backlog: backlog,
	}
	return m.reload()
}

func (m scheduleModel) reload() scheduleModel {
	v, err := m.load(m.today, m.dim)
	if err != nil {
		m.err = err
		return m
	}
	m.view = v
	m.err = nil

	items := make([]list.Item, 0, len(v.Backlog))
	for _, j := range v.Backlog {
		items = append(items, backlogItem{job: j, dim: m.dim})
	}
	m.backlog.SetItems(items)
	m.backlog.Title = fmt.Sprintf("Backlog (%s)", m.dim)
	return m
}

func (m scheduleModel) Init() tea.Cmd {
	return nil
}

func (m scheduleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.backlog.SetSize(msg.Width, max(msg.Height-4, 1))
		return m, nil
	case tea.KeyMsg:
		if m.showBacklog {
			return m.updateBacklog(msg)
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.monday = m.monday.AddDate(0, 0, 7)
		case key.Matches(msg, m.keys.Prev):
			m.monday = m.monday.AddDate(0, 0, -7)
		case key.Matches(msg, m.keys.Today):
			m.monday = m.today
		case key.Matches(msg, m.keys.View):
			if m.dim == job.Fab {
				m.dim = job.Cut
			} else {
				m.dim = job.Fab
			}
			return m.reload(), nil
		case key.Matches(msg, m.keys.Backlog):
			m.showBacklog = true
		case key.Matches(msg, m.keys.Refresh):
			return m.reload(), nil
		}
	}
	return m, nil
}

// updateBacklog routes keys to the backlog pane. While filtering every key
// belongs to the list.
func (m scheduleModel) updateBacklog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.backlog.FilterState() != list.Filtering {
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Backlog), msg.String() == "esc", msg.String() == "q":
			m.showBacklog = false
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.backlog, cmd = m.backlog.Update(msg)
	return m, cmd
}

func (m scheduleModel) View() string {
	var b strings.Builder
	if m.showBacklog {
		b.WriteString(m.backlog.View())
	} else {
		b.WriteString(renderWeek(m.view, m.monday, m.title))
	}
	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(Error("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	position := "[this week]"
	if !m.monday.Equal(m.today) {
		weeks := int(math.Round(m.monday.Sub(m.today).Hours() / (24 * 7)))
		position = fmt.Sprintf("[%+d weeks]", weeks)
	}
	b.WriteString(footerStyle.Render(position) + "  " + m.help.View(m.keys))
	return b.String()
}
