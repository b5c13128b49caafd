package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/Mohsinsiddi/simchain/internal/ledger"
)

// Snapshot is what the dashboard shows for the active wallet.
type Snapshot struct {
	User     string
	Nickname string
	Address  string
	Chain    string
	Balance  decimal.Decimal
	NFTs     int
	Listed   int
	Recent   ledger.Records
}

// dashboardModel polls a snapshot source and redraws on every tick.
type dashboardModel struct {
	snap       *Snapshot
	lastUpdate time.Time
	interval   time.Duration
	quitting   bool
	fetcher    func() (*Snapshot, error)
	err        string
}

type tickMsg time.Time
type snapshotMsg *Snapshot
type snapshotErrMsg string

// NewDashboard creates a Bubble Tea program that refreshes every interval.
func NewDashboard(interval time.Duration, fetcher func() (*Snapshot, error)) *tea.Program {
	return tea.NewProgram(dashboardModel{interval: interval, fetcher: fetcher}, tea.WithAltScreen())
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.fetchCmd(), tick(m.interval))
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.fetchCmd()
		}

	case tickMsg:
		return m, tea.Batch(m.fetchCmd(), tick(m.interval))

	case snapshotMsg:
		m.snap = msg
		m.lastUpdate = time.Now()
		m.err = ""

	case snapshotErrMsg:
		m.err = string(msg)
	}
	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("⚡ SimChain Dashboard") + "\n")
	updated := "never"
	if !m.lastUpdate.IsZero() {
		updated = m.lastUpdate.Format("15:04:05")
	}
	sb.WriteString(StyleMeta.Render(fmt.Sprintf("Updated: %s · r refresh · q quit", updated)) + "\n\n")

	if m.err != "" {
		sb.WriteString(Err(m.err) + "\n\n")
	}
	if m.snap == nil {
		sb.WriteString(StyleMeta.Render("Loading...") + "\n")
		return sb.String()
	}

	s := m.snap
	sb.WriteString(KeyValueBlock(s.User, [][2]string{
		{"Wallet", s.Nickname + " " + TruncateAddr(s.Address)},
		{"Chain", s.Chain},
		{"Balance", USDC(s.Balance)},
		{"NFTs", fmt.Sprintf("%d (%d listed)", s.NFTs, s.Listed)},
	}))
	sb.WriteString("\n\n")

	sb.WriteString(StyleHeader.Render("Recent activity") + "\n")
	if len(s.Recent) == 0 {
		sb.WriteString(StyleMeta.Render("No transactions yet.") + "\n")
	} else {
		sb.WriteString(HistoryTable(s.Recent).Render())
	}
	return sb.String()
}

func (m dashboardModel) fetchCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.fetcher()
		if err != nil {
			return snapshotErrMsg(err.Error())
		}
		return snapshotMsg(snap)
	}
}

func tick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
