package ui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mohsinsiddi/simchain/internal/ledger"
)

// historyModel is the bubbletea model for the interactive history table.
type historyModel struct {
	title   string
	records ledger.Records
	table   *Table
	cursor  int
	detail  bool
	flash   string
	copy    func(string) error
}

func newHistoryModel(title string, rs ledger.Records) historyModel {
	return historyModel{
		title:   title,
		records: rs,
		table:   HistoryTable(rs),
		copy:    copyToClipboard,
	}
}

func (m historyModel) Init() tea.Cmd { return nil }

func (m historyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.flash = ""
	switch key.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.records)-1 {
			m.cursor++
		}

	case "enter", "d":
		m.detail = !m.detail

	case "c":
		if m.cursor >= len(m.records) {
			break
		}
		hash := m.records[m.cursor].Base().Hash
		if hash == "" {
			m.flash = "No hash available"
			break
		}
		if err := m.copy(hash); err != nil {
			m.flash = "Copy failed: " + err.Error()
		} else {
			m.flash = "Copied: " + TruncateAddr(hash)
		}
	}
	return m, nil
}

func (m historyModel) View() string {
	var sb strings.Builder
	sb.WriteString(m.title)
	sb.WriteString("\n\n")

	if len(m.records) == 0 {
		sb.WriteString(Meta("No transactions yet.") + "\n")
	} else {
		m.table.SelIdx = m.cursor
		sb.WriteString(m.table.Render())
		if m.detail {
			sb.WriteString("\n")
			sb.WriteString(KeyValueBlock("", TxDetail(m.records[m.cursor])))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	if m.flash != "" {
		sb.WriteString(StyleSuccess.Render("  ✓ " + m.flash))
	} else {
		sb.WriteString(historyControls())
	}
	sb.WriteString("\n")
	return sb.String()
}

func historyControls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	sb.WriteString(StyleMeta.Render("[ ↑↓ ]"))
	sb.WriteString(StyleMeta.Render(" navigate"))
	sb.WriteString(sep)
	sb.WriteString(StyleInfo.Render("[ enter ]"))
	sb.WriteString(StyleMeta.Render(" details"))
	sb.WriteString(sep)
	sb.WriteString(StyleWarning.Render("[ c ]"))
	sb.WriteString(StyleMeta.Render(" copy hash"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ]"))
	sb.WriteString(StyleMeta.Render(" quit"))
	return sb.String()
}

// RunHistory starts the interactive history viewer over rs, which should
// already be newest first. Blocks until the user presses q/ESC.
func RunHistory(title string, rs ledger.Records) error {
	p := tea.NewProgram(newHistoryModel(title, rs),
		tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// copyToClipboard writes text to the system clipboard.
func copyToClipboard(text string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "windows":
		cmd = exec.Command("clip")
	default:
		if _, err := exec.LookPath("wl-copy"); err == nil {
			cmd = exec.Command("wl-copy")
		} else {
			cmd = exec.Command("xclip", "-selection", "clipboard")
		}
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	_, _ = io.WriteString(stdin, text)
	stdin.Close()
	return cmd.Wait()
}
