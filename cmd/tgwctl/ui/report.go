package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"tgwctl/internal/audit"
)

// StatusGlyph returns the icon shown in front of a report line.
func StatusGlyph(s audit.Status) string {
	switch s {
	case audit.StatusRepaired:
		return "🔧"
	case audit.StatusWarning:
		return "⚠️"
	case audit.StatusError:
		return "❌"
	default:
		return "✅"
	}
}

// RenderCheck formats one report line.
func (s Styles) RenderCheck(c audit.Check) string {
	var b strings.Builder
	b.WriteString(StatusGlyph(c.Status))
	b.WriteString(" ")
	b.WriteString(s.Bold.Render(fmt.Sprintf("[%s]", c.Category)))
	b.WriteString(" ")
	b.WriteString(c.Name)
	if c.Path != "" {
		b.WriteString("  ")
		b.WriteString(s.Muted.Render(c.Path))
	}
	if c.Detail != "" {
		detail := "(" + c.Detail + ")"
		switch c.Status {
		case audit.StatusError:
			detail = s.Error.Render(detail)
		case audit.StatusWarning:
			detail = s.Warning.Render(detail)
		case audit.StatusRepaired:
			detail = s.Success.Render(detail)
		default:
			detail = s.Muted.Render(detail)
		}
		b.WriteString("  ")
		b.WriteString(detail)
	}
	return b.String()
}

// RenderSummary formats the aggregate line for a finished audit.
func (s Styles) RenderSummary(r audit.Result) string {
	ok := len(r.Checks) - r.Repaired - r.Warnings - r.Errors
	parts := []string{
		s.Success.Render(fmt.Sprintf("%d ok", ok)),
		fmt.Sprintf("%d repaired", r.Repaired),
		fmt.Sprintf("%d warnings", r.Warnings),
	}
	errPart := fmt.Sprintf("%d errors", r.Errors)
	if r.Errors > 0 {
		errPart = s.Error.Render(errPart)
	}
	parts = append(parts, errPart)
	return strings.Join(parts, ", ")
}

// ============================================================================
// INTERACTIVE REPORT (doctor --interactive)
// ============================================================================

// Auditor produces one audit result. The interactive view calls it on
// startup and again whenever the user presses r.
type Auditor func() audit.Result

type auditDoneMsg struct {
	result audit.Result
}

func runAuditCmd(fn Auditor) tea.Cmd {
	return func() tea.Msg {
		return auditDoneMsg{result: fn()}
	}
}

type reportModel struct {
	styles   Styles
	runAudit Auditor

	spinner  spinner.Model
	viewport viewport.Model

	result  *audit.Result
	running bool
	ready   bool
	width   int
}

func newReportModel(styles Styles, fn Auditor) reportModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return reportModel{
		styles:   styles,
		runAudit: fn,
		spinner:  sp,
		running:  true,
	}
}

func (m reportModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, runAuditCmd(m.runAudit))
}

func (m reportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			if !m.running {
				m.running = true
				return m, tea.Batch(m.spinner.Tick, runAuditCmd(m.runAudit))
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		headerHeight := 2
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		if m.result != nil {
			m.viewport.SetContent(m.renderChecks(*m.result))
		}

	case auditDoneMsg:
		m.running = false
		m.result = &msg.result
		if m.ready {
			m.viewport.SetContent(m.renderChecks(msg.result))
			m.viewport.GotoTop()
		}
		return m, nil

	case spinner.TickMsg:
		if m.running {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m reportModel) renderChecks(r audit.Result) string {
	var b strings.Builder
	for _, c := range r.Checks {
		b.WriteString(m.styles.RenderCheck(c))
		b.WriteString("\n")
		if c.Status != audit.StatusOK && c.Hint != "" {
			b.WriteString(m.styles.Muted.Render("   hint: " + c.Hint))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m reportModel) View() string {
	var header string
	if m.running {
		header = m.spinner.View() + " auditing..."
	} else if m.result != nil {
		header = m.styles.Title.Render("🔍 Warehouse audit") + "  " + m.styles.RenderSummary(*m.result)
	}

	footer := m.styles.Muted.Render("r re-run · ↑/↓ scroll · q quit")

	if !m.ready {
		return header + "\n"
	}
	return header + "\n" + m.viewport.View() + "\n" + footer
}

// RunReport opens the interactive audit browser and blocks until the
// user quits.
func RunReport(styles Styles, fn Auditor) error {
	p := tea.NewProgram(
		newReportModel(styles, fn),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
