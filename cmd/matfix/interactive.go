package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/asset-redirect/materialbin"
	"github.com/wippyai/asset-redirect/materialbin/bgfx"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	stageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// codeLines is how much shader code the preview shows.
const codeLines = 30

type browserState int

const (
	stateSelectPass browserState = iota
	stateSelectShader
	stateShowCode
)

type shaderRef struct {
	variant int
	flags   string
	shader  materialbin.Shader
}

type browserModel struct {
	err      error
	material *materialbin.Material
	filename string
	version  materialbin.Version
	filter   textinput.Model
	passes   []int
	shaders  []shaderRef
	code     string
	selected int
	pass     int
	offset   int
	state    browserState
}

func newBrowserModel(filename string, data []byte) *browserModel {
	ti := textinput.New()
	ti.Placeholder = "filter passes"
	ti.Prompt = "/ "
	ti.Width = 40

	m := &browserModel{filename: filename, filter: ti, state: stateSelectPass}
	m.version, m.material, m.err = materialbin.Probe(data)
	if m.err == nil {
		m.applyFilter()
	}
	return m
}

func (m *browserModel) Init() tea.Cmd {
	return nil
}

func (m *browserModel) applyFilter() {
	q := strings.ToLower(m.filter.Value())
	m.passes = m.passes[:0]
	for i, p := range m.material.Passes {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) {
			m.passes = append(m.passes, i)
		}
	}
	if m.selected >= len(m.passes) {
		m.selected = 0
	}
}

func (m *browserModel) openPass() {
	m.pass = m.passes[m.selected]
	p := m.material.Passes[m.pass]
	m.shaders = m.shaders[:0]
	for vi, vr := range p.Variants {
		flags := make([]string, len(vr.Flags))
		for i, f := range vr.Flags {
			flags[i] = f.Name + "=" + f.Value
		}
		for _, s := range vr.Shaders {
			m.shaders = append(m.shaders, shaderRef{variant: vi, flags: strings.Join(flags, " "), shader: s})
		}
	}
	m.selected = 0
	m.state = stateSelectShader
}

func (m *browserModel) openShader() {
	ref := m.shaders[m.selected]
	sh, err := bgfx.Parse(ref.shader.Blob)
	if err != nil {
		m.code = errorStyle.Render(fmt.Sprintf("not a bgfx shader: %v", err))
	} else {
		m.code = string(sh.Code)
	}
	m.offset = 0
	m.state = stateShowCode
}

func (m *browserModel) listLen() int {
	switch m.state {
	case stateSelectPass:
		return len(m.passes)
	case stateSelectShader:
		return len(m.shaders)
	}
	return 0
}

func (m *browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filter.Focused() {
		switch key.String() {
		case "enter", "esc":
			m.filter.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.applyFilter()
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "/":
		if m.state == stateSelectPass && m.err == nil {
			return m, m.filter.Focus()
		}

	case "up", "k":
		if m.state == stateShowCode {
			if m.offset > 0 {
				m.offset--
			}
		} else if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.state == stateShowCode {
			if m.offset < strings.Count(m.code, "\n") {
				m.offset++
			}
		} else if m.selected < m.listLen()-1 {
			m.selected++
		}

	case "enter":
		switch m.state {
		case stateSelectPass:
			if len(m.passes) > 0 {
				m.openPass()
			}
		case stateSelectShader:
			if len(m.shaders) > 0 {
				m.openShader()
			}
		}

	case "esc":
		switch m.state {
		case stateSelectShader:
			m.state = stateSelectPass
			m.selected = 0
		case stateShowCode:
			m.state = stateSelectShader
		}
	}
	return m, nil
}

func (m *browserModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Material Browser"))
	b.WriteString(fmt.Sprintf(" %s  %s %s\n\n", m.filename, m.material.Name, stageStyle.Render(m.version.String())))

	switch m.state {
	case stateSelectPass:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		for i, pi := range m.passes {
			p := m.material.Passes[pi]
			line := fmt.Sprintf("%s (%d variants)", p.Name, len(p.Variants))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + passStyle.Render(line))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter open • / filter • q quit"))

	case stateSelectShader:
		b.WriteString(fmt.Sprintf("Pass %s\n\n", passStyle.Render(m.material.Passes[m.pass].Name)))
		for i, ref := range m.shaders {
			line := fmt.Sprintf("#%-3d %-22s %6d bytes  %s", ref.variant, shaderLabel(ref.shader), len(ref.shader.Blob), ref.flags)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter view code • esc back • q quit"))

	case stateShowCode:
		ref := m.shaders[m.selected]
		b.WriteString(fmt.Sprintf("%s variant %d %s\n\n",
			passStyle.Render(m.material.Passes[m.pass].Name), ref.variant, stageStyle.Render(shaderLabel(ref.shader))))
		lines := strings.Split(m.code, "\n")
		end := m.offset + codeLines
		if end > len(lines) {
			end = len(lines)
		}
		b.WriteString(codeStyle.Render(strings.Join(lines[m.offset:end], "\n")))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func runInteractive(filename string, data []byte) error {
	p := tea.NewProgram(newBrowserModel(filename, data), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
