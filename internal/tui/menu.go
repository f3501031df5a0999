package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type menuItem struct {
	title string
	page  string
}

// MenuModel is the start page of the login flow.
type MenuModel struct {
	items  []menuItem
	idx    int
	status string
}

func NewMenuModel(status string) *MenuModel {
	return &MenuModel{
		items: []menuItem{
			{title: "Войти", page: pageLogin},
			{title: "Зарегистрироваться", page: pageRegister},
		},
		status: status,
	}
}

func (m *MenuModel) Init() tea.Cmd {
	return nil
}

func (m *MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if m.idx > 0 {
			m.idx--
		}
	case "down", "j":
		if m.idx < len(m.items)-1 {
			m.idx++
		}
	case "enter":
		page := m.items[m.idx].page
		return m, func() tea.Msg { return NavigateTo{Page: page} }
	}

	return m, nil
}

func (m *MenuModel) View() string {
	var b strings.Builder

	if m.status != "" {
		b.WriteString(m.status)
		b.WriteString("\n\n")
	}

	for i, item := range m.items {
		cursor := " "
		if i == m.idx {
			cursor = ">"
		}
		fmt.Fprintf(&b, "%s %d │ %s\n", cursor, i+1, item.title)
	}

	return renderPage("GOPLANKEEPER", strings.TrimRight(b.String(), "\n"), "enter: выбрать │ ↑/↓: навигация │ v: версия")
}
