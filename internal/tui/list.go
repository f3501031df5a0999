package tui

import (
	"fmt"
	"strings"

	"github.com/MKhiriev/go-plan-keeper/models"
)

type listModel struct {
	records []models.Record
	idx     int
	// openID is the client side id of the record open in the editor.
	openID string
}

func (m *listModel) setRecords(records []models.Record) {
	m.records = records
	if m.idx >= len(m.records) {
		m.idx = len(m.records) - 1
	}
	if m.idx < 0 {
		m.idx = 0
	}
}

func (m *listModel) move(delta int) {
	next := m.idx + delta
	if next >= 0 && next < len(m.records) {
		m.idx = next
	}
}

func (m listModel) current() (models.Record, bool) {
	if len(m.records) == 0 || m.idx < 0 || m.idx >= len(m.records) {
		return models.Record{}, false
	}
	return m.records[m.idx], true
}

func (m listModel) View() string {
	if len(m.records) == 0 {
		return "Нет записей. n: создать"
	}

	var b strings.Builder
	for i, r := range m.records {
		cursor := "  "
		if i == m.idx {
			cursor = "> "
		}

		name := r.Name()
		if name == "" {
			name = "(без названия)"
		}

		mark := " "
		switch {
		case r.IsLocal():
			mark = "*"
		case r.ClientSideID == m.openID:
			mark = "•"
		}

		fmt.Fprintf(&b, "%s%s %s\n", cursor, mark, fitText(name, 48))
	}
	return strings.TrimRight(b.String(), "\n")
}
