package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	focusName = iota
	focusBody
)

// editorModel edits the open record: its name in a single line input and
// the rest of the content as JSON.
type editorModel struct {
	name  textinput.Model
	body  textarea.Model
	focus int
	// err describes the last body that failed to parse. The draft keeps the
	// last valid content meanwhile.
	err string
}

func newEditorModel() editorModel {
	name := textinput.New()
	name.Placeholder = "Название"
	name.CharLimit = 200
	name.Width = 60

	body := textarea.New()
	body.Placeholder = `{"amount": 0}`
	body.ShowLineNumbers = false
	body.SetWidth(60)
	body.SetHeight(12)

	return editorModel{name: name, body: body}
}

// load fills the inputs from record and focuses the name.
func (m *editorModel) load(record models.Record) {
	m.name.SetValue(record.Name())
	m.name.CursorEnd()
	m.body.SetValue(editorBody(record.Content))
	m.err = ""
	m.focus = focusName
	m.body.Blur()
	m.name.Focus()
}

func (m *editorModel) toggleFocus() {
	if m.focus == focusName {
		m.focus = focusBody
		m.name.Blur()
		m.body.Focus()
		return
	}
	m.focus = focusName
	m.body.Blur()
	m.name.Focus()
}

func (m *editorModel) resize(width int) {
	w := width - 8
	if w < 20 {
		w = 20
	}
	m.name.Width = w
	m.body.SetWidth(w)
}

func (m editorModel) update(msg tea.Msg) (editorModel, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == focusName {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.body, cmd = m.body.Update(msg)
	}
	return m, cmd
}

// content builds record content from the inputs.
func (m *editorModel) content() (models.Content, error) {
	content, err := parseContent(m.name.Value(), m.body.Value())
	if err != nil {
		m.err = err.Error()
		return nil, err
	}
	m.err = ""
	return content, nil
}

func (m editorModel) View() string {
	var b strings.Builder
	b.WriteString("Название\n")
	b.WriteString(m.name.View())
	b.WriteString("\n\nСодержимое (JSON)\n")
	b.WriteString(m.body.View())
	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("JSON: " + m.err))
	}
	return b.String()
}

// editorBody renders content without the name key as indented JSON.
func editorBody(content models.Content) string {
	rest := make(map[string]any, len(content))
	for k, v := range content {
		if k != models.ContentNameKey {
			rest[k] = v
		}
	}
	if len(rest) == 0 {
		return "{}"
	}

	out, err := json.MarshalIndent(rest, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(out)
}

// parseContent merges the name into the JSON object in body. An empty body
// is an empty object.
func parseContent(name, body string) (models.Content, error) {
	content := models.Content{}

	if strings.TrimSpace(body) != "" {
		if err := json.Unmarshal([]byte(body), &content); err != nil {
			return nil, fmt.Errorf("ожидается JSON-объект: %w", err)
		}
	}

	if content == nil {
		content = models.Content{}
	}
	if name != "" {
		content[models.ContentNameKey] = name
	} else {
		delete(content, models.ContentNameKey)
	}
	return content, nil
}
