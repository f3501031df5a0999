package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/service"
	"github.com/MKhiriev/go-plan-keeper/models"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type viewKind string

const (
	viewList   viewKind = "list"
	viewEditor viewKind = "editor"
)

const (
	opOpen      = "open"
	opNew       = "new"
	opDelete    = "delete"
	opRefresh   = "refresh"
	opRemediate = "remediate"
	opView      = "view"
)

const noticeTimeout = 3 * time.Second

// signalEmitter accepts lifecycle signals raised by the terminal.
type signalEmitter interface {
	Emit(kind models.LifecycleKind) bool
}

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

type mainModel struct {
	ctx         context.Context
	coordinator service.ClientSaveCoordinator
	signals     signalEmitter
	buildInfo   models.AppBuildInfo

	view    viewKind
	list    listModel
	editor  editorModel
	status  models.SyncStatus
	spinner spinner.Model
	ticking bool

	notice    string
	noticeSeq int
	errMsg    string

	confirmDelete *models.Record
	showBuildInfo bool
}

func newMainModel(ctx context.Context, coordinator service.ClientSaveCoordinator, signals signalEmitter, buildInfo models.AppBuildInfo) mainModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot

	m := mainModel{
		ctx:         ctx,
		coordinator: coordinator,
		signals:     signals,
		buildInfo:   buildInfo,
		view:        viewList,
		editor:      newEditorModel(),
		status:      coordinator.Status(),
		spinner:     s,
	}
	m.list.setRecords(coordinator.Records())

	// reopen the editor if it was the last view and its record survived
	if record, ok := coordinator.Draft().Snapshot(); ok {
		m.list.openID = record.ClientSideID
		if coordinator.LastView(ctx) == string(viewEditor) {
			m.openEditor(record)
		}
	}
	return m
}

func (m mainModel) Init() tea.Cmd {
	return nil
}

func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		return m.applyStatus(models.SyncStatus(msg))
	case spinner.TickMsg:
		if m.status.State != models.SyncStateSaving {
			m.ticking = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.FocusMsg:
		m.signals.Emit(models.LifecycleFocus)
		return m, nil
	case tea.BlurMsg:
		m.signals.Emit(models.LifecycleBackground)
		return m, nil
	case tea.WindowSizeMsg:
		m.editor.resize(msg.Width)
		return m, nil
	case saveOutcomeMsg:
		cmd := m.applyOutcome(msg.outcome)
		return m, cmd
	case opDoneMsg:
		return m.applyOpDone(msg)
	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	if m.view == viewEditor {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.update(msg)
		return m, cmd
	}
	return m, nil
}

// ── state from the coordinator ───────────────────────────────────────────────

func (m mainModel) applyStatus(status models.SyncStatus) (tea.Model, tea.Cmd) {
	m.status = status
	m.list.setRecords(m.coordinator.Records())

	var cmds []tea.Cmd
	if status.Pulse {
		cmds = append(cmds, m.setNotice("Изменений нет, всё сохранено"))
	}
	if status.State == models.SyncStateSaving && !m.ticking {
		m.ticking = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m *mainModel) applyOutcome(outcome models.SaveOutcome) tea.Cmd {
	var text string
	switch outcome {
	case models.OutcomeSkippedHidden:
		text = "Окно в фоне, сохранение отложено"
	case models.OutcomeSkippedAuth:
		text = "Аккаунт не активен, сохранение недоступно"
	case models.OutcomeSkippedBusy:
		text = "Сохранение уже выполняется"
	case models.OutcomeSkippedUnnamed:
		text = "Укажите название записи"
	case models.OutcomeSkippedNoRecord:
		text = "Нет открытой записи"
	case models.OutcomeSkippedRejected:
		text = "Сервер уже отклонил эти данные, измените запись"
	default:
		return nil
	}
	return m.setNotice(text)
}

func (m mainModel) applyOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	m.list.setRecords(m.coordinator.Records())

	if msg.err != nil {
		m.errMsg = humanizeError(msg.err)
		return m, nil
	}
	m.errMsg = ""

	switch msg.op {
	case opOpen, opNew:
		record, ok := m.coordinator.Draft().Snapshot()
		if !ok {
			return m, nil
		}
		m.openEditor(record)
		return m, m.cmdRememberView(viewEditor)
	case opDelete:
		cmd := m.setNotice("Запись удалена")
		return m, cmd
	case opRefresh:
		cmd := m.setNotice("Список обновлён")
		return m, cmd
	case opRemediate:
		cmd := m.setNotice("Готово")
		return m, cmd
	}
	return m, nil
}

func (m *mainModel) openEditor(record models.Record) {
	m.view = viewEditor
	m.list.openID = record.ClientSideID
	m.editor.load(record)
}

func (m *mainModel) setNotice(text string) tea.Cmd {
	m.noticeSeq++
	seq := m.noticeSeq
	m.notice = text
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg { return clearNoticeMsg{seq: seq} })
}

// syncDraft copies the editor inputs into the open record. While the JSON
// body does not parse only the name is copied.
func (m *mainModel) syncDraft() {
	draft := m.coordinator.Draft()

	content, err := m.editor.content()
	if err != nil {
		name := strings.TrimSpace(m.editor.name.Value())
		draft.Update(func(r *models.Record) {
			if r.Content == nil {
				r.Content = models.Content{}
			}
			if name == "" {
				delete(r.Content, models.ContentNameKey)
				return
			}
			r.Content[models.ContentNameKey] = name
		})
		return
	}

	draft.Update(func(r *models.Record) {
		r.Content = content
	})
}

// ── keys ─────────────────────────────────────────────────────────────────────

func (m mainModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.status.Remediation:
		return m.updateRemediation(msg)
	case m.confirmDelete != nil:
		return m.updateConfirm(msg)
	case m.showBuildInfo:
		if key.Matches(msg, keys.esc) || key.Matches(msg, keys.version) {
			m.showBuildInfo = false
		}
		return m, nil
	}

	if key.Matches(msg, keys.save) {
		if m.view == viewEditor {
			m.syncDraft()
		}
		return m, m.cmdSave()
	}

	if m.view == viewEditor {
		return m.updateEditor(msg)
	}
	return m.updateList(msg)
}

func (m mainModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.up):
		m.list.move(-1)
	case key.Matches(msg, keys.down):
		m.list.move(1)
	case key.Matches(msg, keys.newItem):
		return m, m.cmdNew()
	case key.Matches(msg, keys.refresh):
		return m, m.cmdRefresh()
	case key.Matches(msg, keys.version):
		m.showBuildInfo = true
	case key.Matches(msg, keys.enter):
		record, ok := m.list.current()
		if !ok {
			cmd := m.setNotice("Нет записей")
			return m, cmd
		}
		if record.ClientSideID == m.list.openID {
			// already open, keep the live draft
			if snapshot, ok := m.coordinator.Draft().Snapshot(); ok {
				m.openEditor(snapshot)
				return m, m.cmdRememberView(viewEditor)
			}
		}
		return m, m.cmdOpen(record)
	case key.Matches(msg, keys.delete):
		if record, ok := m.list.current(); ok {
			m.confirmDelete = &record
		}
	case key.Matches(msg, keys.copy):
		record, ok := m.list.current()
		if !ok {
			cmd := m.setNotice("Нечего копировать")
			return m, cmd
		}
		id := record.ID
		if id == "" {
			id = record.ClientSideID
		}
		if err := writeClipboard(id); err != nil {
			m.errMsg = fmt.Sprintf("Ошибка копирования: %v", err)
			return m, nil
		}
		cmd := m.setNotice("ID скопирован")
		return m, cmd
	}
	return m, nil
}

func (m mainModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.esc):
		m.view = viewList
		return m, m.cmdRememberView(viewList)
	case key.Matches(msg, keys.tab):
		m.editor.toggleFocus()
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.update(msg)
	m.syncDraft()
	return m, cmd
}

func (m mainModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.yes):
		record := *m.confirmDelete
		m.confirmDelete = nil
		return m, m.cmdDelete(record)
	case key.Matches(msg, keys.no):
		m.confirmDelete = nil
	}
	return m, nil
}

func (m mainModel) updateRemediation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.discard):
		return m, m.cmdRemediate(models.RemediationDiscardLocal)
	case key.Matches(msg, keys.retry):
		return m, m.cmdRemediate(models.RemediationRetry)
	case key.Matches(msg, keys.keep):
		return m, m.cmdRemediate(models.RemediationKeepLocal)
	case key.Matches(msg, keys.export):
		record, ok := m.coordinator.Draft().Snapshot()
		if !ok {
			cmd := m.setNotice("Нечего копировать")
			return m, cmd
		}
		out, err := json.MarshalIndent(record, "", "  ")
		if err == nil {
			err = writeClipboard(string(out))
		}
		if err != nil {
			m.errMsg = fmt.Sprintf("Ошибка копирования: %v", err)
			return m, nil
		}
		cmd := m.setNotice("Локальная копия в буфере обмена")
		return m, cmd
	}
	return m, nil
}

// ── commands ─────────────────────────────────────────────────────────────────

func (m mainModel) cmdSave() tea.Cmd {
	ctx, c := m.ctx, m.coordinator
	return func() tea.Msg {
		return saveOutcomeMsg{outcome: c.RequestSave(ctx, models.SaveRequest{Trigger: models.TriggerManual})}
	}
}

func (m mainModel) cmdOpen(record models.Record) tea.Cmd {
	ctx, c := m.ctx, m.coordinator
	return func() tea.Msg {
		return opDoneMsg{op: opOpen, err: c.LoadRecord(ctx, record)}
	}
}

func (m mainModel) cmdNew() tea.Cmd {
	ctx, c := m.ctx, m.coordinator
	return func() tea.Msg {
		_, err := c.CreateNewRecord(ctx)
		return opDoneMsg{op: opNew, err: err}
	}
}

func (m mainModel) cmdDelete(record models.Record) tea.Cmd {
	ctx, c := m.ctx, m.coordinator
	id := record.ID
	if id == "" {
		id = record.ClientSideID
	}
	return func() tea.Msg {
		return opDoneMsg{op: opDelete, err: c.DeleteRecord(ctx, id)}
	}
}

func (m mainModel) cmdRefresh() tea.Cmd {
	ctx, c := m.ctx, m.coordinator
	return func() tea.Msg {
		return opDoneMsg{op: opRefresh, err: c.RefreshList(ctx)}
	}
}

func (m mainModel) cmdRemediate(action models.RemediationAction) tea.Cmd {
	ctx, c := m.ctx, m.coordinator
	return func() tea.Msg {
		return opDoneMsg{op: opRemediate, err: c.Remediate(ctx, action)}
	}
}

func (m mainModel) cmdRememberView(view viewKind) tea.Cmd {
	ctx, c := m.ctx, m.coordinator
	return func() tea.Msg {
		if err := c.RememberView(ctx, string(view)); err != nil {
			return opDoneMsg{op: opView, err: err}
		}
		return nil
	}
}

// ── view ─────────────────────────────────────────────────────────────────────

func (m mainModel) View() string {
	if m.showBuildInfo {
		return renderBuildInfoWindow(m.buildInfo)
	}

	var b strings.Builder
	b.WriteString(renderStatusBar(m.status, m.spinner.View()))
	b.WriteString("\n\n")

	title := "ЗАПИСИ"
	hotKeys := "enter: открыть │ n: новая │ d: удалить │ c: копировать id │ r: обновить │ q: выход"
	if m.view == viewEditor {
		title = "РЕДАКТОР"
		hotKeys = "ctrl+s: сохранить │ tab: поле │ esc: к списку"
		b.WriteString(m.editor.View())
	} else {
		b.WriteString(m.list.View())
	}

	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(m.notice)
	}
	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Ошибка: " + m.errMsg))
	}

	switch {
	case m.status.Remediation:
		b.WriteString("\n\n")
		b.WriteString(renderRemediation(m.status))
	case m.confirmDelete != nil:
		b.WriteString("\n\n")
		b.WriteString(renderConfirmDelete(*m.confirmDelete))
	}

	return renderPage(title, b.String(), hotKeys)
}
