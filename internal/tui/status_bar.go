package tui

import (
	"strings"

	"github.com/MKhiriev/go-plan-keeper/models"
)

// renderStatusBar renders the sync state line. spin is the current spinner
// frame, shown while a save is in flight.
func renderStatusBar(status models.SyncStatus, spin string) string {
	var state string
	switch status.State {
	case models.SyncStateSaving:
		state = spin + " Сохранение..."
	case models.SyncStateSaved:
		state = statusSavedStyle.Render("✓ Сохранено")
	case models.SyncStatePendingSync:
		state = statusPendingStyle.Render("⟳ Ожидает синхронизации")
	case models.SyncStateError:
		state = statusErrorStyle.Render("✗ Ошибка")
	default:
		state = "Готово"
	}

	parts := []string{state}
	if status.Message != "" && (status.State == models.SyncStatePendingSync || status.State == models.SyncStateError) {
		parts = append(parts, fitText(status.Message, 48))
	}
	if status.PendingCount > 0 {
		parts = append(parts, "в очереди: "+plural(status.PendingCount, "запись", "записи", "записей"))
	}
	if !status.Online {
		parts = append(parts, statusPendingStyle.Render("офлайн"))
	}

	return strings.Join(parts, " │ ")
}
