package tui

import (
	"strings"

	"github.com/MKhiriev/go-plan-keeper/models"
)

// renderRemediation draws the blocking overlay shown after a critical error.
// The user must pick one of the remediation actions to continue.
func renderRemediation(status models.SyncStatus) string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Сервер не может принять эту запись"))
	b.WriteString("\n\n")
	if status.Message != "" {
		b.WriteString(fitText(status.Message, 70))
		b.WriteString("\n\n")
	}
	b.WriteString("1  отбросить локальную копию и загрузить серверную\n")
	b.WriteString("2  повторить сохранение один раз\n")
	b.WriteString("3  оставить локальную копию и не повторять\n\n")
	b.WriteString(helpStyle.Render("c  скопировать локальную копию в буфер обмена"))

	return overlayBoxStyle.Render(b.String())
}
