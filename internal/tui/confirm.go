package tui

import "github.com/MKhiriev/go-plan-keeper/models"

func renderConfirmDelete(record models.Record) string {
	name := record.Name()
	if name == "" {
		name = "без названия"
	}
	content := "Удалить \"" + fitText(name, 40) + "\"?\n\n"
	content += "y да    n нет"
	return overlayBoxStyle.Render(content)
}
