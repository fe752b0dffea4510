package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/notexe/reminder-tracker/internal/reminder"
)

var tableHeaders = []string{"ID", "Name", "Type", "Handler", "End", "Remind", "Auto", "Status"}

// StatusTable renders views as a bordered table with a colored status column.
func (f *Formatter) StatusTable(views []reminder.View) string {
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		auto := ""
		if v.AutoRenew {
			auto = "yes"
		}
		rows = append(rows, []string{
			strconv.FormatInt(v.ID, 10),
			v.Name,
			v.Type,
			v.Handler,
			v.EndDate.String(),
			v.ReminderDate().String(),
			auto,
			string(v.Status),
		})
	}

	statusCol := len(tableHeaders) - 1
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(tableHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			cell := lipgloss.NewStyle().Padding(0, 1)
			if !f.colored {
				return cell
			}
			if row == table.HeaderRow {
				return cell.Inherit(HeaderStyle)
			}
			if col == statusCol && row >= 0 && row < len(views) {
				if style, ok := statusStyles[views[row].Status]; ok {
					return cell.Inherit(style)
				}
			}
			return cell
		})
	if f.colored {
		t = t.BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62")))
	}

	return t.Render()
}
