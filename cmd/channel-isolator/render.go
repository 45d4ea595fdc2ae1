package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/chanisolator/channel-isolator/internal/httpapi"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})
}

func renderSessions(sessions []httpapi.Session) {
	t := newTable("ID", "CHANNEL", "NAME", "ALIAS", "STATUS", "STARTED_AT")
	for _, s := range sessions {
		endedAt := "--"
		if s.EndedAt != nil {
			endedAt = fmt.Sprintf("%d", *s.EndedAt)
		}
		status := s.Status
		if status == "ended" {
			status = status + " (" + endedAt + ")"
		}
		t.Row(fmt.Sprintf("%d", s.ID), s.ChannelID, s.ChannelName, s.Alias, status, fmt.Sprintf("%d", s.StartedAt))
	}
	fmt.Println(t.Render())
}

func renderExceptions(exceptions []httpapi.Exception) {
	t := newTable("ID", "SESSION", "ALLOWED_CHANNEL", "NAME", "ALIAS", "CREATED_AT")
	for _, e := range exceptions {
		t.Row(fmt.Sprintf("%d", e.ID), fmt.Sprintf("%d", e.SessionID), e.AllowedChannelID, e.AllowedChannel, e.Alias, fmt.Sprintf("%d", e.CreatedAt))
	}
	fmt.Println(t.Render())
}

func renderAttempts(attempts []httpapi.Attempt) {
	t := newTable("ID", "OBSERVED_AT", "INCOMING", "OUTGOING", "AMOUNT_MSAT", "DECISION", "REASON")
	for _, a := range attempts {
		t.Row(
			fmt.Sprintf("%d", a.ID), fmt.Sprintf("%d", a.ObservedAt), a.IncomingChannelID, a.OutgoingChannelID,
			fmt.Sprintf("%d", a.AmountMsat), a.Decision, a.Reason,
		)
	}
	fmt.Println(t.Render())
}

func renderStats(stats httpapi.Statistics) {
	t := newTable("METRIC", "VALUE")
	t.Row("total_sessions", fmt.Sprintf("%d", stats.TotalSessions))
	t.Row("active_sessions", fmt.Sprintf("%d", stats.ActiveSessions))
	t.Row("total_attempts", fmt.Sprintf("%d", stats.TotalAttempts))
	t.Row("resumed", fmt.Sprintf("%d", stats.Resumed))
	t.Row("failed", fmt.Sprintf("%d", stats.Failed))
	t.Row("dropped_attempts", fmt.Sprintf("%d", stats.DroppedAttempts))
	fmt.Println(t.Render())
}
