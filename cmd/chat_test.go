package cmd

import (
	"strings"
	"testing"

	"github.com/ayoubharati/dataware-chatbot/internal"
	tea "github.com/charmbracelet/bubbletea"
)

func diagMessage(resolvable bool) internal.Message {
	return internal.Message{
		Role:       internal.RoleAssistant,
		Content:    "answer",
		Resolvable: resolvable,
		ResultType: internal.ResultNone,
		Diagnostics: &internal.Diagnostics{
			GeneratedQuery:   "SELECT 1",
			ExecutionSeconds: 0.5,
		},
	}
}

func TestRenderBodySuppressesPanelWhenUnresolvable(t *testing.T) {
	m := chatModel{showDiag: true, width: 80}

	out := m.renderBody(diagMessage(false), true)
	if strings.Contains(out, "SELECT 1") {
		t.Errorf("unresolvable turn must not show the detail panel:\n%s", out)
	}

	out = m.renderBody(diagMessage(true), true)
	if !strings.Contains(out, "SELECT 1") {
		t.Errorf("resolvable turn with diagnostics should show the panel:\n%s", out)
	}
}

func TestRenderBodyPanelClosedByDefault(t *testing.T) {
	m := chatModel{showDiag: false, width: 80}

	if out := m.renderBody(diagMessage(true), true); strings.Contains(out, "SELECT 1") {
		t.Errorf("panel should stay hidden until toggled:\n%s", out)
	}
}

func TestHandleKeyPageDownWithoutTable(t *testing.T) {
	m := chatModel{store: internal.NewStore(), table: tableView{page: 1}}

	updated, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyPgDown})
	got, ok := updated.(chatModel)
	if !ok {
		t.Fatalf("handleKey returned %T", updated)
	}
	if got.table.page != 1 {
		t.Errorf("page = %d, want 1 when the thread has no table", got.table.page)
	}
}
