package internal

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenHistory() error: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func archivedThread() *ChatThread {
	return &ChatThread{
		ID:        "thread-1",
		Title:     "total sales 2024",
		CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Messages: []Message{
			NewUserMessage("total sales 2024"),
			{
				Role:       RoleAssistant,
				Content:    "Total sales for 2024.",
				Timestamp:  time.Now(),
				Resolvable: true,
				ResultType: ResultText,
				Text:       &TextPayload{Value: "1,204,500 EUR"},
				Diagnostics: &Diagnostics{
					GeneratedQuery:   "SELECT SUM(amount) FROM sales",
					ExecutionSeconds: 2.5,
				},
			},
		},
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	h := openTestHistory(t)

	if err := h.SaveThread(archivedThread()); err != nil {
		t.Fatalf("SaveThread() error: %v", err)
	}

	loaded, err := h.LoadThread("thread-1")
	if err != nil {
		t.Fatalf("LoadThread() error: %v", err)
	}
	if loaded == nil {
		t.Fatal("LoadThread() returned nil for a saved thread")
	}
	if loaded.Title != "total sales 2024" {
		t.Errorf("Title = %q", loaded.Title)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(loaded.Messages))
	}

	answer := loaded.Messages[1]
	if answer.ResultType != ResultText || answer.Text == nil {
		t.Fatalf("text payload lost in round trip: %+v", answer)
	}
	if answer.Text.Value != "1,204,500 EUR" {
		t.Errorf("Text.Value = %q", answer.Text.Value)
	}
	if answer.Diagnostics == nil || answer.Diagnostics.GeneratedQuery == "" {
		t.Error("diagnostics lost in round trip")
	}
}

func TestHistorySaveReplacesSnapshot(t *testing.T) {
	h := openTestHistory(t)

	thread := archivedThread()
	if err := h.SaveThread(thread); err != nil {
		t.Fatalf("SaveThread() error: %v", err)
	}

	thread.Messages = append(thread.Messages, NewUserMessage("follow up"))
	thread.Title = "renamed"
	if err := h.SaveThread(thread); err != nil {
		t.Fatalf("SaveThread() resave error: %v", err)
	}

	loaded, err := h.LoadThread(thread.ID)
	if err != nil {
		t.Fatalf("LoadThread() error: %v", err)
	}
	if loaded.Title != "renamed" {
		t.Errorf("Title = %q, want renamed", loaded.Title)
	}
	if len(loaded.Messages) != 3 {
		t.Errorf("got %d messages, want 3", len(loaded.Messages))
	}

	summaries, err := h.ListThreads()
	if err != nil {
		t.Fatalf("ListThreads() error: %v", err)
	}
	if len(summaries) != 1 {
		t.Errorf("resave must not duplicate the thread, got %d", len(summaries))
	}
}

func TestHistorySkipsEmptyThreads(t *testing.T) {
	h := openTestHistory(t)

	if err := h.SaveThread(&ChatThread{ID: "empty", Title: DefaultThreadTitle}); err != nil {
		t.Fatalf("SaveThread() error: %v", err)
	}
	if err := h.SaveThread(nil); err != nil {
		t.Fatalf("SaveThread(nil) error: %v", err)
	}

	summaries, err := h.ListThreads()
	if err != nil {
		t.Fatalf("ListThreads() error: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("empty threads must not be archived, got %d", len(summaries))
	}
}

func TestHistoryListNewestSavedFirst(t *testing.T) {
	h := openTestHistory(t)

	older := archivedThread()
	older.ID = "older"
	if err := h.SaveThread(older); err != nil {
		t.Fatalf("SaveThread() error: %v", err)
	}

	time.Sleep(1100 * time.Millisecond) // saved_at has second resolution

	newer := archivedThread()
	newer.ID = "newer"
	if err := h.SaveThread(newer); err != nil {
		t.Fatalf("SaveThread() error: %v", err)
	}

	summaries, err := h.ListThreads()
	if err != nil {
		t.Fatalf("ListThreads() error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	if summaries[0].ID != "newer" {
		t.Errorf("listing should be most recently saved first, got %q", summaries[0].ID)
	}
	if summaries[0].MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2", summaries[0].MessageCount)
	}
}

func TestHistoryLoadUnknownThread(t *testing.T) {
	h := openTestHistory(t)

	loaded, err := h.LoadThread("nope")
	if err != nil {
		t.Fatalf("LoadThread() error: %v", err)
	}
	if loaded != nil {
		t.Errorf("unknown id should load nil, got %+v", loaded)
	}
}
