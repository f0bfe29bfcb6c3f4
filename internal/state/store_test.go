package state_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"optdrive/internal/state"
	"optdrive/internal/testsupport"
)

func openStore(t *testing.T) *state.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndHistory(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Minute)
	for i, adj := range []state.Adjustment{
		{ID: "op-1", AppID: "web", Status: "ok", Reason: "success", Payload: json.RawMessage(`{"a":1}`)},
		{ID: "op-2", AppID: "web", Status: "failed", Reason: "value"},
		{ID: "op-3", AppID: "other", Status: "ok", Reason: "success", Payload: json.RawMessage(`{"b":2}`)},
	} {
		adj.CreatedAt = base.Add(time.Duration(i) * time.Second)
		if err := store.RecordAdjustment(ctx, adj); err != nil {
			t.Fatalf("record %s: %v", adj.ID, err)
		}
	}

	history, err := store.History(ctx, "web", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries for web, got %d", len(history))
	}
	// Newest first.
	if history[0].ID != "op-2" || history[1].ID != "op-1" {
		t.Fatalf("unexpected order: %s, %s", history[0].ID, history[1].ID)
	}
	if history[1].Status != "ok" || history[1].Reason != "success" {
		t.Fatalf("unexpected entry %+v", history[1])
	}

	limited, err := store.History(ctx, "web", 1)
	if err != nil {
		t.Fatalf("limited history: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "op-2" {
		t.Fatalf("unexpected limited history %+v", limited)
	}
}

func TestLastAppliedTracksSuccessesOnly(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, ok, err := store.LastApplied(ctx, "web"); err != nil || ok {
		t.Fatalf("expected no last applied payload, ok=%v err=%v", ok, err)
	}

	if err := store.RecordAdjustment(ctx, state.Adjustment{
		ID: "op-1", AppID: "web", Status: "ok", Reason: "success",
		Payload: json.RawMessage(`{"heap":2048}`),
	}); err != nil {
		t.Fatalf("record success: %v", err)
	}
	if err := store.RecordAdjustment(ctx, state.Adjustment{
		ID: "op-2", AppID: "web", Status: "failed", Reason: "value",
		Payload: json.RawMessage(`{"heap":99999}`),
	}); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	payload, ok, err := store.LastApplied(ctx, "web")
	if err != nil {
		t.Fatalf("last applied: %v", err)
	}
	if !ok {
		t.Fatal("expected a last applied payload")
	}
	// The failed operation must not overwrite the last successful payload.
	if string(payload) != `{"heap":2048}` {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestClear(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if err := store.RecordAdjustment(ctx, state.Adjustment{
		ID: "op-1", AppID: "web", Status: "ok", Reason: "success",
		Payload: json.RawMessage(`{}`),
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	history, err := store.History(ctx, "web", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history after clear, got %d entries", len(history))
	}
	if _, ok, _ := store.LastApplied(ctx, "web"); ok {
		t.Fatal("expected no last applied payload after clear")
	}
}

func TestOpenRejectsSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	first, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	defer first.Close()

	if _, err := state.Open(cfg); !errors.Is(err, state.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestReopenAfterClose(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	store, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.RecordAdjustment(context.Background(), state.Adjustment{
		ID: "op-1", AppID: "web", Status: "ok", Reason: "success", Payload: json.RawMessage(`{}`),
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	history, err := reopened.History(context.Background(), "web", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected persisted history, got %d entries", len(history))
	}
}
