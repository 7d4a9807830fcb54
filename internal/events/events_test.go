package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/duesbook/internal/models"
)

func TestMessage_RoundTrip(t *testing.T) {
	activity := &models.Activity{
		ID:      "act-1",
		Action:  models.ActionSettle,
		ActorID: "alice",
		At:      1735689600,
		Detail: models.SettlementDetail{
			SettlementID: "s-1",
			FromID:       "bob",
			ToID:         "alice",
			Amount:       decimal.RequireFromString("100.00"),
			Period:       "2025-01",
		},
	}

	msg, err := NewMessage(activity)
	if err != nil {
		t.Fatalf("NewMessage failed: %v", err)
	}
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	var decoded Message
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.Kind != models.DetailSettlement {
		t.Errorf("expected kind settlement, got %q", decoded.Kind)
	}

	got, err := decoded.Activity()
	if err != nil {
		t.Fatalf("Activity failed: %v", err)
	}
	detail, ok := got.Detail.(models.SettlementDetail)
	if !ok {
		t.Fatalf("expected SettlementDetail, got %T", got.Detail)
	}
	if !detail.Amount.Equal(decimal.RequireFromString("100")) {
		t.Errorf("expected amount 100, got %s", detail.Amount)
	}
	if got.ActorID != "alice" || got.Action != models.ActionSettle {
		t.Errorf("unexpected header: %+v", got)
	}
}

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()
	ctx := context.Background()

	for _, action := range []models.Action{models.ActionCreate, models.ActionDelete} {
		err := p.Publish(ctx, &models.Activity{
			ID:     string(action),
			Action: action,
			Detail: models.ExpenseDetail{ExpenseID: "e-1"},
		})
		if err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	msgs := p.Messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Action != models.ActionCreate || msgs[1].Action != models.ActionDelete {
		t.Errorf("messages out of order: %s, %s", msgs[0].Action, msgs[1].Action)
	}

	if err := p.Publish(ctx, &models.Activity{Action: models.ActionCreate}); err == nil {
		t.Error("expected error for activity without detail")
	}
}
