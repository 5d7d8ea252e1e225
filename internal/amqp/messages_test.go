package amqp

import "testing"

func TestLedgerEventMessage_RoundTrip(t *testing.T) {
	msg := NewLedgerEventMessage("expense", "created", "e1", "a1")
	if msg.Timestamp.IsZero() {
		t.Error("new message should be timestamped")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := LedgerEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.EntryType != "expense" || got.Action != "created" {
		t.Errorf("got %+v", got)
	}
	if got.EntryID != "e1" || got.OwnerID != "a1" {
		t.Errorf("ids = %q/%q, want e1/a1", got.EntryID, got.OwnerID)
	}
	if !got.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, msg.Timestamp)
	}
}

func TestLedgerEventMessageFromJSON_Malformed(t *testing.T) {
	if _, err := LedgerEventMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
