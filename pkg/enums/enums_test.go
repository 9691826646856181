package enums

import (
	"encoding/json"
	"testing"
)

func TestOrderStatusLabel(t *testing.T) {
	t.Parallel()
	cases := map[OrderStatus]string{
		OrderStatusActive:    "Pendente",
		OrderStatusCompleted: "Concluída",
		OrderStatusCanceled:  "Cancelada",
		OrderStatus("lost"):  "Desconhecido",
	}
	for status, want := range cases {
		if got := status.Label(); got != want {
			t.Fatalf("%q: expected %q, got %q", status, want, got)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()
	if got, err := ParseOrderStatus("completed"); err != nil || got != OrderStatusCompleted {
		t.Fatalf("unexpected parse result %q %v", got, err)
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestSubmissionStateJSON(t *testing.T) {
	t.Parallel()
	raw, err := json.Marshal(map[string]SubmissionState{"state": SubmissionPending})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"state":"pending"}` {
		t.Fatalf("unexpected json %s", raw)
	}
}

func TestSubmissionStateUnmarshal(t *testing.T) {
	t.Parallel()
	var body struct {
		State SubmissionState `json:"state"`
	}
	if err := json.Unmarshal([]byte(`{"state":"failed"}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.State != SubmissionFailed {
		t.Fatalf("unexpected state %s", body.State)
	}
	if err := json.Unmarshal([]byte(`{"state":"sleeping"}`), &body); err == nil {
		t.Fatalf("expected error for unknown state")
	}
}
