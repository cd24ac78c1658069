package domain

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
)

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"plain":          "2025-03-12",
		"with_time":      "2025-03-12T00:00:00",
		"space_its_time": "2025-03-12 00:00:00",
	}
	want := NewDate(2025, time.March, 12)
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := ParseDate(raw)
			if err != nil {
				t.Fatalf("parse %q: %v", raw, err)
			}
			if !d.Equal(want) {
				t.Fatalf("expected %s, got %s", want, d)
			}
		})
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "12/03/2025", "2025-13-40", "soon"} {
		if _, err := ParseDate(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	type wrapper struct {
		Due Date `json:"due_date"`
	}
	payload, err := sonic.Marshal(wrapper{Due: NewDate(2025, time.March, 12)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"due_date":"2025-03-12"}` {
		t.Fatalf("unexpected payload: %s", payload)
	}
	var w wrapper
	if err := sonic.Unmarshal(payload, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !w.Due.Equal(NewDate(2025, time.March, 12)) {
		t.Fatalf("round trip changed the date: %s", w.Due)
	}
}

func TestDateWeekBounds(t *testing.T) {
	// Wednesday
	d := NewDate(2025, time.March, 12)
	if got := d.StartOfWeek(); !got.Equal(NewDate(2025, time.March, 10)) {
		t.Fatalf("expected Monday 2025-03-10, got %s", got)
	}
	if got := d.EndOfWeek(); !got.Equal(NewDate(2025, time.March, 16)) {
		t.Fatalf("expected Sunday 2025-03-16, got %s", got)
	}
	// Sunday stays in the running week.
	sunday := NewDate(2025, time.March, 16)
	if got := sunday.StartOfWeek(); !got.Equal(NewDate(2025, time.March, 10)) {
		t.Fatalf("expected Sunday to map to Monday 2025-03-10, got %s", got)
	}
}
