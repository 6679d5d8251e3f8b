package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestStatusCycleCloses(t *testing.T) {
	for _, s := range Statuses() {
		got := s.Next().Next().Next()
		if got != s {
			t.Errorf("%s: three advances = %s", s, got)
		}
	}
}

func TestStatusNext(t *testing.T) {
	if StatusToRead.Next() != StatusReading {
		t.Errorf("to-read → %s", StatusToRead.Next())
	}
	if StatusReading.Next() != StatusCompleted {
		t.Errorf("reading → %s", StatusReading.Next())
	}
	if StatusCompleted.Next() != StatusToRead {
		t.Errorf("completed → %s", StatusCompleted.Next())
	}
}

func TestStatusLabels(t *testing.T) {
	if StatusReading.Label() != "Reading" {
		t.Errorf("label = %q", StatusReading.Label())
	}
	if StatusCompleted.ActionLabel() != "Reread" {
		t.Errorf("action = %q", StatusCompleted.ActionLabel())
	}
	if Status(9).Label() != "" {
		t.Error("undefined status should have no label")
	}
}

func TestParseStatusUnknown(t *testing.T) {
	if _, err := ParseStatus("abandoned"); err == nil {
		t.Error("expected error for unknown token")
	}
}

func TestStatusJSONToken(t *testing.T) {
	b := Book{ID: "1", Title: "Dune", Author: "Herbert", Status: StatusReading, AddedDate: time.Unix(0, 0).UTC()}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"status":"reading"`) {
		t.Errorf("status token missing in %s", data)
	}
	if !strings.Contains(string(data), `"addedDate":"1970-01-01T00:00:00Z"`) {
		t.Errorf("addedDate missing in %s", data)
	}

	var bad Book
	if err := json.Unmarshal([]byte(`{"status":"paused"}`), &bad); err == nil {
		t.Error("expected error decoding unknown status")
	}
}

func TestBookValidate(t *testing.T) {
	ok := Book{ID: "1", Title: "Dune", Author: "Herbert"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid book: %v", err)
	}
	cases := []Book{
		{ID: "", Title: "Dune", Author: "Herbert"},
		{ID: "1", Title: "", Author: "Herbert"},
		{ID: "1", Title: "Dune", Author: ""},
		{ID: "1", Title: "   ", Author: "Herbert"},
		{ID: "1", Title: "Dune", Author: "\t\n"},
		{ID: " ", Title: "Dune", Author: "Herbert"},
		{ID: "1", Title: "Dune", Author: "Herbert", Status: Status(7)},
	}
	for i, b := range cases {
		if err := b.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestFilter(t *testing.T) {
	reading := Book{Status: StatusReading}
	done := Book{Status: StatusCompleted}

	f, err := ParseFilter("reading")
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	if !f.Match(reading) || f.Match(done) {
		t.Error("reading filter mismatch")
	}
	if f.String() != "reading" {
		t.Errorf("String = %q", f.String())
	}

	for _, token := range []string{"", "all"} {
		all, err := ParseFilter(token)
		if err != nil {
			t.Fatalf("ParseFilter(%q): %v", token, err)
		}
		if !all.Match(reading) || !all.Match(done) {
			t.Errorf("%q filter should match everything", token)
		}
	}

	if _, err := ParseFilter("nope"); err == nil {
		t.Error("expected error for unknown filter")
	}
}

func TestFiltersOrder(t *testing.T) {
	var tokens []string
	for _, f := range Filters() {
		tokens = append(tokens, f.String())
	}
	if got := strings.Join(tokens, ","); got != "all,to-read,reading,completed" {
		t.Errorf("filters = %s", got)
	}
}
