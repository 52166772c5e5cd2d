package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
)

func sampleLogs() []domain.TransportLog {
	return []domain.TransportLog{
		{
			ID:             1,
			Client:         &domain.Client{ID: 1, Name: "Acme"},
			Driver:         &domain.Driver{ID: 2, Name: "Sami", PlateNumber: "123TU4567"},
			LoadDate:       "2024-05-01",
			LoadLocation:   "Tunis",
			UnloadLocation: "Sfax",
			Operator:       "op-1",
			TripPrice:      450,
		},
		{ID: 2, LoadLocation: "Sousse", UnloadLocation: "Gabes", TripPrice: 300},
	}
}

func TestTableFormatter_Format_Table(t *testing.T) {
	table := &Table{}
	table.SetHeaders("ID", "NAME")
	table.AddRow("1", "Acme")

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "ID") || !strings.Contains(buf.String(), "Acme") {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	if err := (&TableFormatter{NoHeaders: true}).Format(&buf, *table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), "NAME") {
		t.Error("NoHeaders should suppress the header row")
	}
}

func TestTableFormatter_Format_Nil(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, nil); err != nil {
		t.Fatalf("Format(nil) error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Format(nil) wrote %q", buf.String())
	}
}

func TestTableFormatter_Format_Clients(t *testing.T) {
	clients := []domain.Client{
		{ID: 1, Name: "Acme", IdentityID: "A-1"},
		{ID: 2, Name: "Globex", IdentityID: "G-7"},
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, clients); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ID", "NAME", "IDENTITY_ID", "Acme", "G-7"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTableFormatter_Format_TransportLogs(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, sampleLogs()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Acme") || !strings.Contains(out, "Sami (123TU4567)") {
		t.Errorf("nested client and driver should render by name:\n%s", out)
	}
	if !strings.Contains(out, "450.00") {
		t.Errorf("trip price missing:\n%s", out)
	}
	if strings.Contains(out, "OPERATOR") {
		t.Error("wide-only columns should be hidden")
	}

	buf.Reset()
	if err := (&TableFormatter{Wide: true}).Format(&buf, sampleLogs()); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "OPERATOR") || !strings.Contains(buf.String(), "op-1") {
		t.Errorf("wide output missing operator:\n%s", buf.String())
	}
}

func TestTableFormatter_Format_EmptySlice(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, []domain.Driver{}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), "NAME") {
		t.Error("empty slice should not print headers")
	}
}

func TestTableFormatter_Format_MapSorted(t *testing.T) {
	data := map[string]any{
		"store.engine": "badger",
		"api.url":      "http://localhost:8080/api/v1",
		"log.level":    "warn",
	}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	if !(strings.Index(out, "api.url") < strings.Index(out, "log.level") &&
		strings.Index(out, "log.level") < strings.Index(out, "store.engine")) {
		t.Errorf("map rows should be sorted by key:\n%s", out)
	}
}

func TestTableFormatter_Format_SingleStruct(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, domain.Driver{ID: 4, Name: "Sami", PlateNumber: "TN-1"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "FIELD") || !strings.Contains(out, "plateNumber") || !strings.Contains(out, "TN-1") {
		t.Errorf("output = %q", out)
	}
}

func TestTableFormatter_Format_FallbackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, 42); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "42" {
		t.Errorf("output = %q, want JSON fallback", buf.String())
	}
}

func TestFormatValue(t *testing.T) {
	var nilClient *domain.Client
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"empty string", "", "-"},
		{"int", int64(12), "12"},
		{"float", 3.14159, "3.14"},
		{"bool", true, "true"},
		{"nil pointer", nilClient, "-"},
		{"stringer pointer", &domain.Client{Name: "Acme"}, "Acme"},
		{"zero time", time.Time{}, "-"},
		{"time", time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), "2024-05-01 09:30"},
		{"slice", []string{"a", "b"}, "[2 items]"},
		{"map", map[string]int{"x": 1}, "{1 keys}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(reflect.ValueOf(tt.in)); got != tt.want {
				t.Errorf("formatValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeaderFor(t *testing.T) {
	tests := map[string]string{
		"name":              "NAME",
		"identityId":        "IDENTITY_ID",
		"fuelPricePerLiter": "FUEL_PRICE_PER_LITER",
	}
	for in, want := range tests {
		if got := headerFor(in); got != want {
			t.Errorf("headerFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTable_RenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&Table{}).Render(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}

	headersOnly := &Table{}
	headersOnly.SetHeaders("NAME", "VALUE")
	if err := headersOnly.Render(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "NAME") {
		t.Errorf("headers-only table = %q", buf.String())
	}
}
