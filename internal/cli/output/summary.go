package output

import (
	"fmt"
	"io"

	"github.com/gosuri/uitable"
)

// KeyValue is one labelled value.
type KeyValue struct {
	Key   string
	Value any
}

// KeyValues is an ordered list of labelled values.
type KeyValues []KeyValue

// Add appends a pair and returns the list.
func (kv KeyValues) Add(key string, value any) KeyValues {
	return append(kv, KeyValue{Key: key, Value: value})
}

// Map returns the pairs as a map for JSON and YAML output.
func (kv KeyValues) Map() map[string]any {
	m := make(map[string]any, len(kv))
	for _, p := range kv {
		m[p.Key] = p.Value
	}
	return m
}

// Render writes the pairs as aligned "Key:  value" lines.
func (kv KeyValues) Render(w io.Writer) error {
	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true
	for _, p := range kv {
		table.AddRow(p.Key+":", display(p.Value))
	}
	_, err := fmt.Fprintln(w, table)
	return err
}

func display(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		if x == "" {
			return "-"
		}
		return x
	case float64:
		return fmt.Sprintf("%.2f", x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}
