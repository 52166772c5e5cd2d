package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats data as JSON.
type JSONFormatter struct{}

// Format formats data as indented JSON. KeyValues render as an object.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	if kv, ok := data.(KeyValues); ok {
		data = kv.Map()
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
