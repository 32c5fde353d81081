// Package render defines the display-field map handed from route handlers to
// whatever draws the page.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind tags how a template should treat a field value.
type Kind int

const (
	// Plain values are shown as given.
	Plain Kind = iota
	// IDList values are comma separated identifiers ("0" means none).
	IDList
	// Custom values are pre-encoded text inserted verbatim.
	Custom
)

var kindNames = map[Kind]string{
	Plain:  "plain",
	IDList: "id-list",
	Custom: "custom",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	s, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("render: unknown kind %d", int(k))
	}
	return []byte(s), nil
}

// Field is one tagged display value.
type Field struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

// Fields maps display-field names to tagged values.
type Fields map[string]Field

func (f Fields) Plain(key, value string)  { f[key] = Field{Kind: Plain, Value: value} }
func (f Fields) IDList(key, value string) { f[key] = Field{Kind: IDList, Value: value} }
func (f Fields) Custom(key, value string) { f[key] = Field{Kind: Custom, Value: value} }

// Get returns the raw value stored under key, or "" if absent.
func (f Fields) Get(key string) string {
	return f[key].Value
}

// Keys returns the field names in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flatten returns the legacy string map, where tagged values carry their kind
// as a prefix ("IDLIST:2,9" or "CUSTOM:[...]") and custom fields also have
// the prefix on their key.
func (f Fields) Flatten() map[string]string {
	out := make(map[string]string, len(f))
	for k, v := range f {
		switch v.Kind {
		case IDList:
			out[k] = "IDLIST:" + v.Value
		case Custom:
			out["CUSTOM:"+k] = "CUSTOM:" + v.Value
		default:
			out[k] = v.Value
		}
	}
	return out
}

// String renders the fields one per line, mainly for debugging.
func (f Fields) String() string {
	var sb strings.Builder
	for _, k := range f.Keys() {
		b, _ := json.Marshal(f[k])
		sb.WriteString(k)
		sb.WriteString("=")
		sb.Write(b)
		sb.WriteString("\n")
	}
	return sb.String()
}
