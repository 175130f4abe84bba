package jsonrpc

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is a request id, either a string or a number.
type ID struct {
	value any
}

func IntID(n int64) *ID { return &ID{value: n} }

func (id *ID) IsNil() bool { return id == nil || id.value == nil }

func (id *ID) String() string {
	if id.IsNil() {
		return ""
	}
	switch v := id.value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

func (id *ID) MarshalJSON() ([]byte, error) {
	if id.IsNil() {
		return []byte("null"), nil
	}
	return json.Marshal(id.value)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		id.value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		id.value = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("JSON-RPC id must be a string or number, got %s", data)
	}
	if i, err := n.Int64(); err == nil {
		id.value = i
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return err
	}
	id.value = f
	return nil
}
