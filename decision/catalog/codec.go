package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// payloadVersion is written with every stored list.
const payloadVersion = 1

type envelope struct {
	Version int          `json:"version"`
	Items   []PricedItem `json:"items"`
}

func encodeItems(items []PricedItem) ([]byte, error) {
	if items == nil {
		items = []PricedItem{}
	}
	return json.Marshal(envelope{Version: payloadVersion, Items: items})
}

// decodeItems accepts the versioned envelope and the bare array written by
// earlier releases. Stored items that no longer validate are an error: the
// whole list is then treated as corrupt.
func decodeItems(data []byte) ([]PricedItem, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []PricedItem{}, nil
	}

	var items []PricedItem
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode legacy list: %w", err)
		}
	case '{':
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		if env.Version != payloadVersion {
			return nil, fmt.Errorf("unsupported catalog payload version %d", env.Version)
		}
		items = env.Items
	case 'n':
		if string(data) == "null" {
			return []PricedItem{}, nil
		}
		return nil, fmt.Errorf("unexpected catalog payload")
	default:
		return nil, fmt.Errorf("unexpected catalog payload")
	}

	for i, item := range items {
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	if items == nil {
		items = []PricedItem{}
	}
	return items, nil
}
