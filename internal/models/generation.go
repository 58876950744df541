package models

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Node is one part placed on a wiring diagram.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Type  string   `json:"type"` // e.g. Microcontroller, Sensor, Actuator, Display, LED, Motor
	Pins  []string `json:"pins"`
}

// Connection is a wire between two node pins. Color follows the convention
// red for power, black for ground, other colors for signal lines.
type Connection struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	FromPin string `json:"fromPin"`
	To      string `json:"to"`
	ToPin   string `json:"toPin"`
	Color   string `json:"color"`
}

// Diagram is the generated wiring diagram.
type Diagram struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
	Explanation string       `json:"explanation"`
}

// Normalize fills absent collections with empty slices.
func (d *Diagram) Normalize() {
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Connections == nil {
		d.Connections = []Connection{}
	}
	for i := range d.Nodes {
		if d.Nodes[i].Pins == nil {
			d.Nodes[i].Pins = []string{}
		}
	}
}

// CodeResult is generated firmware plus a short explanation.
type CodeResult struct {
	Code        string `json:"code"`
	Explanation string `json:"explanation"`
}

// Quantity is a BOM item count. Model output is not strictly typed, so it
// accepts JSON numbers, numeric strings and strings with a leading count
// such as "2 pcs". Anything else decodes to 0, which Normalize turns into 1.
type Quantity int

// MaxQuantity bounds decoded counts.
const MaxQuantity = 1_000_000

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*q = 0
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(leadingNumber(strings.TrimSpace(s)))
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || f < 1 {
		return nil
	}
	if f > MaxQuantity {
		f = MaxQuantity
	}
	*q = Quantity(f)
	return nil
}

// leadingNumber returns the numeric prefix of s, e.g. "2" for "2 pcs".
func leadingNumber(s string) string {
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	return s[:end]
}

// BOMItem is one line of a bill of materials. Prices are free text estimates.
type BOMItem struct {
	Component      string   `json:"component"`
	Quantity       Quantity `json:"quantity"`
	EstimatedPrice string   `json:"estimated_price"`
	Source         string   `json:"source"`
}

// BOM is a generated bill of materials.
type BOM struct {
	Items              []BOMItem `json:"items"`
	TotalEstimatedCost string    `json:"total_estimated_cost"`
	Notes              *string   `json:"notes"`
}

// Normalize fills absent items and defaults missing quantities to one.
func (b *BOM) Normalize() {
	if b.Items == nil {
		b.Items = []BOMItem{}
	}
	for i := range b.Items {
		if b.Items[i].Quantity <= 0 {
			b.Items[i].Quantity = 1
		}
	}
}

// ComponentDetails is a generated study-guide entry for a catalog component.
type ComponentDetails struct {
	Description string `json:"description"`
	WiringGuide string `json:"wiring_guide"`
}
