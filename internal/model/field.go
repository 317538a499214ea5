package model

import (
	"encoding/json"
	"strings"
)

// State tracks whether a field value was actually observed in the source.
// Absent means the extractor (or user) never supplied the field; Empty means
// it was supplied but carries no content. The distinction matters: Absent
// fields are gap candidates and may receive template defaults, Empty ones
// were deliberately left blank.
type State int

const (
	StateAbsent State = iota
	StateEmpty
	StatePresent
)

func (s State) String() string {
	switch s {
	case StatePresent:
		return "present"
	case StateEmpty:
		return "empty"
	default:
		return "absent"
	}
}

// Text is a three-valued string field.
type Text struct {
	state State
	value string
}

// TextOf returns a present Text, or an empty one if the value is blank.
func TextOf(v string) Text {
	v = strings.TrimSpace(v)
	if v == "" {
		return Text{state: StateEmpty}
	}
	return Text{state: StatePresent, value: v}
}

// AbsentText returns a Text that was never observed.
func AbsentText() Text { return Text{} }

func (t Text) State() State   { return t.state }
func (t Text) Present() bool  { return t.state == StatePresent }
func (t Text) Missing() bool  { return t.state != StatePresent }
func (t Text) Value() (string, bool) {
	return t.value, t.state == StatePresent
}

// OrElse returns the value when present, otherwise the fallback.
func (t Text) OrElse(fallback string) string {
	if t.state == StatePresent {
		return t.value
	}
	return fallback
}

func (t Text) MarshalJSON() ([]byte, error) {
	if t.state == StateAbsent {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}

func (t *Text) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = AbsentText()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = TextOf(s)
	return nil
}

// Count is a three-valued non-negative integer field.
type Count struct {
	state State
	value int
}

func CountOf(n int) Count { return Count{state: StatePresent, value: n} }
func AbsentCount() Count  { return Count{} }

func (c Count) State() State  { return c.state }
func (c Count) Present() bool { return c.state == StatePresent }
func (c Count) Missing() bool { return c.state != StatePresent }
func (c Count) Value() (int, bool) {
	return c.value, c.state == StatePresent
}

func (c Count) MarshalJSON() ([]byte, error) {
	if c.state != StatePresent {
		return []byte("null"), nil
	}
	return json.Marshal(c.value)
}

func (c *Count) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = AbsentCount()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = CountOf(n)
	return nil
}

// Date is a three-valued calendar date, normalized to YYYY-MM-DD.
type Date struct {
	state State
	value string
}

// DateOf wraps an already-normalized YYYY-MM-DD string.
func DateOf(iso string) Date {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return Date{state: StateEmpty}
	}
	return Date{state: StatePresent, value: iso}
}

func AbsentDate() Date { return Date{} }

func (d Date) State() State  { return d.state }
func (d Date) Present() bool { return d.state == StatePresent }
func (d Date) Missing() bool { return d.state != StatePresent }
func (d Date) Value() (string, bool) {
	return d.value, d.state == StatePresent
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.state == StateAbsent {
		return []byte("null"), nil
	}
	return json.Marshal(d.value)
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = AbsentDate()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = DateOf(s)
	return nil
}

// List is a three-valued list of strings. A nil source list is absent; a
// supplied-but-empty list is empty.
type List struct {
	state State
	items []string
}

func ListOf(items []string) List {
	cleaned := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			cleaned = append(cleaned, it)
		}
	}
	if len(cleaned) == 0 {
		return List{state: StateEmpty, items: []string{}}
	}
	return List{state: StatePresent, items: cleaned}
}

func AbsentList() List { return List{} }

func (l List) State() State  { return l.state }
func (l List) Present() bool { return l.state == StatePresent }
func (l List) Missing() bool { return l.state != StatePresent }

// Items returns a copy of the list contents (empty when not present).
func (l List) Items() []string {
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

func (l List) MarshalJSON() ([]byte, error) {
	if l.state == StateAbsent {
		return []byte("null"), nil
	}
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

func (l *List) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*l = AbsentList()
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = ListOf(items)
	return nil
}

// Winner is one entry of a competition result.
type Winner struct {
	Place      string   `json:"place,omitempty"`
	PrizeMoney string   `json:"prize_money,omitempty"`
	TeamName   string   `json:"team_name,omitempty"`
	Members    []string `json:"members,omitempty"`
}

// Winners is a three-valued list of competition results.
type Winners struct {
	state State
	items []Winner
}

func WinnersOf(items []Winner) Winners {
	if len(items) == 0 {
		return Winners{state: StateEmpty, items: []Winner{}}
	}
	out := make([]Winner, len(items))
	copy(out, items)
	return Winners{state: StatePresent, items: out}
}

func AbsentWinners() Winners { return Winners{} }

func (w Winners) State() State  { return w.state }
func (w Winners) Present() bool { return w.state == StatePresent }
func (w Winners) Missing() bool { return w.state != StatePresent }

func (w Winners) Items() []Winner {
	out := make([]Winner, len(w.items))
	copy(out, w.items)
	return out
}

func (w Winners) MarshalJSON() ([]byte, error) {
	if w.state == StateAbsent {
		return []byte("null"), nil
	}
	if w.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w.items)
}

func (w *Winners) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*w = AbsentWinners()
		return nil
	}
	var items []Winner
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*w = WinnersOf(items)
	return nil
}
