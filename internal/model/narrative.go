package model

// NarrativeRecord holds the generated prose sections. Every entity, number
// or date in it must be traceable to a present field of the FactRecord it
// was generated from. Never mutated after creation; regeneration produces a
// new record.
type NarrativeRecord struct {
	ExecutiveSummary string   `json:"executive_summary"`
	KeyTakeaways     []string `json:"key_takeaways"`
}

// Empty reports whether the record carries no prose at all.
func (n NarrativeRecord) Empty() bool {
	return n.ExecutiveSummary == "" && len(n.KeyTakeaways) == 0
}
