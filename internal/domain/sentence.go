package domain

// ExampleSentence is a usage example for a character or compound, served
// from the remote catalog or generated on demand when the remote is
// unreachable.
type ExampleSentence struct {
	Hanzi   string `json:"hanzi"`
	Pinyin  string `json:"pinyin,omitempty"`
	English string `json:"english,omitempty"`
}
