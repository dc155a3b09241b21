package trap

// Message identifies a user-facing notification about a capture outcome.
type Message int

const (
	MsgSoulCaptured Message = iota
	MsgSoulDisplaced
	MsgSoulShrunk
	MsgSoulSplit

	MsgNoSoulGemsOwned
	MsgAllSoulGemsFilled
	MsgNoSoulGemLargeEnough
	MsgNoSuitableSoulGem
)

var messageNames = map[Message]string{
	MsgSoulCaptured:         "soul_captured",
	MsgSoulDisplaced:        "soul_displaced",
	MsgSoulShrunk:           "soul_shrunk",
	MsgSoulSplit:            "soul_split",
	MsgNoSoulGemsOwned:      "no_soul_gems_owned",
	MsgAllSoulGemsFilled:    "all_soul_gems_filled",
	MsgNoSoulGemLargeEnough: "no_soul_gem_large_enough",
	MsgNoSuitableSoulGem:    "no_suitable_soul_gem",
}

func (m Message) String() string {
	if name, ok := messageNames[m]; ok {
		return name
	}
	return "unknown"
}

// Failure reports whether the message describes a failed capture.
func (m Message) Failure() bool { return m >= MsgNoSoulGemsOwned }
