package dialog

import "encoding/json"

// Turn is one persisted utterance. Only user and assistant turns are
// stored; the system context injected at prompt time is rebuilt every
// turn and never persisted.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TurnResult is the structured form of one model reply.
type TurnResult struct {
	ModelAnswer string `json:"model_answer"`
	Report      string `json:"report"`
	SQL         string `json:"sql"`
	UserName    string `json:"user_name"`
	UserContact string `json:"user_contact"`
}

// DecodeHistory parses the stored history text. Anything that is not a
// JSON list of turns collapses to an empty history: corrupt rows must
// degrade a conversation, never break it.
func DecodeHistory(raw string) []Turn {
	if raw == "" {
		return nil
	}
	var turns []Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil
	}
	return turns
}

// EncodeHistory serializes turns for storage. An empty history encodes
// as "[]" so a cleared profile is distinguishable from a missing one.
func EncodeHistory(turns []Turn) string {
	if len(turns) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(turns)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
