package dialog

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Models occasionally emit literal control bytes that break strict JSON
// parsing; strip them before decoding.
var controlChars = regexp.MustCompile(`[\x00-\x1f]+`)

// Interpret parses the model's raw reply into a TurnResult. It never
// fails: a malformed reply yields a diagnostic answer with no SQL and
// no profile updates, so the turn still completes.
func Interpret(raw string) TurnResult {
	clean := controlChars.ReplaceAllString(raw, "")

	var res TurnResult
	if err := json.Unmarshal([]byte(clean), &res); err != nil {
		return TurnResult{
			ModelAnswer: fmt.Sprintf("Ошибка разбора ответа модели: %v", err),
		}
	}
	return res
}
