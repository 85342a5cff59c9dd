package dialog

import (
	"strings"
	"testing"
)

func TestInterpretFullReply(t *testing.T) {
	raw := `{"model_answer": "Добрый день!", "report": "greeted", "sql": "UPDATE orders SET status = 'отменен' WHERE id = 3", "user_name": "Иван", "user_contact": "+79001234567"}`

	res := Interpret(raw)
	if res.ModelAnswer != "Добрый день!" {
		t.Errorf("model_answer = %q", res.ModelAnswer)
	}
	if res.Report != "greeted" {
		t.Errorf("report = %q", res.Report)
	}
	if !strings.HasPrefix(res.SQL, "UPDATE orders") {
		t.Errorf("sql = %q", res.SQL)
	}
	if res.UserName != "Иван" || res.UserContact != "+79001234567" {
		t.Errorf("name/contact = %q/%q", res.UserName, res.UserContact)
	}
}

func TestInterpretNullFields(t *testing.T) {
	res := Interpret(`{"model_answer": "Чем могу помочь?", "report": "", "sql": null, "user_name": null, "user_contact": null}`)
	if res.ModelAnswer != "Чем могу помочь?" {
		t.Errorf("model_answer = %q", res.ModelAnswer)
	}
	if res.SQL != "" || res.UserName != "" || res.UserContact != "" {
		t.Errorf("null fields should decode empty, got %+v", res)
	}
}

func TestInterpretStripsControlBytes(t *testing.T) {
	raw := "{\"model_answer\": \"строка\nи ещё\", \"sql\": null}"

	res := Interpret(raw)
	if strings.HasPrefix(res.ModelAnswer, "Ошибка разбора") {
		t.Fatalf("control bytes should be stripped before decoding, got %q", res.ModelAnswer)
	}
	if res.ModelAnswer != "строкаи ещё" {
		t.Errorf("model_answer = %q", res.ModelAnswer)
	}
}

func TestInterpretMalformed(t *testing.T) {
	res := Interpret("Извините, вот ваш ответ без JSON")
	if !strings.HasPrefix(res.ModelAnswer, "Ошибка разбора ответа модели:") {
		t.Errorf("expected diagnostic answer, got %q", res.ModelAnswer)
	}
	if res.SQL != "" {
		t.Errorf("malformed reply must not carry SQL, got %q", res.SQL)
	}
	if res.UserName != "" || res.UserContact != "" {
		t.Errorf("malformed reply must not update the profile, got %+v", res)
	}
}

func TestHistoryCodec(t *testing.T) {
	if got := EncodeHistory(nil); got != "[]" {
		t.Errorf("empty history encodes as %q, want []", got)
	}
	if turns := DecodeHistory(""); turns != nil {
		t.Errorf("empty raw should decode to nil, got %v", turns)
	}
	if turns := DecodeHistory("not json at all"); turns != nil {
		t.Errorf("corrupt raw should decode to nil, got %v", turns)
	}

	orig := []Turn{
		{Role: RoleUser, Content: "привет"},
		{Role: RoleAssistant, Content: "здравствуйте"},
	}
	back := DecodeHistory(EncodeHistory(orig))
	if len(back) != 2 || back[0] != orig[0] || back[1] != orig[1] {
		t.Errorf("round-trip mismatch: %v", back)
	}
}
