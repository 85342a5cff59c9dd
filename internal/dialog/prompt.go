package dialog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"astra/internal/knowledge"
	"astra/internal/llm"
	"astra/internal/order"
)

// sysPrompt is the assistant persona. It pins the JSON reply contract
// the interpreter depends on and the SQL rules for order management.
const sysPrompt = `Ты — Астра, вежливый консультант интернет-магазина товаров для животных.
Помогаешь клиентам выбрать товары, оформляешь заказы и отвечаешь на вопросы по базе знаний и FAQ.

Отвечай ВСЕГДА строго одним JSON-объектом без пояснений вокруг, с полями:
  "model_answer"  — текст ответа клиенту (обязательно);
  "report"        — краткий служебный отчёт о шаге диалога (для журнала);
  "sql"           — одна SQL-команда для таблиц orders или leads, если нужно изменить данные, иначе null;
  "user_name"     — имя клиента, если он его назвал, иначе null;
  "user_contact"  — телефон или другой контакт клиента, если он его назвал, иначе null.

Правила работы с заказами:
  - новый заказ: INSERT в таблицу orders (date, customer, phone, products, sum, status, payment, delivery, track); используй предложенный трек-номер;
  - изменение заказа: UPDATE по id из таблицы текущих заказов;
  - отмена заказа: UPDATE orders SET status = 'отменен' WHERE id = ...;
  - никогда не используй DELETE и не трогай чужие таблицы.

Цену, сроки и условия доставки бери только из FAQ и фрагментов базы знаний. Если ответа там нет — честно скажи, что уточнишь у менеджера.`

const (
	// Character budgets bounding the prompt size
	knowledgeBudget = 4000
	historyBudget   = 2000
)

// PromptInput carries everything one turn's prompt is built from.
type PromptInput struct {
	Now         time.Time
	TrackNumber int
	OrdersText  string
	FAQText     string
	ChunksText  string
	History     []Turn
	Name        string
	Contact     string
	UserInput   string
}

// BuildMessages deterministically assembles the message sequence for one
// turn. Order is significant: the model reads later system lines as more
// situational than earlier ones.
func BuildMessages(in PromptInput) []llm.Message {
	faq := in.FAQText
	if strings.TrimSpace(faq) == "" {
		faq = "База знаний пуста."
	}

	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: strings.TrimSpace(sysPrompt)},
		{Role: llm.RoleSystem, Content: fmt.Sprintf("Текущая дата: %s", in.Now.Format("2006-01-02"))},
		{Role: llm.RoleSystem, Content: fmt.Sprintf("Трек-номер для нового заказа: %d", in.TrackNumber)},
		{Role: llm.RoleSystem, Content: fmt.Sprintf("Текущие заказы (таблица orders):\n\n%s", in.OrdersText)},
		{Role: llm.RoleSystem, Content: fmt.Sprintf("FAQ:\n\n%s", truncateHead(faq, knowledgeBudget))},
		{Role: llm.RoleSystem, Content: fmt.Sprintf("Релевантные фрагменты базы знаний:\n\n%s", truncateHead(in.ChunksText, knowledgeBudget))},
		{Role: llm.RoleSystem, Content: fmt.Sprintf("История диалога:\n\n%s", truncateTail(renderHistory(in.History), historyBudget))},
	}

	if in.Name == "" && in.Contact == "" {
		msgs = append(msgs, llm.Message{
			Role: llm.RoleSystem,
			Content: "Если клиент ещё не представился, начни диалог с приветствия и представления от имени ассистента. " +
				"Пример: 'Здравствуйте! Меня зовут Астра, я консультант магазина товаров для животных. " +
				"Как могу к вам обращаться?'",
		})
	} else {
		msgs = append(msgs, llm.Message{
			Role: llm.RoleSystem,
			Content: fmt.Sprintf("Известные данные клиента:\nИмя: %s\nКонтакт: %s",
				orDefault(in.Name, "не указано"), orDefault(in.Contact, "не указан")),
		})
	}

	msgs = append(msgs, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("Ответ строго в формате JSON!\n\nВопрос пользователя:\n\n%s", in.UserInput),
	})
	return msgs
}

// FormatOrders renders one line per order for the prompt's order table.
// Cancelled orders never reach the model, whatever the store returned.
func FormatOrders(orders []order.Order) string {
	var lines []string
	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			continue
		}
		lines = append(lines, fmt.Sprintf("#%d: %s | %s | %s | %s | %s | %s | %s | %s | %s",
			o.ID,
			orDefault(o.Date, "-"), orDefault(o.Customer, "-"), orDefault(o.Phone, "-"),
			orDefault(o.Products, "-"), orDefault(o.Sum, "-"), orDefault(o.Status, "-"),
			orDefault(o.Payment, "-"), orDefault(o.Delivery, "-"), orDefault(o.Track, "-")))
	}
	if len(lines) == 0 {
		return "— заказы не найдены —"
	}
	return strings.Join(lines, "\n")
}

// FormatSearchResults renders search hits as score-prefixed bullets in
// ascending score order (lower = closer), whatever order they arrive in.
func FormatSearchResults(results []knowledge.Result) string {
	if len(results) == 0 {
		return "Релевантные фрагменты не найдены."
	}
	sorted := make([]knowledge.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })

	lines := make([]string, len(sorted))
	for i, r := range sorted {
		lines[i] = fmt.Sprintf("- (score=%.3f) %s", r.Score, r.Content)
	}
	return strings.Join(lines, "\n\n")
}

func renderHistory(turns []Turn) string {
	if len(turns) == 0 {
		return "— диалог отсутствует —"
	}
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = fmt.Sprintf("%s: %s", t.Role, t.Content)
	}
	return strings.Join(lines, "\n")
}

// truncateHead keeps the first limit characters (FAQ and fragments lead
// with the most general material).
func truncateHead(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// truncateTail keeps the last limit characters, so an over-long history
// loses its oldest turns first.
func truncateTail(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[len(r)-limit:])
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
