package dialog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"astra/internal/knowledge"
	"astra/internal/lead"
	"astra/internal/llm"
	"astra/internal/order"
)

const (
	ordersPageSize = 50
	searchTopK     = 5
)

// ProfileStore is the slice of the lead store the engine needs: one
// read and one combined write per turn.
type ProfileStore interface {
	Get(ctx context.Context, id uint) (*lead.Lead, error)
	Create(ctx context.Context, l *lead.Lead) error
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*lead.Lead, error)
}

type OrderStore interface {
	ListActive(ctx context.Context, limit int) ([]order.Order, error)
}

type Knowledge interface {
	FAQ(ctx context.Context) (string, error)
	Search(ctx context.Context, query string, k int) ([]knowledge.Result, error)
}

type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// SQLExecutor applies one model-emitted SQL statement. Implementations
// report success, never errors: by the time SQL runs the user-facing
// answer is already decided.
type SQLExecutor interface {
	Execute(ctx context.Context, stmt string) bool
}

// Engine orchestrates one conversational exchange per call. Context
// sources degrade independently; only the completion call itself can
// fail a turn.
type Engine struct {
	profiles ProfileStore
	orders   OrderStore
	kb       Knowledge
	llm      Completer
	sql      SQLExecutor

	locks sync.Map // clientID -> *sync.Mutex
}

func NewEngine(profiles ProfileStore, orders OrderStore, kb Knowledge, completer Completer, sqlExec SQLExecutor) *Engine {
	return &Engine{
		profiles: profiles,
		orders:   orders,
		kb:       kb,
		llm:      completer,
		sql:      sqlExec,
	}
}

// clientLock serializes turns per client: two concurrent turns for one
// client would race on the combined profile write at the end.
func (e *Engine) clientLock(clientID uint) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(clientID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// ProcessTurn runs one exchange for the client and returns the
// assistant's answer. The caller guarantees userInput is non-empty.
//
// Whatever happens to the context sources, the SQL side effect or the
// reply parsing, a completed turn always extends the stored history by
// exactly two entries: the user's input and the assistant's answer.
func (e *Engine) ProcessTurn(ctx context.Context, clientID uint, userInput string) (string, error) {
	mu := e.clientLock(clientID)
	mu.Lock()
	defer mu.Unlock()

	log.Printf("[Dialog] START turn client=%d", clientID)

	prof, err := e.profiles.Get(ctx, clientID)
	if err != nil {
		if !errors.Is(err, lead.ErrNotFound) {
			log.Printf("[Dialog] Profile read failed for client %d: %v", clientID, err)
		}
		prof = nil // first contact, or degraded read: start from a blank profile
	}

	var history []Turn
	if prof != nil {
		history = DecodeHistory(prof.Log)
	}
	history = append(history, Turn{Role: RoleUser, Content: userInput})

	// Orders and knowledge are independent; fetch them concurrently.
	var ordersText, faqText, chunksText string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ordersText = e.gatherOrders(ctx)
	}()
	go func() {
		defer wg.Done()
		faqText, chunksText = e.gatherKnowledge(ctx, userInput)
	}()
	wg.Wait()

	var name, contact string
	if prof != nil {
		if prof.Name != nil {
			name = *prof.Name
		}
		if prof.Contact != nil {
			contact = *prof.Contact
		}
	}

	messages := BuildMessages(PromptInput{
		Now:         time.Now(),
		TrackNumber: newTrackNumber(),
		OrdersText:  ordersText,
		FAQText:     faqText,
		ChunksText:  chunksText,
		History:     history,
		Name:        name,
		Contact:     contact,
		UserInput:   userInput,
	})

	raw, err := e.llm.Complete(ctx, messages)
	if err != nil {
		// The one hard dependency: without a completion there is no answer.
		return "", fmt.Errorf("completion failed: %w", err)
	}

	res := Interpret(raw)
	if res.Report != "" {
		log.Printf("[Dialog] report client=%d: %s", clientID, res.Report)
	}

	if res.SQL != "" {
		if e.sql.Execute(ctx, res.SQL) {
			log.Printf("[Dialog] SQL applied: %s", res.SQL)
		} else {
			log.Printf("[Dialog] SQL failed (ignored): %s", res.SQL)
		}
	}

	if res.UserName != "" {
		name = res.UserName
	}
	if res.UserContact != "" {
		contact = res.UserContact
	}

	history = append(history, Turn{Role: RoleAssistant, Content: res.ModelAnswer})

	if err := e.save(ctx, clientID, prof != nil, name, contact, history); err != nil {
		return "", fmt.Errorf("failed to persist turn: %w", err)
	}

	log.Printf("[Dialog] END turn client=%d", clientID)
	return res.ModelAnswer, nil
}

// ClearDialog resets the client's history and profile fields, creating
// the row if it does not exist yet. Safe to call repeatedly.
func (e *Engine) ClearDialog(ctx context.Context, clientID uint) error {
	mu := e.clientLock(clientID)
	mu.Lock()
	defer mu.Unlock()

	_, err := e.profiles.Get(ctx, clientID)
	if errors.Is(err, lead.ErrNotFound) {
		return e.profiles.Create(ctx, &lead.Lead{ID: clientID, Log: EncodeHistory(nil)})
	}
	if err != nil {
		return err
	}
	_, err = e.profiles.Update(ctx, clientID, map[string]interface{}{
		"name":    nil,
		"contact": nil,
		"log":     EncodeHistory(nil),
	})
	return err
}

// History returns the client's stored conversation. An unknown client
// surfaces lead.ErrNotFound; a corrupt log reads as empty.
func (e *Engine) History(ctx context.Context, clientID uint) ([]Turn, error) {
	prof, err := e.profiles.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return DecodeHistory(prof.Log), nil
}

func (e *Engine) gatherOrders(ctx context.Context) string {
	orders, err := e.orders.ListActive(ctx, ordersPageSize)
	if err != nil {
		log.Printf("[Dialog] Orders fetch failed: %v", err)
		return fmt.Sprintf("Ошибка чтения заказов: %v", err)
	}
	return FormatOrders(orders)
}

func (e *Engine) gatherKnowledge(ctx context.Context, query string) (faqText, chunksText string) {
	faq, err := e.kb.FAQ(ctx)
	if err != nil {
		log.Printf("[Dialog] FAQ read failed: %v", err)
		faqText = fmt.Sprintf("Ошибка чтения базы знаний: %v", err)
	} else {
		faqText = faq
	}

	results, err := e.kb.Search(ctx, query, searchTopK)
	if err != nil {
		log.Printf("[Dialog] Knowledge search failed: %v", err)
		chunksText = fmt.Sprintf("Ошибка чтения базы знаний: %v", err)
	} else {
		chunksText = FormatSearchResults(results)
	}
	return faqText, chunksText
}

// save is the single persistence point of a turn: name, contact and the
// serialized history land in one write. Fields the model did not fill
// keep their stored values.
func (e *Engine) save(ctx context.Context, clientID uint, existed bool, name, contact string, history []Turn) error {
	enc := EncodeHistory(history)
	if existed {
		fields := map[string]interface{}{"log": enc}
		if name != "" {
			fields["name"] = name
		}
		if contact != "" {
			fields["contact"] = contact
		}
		_, err := e.profiles.Update(ctx, clientID, fields)
		return err
	}
	l := &lead.Lead{ID: clientID, Log: enc}
	if name != "" {
		l.Name = &name
	}
	if contact != "" {
		l.Contact = &contact
	}
	return e.profiles.Create(ctx, l)
}

// Track numbers are proposed fresh every turn; one only survives if the
// model writes it into an order.
func newTrackNumber() int {
	return 100000 + rand.IntN(900000)
}
