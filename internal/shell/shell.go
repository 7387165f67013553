// Package shell реализует терминальный интерфейс мини-приложения: каталог, корзину, заявку и формы.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/shopapp/internal/forms"
	"github.com/mmeshcher/shopapp/internal/model"
	"github.com/mmeshcher/shopapp/internal/notify"
	"github.com/mmeshcher/shopapp/internal/order"
	"github.com/mmeshcher/shopapp/internal/ratings"
	"github.com/mmeshcher/shopapp/internal/view"
)

// ErrUsage возвращается для команды с неверными аргументами.
var ErrUsage = errors.New("usage")

// CatalogSource загружает каталог товаров и услуг.
type CatalogSource interface {
	Catalog(ctx context.Context) ([]model.CatalogItem, error)
}

// Deps содержит компоненты, которыми управляет терминал.
type Deps struct {
	Catalog CatalogSource
	Binder  *view.Binder
	Page    *view.Page
	Order   *order.Flow
	Forms   *forms.Flows
	// Toasts задаётся, если выбрана стопка уведомлений. Новые уведомления печатаются после каждой команды.
	Toasts *notify.Toasts
}

type command struct {
	usage string
	run   func(ctx context.Context, args string) error
}

// Shell читает команды построчно и выполняет их.
type Shell struct {
	deps   Deps
	out    io.Writer
	logger *zap.Logger

	commands map[string]command
	profile  *forms.Form
	feedback *forms.Form

	mu      sync.Mutex
	catalog []model.CatalogItem
	seen    map[string]struct{}
}

// New создаёт терминал, пишущий в out.
func New(deps Deps, out io.Writer, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Shell{
		deps:     deps,
		out:      out,
		logger:   logger,
		profile:  forms.NewForm(nil, nil),
		feedback: forms.NewForm(nil, nil),
		seen:     make(map[string]struct{}),
	}
	s.commands = map[string]command{
		"catalog":  {usage: "catalog", run: s.cmdCatalog},
		"add":      {usage: "add <номер в каталоге> [количество]", run: s.cmdAdd},
		"qty":      {usage: "qty <строка> <количество>", run: s.cmdQty},
		"rm":       {usage: "rm <строка>", run: s.cmdRemove},
		"delivery": {usage: "delivery <стоимость>", run: s.cmdDelivery},
		"comment":  {usage: "comment <текст>", run: s.cmdComment},
		"show":     {usage: "show", run: s.cmdShow},
		"order":    {usage: "order", run: s.cmdOrder},
		"review":   {usage: "review <номер в каталоге> <оценка> <текст>", run: s.cmdReview},
		"profile":  {usage: "profile <телефон>|<email>|<адрес>", run: s.cmdProfile},
		"feedback": {usage: "feedback <имя>|<сообщение>[|<тема>]", run: s.cmdFeedback},
		"refresh":  {usage: "refresh", run: s.cmdRefresh},
		"help":     {usage: "help", run: s.cmdHelp},
	}
	return s
}

// Preload загружает каталог без вывода. Вызывается после входа.
func (s *Shell) Preload(ctx context.Context) error {
	items, err := s.deps.Catalog.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	s.mu.Lock()
	s.catalog = items
	s.mu.Unlock()
	return nil
}

// Run выполняет команды из in до команды quit, конца ввода или отмены контекста.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	s.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if s.Exec(ctx, line) {
				return nil
			}
			s.prompt()
		}
	}
}

// Exec выполняет одну команду. Возвращает true для команды выхода.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	args = strings.TrimSpace(args)

	switch name {
	case "":
		return false
	case "quit", "exit":
		return true
	}

	cmd, ok := s.commands[name]
	if !ok {
		fmt.Fprintf(s.out, "Неизвестная команда %q, введите help.\n", name)
		return false
	}

	err := cmd.run(ctx, args)
	s.flushToasts()

	switch {
	case err == nil:
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(s.out, "Использование: %s\n", cmd.usage)
	default:
		s.logger.Debug("command failed", zap.String("command", name), zap.Error(err))
	}
	return false
}

// WatchToasts печатает уведомления, появившиеся между командами, пока не отменён ctx.
func (s *Shell) WatchToasts(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.flushToasts()
		}
	}
}

func (s *Shell) prompt() {
	fmt.Fprint(s.out, "> ")
}

// flushToasts печатает уведомления, которые ещё не были показаны, и забывает исчезнувшие.
func (s *Shell) flushToasts() {
	if s.deps.Toasts == nil {
		return
	}
	active := s.deps.Toasts.Active()

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(active))
	for _, t := range active {
		if _, shown := s.seen[t.ID]; !shown {
			fmt.Fprintf(s.out, "[%s] %s\n", t.Level, t.Message)
		}
		seen[t.ID] = struct{}{}
	}
	s.seen = seen
}

func (s *Shell) item(arg string) (model.CatalogItem, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return model.CatalogItem{}, ErrUsage
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 || n > len(s.catalog) {
		fmt.Fprintln(s.out, "Нет такой позиции, загрузите каталог командой catalog.")
		return model.CatalogItem{}, fmt.Errorf("catalog item %d not found", n)
	}
	return s.catalog[n-1], nil
}

func (s *Shell) cmdCatalog(ctx context.Context, _ string) error {
	if err := s.Preload(ctx); err != nil {
		fmt.Fprintln(s.out, "Не удалось загрузить каталог.")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, it := range s.catalog {
		fmt.Fprintf(s.out, "%d. %s: %s ₽ / %s [%s] %s\n",
			i+1, it.Name, strconv.FormatFloat(it.Price, 'f', 2, 64), it.Unit, it.Type.Label(), ratings.Stars(it.Rating))
	}
	return nil
}

func (s *Shell) cmdAdd(_ context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return ErrUsage
	}
	it, err := s.item(fields[0])
	if err != nil {
		return err
	}

	ev := view.Event{Action: view.ActionAddToCart, Source: it.Source()}
	if len(fields) == 2 {
		ev.QtyInput = fields[1]
	}
	return s.deps.Binder.Dispatch(ev).Err
}

func (s *Shell) cmdQty(_ context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return ErrUsage
	}
	idx, err := strconv.Atoi(fields[0])
	if err != nil {
		return ErrUsage
	}

	res := s.deps.Binder.Dispatch(view.Event{Action: view.ActionChangeQty, Index: idx, Value: fields[1]})
	if res.Restore != "" {
		fmt.Fprintf(s.out, "Количество осталось прежним: %s\n", res.Restore)
	}
	return res.Err
}

func (s *Shell) cmdRemove(_ context.Context, args string) error {
	idx, err := strconv.Atoi(args)
	if err != nil {
		return ErrUsage
	}
	return s.deps.Binder.Dispatch(view.Event{Action: view.ActionRemoveItem, Index: idx}).Err
}

func (s *Shell) cmdDelivery(_ context.Context, args string) error {
	return s.deps.Binder.Dispatch(view.Event{Action: view.ActionDeliveryInput, Value: args}).Err
}

func (s *Shell) cmdComment(_ context.Context, args string) error {
	s.deps.Page.SetComment(args)
	return nil
}

func (s *Shell) cmdShow(_ context.Context, _ string) error {
	s.deps.Binder.Refresh()
	return nil
}

func (s *Shell) cmdOrder(ctx context.Context, _ string) error {
	err := s.deps.Order.Submit(ctx)
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		fmt.Fprintln(s.out, "Корзина пуста.")
	case errors.Is(err, order.ErrInFlight):
		fmt.Fprintln(s.out, "Заявка уже отправляется.")
	}
	return err
}

func (s *Shell) cmdReview(ctx context.Context, args string) error {
	fields := strings.SplitN(args, " ", 3)
	if len(fields) < 2 {
		return ErrUsage
	}
	it, err := s.item(fields[0])
	if err != nil {
		return err
	}

	text := ""
	if len(fields) == 3 {
		text = fields[2]
	}
	form := forms.NewForm(
		map[string]string{"rating": fields[1], "text": text},
		map[string]string{"target-type": string(it.Type), "target-id": strconv.FormatInt(it.ID, 10)},
	)
	return s.deps.Forms.SubmitReview(ctx, form)
}

func (s *Shell) cmdProfile(ctx context.Context, args string) error {
	parts := splitFields(args, 3)
	s.profile.Set("phone", parts[0])
	s.profile.Set("email", parts[1])
	s.profile.Set("delivery_address", parts[2])
	return s.deps.Forms.SubmitProfile(ctx, s.profile)
}

func (s *Shell) cmdFeedback(ctx context.Context, args string) error {
	parts := splitFields(args, 3)
	s.feedback.Set("name", parts[0])
	s.feedback.Set("message", parts[1])
	s.feedback.Set("subject", parts[2])
	return s.deps.Forms.SubmitFeedback(ctx, s.feedback)
}

func (s *Shell) cmdRefresh(_ context.Context, _ string) error {
	s.deps.Forms.RefreshProfile()
	return nil
}

func (s *Shell) cmdHelp(_ context.Context, _ string) error {
	names := []string{"catalog", "add", "qty", "rm", "delivery", "comment", "show", "order", "review", "profile", "feedback", "refresh"}
	for _, n := range names {
		fmt.Fprintf(s.out, "  %s\n", s.commands[n].usage)
	}
	fmt.Fprintln(s.out, "  quit")
	return nil
}

// splitFields делит строку по '|' ровно на n частей, недостающие части пустые.
func splitFields(s string, n int) []string {
	parts := strings.SplitN(s, "|", n)
	res := make([]string, n)
	for i := range parts {
		res[i] = strings.TrimSpace(parts[i])
	}
	return res
}
