package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chore-board/internal/chore"
	"chore-board/internal/model"
	"chore-board/internal/service"
)

// Bot aggregates Telegram API with services.
type Bot struct {
	api       *tgbotapi.BotAPI
	auth      *service.AuthService
	boards    *service.BoardService
	reviews   *service.ReviewService
	reminders *service.ReminderService
	now       func() time.Time

	mu     sync.Mutex
	months map[int64]chore.Day
}

func New(token string, auth *service.AuthService, boards *service.BoardService, reviews *service.ReviewService, reminders *service.ReminderService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:       api,
		auth:      auth,
		boards:    boards,
		reviews:   reviews,
		reminders: reminders,
		now:       time.Now,
		months:    make(map[int64]chore.Day),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "I only understand commands. Try /help.")
	}

	// Arguments of these commands carry PINs.
	if msg.Command() == "login" || msg.Command() == "pin" {
		log.Printf("[info] command from %d: /%s", msg.From.ID, msg.Command())
	} else {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
	}

	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "users":
		return b.handleUsers(ctx, msg)
	case "login":
		return b.handleLogin(ctx, msg)
	case "logout":
		b.auth.Logout(msg.Chat.ID)
		return b.sendText(msg.Chat.ID, "👋 Logged out.")
	case "pin":
		return b.handleChangePin(ctx, msg)
	}

	actor, ok := b.auth.Actor(ctx, msg.Chat.ID)
	if !ok {
		return b.sendText(msg.Chat.ID, "🔒 Please log in first: /login &lt;user id&gt; &lt;pin&gt;. See /users.")
	}

	switch msg.Command() {
	case "board":
		return b.handleBoard(ctx, msg, actor)
	case "plan":
		return b.handlePlan(ctx, msg, actor)
	case "done":
		return b.handleComplete(ctx, msg, actor, true)
	case "undo":
		return b.handleComplete(ctx, msg, actor, false)
	case "pending":
		return b.handlePending(ctx, msg, actor)
	case "approve":
		return b.handleReview(ctx, msg.Chat.ID, actor, msg.CommandArguments(), true)
	case "reject":
		return b.handleReview(ctx, msg.Chat.ID, actor, msg.CommandArguments(), false)
	case "report":
		return b.handleReport(ctx, msg, actor)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if actor, ok := b.auth.Actor(ctx, msg.Chat.ID); ok {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("👋 Welcome back, %s! Open your /board.", escape(actor.FirstName)))
	}
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep the household chore board.</b>\n\n"+
		"Pick yourself from /users and log in with /login &lt;id&gt; &lt;pin&gt;.\n"+
		"Then /help shows what you can do.", escape(name))
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /users — who can log in\n" +
		"• /login &lt;id&gt; &lt;pin&gt; — log in on this chat\n" +
		"• /logout — end the session\n" +
		"• /pin &lt;old&gt; &lt;new&gt; — change your PIN\n" +
		"• /board [YYYY-MM] — your month board\n" +
		"• /plan &lt;id&gt; &lt;YYYY-MM-DD&gt; — put a weekly or monthly chore on a day\n" +
		"• /plan &lt;id&gt; - — take it off its day again\n" +
		"• /done &lt;id&gt; — tick a chore off\n" +
		"• /undo &lt;id&gt; — untick a chore that is not reviewed yet\n" +
		"• /report — today's summary\n" +
		"\n<b>Reviewers</b>\n" +
		"• /pending — chores waiting for review\n" +
		"• /approve &lt;id&gt;, /reject &lt;id&gt;"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleUsers(ctx context.Context, msg *tgbotapi.Message) error {
	users, err := b.auth.Users(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return b.sendText(msg.Chat.ID, "Nobody is set up yet. Add users with <code>choreboard user add</code>.")
	}
	var builder strings.Builder
	builder.WriteString("👪 <b>Household</b>\n")
	for _, u := range users {
		builder.WriteString(fmt.Sprintf("• <code>%d</code> %s <i>(%s)</i>\n", u.ID, escape(u.DisplayName()), u.Role))
	}
	return b.sendText(msg.Chat.ID, builder.String())
}

func (b *Bot) handleLogin(ctx context.Context, msg *tgbotapi.Message) error {
	b.forget(msg)
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return b.sendText(msg.Chat.ID, "Usage: /login &lt;user id&gt; &lt;pin&gt;")
	}
	userID, err := parseID(args[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "The user id must be a number. See /users.")
	}
	user, err := b.auth.Login(ctx, msg.Chat.ID, userID, args[1])
	if err != nil {
		log.Printf("login user=%d chat=%d: %v", userID, msg.Chat.ID, err)
		return b.sendText(msg.Chat.ID, describeRejection(err))
	}
	log.Printf("[info] user %d logged in on chat %d", user.ID, msg.Chat.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Hi %s! Open your /board.", escape(user.FirstName)))
}

func (b *Bot) handleChangePin(ctx context.Context, msg *tgbotapi.Message) error {
	b.forget(msg)
	actor, ok := b.auth.Actor(ctx, msg.Chat.ID)
	if !ok {
		return b.sendText(msg.Chat.ID, "🔒 Log in first.")
	}
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return b.sendText(msg.Chat.ID, "Usage: /pin &lt;current&gt; &lt;new&gt;")
	}
	if err := b.auth.ChangePin(ctx, actor.ID, args[0], args[1]); err != nil {
		return b.sendText(msg.Chat.ID, describeRejection(err))
	}
	log.Printf("[info] user %d changed pin", actor.ID)
	return b.sendText(msg.Chat.ID, "🔑 PIN changed.")
}

func (b *Bot) handleBoard(ctx context.Context, msg *tgbotapi.Message, actor *model.User) error {
	month := chore.DayOf(b.now()).MonthStart()
	if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
		parsed, err := chore.ParseMonth(arg)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Use a month like <code>2024-06</code>.")
		}
		month = parsed
	}
	text, markup, err := b.boardView(ctx, msg.Chat.ID, actor, month)
	if err != nil {
		return err
	}
	return b.sendWithReplyMarkup(msg.Chat.ID, text, markup)
}

func (b *Bot) boardView(ctx context.Context, chatID int64, actor *model.User, month chore.Day) (string, tgbotapi.InlineKeyboardMarkup, error) {
	board, err := b.boards.Load(ctx, actor.ID, month)
	if err != nil {
		return "", tgbotapi.InlineKeyboardMarkup{}, fmt.Errorf("load board: %w", err)
	}
	b.setMonth(chatID, board.Month)

	snap := board.Engine.Snapshot()
	projection := board.Projection()
	text := renderBoard(*actor, projection, board.Summary(), snap.Today)
	return text, boardKeyboard(projection, snap.Tasks, snap.Today), nil
}

func (b *Bot) handlePlan(ctx context.Context, msg *tgbotapi.Message, actor *model.User) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return b.sendText(msg.Chat.ID, "Usage: /plan &lt;id&gt; &lt;YYYY-MM-DD&gt; or /plan &lt;id&gt; -")
	}
	id, err := parseID(args[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "The task id must be a number.")
	}

	var day chore.Day
	if args[1] != "-" {
		day, err = chore.ParseDay(args[1])
		if err != nil || day.IsZero() {
			return b.sendText(msg.Chat.ID, "Use a date like <code>2024-06-14</code>, or - to unplan.")
		}
	}

	board, err := b.boardFor(ctx, msg.Chat.ID, actor, id, day)
	if err != nil {
		return b.sendText(msg.Chat.ID, describeRejection(err))
	}
	if task, _ := board.Engine.Task(id); task.Kind != chore.Daily && !task.Completed() && !chore.CanDrag(task, board.Engine.Today()) {
		return b.sendText(msg.Chat.ID, "That chore's week or month is over, it can't be moved any more.")
	}
	if _, err := board.Engine.Plan(id, day); err != nil {
		text := describeRejection(err)
		if errors.Is(err, chore.ErrDropRejected) {
			task, _ := board.Engine.Task(id)
			if days := validTargets(board.Projection(), task, board.Engine.Snapshot().Tasks); len(days) > 0 {
				text += "\nFree days: " + strings.Join(days, ", ")
			}
		}
		return b.sendText(msg.Chat.ID, text)
	}
	task, _ := board.Engine.Task(id)
	if day.IsZero() {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("📤 %s is back in its pool.", escape(task.Name)))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🗓 %s planned for %s.", escape(task.Name), day.Format("Mon 02 Jan")))
}

func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message, actor *model.User, done bool) error {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the task id, e.g. /done 12")
	}
	board, err := b.boardFor(ctx, msg.Chat.ID, actor, id, chore.Day{})
	if err != nil {
		return b.sendText(msg.Chat.ID, describeRejection(err))
	}
	text, err := b.toggle(board, id, done)
	if err != nil {
		return b.sendText(msg.Chat.ID, describeRejection(err))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) toggle(board *service.MonthBoard, id uint, done bool) (string, error) {
	at := time.Time{}
	if done {
		at = b.now()
	}
	if _, err := board.Engine.Complete(id, at); err != nil {
		return "", err
	}
	task, _ := board.Engine.Task(id)
	if done {
		return fmt.Sprintf("✅ %s done! Waiting for review.", escape(task.Name)), nil
	}
	return fmt.Sprintf("↩️ %s is open again.", escape(task.Name)), nil
}

// boardFor finds the loaded board holding task id: the month of hint, the
// month the chat is viewing, then the current month.
func (b *Bot) boardFor(ctx context.Context, chatID int64, actor *model.User, id uint, hint chore.Day) (*service.MonthBoard, error) {
	var months []chore.Day
	if !hint.IsZero() {
		months = append(months, hint.MonthStart())
	}
	if viewed, ok := b.month(chatID); ok {
		months = append(months, viewed)
	}
	months = append(months, chore.DayOf(b.now()).MonthStart())

	for _, month := range months {
		board, err := b.boards.Load(ctx, actor.ID, month)
		if err != nil {
			return nil, fmt.Errorf("load board: %w", err)
		}
		if _, ok := board.Engine.Task(id); ok {
			return board, nil
		}
	}
	return nil, chore.ErrTaskNotFound
}

func (b *Bot) handlePending(ctx context.Context, msg *tgbotapi.Message, actor *model.User) error {
	if !b.reviews.CanReview(actor) {
		return b.sendText(msg.Chat.ID, describeRejection(service.ErrForbidden))
	}
	items, err := b.reviews.Pending(ctx)
	if err != nil {
		return err
	}
	if markup := pendingKeyboard(items); markup != nil {
		return b.sendWithReplyMarkup(msg.Chat.ID, renderPending(items), *markup)
	}
	return b.sendText(msg.Chat.ID, renderPending(items))
}

func (b *Bot) handleReview(ctx context.Context, chatID int64, actor *model.User, arg string, approve bool) error {
	id, err := parseID(arg)
	if err != nil {
		return b.sendText(chatID, "Give the task id, e.g. /approve 12")
	}
	var task chore.Task
	if approve {
		task, err = b.reviews.Approve(ctx, actor, id)
	} else {
		task, err = b.reviews.Reject(ctx, actor, id)
	}
	if err != nil {
		if !chore.IsRejection(err) && !errors.Is(err, service.ErrForbidden) && !errors.Is(err, chore.ErrTaskNotFound) {
			log.Printf("review task %d: %v", id, err)
		}
		return b.sendText(chatID, describeRejection(err))
	}
	if approve {
		return b.sendText(chatID, fmt.Sprintf("👍 %s approved, %s earned.", escape(task.Name), task.Value.StringFixed(2)))
	}
	return b.sendText(chatID, fmt.Sprintf("👎 %s sent back.", escape(task.Name)))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message, actor *model.User) error {
	text, err := b.reminders.DailySummary(ctx, *actor, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the report: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

// SendDailyReports sends a summary to every user linked to a chat.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.auth.Users(ctx)
	if err != nil {
		return err
	}
	now := b.now()
	for _, user := range users {
		if user.TelegramID == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reminders.DailySummary(ctx, user, now)
		if err != nil {
			log.Printf("build summary for user %d: %v", user.ID, err)
			continue
		}
		if err := b.sendText(*user.TelegramID, text); err != nil {
			log.Printf("send summary to %d: %v", *user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	log.Printf("[info] callback from %d: %s", cb.From.ID, cb.Data)

	actor, ok := b.auth.Actor(ctx, chatID)
	if !ok {
		b.answer(cb, "Please log in again.")
		return nil
	}

	data := cb.Data
	switch {
	case strings.HasPrefix(data, cbMonthPrefix):
		month, err := chore.ParseMonth(strings.TrimPrefix(data, cbMonthPrefix))
		if err != nil {
			b.answer(cb, "")
			return nil
		}
		b.answer(cb, "")
		return b.refreshBoard(ctx, cb.Message, actor, month)

	case strings.HasPrefix(data, cbDonePrefix), strings.HasPrefix(data, cbUndoPrefix):
		done := strings.HasPrefix(data, cbDonePrefix)
		prefix := cbUndoPrefix
		if done {
			prefix = cbDonePrefix
		}
		id, arg, err := parseTaskCallback(data, prefix)
		if err != nil {
			b.answer(cb, "")
			return nil
		}
		month, err := chore.ParseMonth(arg)
		if err != nil {
			b.answer(cb, "")
			return nil
		}
		board, err := b.boards.Load(ctx, actor.ID, month)
		if err != nil {
			b.answer(cb, "")
			return err
		}
		text, err := b.toggle(board, id, done)
		if err != nil {
			b.answer(cb, stripTags(describeRejection(err)))
			return nil
		}
		b.answer(cb, stripTags(text))
		return b.refreshBoard(ctx, cb.Message, actor, board.Month)

	case strings.HasPrefix(data, cbPlanPrefix):
		id, arg, err := parseTaskCallback(data, cbPlanPrefix)
		if err != nil {
			b.answer(cb, "")
			return nil
		}
		target, err := chore.ParseDay(arg)
		if err != nil {
			b.answer(cb, "")
			return nil
		}
		board, err := b.boards.Load(ctx, actor.ID, target)
		if err != nil {
			b.answer(cb, "")
			return err
		}
		outcome, err := board.Engine.ResolveDragEnd(id, target)
		if err != nil {
			b.answer(cb, stripTags(describeRejection(err)))
			return nil
		}
		log.Printf("[info] task %d dropped on %s: %s", id, target, outcome)
		b.answer(cb, outcome.String())
		return b.refreshBoard(ctx, cb.Message, actor, board.Month)

	case strings.HasPrefix(data, cbApprovePrefix), strings.HasPrefix(data, cbRejectPrefix):
		approve := strings.HasPrefix(data, cbApprovePrefix)
		arg := strings.TrimPrefix(strings.TrimPrefix(data, cbApprovePrefix), cbRejectPrefix)
		b.answer(cb, "")
		if err := b.handleReview(ctx, chatID, actor, arg, approve); err != nil {
			return err
		}
		if !b.reviews.CanReview(actor) {
			return nil
		}
		items, err := b.reviews.Pending(ctx)
		if err != nil {
			return err
		}
		edit := tgbotapi.NewEditMessageText(chatID, cb.Message.MessageID, renderPending(items))
		edit.ParseMode = tgbotapi.ModeHTML
		edit.ReplyMarkup = pendingKeyboard(items)
		_, err = b.api.Send(edit)
		return err

	default:
		b.answer(cb, "")
		return nil
	}
}

func (b *Bot) refreshBoard(ctx context.Context, message *tgbotapi.Message, actor *model.User, month chore.Day) error {
	text, markup, err := b.boardView(ctx, message.Chat.ID, actor, month)
	if err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(message.Chat.ID, message.MessageID, text, markup)
	edit.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(edit)
	return err
}

func (b *Bot) answer(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		log.Printf("callback ack: %v", err)
	}
}

// forget removes a message that carried a PIN.
func (b *Bot) forget(msg *tgbotapi.Message) {
	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID)); err != nil {
		log.Printf("delete message %d: %v", msg.MessageID, err)
	}
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) setMonth(chatID int64, month chore.Day) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.months[chatID] = month
}

func (b *Bot) month(chatID int64) (chore.Day, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	month, ok := b.months[chatID]
	return month, ok
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

// stripTags drops the HTML markup of a reply so it fits a callback toast.
func stripTags(s string) string {
	var out strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			out.WriteRune(r)
		}
	}
	return strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&", "&#39;", "'", "&#34;", "\"").Replace(out.String())
}
