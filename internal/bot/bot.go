package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/logger"
	"smart_time/internal/report"
	"smart_time/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Services the bot reads and changes on behalf of linked users
type Services struct {
	Users     *service.UserService
	Tasks     *service.TaskService
	Reminders *service.ReminderService
	Reports   *service.ReportService
}

// ReminderBot delivers reminders to linked Telegram chats and answers a few
// read-mostly commands
type ReminderBot struct {
	api    *tgbotapi.BotAPI
	svc    Services
	stopCh chan struct{}
	wg     sync.WaitGroup
	log    *slog.Logger
	now    func() time.Time
}

var _ service.ReminderSender = (*ReminderBot)(nil)

// New creates the bot and checks the token against the Telegram API
func New(token string, svc Services) (*ReminderBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	b := newBot(api, svc)
	b.log.Info("reminder bot authorized", "username", api.Self.UserName)
	return b, nil
}

func newBot(api *tgbotapi.BotAPI, svc Services) *ReminderBot {
	return &ReminderBot{
		api:    api,
		svc:    svc,
		stopCh: make(chan struct{}),
		log:    logger.With("component", "reminder_bot"),
		now:    time.Now,
	}
}

// Start listens for commands until Stop
func (b *ReminderBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			switch {
			case update.CallbackQuery != nil:
				b.wg.Add(1)
				go func(q *tgbotapi.CallbackQuery) {
					defer b.wg.Done()
					b.handleCallback(q)
				}(update.CallbackQuery)
			case update.Message != nil && update.Message.IsCommand():
				b.wg.Add(1)
				go func(msg *tgbotapi.Message) {
					defer b.wg.Done()
					b.handleCommand(msg)
				}(update.Message)
			}
		}
	}
}

// Stop gracefully stops the bot
func (b *ReminderBot) Stop() {
	b.log.Info("stopping reminder bot...")
	close(b.stopCh)
	b.api.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("reminder bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("reminder bot shutdown timeout, some handlers may not have completed")
	}
}

// SendReminder implements service.ReminderSender
func (b *ReminderBot) SendReminder(ctx context.Context, user *domain.User, r *domain.Reminder) error {
	if user.TelegramChatID == nil {
		return errors.New("user has no linked telegram chat")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(*user.TelegramChatID, formatReminder(r))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", doneCallback(r.ID)),
		),
	)
	_, err := b.api.Send(msg)
	return err
}

func (b *ReminderBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	response := b.respond(ctx, msg.Chat.ID, msg.Command(), msg.CommandArguments())

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = tgbotapi.ModeHTML
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.api.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}

func (b *ReminderBot) handleCallback(q *tgbotapi.CallbackQuery) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	text := "❌ Unknown action"
	if id, ok := parseDoneCallback(q.Data); ok && q.Message != nil {
		text = b.completeReminder(ctx, q.Message.Chat.ID, id)
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, stripTags(text))); err != nil {
		b.log.Error("error answering callback", "error", err)
	}
}

// respond runs one command for a chat and returns the HTML reply
func (b *ReminderBot) respond(ctx context.Context, chatID int64, command, args string) string {
	if command == "help" {
		return helpMessage
	}

	user, err := b.svc.Users.GetByTelegramChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return notLinkedMessage(chatID)
		}
		b.log.Error("user lookup failed", "chat_id", chatID, "error", err)
		return "❌ Something went wrong, try again later."
	}

	switch command {
	case "start":
		return fmt.Sprintf("👋 Hi, %s!\n\n%s", escape(user.FullName()), helpMessage)
	case "today":
		return b.handleToday(ctx, user)
	case "overdue":
		return b.handleOverdue(ctx, user)
	case "reminders":
		return b.handleReminders(ctx, user)
	case "done":
		id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
		if err != nil || id <= 0 {
			return "❌ Usage: /done &lt;reminder_id&gt;"
		}
		return b.completeReminder(ctx, chatID, id)
	case "track":
		return b.handleTimer(ctx, user, args, true)
	case "stop":
		return b.handleTimer(ctx, user, args, false)
	case "report":
		return b.handleReport(ctx, user)
	default:
		return "❌ Unknown command. Use /help for the list of commands."
	}
}

func (b *ReminderBot) handleToday(ctx context.Context, user *domain.User) string {
	due, err := b.svc.Tasks.DueToday(ctx, user.ID, time.UTC)
	if err != nil {
		return errorMessage(err)
	}
	running, err := b.svc.Tasks.Running(ctx, user.ID)
	if err != nil {
		return errorMessage(err)
	}

	var sb strings.Builder
	sb.WriteString(formatTaskList("📅 <b>Due today</b>", due, b.now()))
	if len(running) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(formatTaskList("⏱ <b>Running timers</b>", running, b.now()))
	}
	return sb.String()
}

func (b *ReminderBot) handleOverdue(ctx context.Context, user *domain.User) string {
	tasks, err := b.svc.Tasks.Overdue(ctx, user.ID, time.UTC)
	if err != nil {
		return errorMessage(err)
	}
	return formatTaskList("⚠️ <b>Overdue</b>", tasks, b.now())
}

func (b *ReminderBot) handleReminders(ctx context.Context, user *domain.User) string {
	reminders, err := b.svc.Reminders.Active(ctx, user.ID)
	if err != nil {
		return errorMessage(err)
	}
	return formatReminderList(reminders)
}

func (b *ReminderBot) completeReminder(ctx context.Context, chatID, id int64) string {
	user, err := b.svc.Users.GetByTelegramChatID(ctx, chatID)
	if err != nil {
		return errorMessage(err)
	}
	r, err := b.svc.Reminders.Complete(ctx, user.ID, id)
	if err != nil {
		return errorMessage(err)
	}
	return fmt.Sprintf("✅ Reminder <b>%s</b> completed", escape(r.Title))
}

func (b *ReminderBot) handleTimer(ctx context.Context, user *domain.User, args string, start bool) string {
	id, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil || id <= 0 {
		if start {
			return "❌ Usage: /track &lt;task_id&gt;"
		}
		return "❌ Usage: /stop &lt;task_id&gt;"
	}

	by := "telegram:" + strconv.FormatInt(user.ID, 10)
	if start {
		t, _, err := b.svc.Tasks.StartTimer(ctx, user.ID, id, by)
		if err != nil {
			return errorMessage(err)
		}
		return fmt.Sprintf("▶️ Timer started for <b>%s</b>", escape(t.Title))
	}

	t, log, err := b.svc.Tasks.StopTimer(ctx, user.ID, id, "", by)
	if err != nil {
		return errorMessage(err)
	}
	return fmt.Sprintf("⏹ Timer stopped for <b>%s</b>\nSession: %s\nTotal: %s",
		escape(t.Title), formatDuration(log.Duration), formatDuration(t.ActualDuration))
}

func (b *ReminderBot) handleReport(ctx context.Context, user *domain.User) string {
	rep, stats, err := b.svc.Reports.Generate(ctx, user.ID, domain.ReportDaily, report.Daily(b.now().UTC()), false)
	if err != nil {
		return errorMessage(err)
	}
	return formatReport(rep, stats)
}
