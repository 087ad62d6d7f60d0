package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/quesurifn/rasp-ics/calendar"
	"github.com/quesurifn/rasp-ics/pkg/msk"
	"github.com/quesurifn/rasp-ics/schedule"
	t "github.com/quesurifn/rasp-ics/types"
	"go.uber.org/zap"
)

// Sender delivers messages. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Fetcher loads the lessons of a group.
type Fetcher interface {
	Fetch(ctx context.Context, url, group string) ([]t.Lesson, error)
}

type Bot struct {
	Logger   *zap.Logger
	API      Sender
	Schedule Fetcher
	Renderer calendar.Renderer
	Planner  *Planner

	// Username is the bot's own name, used to detect mentions.
	Username string
	// URL and Group are used when a command names neither.
	URL   string
	Group string
	Now   func() time.Time
}

func (b *Bot) now() time.Time {
	if b.Now != nil {
		return b.Now().In(msk.Location())
	}
	return msk.Now()
}

// Run registers the command menu and handles updates until ctx is done.
func Run(ctx context.Context, api *tgbotapi.BotAPI, b *Bot) error {
	if _, err := api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	if _, err := api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		b.Logger.Warn("Run: set commands", zap.Error(err))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)
	b.Logger.Info("Run: polling", zap.String("bot", api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.Handle(ctx, update)
		}
	}
}

// Handle routes one update.
func (b *Bot) Handle(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		args := strings.Fields(msg.CommandArguments())
		b.Logger.Info("Handle: command", zap.Int64("chat", chatID), zap.String("command", msg.Command()))
		switch msg.Command() {
		case "start", "help":
			b.reply(chatID, greeting(b.URL, b.Group), true)
		case "week", "schedule_text":
			url, group := b.resolve(args)
			b.SendWeek(ctx, chatID, url, group, b.now())
		case "ics", "schedule_files":
			url, group := b.resolve(args)
			b.SendFiles(ctx, chatID, url, group)
		case "plan", "schedule_plan":
			b.plan(ctx, chatID, args)
		}
		return
	}

	switch msg.Text {
	case ButtonWeek:
		b.SendWeek(ctx, chatID, b.URL, b.Group, b.now())
		return
	case ButtonICS:
		b.SendFiles(ctx, chatID, b.URL, b.Group)
		return
	case ButtonPlan:
		b.reply(chatID, planHint, true)
		return
	}

	switch {
	case msg.Chat.IsPrivate():
		if wantsFiles(msg.Text) {
			b.SendFiles(ctx, chatID, b.URL, b.Group)
		} else {
			b.SendWeek(ctx, chatID, b.URL, b.Group, b.now())
		}
	case msg.Chat.IsGroup() || msg.Chat.IsSuperGroup():
		if IsScheduleRequest(msg.Text, b.Username) {
			b.SendWeek(ctx, chatID, b.URL, b.Group, b.now())
		}
	}
}

// resolve reads optional [url] [group] arguments.
func (b *Bot) resolve(args []string) (string, string) {
	switch len(args) {
	case 0:
		return b.URL, b.Group
	case 1:
		return args[0], b.Group
	default:
		return args[0], args[1]
	}
}

func label(url, group string) string {
	if s := schedule.SelectionFromURL(url); s != "" {
		return s
	}
	return group
}

func (b *Bot) lessons(ctx context.Context, url, group string, ref time.Time) ([]t.Lesson, error) {
	lessons, err := b.Schedule.Fetch(ctx, url, group)
	if err != nil {
		return nil, err
	}
	return schedule.Expand(lessons, schedule.SemesterWindow(ref), schedule.ExpandOptions{}), nil
}

// SendWeek sends the weekly text for the week containing ref.
func (b *Bot) SendWeek(ctx context.Context, chatID int64, url, group string, ref time.Time) {
	lessons, err := b.lessons(ctx, url, group, ref)
	if err != nil && !errors.Is(err, schedule.ErrNoLessons) {
		b.Logger.Error("SendWeek", zap.Int64("chat", chatID), zap.Error(err))
		b.reply(chatID, loadFailed, false)
		return
	}
	for _, part := range Chunk(schedule.FormatWeek(label(url, group), lessons, ref), MaxMessageLength) {
		b.reply(chatID, part, false)
	}
	b.Logger.Info("SendWeek", zap.Int64("chat", chatID), zap.String("group", group))
}

// SendFiles sends the mobile and Google calendars of a group.
func (b *Bot) SendFiles(ctx context.Context, chatID int64, url, group string) {
	lessons, err := b.lessons(ctx, url, group, b.now())
	switch {
	case errors.Is(err, schedule.ErrNoLessons) || (err == nil && len(lessons) == 0):
		b.reply(chatID, notFound, false)
		return
	case err != nil:
		b.Logger.Error("SendFiles", zap.Int64("chat", chatID), zap.Error(err))
		b.reply(chatID, loadFailed, false)
		return
	}

	name := label(url, group)
	for _, target := range []calendar.Target{calendar.Mobile, calendar.Google} {
		body, err := b.Renderer.Render(lessons, target)
		if err != nil {
			b.Logger.Error("SendFiles: render", zap.String("target", string(target)), zap.Error(err))
			b.reply(chatID, sendFailed, false)
			return
		}
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: calendar.FileName(name, target), Bytes: body})
		if _, err := b.API.Send(doc); err != nil {
			b.Logger.Error("SendFiles: send", zap.Int64("chat", chatID), zap.Error(err))
			b.reply(chatID, sendFailed, false)
			return
		}
	}
	b.Logger.Info("SendFiles", zap.Int64("chat", chatID), zap.String("group", group))
}

func (b *Bot) plan(ctx context.Context, chatID int64, args []string) {
	if len(args) < 2 {
		b.reply(chatID, planUsage, true)
		return
	}
	at, err := msk.ParseDateTime(args[0], args[1])
	if err != nil {
		b.reply(chatID, badPlanTime, true)
		return
	}
	if !at.After(b.now()) {
		b.reply(chatID, pastPlan, true)
		return
	}

	url, group := b.resolve(args[2:])
	// Planned sends outlive the request that created them.
	jobCtx := context.WithoutCancel(ctx)
	b.Planner.Once(at, func() {
		b.SendWeek(jobCtx, chatID, url, group, at)
	})
	b.reply(chatID, fmt.Sprintf("Плановая отправка настроена. Расписание будет отправлено %s MSK для группы %s.",
		at.Format("02.01.2006 15:04"), label(url, group)), true)
}

// Digest sends the weekly text to every chat on a cron spec.
func (b *Bot) Digest(ctx context.Context, spec string, chats []int64) error {
	if spec == "" || len(chats) == 0 {
		return nil
	}
	_, err := b.Planner.Every(spec, func() {
		for _, chatID := range chats {
			b.SendWeek(ctx, chatID, b.URL, b.Group, b.now())
		}
	})
	if err != nil {
		return fmt.Errorf("schedule digest %q: %w", spec, err)
	}
	return nil
}

func (b *Bot) reply(chatID int64, text string, withKeyboard bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	if withKeyboard {
		msg.ReplyMarkup = keyboard()
	}
	if _, err := b.API.Send(msg); err != nil {
		b.Logger.Error("reply", zap.Int64("chat", chatID), zap.Error(err))
	}
}
