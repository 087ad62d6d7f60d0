package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MaxMessageLength is the Telegram limit for one text message, in runes.
const MaxMessageLength = 4096

const (
	ButtonWeek = "📅 Расписание недели"
	ButtonICS  = "📂 Получить .ics"
	ButtonPlan = "⏰ Запланировать отправку"

	planUsage   = "Укажите дату и время: /schedule_plan YYYY-MM-DD HH:MM [url] [group]"
	planHint    = "Используйте команду /schedule_plan <YYYY-MM-DD> <HH:MM> [url] [group] для плановой отправки текстового расписания. Время — московское."
	badPlanTime = "Неверный формат. Дата YYYY-MM-DD, время HH:MM (24ч)."
	pastPlan    = "Время должно быть в будущем относительно московского времени."
	loadFailed  = "Ошибка при загрузке расписания. Попробуйте позже."
	sendFailed  = "Ошибка при отправке файлов. Попробуйте позже."
	notFound    = "Не удалось найти занятия для указанной группы. Проверьте URL и код группы."
)

var triggerPhrases = []string{
	"бот, кинь расписание",
	"бот кинь расписание",
	"бот, дай расписание",
	"бот дай расписание",
	"бот покажи расписание",
}

var commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Вступление и примеры команд"},
	{Command: "week", Description: "Расписание недели текстом"},
	{Command: "ics", Description: "Скачать .ics файлы"},
	{Command: "plan", Description: "Запланировать отправку расписания"},
}

func keyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonWeek), tgbotapi.NewKeyboardButton(ButtonICS)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonPlan)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func greeting(url, group string) string {
	return "Привет! Я бот для расписания. Доступные команды:\n" +
		"• /week [url] [group] — показать расписание недели текстом.\n" +
		"• /ics [url] [group] — отправить .ics файлы (мобильный и Google).\n" +
		"• /plan <YYYY-MM-DD> <HH:MM> [url] [group] — запланировать отправку текста.\n" +
		"• В группе можно написать: 'Бот, кинь расписание'.\n" +
		fmt.Sprintf("Текущие значения по умолчанию: URL=%s, группа=%s", url, group)
}

// IsScheduleRequest reports whether a group chat message asks for the
// schedule: it mentions the bot, the word "расписание" or a trigger phrase.
func IsScheduleRequest(text, username string) bool {
	normalized := strings.ToLower(text)
	if username != "" && strings.Contains(normalized, "@"+strings.ToLower(username)) {
		return true
	}
	if strings.Contains(normalized, "распис") {
		return true
	}
	for _, phrase := range triggerPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

// wantsFiles reports whether a private message asks for calendar files.
func wantsFiles(text string) bool {
	normalized := strings.ToLower(text)
	return strings.Contains(normalized, "ics") || strings.Contains(normalized, "файл")
}

// Chunk splits text into pieces of at most limit runes, breaking on line
// boundaries where possible. A non-positive limit means MaxMessageLength.
// Chunks holding only line breaks are dropped.
func Chunk(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxMessageLength
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks []string
		b      strings.Builder
		size   int
	)
	flush := func() {
		if chunk := strings.Trim(b.String(), "\n"); chunk != "" {
			chunks = append(chunks, chunk)
		}
		b.Reset()
		size = 0
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if size+n > limit {
			flush()
		}
		for n > limit {
			runes := []rune(line)
			chunks = append(chunks, string(runes[:limit]))
			line = string(runes[limit:])
			n -= limit
		}
		b.WriteString(line)
		size += n
	}
	flush()
	return chunks
}
