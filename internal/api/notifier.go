package telegram

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"face-quality-scan/internal/domain/entity"
	"face-quality-scan/internal/domain/port"
	apperrors "face-quality-scan/internal/errors"
)

const (
	msgRunFinished = "✅ Оценка качества завершена"
	msgNoScores    = "⚠️ Ни одно изображение не удалось оценить."
	captionChart   = "📊 Распределение итоговых баллов"
)

// sender часть BotAPI, которой достаточно для отправки сообщений
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier отправляет сводку запуска в Telegram-чат
type Notifier struct {
	api    sender
	chatID int64
	log    logrus.FieldLogger
}

// NewNotifier авторизует бота и создаёт уведомитель для одного чата
func NewNotifier(token string, chatID int64, log logrus.FieldLogger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Infof("Authorized on account %s", api.Self.UserName)

	return newNotifier(api, chatID, log), nil
}

func newNotifier(api sender, chatID int64, log logrus.FieldLogger) *Notifier {
	return &Notifier{api: api, chatID: chatID, log: log}
}

// Notify отправляет текст сводки и вложения: png как фото, остальное как документ
func (n *Notifier) Notify(ctx context.Context, summary entity.RunSummary, attachments ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.api.Send(tgbotapi.NewMessage(n.chatID, FormatSummary(summary))); err != nil {
		return apperrors.Wrap(apperrors.KindNotify, "Notifier.Notify", "cannot send summary", err)
	}

	for _, path := range attachments {
		if _, err := os.Stat(path); err != nil {
			n.log.WithField("path", path).Warn("attachment is missing, skipping")
			continue
		}

		var msg tgbotapi.Chattable
		if strings.EqualFold(filepath.Ext(path), ".png") {
			photo := tgbotapi.NewPhoto(n.chatID, tgbotapi.FilePath(path))
			photo.Caption = captionChart
			msg = photo
		} else {
			msg = tgbotapi.NewDocument(n.chatID, tgbotapi.FilePath(path))
		}
		if _, err := n.api.Send(msg); err != nil {
			return apperrors.Wrap(apperrors.KindNotify, "Notifier.Notify", "cannot send "+filepath.Base(path), err)
		}
	}
	return nil
}

// FormatSummary формирует текст сообщения
func FormatSummary(s entity.RunSummary) string {
	var b strings.Builder
	b.WriteString(msgRunFinished)
	fmt.Fprintf(&b, "\n\n🆔 Запуск: %s", s.RunID)
	fmt.Fprintf(&b, "\n⚙️ Режим: %s", s.Mode)
	fmt.Fprintf(&b, "\n🖼 Оценено: %d из %d (пропущено %d)", s.Scored, s.Located, s.Skipped())
	if s.Scored > 0 {
		fmt.Fprintf(&b, "\n📈 Средний балл: %.1f (мин %.0f, макс %.0f)", s.MeanScore, s.MinScore, s.MaxScore)
	} else {
		b.WriteString("\n" + msgNoScores)
	}
	fmt.Fprintf(&b, "\n⏱ Время: %s", s.Duration.Round(time.Second))
	return b.String()
}

// Проверка реализации интерфейса
var _ port.RunNotifier = (*Notifier)(nil)
