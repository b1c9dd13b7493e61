package notify

import (
	"errors"
	"math"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Sender — минимальный контракт отправки, который умеет и бот,
// и TelegramService поверх него.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// RetryPolicy defines exponential backoff parameters.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay returns delay for a given attempt (1-based) with clamping.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	d := time.Duration(delay)
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}

// Notifier отправляет сообщения с повтором при флуд-контроле Telegram.
// При ответе 429 ждет указанный API интервал и шлет еще раз.
type Notifier struct {
	telegram Sender
	policy   RetryPolicy
	logger   *zerolog.Logger
}

func NewNotifier(telegram Sender, policy RetryPolicy, logger *zerolog.Logger) *Notifier {
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = 3
	}
	return &Notifier{
		telegram: telegram,
		policy:   policy,
		logger:   logger,
	}
}

// Send отправляет Chattable, отрабатывая retry_after от Telegram.
func (n *Notifier) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	var lastErr error
	for attempt := 1; attempt <= n.policy.MaxRetries; attempt++ {
		msg, err := n.telegram.Send(c)
		if err == nil {
			return msg, nil
		}
		lastErr = err

		delay, retryable := retryDelay(err, n.policy, attempt)
		if !retryable {
			return tgbotapi.Message{}, err
		}

		n.logger.Warn().Err(err).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("Отправка в Telegram не удалась, повтор")
		time.Sleep(delay)
	}

	return tgbotapi.Message{}, lastErr
}

// SendMessage отправляет текст в чат с той же политикой повторов.
func (n *Notifier) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	return n.Send(tgbotapi.NewMessage(chatID, text))
}

// retryDelay решает, стоит ли повторять отправку, и с какой паузой.
// Флуд-контроль ждет интервал из ответа API, прочие ошибки — бэкофф.
func retryDelay(err error, policy RetryPolicy, attempt int) (time.Duration, bool) {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.RetryAfter > 0 {
			return time.Duration(apiErr.RetryAfter) * time.Second, true
		}
		// Клиентские ошибки API повторять бессмысленно
		if apiErr.Code >= 400 && apiErr.Code < 500 {
			return 0, false
		}
	}
	return policy.NextDelay(attempt), true
}
