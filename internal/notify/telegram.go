// Package notify pushes trade events to Telegram. A nil *Telegram is a
// valid no-op notifier, so callers never branch on whether it is configured.
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/jjkirby/kalshipaper/internal/types"
)

// Telegram sends formatted trade messages to one chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// New connects the bot. Returns (nil, nil) when token is empty, which
// disables notifications.
func New(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram connect: %w", err)
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("Telegram notifications enabled")
	return &Telegram{bot: bot, chatID: chatID}, nil
}

// TradeOpened announces a new simulated position.
func (t *Telegram) TradeOpened(p types.Position) {
	if t == nil {
		return
	}
	t.send(fmt.Sprintf("📈 %s\nBUY %s @ $%s\n%s | stake $%s | %s contracts",
		p.Strategy, p.Side, p.Price.StringFixed(2),
		p.Ticker, p.Stake.StringFixed(2), p.Contracts.StringFixed(2)))
}

// TradeSettled announces a settlement.
func (t *Telegram) TradeSettled(s types.SettledTrade) {
	if t == nil {
		return
	}
	emoji := "✅"
	if s.Outcome == types.OutcomeLoss {
		emoji = "❌"
	}
	t.send(fmt.Sprintf("%s %s %s\n%s settled %s | net $%s",
		emoji, s.Strategy, s.Outcome,
		s.Ticker, s.SettledSide, s.NetProfit.StringFixed(2)))
}

// Summary sends a free-form text block, used for the shutdown report.
func (t *Telegram) Summary(text string) {
	if t == nil {
		return
	}
	t.send(text)
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		log.Warn().Err(err).Msg("Telegram send failed")
	}
}
