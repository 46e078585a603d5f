package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/diary-bot/internal/domain"
	"github.com/ykvlv/diary-bot/internal/store"
)

// API is the slice of the Telegram Bot API the package uses. *tgbotapi.BotAPI
// satisfies it; tests substitute a fake.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Presenter enforces the single-visible-message protocol: before sending new
// content it deletes the previously recorded outgoing message for the chat,
// then records the new message id in the profile. All deletions are advisory
// UX; their failure is logged at debug and never surfaces.
type Presenter struct {
	api  API
	log  *zap.Logger
	repo store.Repo
}

func NewPresenter(api API, log *zap.Logger, repo store.Repo) *Presenter {
	return &Presenter{api: api, log: log, repo: repo}
}

// Show replaces the chat's visible bot message with text. markup may be nil.
func (p *Presenter) Show(ctx context.Context, chatID int64, text string, markup interface{}) {
	prof, err := p.repo.GetProfile(ctx, chatID)
	if err == nil && prof.LastMessage != nil {
		p.Delete(*prof.LastMessage)
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		p.log.Warn("load profile for presenter failed", zap.Error(err), zap.Int64("chatID", chatID))
	}

	ref, err := p.Send(chatID, text, markup)
	if err != nil {
		p.log.Error("send failed", zap.Error(err), zap.Int64("chatID", chatID))
		return
	}

	if err := p.repo.UpdateProfile(ctx, chatID, func(u *domain.Profile) error {
		u.LastMessage = &ref
		return nil
	}); err != nil && !errors.Is(err, store.ErrNotFound) {
		p.log.Warn("record last message failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// Send delivers a message without touching the previous-message bookkeeping.
// Scheduled pushes and itog service messages use it directly.
func (p *Presenter) Send(chatID int64, text string, markup interface{}) (domain.MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	sent, err := p.api.Send(msg)
	if err != nil {
		return domain.MessageRef{}, err
	}
	return domain.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// SendHTML is Send with HTML parse mode, used for the itog checklist.
func (p *Presenter) SendHTML(chatID int64, text string) (domain.MessageRef, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	sent, err := p.api.Send(msg)
	if err != nil {
		return domain.MessageRef{}, err
	}
	return domain.MessageRef{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// EditHTML redraws a previously sent message in place.
func (p *Presenter) EditHTML(ref domain.MessageRef, text string) {
	edit := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	if _, err := p.api.Send(edit); err != nil {
		p.log.Debug("edit failed", zap.Error(err),
			zap.Int64("chatID", ref.ChatID), zap.Int("messageID", ref.MessageID))
	}
}

// Delete removes a message, best effort.
func (p *Presenter) Delete(ref domain.MessageRef) {
	if ref.MessageID == 0 {
		return
	}
	if _, err := p.api.Request(tgbotapi.NewDeleteMessage(ref.ChatID, ref.MessageID)); err != nil {
		p.log.Debug("delete failed", zap.Error(err),
			zap.Int64("chatID", ref.ChatID), zap.Int("messageID", ref.MessageID))
	}
}

// DismissInput deletes the user's triggering message so the visible transcript
// stays a single exchange.
func (p *Presenter) DismissInput(msg *tgbotapi.Message) {
	if msg == nil {
		return
	}
	p.Delete(domain.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.MessageID})
}
