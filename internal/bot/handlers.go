package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/phambaophuc/watermark-bot/internal/metrics"
	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/phambaophuc/watermark-bot/pkg/utils"
	"go.uber.org/zap"
)

type cbHandler func(ctx context.Context, query *tgbotapi.CallbackQuery, data string) error

type prefixCB struct {
	Prefix string
	Fn     cbHandler
}

func (b *Bot) cbPrefixRoutes() []prefixCB {
	return []prefixCB{
		{Prefix: colorPrefix, Fn: b.colorCBRoute},
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		metrics.IncBotUpdate("callback")
		return b.handleQuery(ctx, update.CallbackQuery)
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}

	if msg.IsCommand() {
		metrics.IncBotUpdate("command")
		return b.handleCommand(ctx, msg)
	}

	if fileID, ok := imageFileID(msg); ok {
		metrics.IncBotUpdate("image")
		return b.handleImage(ctx, msg, fileID)
	}

	metrics.IncBotUpdate("other")
	if msg.Text != "" {
		return b.reply(msg, msgUnknown)
	}
	return nil
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start", "help":
		return b.reply(msg, msgGreeting)
	case "color":
		return b.sendColorMenu(ctx, msg.Chat.ID)
	default:
		return b.reply(msg, msgUnknown)
	}
}

func (b *Bot) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	data := strings.TrimSpace(query.Data)
	for _, pr := range b.cbPrefixRoutes() {
		if strings.HasPrefix(data, pr.Prefix) {
			return pr.Fn(ctx, query, data)
		}
	}

	b.answer(query, "")
	return fmt.Errorf("unknown callback data %q", data)
}

func (b *Bot) colorCBRoute(ctx context.Context, query *tgbotapi.CallbackQuery, data string) error {
	key, ok := parseColorCallback(data)
	s, declared := b.resolver.Lookup(key)
	if !ok || !declared {
		b.answer(query, "")
		return fmt.Errorf("unknown color %q", key)
	}

	chatID := callbackChatID(query)
	if err := b.prefs.Set(ctx, chatID, key); err != nil {
		b.answer(query, msgFailed)
		return fmt.Errorf("failed to save color preference: %w", err)
	}

	b.answer(query, msgColorSaved+s.DisplayName)

	if query.Message != nil {
		edit := tgbotapi.NewEditMessageReplyMarkup(chatID, query.Message.MessageID, colorKeyboard(b.resolver, key))
		if _, err := b.api.Request(edit); err != nil {
			b.logger.Debug("Failed to refresh color keyboard", zap.Error(err))
		}
	}
	return nil
}

func (b *Bot) sendColorMenu(ctx context.Context, chatID int64) error {
	current, err := b.prefs.Get(ctx, chatID)
	if err != nil {
		b.logger.Warn("Failed to read color preference", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	if current == models.StyleNone {
		current = b.resolver.Default().Key
	}

	m := tgbotapi.NewMessage(chatID, msgPickColor)
	m.ReplyMarkup = colorKeyboard(b.resolver, current)
	_, err = b.api.Send(m)
	return err
}

// handleImage acknowledges the upload, renders it with the chat's color and
// replies with the result or an apology.
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, fileID string) error {
	chatID := msg.Chat.ID
	if err := b.reply(msg, msgReceived); err != nil {
		b.logger.Warn("Failed to acknowledge image", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	out, err := b.watermarkFile(ctx, chatID, fileID)
	if err != nil {
		b.logger.Error("Watermarking failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return b.reply(msg, msgFailed)
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
		Name:  utils.WatermarkedName(fileID),
		Bytes: out,
	})
	photo.Caption = msgDone
	photo.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(photo); err != nil {
		return fmt.Errorf("failed to send watermarked photo: %w", err)
	}
	return nil
}

func (b *Bot) watermarkFile(ctx context.Context, chatID int64, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file url: %w", utils.StripURLError(err))
	}

	src, _, err := utils.DownloadImage(ctx, url, b.maxFileSize)
	if err != nil {
		return nil, err
	}

	key, err := b.prefs.Get(ctx, chatID)
	if err != nil {
		b.logger.Warn("Failed to read color preference", zap.Int64("chat_id", chatID), zap.Error(err))
		key = models.StyleNone
	}

	if err := b.acquireRender(ctx); err != nil {
		return nil, err
	}
	defer b.releaseRender()

	out, _, err := b.renderer.Watermark(ctx, src, models.WatermarkRequest{Color: key})
	return out, err
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) error {
	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	m.ReplyToMessageID = msg.MessageID
	_, err := b.api.Send(m)
	return err
}

func (b *Bot) answer(query *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, text)); err != nil {
		b.logger.Debug("Failed to answer callback", zap.Error(err))
	}
}

func callbackChatID(query *tgbotapi.CallbackQuery) int64 {
	if query.Message != nil && query.Message.Chat != nil {
		return query.Message.Chat.ID
	}
	return query.From.ID
}

// imageFileID picks the largest photo size, or a document sent with an image
// mime type.
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if n := len(msg.Photo); n > 0 {
		return msg.Photo[n-1].FileID, true
	}
	if d := msg.Document; d != nil && strings.HasPrefix(d.MimeType, "image/") {
		return d.FileID, true
	}
	return "", false
}
