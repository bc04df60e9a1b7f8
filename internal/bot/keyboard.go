package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/phambaophuc/watermark-bot/internal/services/style"
)

const (
	colorPrefix   = "color:"
	buttonsPerRow = 3
)

// colorKeyboard lists every declared style, marking the current choice.
func colorKeyboard(resolver *style.Resolver, current models.StyleKey) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton

	for _, key := range resolver.Keys() {
		s, _ := resolver.Lookup(key)
		label := s.DisplayName
		if key == current {
			label = "✓ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, colorPrefix+string(key)))
		if len(row) == buttonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// parseColorCallback extracts the style key from "color:<key>" data.
func parseColorCallback(data string) (models.StyleKey, bool) {
	data = strings.TrimSpace(data)
	if !strings.HasPrefix(data, colorPrefix) {
		return models.StyleNone, false
	}
	key := models.StyleKey(strings.TrimPrefix(data, colorPrefix))
	return key, key != models.StyleNone
}
