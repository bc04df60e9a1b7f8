// Package bot is the Telegram front end: it remembers each chat's color,
// watermarks incoming photos and replies with the result.
package bot

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/phambaophuc/watermark-bot/internal/models"
	"github.com/phambaophuc/watermark-bot/internal/services/preference"
	"github.com/phambaophuc/watermark-bot/internal/services/style"
	"go.uber.org/zap"
)

// API is the part of tgbotapi.BotAPI the bot talks to.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// Watermarker renders a watermark for a request.
type Watermarker interface {
	Watermark(ctx context.Context, src []byte, req models.WatermarkRequest) ([]byte, models.WatermarkSpec, error)
}

type Options struct {
	Workers              int
	MaxConcurrentRenders int
	MaxFileSize          int64
}

type Bot struct {
	api      API
	renderer Watermarker
	resolver *style.Resolver
	prefs    preference.Store
	logger   *zap.Logger

	workers     int
	maxFileSize int64
	renders     chan struct{}
}

func New(
	api API,
	renderer Watermarker,
	resolver *style.Resolver,
	prefs preference.Store,
	logger *zap.Logger,
	opts Options,
) (*Bot, error) {
	if api == nil {
		return nil, errors.New("bot api is nil")
	}
	if renderer == nil || resolver == nil || prefs == nil {
		return nil, errors.New("bot dependencies are incomplete")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	if opts.MaxConcurrentRenders <= 0 {
		opts.MaxConcurrentRenders = 1
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 20 << 20
	}

	return &Bot{
		api:         api,
		renderer:    renderer,
		resolver:    resolver,
		prefs:       prefs,
		logger:      logger,
		workers:     opts.Workers,
		maxFileSize: opts.MaxFileSize,
		renders:     make(chan struct{}, opts.MaxConcurrentRenders),
	}, nil
}

// NewTelegram connects to the Bot API with token.
func NewTelegram(
	token string,
	renderer Watermarker,
	resolver *style.Resolver,
	prefs preference.Store,
	logger *zap.Logger,
	opts Options,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger.Info("Telegram bot authorized", zap.String("username", api.Self.UserName))
	return New(api, renderer, resolver, prefs, logger, opts)
}

// Run polls for updates and fans them out to worker goroutines until ctx is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	var wg sync.WaitGroup
	work := make(chan tgbotapi.Update, 100)

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for up := range work {
				if err := b.handleUpdate(ctx, up); err != nil {
					b.logger.Warn("Update handling failed",
						zap.Int("worker_id", id),
						zap.Int("update_id", up.UpdateID),
						zap.Error(err))
				}
			}
		}(i)
	}

	defer func() {
		close(work)
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			select {
			case work <- up:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (b *Bot) acquireRender(ctx context.Context) error {
	select {
	case b.renders <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bot) releaseRender() {
	<-b.renders
}
