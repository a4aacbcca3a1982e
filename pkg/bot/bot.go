package bot

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/samber/lo"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"imgfx/pkg/codec"
	"imgfx/pkg/effect"
	"imgfx/pkg/session"
	"imgfx/pkg/store"
)

func New(token string, applier session.Applier, logger *zap.Logger, maxSize bytesize.ByteSize, maxPixels int) (*Bot, error) {
	pref := tele.Settings{
		Token: token,
		Poller: &tele.LongPoller{
			Timeout: 30 * time.Second,
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot := newBot(applier, logger, maxSize, maxPixels)
	bot.b = b
	return bot, nil
}

func newBot(applier session.Applier, logger *zap.Logger, maxSize bytesize.ByteSize, maxPixels int) *Bot {
	return &Bot{
		applier:   applier,
		log:       logger,
		maxSize:   maxSize,
		maxPixels: maxPixels,
		sessions:  make(map[int64]*chat),
	}
}

type Bot struct {
	b         *tele.Bot
	applier   session.Applier
	log       *zap.Logger
	maxSize   bytesize.ByteSize
	maxPixels int

	l        sync.RWMutex
	sessions map[int64]*chat
}

type chat struct {
	s      *session.Session
	effect effect.Selector
}

func (b *Bot) chat(id int64) *chat {
	b.l.RLock()
	c, ok := b.sessions[id]
	b.l.RUnlock()
	if ok {
		return c
	}

	b.l.Lock()
	defer b.l.Unlock()
	if c, ok = b.sessions[id]; !ok {
		c = &chat{s: session.New(b.applier, b.log.With(zap.Int64("chat", id)))}
		b.sessions[id] = c
	}
	return c
}

func (b *Bot) setEffect(id int64, sel effect.Selector) {
	c := b.chat(id)
	b.l.Lock()
	c.effect = sel
	b.l.Unlock()
}

func (b *Bot) defaultEffect(id int64) effect.Selector {
	c := b.chat(id)
	b.l.RLock()
	defer b.l.RUnlock()
	return c.effect
}

// load reads an uploaded image into the chat session.
func (b *Bot) load(id int64, name string, size int64, r io.Reader) error {
	if b.maxSize > 0 && size > int64(b.maxSize) {
		return fmt.Errorf("%w: %s > %s", store.ErrTooLarge, bytesize.ByteSize(size), b.maxSize)
	}

	bs, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read upload failed: %w", err)
	}

	return b.chat(id).s.Load(store.NewSource(name, bs).WithMaxPixels(b.maxPixels))
}

// captionEffect reads the effect named in an upload caption. An empty
// caption gives None so the chat default applies.
func captionEffect(caption string) (effect.Selector, error) {
	if strings.TrimSpace(caption) == "" {
		return effect.None, nil
	}
	sel, ok := effect.Parse(caption)
	if !ok {
		return effect.None, fmt.Errorf("unknown effect: %s", caption)
	}
	return sel, nil
}

// apply runs sel, falling back to the chat's default effect when sel is
// None, and renders the result as PNG. A nil buffer means nothing was done.
func (b *Bot) apply(id int64, sel effect.Selector) (*bytes.Buffer, effect.Selector, error) {
	sel = lo.Ternary(sel.Valid(), sel, b.defaultEffect(id))

	s := b.chat(id).s
	ok, err := s.Apply(sel)
	if err != nil || !ok {
		return nil, sel, err
	}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, s.Result().Image); err != nil {
		return nil, sel, err
	}
	return &buf, sel, nil
}

func (b *Bot) reply(ctx tele.Context, buf *bytes.Buffer, sel effect.Selector) error {
	return ctx.Reply(&tele.Document{
		File:     tele.FromReader(buf),
		FileName: strings.ToLower(sel.String()) + ".png",
		MIME:     "image/png",
	})
}

func (b *Bot) handleBase() {
	b.b.Handle("/start", func(context tele.Context) error {
		return context.Reply(fmt.Sprintf(
			"Send an image with one of %s as caption, or pick a default with /effect.",
			strings.Join(effect.Names(), ", "),
		))
	})

	b.b.Handle("/effects", func(context tele.Context) error {
		return context.Reply(strings.Join(effect.Names(), "\n"))
	})

	b.b.Handle("/effect", func(context tele.Context) error {
		in := context.Message().Payload
		if in == "" {
			return context.Reply(b.defaultEffect(context.Chat().ID).String())
		}

		sel, ok := effect.Parse(in)
		if !ok {
			return context.Reply(fmt.Sprintf("unknown effect: %s", in))
		}

		b.setEffect(context.Chat().ID, sel)
		return context.Reply("OK")
	})
}

func (b *Bot) handleImage() {
	process := func(context tele.Context, file *tele.File, name string) error {
		id := context.Chat().ID

		sel, err := captionEffect(context.Message().Caption)
		if err != nil {
			return context.Reply(err.Error())
		}

		rc, err := b.b.File(file)
		if err != nil {
			return context.Reply(fmt.Sprintf("download failed: %s", err))
		}
		defer func() {
			_ = rc.Close()
		}()

		if err := b.load(id, name, int64(file.FileSize), rc); err != nil {
			return context.Reply(fmt.Sprintf("load failed: %s", err))
		}

		buf, sel, err := b.apply(id, sel)
		if err != nil {
			return context.Reply(fmt.Sprintf("apply failed: %s", err))
		} else if buf == nil {
			return context.Reply("Loaded, choose an effect with /apply")
		}

		return b.reply(context, buf, sel)
	}

	b.b.Handle(tele.OnPhoto, func(context tele.Context) error {
		photo := context.Message().Photo
		return process(context, &photo.File, photo.UniqueID+".jpg")
	})

	b.b.Handle(tele.OnDocument, func(context tele.Context) error {
		doc := context.Message().Document
		if !strings.HasPrefix(doc.MIME, "image/") {
			return context.Reply("not an image")
		}
		return process(context, &doc.File, doc.FileName)
	})
}

func (b *Bot) handleAction() {
	b.b.Handle("/apply", func(context tele.Context) error {
		in := context.Message().Payload
		sel, ok := effect.Parse(in)
		if in != "" && !ok {
			return context.Reply(fmt.Sprintf("unknown effect: %s", in))
		}

		buf, sel, err := b.apply(context.Chat().ID, sel)
		if err != nil {
			return context.Reply(fmt.Sprintf("apply failed: %s", err))
		} else if buf == nil {
			return context.Reply("Nothing to apply, send an image and pick an effect")
		}

		return b.reply(context, buf, sel)
	})

	b.b.Handle("/undo", func(context tele.Context) error {
		s := b.chat(context.Chat().ID).s
		if !s.Undo() {
			return context.Reply("Previous no item")
		}

		var buf bytes.Buffer
		res := s.Result()
		if err := codec.Encode(&buf, res.Image); err != nil {
			return context.Reply(fmt.Sprintf("encode failed: %s", err))
		}
		return b.reply(context, &buf, res.Effect)
	})

	b.b.Handle("/info", func(context tele.Context) error {
		s := b.chat(context.Chat().ID).s
		src := s.Source()
		if src == nil {
			return context.Reply("Current no image")
		}

		lines := []string{
			fmt.Sprintf("Name: %s", s.Name()),
			fmt.Sprintf("Size: %dx%d", src.Rect.Dx(), src.Rect.Dy()),
			fmt.Sprintf("Default effect: %s", b.defaultEffect(context.Chat().ID)),
		}
		if res := s.Result(); res != nil {
			lines = append(lines, fmt.Sprintf("Result: %s", res.Effect))
		}

		return context.Reply(strings.Join(lines, "\n"))
	})
}

func (b *Bot) Start() {
	b.handleBase()
	b.handleImage()
	b.handleAction()
	go b.b.Start()
}

func (b *Bot) Stop() {
	b.b.Stop()
}
