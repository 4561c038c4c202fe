// Package ticker runs the control loop that drives the quote and scroll
// engines. It is the only goroutine that touches either engine; everything
// else talks to it through commands and reads its published updates.
package ticker

import (
	"context"
	"time"

	"stock-ticker/internal/quotes"
	"stock-ticker/internal/scroll"
	"stock-ticker/pkg/models"

	"go.uber.org/zap"
)

type QuoteSource interface {
	Configure(s quotes.Settings)
	Update(ctx context.Context)
	Status() quotes.Status
	DisplayString() string
	Quotes() []models.Quote
	RefreshOnNextUpdate()
}

type Scroller interface {
	SetText(text string, startFullyVisible bool)
	SetPeriod(period time.Duration)
	Reset()
	Update()
	Text() string
	Cursor() scroll.Cursor
	SetSpacing(spacing int)
}

// Panel is the LED chain the scroller draws on.
type Panel interface {
	SetIntensity(level int)
	Resize(modules int)
}

type Link interface {
	IsConnected() bool
}

type Publisher interface {
	Publish(update *models.Update)
}

// Settings is what a reconfiguration replaces. A zero ScrollPeriod or a nil
// Panel leaves the current value in place.
type Settings struct {
	Quotes       quotes.Settings
	ScrollPeriod time.Duration
	Panel        *PanelSettings
}

type PanelSettings struct {
	Modules    int
	Brightness int
	Spacing    int
}

type commandKind int

const (
	commandRefresh commandKind = iota
	commandReconfigure
)

func (k commandKind) String() string {
	switch k {
	case commandRefresh:
		return "refresh"
	case commandReconfigure:
		return "reconfigure"
	default:
		return "unknown"
	}
}

type command struct {
	kind     commandKind
	settings Settings
}

type Ticker struct {
	quotes    QuoteSource
	scroller  Scroller
	panel     Panel
	link      Link
	publisher Publisher
	logger    *zap.Logger
	commands  chan command

	lastStatus  quotes.Status
	lastDisplay string
	pending     string
	hasPending  bool
	linkDown    bool
	reconfigure bool
}

// New wires the loop. panel may be nil when the display cannot be resized.
func New(q QuoteSource, s Scroller, panel Panel, link Link, publisher Publisher, logger *zap.Logger) *Ticker {
	return &Ticker{
		quotes:    q,
		scroller:  s,
		panel:     panel,
		link:      link,
		publisher: publisher,
		logger:    logger,
		commands:  make(chan command, 8),
	}
}

// Start shows the current quote text. Call it once before the first Step.
func (t *Ticker) Start() {
	t.lastStatus = t.quotes.Status()
	t.lastDisplay = t.quotes.DisplayString()
	t.scroller.SetText(t.lastDisplay, false)
	t.publish()
}

// Run calls Step every interval until ctx is done.
func (t *Ticker) Run(ctx context.Context, interval time.Duration) error {
	t.Start()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.Step(ctx)
		}
	}
}

// Step runs one iteration of the control loop.
func (t *Ticker) Step(ctx context.Context) {
	t.drainCommands()

	if !t.link.IsConnected() {
		if !t.linkDown {
			t.linkDown = true
			t.logger.Warn("network link down")
			t.setText(connectingMessage, true)
		}
		t.scroller.Update()
		return
	}
	if t.linkDown {
		t.linkDown = false
		t.logger.Info("network link restored")
		t.scroller.Reset()
		t.quotes.RefreshOnNextUpdate()
		t.show(t.quotes.Status())
	}

	if !t.reconfigure {
		t.quotes.Update(ctx)
		t.observe()
	}

	t.scroller.Update()
	if t.hasPending {
		if cur := t.scroller.Cursor(); cur.Index == 0 && cur.Offset == 0 {
			t.hasPending = false
			t.setText(t.pending, false)
		}
	}
}

// observe reacts to a status or display string change after a quote update.
func (t *Ticker) observe() {
	status := t.quotes.Status()
	display := t.quotes.DisplayString()

	switch {
	case status != t.lastStatus:
		t.logger.Info("ticker status changed",
			zap.Stringer("from", t.lastStatus),
			zap.Stringer("to", status))
		t.lastStatus = status
		t.lastDisplay = display
		t.show(status)
	case status == quotes.StatusOK && display != t.lastDisplay:
		// Swap the text once the current pass has looped so prices don't
		// jump mid-scroll.
		t.lastDisplay = display
		t.pending = display
		t.hasPending = true
		t.publish()
	}
}

func (t *Ticker) show(status quotes.Status) {
	t.hasPending = false
	if status == quotes.StatusOK {
		t.setText(t.quotes.DisplayString(), false)
		return
	}

	text, reconfigure := message(status)
	if reconfigure {
		t.reconfigure = true
		t.logger.Error("settings rejected by the quote provider, waiting for reconfiguration",
			zap.Stringer("status", status))
	}
	t.setText(text, reconfigure)
}

func (t *Ticker) setText(text string, startFullyVisible bool) {
	t.scroller.SetText(text, startFullyVisible)
	t.publish()
}

func (t *Ticker) publish() {
	if t.publisher == nil {
		return
	}
	t.publisher.Publish(models.NewUpdate(
		t.quotes.Status().String(),
		t.scroller.Text(),
		t.quotes.DisplayString(),
		t.quotes.Quotes(),
	))
}

func (t *Ticker) drainCommands() {
	for {
		select {
		case cmd := <-t.commands:
			t.apply(cmd)
		default:
			return
		}
	}
}

func (t *Ticker) apply(cmd command) {
	switch cmd.kind {
	case commandRefresh:
		t.logger.Info("refresh requested")
		t.quotes.RefreshOnNextUpdate()
	case commandReconfigure:
		t.logger.Info("applying new settings")
		t.quotes.Configure(cmd.settings.Quotes)
		if cmd.settings.ScrollPeriod > 0 {
			t.scroller.SetPeriod(cmd.settings.ScrollPeriod)
		}
		if p := cmd.settings.Panel; p != nil {
			t.applyPanel(*p)
		}
		t.reconfigure = false
		t.lastStatus = t.quotes.Status()
		t.lastDisplay = t.quotes.DisplayString()
		t.show(t.lastStatus)
	}
}

func (t *Ticker) applyPanel(p PanelSettings) {
	if t.panel != nil {
		if p.Modules > 0 {
			t.panel.Resize(p.Modules)
		}
		if p.Brightness > 0 {
			t.panel.SetIntensity(p.Brightness)
		}
	}
	t.scroller.SetSpacing(p.Spacing)
	t.logger.Info("panel settings applied",
		zap.Int("modules", p.Modules),
		zap.Int("brightness", p.Brightness),
		zap.Int("spacing", p.Spacing))
}

// RequestRefresh asks the loop to poll on its next step. It is safe to call
// from any goroutine and reports false if the command queue is full.
func (t *Ticker) RequestRefresh() bool {
	return t.send(command{kind: commandRefresh})
}

// Reconfigure replaces the quote settings from any goroutine.
func (t *Ticker) Reconfigure(s Settings) bool {
	return t.send(command{kind: commandReconfigure, settings: s})
}

func (t *Ticker) send(cmd command) bool {
	select {
	case t.commands <- cmd:
		return true
	default:
		t.logger.Warn("command queue full, dropping command",
			zap.Stringer("command", cmd.kind),
			zap.Int("capacity", cap(t.commands)))
		return false
	}
}

// NeedsReconfiguration reports whether polling stopped because the provider
// rejected the settings. Only meaningful from the loop goroutine.
func (t *Ticker) NeedsReconfiguration() bool {
	return t.reconfigure
}
