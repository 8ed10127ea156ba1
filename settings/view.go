package settings

import (
	"context"
	"io"
	"sync"

	"github.com/Kellerman81/holmes_admin/apiexternal"
	"github.com/Kellerman81/holmes_admin/apperrors"
	"github.com/Kellerman81/holmes_admin/i18n"
	"github.com/Kellerman81/holmes_admin/logger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Backend is the part of the holmes client the settings view needs.
type Backend interface {
	GetSettings(ctx context.Context) (apiexternal.ServerSettings, error)
	SaveSettings(ctx context.Context, update apiexternal.SettingsUpdate) error
}

// Labels are the localised texts of the settings view.
type Labels struct {
	Title                  string
	ServerName             string
	PrependPodcastItem     string
	EnableIcecastDirectory string
	Cancel                 string
	Save                   string
}

var labelKeys = []string{
	"msg.settings.title",
	"msg.settings.serverName",
	"msg.settings.prependPodcastItem",
	"msg.settings.enableIcecastDirectory",
	"msg.cancel",
	"msg.save",
}

// Model is what the renderer gets. Token identifies the rendered form and
// must be posted back with every save.
type Model struct {
	Settings apiexternal.ServerSettings
	Labels   Labels
	Token    string
}

// Renderer writes the settings view.
type Renderer interface {
	RenderSettings(w io.Writer, m Model) error
}

// Form holds the values posted by the view.
type Form struct {
	Token                  string
	ServerName             string
	PrependPodcastItem     bool
	EnableIcecastDirectory bool
}

// NotificationKind is the alert style of a Notification.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationDanger  NotificationKind = "danger"
)

// Notification is the outcome of a save. Stale is set when a later save of
// the same form was issued before this one completed; such a result must not
// reach the page. Saves of other forms never make a result stale.
type Notification struct {
	Kind       NotificationKind
	Text       string
	Generation uint64
	Stale      bool
}

// View renders and saves the server settings.
type View struct {
	client     Backend
	renderer   Renderer
	lookup     i18n.Lookup
	generation *atomic.Uint64
	inFlight   *atomic.Int32

	mu     sync.Mutex
	latest map[string]*pendingSaves
}

// pendingSaves tracks the saves of one form that have not answered yet.
type pendingSaves struct {
	generation uint64
	count      int
}

// NewView creates a settings view backed by client.
func NewView(client Backend, renderer Renderer, lookup i18n.Lookup) *View {
	return &View{
		client:     client,
		renderer:   renderer,
		lookup:     lookup,
		generation: atomic.NewUint64(0),
		inFlight:   atomic.NewInt32(0),
		latest:     make(map[string]*pendingSaves),
	}
}

// begin records gen as the latest save of token.
func (v *View) begin(token string, gen uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.latest[token]
	if !ok {
		p = &pendingSaves{}
		v.latest[token] = p
	}
	p.generation = gen
	p.count++
}

// finish reports whether gen is still the latest save of token and forgets
// the token once none of its saves is pending.
func (v *View) finish(token string, gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	p, ok := v.latest[token]
	if !ok {
		return true
	}
	latest := p.generation == gen
	p.count--
	if p.count <= 0 {
		delete(v.latest, token)
	}
	return latest
}

func (v *View) labels() (Labels, error) {
	m, err := i18n.Labels(v.lookup, labelKeys...)
	if err != nil {
		return Labels{}, err
	}
	return Labels{
		Title:                  m["msg.settings.title"],
		ServerName:             m["msg.settings.serverName"],
		PrependPodcastItem:     m["msg.settings.prependPodcastItem"],
		EnableIcecastDirectory: m["msg.settings.enableIcecastDirectory"],
		Cancel:                 m["msg.cancel"],
		Save:                   m["msg.save"],
	}, nil
}

// Render fetches the settings and writes the view. Nothing is written on error.
func (v *View) Render(ctx context.Context, w io.Writer) error {
	settings, err := v.client.GetSettings(ctx)
	if err != nil {
		return err
	}
	labels, err := v.labels()
	if err != nil {
		return errors.Wrap(err, "settings labels")
	}
	if err := v.renderer.RenderSettings(w, Model{Settings: settings, Labels: labels, Token: uuid.NewString()}); err != nil {
		return apperrors.Wrap(apperrors.ErrClassRender, "render settings", err)
	}
	return nil
}

// Cancel discards the edits by rendering a fresh copy from the server.
func (v *View) Cancel(ctx context.Context, w io.Writer) error {
	return v.Render(ctx, w)
}

// Saving reports whether a save is in flight.
func (v *View) Saving() bool {
	return v.inFlight.Load() > 0
}

// Save posts the form. Every call is sent; of the saves posted from one
// rendered form only the most recently issued one may update the page,
// whatever order the answers arrive in. A save without a token is never stale.
func (v *View) Save(ctx context.Context, form Form) Notification {
	gen := v.generation.Inc()
	v.inFlight.Inc()
	defer v.inFlight.Dec()
	if form.Token == "" {
		form.Token = uuid.NewString()
	}
	v.begin(form.Token, gen)

	err := v.client.SaveSettings(ctx, apiexternal.NewSettingsUpdate(form.ServerName, form.PrependPodcastItem, form.EnableIcecastDirectory))
	n := Notification{Generation: gen, Stale: !v.finish(form.Token, gen)}
	fields := logrus.Fields{"generation": gen, "stale": n.Stale}
	if err != nil {
		logger.Log.WithFields(fields).WithError(err).Warnln("settings not saved")
		n.Kind = NotificationDanger
		n.Text = apperrors.UserMessage(err)
		return n
	}
	saved, err := v.lookup.Lookup("msg.settings.saved")
	if err != nil {
		n.Kind = NotificationDanger
		n.Text = apperrors.UserMessage(err)
		return n
	}
	logger.Log.WithFields(fields).Infoln("settings saved")
	n.Kind = NotificationSuccess
	n.Text = saved
	return n
}
