package palavra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"PalavraCerta/internal/notify"
	"PalavraCerta/internal/plan"
	"PalavraCerta/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// devotionalFeeling is the feeling used when praying over the devotional.
const devotionalFeeling = "um coração grato"

// Provider is the generative service behind verses, prayers and speech.
// Every method is success-shaped: failures come back as a fixed fallback
// (or absent audio), never as an error.
type Provider interface {
	FetchVerseForFeeling(ctx context.Context, feeling string, p plan.Plan) Verse
	FetchDailyDevotional(ctx context.Context) Verse
	FetchPrayer(ctx context.Context, feeling string, v Verse) string
	FetchSpeechAudio(ctx context.Context, text string) ([]byte, bool)
}

// Notifier receives the toast produced by each action.
type Notifier interface {
	Notify(sessionID string, t notify.Toast)
}

// Options tune a Controller. Zero values get sensible defaults.
type Options struct {
	Clock    func() time.Time
	Location *time.Location // display zone for savedAt/history timestamps
	Ambient  AmbientScheme
	Notifier Notifier
	Logger   *zerolog.Logger
}

// Controller applies user intents to session state.
type Controller struct {
	store    *store.Store
	provider Provider
	notifier Notifier
	clock    func() time.Time
	loc      *time.Location
	ambient  AmbientScheme
	log      *zerolog.Logger

	locks sessionLocks
}

func NewController(st *store.Store, provider Provider, opts Options) *Controller {
	c := &Controller{
		store:    st,
		provider: provider,
		notifier: opts.Notifier,
		clock:    opts.Clock,
		loc:      opts.Location,
		ambient:  opts.Ambient,
		log:      opts.Logger,
	}
	if c.notifier == nil {
		c.notifier = notify.Discard{}
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.loc == nil {
		c.loc = time.UTC
	}
	if c.ambient == nil {
		c.ambient = LightAmbient
	}
	if c.log == nil {
		nop := zerolog.Nop()
		c.log = &nop
	}
	return c
}

// Snapshot is the read model handed to the view layer.
type Snapshot struct {
	Plan              plan.Plan           `json:"plan"`
	Limits            plan.QuotaLimits    `json:"limits"`
	DailySearch       DailySearch         `json:"dailySearch"`
	RemainingSearches *int                `json:"remainingSearches"`
	SavedVerses       []SavedVerse        `json:"savedVerses"`
	SearchHistory     []SearchHistoryItem `json:"searchHistory"`
	Theme             Theme               `json:"theme"`
	Presentation      Presentation        `json:"presentation"`
}

// Outcome is the result of a state-changing action.
type Outcome struct {
	State Snapshot      `json:"state"`
	Toast *notify.Toast `json:"toast,omitempty"`
}

// SearchResult is the outcome of an accepted search.
type SearchResult struct {
	Outcome
	Verse Verse `json:"response"`
}

func (c *Controller) lock(sessionID string) func() {
	return c.locks.lock(sessionID)
}

func (c *Controller) today() string {
	return Today(c.clock())
}

func (c *Controller) stamp() string {
	return c.clock().In(c.loc).Format(timestampLayout)
}

// load reads every key of the session concurrently and applies the lazy
// date rollover, persisting the reset counter when it happens.
func (c *Controller) load(ctx context.Context, st *store.Store) State {
	today := c.today()
	def := DefaultState(today)
	var s State

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.Plan = plan.Normalize(string(store.Load(gctx, st, store.KeyPlan, def.Plan)))
		return nil
	})
	g.Go(func() error {
		s.Daily = store.Load(gctx, st, store.KeyDailySearch, def.Daily)
		return nil
	})
	g.Go(func() error {
		s.Saved = store.Load(gctx, st, store.KeySavedVerses, def.Saved)
		return nil
	})
	g.Go(func() error {
		s.History = store.Load(gctx, st, store.KeySearchHistory, def.History)
		return nil
	})
	g.Go(func() error {
		t, err := ParseTheme(string(store.Load(gctx, st, store.KeyTheme, def.Theme)))
		if err != nil {
			t = def.Theme
		}
		s.Theme = t
		return nil
	})
	_ = g.Wait()

	if s.Saved == nil {
		s.Saved = []SavedVerse{}
	}
	if s.History == nil {
		s.History = []SearchHistoryItem{}
	}

	if s.Daily.Date != today {
		s = s.Rollover(today)
		store.Save(ctx, st, store.KeyDailySearch, s.Daily)
	}
	return s
}

func (c *Controller) snapshot(ctx context.Context, s State) Snapshot {
	return Snapshot{
		Plan:              s.Plan,
		Limits:            s.Limits(),
		DailySearch:       s.Daily,
		RemainingSearches: s.RemainingSearches(),
		SavedVerses:       s.Saved,
		SearchHistory:     s.History,
		Theme:             s.Theme,
		Presentation:      ResolveTheme(s.Theme, c.ambient(ctx)),
	}
}

func (c *Controller) outcome(ctx context.Context, sessionID string, s State, t *notify.Toast) Outcome {
	if t != nil {
		c.notifier.Notify(sessionID, *t)
	}
	return Outcome{State: c.snapshot(ctx, s), Toast: t}
}

func (c *Controller) fail(sessionID string, err error) error {
	t := ToastFor(err)
	c.notifier.Notify(sessionID, t)
	return err
}

func toast(t notify.Toast) *notify.Toast {
	return &t
}

// Snapshot returns the session's current state.
func (c *Controller) Snapshot(ctx context.Context, sessionID string) Snapshot {
	unlock := c.lock(sessionID)
	defer unlock()

	return c.snapshot(ctx, c.load(ctx, c.store.Session(sessionID)))
}

// RequestSearch asks the provider for a verse matching feeling, subject to
// the daily quota. The quota is checked before the provider is called.
func (c *Controller) RequestSearch(ctx context.Context, sessionID, feeling string) (SearchResult, error) {
	unlock := c.lock(sessionID)
	defer unlock()

	st := c.store.Session(sessionID)
	s, err := c.load(ctx, st).CheckSearch(feeling, c.today())
	if err != nil {
		c.log.Info().Err(err).Str("session_id", sessionID).Msg("Search rejected")
		return SearchResult{}, c.fail(sessionID, err)
	}

	feeling = strings.TrimSpace(feeling)
	verse := c.provider.FetchVerseForFeeling(ctx, feeling, s.Plan)
	if ctx.Err() != nil {
		// The caller went away; its result is discarded and nothing is recorded.
		return SearchResult{}, c.fail(sessionID, fmt.Errorf("%w: %v", ErrProviderUnavailable, ctx.Err()))
	}

	s = s.RecordSearch(feeling, c.stamp())
	store.Save(ctx, st, store.KeySearchHistory, s.History)
	store.Save(ctx, st, store.KeyDailySearch, s.Daily)

	c.log.Info().Str("session_id", sessionID).Str("verse", verse.Reference).Msg("Search answered")
	return SearchResult{Outcome: c.outcome(ctx, sessionID, s, nil), Verse: verse}, nil
}

// SaveVerse adds v to the personal collection.
// ErrAlreadySaved is informational: the collection is left as it was.
func (c *Controller) SaveVerse(ctx context.Context, sessionID string, v Verse) (Outcome, error) {
	unlock := c.lock(sessionID)
	defer unlock()

	st := c.store.Session(sessionID)
	s, err := c.load(ctx, st).SaveVerse(v, c.stamp())
	if err != nil {
		return Outcome{State: c.snapshot(ctx, s)}, c.fail(sessionID, err)
	}
	store.Save(ctx, st, store.KeySavedVerses, s.Saved)

	return c.outcome(ctx, sessionID, s, toast(notify.Success("Versículo salvo com sucesso!"))), nil
}

// DeleteVerse removes the verse with the given reference. Deleting an
// unknown reference is not an error.
func (c *Controller) DeleteVerse(ctx context.Context, sessionID, reference string) Outcome {
	unlock := c.lock(sessionID)
	defer unlock()

	st := c.store.Session(sessionID)
	s := c.load(ctx, st).DeleteVerse(reference)
	store.Save(ctx, st, store.KeySavedVerses, s.Saved)

	return c.outcome(ctx, sessionID, s, toast(notify.Info("Versículo excluído.")))
}

// ChangePlan switches the session to p and trims the lists to its limits.
func (c *Controller) ChangePlan(ctx context.Context, sessionID string, p plan.Plan) (Outcome, error) {
	if !p.Valid() {
		return Outcome{}, c.fail(sessionID, fmt.Errorf("%w: %q", plan.ErrInvalidPlan, p))
	}

	unlock := c.lock(sessionID)
	defer unlock()

	st := c.store.Session(sessionID)
	old := c.load(ctx, st)
	s := old.ChangePlan(p, c.today())

	store.Save(ctx, st, store.KeyPlan, s.Plan)
	store.Save(ctx, st, store.KeyDailySearch, s.Daily)
	store.Save(ctx, st, store.KeySavedVerses, s.Saved)
	store.Save(ctx, st, store.KeySearchHistory, s.History)

	c.log.Info().
		Str("session_id", sessionID).
		Str("from", string(old.Plan)).
		Str("to", string(p)).
		Int("saved_dropped", len(old.Saved)-len(s.Saved)).
		Int("history_dropped", len(old.History)-len(s.History)).
		Msg("Plan changed")

	msg := fmt.Sprintf("Plano alterado para %s! Aproveite os novos benefícios.", p)
	return c.outcome(ctx, sessionID, s, toast(notify.Success(msg))), nil
}

// ChangeTheme stores the appearance preference.
func (c *Controller) ChangeTheme(ctx context.Context, sessionID string, t Theme) (Outcome, error) {
	t, err := ParseTheme(string(t))
	if err != nil {
		return Outcome{}, c.fail(sessionID, err)
	}

	unlock := c.lock(sessionID)
	defer unlock()

	st := c.store.Session(sessionID)
	s := c.load(ctx, st).ChangeTheme(t)
	store.Save(ctx, st, store.KeyTheme, s.Theme)

	return c.outcome(ctx, sessionID, s, nil), nil
}

// ClearHistory empties the search history.
func (c *Controller) ClearHistory(ctx context.Context, sessionID string) Outcome {
	unlock := c.lock(sessionID)
	defer unlock()

	st := c.store.Session(sessionID)
	s := c.load(ctx, st).ClearHistory()
	store.Save(ctx, st, store.KeySearchHistory, s.History)

	return c.outcome(ctx, sessionID, s, toast(notify.Info("Histórico de buscas limpo.")))
}

// DailyDevotional returns today's devotional, asking the provider at most
// once per calendar date per session.
func (c *Controller) DailyDevotional(ctx context.Context, sessionID string) (Verse, error) {
	unlock := c.lock(sessionID)
	defer unlock()

	st := c.store.Session(sessionID)
	today := c.today()

	cached := store.Load(ctx, st, store.KeyDevotional, Devotional{})
	if cached.Date == today && cached.Verse != nil {
		return *cached.Verse, nil
	}

	v := c.provider.FetchDailyDevotional(ctx)
	if ctx.Err() != nil {
		return Verse{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, ctx.Err())
	}
	store.Save(ctx, st, store.KeyDevotional, Devotional{Verse: &v, Date: today})
	return v, nil
}

// Prayer composes a prayer for feeling and v. A blank feeling prays over
// the devotional.
func (c *Controller) Prayer(ctx context.Context, feeling string, v Verse) string {
	feeling = strings.TrimSpace(feeling)
	if feeling == "" {
		feeling = devotionalFeeling
	}
	return c.provider.FetchPrayer(ctx, feeling, v)
}

// Speech synthesizes text. ok is false when no audio could be produced.
func (c *Controller) Speech(ctx context.Context, text string) (audio []byte, ok bool, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, false, ErrEmptyText
	}
	audio, ok = c.provider.FetchSpeechAudio(ctx, text)
	return audio, ok, nil
}
