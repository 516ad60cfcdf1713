package state

import (
	"context"
	"log/slog"
	"sync"

	"clipforge/internal/api"
	"clipforge/internal/clips"
	"clipforge/internal/library"
	"clipforge/internal/logging"
	"clipforge/internal/presets"
	"clipforge/internal/session"
	"clipforge/internal/spaces"
)

// App is the single shared application state container. Every namespace
// below the session (broll, music, presets, clips) is an independently resettable
// sub-store; changing the active workspace is the reset boundary that clears
// them all, and logout is the global teardown that additionally purges the
// persisted whitelist.
type App struct {
	logger    *slog.Logger
	creds     *session.Store
	spacesSvc *spaces.Service

	mu         sync.Mutex
	spacesList []spaces.Space
	active     *spaces.Space
	subs       map[int]func(spaces.Space)
	nextSub    int

	broll      *library.Tree
	music      *library.Tree
	presetList *presets.Store
	clipList   *clips.Store
}

// New constructs the application state, rehydrating the persisted whitelist
// (user, spaces, active space) from the credential store.
func New(creds *session.Store, client *api.Client, logger *slog.Logger) *App {
	treeSvc := library.NewService(client, logger)
	app := &App{
		logger:     logging.WithComponent(logger, "state"),
		creds:      creds,
		spacesSvc:  spaces.NewService(client, logger),
		subs:       make(map[int]func(spaces.Space)),
		broll:      library.NewTree(library.CategoryBroll, treeSvc),
		music:      library.NewTree(library.CategoryMusic, treeSvc),
		presetList: presets.NewStore(),
		clipList:   clips.NewStore(),
	}

	if list, err := creds.Spaces(); err == nil {
		app.spacesList = list
	} else {
		app.logger.Warn("rehydrate spaces failed", "error", err)
	}
	if active, err := creds.ActiveSpace(); err == nil {
		app.active = active
	} else {
		app.logger.Warn("rehydrate active space failed", "error", err)
	}
	return app
}

// User returns the persisted identity, or nil when signed out.
func (a *App) User() *session.User {
	user, err := a.creds.User()
	if err != nil {
		a.logger.Warn("read user failed", "error", err)
		return nil
	}
	return user
}

// Tree returns the tree sub-store for a namespace.
func (a *App) Tree(category library.Category) *library.Tree {
	if category == library.CategoryBroll {
		return a.broll
	}
	return a.music
}

// Presets returns the preset sub-store.
func (a *App) Presets() *presets.Store {
	return a.presetList
}

// Clips returns the clip sub-store.
func (a *App) Clips() *clips.Store {
	return a.clipList
}

// Spaces returns the cached workspace list.
func (a *App) Spaces() []spaces.Space {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]spaces.Space(nil), a.spacesList...)
}

// RefreshSpaces fetches the workspace list for the signed-in user and
// persists it.
func (a *App) RefreshSpaces(ctx context.Context) ([]spaces.Space, error) {
	user := a.User()
	if user == nil {
		return nil, api.Wrap(api.ErrAuth, "spaces", "not signed in", nil)
	}
	list, err := a.spacesSvc.List(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if err := a.creds.SaveSpaces(list); err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.spacesList = list
	a.mu.Unlock()
	return list, nil
}

// ActiveSpace returns the active workspace, or nil when none is selected.
func (a *App) ActiveSpace() *spaces.Space {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.active == nil {
		return nil
	}
	active := *a.active
	return &active
}

// SetActiveSpace switches the active workspace. This is the reset boundary:
// every dependent sub-store discards its cached state unconditionally, then
// subscribers are notified so stale deep links can be re-validated.
func (a *App) SetActiveSpace(space spaces.Space) error {
	if err := a.creds.SetActiveSpace(space.ID); err != nil {
		return err
	}

	a.mu.Lock()
	a.active = &space
	subs := make([]func(spaces.Space), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.Unlock()

	a.resetDerived()
	for _, fn := range subs {
		fn(space)
	}
	a.logger.Info("active space changed", "space", space.ID)
	return nil
}

// SubscribeSpaceChange registers a callback fired after every active-space
// switch. The returned function cancels the subscription.
func (a *App) SubscribeSpaceChange(fn func(spaces.Space)) func() {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		delete(a.subs, id)
		a.mu.Unlock()
	}
}

// BelongsToActiveSpace reports whether an owner id matches the active
// workspace. Views use this to re-derive deep-link validity instead of
// trusting cached ids across a workspace switch.
func (a *App) BelongsToActiveSpace(ownerID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active != nil && a.active.ID == ownerID
}

// Logout resets every slice of application state to its initial value and
// purges the persisted whitelist. This is the single global teardown point.
func (a *App) Logout() error {
	if err := a.creds.Purge(); err != nil {
		return err
	}
	a.mu.Lock()
	a.spacesList = nil
	a.active = nil
	a.mu.Unlock()
	a.resetDerived()
	a.logger.Info("signed out")
	return nil
}

func (a *App) resetDerived() {
	a.broll.Reset()
	a.music.Reset()
	a.presetList.Reset()
	a.clipList.Reset()
}
