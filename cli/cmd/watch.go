package cmd

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/polly/lang"
	"github.com/ardnew/polly/log"
)

// watchDebounce collects bursts of file events, such as an editor writing a
// temporary file and renaming it, into one render.
const watchDebounce = 100 * time.Millisecond

var errWatchStdin = lang.NewError("standard input cannot be watched")

// watchSet is the set of files whose changes trigger a render.
type watchSet struct {
	files   map[string]struct{}
	dirs    map[string]struct{}
	locales string // every file below it is relevant
}

func abs(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}

	return filepath.Clean(path)
}

func (r *Render) watchSet() (watchSet, error) {
	ws := watchSet{
		files: make(map[string]struct{}),
		dirs:  make(map[string]struct{}),
	}

	paths := slices.Concat(r.Inputs, r.Imports)
	if r.Vars != "" {
		paths = append(paths, r.Vars)
	}

	for _, p := range paths {
		if p == stdinSource {
			return ws, ErrWatch.Wrap(errWatchStdin)
		}

		p = abs(p)
		ws.files[p] = struct{}{}
		ws.dirs[filepath.Dir(p)] = struct{}{}
	}

	if !r.NoLocales {
		ws.locales = abs(r.LocalesDir)

		if tags := localeDirs(r.LocalesDir); tags != nil {
			ws.dirs[ws.locales] = struct{}{}

			for _, tag := range tags {
				ws.dirs[filepath.Join(ws.locales, tag)] = struct{}{}
			}
		}
	}

	return ws, nil
}

// relevant reports whether a change to name affects the rendered output.
func (ws watchSet) relevant(name string) bool {
	name = abs(name)

	if _, ok := ws.files[name]; ok {
		return true
	}

	return ws.locales != "" &&
		strings.HasPrefix(name, ws.locales+string(filepath.Separator))
}

// watch renders all inputs, then renders again after every relevant file
// change until ctx is canceled.
func (r *Render) watch(ctx context.Context) error {
	ws, err := r.watchSet()
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ErrWatch.Wrap(err)
	}
	defer w.Close()

	for _, dir := range slices.Sorted(maps.Keys(ws.dirs)) {
		if err := w.Add(dir); err != nil {
			return ErrWatch.With(slog.String("dir", dir)).Wrap(err)
		}
	}

	// one document per file; a changed file replaces its entry
	cache := lang.NewCache()

	render := func() {
		err := r.renderAll(ctx, cache)
		if err != nil && !errors.Is(err, ErrRenderFailed) {
			report(streamsFrom(ctx).Err, err)
		}

		log.InfoContext(ctx, "rendered",
			slog.Int("inputs", len(r.Inputs)),
			slog.Int("cached_documents", cache.Len()),
			slog.Bool("ok", err == nil),
		)
	}

	render()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) ||
				!ws.relevant(ev.Name) {
				continue
			}

			log.DebugContext(ctx, "change detected",
				slog.String("file", ev.Name),
				slog.String("op", ev.Op.String()),
			)
			timer.Reset(watchDebounce)

		case <-timer.C:
			render()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			log.WarnContext(ctx, "watch error", slog.Any("error", err))
		}
	}
}
