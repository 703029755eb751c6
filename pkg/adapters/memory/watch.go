package memory

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the fixture whenever its file changes. The returned channel
// receives a value after every successful reload and is closed when ctx ends.
// A fixture that fails to parse is logged and the previous dataset is kept.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	if s.path == "" {
		return nil, fmt.Errorf("source was not loaded from a file")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fixture watcher: %w", err)
	}
	// Watch the directory: editors often replace the file instead of writing it.
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("fixture watcher add %s: %w", dir, err)
	}

	ch := s.subscribe()
	target := filepath.Clean(s.path)

	go func() {
		defer w.Close()
		defer s.unsubscribe(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				ds, err := LoadFile(s.path)
				if err != nil {
					s.logger.Warn("Fixture reload failed, keeping previous dataset", "path", s.path, "err", err)
					continue
				}
				s.Replace(ds)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("Fixture watcher error", "err", err)
			}
		}
	}()

	return ch, nil
}

func (s *Source) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	s.subsMu.Lock()
	s.subs = append(s.subs, ch)
	s.subsMu.Unlock()
	return ch
}

func (s *Source) unsubscribe(ch chan struct{}) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for i, c := range s.subs {
		if c == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

func (s *Source) notify() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
			// A reload is already pending for this subscriber.
		}
	}
}
