package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Siqu/shpParser/shp"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// Writes to a file usually arrive as a burst of events.
const watchDebounce = 500 * time.Millisecond

type fileLoader struct {
	store fileStore
}

type loadResult struct {
	path        string
	state       fileState
	records     int
	fingerprint fileFingerprint
	err         error
}

func (r loadResult) status() fileStatus {
	s := fileStatus{
		State:       r.state,
		Records:     r.records,
		Fingerprint: r.fingerprint,
		UpdatedAt:   time.Now(),
	}

	if r.err != nil {
		s.Error = r.err.Error()
	}

	return s
}

func (l *fileLoader) load(ctx context.Context, path string) loadResult {
	result := loadResult{
		path:  path,
		state: fileFailed,
	}

	fp, err := fingerprintFile(path)

	if err != nil {
		result.err = err
		return result
	}

	result.fingerprint = fp

	processed, err := l.store.isProcessed(ctx, path, fp)

	if err != nil {
		result.err = fmt.Errorf("failed to check for previous load: %w", err)
		return result
	}

	if processed {
		result.state = fileSkipped
		return result
	}

	f, err := os.Open(path)

	if err != nil {
		result.err = err
		return result
	}

	defer f.Close()

	decoded := newDecodedFile(ctx, path, fp)

	if err = shp.Decode(bufio.NewReader(f), decoded); err != nil {
		result.err = err
		return result
	}

	if err = l.store.save(ctx, decoded); err != nil {
		result.err = fmt.Errorf("failed to store: %w", err)
		return result
	}

	result.state = fileLoaded
	result.records = len(decoded.records)

	return result
}

type loaderManager struct {
	instances []*loaderInstance
}

type loaderInstance struct {
	config sourceConfig
	loader *fileLoader
	status *loadStatusManager

	logger logger
}

func newLoaderManager(sources []sourceConfig, store fileStore, status *loadStatusManager, log logger) *loaderManager {
	m := &loaderManager{
		instances: make([]*loaderInstance, len(sources)),
	}

	for i, source := range sources {
		m.instances[i] = &loaderInstance{
			config: source,
			loader: &fileLoader{store: store},
			status: status,
			logger: log.newSubLogger(source.Id),
		}
	}

	return m
}

func (m *loaderManager) run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, i := range m.instances {
		instance := i

		g.Go(func() error {
			return instance.run(ctx)
		})
	}

	return g.Wait()
}

func (m *loaderInstance) run(ctx context.Context) error {
	if m.config.Watch {
		return m.watch(ctx)
	}

	for {
		if err := m.scan(ctx); err != nil {
			return err
		}

		if m.config.RescanDelay <= 0 {
			return nil
		}

		m.logger.Printf("waiting %d seconds before rescan...", m.config.RescanDelay)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(m.config.RescanDelay) * time.Second):
		}
	}
}

func (m *loaderInstance) scan(ctx context.Context) error {
	entries, err := os.ReadDir(m.config.Directory)

	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", m.config.Directory, err)
	}

	paths := make([]string, 0)

	for _, e := range entries {
		if !e.IsDir() && isShapefile(e.Name()) {
			paths = append(paths, filepath.Join(m.config.Directory, e.Name()))
		}
	}

	m.status.markScanned(m.config.Id, time.Now())
	m.loadFiles(ctx, paths)

	return nil
}

// loadFiles decodes up to Workers files at a time. Failures are reported
// per file and do not stop the others.
func (m *loaderInstance) loadFiles(ctx context.Context, paths []string) {
	var g errgroup.Group
	g.SetLimit(m.config.Workers)

	for _, p := range paths {
		path := p

		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			m.report(m.loader.load(ctx, path))
			return nil
		})
	}

	_ = g.Wait()
}

func (m *loaderInstance) report(r loadResult) {
	m.status.updateFile(m.config.Id, r.path, r.status())

	switch r.state {
	case fileFailed:
		m.logger.Errorf("failed to load %s: %v", r.path, r.err)
	case fileSkipped:
		if !m.config.DisableLoadLog {
			m.logger.Printf("%s is already loaded, skipping", r.path)
		}
	case fileLoaded:
		if !m.config.DisableLoadLog {
			m.logger.Printf("loaded %s: %d records", r.path, r.records)
		}
	}
}

func (m *loaderInstance) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()

	if err != nil {
		return err
	}

	defer watcher.Close()

	if err = watcher.Add(m.config.Directory); err != nil {
		return fmt.Errorf("failed to watch %s: %w", m.config.Directory, err)
	}

	m.status.setWatching(m.config.Id, true)
	defer m.status.setWatching(m.config.Id, false)

	// Scan after the watch is in place so nothing slips in between.
	if err = m.scan(ctx); err != nil {
		return err
	}

	m.logger.Printf("watching %s", m.config.Directory)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(watchDebounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if (event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) && isShapefile(event.Name) {
				pending[event.Name] = time.Now()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			m.logger.Errorf("watch error: %v", err)
		case now := <-ticker.C:
			ready := readyPaths(pending, now)

			if len(ready) > 0 {
				m.loadFiles(ctx, ready)
			}
		}
	}
}

// readyPaths removes and returns the paths that saw no event for a full
// debounce period.
func readyPaths(pending map[string]time.Time, now time.Time) []string {
	ready := make([]string, 0)

	for path, at := range pending {
		if now.Sub(at) >= watchDebounce {
			ready = append(ready, path)
			delete(pending, path)
		}
	}

	slices.Sort(ready)

	return ready
}

func isShapefile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".shp")
}
