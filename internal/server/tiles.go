// Package server serves noise tile pyramids over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/noisefield/internal/mbtiles"
	"github.com/MeKo-Tech/noisefield/internal/noise"
	"github.com/MeKo-Tech/noisefield/internal/raster"
	"github.com/MeKo-Tech/noisefield/internal/tile"
	"github.com/paulmach/orb"
)

// TilesConfig configures a tile handler.
type TilesConfig struct {
	// World is the region of the plane covered by the z0 tile.
	World        orb.Bound
	BaseTileSize int
	Blur         float32
	CacheControl string

	MaxConcurrentGenerations int
	GenerationTimeout        time.Duration
	// GenerateMissing renders tiles absent from the archive. Without an
	// archive every tile is rendered.
	GenerateMissing bool
	// CacheSize is the number of rendered tiles kept in memory; 0 disables
	// the cache.
	CacheSize int
}

// Tiles serves PNG tiles of a noise field, reading them from an MBTiles
// archive when one is attached and rendering them on demand otherwise.
type Tiles struct {
	src     noise.Module2[float64]
	archive *mbtiles.Reader
	logger  *slog.Logger
	sem     chan struct{}
	cfg     TilesConfig

	mu    sync.Mutex
	cache map[string][]byte
	order []string

	// locks holds one entry per tile with a render in flight or waiting.
	lockMu sync.Mutex
	locks  map[string]*tileLock

	activeRenders  atomic.Int32
	totalRendered  atomic.Int64
	totalFailed    atomic.Int64
	archiveHits    atomic.Int64
	cacheHits      atomic.Int64
	currentRenders sync.Map // tile key -> start time
}

// TileStatus reports the state of the tile handler.
type TileStatus struct {
	ActiveRenders int      `json:"active_renders"`
	TotalRendered int64    `json:"total_rendered"`
	TotalFailed   int64    `json:"total_failed"`
	ArchiveHits   int64    `json:"archive_hits"`
	CacheHits     int64    `json:"cache_hits"`
	CachedTiles   int      `json:"cached_tiles"`
	CurrentTiles  []string `json:"current_tiles"`
	MaxConcurrent int      `json:"max_concurrent"`
}

// NewTiles creates a tile handler for src. archive may be nil.
func NewTiles(src noise.Module2[float64], archive *mbtiles.Reader, cfg TilesConfig, logger *slog.Logger) (*Tiles, error) {
	if src == nil && (archive == nil || cfg.GenerateMissing) {
		return nil, errors.New("server: a source module is required to generate tiles")
	}
	if archive == nil {
		cfg.GenerateMissing = true
	}
	if cfg.World.IsZero() {
		cfg.World = raster.DefaultOptions().Bounds
	}
	if cfg.BaseTileSize <= 0 {
		cfg.BaseTileSize = 256
	}
	if cfg.MaxConcurrentGenerations <= 0 {
		cfg.MaxConcurrentGenerations = 1
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = 30 * time.Second
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = "no-store"
	}

	return &Tiles{
		src:     src,
		archive: archive,
		logger:  logger,
		sem:     make(chan struct{}, cfg.MaxConcurrentGenerations),
		cfg:     cfg,
		cache:   make(map[string][]byte),
		locks:   make(map[string]*tileLock),
	}, nil
}

// Status returns the current counters of the handler.
func (t *Tiles) Status() TileStatus {
	var current []string
	t.currentRenders.Range(func(key, _ any) bool {
		current = append(current, key.(string))
		return true
	})
	sort.Strings(current)

	t.mu.Lock()
	cached := len(t.cache)
	t.mu.Unlock()

	return TileStatus{
		ActiveRenders: int(t.activeRenders.Load()),
		TotalRendered: t.totalRendered.Load(),
		TotalFailed:   t.totalFailed.Load(),
		ArchiveHits:   t.archiveHits.Load(),
		CacheHits:     t.cacheHits.Load(),
		CachedTiles:   cached,
		CurrentTiles:  current,
		MaxConcurrent: t.cfg.MaxConcurrentGenerations,
	}
}

// StatusHandler returns an HTTP handler for the status endpoint (JSON).
func (t *Tiles) StatusHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		if err := json.NewEncoder(w).Encode(t.Status()); err != nil {
			t.log().Error("failed to encode status", "error", err)
			http.Error(w, "failed to encode status", http.StatusInternalServerError)
		}
	})
}

func (t *Tiles) Handler() http.Handler {
	return http.HandlerFunc(t.serveTile)
}

func (t *Tiles) serveTile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	coords, suffix, ok := parseTilePath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	key := coords.String() + suffix

	data, err := t.tile(r.Context(), coords, suffix)
	switch {
	case errors.Is(err, mbtiles.ErrTileNotFound):
		http.Error(w, fmt.Sprintf("tile not found: %s", key), http.StatusNotFound)
		return
	case errors.Is(err, context.Canceled):
		http.Error(w, "request cancelled", http.StatusRequestTimeout)
		return
	case err != nil:
		t.log().Error("failed to produce tile", "coords", key, "error", err)
		http.Error(w, fmt.Sprintf("failed to generate tile %s: %v", key, err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", t.cfg.CacheControl)
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(data); err != nil {
		t.log().Error("failed to write response", "error", err)
	}
}

// tile returns the encoded tile, trying the cache, then the archive, and
// finally rendering it.
func (t *Tiles) tile(ctx context.Context, coords tile.Coords, suffix string) ([]byte, error) {
	key := coords.String() + suffix

	if data, ok := t.cached(key); ok {
		t.cacheHits.Add(1)
		return data, nil
	}

	// Archives hold a single tile size.
	if t.archive != nil && suffix == "" {
		data, err := t.archive.ReadTile(coords)
		if err == nil {
			t.archiveHits.Add(1)
			return data, nil
		}
		if !errors.Is(err, mbtiles.ErrTileNotFound) {
			return nil, err
		}
		if !t.cfg.GenerateMissing {
			return nil, err
		}
	}

	if t.src == nil {
		return nil, fmt.Errorf("%w: %s", mbtiles.ErrTileNotFound, key)
	}

	// Concurrent requests for the same tile render it once.
	l := t.acquire(key)
	defer t.release(key, l)

	if data, ok := t.cached(key); ok {
		t.cacheHits.Add(1)
		return data, nil
	}

	select {
	case t.sem <- struct{}{}:
		defer func() { <-t.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.GenerationTimeout)
	defer cancel()

	opts := raster.DefaultOptions()
	opts.Width = tileSizeForSuffix(t.cfg.BaseTileSize, suffix)
	opts.Height = opts.Width
	opts.Bounds = t.cfg.World
	opts.Blur = t.cfg.Blur
	opts.Workers = 1
	opts.Logger = t.logger

	start := time.Now()
	t.activeRenders.Add(1)
	t.currentRenders.Store(key, start)

	data, err := raster.RenderTile(ctx, t.src, coords, opts, "png")

	t.activeRenders.Add(-1)
	t.currentRenders.Delete(key)

	if err != nil {
		t.totalFailed.Add(1)
		return nil, err
	}
	t.totalRendered.Add(1)
	t.log().Debug("tile generated on-demand", "coords", key, "ms", time.Since(start).Milliseconds())

	t.store(key, data)
	return data, nil
}

func (t *Tiles) cached(key string) ([]byte, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	data, ok := t.cache[key]
	return data, ok
}

// store adds a tile to the cache, evicting the oldest entries beyond CacheSize.
func (t *Tiles) store(key string, data []byte) {
	if t.cfg.CacheSize <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.cache[key]; ok {
		return
	}
	t.cache[key] = data
	t.order = append(t.order, key)
	for len(t.order) > t.cfg.CacheSize {
		delete(t.cache, t.order[0])
		t.order = t.order[1:]
	}
}

type tileLock struct {
	mu   sync.Mutex
	refs int
}

// acquire locks the per-tile mutex for key, creating it on first use.
func (t *Tiles) acquire(key string) *tileLock {
	t.lockMu.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &tileLock{}
		t.locks[key] = l
	}
	l.refs++
	t.lockMu.Unlock()

	l.mu.Lock()
	return l
}

// release unlocks l and drops it once no request holds or waits on it.
func (t *Tiles) release(key string, l *tileLock) {
	l.mu.Unlock()

	t.lockMu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(t.locks, key)
	}
	t.lockMu.Unlock()
}

func (t *Tiles) lockCount() int {
	t.lockMu.Lock()
	defer t.lockMu.Unlock()
	return len(t.locks)
}

func (t *Tiles) log() *slog.Logger {
	if t.logger != nil {
		return t.logger
	}
	return slog.Default()
}

func parseTilePath(requestPath string) (tile.Coords, string, bool) {
	// Expect: /tiles/z3_x5_y2.png or /tiles/z3_x5_y2@2x.png
	if !strings.HasPrefix(requestPath, "/tiles/") {
		return tile.Coords{}, "", false
	}
	base := path.Base(requestPath)
	if !strings.HasSuffix(base, ".png") {
		return tile.Coords{}, "", false
	}
	name := strings.TrimSuffix(base, ".png")
	suffix := ""
	if strings.HasSuffix(name, "@2x") {
		suffix = "@2x"
		name = strings.TrimSuffix(name, "@2x")
	}

	coords, err := tile.ParseCoords(name)
	if err != nil {
		return tile.Coords{}, "", false
	}
	return coords, suffix, true
}

func tileSizeForSuffix(base int, suffix string) int {
	if suffix == "@2x" {
		return base * 2
	}
	return base
}
