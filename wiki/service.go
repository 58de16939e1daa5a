// Package wiki binds the render-fetch engines to the wiki's page kinds.
// A Service owns one engine per kind; all of them share a surface provider.
package wiki

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/wikidex/cache"
	"github.com/use-agent/wikidex/cleaner"
	"github.com/use-agent/wikidex/engine"
	"github.com/use-agent/wikidex/extract"
	"github.com/use-agent/wikidex/models"
)

// Engine kinds. The list kinds serve collection pages, the rest item pages.
const (
	KindCatalogue = "catalogue"
	KindMedia     = "media"
	KindWeapon    = "weapon"
	KindCharacter = "character"
	KindGuide     = "guide"
	KindWallpaper = "wallpaper"
	KindEmoticon  = "emoticon"
	KindFanArt    = "fanart"
	KindVideo     = "video"
	KindArticle   = "article"
)

// ItemKinds lists the kinds accepted by Item, in display order.
var ItemKinds = []string{
	KindWeapon, KindCharacter, KindGuide, KindWallpaper,
	KindEmoticon, KindFanArt, KindVideo, KindArticle,
}

var itemIDRe = regexp.MustCompile(`^\d+$`)

// Options configures a Service.
type Options struct {
	// BaseURL is the wiki origin. Empty means models.DefaultBaseURL.
	BaseURL string

	Engine engine.Options

	// Cleaner renders guide articles. Nil means cleaner.New().
	Cleaner *cleaner.Cleaner
}

// cacheOwner is the cache surface every engine exposes, whatever its T.
type cacheOwner interface {
	Name() string
	ClearCache()
	ClearCacheFor(address string)
	CacheSnapshot() cache.Snapshot
}

// Service fetches wiki pages as typed records.
type Service struct {
	addr     models.Addresses
	provider engine.SurfaceProvider
	log      *slog.Logger

	catalogue  *engine.Engine[[]models.CatalogueEntry]
	media      *engine.Engine[[]models.MediaEntry]
	weapons    *engine.Engine[models.WeaponDetails]
	characters *engine.Engine[models.CharacterDetails]
	guides     *engine.Engine[models.CharacterGuide]
	wallpapers *engine.Engine[models.WallpaperDetails]
	emoticons  *engine.Engine[models.EmoticonDetails]
	fanArt     *engine.Engine[models.FanArt]
	videos     *engine.Engine[models.VideoDetails]
	articles   *engine.Engine[models.GuideArticle]

	engines map[string]cacheOwner
}

// New creates a Service rendering through provider. The Service does not own
// provider; the caller closes it.
func New(provider engine.SurfaceProvider, opts Options) *Service {
	logger := opts.Engine.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Engine.Logger = logger
	cl := opts.Cleaner
	if cl == nil {
		cl = cleaner.New()
	}

	eo := opts.Engine
	s := &Service{
		addr:     models.NewAddresses(opts.BaseURL),
		provider: provider,
		log:      logger.With("component", "wiki"),

		catalogue:  engine.New[[]models.CatalogueEntry](KindCatalogue, provider, extract.CatalogueEntries, eo),
		media:      engine.New[[]models.MediaEntry](KindMedia, provider, extract.MediaEntries, eo),
		weapons:    engine.New[models.WeaponDetails](KindWeapon, provider, extract.WeaponDetails, eo),
		characters: engine.New[models.CharacterDetails](KindCharacter, provider, extract.CharacterDetails, eo),
		guides:     engine.New[models.CharacterGuide](KindGuide, provider, extract.CharacterGuide, eo),
		wallpapers: engine.New[models.WallpaperDetails](KindWallpaper, provider, extract.WallpaperDetails, eo),
		emoticons:  engine.New[models.EmoticonDetails](KindEmoticon, provider, extract.EmoticonDetails, eo),
		fanArt:     engine.New[models.FanArt](KindFanArt, provider, extract.FanArtImages, eo),
		videos:     engine.New[models.VideoDetails](KindVideo, provider, extract.VideoDetails, eo),
		articles:   engine.New[models.GuideArticle](KindArticle, provider, extract.GuideArticle(cl), eo),
	}

	s.engines = make(map[string]cacheOwner)
	for _, e := range []cacheOwner{
		s.catalogue, s.media, s.weapons, s.characters, s.guides,
		s.wallpapers, s.emoticons, s.fanArt, s.videos, s.articles,
	} {
		s.engines[e.Name()] = e
	}
	return s
}

// Addresses returns the address builder the Service fetches from.
func (s *Service) Addresses() models.Addresses { return s.addr }

// Catalogue returns the entries of an encyclopedia category.
func (s *Service) Catalogue(ctx context.Context, slug string, refresh bool) (engine.Result[[]models.CatalogueEntry], error) {
	c, ok := models.LookupCategory(slug)
	if !ok {
		return engine.Result[[]models.CatalogueEntry]{}, unknown("catalogue category", slug, models.Categories)
	}
	return s.catalogue.Fetch(ctx, s.addr.Catalogue(c), refresh)
}

// Media returns the entries of a media collection.
func (s *Service) Media(ctx context.Context, slug string, refresh bool) (engine.Result[[]models.MediaEntry], error) {
	c, ok := models.LookupMediaType(slug)
	if !ok {
		return engine.Result[[]models.MediaEntry]{}, unknown("media type", slug, models.MediaTypes)
	}
	return s.media.Fetch(ctx, s.addr.Media(c), refresh)
}

// Guides returns the strategy guide collection.
func (s *Service) Guides(ctx context.Context, refresh bool) (engine.Result[[]models.MediaEntry], error) {
	return s.media.Fetch(ctx, s.addr.Guides(), refresh)
}

// Weapon returns a weapon item page.
func (s *Service) Weapon(ctx context.Context, itemID string, refresh bool) (engine.Result[models.WeaponDetails], error) {
	return fetchItem(ctx, s, s.weapons, itemID, refresh)
}

// Character returns a resonator item page.
func (s *Service) Character(ctx context.Context, itemID string, refresh bool) (engine.Result[models.CharacterDetails], error) {
	return fetchItem(ctx, s, s.characters, itemID, refresh)
}

// CharacterGuide returns a character strategy page.
func (s *Service) CharacterGuide(ctx context.Context, itemID string, refresh bool) (engine.Result[models.CharacterGuide], error) {
	return fetchItem(ctx, s, s.guides, itemID, refresh)
}

// Wallpapers returns a wallpaper collection page.
func (s *Service) Wallpapers(ctx context.Context, itemID string, refresh bool) (engine.Result[models.WallpaperDetails], error) {
	return fetchItem(ctx, s, s.wallpapers, itemID, refresh)
}

// Emoticons returns an emoticon pack page.
func (s *Service) Emoticons(ctx context.Context, itemID string, refresh bool) (engine.Result[models.EmoticonDetails], error) {
	return fetchItem(ctx, s, s.emoticons, itemID, refresh)
}

// FanArt returns a fan-art post.
func (s *Service) FanArt(ctx context.Context, itemID string, refresh bool) (engine.Result[models.FanArt], error) {
	return fetchItem(ctx, s, s.fanArt, itemID, refresh)
}

// Video returns a video page.
func (s *Service) Video(ctx context.Context, itemID string, refresh bool) (engine.Result[models.VideoDetails], error) {
	return fetchItem(ctx, s, s.videos, itemID, refresh)
}

// GuideArticle returns a free-form strategy page as Markdown.
func (s *Service) GuideArticle(ctx context.Context, itemID string, refresh bool) (engine.Result[models.GuideArticle], error) {
	return fetchItem(ctx, s, s.articles, itemID, refresh)
}

func fetchItem[T any](ctx context.Context, s *Service, e *engine.Engine[T], itemID string, refresh bool) (engine.Result[T], error) {
	if err := ValidateItemID(itemID); err != nil {
		return engine.Result[T]{}, err
	}
	return e.Fetch(ctx, s.addr.Item(itemID), refresh)
}

// Fetched is a Result with its value type erased, for callers that pick the
// page kind at run time.
type Fetched struct {
	Kind       string
	Address    string
	Value      any
	FetchedAt  time.Time
	Cached     bool
	RenderTime time.Duration
}

func erase[T any](kind, address string, r engine.Result[T], err error) (Fetched, error) {
	if err != nil {
		return Fetched{}, err
	}
	return Fetched{
		Kind:       kind,
		Address:    address,
		Value:      r.Value,
		FetchedAt:  r.FetchedAt,
		Cached:     r.Cached,
		RenderTime: r.RenderTime,
	}, nil
}

// Item fetches an item page of the given kind.
func (s *Service) Item(ctx context.Context, kind, itemID string, refresh bool) (Fetched, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	address := s.addr.Item(itemID)
	switch kind {
	case KindWeapon:
		r, err := s.Weapon(ctx, itemID, refresh)
		return erase(kind, address, r, err)
	case KindCharacter:
		r, err := s.Character(ctx, itemID, refresh)
		return erase(kind, address, r, err)
	case KindGuide:
		r, err := s.CharacterGuide(ctx, itemID, refresh)
		return erase(kind, address, r, err)
	case KindWallpaper:
		r, err := s.Wallpapers(ctx, itemID, refresh)
		return erase(kind, address, r, err)
	case KindEmoticon:
		r, err := s.Emoticons(ctx, itemID, refresh)
		return erase(kind, address, r, err)
	case KindFanArt:
		r, err := s.FanArt(ctx, itemID, refresh)
		return erase(kind, address, r, err)
	case KindVideo:
		r, err := s.Video(ctx, itemID, refresh)
		return erase(kind, address, r, err)
	case KindArticle:
		r, err := s.GuideArticle(ctx, itemID, refresh)
		return erase(kind, address, r, err)
	default:
		return Fetched{}, models.NewFetchError(models.ErrCodeNotFound,
			"unknown item kind "+strconv.Quote(kind)+"; expected one of "+strings.Join(ItemKinds, ", "), nil)
	}
}

// Warm renders every catalogue category in the background so later list
// requests are served from cache. Failures are logged by the engine and
// reported by the returned tasks.
func (s *Service) Warm(ctx context.Context) []*engine.Task {
	tasks := make([]*engine.Task, 0, len(models.Categories))
	for _, c := range models.Categories {
		tasks = append(tasks, s.catalogue.Go(ctx, s.addr.Catalogue(c), false, func(r engine.Result[[]models.CatalogueEntry]) {
			s.log.Info("catalogue warmed", "category", c.Slug, "entries", len(r.Value), "cached", r.Cached)
		}))
	}
	return tasks
}

// ClearCache empties the cache of every engine.
func (s *Service) ClearCache() {
	for _, e := range s.engines {
		e.ClearCache()
	}
}

// ClearCacheFor empties one engine's cache, or only its entry for address
// when address is non-empty.
func (s *Service) ClearCacheFor(kind, address string) error {
	e, ok := s.engines[kind]
	if !ok {
		return models.NewFetchError(models.ErrCodeNotFound, "unknown cache "+strconv.Quote(kind), nil)
	}
	if address == "" {
		e.ClearCache()
		return nil
	}
	e.ClearCacheFor(address)
	return nil
}

// CacheSnapshot returns the cache metadata of every engine, keyed by kind.
func (s *Service) CacheSnapshot() map[string]cache.Snapshot {
	out := make(map[string]cache.Snapshot, len(s.engines))
	for kind, e := range s.engines {
		out[kind] = e.CacheSnapshot()
	}
	return out
}

// CacheCounts returns the number of cached records per kind.
func (s *Service) CacheCounts() map[string]int {
	out := make(map[string]int, len(s.engines))
	for kind, e := range s.engines {
		out[kind] = e.CacheSnapshot().Count
	}
	return out
}

// Kinds returns every engine kind, sorted.
func (s *Service) Kinds() []string {
	out := make([]string, 0, len(s.engines))
	for kind := range s.engines {
		out = append(out, kind)
	}
	sort.Strings(out)
	return out
}

// Stats returns the surface provider's state.
func (s *Service) Stats() models.SurfaceStats {
	return s.provider.Stats()
}

// ValidateItemID checks that id is a numeric wiki item id.
func ValidateItemID(id string) error {
	if !itemIDRe.MatchString(id) {
		return models.NewFetchError(models.ErrCodeInvalidInput, "item id must be numeric, got "+strconv.Quote(id), nil)
	}
	return nil
}

func unknown(what, slug string, list []models.Category) error {
	return models.NewFetchError(models.ErrCodeNotFound,
		"unknown "+what+" "+strconv.Quote(slug)+"; expected one of "+strings.Join(models.Slugs(list), ", "), nil)
}
