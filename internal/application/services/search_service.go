package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/rs/zerolog/log"

	"github.com/holocron-labs/swapi-explorer/backend/internal/adapters/cache"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
	"github.com/holocron-labs/swapi-explorer/backend/internal/infrastructure/clients/swapi"
	"github.com/holocron-labs/swapi-explorer/backend/internal/infrastructure/observability"
	"github.com/holocron-labs/swapi-explorer/backend/pkg/config"
	apperrors "github.com/holocron-labs/swapi-explorer/backend/pkg/errors"
)

// Cache key scheme: swapi:<entity>:<operation>:<identifier>. Search terms
// are lower-cased so "Luke" and "luke" share an entry.
func searchPeopleKey(term string) string {
	return "swapi:people:search:" + strings.ToLower(term)
}

func searchMoviesKey(term string) string {
	return "swapi:movies:search:" + strings.ToLower(term)
}

func detailPeopleKey(id string) string {
	return "swapi:people:detail:" + id
}

func detailMoviesKey(id string) string {
	return "swapi:movies:detail:" + id
}

// SearchService orchestrates cache-aside lookups against the upstream Star
// Wars API and resolves related-entity expansions for detail views.
type SearchService struct {
	api     swapi.API
	cache   *cache.FailsafeCache
	cfg     *config.SwapiConfig
	metrics *observability.Metrics
}

// NewSearchService creates a new search service
func NewSearchService(api swapi.API, failsafe *cache.FailsafeCache, cfg *config.SwapiConfig, metrics *observability.Metrics) *SearchService {
	return &SearchService{
		api:     api,
		cache:   failsafe,
		cfg:     cfg,
		metrics: metrics,
	}
}

// SearchPeople returns the upstream search page for a name, served from
// cache when possible. Upstream failure is fatal: there is no degraded
// result for the primary resource.
func (s *SearchService) SearchPeople(ctx context.Context, name string) (*entities.SearchResponse[entities.PersonProperties], error) {
	cacheKey := searchPeopleKey(name)

	if cached, ok := cacheLookup[entities.SearchResponse[entities.PersonProperties]](ctx, s.cache, cacheKey); ok {
		return cached, nil
	}

	observability.RecordUpstreamRequest(ctx, s.metrics, "search_people")
	page, err := s.api.SearchPeople(ctx, name)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to search people on SWAPI", err)
	}

	s.cacheStore(ctx, cacheKey, page, s.cfg.SearchPeopleTTL)
	return page, nil
}

// SearchMovies returns the upstream search page for a film title.
func (s *SearchService) SearchMovies(ctx context.Context, title string) (*entities.SearchResponse[entities.FilmProperties], error) {
	cacheKey := searchMoviesKey(title)

	if cached, ok := cacheLookup[entities.SearchResponse[entities.FilmProperties]](ctx, s.cache, cacheKey); ok {
		return cached, nil
	}

	observability.RecordUpstreamRequest(ctx, s.metrics, "search_movies")
	page, err := s.api.SearchFilms(ctx, title)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to search movies on SWAPI", err)
	}

	s.cacheStore(ctx, cacheKey, page, s.cfg.SearchMoviesTTL)
	return page, nil
}

// GetPersonByID returns one person with the films list expanded to full film
// properties. A film that fails to resolve is omitted from filmsData; the
// call itself only fails when the person fetch fails.
func (s *SearchService) GetPersonByID(ctx context.Context, id string) (*entities.DetailResponse[entities.PersonWithFilms], error) {
	if err := validateID(id, "person"); err != nil {
		return nil, err
	}

	cacheKey := detailPeopleKey(id)
	if cached, ok := cacheLookup[entities.DetailResponse[entities.PersonWithFilms]](ctx, s.cache, cacheKey); ok {
		return cached, nil
	}

	observability.RecordUpstreamRequest(ctx, s.metrics, "get_person")
	person, err := s.api.GetPerson(ctx, id)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to fetch person from SWAPI", err)
	}

	filmsData := expand(ctx, person.Result.Properties.Films, s.api.FetchFilm)

	response := &entities.DetailResponse[entities.PersonWithFilms]{
		Message: person.Message,
		Result: entities.DetailResult[entities.PersonWithFilms]{
			UID:         person.Result.UID,
			Description: person.Result.Description,
			Properties: entities.PersonWithFilms{
				PersonProperties: person.Result.Properties,
				FilmsData:        filmsData,
			},
		},
	}

	s.cacheStore(ctx, cacheKey, response, s.cfg.DetailPeopleTTL)
	return response, nil
}

// GetMovieByID returns one film with the characters list expanded to full
// person properties.
func (s *SearchService) GetMovieByID(ctx context.Context, id string) (*entities.DetailResponse[entities.FilmWithCharacters], error) {
	if err := validateID(id, "movie"); err != nil {
		return nil, err
	}

	cacheKey := detailMoviesKey(id)
	if cached, ok := cacheLookup[entities.DetailResponse[entities.FilmWithCharacters]](ctx, s.cache, cacheKey); ok {
		return cached, nil
	}

	observability.RecordUpstreamRequest(ctx, s.metrics, "get_movie")
	movie, err := s.api.GetFilm(ctx, id)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to fetch movie from SWAPI", err)
	}

	charactersData := expand(ctx, movie.Result.Properties.Characters, s.api.FetchPerson)

	response := &entities.DetailResponse[entities.FilmWithCharacters]{
		Message: movie.Message,
		Result: entities.DetailResult[entities.FilmWithCharacters]{
			UID:         movie.Result.UID,
			Description: movie.Result.Description,
			Properties: entities.FilmWithCharacters{
				FilmProperties: movie.Result.Properties,
				CharactersData: charactersData,
			},
		},
	}

	s.cacheStore(ctx, cacheKey, response, s.cfg.DetailMoviesTTL)
	return response, nil
}

// validateID rejects absent or non-positive numeric IDs before any I/O.
// This is a caller error, distinct from an upstream "not found".
func validateID(id, kind string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.NewValidationError("invalid " + kind + " ID")
	}
	if n, err := strconv.Atoi(id); err == nil && n <= 0 {
		return apperrors.NewValidationError("invalid " + kind + " ID")
	}
	return nil
}

// cacheLookup deserializes a cached JSON value; a malformed entry is logged
// and treated as a miss.
func cacheLookup[T any](ctx context.Context, failsafe *cache.FailsafeCache, key string) (*T, bool) {
	data, ok := failsafe.Get(ctx, key)
	if !ok {
		log.Debug().Str("key", key).Msg("Cache MISS")
		return nil, false
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		log.Error().Str("key", key).Err(err).Msg("Malformed cache entry, treating as miss")
		return nil, false
	}

	log.Debug().Str("key", key).Msg("Cache HIT")
	return &value, true
}

func (s *SearchService) cacheStore(ctx context.Context, key string, value interface{}, ttlSeconds int) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Error().Str("key", key).Err(err).Msg("Failed to marshal value for cache")
		return
	}
	s.cache.Set(ctx, key, data, ttlSeconds)
}

// expand resolves a list of related-entity URLs concurrently. Each URL
// settles independently through a per-call dataloader (duplicate URLs are
// fetched once); failed items are dropped so a partial upstream outage only
// shortens the expansion list. Output order follows input order.
func expand[T any](ctx context.Context, urls []string, fetch func(context.Context, string) (*entities.DetailResponse[T], error)) []T {
	out := make([]T, 0, len(urls))
	if len(urls) == 0 {
		return out
	}

	loader := dataloader.NewBatchedLoader(
		func(ctx context.Context, keys []string) []*dataloader.Result[T] {
			results := make([]*dataloader.Result[T], len(keys))
			var wg sync.WaitGroup
			for i, key := range keys {
				wg.Add(1)
				go func(i int, resourceURL string) {
					defer wg.Done()
					resp, err := fetch(ctx, resourceURL)
					if err != nil {
						results[i] = &dataloader.Result[T]{Error: err}
						return
					}
					results[i] = &dataloader.Result[T]{Data: resp.Result.Properties}
				}(i, key)
			}
			wg.Wait()
			return results
		},
		dataloader.WithBatchCapacity[string, T](len(urls)),
	)

	thunks := make([]dataloader.Thunk[T], len(urls))
	for i, resourceURL := range urls {
		thunks[i] = loader.Load(ctx, resourceURL)
	}

	for i, thunk := range thunks {
		properties, err := thunk()
		if err != nil {
			log.Warn().Str("url", urls[i]).Err(err).Msg("Failed to fetch related resource, omitting")
			continue
		}
		out = append(out, properties)
	}

	return out
}
