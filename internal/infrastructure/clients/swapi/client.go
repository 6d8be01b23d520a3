package swapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
	"github.com/holocron-labs/swapi-explorer/backend/pkg/config"
)

// searchPageSize caps the upstream search page; the result set is cached as
// one page, no cursor is modeled
const searchPageSize = 100

// API is the upstream Star Wars data service surface used by the
// application. Search and detail lookups are primary fetches whose failures
// propagate; FetchPerson/FetchFilm resolve absolute resource URLs during
// fan-out expansion and their failures are absorbed by the caller.
type API interface {
	SearchPeople(ctx context.Context, name string) (*entities.SearchResponse[entities.PersonProperties], error)
	SearchFilms(ctx context.Context, title string) (*entities.SearchResponse[entities.FilmProperties], error)
	GetPerson(ctx context.Context, id string) (*entities.DetailResponse[entities.PersonProperties], error)
	GetFilm(ctx context.Context, id string) (*entities.DetailResponse[entities.FilmProperties], error)
	FetchPerson(ctx context.Context, resourceURL string) (*entities.DetailResponse[entities.PersonProperties], error)
	FetchFilm(ctx context.Context, resourceURL string) (*entities.DetailResponse[entities.FilmProperties], error)
}

// Client is an HTTP client for swapi.tech with rate-limit aware retries
type Client struct {
	baseURL        string
	httpClient     *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a new upstream client
func NewClient(cfg *config.SwapiConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
	}
}

// SearchPeople searches people by name
func (c *Client) SearchPeople(ctx context.Context, name string) (*entities.SearchResponse[entities.PersonProperties], error) {
	out := &entities.SearchResponse[entities.PersonProperties]{}
	if err := c.getJSON(ctx, c.searchEndpoint("/people", "name", name), out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchFilms searches films by title
func (c *Client) SearchFilms(ctx context.Context, title string) (*entities.SearchResponse[entities.FilmProperties], error) {
	out := &entities.SearchResponse[entities.FilmProperties]{}
	if err := c.getJSON(ctx, c.searchEndpoint("/films", "title", title), out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPerson fetches a single person by ID
func (c *Client) GetPerson(ctx context.Context, id string) (*entities.DetailResponse[entities.PersonProperties], error) {
	endpoint := fmt.Sprintf("%s/people/%s", c.baseURL, url.PathEscape(id))
	out := &entities.DetailResponse[entities.PersonProperties]{}
	if err := c.getJSON(ctx, endpoint, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetFilm fetches a single film by ID
func (c *Client) GetFilm(ctx context.Context, id string) (*entities.DetailResponse[entities.FilmProperties], error) {
	endpoint := fmt.Sprintf("%s/films/%s", c.baseURL, url.PathEscape(id))
	out := &entities.DetailResponse[entities.FilmProperties]{}
	if err := c.getJSON(ctx, endpoint, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchPerson resolves an absolute person resource URL
func (c *Client) FetchPerson(ctx context.Context, resourceURL string) (*entities.DetailResponse[entities.PersonProperties], error) {
	out := &entities.DetailResponse[entities.PersonProperties]{}
	if err := c.getJSON(ctx, resourceURL, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchFilm resolves an absolute film resource URL
func (c *Client) FetchFilm(ctx context.Context, resourceURL string) (*entities.DetailResponse[entities.FilmProperties], error) {
	out := &entities.DetailResponse[entities.FilmProperties]{}
	if err := c.getJSON(ctx, resourceURL, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) searchEndpoint(path, param, term string) string {
	query := url.Values{}
	query.Set(param, term)
	query.Set("limit", fmt.Sprintf("%d", searchPageSize))
	return fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
}

// getJSON issues a GET and decodes the response. HTTP 429 is retried up to
// maxRetries times with linearly increasing delay (base * (attempt + 2));
// every other failure is returned to the caller on the first occurrence.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < c.maxRetries {
			resp.Body.Close()
			wait := c.retryBaseDelay * time.Duration(attempt+2)
			log.Debug().Str("url", endpoint).Int("attempt", attempt).Dur("wait", wait).
				Msg("Rate limited by upstream, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return fmt.Errorf("swapi returned status %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("failed to decode swapi response: %w", err)
		}
		return nil
	}
}
