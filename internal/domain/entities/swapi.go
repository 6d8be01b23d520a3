package entities

// PersonProperties mirrors the properties block of a swapi.tech person
type PersonProperties struct {
	Name      string   `json:"name"`
	Height    string   `json:"height"`
	Mass      string   `json:"mass"`
	HairColor string   `json:"hair_color"`
	SkinColor string   `json:"skin_color"`
	EyeColor  string   `json:"eye_color"`
	BirthYear string   `json:"birth_year"`
	Gender    string   `json:"gender"`
	Homeworld string   `json:"homeworld"`
	Films     []string `json:"films"`
	Species   []string `json:"species"`
	Vehicles  []string `json:"vehicles"`
	Starships []string `json:"starships"`
	Created   string   `json:"created"`
	Edited    string   `json:"edited"`
	URL       string   `json:"url"`
}

// FilmProperties mirrors the properties block of a swapi.tech film
type FilmProperties struct {
	Title        string   `json:"title"`
	EpisodeID    int      `json:"episode_id"`
	OpeningCrawl string   `json:"opening_crawl"`
	Director     string   `json:"director"`
	Producer     string   `json:"producer"`
	ReleaseDate  string   `json:"release_date"`
	Characters   []string `json:"characters"`
	Planets      []string `json:"planets"`
	Starships    []string `json:"starships"`
	Vehicles     []string `json:"vehicles"`
	Species      []string `json:"species"`
	Created      string   `json:"created"`
	Edited       string   `json:"edited"`
	URL          string   `json:"url"`
}

// SearchResult is one entry of an upstream search page
type SearchResult[T any] struct {
	UID         string `json:"uid"`
	Description string `json:"description"`
	Properties  T      `json:"properties"`
}

// SearchResponse is the upstream search page, cached and returned as-is
type SearchResponse[T any] struct {
	Message string            `json:"message"`
	Result  []SearchResult[T] `json:"result"`
}

// DetailResult is the single-entity payload of an upstream detail response
type DetailResult[T any] struct {
	UID         string `json:"uid"`
	Description string `json:"description"`
	Properties  T      `json:"properties"`
}

// DetailResponse is the upstream detail envelope
type DetailResponse[T any] struct {
	Message string          `json:"message"`
	Result  DetailResult[T] `json:"result"`
}

// PersonWithFilms is a person with the films list resolved to full film
// properties. FilmsData may be shorter than Films when expansion of an
// individual film fails.
type PersonWithFilms struct {
	PersonProperties
	FilmsData []FilmProperties `json:"filmsData"`
}

// FilmWithCharacters is a film with the characters list resolved to full
// person properties.
type FilmWithCharacters struct {
	FilmProperties
	CharactersData []PersonProperties `json:"charactersData"`
}
