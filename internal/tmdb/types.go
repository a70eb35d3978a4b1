package tmdb

import "strings"

// PosterBaseURL prefixes poster_path values returned by the API.
const PosterBaseURL = "https://image.tmdb.org/t/p/w500"

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// MovieDetails is the subset of /movie/{id} the catalog keeps.
type MovieDetails struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	Runtime     int     `json:"runtime"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
	PosterPath  string  `json:"poster_path"`
	Genres      []Genre `json:"genres"`
}

// GenreNames returns the genres in catalog naming.
func (d *MovieDetails) GenreNames() []string {
	out := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		out = append(out, NormalizeGenre(g.Name))
	}
	return out
}

type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

type CrewMember struct {
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

type Credits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Director returns the first crew member credited as "Director", or "".
func (c *Credits) Director() string {
	for _, m := range c.Crew {
		if m.Job == "Director" {
			return m.Name
		}
	}
	return ""
}

// TopCast returns at most n cast members in billing order.
func (c *Credits) TopCast(n int) []CastMember {
	if n > len(c.Cast) {
		n = len(c.Cast)
	}
	if n <= 0 {
		return nil
	}
	out := make([]CastMember, n)
	copy(out, c.Cast[:n])
	return out
}

// SearchResult is one entry of a /search/movie or /trending page.
type SearchResult struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
	PosterPath  string  `json:"poster_path"`
	GenreIDs    []int   `json:"genre_ids"`
}

// GenreNames maps genre_ids to catalog genre names; unknown ids are skipped.
func (r *SearchResult) GenreNames() []string {
	out := make([]string, 0, len(r.GenreIDs))
	for _, id := range r.GenreIDs {
		if name, ok := genreByID[id]; ok {
			out = append(out, name)
		}
	}
	return out
}

type Page struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// Movie is details plus the credits the engine uses.
type Movie struct {
	Details  MovieDetails
	Director string
	Cast     []CastMember
}

// PosterURL returns the full poster URL for a poster_path, or "".
func PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return PosterBaseURL + path
}

// TMDB genre ids, named the way the MovieLens catalog names them so content
// scoring compares like with like.
var genreByID = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Children",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Musical",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Sci-Fi",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

var genreAliases = map[string]string{
	"science fiction": "Sci-Fi",
	"family":          "Children",
	"music":           "Musical",
}

// NormalizeGenre maps a TMDB genre name onto catalog naming.
func NormalizeGenre(name string) string {
	if alias, ok := genreAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return alias
	}
	return strings.TrimSpace(name)
}
