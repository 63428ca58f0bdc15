package tmdb

// Movie is the subset of the provider's movie fields the API exposes. Raw
// provider JSON passes through the listed fields untouched.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	Overview         string  `json:"overview"`
	ReleaseDate      string  `json:"release_date"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	GenreIDs         []int   `json:"genre_ids,omitempty"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Popularity       float64 `json:"popularity,omitempty"`
	Adult            bool    `json:"adult"`
}

// MovieDetails extends Movie with fields only present on the detail endpoint.
type MovieDetails struct {
	Movie
	Genres   []Genre `json:"genres,omitempty"`
	Runtime  int     `json:"runtime,omitempty"`
	Tagline  string  `json:"tagline,omitempty"`
	Status   string  `json:"status,omitempty"`
	Homepage string  `json:"homepage,omitempty"`
	IMDBID   string  `json:"imdb_id,omitempty"`
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Page is the provider's standard paginated list envelope.
type Page struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

type genreList struct {
	Genres []Genre `json:"genres"`
}
