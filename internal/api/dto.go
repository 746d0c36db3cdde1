package api

import (
	"github.com/starford/pontos/internal/catalog"
	"github.com/starford/pontos/internal/songservice"
)

// SongDetail is the full song response type (aliased from the domain layer).
type SongDetail = songservice.SongDetail

// SongListItem is a lightweight item in a list response.
type SongListItem = catalog.SongRow

// SongListResponse wraps paginated song listings.
type SongListResponse struct {
	Songs []SongListItem `json:"songs"`
	Total int            `json:"total" example:"42"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []catalog.SearchResult `json:"results"`
}

// TagsResponse lists every tag with its song count.
type TagsResponse struct {
	Tags []catalog.TagCount `json:"tags"`
}
