// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

// Package catalog holds the movie documents served by the public and
// token-guarded catalog routes.
package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Rating is one third-party score for a movie.
type Rating struct {
	Source string `json:"Source" yaml:"Source" jsonschema:"minLength=1"`
	Value  string `json:"Value" yaml:"Value" jsonschema:"minLength=1"`
}

// RatingList decodes from either a JSON array or a string holding a JSON
// array. Form posts deliver Ratings as the latter.
type RatingList []Rating

// UnmarshalJSON implements json.Unmarshaler.
func (l *RatingList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return oops.Code("MOVIE_INVALID_RATINGS").Wrapf(ErrInvalidDocument, "Ratings: %v", err)
		}
		return l.UnmarshalParam(encoded)
	}

	var ratings []Rating
	if err := json.Unmarshal(data, &ratings); err != nil {
		return oops.Code("MOVIE_INVALID_RATINGS").Wrapf(ErrInvalidDocument, "Ratings: %v", err)
	}
	*l = ratings
	return nil
}

// UnmarshalParam decodes a form value.
func (l *RatingList) UnmarshalParam(param string) error {
	param = strings.TrimSpace(param)
	if param == "" {
		*l = nil
		return nil
	}
	var ratings []Rating
	if err := json.Unmarshal([]byte(param), &ratings); err != nil {
		return oops.Code("MOVIE_INVALID_RATINGS").Wrapf(ErrInvalidDocument, "Ratings: %v", err)
	}
	*l = ratings
	return nil
}

// Document is the client-editable body of a movie. Field names match the
// OMDb-style payloads clients already send.
type Document struct {
	Title      string     `json:"Title" form:"Title" yaml:"Title" jsonschema:"minLength=1,maxLength=512"`
	Year       string     `json:"Year,omitempty" form:"Year" yaml:"Year,omitempty" jsonschema:"maxLength=16"`
	Rated      string     `json:"Rated,omitempty" form:"Rated" yaml:"Rated,omitempty"`
	Released   string     `json:"Released,omitempty" form:"Released" yaml:"Released,omitempty"`
	Runtime    string     `json:"Runtime,omitempty" form:"Runtime" yaml:"Runtime,omitempty"`
	Genre      string     `json:"Genre,omitempty" form:"Genre" yaml:"Genre,omitempty"`
	Director   string     `json:"Director,omitempty" form:"Director" yaml:"Director,omitempty"`
	Writer     string     `json:"Writer,omitempty" form:"Writer" yaml:"Writer,omitempty"`
	Actors     string     `json:"Actors,omitempty" form:"Actors" yaml:"Actors,omitempty"`
	Plot       string     `json:"Plot,omitempty" form:"Plot" yaml:"Plot,omitempty"`
	Language   string     `json:"Language,omitempty" form:"Language" yaml:"Language,omitempty"`
	Country    string     `json:"Country,omitempty" form:"Country" yaml:"Country,omitempty"`
	Awards     string     `json:"Awards,omitempty" form:"Awards" yaml:"Awards,omitempty"`
	Poster     string     `json:"Poster,omitempty" form:"Poster" yaml:"Poster,omitempty"`
	Ratings    RatingList `json:"Ratings,omitempty" form:"-" yaml:"Ratings,omitempty"`
	Metascore  string     `json:"Metascore,omitempty" form:"Metascore" yaml:"Metascore,omitempty"`
	IMDBRating string     `json:"imdbRating,omitempty" form:"imdbRating" yaml:"imdbRating,omitempty"`
	IMDBVotes  string     `json:"imdbVotes,omitempty" form:"imdbVotes" yaml:"imdbVotes,omitempty"`
	IMDBID     string     `json:"imdbID,omitempty" form:"imdbID" yaml:"imdbID,omitempty" jsonschema:"pattern=^tt[0-9]+$"`
	Type       string     `json:"Type,omitempty" form:"Type" yaml:"Type,omitempty"`
	DVD        string     `json:"DVD,omitempty" form:"DVD" yaml:"DVD,omitempty"`
	BoxOffice  string     `json:"BoxOffice,omitempty" form:"BoxOffice" yaml:"BoxOffice,omitempty"`
	Production string     `json:"Production,omitempty" form:"Production" yaml:"Production,omitempty"`
	Website    string     `json:"Website,omitempty" form:"Website" yaml:"Website,omitempty"`
	Response   string     `json:"Response,omitempty" form:"Response" yaml:"Response,omitempty"`
}

// Movie is a stored Document with its identity and timestamps.
type Movie struct {
	ID ulid.ULID `json:"_id"`
	Document
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewMovie wraps a document in a new Movie with a fresh ID.
func NewMovie(doc Document) *Movie {
	now := time.Now().UTC()
	return &Movie{
		ID:        ulid.Make(),
		Document:  doc.normalized(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// normalized trims surrounding whitespace from the identifying fields.
func (d Document) normalized() Document {
	d.Title = strings.TrimSpace(d.Title)
	d.IMDBID = strings.TrimSpace(d.IMDBID)
	return d
}
