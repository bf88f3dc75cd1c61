// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/samber/oops"

	"github.com/marquee/marquee/internal/catalog"
	"github.com/marquee/marquee/pkg/errutil"
)

func (h *handlers) listMovies(c *gin.Context) {
	movies, err := h.deps.Catalog.List(c.Request.Context())
	if err != nil {
		h.catalogError(c, "list movies", err)
		return
	}
	if len(movies) == 0 && h.opts.LegacyStatus {
		errorReply(c, http.StatusNotFound, errNoMovies)
		return
	}
	if movies == nil {
		movies = []*catalog.Movie{}
	}
	c.JSON(http.StatusOK, movies)
}

func (h *handlers) findMovie(c *gin.Context) {
	movie, err := h.deps.Catalog.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.catalogError(c, "find movie", err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *handlers) addMovie(c *gin.Context) {
	doc, err := bindDocument(c)
	if err != nil {
		h.catalogError(c, "add movie", err)
		return
	}
	movie, err := h.deps.Catalog.Add(c.Request.Context(), doc)
	if err != nil {
		h.catalogError(c, "add movie", err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *handlers) updateMovie(c *gin.Context) {
	doc, err := bindDocument(c)
	if err != nil {
		h.catalogError(c, "update movie", err)
		return
	}
	movie, err := h.deps.Catalog.Update(c.Request.Context(), c.Param("id"), doc)
	if err != nil {
		h.catalogError(c, "update movie", err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (h *handlers) deleteMovie(c *gin.Context) {
	if err := h.deps.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.catalogError(c, "delete movie", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedCount": 1})
}

// bindDocument decodes a JSON or form body. Any decode failure is an
// invalid document. Form posts carry Ratings as a JSON-encoded string.
func bindDocument(c *gin.Context) (catalog.Document, error) {
	var doc catalog.Document
	if err := c.ShouldBind(&doc); err != nil {
		if errors.Is(err, catalog.ErrInvalidDocument) {
			return doc, err
		}
		return doc, oops.Code("MOVIE_INVALID").Wrapf(catalog.ErrInvalidDocument, "malformed body: %v", err)
	}
	if c.ContentType() != binding.MIMEJSON {
		if err := doc.Ratings.UnmarshalParam(c.PostForm("Ratings")); err != nil {
			return doc, err
		}
	}
	return doc, nil
}

// catalogError maps catalog failures to replies. Store failures are logged
// and hidden behind a generic 500.
func (h *handlers) catalogError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		errorReply(c, http.StatusNotFound, errNoMovie)
	case errors.Is(err, catalog.ErrInvalidDocument):
		errorReply(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrDuplicate):
		errorReply(c, http.StatusConflict, errMovieExists)
	default:
		errutil.LogErrorContext(c.Request.Context(), h.deps.Logger, operation+" failed", err)
		abortInternal(c)
	}
}
