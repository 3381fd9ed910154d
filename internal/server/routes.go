// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes entity linking over HTTP. Each endpoint takes a
// multipart upload with the PDF in the "file" field and answers with the
// serialized labels, links and type lists.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	httpLogger "github.com/chi-middleware/logrus-logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/entitylink/internal/logger"
	"github.com/pdiddy/entitylink/pkg/types"
)

const (
	ReadHeaderTimeout = 5 * time.Second

	// DefaultMaxUploadBytes bounds an upload when the config leaves it unset.
	DefaultMaxUploadBytes int64 = 32 << 20

	versionHeader = "X-Entitylink-Version"
)

// Linker links the entities of one uploaded document.
type Linker interface {
	LinkWikidata(ctx context.Context, doc io.Reader) (*types.EntityLinks, error)
	LinkDBpedia(ctx context.Context, doc io.Reader) (*types.EntityLinks, error)
}

// New creates the HTTP server for cfg. version is reported in the
// X-Entitylink-Version response header.
func New(cfg types.ServerConfig, linker Linker, version string) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           NewRouter(cfg, linker, version),
		ReadHeaderTimeout: ReadHeaderTimeout,
	}
}

// NewRouter builds the router with logging, recovery, request ids and a
// /healthz heartbeat.
func NewRouter(cfg types.ServerConfig, linker Linker, version string) *chi.Mux {
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	router := chi.NewRouter()
	// RequestID and RealIP run first so access-log entries carry them.
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(httpLogger.Logger("router", logger.Get()))
	router.Use(middleware.Recoverer)
	router.Use(sendVersion(version))
	router.Use(middleware.Heartbeat("/healthz"))

	router.Post("/entitylink-wikidata", LinkHandler(linker.LinkWikidata, maxUpload))
	router.Post("/entitylink-dbpedia", LinkHandler(linker.LinkDBpedia, maxUpload))

	return router
}

func sendVersion(version string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if w.Header().Get(versionHeader) == "" {
				w.Header().Add(versionHeader, version)
			}
			next.ServeHTTP(w, r)
		})
	}
}
