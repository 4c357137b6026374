// Package server exposes the formatter over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rshade/idbatch/internal/formatter"
	"github.com/rshade/idbatch/internal/idkind"
	"github.com/rshade/idbatch/internal/ingest"
)

// Options configure the server.
type Options struct {
	// MaxUploadBytes bounds the request body.
	MaxUploadBytes int64

	// Defaults used when a request does not set them.
	Header    bool
	Style     string
	Qualifier string
	BatchSize int
}

// Server renders uploaded identifier tables. It never writes files.
type Server struct {
	opts    Options
	log     zerolog.Logger
	metrics *metrics
	engine  *gin.Engine
}

const shutdownTimeout = 5 * time.Second

// New builds the server and its routes.
func New(opts Options, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		opts:    opts,
		log:     log.With().Str("component", "server").Logger(),
		metrics: newMetrics(),
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), s.requestLogger())

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	v1 := s.engine.Group("/v1")
	v1.GET("/kinds", s.handleKinds)
	v1.POST("/render/:idtype", s.handleRender)

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info().Msg("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	}
}

func (s *Server) handleKinds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kinds": idkind.All()})
}

func (s *Server) handleRender(c *gin.Context) {
	start := time.Now()
	idtype := c.Param("idtype")

	kind, err := idkind.Lookup(idtype)
	if err != nil {
		s.fail(c, "unknown", err)
		return
	}
	label := string(kind.Kind)

	opts, err := s.formatOptions(c)
	if err != nil {
		s.fail(c, label, err)
		return
	}
	header := s.opts.Header
	if v := c.Query("header"); v != "" {
		header, err = strconv.ParseBool(v)
		if err != nil {
			s.fail(c, label, fmt.Errorf("%w: header=%q", errBadRequest, v))
			return
		}
	}

	if s.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	}
	body, format, closeBody, err := s.openUpload(c)
	if err != nil {
		s.fail(c, label, err)
		return
	}
	defer closeBody()

	ids, err := ingest.LoadReader(c.Request.Context(), body, format, ingest.Options{
		Column: kind.ColumnName,
		Header: header,
		Sheet:  c.Query("sheet"),
	})
	if err != nil {
		s.fail(c, label, err)
		return
	}

	fragments, err := formatter.Format(ids, kind, opts)
	if err != nil {
		s.fail(c, label, err)
		return
	}

	s.metrics.renders.WithLabelValues(label, "ok").Inc()
	s.metrics.identifiers.WithLabelValues(label).Observe(float64(len(ids)))
	s.metrics.duration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	c.Header("X-Identifier-Count", strconv.Itoa(len(ids)))
	c.Header("X-Fragment-Count", strconv.Itoa(len(fragments)))
	c.String(http.StatusOK, formatter.Assemble(fragments))
}

func (s *Server) formatOptions(c *gin.Context) (formatter.Options, error) {
	styleName := c.DefaultQuery("style", s.opts.Style)
	style, err := formatter.ParseStyle(styleName)
	if err != nil {
		return formatter.Options{}, err
	}
	return formatter.Options{
		Style:     style,
		Qualifier: c.DefaultQuery("qualifier", s.opts.Qualifier),
		BatchSize: s.opts.BatchSize,
	}, nil
}

// openUpload returns the table stream: the multipart "file" field when the
// request is a form upload, otherwise the raw body decoded as CSV unless
// ?format=xlsx is given.
func (s *Server) openUpload(c *gin.Context) (io.Reader, ingest.Format, func(), error) {
	noop := func() {}

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, "", noop, fmt.Errorf("%w: multipart field \"file\": %w", errBadRequest, err)
		}
		format, err := ingest.FormatFromPath(fh.Filename)
		if err != nil {
			return nil, "", noop, err
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", noop, err
		}
		return f, format, func() { _ = f.Close() }, nil
	}

	format := ingest.FormatCSV
	if q := c.Query("format"); q != "" {
		var err error
		format, err = ingest.FormatFromPath("upload." + q)
		if err != nil {
			return nil, "", noop, err
		}
	}
	return c.Request.Body, format, noop, nil
}

var errBadRequest = errors.New("bad request")

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, idkind.ErrUnsupportedKind),
		errors.Is(err, ingest.ErrUnsupportedFileFormat),
		errors.Is(err, ingest.ErrMissingColumn),
		errors.Is(err, ingest.ErrMissingSheet),
		errors.Is(err, formatter.ErrInvalidIdentifier),
		errors.Is(err, formatter.ErrUnknownStyle),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func (s *Server) fail(c *gin.Context, label string, err error) {
	status := statusFor(err)
	s.metrics.renders.WithLabelValues(label, strconv.Itoa(status)).Inc()
	s.log.Debug().Err(err).Int("status", status).Msg("render rejected")
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
