// Package httpcsv delivers an encoded CSV document as an HTTP file download.
package httpcsv

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-data-exporter/csvexport"
)

// Send encodes enc and writes it to w with text/csv content type, an
// attachment disposition and the content length. The filename is used
// verbatim; callers must sanitize it. Nothing is written when encoding fails.
func Send(w http.ResponseWriter, enc *csvexport.Encoder) error {
	data, err := enc.Encode()
	if err != nil {
		return err
	}
	return write(w, enc, data)
}

func write(w http.ResponseWriter, enc *csvexport.Encoder, data []byte) error {
	h := w.Header()
	h.Set("Content-Type", "text/csv; charset="+enc.OutputCharset())
	h.Set("Content-Disposition", `attachment; filename="`+enc.OutputFilename()+`"`)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(data)
	return err
}

// BuildFunc creates the encoder for a request.
type BuildFunc func(r *http.Request) (*csvexport.Encoder, error)

type handler struct {
	build  BuildFunc
	logger *slog.Logger
}

// Handler serves the document built by build. Invalid input or configuration
// is answered with 400, any other failure with 500.
func Handler(build BuildFunc, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &handler{build: build, logger: logger}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	enc, err := h.build(r)
	var data []byte
	if err == nil {
		data, err = enc.Encode()
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := write(w, enc, data); err != nil {
		h.logger.WarnContext(r.Context(), "csv export interrupted",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, csvexport.ErrInvalidInput) || errors.Is(err, csvexport.ErrInvalidConfig) {
		status = http.StatusBadRequest
	}
	h.logger.ErrorContext(r.Context(), "csv export failed",
		slog.String("path", r.URL.Path),
		slog.Int("status", status),
		slog.Any("error", err),
	)
	http.Error(w, http.StatusText(status), status)
}
