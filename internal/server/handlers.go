package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/edgebundle/pkg/buildinfo"
	"github.com/matzehuels/edgebundle/pkg/errors"
	"github.com/matzehuels/edgebundle/pkg/pipeline"
)

// bundleRequest is the body of POST /v1/bundle.
type bundleRequest struct {
	Document json.RawMessage  `json:"document,omitempty"`
	DOT      string           `json:"dot,omitempty"`
	Options  pipeline.Options `json:"options"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleBundle(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context())

	req := bundleRequest{Options: pipeline.Options{Config: s.defaults}}
	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE",
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		writeError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidFormat), "decode request: "+err.Error())
		return
	}

	data, source, err := req.input()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	opts := req.Options
	if f := r.URL.Query().Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{pipeline.FormatJSON}
	}
	if len(opts.Formats) > 1 {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "one format per request, got %d", len(opts.Formats)))
		return
	}
	format := opts.Formats[0]
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Logger = logger
	opts.MaxControlPoints = s.maxPts

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	result, err := s.runner.ExecuteInput(ctx, data, source, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Cache", cacheStatus(result.CacheHit))
	w.Header().Set("X-Edge-Count", strconv.Itoa(result.Stats.Edges))
	if !result.CacheHit {
		w.Header().Set("Server-Timing", "bundle;dur="+millis(result.Stats.BundleTime))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Artifacts[format]); err != nil {
		logger.Debug("write response", "error", err)
	}
}

// input returns the raw input and a source name whose extension selects
// the parser.
func (req *bundleRequest) input() ([]byte, string, error) {
	hasDoc := len(req.Document) > 0 && string(req.Document) != "null"
	switch {
	case hasDoc && req.DOT != "":
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "send either document or dot, not both")
	case hasDoc:
		return req.Document, "request.json", nil
	case req.DOT != "":
		return []byte(req.DOT), "request.dot", nil
	}
	return nil, "", errors.New(errors.ErrCodeInvalidInput, "request has no document or dot input")
}

// fail writes err with a status derived from its code.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	msg := errors.UserMessage(err)
	switch {
	case status >= 500:
		loggerFrom(r.Context()).Error("bundle failed", "error", err)
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
	default:
		loggerFrom(r.Context()).Debug("bundle rejected", "error", err)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		code, msg = "TIMEOUT", "bundling did not finish within "+s.timeout.String()
	}
	writeError(w, r, status, code, msg)
}

// statusFor maps an error to an HTTP status.
func statusFor(err error) int {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled), errors.Is(err, errors.ErrCodeCanceled):
		return http.StatusServiceUnavailable
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidCurveType,
		errors.ErrCodeInvalidSmoothing, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath,
		errors.ErrCodeLengthMismatch:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCompatibility:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     errorBody{Code: code, Message: msg},
		RequestID: requestIDFrom(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func millis(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 1, 64)
}
