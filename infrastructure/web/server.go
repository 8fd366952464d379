// Package web serves the single page UI and the upload/download boundary.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"video-to-mp3/domain/conversion"

	"github.com/sirupsen/logrus"
)

// doneCookie tells the page script that a download response arrived.
// Its value is the query-escaped name of the delivered file.
const doneCookie = "v2m_done"

// errConversionRunning is shown while the session already has a conversion in flight
const errConversionRunning = "A conversion is already running."

// maxFieldBytes bounds non-file form fields
const maxFieldBytes = 1024

// Converter runs one conversion
type Converter interface {
	Convert(ctx context.Context, req *conversion.Request) (*conversion.AudioArtifact, error)
}

// Options configures the HTTP boundary
type Options struct {
	Address        string
	MaxUploadBytes int64
	// ReadTimeout bounds the whole request, upload body included. Zero disables it.
	ReadTimeout    time.Duration
	DefaultBitrate conversion.Bitrate
}

// Server hosts the page and the conversion endpoint
type Server struct {
	opts      Options
	converter Converter
	sessions  *SessionGuard
	log       logrus.FieldLogger
}

// New creates a Server
func New(converter Converter, opts Options, log logrus.FieldLogger) *Server {
	if !opts.DefaultBitrate.Valid() {
		opts.DefaultBitrate = conversion.DefaultBitrate
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		opts:      opts,
		converter: converter,
		sessions:  NewSessionGuard(),
		log:       log,
	}
}

// Handler returns the routed handler wrapped in request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/convert", s.handleConvert)
	mux.HandleFunc("/healthz", s.handleHealth)
	return loggingMiddleware(s.log, mux)
}

// headerTimeout bounds reading the request line and headers only
const headerTimeout = 10 * time.Second

func (s *Server) httpServer() *http.Server {
	return &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: headerTimeout,
		ReadTimeout:       s.opts.ReadTimeout,
	}
}

// Serve runs the HTTP server until ctx is cancelled
func (s *Server) Serve(ctx context.Context) error {
	httpServer := s.httpServer()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.log.WithField("address", s.opts.Address).Info("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	session := sessionID(w, r)
	notice := ""
	if s.sessions.Busy(session) {
		notice = errConversionRunning
	}
	s.renderPage(w, http.StatusOK, s.opts.DefaultBitrate, notice)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session := sessionID(w, r)
	if !s.sessions.TryAcquire(session) {
		s.renderPage(w, http.StatusConflict, s.opts.DefaultBitrate, errConversionRunning)
		return
	}
	defer s.sessions.Release(session)

	form, ferr := s.readForm(w, r)
	if ferr != nil {
		s.renderPage(w, ferr.status, s.opts.DefaultBitrate, ferr.message)
		return
	}

	bitrate, err := conversion.ParseBitrate(form.bitrate)
	if err != nil {
		s.renderPage(w, http.StatusBadRequest, s.opts.DefaultBitrate, conversion.UserMessage(err))
		return
	}

	if !form.upload.HasAllowedExtension() {
		s.renderPage(w, http.StatusBadRequest, bitrate, fmt.Sprintf("Unsupported file type %q. Allowed: mov, mp4, m4v, avi, mkv.", form.upload.Extension()))
		return
	}

	req, err := conversion.NewRequest(form.upload, bitrate)
	if err != nil {
		s.renderPage(w, http.StatusBadRequest, bitrate, conversion.UserMessage(err))
		return
	}

	artifact, err := s.converter.Convert(r.Context(), req)
	if err != nil {
		s.renderPage(w, statusFor(err), bitrate, conversion.UserMessage(err))
		return
	}

	http.SetCookie(w, &http.Cookie{Name: doneCookie, Value: url.QueryEscape(artifact.FileName), Path: "/", MaxAge: 60})
	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.FileName}))
	w.Header().Set("Content-Length", strconv.FormatInt(artifact.Size(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		s.log.WithError(err).Warn("write download response")
	}
}

// convertForm is the parsed multipart submission
type convertForm struct {
	upload  conversion.UploadedVideo
	bitrate string
}

// formError is a rejected submission with the message shown on the page
type formError struct {
	status  int
	message string
}

func (e *formError) Error() string {
	return e.message
}

func badForm(message string) *formError {
	return &formError{status: http.StatusBadRequest, message: message}
}

var errTooLarge = errors.New("upload too large")

// readForm streams the multipart body, accepting fields in any order
func (s *Server) readForm(w http.ResponseWriter, r *http.Request) (*convertForm, *formError) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+64*1024)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, badForm("Expecting a multipart form upload.")
	}

	form := &convertForm{}
	var sawFile bool
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, uploadFailure(err)
		}

		switch part.FormName() {
		case "file":
			if sawFile {
				part.Close()
				return nil, badForm("Upload exactly one file.")
			}
			sawFile = true
			content, err := readLimited(part, s.opts.MaxUploadBytes)
			if err != nil {
				part.Close()
				return nil, uploadFailure(err)
			}
			form.upload = conversion.UploadedVideo{FileName: part.FileName(), Content: content}
		case "bitrate":
			value, err := readLimited(part, maxFieldBytes)
			if err != nil {
				part.Close()
				return nil, badForm("Invalid bitrate field.")
			}
			form.bitrate = string(value)
		}
		part.Close()
	}

	if !sawFile || form.upload.FileName == "" {
		return nil, badForm("Please choose a video file to upload.")
	}
	return form, nil
}

func readLimited(part *multipart.Part, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(part, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge
	}
	return data, nil
}

func uploadFailure(err error) *formError {
	var maxErr *http.MaxBytesError
	if errors.Is(err, errTooLarge) || errors.As(err, &maxErr) {
		return &formError{status: http.StatusRequestEntityTooLarge, message: "The uploaded file is too large."}
	}
	if isTimeout(err) {
		return &formError{status: http.StatusRequestTimeout, message: "The upload took too long and was stopped. Please try again."}
	}
	return badForm("Failed to read the upload.")
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// statusFor maps a conversion failure to an HTTP status
func statusFor(err error) int {
	switch conversion.KindOf(err) {
	case conversion.KindNoAudioTrack, conversion.KindDecodeFailure:
		return http.StatusUnprocessableEntity
	case conversion.KindInvalidBitrate:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) renderPage(w http.ResponseWriter, status int, selected conversion.Bitrate, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, newPageData(selected, errMsg)); err != nil {
		s.log.WithError(err).Error("render page")
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(log logrus.FieldLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Info("request")
	})
}
