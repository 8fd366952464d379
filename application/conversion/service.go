package conversion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"video-to-mp3/domain/conversion"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Service runs one upload-to-download conversion per call and removes every
// temporary resource it allocated before returning.
type Service struct {
	engine  conversion.MediaEngine
	storage conversion.TempStorage
	log     logrus.FieldLogger
	newID   func() string
	timeout time.Duration
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// WithRequestIDGenerator sets the request id generator (for testing)
func WithRequestIDGenerator(fn func() string) ServiceOption {
	return func(s *Service) {
		s.newID = fn
	}
}

// WithTimeout bounds a single conversion. Zero means no bound.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.timeout = d
	}
}

// NewService creates a new conversion Service
func NewService(engine conversion.MediaEngine, storage conversion.TempStorage, opts ...ServiceOption) *Service {
	s := &Service{
		engine:  engine,
		storage: storage,
		log:     logrus.StandardLogger(),
		newID:   uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Convert extracts the audio track of req's upload as MP3.
// Every returned error is a *conversion.Error.
func (s *Service) Convert(ctx context.Context, req *conversion.Request) (artifact *conversion.AudioArtifact, err error) {
	if req == nil {
		return nil, conversion.DecodeFailure("convert", errors.New("no upload provided"))
	}

	requestID := s.newID()
	log := s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"file":       req.Upload().FileName,
		"bitrate":    req.Bitrate().String(),
	})
	started := time.Now()

	var resources releaseList
	defer s.finish(log, started, &artifact, &err)
	defer resources.release(log)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log.Info("conversion started")
	return s.convert(ctx, req, requestID, &resources)
}

func (s *Service) convert(ctx context.Context, req *conversion.Request, requestID string, resources *releaseList) (*conversion.AudioArtifact, error) {
	upload := req.Upload()
	if len(upload.Content) == 0 {
		return nil, conversion.DecodeFailure("read upload", errors.New("uploaded file is empty"))
	}

	// Step 1: persist upload under a unique name, keeping the suffix for format sniffing
	inputPath, err := s.storage.CreateUnique(req.InputSuffix(), upload.Content)
	if err != nil {
		return nil, conversion.IOFailure("write input", err)
	}
	resources.add("input file", func() error { return s.storage.RemoveIfExists(inputPath) })

	// Output is registered before encoding so a partial file is removed too
	outputPath := s.storage.Path(requestID + "_" + req.OutputFilename())
	resources.add("output file", func() error { return s.storage.RemoveIfExists(outputPath) })

	// Step 2: open through the decoder
	source, err := s.engine.Open(ctx, inputPath)
	if err != nil {
		return nil, classify("open media", err, conversion.KindDecodeFailure)
	}
	resources.add("media source", source.Close)

	// Step 3: encode the audio stream
	if !source.HasAudio() {
		return nil, conversion.NoAudioTrack("probe media")
	}
	if err := source.EncodeMP3(ctx, req.Bitrate(), outputPath); err != nil {
		return nil, classify("encode mp3", err, conversion.KindDecodeFailure)
	}

	// Step 4: read back for delivery
	data, err := s.storage.ReadFile(outputPath)
	if err != nil {
		return nil, conversion.IOFailure("read output", err)
	}

	return &conversion.AudioArtifact{
		FileName:    req.OutputFilename(),
		ContentType: conversion.MP3ContentType,
		Data:        data,
		Bitrate:     req.Bitrate(),
	}, nil
}

// finish recovers a panic from the collaborators and logs the outcome
func (s *Service) finish(log logrus.FieldLogger, started time.Time, artifact **conversion.AudioArtifact, err *error) {
	if r := recover(); r != nil {
		*artifact = nil
		*err = conversion.DecodeFailure("convert", fmt.Errorf("unexpected fault: %v", r))
	}

	elapsed := time.Since(started)
	if *err != nil {
		log.WithError(*err).WithFields(logrus.Fields{
			"kind":     conversion.KindOf(*err).String(),
			"duration": elapsed,
		}).Warn("conversion failed")
		return
	}

	log.WithFields(logrus.Fields{
		"output":   (*artifact).FileName,
		"bytes":    (*artifact).Size(),
		"duration": elapsed,
	}).Info("conversion succeeded")
}

// classify keeps an existing conversion error and wraps anything else as fallback
func classify(op string, err error, fallback conversion.Kind) error {
	var cerr *conversion.Error
	if errors.As(err, &cerr) {
		return err
	}
	return &conversion.Error{Kind: fallback, Op: op, Err: err}
}
