package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"music-board/internal/music/parsers/ffmpeg"
)

// Session plays one decoded stream. It implements player.OutputSession.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	pcm    io.ReadCloser
	send   func(frame []int16) error
	speak  func(on bool)
	log    *log.Logger

	factor atomic.Uint64 // math.Float64bits of the sample multiplier

	mu      sync.Mutex
	resumed chan struct{} // non-nil while paused
	ended   atomic.Bool

	done chan error
}

func newSession(ctx context.Context, cancel context.CancelFunc, pcm io.ReadCloser, send func([]int16) error, speak func(bool), logger *log.Logger) *Session {
	s := &Session{
		ctx:    ctx,
		cancel: cancel,
		pcm:    pcm,
		send:   send,
		speak:  speak,
		log:    logger,
		done:   make(chan error, 1),
	}
	s.factor.Store(math.Float64bits(1))
	return s
}

func (s *Session) Done() <-chan error { return s.done }

// SetVolumeLogarithmic sets the gain on a perceptual scale: 1 is unchanged.
func (s *Session) SetVolumeLogarithmic(gain float64) {
	s.factor.Store(math.Float64bits(LogarithmicFactor(gain)))
}

func (s *Session) Pause() {
	s.mu.Lock()
	if s.resumed == nil {
		s.resumed = make(chan struct{})
	}
	s.mu.Unlock()
}

func (s *Session) Resume() {
	s.mu.Lock()
	if s.resumed != nil {
		close(s.resumed)
		s.resumed = nil
	}
	s.mu.Unlock()
}

func (s *Session) End() {
	s.ended.Store(true)
	s.cancel()
}

func (s *Session) run() {
	s.done <- s.loop()
}

func (s *Session) loop() error {
	defer s.pcm.Close()
	defer s.cancel()

	s.speak(true)
	defer s.speak(false)

	frame := make([]int16, ffmpeg.FrameSize*ffmpeg.Channels)
	for {
		if !s.waitResumed() {
			return nil
		}

		err := binary.Read(s.pcm, binary.LittleEndian, frame)
		if s.ended.Load() {
			return nil
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return err
		}

		applyGain(frame, math.Float64frombits(s.factor.Load()))
		if err := s.send(frame); err != nil {
			return err
		}
		if s.ended.Load() {
			return nil
		}
	}
}

// waitResumed blocks while paused. It reports false once the session ended.
func (s *Session) waitResumed() bool {
	s.mu.Lock()
	ch := s.resumed
	s.mu.Unlock()
	if ch == nil {
		return true
	}

	s.speak(false)
	select {
	case <-ch:
		s.speak(true)
		return true
	case <-s.ctx.Done():
		return false
	}
}
