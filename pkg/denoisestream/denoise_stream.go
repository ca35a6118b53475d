// Package denoisestream wraps a Processor into an io.Reader: raw S16LE PCM
// read from the input appears on the other side denoised, chunked internally
// at the model's frame granularity.
package denoisestream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/iamcalledrob/circular"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/pcmdenoise/pkg/processor"
)

const (
	debugBypassDenoising = false
)

type DenoiseStream struct {
	Processor          *processor.Processor
	Config             processor.Config
	chunkSize          int
	inputBufferLocker  sync.Mutex
	inputBuffer        *circular.Buffer
	outputBufferLocker sync.Mutex
	outputBuffer       *circular.Buffer
	resultError        error
	readCtx            context.Context

	readProgressedCh          chan struct{}
	denoiseInputProgressedCh  chan struct{}
	denoiseOutputProgressedCh chan struct{}
	outputProgressedCh        chan struct{}
}

var _ io.Reader = (*DenoiseStream)(nil)

func NewDenoiseStream(
	ctx context.Context,
	input io.Reader,
	proc *processor.Processor,
	cfg processor.Config,
	inputBufferSize uint,
	outputBufferSize uint,
) (*DenoiseStream, error) {
	if cfg.Channels <= 0 {
		return nil, fmt.Errorf("%w: got %d", processor.ErrInvalidChannelCount, cfg.Channels)
	}
	frameSize, err := proc.FrameSize()
	if err != nil {
		return nil, fmt.Errorf("unable to get the frame size of the processor: %w", err)
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	s := &DenoiseStream{
		Processor:    proc,
		Config:       cfg,
		chunkSize:    frameSize * int(cfg.Channels) * 2,
		inputBuffer:  circular.NewBuffer(int(inputBufferSize)),
		outputBuffer: circular.NewBuffer(int(outputBufferSize)),
		readCtx:      ctx,

		readProgressedCh:          make(chan struct{}),
		denoiseInputProgressedCh:  make(chan struct{}),
		denoiseOutputProgressedCh: make(chan struct{}),
		outputProgressedCh:        make(chan struct{}),
	}
	observability.Go(ctx, func(ctx context.Context) {
		defer cancelFunc()
		err := s.readerLoop(ctx, input)
		s.inputBufferLocker.Lock()
		defer s.inputBufferLocker.Unlock()
		if err != nil && s.resultError == nil {
			s.resultError = fmt.Errorf("got an error from the reader loop: %w", err)
		}
	})
	observability.Go(ctx, func(ctx context.Context) {
		defer cancelFunc()
		err := s.denoiseLoop(ctx)
		s.inputBufferLocker.Lock()
		defer s.inputBufferLocker.Unlock()
		if err != nil && s.resultError == nil {
			s.resultError = fmt.Errorf("got an error from the denoiser loop: %w", err)
		}
	})
	return s, nil
}

func (s *DenoiseStream) readerLoop(
	ctx context.Context,
	input io.Reader,
) (_err error) {
	logger.Tracef(ctx, "readerLoop")
	defer func() { logger.Tracef(ctx, "/readerLoop %v", _err) }()

	readBuf := make([]byte, 65536)
	shortestMessageSize := 2 * int(s.Config.Channels)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		logger.Tracef(ctx, "readerLoop: Read()")
		n, err := input.Read(readBuf)
		logger.Tracef(ctx, "/readerLoop: Read(): %v %v", n, err)
		if err != nil {
			return fmt.Errorf("unable to read the backend: %w", err)
		}
		if n < 0 {
			return fmt.Errorf("received invalid value of received bytes: %d", n)
		}
		if n%shortestMessageSize != 0 {
			return fmt.Errorf("received a message of size %d that is not a multiple of 2*%d", n, int(s.Config.Channels))
		}

		if err := func() error {
			s.inputBufferLocker.Lock()
			defer s.inputBufferLocker.Unlock()
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				w, err := s.inputBuffer.Write(readBuf[:n])
				if err != nil {
					if errors.Is(err, circular.ErrNoSpace) {
						s.waitForDenoiseInputProgressed(ctx)
						continue
					}
					return fmt.Errorf("unable to write to the circular buffer: %w", err)
				}
				if w != n {
					return fmt.Errorf("wrote != read: %d != %d", w, n)
				}
				break
			}
			logger.Tracef(ctx, "closing readProgressedCh")
			oldCh := s.readProgressedCh
			s.readProgressedCh = make(chan struct{})
			close(oldCh)
			return nil
		}(); err != nil {
			return err
		}
	}
}

func (s *DenoiseStream) waitForDenoiseInputProgressed(ctx context.Context) {
	logger.Tracef(ctx, "waitForDenoiseInputProgressed")
	defer logger.Tracef(ctx, "/waitForDenoiseInputProgressed")

	ch := s.denoiseInputProgressedCh
	s.inputBufferLocker.Unlock()
	defer s.inputBufferLocker.Lock()
	select {
	case <-ctx.Done():
	case <-ch:
		logger.Tracef(ctx, "waitForDenoiseInputProgressed: received an event")
	}
}

func (s *DenoiseStream) denoiseLoop(ctx context.Context) (_err error) {
	logger.Tracef(ctx, "denoiseLoop")
	defer func() { logger.Tracef(ctx, "/denoiseLoop: %v", _err) }()

	chunkSize := s.chunkSize
	logger.Debugf(ctx, "chunkSize: %d", chunkSize)

	chunkBuf := make([]byte, chunkSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		receivedCount := 0
		for {
			var waitCh chan struct{}
			if err := func() error {
				var oldCh chan struct{}
				s.inputBufferLocker.Lock()
				defer s.inputBufferLocker.Unlock()
				n, err := s.inputBuffer.Read(chunkBuf[receivedCount:])
				waitCh = s.readProgressedCh
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("unable to read from the circular buffer: %w", err)
				}
				if n < 0 {
					return fmt.Errorf("received a negative count: %d", n)
				}
				receivedCount += n
				logger.Tracef(ctx, "closing denoiseInputProgressedCh")
				oldCh, s.denoiseInputProgressedCh = s.denoiseInputProgressedCh, make(chan struct{})
				close(oldCh)
				return nil
			}(); err != nil {
				return err
			}
			if receivedCount >= chunkSize {
				break
			}
			select {
			case <-ctx.Done():
			case <-waitCh:
				logger.Tracef(ctx, "denoiseLoop: received a read event")
			}
		}

		if !debugBypassDenoising {
			logger.Tracef(ctx, "s.Processor.ProcessBytes")
			err := s.Processor.ProcessBytes(ctx, chunkBuf, s.Config)
			logger.Tracef(ctx, "/s.Processor.ProcessBytes: %v", err)
			if err != nil {
				return fmt.Errorf("unable to denoise: %w", err)
			}
		}

		if err := func() error {
			logger.Tracef(ctx, "s.outputBufferLocker.Lock()")
			s.outputBufferLocker.Lock()
			defer s.outputBufferLocker.Unlock()
			logger.Tracef(ctx, "/s.outputBufferLocker.Lock()")

			w, err := s.outputBuffer.Write(chunkBuf)
			if err != nil {
				if errors.Is(err, circular.ErrNoSpace) {
					s.waitForOutput(ctx)
					return nil
				}
				return fmt.Errorf("unable to write to the circular buffer: %w", err)
			}
			if w != len(chunkBuf) {
				return fmt.Errorf("wrote != read: %d != %d", w, len(chunkBuf))
			}
			logger.Tracef(ctx, "closing denoiseOutputProgressedCh")
			var oldCh chan struct{}
			oldCh, s.denoiseOutputProgressedCh = s.denoiseOutputProgressedCh, make(chan struct{})
			close(oldCh)
			return nil
		}(); err != nil {
			return err
		}
	}
}

func (s *DenoiseStream) waitForOutput(ctx context.Context) {
	logger.Tracef(ctx, "waitForOutput")
	defer logger.Tracef(ctx, "/waitForOutput")

	ch := s.outputProgressedCh
	s.outputBufferLocker.Unlock()
	defer s.outputBufferLocker.Lock()
	select {
	case <-ctx.Done():
	case <-ch:
		logger.Tracef(ctx, "waitForOutput: received an event")
	}
}

func (s *DenoiseStream) Read(pcm []byte) (_ret int, _err error) {
	logger.Tracef(s.readCtx, "Read, len:%d", len(pcm))
	defer func() { logger.Tracef(s.readCtx, "/Read, len:%d: %d, %v", len(pcm), _ret, _err) }()

	s.outputBufferLocker.Lock()
	defer s.outputBufferLocker.Unlock()
	if s.resultError != nil {
		return 0, s.resultError
	}

	for {
		logger.Tracef(s.readCtx, "Read: s.outputBuffer.Read()")
		n, err := s.outputBuffer.Read(pcm)
		logger.Tracef(s.readCtx, "/Read: s.outputBuffer.Read(): %v %v", n, err)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, io.EOF) {
			return n, err
		}
		s.waitForDenoiseOutputProgressed(s.readCtx)
	}
}

func (s *DenoiseStream) waitForDenoiseOutputProgressed(ctx context.Context) {
	logger.Tracef(ctx, "waitForDenoiseOutputProgressed")
	defer logger.Tracef(ctx, "/waitForDenoiseOutputProgressed")

	ch := s.denoiseOutputProgressedCh
	s.outputBufferLocker.Unlock()
	defer s.outputBufferLocker.Lock()
	select {
	case <-ctx.Done():
	case <-ch:
		logger.Tracef(ctx, "waitForDenoiseOutputProgressed: received an event")
	}
}
