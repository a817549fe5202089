package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/hajimehoshi/go-mp3"
	"github.com/rs/zerolog"
)

// go-mp3 always decodes to 16-bit little-endian stereo.
const (
	outChannels = 2
	outFrames   = 1024
)

type mp3Player struct {
	log zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPlayer creates an MP3 player on the default output device.
func NewPlayer(log zerolog.Logger) (Player, error) {
	if err := initPortAudio(); err != nil {
		return nil, err
	}
	return &mp3Player{log: log}, nil
}

func (p *mp3Player) Play(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode %s: %w", path, err)
	}

	out := make([]int16, outFrames*outChannels)
	stream, err := portaudio.OpenDefaultStream(0, outChannels, float64(dec.SampleRate()), outFrames, out)
	if err != nil {
		f.Close()
		return fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		f.Close()
		return fmt.Errorf("start output stream: %w", err)
	}

	p.Stop()

	playCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.mu.Lock()
	p.cancel, p.done = cancel, done
	p.mu.Unlock()

	go func() {
		defer close(done)
		defer f.Close()
		defer stream.Close()
		defer stream.Stop()

		if err := pump(playCtx, dec, out, stream.Write); err != nil {
			p.log.Warn().Err(err).Str("path", path).Msg("Playback stopped")
			return
		}
		p.log.Debug().Str("path", path).Msg("Playback finished")
	}()

	return nil
}

// pump decodes PCM into out and hands each full buffer to write until the
// source is exhausted or ctx is done.
func pump(ctx context.Context, src io.Reader, out []int16, write func() error) error {
	raw := make([]byte, len(out)*2)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := io.ReadFull(src, raw)
		if n > 0 {
			pcmToInt16(raw[:n], out)
			if werr := write(); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// pcmToInt16 converts little-endian 16-bit PCM into out, zero-filling the
// tail when raw is short.
func pcmToInt16(raw []byte, out []int16) {
	i := 0
	for ; i < len(out) && 2*i+1 < len(raw); i++ {
		out[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	for ; i < len(out); i++ {
		out[i] = 0
	}
}

func (p *mp3Player) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *mp3Player) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}

func (p *mp3Player) Close() error {
	p.Stop()
	terminatePortAudio()
	return nil
}
