package audio

import (
	"context"
	"errors"
	"math"
	"time"
)

// Energy detection parameters. Levels are RMS over float samples in [-1, 1].
const (
	initialThreshold  = 300.0 / 32768.0
	dynamicDamping    = 0.15 // fraction of the old threshold kept after one second
	dynamicRatio      = 1.5  // speech must be this much louder than ambient noise
	nonSpeakingPeriod = 500 * time.Millisecond
	minPhrase         = 300 * time.Millisecond
)

var (
	// ErrListenTimeout means no speech started before the listen timeout.
	ErrListenTimeout = errors.New("listening timed out while waiting for phrase to start")
	// ErrStreamClosed means the capture stream ended before any speech.
	ErrStreamClosed = errors.New("audio stream closed")
)

// ListenOpts configures speech detection.
type ListenOpts struct {
	SampleRate     int
	Calibration    time.Duration // ambient noise window
	Timeout        time.Duration // max wait for speech to start, 0 waits forever
	PauseThreshold time.Duration // silence that ends a phrase
	PhraseLimit    time.Duration // 0 means unlimited
}

// Listener detects a spoken phrase in a stream of mono chunks using an
// energy threshold that adapts to the ambient noise level.
type Listener struct {
	opts      ListenOpts
	threshold float64
}

func NewListener(opts ListenOpts) *Listener {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 16000
	}
	if opts.PauseThreshold <= 0 {
		opts.PauseThreshold = 800 * time.Millisecond
	}
	return &Listener{opts: opts, threshold: initialThreshold}
}

// Threshold returns the current energy threshold.
func (l *Listener) Threshold() float64 { return l.threshold }

func (l *Listener) samples(d time.Duration) int {
	return int(d.Seconds() * float64(l.opts.SampleRate))
}

// Calibrate consumes the ambient-noise window and moves the threshold
// toward the observed noise level.
func (l *Listener) Calibrate(ctx context.Context, in <-chan []float32) error {
	limit := l.samples(l.opts.Calibration)
	consumed := 0
	for consumed < limit {
		chunk, err := next(ctx, in, nil)
		if err != nil {
			return err
		}
		consumed += len(chunk)
		if consumed > limit {
			break
		}
		l.adjust(chunk)
	}
	return nil
}

func (l *Listener) adjust(chunk []float32) {
	secs := float64(len(chunk)) / float64(l.opts.SampleRate)
	damping := math.Pow(dynamicDamping, secs)
	target := rms(chunk) * dynamicRatio
	l.threshold = l.threshold*damping + target*(1-damping)
}

// Listen waits for speech and returns the phrase, including up to half a
// second of audio before it started. It returns ErrListenTimeout if no
// phrase starts within the timeout.
func (l *Listener) Listen(ctx context.Context, in <-chan []float32) ([]float32, error) {
	var timeout <-chan time.Time
	if l.opts.Timeout > 0 {
		timer := time.NewTimer(l.opts.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	timeoutSamples := l.samples(l.opts.Timeout)
	prerollMax := l.samples(nonSpeakingPeriod)
	pauseMax := l.samples(l.opts.PauseThreshold)
	phraseMax := l.samples(l.opts.PhraseLimit)
	phraseMin := l.samples(minPhrase)

	waited := 0
	var preroll [][]float32
	prerollLen := 0

	for {
		// Wait for the first chunk above the threshold.
		var first []float32
		for first == nil {
			chunk, err := next(ctx, in, timeout)
			if err != nil {
				return nil, err
			}
			waited += len(chunk)
			if timeoutSamples > 0 && waited > timeoutSamples {
				return nil, ErrListenTimeout
			}
			if rms(chunk) > l.threshold {
				first = chunk
				break
			}
			l.adjust(chunk)
			preroll = append(preroll, chunk)
			prerollLen += len(chunk)
			for len(preroll) > 1 && prerollLen-len(preroll[0]) >= prerollMax {
				prerollLen -= len(preroll[0])
				preroll = preroll[1:]
			}
		}

		phrase := make([]float32, 0, prerollLen+len(first)*16)
		for _, c := range preroll {
			phrase = append(phrase, c...)
		}
		phrase = append(phrase, first...)
		spoken, pause := len(first), 0

		// Record until a long enough pause or the phrase limit.
		for {
			chunk, err := next(ctx, in, nil)
			if errors.Is(err, ErrStreamClosed) {
				break
			}
			if err != nil {
				return nil, err
			}
			phrase = append(phrase, chunk...)
			spoken += len(chunk)
			if rms(chunk) > l.threshold {
				pause = 0
			} else {
				pause += len(chunk)
			}
			if pause > pauseMax {
				break
			}
			if phraseMax > 0 && spoken >= phraseMax {
				break
			}
		}

		if spoken-pause >= phraseMin {
			// Keep at most the non-speaking period of trailing silence.
			if extra := pause - prerollMax; extra > 0 {
				phrase = phrase[:len(phrase)-extra]
			}
			return phrase, nil
		}

		// Too short to be speech; keep waiting.
		waited += spoken - len(first)
		preroll, prerollLen = nil, 0
	}
}

func next(ctx context.Context, in <-chan []float32, timeout <-chan time.Time) ([]float32, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, ErrListenTimeout
	case chunk, ok := <-in:
		if !ok {
			return nil, ErrStreamClosed
		}
		return chunk, nil
	}
}

func rms(chunk []float32) float64 {
	if len(chunk) == 0 {
		return 0
	}
	var sum float64
	for _, s := range chunk {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(chunk)))
}
