package audio

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
)

// At 1kHz one 10-sample chunk is 10ms, which keeps the arithmetic readable.
const testRate = 1000

func constChunks(n int, level float32) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		c := make([]float32, 10)
		for j := range c {
			c[j] = level
		}
		out[i] = c
	}
	return out
}

func feed(groups ...[][]float32) chan []float32 {
	var all [][]float32
	for _, g := range groups {
		all = append(all, g...)
	}
	ch := make(chan []float32, len(all))
	for _, c := range all {
		ch <- c
	}
	close(ch)
	return ch
}

func TestCalibrateMovesThresholdTowardNoise(t *testing.T) {
	l := NewListener(ListenOpts{SampleRate: testRate, Calibration: time.Second})
	in := feed(constChunks(100, 0.002))

	if err := l.Calibrate(context.Background(), in); err != nil {
		t.Fatalf("Calibrate: %v", err)
	}

	// Constant noise converges as target + (start-target)*0.15^seconds.
	target := 0.002 * dynamicRatio
	want := target + (initialThreshold-target)*dynamicDamping
	if math.Abs(l.Threshold()-want) > 1e-6 {
		t.Errorf("threshold = %f, want %f", l.Threshold(), want)
	}
}

func TestListenCapturesPhraseWithPreroll(t *testing.T) {
	l := NewListener(ListenOpts{
		SampleRate:     testRate,
		Calibration:    100 * time.Millisecond,
		Timeout:        5 * time.Second,
		PauseThreshold: 300 * time.Millisecond,
	})
	in := feed(
		constChunks(10, 0.001), // calibration
		constChunks(20, 0.001), // 200ms before speech
		constChunks(50, 0.5),   // 500ms of speech
		constChunks(60, 0.001), // trailing silence
	)

	ctx := context.Background()
	if err := l.Calibrate(ctx, in); err != nil {
		t.Fatal(err)
	}
	phrase, err := l.Listen(ctx, in)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}

	// 200 pre-roll + 500 speech + 310 pause (first chunk past 300ms ends it).
	if len(phrase) != 1010 {
		t.Errorf("phrase length = %d, want 1010", len(phrase))
	}
	if phrase[200] != 0.5 {
		t.Errorf("speech should start after the pre-roll, got %f", phrase[200])
	}
}

func TestListenTimesOutWithoutSpeech(t *testing.T) {
	l := NewListener(ListenOpts{SampleRate: testRate, Timeout: 200 * time.Millisecond})
	in := feed(constChunks(40, 0.001))

	_, err := l.Listen(context.Background(), in)
	if !errors.Is(err, ErrListenTimeout) {
		t.Fatalf("err = %v, want ErrListenTimeout", err)
	}
}

func TestListenIgnoresShortBlips(t *testing.T) {
	l := NewListener(ListenOpts{SampleRate: testRate, PauseThreshold: 300 * time.Millisecond})
	in := feed(constChunks(5, 0.5), constChunks(40, 0.001))

	_, err := l.Listen(context.Background(), in)
	if !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("err = %v, want ErrStreamClosed", err)
	}
}

func TestListenHonorsPhraseLimit(t *testing.T) {
	l := NewListener(ListenOpts{
		SampleRate:     testRate,
		PauseThreshold: 300 * time.Millisecond,
		PhraseLimit:    400 * time.Millisecond,
	})
	in := feed(constChunks(100, 0.5))

	phrase, err := l.Listen(context.Background(), in)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	if len(phrase) != 400 {
		t.Errorf("phrase length = %d, want 400", len(phrase))
	}
}

func TestListenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewListener(ListenOpts{SampleRate: testRate})
	_, err := l.Listen(ctx, make(chan []float32))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
