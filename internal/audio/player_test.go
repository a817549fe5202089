package audio

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestPCMToInt16ZeroFillsTail(t *testing.T) {
	out := []int16{9, 9, 9}
	pcmToInt16([]byte{0x01, 0x00, 0xff, 0xff}, out)

	want := []int16{1, -1, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}

func TestPumpWritesEveryBuffer(t *testing.T) {
	// 5 samples with a 2-sample buffer: two full writes and one padded.
	src := bytes.NewReader([]byte{1, 0, 2, 0, 3, 0, 4, 0, 5, 0})
	out := make([]int16, 2)

	var got [][]int16
	err := pump(context.Background(), src, out, func() error {
		got = append(got, append([]int16(nil), out...))
		return nil
	})
	if err != nil {
		t.Fatalf("pump: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("writes = %d, want 3", len(got))
	}
	if got[2][0] != 5 || got[2][1] != 0 {
		t.Errorf("last buffer = %v, want [5 0]", got[2])
	}
}

func TestPumpStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := pump(ctx, bytes.NewReader(make([]byte, 64)), make([]int16, 2), func() error {
		t.Fatal("write after cancel")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
