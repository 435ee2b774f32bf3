package clock_test

import (
	"testing"
	"time"

	"github.com/artpar/copydata/adapters/clock"
)

func TestReal_Now(t *testing.T) {
	before := time.Now()
	got := clock.Real{}.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Now() = %v, expected between %v and %v", got, before, after)
	}
}

func TestFake(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := clock.NewFake(start)

	if got := f.Now(); !got.Equal(start) {
		t.Errorf("Now() = %v, want %v", got, start)
	}

	f.Advance(time.Hour)
	if got := f.Now(); !got.Equal(start.Add(time.Hour)) {
		t.Errorf("after Advance Now() = %v", got)
	}

	f.Step = time.Second
	first := f.Now()
	second := f.Now()
	if second.Sub(first) != time.Second {
		t.Errorf("step = %v, want 1s", second.Sub(first))
	}
}
