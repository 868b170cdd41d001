package autoinput

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	got      []string
	inFlight atomic.Int32
	overlap  atomic.Bool
	failOn   map[string]error
}

func (r *recorder) Emit(text string) error {
	if r.inFlight.Add(1) > 1 {
		r.overlap.Store(true)
	}
	defer r.inFlight.Add(-1)
	time.Sleep(time.Millisecond)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, text)
	return r.failOn[text]
}

func (r *recorder) emitted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

func drain(t *testing.T, s *Streamer) {
	t.Helper()
	s.Close()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func sendAll(t *testing.T, s *Streamer, values ...string) {
	t.Helper()
	for _, v := range values {
		require.NoError(t, s.Send(v))
	}
}

func TestDiff(t *testing.T) {
	cases := []struct {
		prev, next  string
		delta       string
		incremental bool
	}{
		{"", "Hi", "Hi", true},
		{"Hi", "Hi there", " there", true},
		{"Hi there", "Hi there", "", true},
		{"Hi there", "Bye", "Bye", false},
		{"Hi there", "Hi", "Hi", false},
		{"héllo", "héllo wörld", " wörld", true},
	}
	for _, tc := range cases {
		delta, inc := Diff(tc.prev, tc.next)
		assert.Equal(t, tc.delta, delta, "%q -> %q", tc.prev, tc.next)
		assert.Equal(t, tc.incremental, inc, "%q -> %q", tc.prev, tc.next)
	}
}

func TestIncrementalStream(t *testing.T) {
	r := &recorder{}
	s := New(r, 0)
	sendAll(t, s, "Hi", "Hi there", "Hi there!")
	drain(t, s)

	assert.Equal(t, []string{"Hi", " there", "!"}, r.emitted())
}

func TestResetStream(t *testing.T) {
	r := &recorder{}
	s := New(r, 0)
	sendAll(t, s, "Hi there", "Bye")
	drain(t, s)

	assert.Equal(t, []string{"Hi there", "Bye"}, r.emitted())
}

func TestPrefixChainConcatenatesToFinalValue(t *testing.T) {
	r := &recorder{}
	s := New(r, 0)

	var values []string
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "tok%d ", i)
		values = append(values, b.String())
	}
	sendAll(t, s, values...)
	drain(t, s)

	assert.Equal(t, values[len(values)-1], strings.Join(r.emitted(), ""))
}

func TestDiffIsAgainstLatestValue(t *testing.T) {
	r := &recorder{}
	s := New(r, 0)
	sendAll(t, s, "abc", "xyz", "xyz1", "abc2")
	drain(t, s)

	assert.Equal(t, []string{"abc", "xyz", "1", "abc2"}, r.emitted())
}

func TestDuplicateValueEmitsNothing(t *testing.T) {
	r := &recorder{}
	s := New(r, 0)
	sendAll(t, s, "same", "same", "same!")
	drain(t, s)

	assert.Equal(t, []string{"same", "!"}, r.emitted())
}

func TestEmitFailureDoesNotStopWorker(t *testing.T) {
	r := &recorder{failOn: map[string]error{" there": errors.New("denied")}}
	s := New(r, 0)
	sendAll(t, s, "Hi", "Hi there", "Hi there!")
	drain(t, s)

	assert.Equal(t, []string{"Hi", " there", "!"}, r.emitted())
}

func TestLazyStartAndClose(t *testing.T) {
	s := New(&recorder{}, 0)
	assert.False(t, s.Started())

	require.NoError(t, s.Send("x"))
	assert.True(t, s.Started())

	drain(t, s)
	assert.ErrorIs(t, s.Send("y"), ErrClosed)
	s.Close()
}

func TestCloseBeforeStart(t *testing.T) {
	s := New(&recorder{}, 0)
	drain(t, s)
	assert.False(t, s.Started())
	assert.ErrorIs(t, s.Send("x"), ErrClosed)
}

func TestConcurrentProducersNeverOverlap(t *testing.T) {
	r := &recorder{}
	s := New(r, 0)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_ = s.Send(fmt.Sprintf("p%d-%d", p, i))
			}
		}(p)
	}
	wg.Wait()
	drain(t, s)

	assert.False(t, r.overlap.Load(), "two emissions ran at once")

	// Each producer's values are distinct strings that are never prefixes of
	// one another, so every value is a reset and emitted whole, in order.
	got := r.emitted()
	require.Len(t, got, 40)
	for p := 0; p < 4; p++ {
		prefix := fmt.Sprintf("p%d-", p)
		var seq []string
		for _, v := range got {
			if strings.HasPrefix(v, prefix) {
				seq = append(seq, v)
			}
		}
		want := make([]string, 10)
		for i := range want {
			want[i] = fmt.Sprintf("p%d-%d", p, i)
		}
		assert.Equal(t, want, seq)
	}
}

func TestSettleDelayBeforeEachEmission(t *testing.T) {
	r := &recorder{}
	s := New(r, 20*time.Millisecond)
	start := time.Now()
	sendAll(t, s, "a", "ab", "xyz")
	drain(t, s)

	assert.Len(t, r.emitted(), 3)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestEmitterFunc(t *testing.T) {
	var got string
	s := New(EmitterFunc(func(text string) error {
		got += text
		return nil
	}), 0)
	sendAll(t, s, "a", "ab")
	drain(t, s)
	assert.Equal(t, "ab", got)
}
