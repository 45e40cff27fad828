package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkedCookieStore_RoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "empty string", value: ""},
		{name: "short ascii", value: "hello"},
		{name: "exactly one chunk", value: strings.Repeat("a", DefaultChunkSize)},
		{name: "one byte over a chunk", value: strings.Repeat("a", DefaultChunkSize+1)},
		{name: "several chunks", value: strings.Repeat("x", 3*DefaultChunkSize+17)},
		{name: "maximum size", value: strings.Repeat("z", DefaultMaxChunks*DefaultChunkSize)},
		{name: "unicode expanding under percent-encoding", value: strings.Repeat("日本語テキスト🎉", 300)},
		{name: "unicode split mid-rune at chunk boundary", value: "a" + strings.Repeat("é", DefaultChunkSize)},
		{name: "json-ish session blob", value: `{"access_token":"eyJ...","refresh_token":"v1:...","expires_at":1772534400,"user":{"id":"u-1","email":"a@b.c"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jar := NewMemoryJar()
			store := NewChunkedCookieStore(jar, ChunkConfig{Domain: "modhub.io"})

			store.Write("mh_session", tt.value)
			got, ok := store.Read("mh_session")

			require.True(t, ok, "value should be present after write")
			assert.Equal(t, tt.value, got, "value must round-trip byte-for-byte")
		})
	}
}

func TestChunkedCookieStore_ShorterRewriteLeavesNoStaleTail(t *testing.T) {
	jar := NewMemoryJar()
	store := NewChunkedCookieStore(jar, ChunkConfig{})

	long := strings.Repeat("a", 4*DefaultChunkSize)
	short := strings.Repeat("b", DefaultChunkSize/2)

	store.Write("mh_session", long)
	require.Equal(t, 4, jar.Len())

	store.Write("mh_session", short)
	assert.Equal(t, 1, jar.Len(), "old trailing chunks must be cleared")

	got, ok := store.Read("mh_session")
	require.True(t, ok)
	assert.Equal(t, short, got)
}

func TestChunkedCookieStore_NeverWrittenReadsAbsent(t *testing.T) {
	store := NewChunkedCookieStore(NewMemoryJar(), ChunkConfig{})

	got, ok := store.Read("mh_session")
	assert.False(t, ok, "never-written key must read as absent, not empty")
	assert.Equal(t, "", got)
}

func TestChunkedCookieStore_EmptyWriteIsPresent(t *testing.T) {
	store := NewChunkedCookieStore(NewMemoryJar(), ChunkConfig{})

	store.Write("mh_session", "")
	got, ok := store.Read("mh_session")
	assert.True(t, ok, "an explicitly written empty string is present")
	assert.Equal(t, "", got)
}

func TestChunkedCookieStore_GapStopsReassembly(t *testing.T) {
	jar := NewMemoryJar()
	store := NewChunkedCookieStore(jar, ChunkConfig{})

	value := strings.Repeat("a", DefaultChunkSize) +
		strings.Repeat("b", DefaultChunkSize) +
		strings.Repeat("c", DefaultChunkSize) +
		strings.Repeat("d", DefaultChunkSize)
	store.Write("mh_session", value)

	// Simulate a proxy or extension dropping chunk 2 of 4.
	jar.Delete("mh_session_2")

	got, ok := store.Read("mh_session")
	require.True(t, ok)
	want := strings.Repeat("a", DefaultChunkSize) + strings.Repeat("b", DefaultChunkSize)
	assert.Equal(t, want, got, "reassembly must stop at the first gap, never reconstruct past it")
}

func TestChunkedCookieStore_MissingFirstChunkReadsAbsent(t *testing.T) {
	jar := NewMemoryJar()
	store := NewChunkedCookieStore(jar, ChunkConfig{})

	store.Write("mh_session", strings.Repeat("a", 2*DefaultChunkSize))
	jar.Delete("mh_session_0")

	_, ok := store.Read("mh_session")
	assert.False(t, ok, "missing chunk 0 means absent")
}

func TestChunkedCookieStore_CorruptChunkReadsAbsent(t *testing.T) {
	jar := NewMemoryJar()
	store := NewChunkedCookieStore(jar, ChunkConfig{})

	store.Write("mh_session", "some session value")
	jar.cookies["mh_session_0"] = "%zz-not-percent-encoding"

	_, ok := store.Read("mh_session")
	assert.False(t, ok, "a mangled chunk must read as absent, not as garbage")
}

func TestChunkedCookieStore_OverBudgetWriteDropsCleanly(t *testing.T) {
	jar := NewMemoryJar()
	store := NewChunkedCookieStore(jar, ChunkConfig{})

	store.Write("mh_session", "previous value")
	store.Write("mh_session", strings.Repeat("a", DefaultMaxChunks*DefaultChunkSize+1))

	_, ok := store.Read("mh_session")
	assert.False(t, ok, "an over-budget write leaves the key absent, not stale or truncated")
	assert.Equal(t, 0, jar.Len())
}

func TestChunkedCookieStore_OversizedEncodedChunkSkipped(t *testing.T) {
	jar := NewMemoryJar()
	// A tight per-cookie cap with a chunk size that leaves no encoding
	// headroom: multi-byte input expands 3x and blows the cap.
	store := NewChunkedCookieStore(jar, ChunkConfig{
		ChunkSize:       100,
		CookieByteLimit: 150,
	})

	store.Write("mh_session", strings.Repeat("é", 100))
	assert.Equal(t, 0, jar.Len(), "a slice that cannot fit once encoded is skipped, not truncated")
}

func TestChunkedCookieStore_ClearIsBounded(t *testing.T) {
	jar := NewMemoryJar()
	store := NewChunkedCookieStore(jar, ChunkConfig{MaxChunks: 4})

	store.Write("mh_session", strings.Repeat("a", 3*DefaultChunkSize))
	require.Equal(t, 3, jar.Len())

	store.Clear("mh_session")
	assert.Equal(t, 0, jar.Len())

	_, ok := store.Read("mh_session")
	assert.False(t, ok)
}

func TestChunkedCookieStore_NilJarDegrades(t *testing.T) {
	store := NewChunkedCookieStore(nil, ChunkConfig{})

	store.Write("mh_session", "value")
	store.Clear("mh_session")
	_, ok := store.Read("mh_session")
	assert.False(t, ok)
}

func TestChunkedCookieStore_ConfigurableLimits(t *testing.T) {
	jar := NewMemoryJar()
	store := NewChunkedCookieStore(jar, ChunkConfig{ChunkSize: 8, MaxChunks: 3})

	// 3 chunks of 8 bytes is the ceiling for this config.
	fits := strings.Repeat("a", 24)
	store.Write("k", fits)
	got, ok := store.Read("k")
	require.True(t, ok)
	assert.Equal(t, fits, got)

	store.Write("k", strings.Repeat("a", 25))
	_, ok = store.Read("k")
	assert.False(t, ok, "values beyond the configured budget are dropped")
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name string
		in   string
		size int
		want []string
	}{
		{name: "empty", in: "", size: 4, want: []string{""}},
		{name: "under one chunk", in: "abc", size: 4, want: []string{"abc"}},
		{name: "exact", in: "abcd", size: 4, want: []string{"abcd"}},
		{name: "split", in: "abcdefgh", size: 3, want: []string{"abc", "def", "gh"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitChunks(tt.in, tt.size))
		})
	}
}
