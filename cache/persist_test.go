package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawCopy(data []byte) (json.RawMessage, error) {
	out := make(json.RawMessage, len(data))
	copy(out, data)
	return out, nil
}

func TestSaveRestore_RoundTrip(t *testing.T) {
	src, err := New[json.RawMessage](testCategory(t, "berry"), 4)
	require.NoError(t, err)
	src.Put(berryRoute("cheri"), json.RawMessage(`{"name":"cheri","flavor":"チェリ","id":1}`))

	var buf bytes.Buffer
	require.NoError(t, src.Save(&buf))

	out := buf.String()
	assert.True(t, strings.Contains(out, "\n    \""), "expected 4-space indentation:\n%s", out)
	assert.Contains(t, out, "チェリ", "non-ASCII must be written literally")
	assert.Contains(t, out, `"/berry/cheri"`, "entries are keyed by route path")

	dst, err := New[json.RawMessage](testCategory(t, "berry"), 4)
	require.NoError(t, err)
	require.NoError(t, dst.Restore(&buf, rawCopy))

	v, ok := dst.Get(berryRoute("cheri"))
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"cheri","flavor":"チェリ","id":1}`, string(v))
}

func TestRestore_GrowsCapacityToFit(t *testing.T) {
	src, err := New[json.RawMessage](testCategory(t, "berry"), 5)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		src.Put(berryRoute(fmt.Sprintf("k%d", i)), json.RawMessage(`{}`))
	}

	var buf bytes.Buffer
	require.NoError(t, src.Save(&buf))

	dst, err := New[json.RawMessage](testCategory(t, "berry"), 1)
	require.NoError(t, err)
	require.NoError(t, dst.Restore(&buf, rawCopy))

	assert.Equal(t, 5, dst.Len())
	assert.Equal(t, 5, dst.Cap())
}

func TestRestore_ExistingEntriesWin(t *testing.T) {
	src, err := New[json.RawMessage](testCategory(t, "berry"), 4)
	require.NoError(t, err)
	src.Put(berryRoute("cheri"), json.RawMessage(`{"stale":true}`))

	var buf bytes.Buffer
	require.NoError(t, src.Save(&buf))

	dst, err := New[json.RawMessage](testCategory(t, "berry"), 4)
	require.NoError(t, err)
	dst.Put(berryRoute("cheri"), json.RawMessage(`{"live":true}`))
	require.NoError(t, dst.Restore(&buf, rawCopy))

	v, ok := dst.Get(berryRoute("cheri"))
	require.True(t, ok)
	assert.JSONEq(t, `{"live":true}`, string(v))
	assert.Equal(t, 1, dst.Len())
}

func TestRestore_NilDecode(t *testing.T) {
	c, err := New[json.RawMessage](testCategory(t, "berry"), 4)
	require.NoError(t, err)
	assert.ErrorIs(t, c.Restore(strings.NewReader(`{}`), nil), ErrNilDecode)
}

func TestRestore_DecodeErrorPropagates(t *testing.T) {
	c, err := New[json.RawMessage](testCategory(t, "berry"), 4)
	require.NoError(t, err)
	boom := fmt.Errorf("boom")
	err = c.Restore(strings.NewReader(`{"/berry/cheri": {}}`), func([]byte) (json.RawMessage, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())
}

func TestRestore_MalformedDocument(t *testing.T) {
	c, err := New[json.RawMessage](testCategory(t, "berry"), 4)
	require.NoError(t, err)
	assert.Error(t, c.Restore(strings.NewReader(`[1,2,3]`), rawCopy))
}
