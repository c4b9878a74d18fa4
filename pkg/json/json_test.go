package json

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

func TestEncoderDoesNotEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(&buf).Encode(doc{Name: "a&b", URI: "http://x/?a=1&b=<2>"}))
	assert.Equal(t, "{\"name\":\"a&b\",\"uri\":\"http://x/?a=1&b=<2>\"}\n", buf.String())
}

func TestMarshalUnmarshal(t *testing.T) {
	data, err := Marshal(doc{Name: "n"})
	require.NoError(t, err)
	assert.True(t, Valid(data))

	var out doc
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, "n", out.Name)

	assert.False(t, Valid([]byte("{")))
}

func TestBufferPool(t *testing.T) {
	buf := GetBuffer()
	buf.WriteString("leftover")
	PutBuffer(buf)

	again := GetBuffer()
	assert.Equal(t, 0, again.Len())
	PutBuffer(again)
}
