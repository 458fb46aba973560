package pool

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, 1024, bb.Cap())
}

func TestByteBuffer_WriteAndReset(t *testing.T) {
	bb := NewByteBuffer(ChunkBufferDefaultSize)

	n, err := bb.Write([]byte(`{"foo":`))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, _ = bb.Write([]byte(`"bar"}`))
	assert.Equal(t, []byte(`{"foo":"bar"}`), bb.Bytes())

	originalCap := bb.Cap()
	bb.Reset()
	assert.Equal(t, 0, bb.Len())
	assert.Equal(t, originalCap, bb.Cap(), "Reset should preserve capacity")
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	_, _ = bb.Write([]byte("[1,2,3]"))

	var buf bytes.Buffer
	n, err := bb.WriteTo(&buf)

	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "[1,2,3]", buf.String())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed pipe")
}

func TestByteBuffer_WriteTo_ErrorPropagation(t *testing.T) {
	bb := NewByteBuffer(16)
	_, _ = bb.Write([]byte("data"))

	_, err := bb.WriteTo(failWriter{})
	require.ErrorContains(t, err, "closed pipe")
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("sufficient capacity", func(t *testing.T) {
		bb := NewByteBuffer(100)
		bb.Grow(50)
		assert.Equal(t, 100, bb.Cap())
	})

	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(10)
		_, _ = bb.Write([]byte("0123456789"))
		bb.Grow(1)
		assert.Equal(t, 10+ChunkBufferDefaultSize, bb.Cap())
		assert.Equal(t, []byte("0123456789"), bb.Bytes(), "Grow must preserve data")
	})

	t.Run("large buffer grows by a quarter", func(t *testing.T) {
		size := 8 * ChunkBufferDefaultSize
		bb := NewByteBuffer(size)
		bb.B = bb.B[:size]
		bb.Grow(1)
		assert.Equal(t, size+size/4, bb.Cap())
	})

	t.Run("request larger than growth step", func(t *testing.T) {
		bb := NewByteBuffer(0)
		bb.Grow(ChunkBufferDefaultSize * 2)
		assert.GreaterOrEqual(t, bb.Cap(), ChunkBufferDefaultSize*2)
	})
}

func TestChunkBuffer_GetPut(t *testing.T) {
	bb := GetChunkBuffer()
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	assert.GreaterOrEqual(t, bb.Cap(), 0)

	_, _ = bb.Write([]byte("chunk"))
	PutChunkBuffer(bb)
	PutChunkBuffer(nil)

	again := GetChunkBuffer()
	assert.Equal(t, 0, again.Len(), "pooled buffers come back empty")
	PutChunkBuffer(again)
}

func TestDocumentBuffer_GetPut(t *testing.T) {
	bb := GetDocumentBuffer()
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())

	PutDocumentBuffer(bb)
}

func TestByteBufferPool_MaxThreshold(t *testing.T) {
	p := NewByteBufferPool(16, 32)

	big := p.Get()
	big.Grow(1024)
	_, _ = big.Write(make([]byte, 100))
	p.Put(big)

	for range 10 {
		bb := p.Get()
		assert.LessOrEqual(t, bb.Cap(), 32, "oversized buffers must not be retained")
	}
}

func TestByteBufferPool_ConcurrentAccess(t *testing.T) {
	p := NewByteBufferPool(64, 0)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for range 100 {
				bb := p.Get()
				_, _ = bb.Write([]byte{byte(id)})
				assert.Equal(t, 1, bb.Len())
				p.Put(bb)
			}
		}(i)
	}
	wg.Wait()
}
