package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum64(t *testing.T) {
	tests := []struct {
		name string
		data string
		sum  uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sum, Sum64([]byte(tt.data)))
		})
	}
}

func TestDigest_ChunkedMatchesWhole(t *testing.T) {
	doc := []byte(`{"foo":"bar","baz":[1,2,3],"qux":null}`)

	for _, size := range []int{1, 3, 7, len(doc)} {
		d := NewDigest()
		for i := 0; i < len(doc); i += size {
			end := min(i+size, len(doc))
			_, err := d.Write(doc[i:end])
			require.NoError(t, err)
		}
		assert.Equal(t, Sum64(doc), d.Sum64(), "chunk size %d", size)
	}
}

func BenchmarkSum64(b *testing.B) {
	doc := []byte(`{"foo":"bar","baz":[1,2,3],"qux":null}`)
	for b.Loop() {
		Sum64(doc)
	}
}
