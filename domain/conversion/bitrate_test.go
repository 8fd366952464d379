package conversion

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBitrate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Bitrate
		wantErr bool
	}{
		{name: "320k", input: "320k", want: Bitrate320},
		{name: "192k", input: "192k", want: Bitrate192},
		{name: "128k", input: "128k", want: Bitrate128},
		{name: "empty uses default", input: "", want: DefaultBitrate},
		{name: "whitespace uses default", input: "  ", want: DefaultBitrate},
		{name: "uppercase accepted", input: "320K", want: Bitrate320},
		{name: "unsupported value", input: "256k", wantErr: true},
		{name: "numeric only", input: "192", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBitrate(tt.input)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidBitrate))
				assert.Equal(t, KindInvalidBitrate, KindOf(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultBitrate(t *testing.T) {
	assert.Equal(t, Bitrate("192k"), DefaultBitrate)
}

func TestBitrates_Order(t *testing.T) {
	assert.Equal(t, []Bitrate{"320k", "192k", "128k"}, Bitrates())
}

func TestBitrate_Valid(t *testing.T) {
	assert.True(t, Bitrate320.Valid())
	assert.True(t, Bitrate128.Valid())
	assert.False(t, Bitrate("64k").Valid())
	assert.False(t, Bitrate("").Valid())
}
