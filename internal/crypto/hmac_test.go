package crypto

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imbonda/mm-bot/internal/domain"
)

func TestNewQueryAuthRequiresCredentials(t *testing.T) {
	_, err := NewQueryAuth("", "secret")
	require.ErrorIs(t, err, domain.ErrMissingCredentials)

	_, err = NewQueryAuth("key", "")
	require.ErrorIs(t, err, domain.ErrMissingCredentials)

	auth, err := NewQueryAuth("key", "secret")
	require.NoError(t, err)
	require.NotNil(t, auth)
}

func TestSignedQueryAtDeterministic(t *testing.T) {
	auth, err := NewQueryAuth("test-key", "test-secret")
	require.NoError(t, err)

	params := url.Values{}
	params.Set("symbol", "BTC-USDT")
	params.Set("type", "LIMIT")

	got := auth.SignedQueryAt(params, 1640995200000)
	assert.Equal(t,
		"symbol=BTC-USDT&timestamp=1640995200000&type=LIMIT"+
			"&signature=2ce494aa0d5f6670efa1640d6d3dab6041171ba3697c4bc1d79c9b313789a8be",
		got,
	)
}

func TestSignedQueryAtJoinsMultiValues(t *testing.T) {
	auth, err := NewQueryAuth("test-key", "test-secret")
	require.NoError(t, err)

	params := url.Values{}
	params.Add("orderIds", "123")
	params.Add("orderIds", "456")
	params.Set("symbol", "BTC-USDT")

	got := auth.SignedQueryAt(params, 1640995200000)
	assert.Equal(t,
		"orderIds=123,456&symbol=BTC-USDT&timestamp=1640995200000"+
			"&signature=febebd3393e0a07774c2b4009f333f80ce359db985b83f56725b521dfdf117de",
		got,
	)
}

func TestSignedQueryAtSignsUnescapedForm(t *testing.T) {
	auth, err := NewQueryAuth("test-key", "test-secret")
	require.NoError(t, err)

	params := url.Values{}
	params.Set("data", `{"a":1}`)

	got := auth.SignedQueryAt(params, 1640995200000)
	// Wire form carries percent-escaped values.
	assert.Contains(t, got, "data=%7B%22a%22%3A1%7D")
	// Signature is computed over the raw, unescaped canonical string.
	assert.Contains(t, got, "&signature="+hmacSHA256Hex("test-secret", `data={"a":1}&timestamp=1640995200000`))
}

func TestSignedQueryAtDoesNotMutateInput(t *testing.T) {
	auth, err := NewQueryAuth("test-key", "test-secret")
	require.NoError(t, err)

	params := url.Values{}
	params.Set("symbol", "BTC-USDT")
	_ = auth.SignedQueryAt(params, 1640995200000)

	assert.Empty(t, params.Get("timestamp"))
}

func TestStringRedactsCredentials(t *testing.T) {
	auth, err := NewQueryAuth("abcdefgh", "12345678")
	require.NoError(t, err)

	s := auth.String()
	assert.True(t, strings.Contains(s, "abcd****"))
	assert.False(t, strings.Contains(s, "abcdefgh"))
	assert.False(t, strings.Contains(s, "12345678"))
}
