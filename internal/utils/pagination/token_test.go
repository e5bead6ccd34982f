package pagination

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMultiFieldToken(t *testing.T) {
	date := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)
	created := time.Date(2024, 2, 29, 14, 30, 45, 123456789, time.UTC).Format(time.RFC3339Nano)

	token := EncodeMultiFieldToken(date, created, "3", "entry-0042")
	assert.NotEmpty(t, token)
	assert.Equal(t, token, url.QueryEscape(token), "token should not need escaping in a query string")

	fields, err := DecodeMultiFieldToken(token)
	require.NoError(t, err)
	assert.Equal(t, []string{date, created, "3", "entry-0042"}, fields)
}

func TestDecodeMultiFieldToken_EmptyFields(t *testing.T) {
	fields, err := DecodeMultiFieldToken(EncodeMultiFieldToken("a", "", "c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "c"}, fields)
}

func TestDecodeMultiFieldTokenError(t *testing.T) {
	_, err := DecodeMultiFieldToken("this is not base64!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base64 decode")

	_, err = DecodeMultiFieldToken("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
