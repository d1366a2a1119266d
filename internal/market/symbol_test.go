package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, "SHIB/USDT", Canonicalize("SHIB"))
	assert.Equal(t, "BTC/USDT", Canonicalize("BTC/USDT"))
	assert.Equal(t, "BTC/USDT", Canonicalize("btc/usdt"))
	assert.Equal(t, "FOO/USDT", Canonicalize("foo"))
}
