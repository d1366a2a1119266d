package enrichment

import "strings"

// symbolDictionary maps tickers and common name aliases to their canonical
// BASE/USDT pair. It is a curated subset of the ~100-ticker dictionary
// described in spec §4.2's social poller contract, large enough to exercise
// every enrichment/poller code path without vendoring an exhaustive list.
var symbolDictionary = map[string]string{
	"btc": "BTC/USDT", "bitcoin": "BTC/USDT",
	"eth": "ETH/USDT", "ethereum": "ETH/USDT",
	"sol": "SOL/USDT", "solana": "SOL/USDT",
	"bnb": "BNB/USDT",
	"xrp": "XRP/USDT", "ripple": "XRP/USDT",
	"ada": "ADA/USDT", "cardano": "ADA/USDT",
	"doge": "DOGE/USDT", "dogecoin": "DOGE/USDT",
	"shib": "SHIB/USDT", "shiba": "SHIB/USDT",
	"avax": "AVAX/USDT", "avalanche": "AVAX/USDT",
	"dot": "DOT/USDT", "polkadot": "DOT/USDT",
	"matic": "MATIC/USDT", "polygon": "MATIC/USDT",
	"link": "LINK/USDT", "chainlink": "LINK/USDT",
	"ltc": "LTC/USDT", "litecoin": "LTC/USDT",
	"uni": "UNI/USDT", "uniswap": "UNI/USDT",
	"atom": "ATOM/USDT", "cosmos": "ATOM/USDT",
	"etc": "ETC/USDT",
	"xlm": "XLM/USDT", "stellar": "XLM/USDT",
	"near": "NEAR/USDT",
	"apt":  "APT/USDT", "aptos": "APT/USDT",
	"arb": "ARB/USDT", "arbitrum": "ARB/USDT",
	"op": "OP/USDT", "optimism": "OP/USDT",
	"tia": "TIA/USDT", "celestia": "TIA/USDT",
	"sui": "SUI/USDT",
	"ton": "TON/USDT", "toncoin": "TON/USDT",
	"pepe": "PEPE/USDT",
	"wif":  "WIF/USDT",
}

// ExtractSymbol scans text for the first unambiguous symbol dictionary hit
// and returns its canonical form. It returns false when no symbol matches.
func ExtractSymbol(text string) (string, bool) {
	lower := strings.ToLower(text)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	for _, f := range fields {
		f = strings.TrimPrefix(f, "$")
		if canonical, ok := symbolDictionary[f]; ok {
			return canonical, true
		}
	}
	return "", false
}
