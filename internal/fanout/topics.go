package fanout

// Topic is one of the three fan-out channels a session can belong to.
type Topic string

const (
	TopicNotifications Topic = "notifications"
	TopicPrices        Topic = "prices"
	TopicMarketData    Topic = "market-data"
)
