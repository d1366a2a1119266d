package pollers

import "context"

// StubSocialSource is a placeholder SocialSource used when no real social
// listening API is configured. It always reports no new mentions.
type StubSocialSource struct{}

func (StubSocialSource) FetchMentions(ctx context.Context, sinceID string) ([]SocialMention, error) {
	return nil, nil
}

// StubNewsSource is a placeholder NewsSource used when no real news API is
// configured. It always reports no new articles.
type StubNewsSource struct{}

func (StubNewsSource) FetchNews(ctx context.Context, sinceID string) ([]NewsArticle, error) {
	return nil, nil
}
