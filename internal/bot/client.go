// Package bot listens for social-media mentions, turns them into tracked
// generation jobs, and replies with the finished video.
package bot

import "context"

// Mention is one inbound request from the social platform.
type Mention struct {
	ID       string // Platform id of the mention; doubles as the job key
	AuthorID string
	Text     string
}

// Client is the social-platform boundary. Authentication and transport
// are the implementation's concern; the bot core only needs these three
// operations.
type Client interface {
	// MentionsSince returns mentions newer than sinceID, oldest first.
	// An empty sinceID returns the most recent window.
	MentionsSince(ctx context.Context, sinceID string) ([]Mention, error)

	// PostReply posts a text reply to the given mention.
	PostReply(ctx context.Context, inReplyTo, message string) error

	// PostVideoReply uploads the video and posts it as a reply.
	PostVideoReply(ctx context.Context, inReplyTo, message, videoPath string) error
}
