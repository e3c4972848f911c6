package redis

import (
	"strconv"
	"strings"
)

// keyspace builds colon separated keys under one namespace, skipping blank
// parts so a missing id never leaves a trailing separator.
type keyspace string

const defaultNamespace keyspace = "noorvia"

func (k keyspace) key(kind string, parts ...string) string {
	var b strings.Builder
	b.WriteString(string(k))
	b.WriteByte(':')
	b.WriteString(kind)
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			b.WriteByte(':')
			b.WriteString(part)
		}
	}
	return b.String()
}

// IdempotencyKey is where the replay of a mutating request is stored.
func (c *Client) IdempotencyKey(scope, id string) string {
	return c.namespace().key("idempotency", scope, id)
}

// rateLimitKey is the counter of one fixed window of an auth rate limit scope.
func (c *Client) rateLimitKey(scope string, window int64) string {
	return c.namespace().key("rate_limit", scope, strconv.FormatInt(window, 10))
}

// AccessSessionKey holds the refresh token issued with an access token id.
func (c *Client) AccessSessionKey(accessID string) string {
	return c.namespace().key("session", "access", accessID)
}

// ContentKey caches one storefront content section (hero, about, ...).
func (c *Client) ContentKey(section string) string {
	return c.namespace().key("content", section)
}

func (c *Client) namespace() keyspace {
	if c == nil || c.keys == "" {
		return defaultNamespace
	}
	return c.keys
}
