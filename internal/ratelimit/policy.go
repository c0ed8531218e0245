package ratelimit

// Policy names a throttle bucket and its per-minute limit. PerUser policies
// key on the authenticated user when one is present, falling back to the
// client IP; others always key on IP.
type Policy struct {
	Name    string
	Limit   int
	PerUser bool
}

// Key returns the limiter key for a request: the policy name joined with the
// throttled subject. The name prefix keeps each policy's buckets separate, so
// one subject hitting several endpoints consumes independent quotas.
func (p Policy) Key(userID, ip string) string {
	subject := ip
	if p.PerUser && userID != "" {
		subject = userID
	}
	return p.Name + ":" + subject
}
