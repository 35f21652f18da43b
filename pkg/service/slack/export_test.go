package slack

var (
	BuildSafetyAlert   = buildSafetyAlert
	TruncateToMaxBytes = truncateToMaxBytes
)
