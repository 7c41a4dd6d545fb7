package utils

// Window normalizes an offset/limit pair supplied by a caller. Negative
// offsets clamp to zero; a non-positive limit falls back to defaultLimit and
// anything above maxLimit is capped there.
func Window(skip, limit, defaultLimit, maxLimit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}
