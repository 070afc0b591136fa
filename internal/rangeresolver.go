package internal

// RangeResult is what ResolveRange found for a requested byte range.
type RangeResult struct {
	// Source is the entry the bytes were sliced from: either a complete
	// 200 response or a 206 partial response whose stored range covers
	// the request.
	Source *Entry
	// Range is the resolved, concrete byte range that was served.
	Range ByteRange
	// Total is the resource's full length, if known (from the complete
	// entry's body length, or the partial entry's Content-Range total).
	Total int64
	// Bytes is the slice of Source's body covering Range. It aliases
	// Source.Body's internal buffer and must be treated as read-only.
	Bytes []byte
}

// ResolveRange implements the Range Resolver (spec §4.G): given every
// stored entry for a secondary key and a parsed Range header, it finds
// an entry whose body can satisfy the request without contacting the
// origin. It prefers a complete (200) entry, falling back to a stored
// 206 partial only if its Content-Range covers the request. It never
// combines bytes from more than one entry — per spec Non-goals,
// combining partials for one request is out of scope. Entries whose
// body is still BodyReceiving are ignored entirely: the range resolver
// only ever answers from a body that has finished arriving.
func ResolveRange(entries []*Entry, header string) (RangeResult, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Status != 200 {
			continue
		}
		state, bytes := e.Body.Snapshot()
		if state != BodyDone {
			continue
		}
		total := int64(len(bytes))
		want, ok := ParseRange(header, total)
		if !ok {
			continue
		}
		return RangeResult{
			Source: e,
			Range:  want,
			Total:  total,
			Bytes:  bytes[want.Start : want.End+1],
		}, true
	}

	// Fall back to a stored partial (206) entry whose range covers the
	// request.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.Status != 206 {
			continue
		}
		state, bytes := e.Body.Snapshot()
		if state != BodyDone {
			continue
		}
		storedRange, total, ok := ParseContentRange(e.Metadata.Header.Get("Content-Range"))
		if !ok || total < 0 {
			continue
		}
		want, ok := ParseRange(header, total)
		if !ok || !storedRange.Covers(want) {
			continue
		}
		offset := want.Start - storedRange.Start
		return RangeResult{
			Source: e,
			Range:  want,
			Total:  total,
			Bytes:  bytes[offset : offset+want.Len()],
		}, true
	}

	return RangeResult{}, false
}
