package internal

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteRange is a single resolved byte range, inclusive on both ends, as
// used by RFC 9110 §14.1.2 (Range) and §14.4 (Content-Range). Start and
// End are always concrete byte offsets; ParseRange resolves the
// suffix-length ("-500") and open-ended ("9500-") forms against a known
// total length.
type ByteRange struct {
	Start, End int64 // inclusive
}

// Len returns the number of bytes the range spans.
func (r ByteRange) Len() int64 { return r.End - r.Start + 1 }

// ParseRange parses a single-range "Range: bytes=..." header value
// against a resource of the given total length. Only a single range is
// supported (combining multiple ranges into one response is explicitly
// out of scope); a multi-range request returns ok=false so the caller
// can fall back to serving the full response.
func ParseRange(header string, total int64) (r ByteRange, ok bool) {
	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return ByteRange{}, false
	}
	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return ByteRange{}, false
	}
	spec = strings.TrimSpace(spec)
	start, end, found := strings.Cut(spec, "-")
	if !found {
		return ByteRange{}, false
	}

	switch {
	case start == "" && end == "":
		return ByteRange{}, false
	case start == "":
		// Suffix length: the last N bytes of the resource.
		n, err := strconv.ParseInt(end, 10, 64)
		if err != nil || n < 0 {
			return ByteRange{}, false
		}
		if n == 0 {
			return ByteRange{}, false
		}
		if n > total {
			n = total
		}
		return ByteRange{Start: total - n, End: total - 1}, true
	case end == "":
		s, err := strconv.ParseInt(start, 10, 64)
		if err != nil || s < 0 || s >= total {
			return ByteRange{}, false
		}
		return ByteRange{Start: s, End: total - 1}, true
	default:
		s, err1 := strconv.ParseInt(start, 10, 64)
		e, err2 := strconv.ParseInt(end, 10, 64)
		if err1 != nil || err2 != nil || s < 0 || e < s {
			return ByteRange{}, false
		}
		if e >= total {
			e = total - 1
		}
		if s >= total {
			return ByteRange{}, false
		}
		return ByteRange{Start: s, End: e}, true
	}
}

// ContentRangeHeader formats r and total for the Content-Range response
// header, per RFC 9110 §14.4.
func ContentRangeHeader(r ByteRange, total int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, total)
}

// ParseContentRange parses a "Content-Range: bytes start-end/total"
// header, as seen on a stored 206 entry, returning the range it covers
// and the resource's total length (or -1 if the server reported "*").
func ParseContentRange(header string) (r ByteRange, total int64, ok bool) {
	const prefix = "bytes "
	if !strings.HasPrefix(header, prefix) {
		return ByteRange{}, 0, false
	}
	rest := strings.TrimPrefix(header, prefix)
	rangePart, totalPart, found := strings.Cut(rest, "/")
	if !found {
		return ByteRange{}, 0, false
	}
	if totalPart == "*" {
		total = -1
	} else {
		t, err := strconv.ParseInt(totalPart, 10, 64)
		if err != nil {
			return ByteRange{}, 0, false
		}
		total = t
	}
	if rangePart == "*" {
		return ByteRange{}, total, false
	}
	start, end, found := strings.Cut(rangePart, "-")
	if !found {
		return ByteRange{}, 0, false
	}
	s, err1 := strconv.ParseInt(start, 10, 64)
	e, err2 := strconv.ParseInt(end, 10, 64)
	if err1 != nil || err2 != nil || e < s {
		return ByteRange{}, 0, false
	}
	return ByteRange{Start: s, End: e}, total, true
}

// Covers reports whether the stored range r fully contains the
// requested range want.
func (r ByteRange) Covers(want ByteRange) bool {
	return r.Start <= want.Start && want.End <= r.End
}
