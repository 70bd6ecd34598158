package downloader

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
)

// ErrMalformedScript is returned when a bulk download script does not match
// the expected shape.
var ErrMalformedScript = errors.New("downloader: malformed bulk download script")

// filesAssignment marks the start of the file list in an ASF bulk download
// script:
//
//	self.files = [ "https://.../a.nc",
//	               "https://.../b.nc" ]
var filesAssignment = regexp.MustCompile(`self\.files\s*=\s*\[`)

// ParseScript extracts the file URLs from a bulk download script without
// running it. Only string literals, commas, whitespace and comments may
// appear inside the list; anything else is rejected.
func ParseScript(script []byte) ([]string, error) {
	locs := filesAssignment.FindAllIndex(script, -1)
	switch len(locs) {
	case 0:
		return nil, fmt.Errorf("%w: no self.files list", ErrMalformedScript)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %d self.files lists", ErrMalformedScript, len(locs))
	}

	start := locs[0][1]
	literals, err := scanList(script[start:])
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(literals))
	for _, raw := range literals {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid URL %q: %w", ErrMalformedScript, raw, err)
		}
		switch u.Scheme {
		case "http", "https", "s3":
		default:
			return nil, fmt.Errorf("%w: unsupported URL scheme in %q", ErrMalformedScript, raw)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("%w: URL %q has no host", ErrMalformedScript, raw)
		}
		urls = append(urls, raw)
	}
	return urls, nil
}

// scanList reads string literals up to the closing bracket of a list whose
// opening bracket has already been consumed.
func scanList(src []byte) ([]string, error) {
	var out []string
	for i := 0; i < len(src); i++ {
		switch c := src[i]; c {
		case ' ', '\t', '\r', '\n', ',':
		case '#':
			nl := bytes.IndexByte(src[i:], '\n')
			if nl < 0 {
				return nil, fmt.Errorf("%w: unterminated file list", ErrMalformedScript)
			}
			i += nl
		case '"', '\'':
			end := bytes.IndexByte(src[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated string at offset %d", ErrMalformedScript, i)
			}
			lit := src[i+1 : i+1+end]
			if bytes.ContainsAny(lit, "\\\n\r") {
				return nil, fmt.Errorf("%w: unsupported string literal at offset %d", ErrMalformedScript, i)
			}
			out = append(out, string(lit))
			i += end + 1
		case ']':
			return out, nil
		default:
			return nil, fmt.Errorf("%w: unexpected %q in file list at offset %d", ErrMalformedScript, c, i)
		}
	}
	return nil, fmt.Errorf("%w: unterminated file list", ErrMalformedScript)
}
