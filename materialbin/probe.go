package materialbin

import (
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/wippyai/asset-redirect/errors"
)

// Probe parses data under each candidate version in order and returns the
// first one that succeeds. With no candidates every supported version is
// tried, newest first.
func Probe(data []byte, candidates ...Version) (Version, *Material, error) {
	if len(candidates) == 0 {
		candidates = NewestFirst()
	}

	var last error
	for _, v := range candidates {
		m, err := Parse(data, v)
		if err == nil {
			return v, m, nil
		}
		last = err
	}

	return 0, nil, errors.New(errors.PhaseParse, errors.KindUnsupported).
		Cause(last).
		Detail("no candidate version parses (%d tried)", len(candidates)).
		Build()
}

// Fingerprint returns the hex BLAKE3 digest of data. It identifies
// material payloads in logs and tooling output.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
