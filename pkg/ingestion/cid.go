package ingestion

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ContentCID returns the CIDv1 (raw codec, sha2-256) of data. Identical text
// always yields the same identifier, which lets operators tell whether a
// re-ingested document actually changed.
func ContentCID(data []byte) (string, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV1(cid.Raw, sum).String(), nil
}
