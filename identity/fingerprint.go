package identity

import (
	"crypto/md5"
	"encoding/hex"

	"rankwatch/models"
)

// FingerprintLen is the number of hex characters kept from the digest.
const FingerprintLen = 8

// Fingerprint digests a listing's name and price. Identical pairs always give
// identical fingerprints; collisions are accepted as a rare missed change.
func Fingerprint(name, price string) string {
	hash := md5.Sum([]byte(name + "_" + price))
	return hex.EncodeToString(hash[:])[:FingerprintLen]
}

func ListingFingerprint(l models.Listing) string {
	return Fingerprint(l.Name, l.Price)
}
