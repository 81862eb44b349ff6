package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes.
// Version suffix enables future algorithm migration.
const (
	DomainDocument  = "canvas/document/v1"
	DomainComponent = "canvas/component/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DocumentHash returns the content hash of a document's canonical encoding.
// Documents that differ only in key order hash identically.
func DocumentHash(doc Document) (string, error) {
	data, err := MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("DocumentHash: %w", err)
	}
	return hashWithDomain(DomainDocument, data), nil
}

// ComponentHash returns the content hash of a component's canonical
// encoding. The revision counter is excluded so that a save/load round trip
// of unchanged content hashes the same.
func ComponentHash(c *Component) (string, error) {
	clone := c.Clone()
	clone.Revision = 0
	data, err := MarshalCanonical(clone)
	if err != nil {
		return "", fmt.Errorf("ComponentHash: %w", err)
	}
	return hashWithDomain(DomainComponent, data), nil
}
