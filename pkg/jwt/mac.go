// Copyright © 2025 OpenCHAMI a Series of LF Projects, LLC
//
// SPDX-License-Identifier: MIT

package jwt

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/openchami/macsmith/pkg/errors"
	"github.com/openchami/macsmith/pkg/keys"
)

// errMacInvalid is the single failure every verification path returns.
// Structural problems, algorithm mismatches, and bad tags are deliberately
// indistinguishable: this primitive is a verification oracle fed untrusted
// input, and error specificity would leak which check failed.
var errMacInvalid = errors.New(errors.ErrCodeMacInvalid, "token verification failed")

// tokenHeader is the JOSE header emitted and accepted by the MAC primitive
type tokenHeader struct {
	Alg string `json:"alg"`
	Typ string `json:"typ,omitempty"`
	Kid string `json:"kid,omitempty"`
}

// Mac computes and verifies compact tokens for exactly one key. Most callers
// want KeysetMac, which composes one Mac per keyset entry and handles
// rotation; a bare Mac is the single-key building block.
type Mac struct {
	entry  keys.Entry
	method *jwt.SigningMethodHMAC
}

// NewMac binds one validated key entry to a fresh MAC primitive
func NewMac(entry keys.Entry) (*Mac, error) {
	if err := keys.ValidateEntry(entry); err != nil {
		return nil, err
	}
	return &Mac{
		entry:  entry,
		method: entry.Algorithm.SigningMethod(),
	}, nil
}

// ComputeMacAndEncode signs the claim set into a compact token:
// base64url(header) "." base64url(payload) "." base64url(tag), unpadded.
// The header carries the key's algorithm and, for TINK keys, its key id;
// callers never supply header fields.
func (m *Mac) ComputeMacAndEncode(raw *RawClaims) (string, error) {
	header := tokenHeader{
		Alg: string(m.entry.Algorithm),
		Typ: raw.TypeHeader(),
	}
	if header.Typ == "" {
		header.Typ = "JWT"
	}
	if m.entry.Prefix == keys.PrefixTink {
		header.Kid = m.entry.KeyID
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to encode token header")
	}
	payloadJSON, err := json.Marshal(raw.payloadMap())
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to encode token payload")
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerJSON) + "." + base64.RawURLEncoding.EncodeToString(payloadJSON)

	tag, err := m.method.Sign(signingInput, m.entry.Material)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to compute mac")
	}

	return signingInput + "." + base64.RawURLEncoding.EncodeToString(tag), nil
}

// VerifyMacAndDecode checks the token against this key and, only on success,
// decodes the payload into a VerifiedClaims. The tag comparison is constant
// time. Every failure returns the same undifferentiated error.
func (m *Mac) VerifyMacAndDecode(compact string) (*VerifiedClaims, error) {
	header, parts, err := splitCompact(compact)
	if err != nil {
		return nil, errMacInvalid
	}

	// Exact, case-sensitive match against the key's algorithm. "none" and
	// any cross-family value fail here regardless of the tag.
	if header.Alg != string(m.entry.Algorithm) {
		return nil, errMacInvalid
	}
	if m.entry.Prefix == keys.PrefixTink && header.Kid != "" && header.Kid != m.entry.KeyID {
		return nil, errMacInvalid
	}

	tag, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, errMacInvalid
	}
	if err := m.method.Verify(parts[0]+"."+parts[1], tag, m.entry.Material); err != nil {
		return nil, errMacInvalid
	}

	// Payload decoding happens strictly after the tag checks out.
	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errMacInvalid
	}
	var claims map[string]interface{}
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return nil, errMacInvalid
	}

	return newVerifiedClaims(claims, header.Alg, header.Kid, header.Typ), nil
}

// splitCompact enforces the wire format: exactly three dot-separated
// base64url segments with no whitespace, and a decodable JSON header.
func splitCompact(compact string) (tokenHeader, []string, error) {
	var header tokenHeader

	if strings.ContainsAny(compact, " \t\r\n") {
		return header, nil, errMacInvalid
	}
	parts := strings.Split(compact, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return header, nil, errMacInvalid
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return header, nil, errMacInvalid
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return header, nil, errMacInvalid
	}
	return header, parts, nil
}
