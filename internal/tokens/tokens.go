// Package tokens generates the two externally shareable identifiers: family
// invite codes and public wishlist slugs. Uniqueness is owned by the database
// constraints; callers retry generation on collision.
package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	invitePrefixLen = 3
	inviteSuffixLen = 6
	invitePadding   = 'X'
	inviteAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	slugPrefix   = "santa-"
	slugHexBytes = 6
)

// InviteCode builds a human-shareable code of the form PRE-XXXXXX: the first
// three ASCII letters/digits of the family name (diacritics stripped,
// uppercased, padded with X) plus a random 6-character suffix.
func InviteCode(familyName string) string {
	return InvitePrefix(familyName) + "-" + randomString(inviteSuffixLen)
}

// InvitePrefix derives the deterministic part of an invite code from the
// family name.
func InvitePrefix(familyName string) string {
	stripped, _, err := transform.String(transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	), familyName)
	if err != nil {
		stripped = familyName
	}

	var b strings.Builder
	for _, r := range stripped {
		if b.Len() == invitePrefixLen {
			break
		}
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	for b.Len() < invitePrefixLen {
		b.WriteByte(invitePadding)
	}
	return b.String()
}

// PublicSlug returns an opaque slug for a published wishlist, e.g.
// santa-3f9c01ab52de.
func PublicSlug() string {
	buf := make([]byte, slugHexBytes)
	if _, err := rand.Read(buf); err != nil {
		panic("tokens: crypto/rand unavailable: " + err.Error())
	}
	return slugPrefix + hex.EncodeToString(buf)
}

func randomString(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("tokens: crypto/rand unavailable: " + err.Error())
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(out)
}
