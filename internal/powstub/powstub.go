// Package powstub provides stand-in proof-of-work primitives for X16R,
// X16Rv2, and KAWPOW light verification. The real algorithms are external
// collaborators (spec §1 Non-goals: "The KAWPOW/X16R/X16Rv2/SHA-256d
// primitives themselves, used as opaque functions"); this package exists
// only so chainlocator and its tests have something concrete to inject
// through the function-typed seams chainlocator.Engine exposes.
//
// None of the functions here are cryptographically meaningful proof-of-work
// implementations. They are deterministic placeholders built on
// golang.org/x/crypto/sha3 so that tests can exercise the locator engine's
// control flow without depending on a production mining library.
package powstub

import "golang.org/x/crypto/sha3"

// X16R is a placeholder for Ravencoin's pre-KAWPOW proof-of-work hash,
// applied over a canonical 80-byte header. Signature matches
// chainlocator.HashFunc.
func X16R(header []byte) [32]byte {
	return sha3.Sum256(append([]byte("x16r"), header...))
}

// X16Rv2 is a placeholder for the revised X16R algorithm.
func X16Rv2(header []byte) [32]byte {
	return sha3.Sum256(append([]byte("x16rv2"), header...))
}

// LightVerify is a placeholder for KAWPOW's light client verification,
// which derives a block hash from the SHA-256d of the first 80 header
// bytes, a 32-byte mix hash, and a 64-bit nonce. Signature matches
// chainlocator.KawpowFunc.
func LightVerify(headerHash [32]byte, mixHash [32]byte, nonce uint64) [32]byte {
	buf := make([]byte, 0, 32+32+8)
	buf = append(buf, headerHash[:]...)
	buf = append(buf, mixHash[:]...)
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(nonce>>(8*i)))
	}
	return sha3.Sum256(buf)
}
