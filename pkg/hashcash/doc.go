// Package hashcash mints and verifies Hashcash version 1 proof-of-work stamps.
//
// A stamp renders as
//
//	1:BB:YYMMDD:resource::random:counter
//
// where the counter is the standard base64 encoding of its little-endian
// bytes with high-order zero bytes removed. A stamp is valid for a digest
// algorithm when the first BB bits of the digest of its rendering are zero.
package hashcash
