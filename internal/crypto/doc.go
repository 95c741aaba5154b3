// Package crypto implements the cipher collaborator used to recover the
// tamper-evident fields of a submission PDF.
//
// # Field format
//
// Each encrypted info entry (DataCheckA..DataCheckH) holds upper-case hex
// of an AES-GCM ciphertext:
//
//	nonce (12 bytes) || ciphertext || tag (16 bytes)
//
// [DecodeText] turns the entry back into bytes and [DecryptAES] opens it
// with the 16-byte per-document session key. GCM authentication means a
// wrong or missing key always fails instead of yielding garbage.
//
// # Session keys
//
// The session key itself is stored wrapped in DataCheckF. A [MasterKey]
// recovers it:
//
//   - [SymmetricMasterKey]: AES-256-GCM under a key derived from a shared
//     master secret with HKDF-SHA-512 ([SessionKeyInfo]).
//   - [KEMMasterKey]: ML-KEM-768 decapsulation followed by HKDF-SHA-512 and
//     AES-256-GCM, so producers only ever hold the public key.
//
// # Submission log signatures
//
// The server signs each submission log export with ML-DSA-65 over
// [ExportSignatureContext] followed by the file bytes. [VerifyExport]
// checks such a detached signature.
//
// Keep master secrets and ML-KEM secret keys out of logs and version
// control.
package crypto
