package crypto

import (
	"fmt"

	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
)

// buildExportTranscript is ExportSignatureContext followed by the export
// bytes.
func buildExportTranscript(data []byte) []byte {
	transcript := make([]byte, 0, len(ExportSignatureContext)+len(data))
	transcript = append(transcript, ExportSignatureContext...)
	return append(transcript, data...)
}

// VerifyExport verifies the server's ML-DSA-65 signature over a submission
// log export.
func VerifyExport(publicKey, data, signature []byte) error {
	return Verify(publicKey, buildExportTranscript(data), signature)
}

// SignExport signs a submission log export the way the server does.
func SignExport(privateKey, data []byte) ([]byte, error) {
	var sk mldsa65.PrivateKey
	if err := sk.UnmarshalBinary(privateKey); err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}

	sig := make([]byte, mldsa65.SignatureSize)
	mldsa65.SignTo(&sk, buildExportTranscript(data), nil, false, sig)
	return sig, nil
}

// GenerateSigningKey creates an ML-DSA-65 key pair for signing exports.
func GenerateSigningKey() (publicKey, privateKey []byte, err error) {
	pub, priv, err := mldsa65.GenerateKey(random())
	if err != nil {
		return nil, nil, fmt.Errorf("generate signing key: %w", err)
	}

	publicKey, err = pub.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	privateKey, err = priv.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return publicKey, privateKey, nil
}

// Verify verifies an ML-DSA-65 signature (low-level function).
func Verify(publicKey, message, signature []byte) error {
	if len(publicKey) != MLDSAPublicKeySize {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidPublicKeySize, len(publicKey), MLDSAPublicKeySize)
	}

	pk := &mldsa65.PublicKey{}
	if err := pk.UnmarshalBinary(publicKey); err != nil {
		return fmt.Errorf("failed to parse public key: %w", err)
	}

	if !mldsa65.Verify(pk, message, nil, signature) {
		return ErrSignatureVerificationFailed
	}

	return nil
}
