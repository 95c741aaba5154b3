package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildExportTranscript(t *testing.T) {
	data := []byte("Submission ID\tUpload Time\n")
	transcript := buildExportTranscript(data)

	if !bytes.HasPrefix(transcript, []byte(ExportSignatureContext)) {
		t.Error("transcript does not start with the context string")
	}
	if !bytes.HasSuffix(transcript, data) {
		t.Error("transcript does not end with the data")
	}
	if len(transcript) != len(ExportSignatureContext)+len(data) {
		t.Errorf("len(transcript) = %d, want %d", len(transcript), len(ExportSignatureContext)+len(data))
	}
}

func TestVerifyExport_ValidSignature(t *testing.T) {
	pub, priv, err := GenerateSigningKey()
	if err != nil {
		t.Fatalf("GenerateSigningKey() error = %v", err)
	}
	if len(pub) != MLDSAPublicKeySize {
		t.Errorf("len(pub) = %d, want %d", len(pub), MLDSAPublicKeySize)
	}

	data := []byte("8\t2024-03-01T143115.000+0000\tCS101\tA1\t0\talice\talice\tabc\n")
	sig, err := SignExport(priv, data)
	if err != nil {
		t.Fatalf("SignExport() error = %v", err)
	}
	if len(sig) != MLDSASignatureSize {
		t.Errorf("len(sig) = %d, want %d", len(sig), MLDSASignatureSize)
	}

	if err := VerifyExport(pub, data, sig); err != nil {
		t.Errorf("VerifyExport() error = %v", err)
	}
}

func TestVerifyExport_TamperedData(t *testing.T) {
	pub, priv, err := GenerateSigningKey()
	if err != nil {
		t.Fatal(err)
	}

	sig, err := SignExport(priv, []byte("8\talice\n"))
	if err != nil {
		t.Fatal(err)
	}

	err = VerifyExport(pub, []byte("9\talice\n"), sig)
	if !errors.Is(err, ErrSignatureVerificationFailed) {
		t.Errorf("expected ErrSignatureVerificationFailed, got %v", err)
	}
}

func TestVerifyExport_ContextBound(t *testing.T) {
	pub, priv, err := GenerateSigningKey()
	if err != nil {
		t.Fatal(err)
	}

	// An export signature does not verify for the bare data.
	data := []byte("8\talice\n")
	sig, err := SignExport(priv, data)
	if err != nil {
		t.Fatal(err)
	}
	if err := Verify(pub, data, sig); !errors.Is(err, ErrSignatureVerificationFailed) {
		t.Errorf("expected ErrSignatureVerificationFailed, got %v", err)
	}
}

func TestVerify_InvalidSignature(t *testing.T) {
	pub, _, err := GenerateSigningKey()
	if err != nil {
		t.Fatal(err)
	}

	err = Verify(pub, []byte("test message"), make([]byte, MLDSASignatureSize))
	if !errors.Is(err, ErrSignatureVerificationFailed) {
		t.Errorf("expected ErrSignatureVerificationFailed, got %v", err)
	}
}

func TestVerify_InvalidPublicKey(t *testing.T) {
	err := Verify([]byte("invalid public key"), []byte("test message"), make([]byte, MLDSASignatureSize))
	if !errors.Is(err, ErrInvalidPublicKeySize) {
		t.Errorf("expected ErrInvalidPublicKeySize, got %v", err)
	}
}

func TestSignExport_InvalidPrivateKey(t *testing.T) {
	if _, err := SignExport([]byte("short"), []byte("data")); err == nil {
		t.Error("SignExport() should fail for a malformed private key")
	}
}
