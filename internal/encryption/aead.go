// Package encryption provides the Tink AEAD used to seal credentials held in
// a shared store.
package encryption

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dynamic360/partnercenter-bridge/internal/secret"
	"github.com/tink-crypto/tink-go-awskms/v3/integration/awskms"
	"github.com/tink-crypto/tink-go/v2/aead"
	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	"github.com/tink-crypto/tink-go/v2/tink"
)

const secretsManagerScheme = "aws-secretsmanager://"

// Validate runs an encrypt/decrypt cycle so that a misconfigured keyset fails
// at startup rather than on the first credential write.
func Validate(a tink.AEAD) error {
	probe := []byte("partnercenter-bridge-credential-probe")
	associated := []byte("validation")

	ciphertext, err := a.Encrypt(probe, associated)
	if err != nil {
		return fmt.Errorf("validation encrypt failed: %w", err)
	}

	decrypted, err := a.Decrypt(ciphertext, associated)
	if err != nil {
		return fmt.Errorf("validation decrypt failed: %w", err)
	}

	if !bytes.Equal(probe, decrypted) {
		return fmt.Errorf("validation round-trip failed: plaintext mismatch")
	}

	return nil
}

// FromKMS loads a keyset stored in AWS Secrets Manager and encrypted with an
// AWS KMS key. KMS is only used to decrypt the keyset: sealing and opening
// credentials is local.
//
// keysetURI format: aws-secretsmanager://secret-name
// envelopeKeyURI format: aws-kms://arn:aws:kms:region:account:key/key-id
func FromKMS(ctx context.Context, keysetURI, envelopeKeyURI string) (tink.AEAD, error) {
	secretName, err := secretName(keysetURI)
	if err != nil {
		return nil, err
	}

	envelope, err := awskms.NewAEADWithContext(envelopeKeyURI)
	if err != nil {
		return nil, fmt.Errorf("creating KMS AEAD: %w", err)
	}

	encoded, err := secret.Value(ctx, secretName)
	if err != nil {
		return nil, fmt.Errorf("reading keyset: %w", err)
	}

	handle, err := keyset.ReadWithContext(ctx, keyset.NewJSONReader(strings.NewReader(encoded)), envelope, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting keyset: %w", err)
	}

	return primitive(handle)
}

// FromKeysetFile loads a cleartext JSON keyset. The key material is
// unprotected on disk, so this is for development and tests.
func FromKeysetFile(path string) (tink.AEAD, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening keyset file: %w", err)
	}
	defer f.Close()

	handle, err := insecurecleartextkeyset.Read(keyset.NewJSONReader(f))
	if err != nil {
		return nil, fmt.Errorf("reading keyset file %s: %w", path, err)
	}

	return primitive(handle)
}

func primitive(handle *keyset.Handle) (tink.AEAD, error) {
	p, err := aead.New(handle)
	if err != nil {
		return nil, fmt.Errorf("creating AEAD primitive: %w", err)
	}

	if err := Validate(p); err != nil {
		return nil, fmt.Errorf("validating AEAD: %w", err)
	}

	return p, nil
}

func secretName(uri string) (string, error) {
	if !strings.HasPrefix(uri, secretsManagerScheme) {
		return "", fmt.Errorf("invalid keyset URI %q: must start with %s", uri, secretsManagerScheme)
	}

	name := strings.TrimPrefix(uri, secretsManagerScheme)
	if name == "" {
		return "", fmt.Errorf("invalid keyset URI %q: secret name is empty", uri)
	}

	return name, nil
}
