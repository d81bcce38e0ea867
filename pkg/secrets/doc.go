// Package secrets provides AES-256-GCM encryption for sensitive values
// stored at rest, such as two-factor secrets and recovery code sets.
//
// The Encryptor is an explicit dependency constructed once with a 32-byte
// key and injected into the services that need it, so tests can substitute
// their own key without process-wide state.
//
// # Usage
//
//	import "github.com/dmitrymomot/authkit/pkg/secrets"
//
//	enc, err := secrets.NewEncryptorFromBase64(cfg.EncryptionKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cipherText, err := enc.EncryptString("JBSWY3DPEHPK3PXP")
//	plainText, err := enc.DecryptString(cipherText)
//
// Ciphertexts are base64-encoded with the GCM nonce prepended, so a single
// string column is enough to store them.
package secrets
