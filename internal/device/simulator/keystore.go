package simulator

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const keystoreVersion = 3

// ErrWrongPassword is returned when a keystore MAC does not match.
var ErrWrongPassword = errors.New("invalid password: MAC mismatch")

// Keystore is the Ethereum keystore v3 layout, holding the device mnemonic instead of a private key.
type Keystore struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Crypto  struct {
		Ciphertext   string `json:"ciphertext"`
		CipherParams struct {
			IV string `json:"iv"`
		} `json:"cipherparams"`
		Cipher    string `json:"cipher"`
		KDF       string `json:"kdf"`
		KDFParams struct {
			DKLen int    `json:"dklen"`
			Salt  string `json:"salt"`
			N     int    `json:"n"`
			R     int    `json:"r"`
			P     int    `json:"p"`
		} `json:"kdfparams"`
		MAC string `json:"mac"`
	} `json:"crypto"`
}

// ScryptParams are the scrypt KDF parameters of a keystore.
type ScryptParams struct {
	N int
	R int
	P int
}

// StandardScryptParams matches what wallets use for keystore v3 files.
func StandardScryptParams() ScryptParams {
	return ScryptParams{N: 1 << 18, R: 8, P: 1}
}

// LightScryptParams is cheap enough for tests.
func LightScryptParams() ScryptParams {
	return ScryptParams{N: 1 << 12, R: 8, P: 6}
}

// EncryptMnemonic seals mnemonic with password: scrypt derived key, AES-128-CTR, keccak256 MAC.
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func EncryptMnemonic(mnemonic string, password string, params ScryptParams) (*Keystore, error) {
	const dkLen = 32

	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "failed to generate IV")
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, dkLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}

	ciphertext, err := aes128CTR(derivedKey[:16], iv, []byte(mnemonic))
	if err != nil {
		return nil, err
	}

	ks := &Keystore{
		Version: keystoreVersion,
		ID:      uuid.New().String(),
	}
	ks.Crypto.Ciphertext = hex.EncodeToString(ciphertext)
	ks.Crypto.CipherParams.IV = hex.EncodeToString(iv)
	ks.Crypto.Cipher = "aes-128-ctr"
	ks.Crypto.KDF = "scrypt"
	ks.Crypto.KDFParams.DKLen = dkLen
	ks.Crypto.KDFParams.Salt = hex.EncodeToString(salt)
	ks.Crypto.KDFParams.N = params.N
	ks.Crypto.KDFParams.R = params.R
	ks.Crypto.KDFParams.P = params.P
	ks.Crypto.MAC = hex.EncodeToString(crypto.Keccak256(derivedKey[16:32], ciphertext))

	return ks, nil
}

// DecryptMnemonic opens a keystore sealed by EncryptMnemonic.
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func DecryptMnemonic(ks *Keystore, password string) (string, error) {
	if ks.Version != keystoreVersion || ks.Crypto.KDF != "scrypt" || ks.Crypto.Cipher != "aes-128-ctr" {
		return "", errors.Errorf("unsupported keystore: version %d, kdf %q, cipher %q", ks.Version, ks.Crypto.KDF, ks.Crypto.Cipher)
	}

	salt, err := hex.DecodeString(ks.Crypto.KDFParams.Salt)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode salt")
	}

	iv, err := hex.DecodeString(ks.Crypto.CipherParams.IV)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode IV")
	}

	ciphertext, err := hex.DecodeString(ks.Crypto.Ciphertext)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode ciphertext")
	}

	expectedMAC, err := hex.DecodeString(ks.Crypto.MAC)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode MAC")
	}

	p := ks.Crypto.KDFParams
	if p.DKLen < 32 {
		return "", errors.Errorf("derived key length %d too short", p.DKLen)
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return "", errors.Wrap(err, "failed to derive key")
	}

	if subtle.ConstantTimeCompare(crypto.Keccak256(derivedKey[16:32], ciphertext), expectedMAC) != 1 {
		return "", ErrWrongPassword
	}

	plaintext, err := aes128CTR(derivedKey[:16], iv, ciphertext)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// ReadKeystore loads a keystore file written by WriteKeystore.
func ReadKeystore(path string) (*Keystore, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keystore %s", path)
	}

	var ks Keystore
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, errors.Wrapf(err, "failed to decode keystore %s", path)
	}

	return &ks, nil
}

// WriteKeystore stores ks readable by the owner only.
func WriteKeystore(path string, ks *Keystore) error {
	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode keystore")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create keystore directory")
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write keystore %s", path)
	}

	return nil
}

// aes128CTR is its own inverse.
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func aes128CTR(key []byte, iv []byte, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)

	return out, nil
}
