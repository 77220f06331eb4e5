package oauth2

import (
	"encoding/json"
	"time"

	"hubspot-proxy/internal/common/errors"
)

// TokenState is the persisted OAuth2 session
type TokenState struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Empty reports whether no session is stored
func (s *TokenState) Empty() bool {
	return s == nil || (s.AccessToken == "" && s.RefreshToken == "")
}

// Tokens is the result of a successful code exchange or refresh
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type,omitempty"`
}

// Encryptor protects token blobs at rest
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// blobCodec turns a TokenState into the string stored by persistent backends
type blobCodec struct {
	encryptor Encryptor
}

func (c blobCodec) encode(state *TokenState) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", errors.InternalError("failed to marshal token state", err)
	}
	if c.encryptor == nil {
		return string(data), nil
	}
	encrypted, err := c.encryptor.Encrypt(string(data))
	if err != nil {
		return "", errors.InternalError("failed to encrypt token state", err)
	}
	return encrypted, nil
}

func (c blobCodec) decode(blob string) (*TokenState, error) {
	if blob == "" {
		return nil, nil
	}
	data := blob
	if c.encryptor != nil {
		decrypted, err := c.encryptor.Decrypt(blob)
		if err != nil {
			return nil, errors.InternalError("failed to decrypt token state", err)
		}
		data = decrypted
	}
	var state TokenState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, errors.InternalError("failed to unmarshal token state", err)
	}
	return &state, nil
}
