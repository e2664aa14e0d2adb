package mocks

import "errors"

// SecretStoreMock is an in-memory stand-in for the OS keyring.
type SecretStoreMock struct {
	Keys map[string]string

	StoreFunc  func(provider string, apiKey []byte) error
	GetFunc    func(provider string) (string, error)
	DeleteFunc func(provider string) error
}

func NewSecretStoreMock() *SecretStoreMock {
	return &SecretStoreMock{Keys: make(map[string]string)}
}

func (m *SecretStoreMock) StoreApiKey(provider string, apiKey []byte) error {
	if m.StoreFunc != nil {
		return m.StoreFunc(provider, apiKey)
	}
	m.Keys[provider] = string(apiKey)
	return nil
}

func (m *SecretStoreMock) GetApiKey(provider string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(provider)
	}
	key, ok := m.Keys[provider]
	if !ok {
		return "", errors.New("secret not found")
	}
	return key, nil
}

func (m *SecretStoreMock) DeleteApiKey(provider string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(provider)
	}
	delete(m.Keys, provider)
	return nil
}
