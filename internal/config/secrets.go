package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
)

// LoadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return err
	}
	slog.Debug(MsgDotEnvLoaded, LogKeyComponent, CompConfig, LogKeyFile, path)
	return nil
}

// ResolveFactsKey prefers the configured key, then the one in the OS keyring.
// A key absent from both resolves to "".
func ResolveFactsKey(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	key, err := keyring.Get(KeyringService, KeyringFactsUser)
	if errors.Is(err, keyring.ErrNotFound) {
		slog.Debug(MsgKeyringMiss, LogKeyComponent, CompConfig)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrKeyringGet, err)
	}
	return key, nil
}

// StoreFactsKey saves key in the OS keyring.
func StoreFactsKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New(ErrKeyEmpty)
	}
	if err := keyring.Set(KeyringService, KeyringFactsUser, key); err != nil {
		return fmt.Errorf("%s: %w", ErrKeyringSet, err)
	}
	return nil
}

// DeleteFactsKey removes the stored key. It reports false when none was stored.
func DeleteFactsKey() (bool, error) {
	err := keyring.Delete(KeyringService, KeyringFactsUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrKeyringDelete, err)
	}
	return true, nil
}
