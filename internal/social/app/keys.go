package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aussiebroadwan/circle/pkg/cryptox"
	"github.com/aussiebroadwan/circle/pkg/jwtx"
)

// InitCodec builds the token codec for the configured algorithm.
//
//   - HS256: signs with CIRCLE_JWT_SECRET. Without one a random secret is
//     generated, so tokens do not survive a restart.
//   - EdDSA: signs with the Ed25519 key in CIRCLE_JWT_KEY_FILE, generating
//     and saving one on first start.
func InitCodec(cfg Config, logger *slog.Logger) (*jwtx.Codec, error) {
	switch strings.ToUpper(cfg.Algorithm) {
	case jwtx.AlgHS256:
		secret := cfg.JWTSecret
		if secret == "" {
			generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
			if err != nil {
				return nil, err
			}
			secret = generated
			logger.Warn("no JWT secret configured, using an ephemeral one")
		}
		return jwtx.NewHS256Codec([]byte(secret), cfg.Issuer)

	case strings.ToUpper(jwtx.AlgEdDSA):
		pemKey, err := loadOrGenerateKey(cfg.JWTKeyFile, logger)
		if err != nil {
			return nil, err
		}
		return jwtx.NewEdDSACodec(pemKey, cfg.Issuer)

	default:
		return nil, fmt.Errorf("unsupported JWT algorithm %q", cfg.Algorithm)
	}
}

func loadOrGenerateKey(file string, logger *slog.Logger) ([]byte, error) {
	file = filepath.Clean(file)

	data, err := os.ReadFile(file)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read signing key: %w", err)
	}

	data, err = cryptox.GenerateEd25519Key()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0750); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(file, data, 0600); err != nil {
		return nil, fmt.Errorf("write signing key: %w", err)
	}

	logger.Info("generated signing key", "path", file)
	return data, nil
}
