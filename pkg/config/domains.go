package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/user/news-crawler/internal/entity"
)

// LoadDomains reads every *.json file in dir as a domain configuration.
// Files that fail to parse or validate are logged and skipped. The result is
// keyed by domain.
func LoadDomains(dir string, logger *zap.Logger) (map[string]*entity.DomainConfig, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list domain configs in %s: %w", dir, err)
	}
	sort.Strings(paths)

	domains := make(map[string]*entity.DomainConfig, len(paths))
	for _, path := range paths {
		cfg, err := loadDomainFile(path)
		if err != nil {
			logger.Error("Skipping domain config", zap.String("file", path), zap.Error(err))
			continue
		}
		if _, dup := domains[cfg.Domain]; dup {
			logger.Warn("Duplicate domain config, keeping the first one",
				zap.String("file", path), zap.String("domain", cfg.Domain))
			continue
		}
		domains[cfg.Domain] = cfg
		logger.Info("Loaded domain config", zap.String("domain", cfg.Domain), zap.Int("categories", len(cfg.CategoryMapping)))
	}
	return domains, nil
}

func loadDomainFile(path string) (*entity.DomainConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg entity.DomainConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return &cfg, nil
}
