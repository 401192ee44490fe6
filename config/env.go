package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/inference/detectors"
	"github.com/nvr-ai/go-detect/inference/providers"
	"github.com/nvr-ai/go-detect/models"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DETECT_"

// lookup resolves a key against the process environment first, then the
// dotenv values.
type lookup func(key string) (string, bool)

func readEnv(envFile string) (lookup, error) {
	dotenv := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = values
		case os.IsNotExist(errors.Cause(err)):
		default:
			return nil, errors.Wrapf(err, "read %s", envFile)
		}
	}

	return func(key string) (string, bool) {
		key = EnvPrefix + key
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}, nil
}

func applyEnv(cfg *Config, env lookup) error {
	str := func(key string, dst *string) {
		if v, ok := env(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := env(key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%s%s", EnvPrefix, key)
		}
		*dst = n
		return nil
	}
	class := func(key string, dst **int) error {
		if _, ok := env(key); !ok {
			return nil
		}
		var n int
		if err := num(key, &n); err != nil {
			return err
		}
		*dst = &n
		return nil
	}
	float := func(key string, dst *float32) error {
		v, ok := env(key)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
		if err != nil {
			return errors.Wrapf(err, "%s%s", EnvPrefix, key)
		}
		*dst = float32(f)
		return nil
	}
	flag := func(key string, dst *bool) error {
		v, ok := env(key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(err, "%s%s", EnvPrefix, key)
		}
		*dst = b
		return nil
	}

	var backend, provider, family, mode string
	str("BACKEND", &backend)
	str("PROVIDER", &provider)
	str("FAMILY", &family)
	str("DISPLAY", &mode)
	if backend != "" {
		cfg.Detector.Backend = detectors.Backend(backend)
	}
	if provider != "" {
		cfg.Detector.Provider = providers.Backend(provider)
	}
	if family != "" {
		cfg.Detector.Family = models.Family(family)
	}
	if mode != "" {
		cfg.Display.Mode = DisplayMode(mode)
	}

	str("MODEL_PATH", &cfg.Detector.ModelPath)
	str("CONFIG_PATH", &cfg.Detector.ConfigPath)
	str("LIBRARY_PATH", &cfg.Detector.LibraryPath)
	str("OUTPUT", &cfg.Display.OutputPath)
	str("TITLE", &cfg.Render.Title)
	str("DATASET_DIR", &cfg.Dataset.Dir)
	str("DATASET_CATEGORY", &cfg.Dataset.Category)
	str("DATASET_INDEX_DB", &cfg.Dataset.IndexDB)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("CLASS_NAME", &cfg.Threshold.ClassName)

	for _, err := range []error{
		num("THREADS", &cfg.Detector.Threads),
		class("CLASS", &cfg.Threshold.Class),
		num("DATASET_LIMIT", &cfg.Dataset.Limit),
		float("CONFIDENCE", &cfg.Threshold.Confidence),
		float("NMS_IOU", &cfg.Threshold.NMSIoU),
		flag("LOG_DEVELOPMENT", &cfg.Log.Development),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
