package toolchain

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environ snapshots the process environment. When dotenvPath names an
// existing file its entries fill in keys the process environment does not
// already define; a missing file is ignored.
func Environ(dotenvPath string) (map[string]string, error) {
	environ := toMap(os.Environ())

	if dotenvPath == "" {
		return environ, nil
	}

	fileEnv, err := godotenv.Read(dotenvPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return environ, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", dotenvPath, err)
	}

	for k, v := range fileEnv {
		if _, ok := environ[k]; !ok {
			environ[k] = v
		}
	}

	return environ, nil
}

func toMap(kvs []string) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		m[k] = v
	}
	return m
}
