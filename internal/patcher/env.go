package patcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"laravel-api-forge/internal/apperr"
	"laravel-api-forge/internal/logger"
)

// EnvFiles are the environment files kept in sync, relative to the project root.
var EnvFiles = []string{".env", ".env.example"}

// UpdateEnvFiles applies reps to every env file that exists under root.
func UpdateEnvFiles(root string, reps []Replacement) error {
	for _, name := range EnvFiles {
		if _, err := Patch(filepath.Join(root, name), reps); err != nil {
			return err
		}
	}
	return nil
}

// AppendToEnvFiles appends block to every env file that exists under root. A file
// that already defines every key of block is left untouched.
func AppendToEnvFiles(root, block string) error {
	keys := envKeys(block)

	for _, name := range EnvFiles {
		path := filepath.Join(root, name)
		_, err := Edit(path, func(content string) string {
			if len(keys) > 0 && definesAll(content, keys) {
				logger.Debug("[DEBUG] %s already defines %s\n", name, strings.Join(keys, ", "))
				return content
			}
			return content + block
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func envKeys(block string) []string {
	vars, err := godotenv.Unmarshal(block)
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	return keys
}

func definesAll(content string, keys []string) bool {
	vars, err := godotenv.Unmarshal(content)
	if err != nil {
		return false
	}
	for _, k := range keys {
		if _, ok := vars[k]; !ok {
			return false
		}
	}
	return true
}

// ReadEnv parses an env file into a map. Used to verify generated projects.
func ReadEnv(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.FileOperationFailed, "Failed to open "+path, err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return nil, apperr.Wrap(apperr.FileOperationFailed, "Failed to parse "+path, err)
	}
	return vars, nil
}
