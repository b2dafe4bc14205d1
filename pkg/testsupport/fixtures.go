package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// LoadFixture reads a file below testdata/.
func LoadFixture(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join("testdata", name))
}

// LoadGolden decodes the JSON golden file below testdata/ into v.
func LoadGolden(name string, v any) error {
	data, err := LoadFixture(name)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
