package catalog

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// DefaultYAML returns a copy of the embedded catalog source
func DefaultYAML() []byte {
	out := make([]byte, len(defaultYAML))
	copy(out, defaultYAML)
	return out
}

// Parse decodes and validates catalog YAML
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}

	return &f, nil
}

// LoadFile reads a catalog YAML file and returns it with its raw bytes
func LoadFile(path string) (*File, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	f, err := Parse(data)
	if err != nil {
		return nil, data, err
	}

	return f, data, nil
}

// Hash generates SHA256 hash from File (canonical JSON)
// 주의: limits는 map이지만 encoding/json이 키를 정렬하므로 재현성 보장
func Hash(f *File) (string, error) {
	jsonBytes, err := json.Marshal(f)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
