package ruleconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML rules file and returns validated Rules.
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var rules Rules
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&rules); err != nil {
		return nil, fmt.Errorf("decode rules file: %w", err)
	}

	if err := Validate(&rules); err != nil {
		return nil, err
	}

	return &rules, nil
}

// Hash generates a SHA256 hash of the rules (canonical JSON).
// Recorded on every report so a verdict can be traced to its thresholds.
func Hash(rules *Rules) (string, error) {
	// Struct → JSON (결정적 순서)
	jsonBytes, err := json.Marshal(rules)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
