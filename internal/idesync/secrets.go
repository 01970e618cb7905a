// SPDX-License-Identifier: MPL-2.0

package idesync

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// MCPConfigName is the MCP server configuration file scrubbed during sync.
const MCPConfigName = "mcp.json"

var (
	lineCommentRe  = regexp.MustCompile(`(?m)^\s*//.*$`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	envVarCleanRe  = regexp.MustCompile(`[^A-Z0-9]+`)
)

// IsSensitiveKey reports whether key looks credential-bearing according to
// the configured keywords. Matching is case-insensitive substring.
func IsSensitiveKey(key string, keywords []string) bool {
	lower := strings.ToLower(key)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// EnvVarName derives the environment variable name for a scrubbed config
// key: path segments joined, uppercased, with runs of non-alphanumerics
// collapsed to underscores.
func EnvVarName(path ...string) string {
	joined := strings.ToUpper(strings.Join(path, "_"))
	cleaned := envVarCleanRe.ReplaceAllString(joined, "_")
	return strings.Trim(cleaned, "_")
}

// ScrubConfig parses MCP config data (JSON with // and /* */ comments
// tolerated), replaces every sensitive string value with a ${VAR} reference,
// and returns the rewritten document plus the extracted VAR=value pairs.
func ScrubConfig(data []byte, keywords []string) ([]byte, map[string]string, error) {
	clean := blockCommentRe.ReplaceAll(data, nil)
	clean = lineCommentRe.ReplaceAll(clean, nil)

	var doc any
	if err := json.Unmarshal(clean, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", MCPConfigName, err)
	}

	secrets := map[string]string{}
	doc = scrubNode(doc, nil, keywords, secrets)

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("rewriting %s: %w", MCPConfigName, err)
	}
	return append(out, '\n'), secrets, nil
}

// scrubNode walks the decoded JSON tree. Only string values under sensitive
// keys are replaced; values that already reference an env var are left alone.
func scrubNode(node any, path []string, keywords []string, secrets map[string]string) any {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			childPath := make([]string, len(path), len(path)+1)
			copy(childPath, path)
			childPath = append(childPath, key)
			if str, ok := child.(string); ok && IsSensitiveKey(key, keywords) {
				if str == "" || strings.HasPrefix(str, "${") {
					continue
				}
				name := EnvVarName(childPath...)
				secrets[name] = str
				v[key] = "${" + name + "}"
				continue
			}
			v[key] = scrubNode(child, childPath, keywords, secrets)
		}
		return v
	case []any:
		for i, child := range v {
			v[i] = scrubNode(child, path, keywords, secrets)
		}
		return v
	default:
		return node
	}
}
