// SPDX-License-Identifier: MPL-2.0

package registry

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"driving-cli/internal/cueutil"
	"driving-cli/internal/workspace"
)

// maxGitlistBytes caps a single gitlist document (4 MB). Registry documents
// are small; anything larger is malformed input.
const maxGitlistBytes = 4 << 20

//go:embed gitlist_schema.cue
var gitlistSchema string

type (
	// ParseError is returned when a gitlist document exists but is not valid
	// JSON or violates the record schema. The whole document's contribution
	// is discarded; records are never skipped individually.
	ParseError struct {
		// Path is the offending document.
		Path string
		// Err is the underlying parse or validation failure.
		Err error
	}

	// source is one candidate gitlist document with its origin tagging.
	source struct {
		path    string
		origin  Origin
		docRoot string
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid gitlist document %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// sourcesFor lists the candidate documents in descending priority. All three
// live under the driving directory regardless of mode; the mode only moves
// the driving directory itself.
func sourcesFor(ws workspace.Context) []source {
	dir := ws.DrivingDir()
	return []source{
		{
			path:    filepath.Join(dir, workspace.LocalDocsDirName, workspace.GitlistName),
			origin:  OriginLocalProject,
			docRoot: ws.LocalDocsDir(),
		},
		{
			path:    filepath.Join(dir, workspace.RemoteDocsDirName, workspace.GitlistName),
			origin:  OriginRemote,
			docRoot: ws.RemoteDocsDir(),
		},
		{
			path:    filepath.Join(dir, workspace.GitlistName),
			origin:  OriginLegacyRoot,
			docRoot: ws.RemoteDocsDir(),
		},
	}
}

// Load reads every present gitlist document under the workspace in priority
// order and returns the raw records tagged with their origin and doc path.
// A missing document contributes nothing; a malformed one aborts the load
// with ParseError.
func Load(ws workspace.Context) ([]Framework, error) {
	var records []Framework
	for _, src := range sourcesFor(ws) {
		data, err := os.ReadFile(src.path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, &ParseError{Path: src.path, Err: err}
		}

		parsed, err := decodeGitlist(data, src.path)
		if err != nil {
			return nil, &ParseError{Path: src.path, Err: err}
		}

		for i := range parsed {
			parsed[i].Origin = src.origin
			parsed[i].DocPath = filepath.Join(src.docRoot, parsed[i].Name)
		}
		records = append(records, parsed...)
	}
	return records, nil
}

// decodeGitlist parses one document through the shared 3-step CUE flow,
// unifying against the embedded #Gitlist definition.
func decodeGitlist(data []byte, path string) ([]Framework, error) {
	result, err := cueutil.ParseAndDecodeString[[]Framework](gitlistSchema, data, "#Gitlist",
		cueutil.WithFilename(path),
		cueutil.WithMaxFileSize(maxGitlistBytes))
	if err != nil {
		return nil, err
	}
	return *result.Value, nil
}
