// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/mod/semver"
)

// maxBinaryBytes is the upper bound on downloaded or extracted binary size
// (500 MB). Prevents decompression bombs when unpacking release archives.
const maxBinaryBytes = 500 << 20

var (
	// ErrInvalidVersion indicates the provided version string is not valid semver.
	ErrInvalidVersion = errors.New("invalid semantic version")

	//nolint:gochecknoglobals // Test seam for os.Executable().
	osExecutable = os.Executable

	//nolint:gochecknoglobals // Test seam for filepath.EvalSymlinks().
	evalSymlinks = filepath.EvalSymlinks
)

type (
	// UpgradeCheck holds the result of a version comparison between the
	// currently running binary and the published manifest. The InstallMethod
	// field determines whether the Updater can apply the upgrade directly or
	// must defer to an external package manager.
	UpgradeCheck struct {
		CurrentVersion   string        // Currently running version
		LatestVersion    string        // Published version from the manifest
		Info             *VersionInfo  // Full manifest (nil if up-to-date or managed)
		InstallMethod    InstallMethod // How driving was installed
		UpgradeAvailable bool          // True if upgrade available and applicable
		Message          string        // Human-readable status message
	}

	// Updater composes manifest fetching, install method detection, and
	// checksum verification into an end-to-end upgrade flow. It is the
	// primary facade for the selfupdate package.
	Updater struct {
		client         *ManifestClient
		currentVersion string
	}

	// UpdaterOption configures an Updater during construction.
	UpdaterOption func(*Updater)
)

// WithManifestClient overrides the default ManifestClient used by the Updater.
func WithManifestClient(c *ManifestClient) UpdaterOption {
	return func(u *Updater) {
		u.client = c
	}
}

// NewUpdater creates an Updater for the given currentVersion. If no
// WithManifestClient option is provided, a default ManifestClient is created.
func NewUpdater(currentVersion string, opts ...UpdaterOption) *Updater {
	u := &Updater{
		currentVersion: currentVersion,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.client == nil {
		u.client = NewManifestClient()
	}
	return u
}

// Check fetches the manifest at manifestURL and compares its version against
// the running binary.
//
// For managed installs (Homebrew, go install), Check returns immediately with
// guidance to use the appropriate package manager without touching the
// network.
func (u *Updater) Check(ctx context.Context, manifestURL string) (*UpgradeCheck, error) {
	execPath, err := resolveExecPath()
	if err != nil {
		return nil, fmt.Errorf("resolving executable path: %w", err)
	}

	method := DetectInstallMethod(execPath)
	if method == InstallMethodHomebrew || method == InstallMethodGoInstall {
		return &UpgradeCheck{
			CurrentVersion:   u.currentVersion,
			InstallMethod:    method,
			UpgradeAvailable: false,
			Message:          managedInstallMessage(method, execPath),
		}, nil
	}

	info, err := u.client.FetchManifest(ctx, manifestURL)
	if err != nil {
		return nil, err
	}

	currentNorm, err := normalizeVersion(u.currentVersion)
	if err != nil {
		return nil, fmt.Errorf("current version: %w", err)
	}
	latestNorm, err := normalizeVersion(info.Version)
	if err != nil {
		return nil, fmt.Errorf("manifest version: %w", err)
	}

	// Pre-release ahead: the running binary is a development build at or
	// beyond the published version.
	if semver.Prerelease(currentNorm) != "" && semver.Compare(currentNorm, latestNorm) >= 0 {
		return &UpgradeCheck{
			CurrentVersion: u.currentVersion,
			LatestVersion:  info.Version,
			Info:           info,
			InstallMethod:  method,
			Message:        fmt.Sprintf("Running pre-release %s (ahead of %s).", u.currentVersion, info.Version),
		}, nil
	}

	if semver.Compare(currentNorm, latestNorm) >= 0 {
		return &UpgradeCheck{
			CurrentVersion: u.currentVersion,
			LatestVersion:  info.Version,
			Info:           info,
			InstallMethod:  method,
			Message:        "Already up to date.",
		}, nil
	}

	return &UpgradeCheck{
		CurrentVersion:   u.currentVersion,
		LatestVersion:    info.Version,
		Info:             info,
		InstallMethod:    method,
		UpgradeAvailable: true,
		Message:          fmt.Sprintf("Upgrade available: %s -> %s", u.currentVersion, info.Version),
	}, nil
}

// Apply downloads, verifies, and atomically replaces the current binary with
// the release named by info. The replacement uses os.Rename, which requires
// the temp file to reside on the same filesystem as the target, so all
// temporary files are created in the same directory as the running binary.
func (u *Updater) Apply(ctx context.Context, info *VersionInfo) error {
	if info == nil {
		return errors.New("version info must not be nil")
	}

	execPath, err := resolveExecPath()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	// Windows locks the running binary, so in-place replacement is not
	// possible for manual installations.
	method := DetectInstallMethod(execPath)
	if runtime.GOOS == "windows" && method == InstallMethodUnknown {
		return fmt.Errorf(
			"automatic upgrade is not supported on Windows for manual installations; " +
				"download the new version from the releases page")
	}

	targetDir := filepath.Dir(execPath)

	downloadPath, err := downloadToTempFile(ctx, u.client, info.DownloadURL, targetDir)
	if err != nil {
		return fmt.Errorf("downloading release: %w", err)
	}
	defer func() { _ = os.Remove(downloadPath) }()

	if info.SHA256 != "" {
		if err := VerifyFile(downloadPath, info.SHA256); err != nil {
			return fmt.Errorf("verifying download: %w", err)
		}
	}

	// Archives carry the binary inside; a raw binary download is used as-is.
	tempBinaryPath := downloadPath
	if strings.HasSuffix(info.DownloadURL, ".tar.gz") || strings.HasSuffix(info.DownloadURL, ".tgz") {
		tempBinaryPath, err = extractBinaryFromArchive(downloadPath, targetDir)
		if err != nil {
			return fmt.Errorf("extracting binary from archive: %w", err)
		}
	}

	renamed := false
	defer func() {
		if !renamed && tempBinaryPath != downloadPath {
			_ = os.Remove(tempBinaryPath)
		}
	}()

	// Preserve the original binary's file permissions.
	fi, err := os.Stat(execPath)
	if err != nil {
		return fmt.Errorf("reading original binary permissions: %w", err)
	}
	if err := os.Chmod(tempBinaryPath, fi.Mode()); err != nil {
		return fmt.Errorf("setting binary permissions: %w", err)
	}

	// Atomic replacement via rename; both paths live in targetDir.
	if err := os.Rename(tempBinaryPath, execPath); err != nil {
		return fmt.Errorf("replacing binary: %w", err)
	}
	renamed = true

	return nil
}

// resolveExecPath returns the absolute, symlink-resolved path to the currently
// running binary.
func resolveExecPath() (string, error) {
	p, err := osExecutable()
	if err != nil {
		return "", fmt.Errorf("determining executable path: %w", err)
	}

	resolved, err := evalSymlinks(p)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", p, err)
	}

	return resolved, nil
}

// managedInstallMessage returns a human-readable message advising the user to
// upgrade via their package manager.
func managedInstallMessage(method InstallMethod, execPath string) string {
	switch method {
	case InstallMethodHomebrew:
		return fmt.Sprintf("Detected Homebrew installation at %s\n\nTo upgrade, run:\n  brew upgrade driving", execPath)
	case InstallMethodGoInstall:
		return fmt.Sprintf("Detected go install at %s\n\nTo upgrade, re-run go install with the desired version.", execPath)
	case InstallMethodScript, InstallMethodUnknown:
		return ""
	}
	return ""
}

// normalizeVersion ensures the version string has a "v" prefix as required by
// the semver package, and validates that the result is a well-formed semantic
// version. Returns ErrInvalidVersion if the input cannot be normalized to
// valid semver.
func normalizeVersion(v string) (string, error) {
	norm := v
	if !strings.HasPrefix(norm, "v") {
		norm = "v" + norm
	}
	if !semver.IsValid(norm) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return norm, nil
}

// downloadToTempFile downloads url into a temporary file in dir and returns
// its path. The caller is responsible for removing the file when done.
func downloadToTempFile(ctx context.Context, client *ManifestClient, url, dir string) (_ string, err error) {
	body, err := client.Download(ctx, url)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }() // read-only HTTP response body

	tmp, err := os.CreateTemp(dir, "driving-download-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if closeErr := tmp.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := io.Copy(tmp, io.LimitReader(body, maxBinaryBytes)); err != nil {
		// Best-effort removal of partially written temp file.
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("writing to temp file: %w", err)
	}

	return tmp.Name(), nil
}

// extractBinaryFromArchive opens the tar.gz archive at archivePath and
// extracts the driving binary into a temp file in targetDir. It matches by
// the base filename rather than the full entry path, so both flat archives
// and nested layouts are handled transparently.
func extractBinaryFromArchive(archivePath, targetDir string) (_ string, err error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	defer func() {
		// Read-only file handle; close errors are exotic.
		_ = f.Close()
	}()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() {
		// Gzip reader wraps the underlying file; close errors are not
		// actionable here since we only read from it.
		_ = gz.Close()
	}()

	binaryName := "driving"
	if runtime.GOOS == "windows" {
		binaryName = "driving.exe"
	}

	tr := tar.NewReader(gz)
	for {
		hdr, nextErr := tr.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			return "", fmt.Errorf("reading tar entry: %w", nextErr)
		}

		// Match by base name to handle both flat and nested archive layouts.
		if filepath.Base(hdr.Name) != binaryName {
			continue
		}

		tmp, createErr := os.CreateTemp(targetDir, "driving-upgrade-*")
		if createErr != nil {
			return "", fmt.Errorf("creating temp file for binary: %w", createErr)
		}

		if copyErr := func() (copyErr error) {
			defer func() {
				if closeErr := tmp.Close(); closeErr != nil && copyErr == nil {
					copyErr = closeErr
				}
			}()
			if _, copyErr = io.Copy(tmp, io.LimitReader(tr, maxBinaryBytes)); copyErr != nil {
				return fmt.Errorf("extracting binary: %w", copyErr)
			}
			return nil
		}(); copyErr != nil {
			// Best-effort removal of partially written temp file.
			_ = os.Remove(tmp.Name())
			return "", copyErr
		}

		return tmp.Name(), nil
	}

	return "", fmt.Errorf("binary %q not found in archive %s", binaryName, archivePath)
}
