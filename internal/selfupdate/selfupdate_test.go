// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// fakeExecutable points the updater's executable-path seams at a real file in
// a temp dir so Apply can stat and replace it.
func fakeExecutable(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "driving")
	if err := os.WriteFile(path, []byte("old binary"), 0o755); err != nil {
		t.Fatal(err)
	}

	savedExec := osExecutable
	savedEval := evalSymlinks
	t.Cleanup(func() {
		osExecutable = savedExec
		evalSymlinks = savedEval
	})
	osExecutable = func() (string, error) { return path, nil }
	evalSymlinks = func(p string) (string, error) { return p, nil }

	return path
}

func manifestServer(t *testing.T, manifest, binary string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/version.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(manifest))
	})
	mux.HandleFunc("/driving", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(binary))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNormalizeVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1.2.3", want: "v1.2.3"},
		{in: "v1.2.3", want: "v1.2.3"},
		{in: "1.2.3-rc.1", want: "v1.2.3-rc.1"},
		{in: "not-a-version", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := normalizeVersion(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidVersion) {
				t.Errorf("normalizeVersion(%q) error = %v, want ErrInvalidVersion", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("normalizeVersion(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("normalizeVersion(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckUpgradeAvailable(t *testing.T) {
	fakeExecutable(t)
	srv := manifestServer(t, `{"version": "2.0.0", "download_url": "https://example.com/driving", "changelog": "big release"}`, "")

	u := NewUpdater("1.0.0", WithManifestClient(NewManifestClient(WithHTTPClient(srv.Client()))))
	check, err := u.Check(context.Background(), srv.URL+"/version.json")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if !check.UpgradeAvailable {
		t.Error("UpgradeAvailable = false, want true")
	}
	if check.LatestVersion != "2.0.0" {
		t.Errorf("LatestVersion = %q, want 2.0.0", check.LatestVersion)
	}
	if check.Info == nil || check.Info.Changelog != "big release" {
		t.Errorf("Info = %+v, want the manifest carried through", check.Info)
	}
}

func TestCheckAlreadyUpToDate(t *testing.T) {
	fakeExecutable(t)
	srv := manifestServer(t, `{"version": "1.0.0", "download_url": "https://example.com/driving"}`, "")

	u := NewUpdater("1.2.0", WithManifestClient(NewManifestClient(WithHTTPClient(srv.Client()))))
	check, err := u.Check(context.Background(), srv.URL+"/version.json")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if check.UpgradeAvailable {
		t.Error("UpgradeAvailable = true for a newer local version")
	}
	if check.Info == nil || check.Info.Version != "1.0.0" {
		t.Errorf("Info = %+v, want the manifest carried through for force reinstalls", check.Info)
	}
}

func TestCheckPreReleaseAhead(t *testing.T) {
	fakeExecutable(t)
	srv := manifestServer(t, `{"version": "1.0.0", "download_url": "https://example.com/driving"}`, "")

	u := NewUpdater("1.1.0-rc.1", WithManifestClient(NewManifestClient(WithHTTPClient(srv.Client()))))
	check, err := u.Check(context.Background(), srv.URL+"/version.json")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if check.UpgradeAvailable {
		t.Error("UpgradeAvailable = true for a pre-release ahead of the manifest")
	}
}

func TestCheckInvalidManifest(t *testing.T) {
	fakeExecutable(t)
	srv := manifestServer(t, `{"download_url": "https://example.com/driving"}`, "")

	u := NewUpdater("1.0.0", WithManifestClient(NewManifestClient(WithHTTPClient(srv.Client()))))
	_, err := u.Check(context.Background(), srv.URL+"/version.json")
	if !errors.Is(err, ErrManifestInvalid) {
		t.Errorf("Check() error = %v, want ErrManifestInvalid", err)
	}
}

func TestApplyReplacesBinary(t *testing.T) {
	execPath := fakeExecutable(t)
	srv := manifestServer(t, "", "new binary contents")

	u := NewUpdater("1.0.0", WithManifestClient(NewManifestClient(WithHTTPClient(srv.Client()))))
	err := u.Apply(context.Background(), &VersionInfo{
		Version:     "2.0.0",
		DownloadURL: srv.URL + "/driving",
	})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	data, err := os.ReadFile(execPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new binary contents" {
		t.Errorf("binary = %q, want the downloaded contents", data)
	}

	fi, err := os.Stat(execPath)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm()&0o100 == 0 {
		t.Error("replaced binary lost its executable bit")
	}
}

func TestApplyChecksumMismatch(t *testing.T) {
	execPath := fakeExecutable(t)
	srv := manifestServer(t, "", "new binary contents")

	u := NewUpdater("1.0.0", WithManifestClient(NewManifestClient(WithHTTPClient(srv.Client()))))
	err := u.Apply(context.Background(), &VersionInfo{
		Version:     "2.0.0",
		DownloadURL: srv.URL + "/driving",
		SHA256:      "0000000000000000000000000000000000000000000000000000000000000000",
	})
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("Apply() error = %v, want checksum mismatch", err)
	}

	data, err := os.ReadFile(execPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "old binary" {
		t.Error("binary was replaced despite checksum mismatch")
	}
}

func TestApplyNilInfo(t *testing.T) {
	t.Parallel()

	u := NewUpdater("1.0.0")
	if err := u.Apply(context.Background(), nil); err == nil {
		t.Error("Apply(nil) error = nil, want error")
	}
}
