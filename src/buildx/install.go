package buildx

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"golang.org/x/sync/errgroup"

	"github.com/panekj/setup-buildx-action/src/execx"
)

// ErrUnsupportedPlatform is returned when no release artifact exists for
// the current OS/architecture pair.
var ErrUnsupportedPlatform = fmt.Errorf("unsupported platform for buildx release artifact")

const (
	releaseDownloadBase = "https://github.com/docker/buildx/releases/download"
	latestReleaseAPI    = "https://api.github.com/repos/docker/buildx/releases/latest"
	pluginName          = "docker-buildx"
)

var httpClient = &http.Client{Timeout: 2 * time.Minute}

// PluginDir returns the docker CLI plugin directory under configHome.
func PluginDir(configHome string) string {
	return filepath.Join(configHome, "cli-plugins")
}

// Ensure guarantees a working buildx plugin. If version is a git URL the
// plugin is built from source at that ref. Otherwise a release artifact is
// downloaded when no usable binary is installed or an explicit version was
// requested. An existing installation with no version requested is trusted
// as-is; its actual version is not checked.
func Ensure(ctx context.Context, runner *execx.Runner, version, configHome string) error {
	pluginDir := PluginDir(configHome)

	if IsGitRef(version) {
		return installFromSource(ctx, runner, version, pluginDir)
	}

	if version == "" && hasInstalled(ctx, runner) {
		slog.Debug("buildx already installed, skipping download")
		return nil
	}

	if version == "" {
		version = "latest"
	}
	return installRelease(ctx, version, pluginDir)
}

// IsGitRef reports whether the requested version is a source URL rather
// than a release version. Source refs look like
// "https://github.com/docker/buildx.git#refs/heads/master".
func IsGitRef(version string) bool {
	return strings.HasPrefix(version, "https://") ||
		strings.HasPrefix(version, "http://") ||
		strings.HasPrefix(version, "git://")
}

// hasInstalled probes whether a usable buildx plugin is already on the
// docker CLI search path.
func hasInstalled(ctx context.Context, runner *execx.Runner) bool {
	res, err := runner.RunQuiet(ctx, "docker", "buildx", "version")
	return err == nil && res.Success()
}

// installFromSource builds the buildx binary from a git source ref using
// the host's own buildx, then installs it into the plugin directory. The
// ref may name a branch, tag, or commit; this path exists for testing
// unreleased builds.
func installFromSource(ctx context.Context, runner *execx.Runner, sourceRef, pluginDir string) error {
	repoURL, ref := SplitSourceRef(sourceRef)
	slog.Info("building buildx from source", "repo", repoURL, "ref", refOrHead(ref))

	if err := verifySourceRef(ctx, repoURL, ref); err != nil {
		return err
	}

	dest, err := os.MkdirTemp("", "buildx-binaries-")
	if err != nil {
		return fmt.Errorf("creating build output dir: %w", err)
	}
	defer os.RemoveAll(dest)

	args := []string{
		"buildx", "build",
		"--target", "binaries",
		"--output", "type=local,dest=" + dest,
		sourceRef,
	}
	if _, err := runner.Run(ctx, "docker", args...); err != nil {
		return fmt.Errorf("building buildx from %s: %w", repoURL, err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "buildx"))
	if err != nil {
		return fmt.Errorf("reading built binary: %w", err)
	}
	return installBinary(pluginDir, data)
}

// SplitSourceRef splits "url#ref" into its parts. An absent ref returns "".
func SplitSourceRef(sourceRef string) (repoURL, ref string) {
	if idx := strings.Index(sourceRef, "#"); idx >= 0 {
		return sourceRef[:idx], sourceRef[idx+1:]
	}
	return sourceRef, ""
}

// verifySourceRef lists the remote and confirms the requested ref exists
// before committing to a long source build. A listing failure is only a
// warning; a listing that succeeds without the ref is fatal.
func verifySourceRef(ctx context.Context, repoURL, ref string) error {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{repoURL},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		slog.Warn("could not list source remote, continuing", "repo", repoURL, "error", err)
		return nil
	}

	want := refOrHead(ref)
	for _, r := range refs {
		if matchesRef(r.Name(), want) || (ref != "" && strings.HasPrefix(r.Hash().String(), ref)) {
			slog.Info("resolved source ref", "ref", want, "commit", r.Hash().String())
			return nil
		}
	}
	return fmt.Errorf("ref %q not found on %s", want, repoURL)
}

func refOrHead(ref string) string {
	if ref == "" {
		return "HEAD"
	}
	return ref
}

func matchesRef(name plumbing.ReferenceName, want string) bool {
	if string(name) == want {
		return true
	}
	return name.Short() == want || (want == "HEAD" && name == plumbing.HEAD)
}

// installRelease downloads the release artifact matching version for the
// current OS/architecture and installs it into the plugin directory. The
// artifact and the release checksum manifest are fetched concurrently; the
// binary's digest is verified when the manifest is published.
func installRelease(ctx context.Context, version, pluginDir string) error {
	tag, err := resolveReleaseTag(ctx, version)
	if err != nil {
		return err
	}

	artifact, err := artifactName(tag, runtime.GOOS, runtime.GOARCH)
	if err != nil {
		return err
	}
	slog.Info("downloading buildx release", "tag", tag, "artifact", artifact)

	var (
		binary []byte
		sums   map[string]string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		binary, err = fetch(gctx, fmt.Sprintf("%s/%s/%s", releaseDownloadBase, tag, artifact))
		if err != nil {
			return fmt.Errorf("downloading %s: %w", artifact, err)
		}
		return nil
	})
	g.Go(func() error {
		data, err := fetch(gctx, fmt.Sprintf("%s/%s/checksums.txt", releaseDownloadBase, tag))
		if err != nil {
			// Older releases ship no checksum manifest.
			slog.Debug("no checksum manifest for release", "tag", tag, "error", err)
			return nil
		}
		sums = parseChecksums(data)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if want, ok := sums[artifact]; ok {
		got := sha256.Sum256(binary)
		if hex.EncodeToString(got[:]) != want {
			return fmt.Errorf("checksum mismatch for %s", artifact)
		}
	}

	return installBinary(pluginDir, binary)
}

// resolveReleaseTag normalizes a requested version to a release tag,
// resolving "latest" through the GitHub releases API.
func resolveReleaseTag(ctx context.Context, version string) (string, error) {
	if version != "latest" {
		return "v" + strings.TrimPrefix(version, "v"), nil
	}

	data, err := fetch(ctx, latestReleaseAPI)
	if err != nil {
		return "", fmt.Errorf("resolving latest buildx release: %w", err)
	}
	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal(data, &release); err != nil {
		return "", fmt.Errorf("decoding latest release: %w", err)
	}
	if release.TagName == "" {
		return "", fmt.Errorf("latest release has no tag name")
	}
	return release.TagName, nil
}

// artifactName maps a GOOS/GOARCH pair to the published release artifact.
func artifactName(tag, goos, goarch string) (string, error) {
	arch, ok := map[string]string{
		"amd64":   "amd64",
		"arm64":   "arm64",
		"arm":     "arm-v7",
		"ppc64le": "ppc64le",
		"riscv64": "riscv64",
		"s390x":   "s390x",
	}[goarch]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}

	switch goos {
	case "linux", "darwin":
		return fmt.Sprintf("buildx-%s.%s-%s", tag, goos, arch), nil
	case "windows":
		return fmt.Sprintf("buildx-%s.windows-%s.exe", tag, arch), nil
	}
	return "", fmt.Errorf("%w: %s/%s", ErrUnsupportedPlatform, goos, goarch)
}

// parseChecksums parses a "digest  filename" manifest into a lookup map.
func parseChecksums(data []byte) map[string]string {
	sums := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 {
			sums[fields[1]] = fields[0]
		}
	}
	return sums
}

// installBinary writes the plugin binary into the plugin directory with
// the executable bit set, creating the directory as needed.
func installBinary(pluginDir string, data []byte) error {
	if err := os.MkdirAll(pluginDir, 0o755); err != nil {
		return fmt.Errorf("creating plugin dir: %w", err)
	}
	path := filepath.Join(pluginDir, pluginName)
	if err := os.WriteFile(path, data, 0o755); err != nil {
		return fmt.Errorf("installing %s: %w", path, err)
	}

	// Re-assert the mode: WriteFile does not chmod pre-existing files.
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("marking %s executable: %w", path, err)
	}
	slog.Info("installed buildx plugin", "path", path)
	return nil
}

// fetch downloads a URL into memory, failing on any non-2xx status.
func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return body, nil
}
