package securefile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/cinderlabs/cinder-client/internal/constants"
)

// EnvFolder maps CINDER_ENV to the subfolder used for local files. Prod is
// the empty folder.
func EnvFolder() (string, error) {
	raw := strings.TrimSpace(os.Getenv(constants.EnvVar))
	switch strings.ToLower(raw) {
	case "", "prod", "production":
		return "", nil
	case "local":
		return "local", nil
	case "dev", "develop", "development":
		return "develop", nil
	default:
		return "", errors.Errorf("invalid %s %q (allowed: local, develop, prod)", constants.EnvVar, raw)
	}
}

// PathCandidates lists where app keeps filename, most preferred first:
// $SNAP_REAL_HOME/.config, $HOME/.config, then os.UserConfigDir.
func PathCandidates(app, filename string) ([]string, error) {
	if app == "" || filename == "" {
		return nil, errors.New("app and filename must not be empty")
	}
	folder, err := EnvFolder()
	if err != nil {
		return nil, err
	}

	var paths []string
	seen := map[string]bool{}
	add := func(base string) {
		p := filepath.Join(base, app, folder, filename)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	if realHome := os.Getenv("SNAP_REAL_HOME"); realHome != "" {
		add(filepath.Join(realHome, ".config"))
	}
	if home := os.Getenv("HOME"); home != "" {
		add(filepath.Join(home, ".config"))
	}
	if dir, err := os.UserConfigDir(); err == nil {
		add(dir)
	} else if len(paths) == 0 {
		return nil, errors.Wrap(err, "user config dir")
	}
	return paths, nil
}

// FirstExisting returns the first candidate present on disk, or the most
// preferred one when none exists yet.
func FirstExisting(candidates []string) string {
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}
