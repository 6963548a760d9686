package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/brogergvhs/mangatoc/internal/providers"
)

// DefaultLabel is the profile created by `config init`. It cannot be removed
// and is what remove falls back to.
const DefaultLabel = "Default"

var (
	ErrNoConfig        = errors.New("no config selected")
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
)

const appDir = "mangatoc"

// userDir picks the first of the Windows variable, the XDG variable and the
// home fallback that is available.
func userDir(winEnv, xdgEnv string, fallback ...string) string {
	if v := os.Getenv(winEnv); v != "" {
		return filepath.Join(v, appDir)
	}
	if v := os.Getenv(xdgEnv); v != "" {
		return filepath.Join(v, appDir)
	}

	home, _ := os.UserHomeDir()
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, appDir)...)
}

func ConfigRoot() string {
	return userDir("APPDATA", "XDG_CONFIG_HOME", ".config")
}

// DataRoot holds the catalog database when no dsn is configured.
func DataRoot() string {
	return userDir("LOCALAPPDATA", "XDG_DATA_HOME", ".local", "share")
}

func ConfigsDir() string {
	return filepath.Join(ConfigRoot(), "configs")
}

func CurrentLabelFile() string {
	return filepath.Join(ConfigRoot(), "current_config")
}

func ensureDirs() error {
	return os.MkdirAll(ConfigsDir(), 0o755)
}

func profilePath(label string) (string, error) {
	label = strings.TrimSpace(label)
	switch {
	case label == "":
		return "", errors.New("label cannot be empty")
	case label == "." || label == ".." || strings.ContainsAny(label, `/\`):
		return "", fmt.Errorf("invalid label %q", label)
	}

	return filepath.Join(ConfigsDir(), label+".yaml"), nil
}

// ProfilePath returns the file of an existing profile.
func ProfilePath(label string) (string, error) {
	path, err := profilePath(label)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %q", ErrProfileNotFound, label)
	}

	return path, nil
}

func CurrentLabel() (string, error) {
	b, err := os.ReadFile(CurrentLabelFile())
	if os.IsNotExist(err) {
		return "", ErrNoConfig
	}
	if err != nil {
		return "", err
	}

	label := strings.TrimSpace(string(b))
	if label == "" {
		return "", ErrNoConfig
	}
	return label, nil
}

func ActiveConfigPath() (string, error) {
	label, err := CurrentLabel()
	if err != nil {
		return "", err
	}

	return profilePath(label)
}

func setCurrent(label string) error {
	if err := ensureDirs(); err != nil {
		return err
	}
	return os.WriteFile(CurrentLabelFile(), []byte(label), 0o644)
}

// Profile is one saved config together with the settings that decide where
// a toc run reads its sources and stores its catalogs.
type Profile struct {
	Label  string
	Path   string
	Active bool

	// Config is nil when the file does not parse; Err says why.
	Config *Config
	Err    error
}

// Sources loads the sources file the profile points at.
func (p Profile) Sources() ([]providers.Source, error) {
	if p.Config == nil {
		return nil, p.Err
	}
	return LoadSources(p.Config.SourcesFile)
}

// Store describes the catalog database of the profile. A mysql dsn is never
// shown since it may carry a password.
func (p Profile) Store() string {
	if p.Config == nil {
		return ""
	}
	if p.Config.DBDriver != "sqlite3" {
		return p.Config.DBDriver
	}
	return p.Config.DBDriver + ":" + p.Config.DBDSN
}

func readProfile(label, path, active string) Profile {
	p := Profile{Label: label, Path: path, Active: label == active}

	cfg, err := loadYAML(path)
	if err != nil {
		p.Err = err
		return p
	}
	normalizeDefaults(cfg)
	p.Config = cfg

	return p
}

// LoadProfile reads a single profile by label.
func LoadProfile(label string) (Profile, error) {
	path, err := ProfilePath(label)
	if err != nil {
		return Profile{}, err
	}

	active, _ := CurrentLabel()
	p := readProfile(label, path, active)
	return p, p.Err
}

// ListProfiles returns every profile sorted by label. Broken files are
// listed with Err set instead of failing the whole listing.
func ListProfiles() ([]Profile, error) {
	if err := ensureDirs(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(ConfigsDir())
	if err != nil {
		return nil, err
	}

	active, _ := CurrentLabel()
	var out []Profile

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".yaml" {
			continue
		}

		label := strings.TrimSuffix(name, ".yaml")
		out = append(out, readProfile(label, filepath.Join(ConfigsDir(), name), active))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// SwitchProfile makes label the active profile. A profile whose file does
// not parse is refused, since every later toc run would fail on it.
func SwitchProfile(label string) (Profile, error) {
	p, err := LoadProfile(label)
	if err != nil {
		return p, fmt.Errorf("cannot switch to %q: %w", label, err)
	}

	if err := setCurrent(p.Label); err != nil {
		return p, err
	}
	p.Active = true

	return p, nil
}

// AddProfile saves cfg as a new profile. A nil cfg stores the defaults.
func AddProfile(label string, cfg *Config) (string, error) {
	path, err := profilePath(label)
	if err != nil {
		return "", err
	}
	if err := ensureDirs(); err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %q", ErrProfileExists, label)
	}

	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := SaveYAML(cfg, path); err != nil {
		return "", err
	}

	return path, nil
}

// ImportProfile copies an existing config file into a new profile after
// checking that it parses.
func ImportProfile(label, srcPath string) (string, error) {
	cfg, err := loadYAML(srcPath)
	if err != nil {
		return "", fmt.Errorf("cannot import %s: %w", srcPath, err)
	}

	return AddProfile(label, cfg)
}

func RenameProfile(oldLabel, newLabel string) error {
	oldPath, err := ProfilePath(oldLabel)
	if err != nil {
		return err
	}
	newPath, err := profilePath(newLabel)
	if err != nil {
		return err
	}
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("%w: %q", ErrProfileExists, newLabel)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := CurrentLabel(); active == oldLabel {
		return setCurrent(newLabel)
	}
	return nil
}

// RemoveProfile deletes a profile. Removing the active one switches back to
// the Default profile; fellBack reports that.
func RemoveProfile(label string) (fellBack bool, err error) {
	if strings.TrimSpace(label) == DefaultLabel {
		return false, errors.New("cannot remove the Default config")
	}

	path, err := ProfilePath(label)
	if err != nil {
		return false, err
	}

	if active, _ := CurrentLabel(); active == label {
		if _, err := SwitchProfile(DefaultLabel); err != nil {
			return false, fmt.Errorf("failed switching to Default: %w", err)
		}
		fellBack = true
	}

	return fellBack, os.Remove(path)
}

// ResetProfile rewrites a profile with the default values. Unless all is
// set the sources file and the catalog database are kept, so catalogs
// stored earlier stay reachable.
func ResetProfile(label string, all bool) (*Config, error) {
	p, err := LoadProfile(label)
	if err != nil && p.Path == "" {
		return nil, err
	}

	cfg := DefaultConfig()
	if !all && p.Config != nil {
		cfg.SourcesFile = p.Config.SourcesFile
		cfg.DefaultSource = p.Config.DefaultSource
		cfg.DBDriver = p.Config.DBDriver
		cfg.DBDSN = p.Config.DBDSN
	}

	if err := SaveYAML(cfg, p.Path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitDefaultConfig creates the Default profile and activates it. If it
// already exists it is only activated and os.ErrExist is returned.
func InitDefaultConfig() (string, error) {
	path, err := AddProfile(DefaultLabel, nil)
	if errors.Is(err, ErrProfileExists) {
		path, _ = profilePath(DefaultLabel)
		if err := setCurrent(DefaultLabel); err != nil {
			return "", err
		}
		return path, os.ErrExist
	}
	if err != nil {
		return "", err
	}

	return path, setCurrent(DefaultLabel)
}
