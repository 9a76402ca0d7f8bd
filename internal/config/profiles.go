package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
)

// DefaultLabel is the profile created by init; it cannot be removed.
const DefaultLabel = "Default"

var ErrNoConfig = errors.New("no config selected")

// ConfigRoot is the per-user directory holding the config profiles.
func ConfigRoot() string {
	return filepath.Join(xdg.ConfigHome, "noveld")
}

func ConfigsDir() string {
	return filepath.Join(ConfigRoot(), "configs")
}

func CurrentLabelFile() string {
	return filepath.Join(ConfigRoot(), "current_config")
}

// ForSeries returns the defaults for a new profile harvesting series: its
// own data folder under the XDG data home, books collected in the user's
// documents folder.
func ForSeries(series string) *Config {
	c := DefaultConfig()
	c.DataDir = filepath.Join(xdg.DataHome, "noveld", series)
	c.Output = filepath.Join(xdg.UserDirs.Documents, "noveld")

	return c
}

// Profile is one stored config. Config is nil when the file does not
// parse; Err says why.
type Profile struct {
	Label  string
	Path   string
	Active bool
	Config *Config
	Err    error
}

func profilePath(label string) string {
	return filepath.Join(ConfigsDir(), label+".yaml")
}

func checkLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return errors.New("label cannot be empty")
	}
	if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
		return fmt.Errorf("invalid label %q", label)
	}

	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func ensureDirs() error {
	return os.MkdirAll(ConfigsDir(), 0755)
}

func setCurrent(label string) error {
	return os.WriteFile(CurrentLabelFile(), []byte(label), 0644)
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

	return profilePath(label), nil
}

// ConfigPathByLabel returns the profile file for label, which must exist.
func ConfigPathByLabel(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}

	path := profilePath(label)
	if !exists(path) {
		return "", fmt.Errorf("config %q does not exist", label)
	}

	return path, nil
}

// LoadProfile reads a stored profile with defaults applied.
func LoadProfile(label string) (*Config, error) {
	path, err := ConfigPathByLabel(label)
	if err != nil {
		return nil, err
	}

	cfg, err := loadYAML(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	normalizeDefaults(cfg)

	return cfg, nil
}

// ListProfiles returns every stored profile sorted by label.
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
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}

		label := strings.TrimSuffix(e.Name(), ".yaml")
		cfg, err := LoadProfile(label)
		out = append(out, Profile{
			Label:  label,
			Path:   profilePath(label),
			Active: label == active,
			Config: cfg,
			Err:    err,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func SwitchConfig(label string) error {
	if _, err := ConfigPathByLabel(label); err != nil {
		return err
	}

	return setCurrent(label)
}

// CreateConfig stores cfg as a new profile and returns its path.
func CreateConfig(label string, cfg *Config) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}
	if err := ensureDirs(); err != nil {
		return "", err
	}

	path := profilePath(label)
	if exists(path) {
		return "", fmt.Errorf("config %q already exists", label)
	}

	if err := SaveYAML(cfg, path); err != nil {
		return "", err
	}

	return path, nil
}

// InitDefaultConfig creates the Default profile from cfg and makes it
// active. An existing Default profile is kept and os.ErrExist returned.
func InitDefaultConfig(cfg *Config) (string, error) {
	path, err := CreateConfig(DefaultLabel, cfg)
	if err != nil {
		if !exists(profilePath(DefaultLabel)) {
			return "", err
		}
		path, err = profilePath(DefaultLabel), os.ErrExist
	}

	if serr := setCurrent(DefaultLabel); serr != nil {
		return "", serr
	}

	return path, err
}

// ResetConfig overwrites the profile label with cfg.
func ResetConfig(label string, cfg *Config) (string, error) {
	path, err := ConfigPathByLabel(label)
	if err != nil {
		return "", err
	}

	return path, SaveYAML(cfg, path)
}

func RenameConfig(oldLabel, newLabel string) error {
	oldPath, err := ConfigPathByLabel(oldLabel)
	if err != nil {
		return err
	}
	if err := checkLabel(newLabel); err != nil {
		return err
	}

	newPath := profilePath(newLabel)
	if exists(newPath) {
		return fmt.Errorf("config %q already exists", newLabel)
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		return err
	}

	if active, _ := CurrentLabel(); active == oldLabel {
		return setCurrent(newLabel)
	}

	return nil
}

// RemoveConfig deletes a profile. Removing the active one switches back to
// Default; the returned label is the profile switched to, if any.
func RemoveConfig(label string) (string, error) {
	if label == DefaultLabel {
		return "", fmt.Errorf("cannot remove the %s config", DefaultLabel)
	}

	path, err := ConfigPathByLabel(label)
	if err != nil {
		return "", err
	}

	switched := ""
	if active, _ := CurrentLabel(); active == label {
		if err := SwitchConfig(DefaultLabel); err != nil {
			return "", fmt.Errorf("failed switching to %s: %w", DefaultLabel, err)
		}
		switched = DefaultLabel
	}

	return switched, os.Remove(path)
}
