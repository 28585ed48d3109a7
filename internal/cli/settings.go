package cli

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/matzehuels/psdlayout/pkg/errors"
)

// Settings holds per-user defaults for the extract command.
//
//	group = "photobooth_images"
//	output_image = "/srv/photobooth/userdata/canvas_front.png"
//	output_json = "/srv/photobooth/userdata/merge_definitions.json"
//	config = "/srv/photobooth/config/config.json"
type Settings struct {
	Group       string `toml:"group"`
	OutputImage string `toml:"output_image"`
	OutputJSON  string `toml:"output_json"`
	Config      string `toml:"config"`
}

// loadSettings reads the settings file at path. When explicit is false a
// missing file yields empty settings; an explicitly requested file must
// exist. Unknown keys are logged and ignored.
func loadSettings(logger *log.Logger, path string, explicit bool) (Settings, error) {
	var s Settings
	if path == "" {
		return s, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			logger.Debug("no settings file", "path", path)
			return s, nil
		}
		return s, errors.Wrap(errors.ErrCodeInvalidInput, err, "settings file")
	}

	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse settings %s", path)
	}
	for _, key := range md.Undecoded() {
		logger.Warn("unknown settings key", "key", key.String(), "path", path)
	}
	logger.Debug("loaded settings", "path", path)
	return s, nil
}

// settingsFor loads the settings selected by --settings, falling back to
// the default location.
func (c *CLI) settingsFor(logger *log.Logger) (Settings, error) {
	if c.settingsPath != "" {
		return loadSettings(logger, c.settingsPath, true)
	}
	path, err := defaultSettingsPath()
	if err != nil {
		logger.Debug("no config directory", "error", err)
		return Settings{}, nil
	}
	return loadSettings(logger, path, false)
}

// overlay sets *dst to the settings value v unless the named flag was given
// on the command line or v is empty.
func overlay(flags *pflag.FlagSet, name string, dst *string, v string) {
	if v == "" || flags.Changed(name) {
		return
	}
	*dst = v
}
