package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# synthesis engine: piper, gtts, mock or auto
engine: "auto"
# voice identifier, engine default if empty
voice: ""
# speech rate (0.5 to 2.0)
rate: 1.0
# pitch (0.0 to 2.0)
pitch: 1.0
# volume (0.0 to 1.0)
volume: 1.0
# maximum utterance length in characters
chunk_size: 200
# skip the TUI and log progress instead
plain: false

piper:
  # path to the .onnx voice model
  model: ""
  # model config, defaults to the model path with a .json extension
  config: ""
  sample_rate: 22050

gtts:
  language: "en"
  requests_per_minute: 50

cache:
  enabled: true
  # cache directory, platform default if empty
  dir: ""
  memory_mb: 64
  disk_mb: 512
`

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Edit the recite config file",
	Long:    paragraph(fmt.Sprintf("\n%s the recite config file. We'll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.", keyword("Edit"))),
	Example: paragraph("recite config\nrecite config --config path/to/recite.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}
		c := exec.Command(editor, configFile) //nolint:gosec
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable to create directory: %w", err)
		}
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
