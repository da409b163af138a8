package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// initializer merges the configuration sources into the final config.
type initializer struct {
	Common *CommonConfig
}

// parseConfig reads the JSON configuration file, if there is one.
func (i *initializer) parseConfig(args *Args) error {
	configFile := args.ConfigFile
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		configFile = filepath.Join(home, ".tved.json")
	}

	fd, err := os.Open(configFile)
	if err != nil {
		if args.ConfigFile == "" {
			// Default config file is optional.
			return nil
		}
		return err
	}
	defer fd.Close()

	return json.NewDecoder(fd).Decode(i.Common)
}

// transformConfig applies environment variables and command-line
// arguments on top of the file/default configuration.
func (i *initializer) transformConfig(args *Args) error {
	if Env("TVED_NO_SMARTINDENT") {
		i.Common.SmartIndent = false
	}
	if Env("TVED_NO_FIXCR") {
		i.Common.FixCR = false
	}
	if Env("TVED_NOKEEP") {
		i.Common.NoKeep = true
	}
	i.Common.LogDir = EnvStr("TVED_LOG_DIR", i.Common.LogDir)

	if args.LogDir != "" {
		i.Common.LogDir = args.LogDir
	}
	if args.TabSize > 0 {
		i.Common.TabSize = args.TabSize
	}
	if args.NoSmartIndent {
		i.Common.SmartIndent = false
	}
	if args.NoFixCR {
		i.Common.FixCR = false
	}
	if args.KeepBackup {
		i.Common.NoKeep = false
	}
	if args.SaveInode {
		i.Common.SaveInode = true
	}
	if args.CaseInsensitive {
		i.Common.CaseSensitive = false
	}
	if args.SSHPort > 0 {
		i.Common.SSHPort = args.SSHPort
	}
	if args.SSHPrivateKeyFilePath != "" {
		i.Common.SSHPrivateKeyFilePath = args.SSHPrivateKeyFilePath
	}
	if args.TrustAllHosts {
		i.Common.SSHTrustAllHosts = true
	}

	return nil
}
