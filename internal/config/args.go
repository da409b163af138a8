package config

// Args holds the parsed command-line arguments relevant to the
// configuration layer.
type Args struct {
	ConfigFile            string
	LogDir                string
	LogLevel              string
	Quiet                 bool
	Debug                 bool
	TabSize               int
	NoSmartIndent         bool
	NoFixCR               bool
	KeepBackup            bool
	SaveInode             bool
	CaseInsensitive       bool
	SSHPort               int
	SSHPrivateKeyFilePath string
	TrustAllHosts         bool
}
