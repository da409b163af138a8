package config

import (
	"os"
	"path/filepath"

	"github.com/tved/tved/internal/constants"
)

// CommonConfig stores the editor settings.
type CommonConfig struct {
	// TabSize is the tab stop width used for visual columns.
	TabSize int
	// SmartIndent makes split lines inherit the prefix blanks.
	SmartIndent bool
	// FixCR drops CR before LF on input and in pipe output.
	FixCR bool
	// NoKeep removes the backup file after a successful save.
	NoKeep bool
	// SaveInode saves in place instead of unlink-then-create.
	SaveInode bool
	// Shadow enables shadow marks for skipped hidden lines.
	Shadow bool
	// MoveReset resets the selection after a selection move.
	MoveReset bool
	// CloseOver drops the *sh* buffer after a selection overwrite.
	CloseOver bool
	// CaseSensitive controls regex compilation for search and filter.
	CaseSensitive bool
	// LogDir is where daily log files are created.
	LogDir string
	// Paths of external tools.
	DiffPath string
	ShPath   string
	MakePath string
	FindPath string
	// SSHPort and SSHPrivateKeyFilePath configure the remote pipe.
	SSHPort               int
	SSHPrivateKeyFilePath string
	// SSHTrustAllHosts skips known_hosts verification of remote pipe
	// targets. Off unless explicitly requested.
	SSHTrustAllHosts bool
	// BackupExt is appended to the file name for backups.
	BackupExt string
}

func newDefaultCommonConfig() *CommonConfig {
	home, _ := os.UserHomeDir()

	return &CommonConfig{
		TabSize:       constants.DefaultTabSize,
		SmartIndent:   true,
		FixCR:         true,
		NoKeep:        false,
		SaveInode:     false,
		Shadow:        true,
		MoveReset:     false,
		CloseOver:     true,
		CaseSensitive: true,
		LogDir:        filepath.Join(home, ".tved", "log"),
		DiffPath:      "/usr/bin/diff",
		ShPath:        "/bin/sh",
		MakePath:      "/usr/bin/make",
		FindPath:      "/usr/bin/find",
		SSHPort:       22,
		BackupExt:     "~",
	}
}
