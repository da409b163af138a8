package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tved/tved/internal/config"
	"github.com/tved/tved/internal/editor"
	"github.com/tved/tved/internal/io/logger"
	"github.com/tved/tved/internal/version"
)

// The evil begins here.
func main() {
	var args config.Args
	var displayVersion bool

	flag.BoolVar(&args.Quiet, "quiet", false, "Quiet output mode")
	flag.BoolVar(&args.Debug, "debug", false, "Enable debug log")
	flag.BoolVar(&displayVersion, "version", false, "Display version")
	flag.BoolVar(&args.NoSmartIndent, "noSmartIndent", false, "Disable smart indent")
	flag.BoolVar(&args.NoFixCR, "noFixCR", false, "Keep CR bytes on input")
	flag.BoolVar(&args.KeepBackup, "keepBackup", false, "Keep backup files after save")
	flag.BoolVar(&args.SaveInode, "saveInode", false, "Save in place, keeping the inode")
	flag.BoolVar(&args.CaseInsensitive, "ignoreCase", false, "Case insensitive search")
	flag.BoolVar(&args.TrustAllHosts, "trustAllHosts", false, "Trust all unknown host keys")
	flag.IntVar(&args.TabSize, "tabSize", 0, "Tab stop width")
	flag.IntVar(&args.SSHPort, "port", 0, "SSH port for remote pipes")
	flag.StringVar(&args.ConfigFile, "cfg", "", "Config file path")
	flag.StringVar(&args.LogDir, "logDir", "", "Log dir")
	flag.StringVar(&args.LogLevel, "logLevel", "info", "Log level")
	flag.StringVar(&args.SSHPrivateKeyFilePath, "key", "", "Path to private key")

	flag.Parse()
	config.Setup(&args)
	if displayVersion {
		version.PrintAndExit()
	}

	if os.Getenv("HOME") == "" {
		fmt.Fprintln(os.Stderr, "HOME is not set")
		os.Exit(0)
	}
	// children must parse tool output reliably
	os.Setenv("LANG", "C")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Start(ctx, logger.Modes{
		Debug:  args.Debug,
		Quiet:  args.Quiet,
		LogDir: config.Common.LogDir,
	})

	ed := editor.New()
	for _, spec := range fileArgs(flag.Args()) {
		if err := ed.AddFile(spec.path); err != nil {
			logger.Error("open", spec.path, err)
			continue
		}
		if spec.lineno > 0 {
			if b := ed.Current(); b != nil {
				if lp := b.GotoLineno(spec.lineno); lp != nil {
					b.SetPosition(spec.lineno, lp)
				}
			}
		}
	}
	if ed.Ring.Size == 0 {
		if _, err := ed.ScratchBuffer("*scratch*"); err != nil {
			logger.FatalExit(err)
		}
	}

	term, err := newTerminal(ctx, cancel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(0)
	}
	defer term.restore()

	ed.Run(ctx, term, term, term)
	logger.Flush()
	os.Exit(0)
}

type fileSpec struct {
	path   string
	lineno int
}

// fileArgs parses the positional arguments: FILE, FILE +N, +N FILE
// and FILE:N.
func fileArgs(argv []string) []fileSpec {
	var specs []fileSpec
	pending := 0

	for _, arg := range argv {
		if strings.HasPrefix(arg, "+") {
			if n, err := strconv.Atoi(arg[1:]); err == nil {
				if len(specs) > 0 && specs[len(specs)-1].lineno == 0 {
					specs[len(specs)-1].lineno = n
				} else {
					pending = n
				}
				continue
			}
		}
		spec := fileSpec{path: arg, lineno: pending}
		pending = 0
		if i := strings.LastIndexByte(arg, ':'); i > 0 {
			if n, err := strconv.Atoi(arg[i+1:]); err == nil {
				spec.path = arg[:i]
				spec.lineno = n
			}
		}
		specs = append(specs, spec)
	}
	return specs
}
