package settings

import (
	"dmirror/internal/log"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Settings struct {
	SrcDir   string
	DstDir   string
	Every    time.Duration
	LogLevel log.Level
	LogFile  string
}

//profile maps the keys of a -config TOML file. Every key is optional; values
//given on the command line always win over the file.
type profile struct {
	Source  string `toml:"source"`
	Target  string `toml:"target"`
	Every   string `toml:"every"`
	LogLvl  string `toml:"loglvl"`
	LogFile string `toml:"logfile"`
}

//New parses commandArgs ("dmirror [flags] [source] target") into Settings.
//With a single path argument the current working directory is mirrored into it.
func New(commandArgs []string, errorHandling flag.ErrorHandling) (*Settings, error) {
	stg := new(Settings)
	flagSet := flag.NewFlagSet("Directory Mirror CLI", errorHandling)

	var configPath, level string
	flagSet.StringVar(&configPath, "config", "",
		"path to a TOML profile supplying defaults for the other options")
	flagSet.DurationVar(&stg.Every, "every", 0,
		"if set, the mirror pass is repeated on this interval until interruption, "+
			"otherwise the program performs a single pass and exits")
	flagSet.StringVar(&level, "loglvl", "",
		fmt.Sprintf("level of logging, permitted values are: %v, %v, %v, %v",
			log.DebugLevel, log.InfoLevel, log.WarnLevel, log.ErrorLevel),
	)
	flagSet.StringVar(&stg.LogFile, "logfile", "",
		"if set, logs are written to this file, otherwise - to stderr")

	flagSet.Parse(commandArgs)

	var fileCfg profile
	var meta toml.MetaData
	if configPath != "" {
		var err error
		if meta, err = toml.DecodeFile(configPath, &fileCfg); err != nil {
			return nil, fmt.Errorf("cannot load profile %q: %v", configPath, err)
		}
	}

	src, dst := strings.TrimSpace(fileCfg.Source), strings.TrimSpace(fileCfg.Target)
	switch flagSet.NArg() {
	case 0:
		// both paths may still come from the profile
	case 1:
		dst = flagSet.Arg(0)
	case 2:
		src, dst = flagSet.Arg(0), flagSet.Arg(1)
	default:
		return nil, fmt.Errorf("expected at most two path arguments, got %d", flagSet.NArg())
	}
	if dst == "" {
		return nil, errors.New("the target directory must be given")
	}
	if src == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve the current working directory: %v", err)
		}
		src = wd
	}

	var err error = nil
	if stg.SrcDir, err = filepath.Abs(src); err != nil {
		return nil, fmt.Errorf("path %q cannot be converted to absolute: %v", src, err)
	}
	if stg.DstDir, err = filepath.Abs(dst); err != nil {
		return nil, fmt.Errorf("path %q cannot be converted to absolute: %v", dst, err)
	}
	if stg.SrcDir == stg.DstDir {
		return nil, errors.New("the source and target directories cannot be the same")
	}

	if stg.Every == 0 && meta.IsDefined("every") {
		if stg.Every, err = time.ParseDuration(strings.TrimSpace(fileCfg.Every)); err != nil {
			return nil, fmt.Errorf("profile key \"every\" is not a duration: %v", err)
		}
	}
	if level == "" {
		level = strings.TrimSpace(fileCfg.LogLvl)
	}
	if level == "" {
		level = log.InfoLevel
	}
	if !log.Level(level).IsValid() {
		return nil, fmt.Errorf("logging level %q does not exist", level)
	}
	stg.LogLevel = log.Level(strings.ToLower(level))
	if stg.LogFile == "" {
		stg.LogFile = strings.TrimSpace(fileCfg.LogFile)
	}

	return stg, nil
}

//Validate checks that the settings point at a usable source directory. The
//target is not checked: the engine creates it when it is absent.
func (stg *Settings) Validate() error {
	if err := validateDirectoryPath(stg.SrcDir); err != nil {
		return fmt.Errorf("the source directory is invalid: %v", err)
	}
	return nil
}

func validateDirectoryPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path %q is not a directory path", path)
	}
	return nil
}
