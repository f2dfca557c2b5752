package settings

import (
	"dmirror/internal/log"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		commandArgs []string
		panic       bool
		wantErr     bool
		want        *Settings
	}{
		{name: "flag panic 1", commandArgs: []string{"-undefined"}, panic: true, wantErr: false, want: nil},
		{name: "flag panic 2", commandArgs: []string{"-every=nope"}, panic: true, wantErr: false, want: nil},
		{name: "flag panic 3", commandArgs: []string{"-loglvl"}, panic: true, wantErr: false, want: nil},
		{name: "no args", commandArgs: nil, panic: false, wantErr: true, want: nil},
		{name: "too many args", commandArgs: []string{"a", "b", "c"}, panic: false, wantErr: true, want: nil},
		{name: "bad level", commandArgs: []string{"-loglvl=nope", "d1", "d2"}, panic: false, wantErr: true, want: nil},
		{name: "same dirs", commandArgs: []string{"dir", "dir"}, panic: false, wantErr: true, want: nil},
		{
			name:        "target only",
			commandArgs: []string{"target_dir"},
			panic:       false,
			wantErr:     false,
			want: &Settings{
				SrcDir:   cwd(),
				DstDir:   abs("target_dir"),
				Every:    0,
				LogLevel: log.InfoLevel,
				LogFile:  "",
			},
		},
		{
			name:        "valid args",
			commandArgs: []string{"-every=3s", "-loglvl=debug", "-logfile=mirror.log", "dir1", "dir2"},
			panic:       false,
			wantErr:     false,
			want: &Settings{
				SrcDir:   abs("dir1"),
				DstDir:   abs("dir2"),
				Every:    3 * time.Second,
				LogLevel: log.DebugLevel,
				LogFile:  "mirror.log",
			},
		},
		{
			name:        "default args",
			commandArgs: []string{"dir1", "dir2"},
			panic:       false,
			wantErr:     false,
			want: &Settings{
				SrcDir:   abs("dir1"),
				DstDir:   abs("dir2"),
				Every:    0,
				LogLevel: log.InfoLevel,
				LogFile:  "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				stg *Settings
				err error
			)

			requires := require.New(t)
			if tt.panic {
				requires.Panics(func() {
					stg, err = New(tt.commandArgs, flag.PanicOnError)
				})
				return
			}

			requires.NotPanics(func() {
				stg, err = New(tt.commandArgs, flag.PanicOnError)
			})

			if tt.wantErr {
				requires.Error(err)
				requires.Nil(stg)
				return
			}

			requires.NoError(err)
			requires.NotNil(stg)
			requires.Equal(*tt.want, *stg)
		})
	}
}

func TestNewWithProfile(t *testing.T) {
	requires := require.New(t)

	path := writeProfile(t, requires, `
source = "profile_src"
target = "profile_dst"
every = "5m"
loglvl = "warn"
logfile = "profile.log"
`)

	stg, err := New([]string{"-config=" + path}, flag.PanicOnError)

	requires.NoError(err)
	requires.Equal(abs("profile_src"), stg.SrcDir)
	requires.Equal(abs("profile_dst"), stg.DstDir)
	requires.Equal(5*time.Minute, stg.Every)
	requires.Equal(log.Level(log.WarnLevel), stg.LogLevel)
	requires.Equal("profile.log", stg.LogFile)
}

func TestNewProfileDoesNotOverrideCommandLine(t *testing.T) {
	requires := require.New(t)

	path := writeProfile(t, requires, `
source = "profile_src"
target = "profile_dst"
every = "5m"
loglvl = "warn"
`)

	stg, err := New([]string{"-config=" + path, "-every=1s", "-loglvl=error", "arg_src", "arg_dst"},
		flag.PanicOnError)

	requires.NoError(err)
	requires.Equal(abs("arg_src"), stg.SrcDir)
	requires.Equal(abs("arg_dst"), stg.DstDir)
	requires.Equal(time.Second, stg.Every)
	requires.Equal(log.Level(log.ErrorLevel), stg.LogLevel)
}

func TestNewWithBrokenProfile(t *testing.T) {
	requires := require.New(t)

	tests := []struct {
		name    string
		content string
	}{
		{name: "not toml", content: `{"source": "x"}`},
		{name: "bad every", content: "target = \"d\"\nevery = \"yearly\""},
		{name: "bad level", content: "target = \"d\"\nloglvl = \"silent\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProfile(t, requires, tt.content)

			stg, err := New([]string{"-config=" + path}, flag.PanicOnError)

			requires.Error(err)
			requires.Nil(stg)
		})
	}
}

func TestValidate(t *testing.T) {
	requires := require.New(t)

	srcDir := t.TempDir()
	filePath := filepath.Join(srcDir, "file.txt")
	requires.NoError(os.WriteFile(filePath, []byte("x"), 0o644))

	requires.NoError((&Settings{SrcDir: srcDir}).Validate())
	requires.Error((&Settings{SrcDir: filepath.Join(srcDir, "missing")}).Validate())
	requires.Error((&Settings{SrcDir: filePath}).Validate())
}

func writeProfile(t *testing.T, req *require.Assertions, content string) string {
	path := filepath.Join(t.TempDir(), "profile.toml")
	req.NoError(os.WriteFile(path, []byte(content), 0o644))
	return path
}

func abs(path string) string {
	s, _ := filepath.Abs(path)
	return s
}

func cwd() string {
	wd, _ := os.Getwd()
	return wd
}
