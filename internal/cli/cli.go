package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"runtime/debug"
	"strings"

	"github.com/pentops/log.go/log"
	"github.com/pentops/protoconv/internal/convert"
	"github.com/pentops/protoconv/internal/emit"
	"github.com/pentops/runner/commander"
	"github.com/ryanuber/go-glob"
)

// Version is the module version from the build info unless set with
// -ldflags -X.
var Version = ""

func init() {
	if Version == "" {
		buildInfo, ok := debug.ReadBuildInfo()
		if ok {
			Version = buildInfo.Main.Version
		}
	}
	if Version == "" {
		Version = "local"
	}
}

var Commit = func() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return "dev"
}()

func CommandSet() *commander.CommandSet {
	cmdGroup := commander.NewCommandSet()
	cmdGroup.Add("version", commander.NewCommand(runVersion))

	cmdGroup.Add("convert", commander.NewCommand(runConvert))
	cmdGroup.Add("targets", commander.NewCommand(runTargets))
	cmdGroup.Add("describe", commander.NewCommand(runDescribe))
	cmdGroup.Add("verify", commander.NewCommand(runVerify))

	return cmdGroup
}

func runVersion(ctx context.Context, cfg struct{}) error {
	fmt.Printf("protoconv version %v (%s)\n", Version, Commit)
	return nil
}

func runTargets(ctx context.Context, cfg struct{}) error {
	for _, target := range emit.Targets() {
		fmt.Printf("%s\t%s\n", target, target.Extension())
	}
	return nil
}

func runConvert(ctx context.Context, cfg struct {
	InputConfig
	Lang string `flag:"lang" env:"PROTOCONV_LANG" default:"swift" description:"Target language: typescript, swift, kotlin or dart"`
	Out  string `flag:"out" default:"" description:"Output directory, one file per input. Prints to stdout when empty"`
}) error {
	target, err := emit.ParseTarget(cfg.Lang)
	if err != nil {
		return err
	}

	var outWriter *fileWriter
	if cfg.Out != "" {
		outWriter = &fileWriter{dir: cfg.Out}
	}

	return cfg.EachFile(ctx, func(ctx context.Context, pathname string, data []byte) error {
		ctx = log.WithFields(ctx, map[string]interface{}{
			"file":   pathname,
			"target": target.String(),
		})

		out := convert.ConvertDocument(ctx, string(data), target)

		if outWriter == nil {
			if cfg.Dir != "" {
				fmt.Printf("// %s\n", pathname)
			}
			fmt.Print(out)
			return nil
		}

		filename := OutputFilename(pathname, target)
		if err := outWriter.PutFile(ctx, filename, []byte(out)); err != nil {
			return err
		}
		log.WithField(ctx, "output", filename).Info("converted")
		return nil
	})
}

// OutputFilename swaps the extension of the input path for the target's,
// e.g. api/user.proto is api/user.kt
func OutputFilename(pathname string, target emit.Target) string {
	return strings.TrimSuffix(pathname, path.Ext(pathname)) + target.Extension()
}

// stdinName is used for stdin input where a filename is required.
const stdinName = "stdin.proto"

// InputConfig selects the documents a command runs over: a single file,
// stdin, or the .proto files of a directory.
type InputConfig struct {
	File string `flag:"file" required:"false" description:"Single file to read, - for stdin"`
	Dir  string `flag:"dir" required:"false" description:"Directory to walk for .proto files"`
	Glob string `flag:"glob" default:"" description:"Filter files in --dir by a glob on the relative path"`
}

func (cfg InputConfig) EachFile(ctx context.Context, doFile func(ctx context.Context, pathname string, data []byte) error) error {
	if cfg.File != "" {
		if cfg.Dir != "" {
			return fmt.Errorf("cannot specify both dir and file")
		}

		if cfg.File == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			return doFile(ctx, stdinName, data)
		}

		data, err := os.ReadFile(cfg.File)
		if err != nil {
			return err
		}
		return doFile(ctx, path.Base(cfg.File), data)
	}

	if cfg.Dir == "" {
		return fmt.Errorf("one of dir or file is required")
	}

	return runForProtoFiles(ctx, os.DirFS(cfg.Dir), cfg.Glob, doFile)
}

func runForProtoFiles(ctx context.Context, root fs.FS, pattern string, doFile func(ctx context.Context, pathname string, data []byte) error) error {
	err := fs.WalkDir(root, ".", func(pathname string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		if path.Ext(pathname) != ".proto" {
			return nil
		}

		if pattern != "" && !glob.Glob(pattern, pathname) {
			log.WithField(ctx, "file", pathname).Debug("skipped by glob")
			return nil
		}

		data, err := fs.ReadFile(root, pathname)
		if err != nil {
			return err
		}

		return doFile(ctx, pathname, data)
	})
	if err != nil {
		return err
	}
	return nil
}

type fileWriter struct {
	dir string
}

func (f *fileWriter) PutFile(ctx context.Context, filename string, data []byte) error {
	dir := path.Join(f.dir, path.Dir(filename))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(path.Join(f.dir, filename), data, 0644)
}
