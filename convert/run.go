package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime/debug"
	"strings"
	"time"

	"github.com/beevik/etree"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/ianaindex"

	"github.com/Usuiensan/xml-markdown/archive"
	"github.com/Usuiensan/xml-markdown/config"
	"github.com/Usuiensan/xml-markdown/convert/markdown"
	"github.com/Usuiensan/xml-markdown/images"
	"github.com/Usuiensan/xml-markdown/lawapi"
	"github.com/Usuiensan/xml-markdown/lawxml"
	"github.com/Usuiensan/xml-markdown/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	env.NoDirs, env.Overwrite, env.Offline = cmd.Bool("nodirs"), cmd.Bool("overwrite"), cmd.Bool("offline")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-zip-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if localSource(src) {
		abs, err := filepath.Abs(src)
		if err != nil {
			return err
		}
		return processLocal(ctx, abs, dst, log)
	}
	if env.Offline {
		return fmt.Errorf("input %q does not exist locally and network fetch is disabled", src)
	}
	return processRemote(ctx, src, dst, log)
}

// localSource reports whether the argument refers to something on disk,
// including a path pointing inside an archive. Anything else is treated as a
// law name or ID to be fetched from the API.
func localSource(src string) bool {
	for head := src; len(head) != 0; {
		head = strings.TrimSuffix(head, string(filepath.Separator))
		if _, err := os.Stat(head); err == nil {
			return true
		}
		head, _ = filepath.Split(head)
	}
	return false
}

// e-Gov law IDs look like 335AC0000000105: era year, law type, serial.
var reLawID = regexp.MustCompile(`^[0-9]{3}[A-Z]{2}[0-9]{10}$`)

// processRemote resolves a law name to its ID when necessary, downloads the
// law XML and converts it.
func processRemote(ctx context.Context, name, dst string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)
	client := lawapi.New(&env.Cfg.API, log)

	lawID := name
	if !reLawID.MatchString(name) {
		id, err := client.FindLawID(ctx, name)
		if err != nil {
			return fmt.Errorf("unable to resolve law name: %w", err)
		}
		log.Info("Resolved law name", zap.String("name", name), zap.String("law_id", id))
		lawID = id
	}

	doc, err := client.FetchLawData(ctx, lawID)
	if err != nil {
		return fmt.Errorf("unable to fetch law data: %w", err)
	}
	return processLaw(ctx, doc, lawID+".xml", dst, lawID, log)
}

// processLocal handles the disk-based inputs: a directory, an archive
// (optionally with a path inside), or a single law XML file.
func processLocal(ctx context.Context, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, tail, "", dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		if isLawFile(head) && len(tail) == 0 {
			file, err := os.Open(head)
			if err != nil {
				return fmt.Errorf("unable to open file (%s): %w", head, err)
			}
			defer file.Close()
			return processLawStream(ctx, file, filepath.Base(head), dst, log)
		}
		return fmt.Errorf("input was not recognized as law XML (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding law XML files and processes them.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		arc, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if arc {
			if err := processArchive(ctx, path, "", filepath.Dir(strings.TrimPrefix(path, dir)), dst, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		if !isLawFile(path) {
			log.Debug("Skipping file, not recognized as law XML or archive", zap.String("file", path))
			return nil
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		defer file.Close()

		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := processLawStream(ctx, file, src, dst, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
	return err
}

// processArchive walks all files inside archive, finds law XML files under
// "pathIn" and processes them.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	err = archive.Walk(path, pathIn, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !isLawInArchive(f) {
			log.Debug("Skipping file, not recognized as law XML", zap.String("archive", arc), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		cp := state.EnvFromContext(ctx).CodePage

		pathInArchive := f.FileHeader.Name
		if cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		if err := processLawStream(ctx, r, filepath.Join(pathOut, pathInArchive), dst, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
	return err
}

// processLawStream parses a raw law XML stream and converts it. Local files
// carry no law ID, so figure downloads are unavailable for them.
func processLawStream(ctx context.Context, r io.Reader, src, dst string, log *zap.Logger) error {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Permissive:    true,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return fmt.Errorf("unable to read law XML (%s): %w", src, err)
	}
	return processLaw(ctx, doc, src, dst, "", log)
}

// processLaw converts a single parsed law document. "src" is the source path
// relative to the original input (used to mirror directory structure on
// output), "dst" is the destination directory, "lawID" is set when the
// document came from the API.
func processLaw(ctx context.Context, doc *etree.Document, src, dst, lawID string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var outputName string

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		// when multiple laws are being processed one bad document must not
		// stop the batch
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	law, err := lawxml.Parse(doc, log)
	if err != nil {
		return fmt.Errorf("unable to parse law XML (%s): %w", src, err)
	}

	outputName = buildOutputPath(law, lawID, src, dst, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	opts := markdown.Options{
		NormalizeNumerals: env.Cfg.Document.Markdown.NormalizeNumerals,
		NormalizeUnicode:  env.Cfg.Document.Markdown.NormalizeUnicode,
		ForceHTMLTables:   env.Cfg.Document.Markdown.TableMode == config.TableModeHTML,
	}

	var cache *images.Cache
	if env.Cfg.Document.Images.Download && lawID != "" && !env.Offline {
		cache, err = images.Open(env.Cfg.Document.Images.CacheDir, env.Cfg.Document.Images.MaxWidth, log)
		if err != nil {
			log.Warn("Unable to open image cache, figures keep source references", zap.Error(err))
		} else {
			defer cache.Close()
			opts.FigURL = figResolver(ctx, cache, lawID, log)
		}
	}

	out := markdown.New(opts, log).Generate(law)
	if err := os.WriteFile(outputName, []byte(out), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	// Store conversion result for debugging
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s", filepath.Base(outputName)), outputName)
	}
	return nil
}

// figResolver returns the Fig src resolver used during generation: cache hit
// or download-and-store, falling back to the raw reference on any failure.
func figResolver(ctx context.Context, cache *images.Cache, lawID string, log *zap.Logger) func(string) string {
	env := state.EnvFromContext(ctx)
	client := lawapi.New(&env.Cfg.API, log)
	cacheDir := env.Cfg.Document.Images.CacheDir

	return func(src string) string {
		if name, ok, err := cache.Lookup(lawID, src); err == nil && ok {
			return filepath.ToSlash(filepath.Join(cacheDir, name))
		}

		data, err := client.FetchAttachment(ctx, lawID, src)
		if err != nil {
			log.Warn("Unable to download figure, keeping source reference", zap.String("src", src), zap.Error(err))
			return src
		}
		name, err := cache.Store(lawID, src, data)
		if err != nil {
			log.Warn("Unable to cache figure, keeping source reference", zap.String("src", src), zap.Error(err))
			return src
		}
		return filepath.ToSlash(filepath.Join(cacheDir, name))
	}
}
