package cli

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"

	"github.com/alecthomas/units"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/kopia/repbytes/feature"
	"github.com/kopia/repbytes/internal/artifact"
	"github.com/kopia/repbytes/internal/compression"
	"github.com/kopia/repbytes/internal/mapped"
	"github.com/kopia/repbytes/repeat"
)

const defaultScanParallelism = 4

type commandScan struct {
	paths []string

	parallel int

	minRepeated       units.Base2Bytes
	minRepeatedSet    bool
	minRatio          float64
	minRatioSet       bool
	maxPreviewSize    int
	maxPreviewSizeSet bool
	maxAttempts       int
	maxAttemptsSet    bool
	force             bool

	artifactDir            string
	artifactDirSet         bool
	artifactCompression    string
	artifactCompressionSet bool

	svc appServices
	out textOutput
	jo  jsonOutput
}

// scanResult is the result of scanning a single file.
type scanResult struct {
	Path     string             `json:"path"`
	Length   int                `json:"length"`
	Result   repeat.Result      `json:"result"`
	Feature  *feature.Feature   `json:"feature,omitempty"`
	Artifact *artifact.Artifact `json:"artifact,omitempty"`
}

type scanSummary struct {
	files   int
	found   int
	aborted int
	bytes   int64
}

func (c *commandScan) setup(svc appServices, parent commandParent) {
	cmd := parent.Command("scan", "Scan files and directories for repeated data.")
	cmd.Arg("path", "Files or directories to scan.").Required().ExistingFilesOrDirsVar(&c.paths)
	cmd.Flag("parallel", "Number of files scanned in parallel.").Default("4").IntVar(&c.parallel)
	cmd.Flag("min-repeated", "Minimum number of repeated bytes required to be reported.").Default("64B").IsSetByUser(&c.minRepeatedSet).BytesVar(&c.minRepeated)
	cmd.Flag("min-ratio", "Minimum repeat ratio required to be reported.").Default("1.25").IsSetByUser(&c.minRatioSet).Float64Var(&c.minRatio)
	cmd.Flag("max-preview-size", "Largest repeated data shown as text, larger data is written as an artifact.").Default("32").IsSetByUser(&c.maxPreviewSizeSet).IntVar(&c.maxPreviewSize)
	cmd.Flag("max-attempts", "Number of candidate widths tested before a search is aborted.").IsSetByUser(&c.maxAttemptsSet).IntVar(&c.maxAttempts)
	cmd.Flag("force", "Don't abort poorly performing searches.").BoolVar(&c.force)
	cmd.Flag("artifact-dir", "Directory where deduplicated data is written.").IsSetByUser(&c.artifactDirSet).StringVar(&c.artifactDir)
	cmd.Flag("artifact-compression", "Compression of deduplicated data.").Default(string(compression.None)).IsSetByUser(&c.artifactCompressionSet).EnumVar(&c.artifactCompression, compression.SupportedNames()...)
	cmd.Action(svc.baseActionWithContext(c.run))

	c.svc = svc
	c.out.setup(svc)
	c.jo.setup(svc, cmd)
}

func (c *commandScan) options() repeat.Options {
	switch {
	case c.force:
		return repeat.Options{MaxAttempts: repeat.Unlimited}
	case c.maxAttemptsSet:
		return repeat.Options{MaxAttempts: c.maxAttempts}
	default:
		return c.svc.config().DetectOptions()
	}
}

func (c *commandScan) policy() feature.Policy {
	p := c.svc.config().FeaturePolicy()

	if c.minRepeatedSet {
		p.MinExcessBytes = int64(c.minRepeated)
	}

	if c.minRatioSet {
		p.MinRatio = c.minRatio
	}

	if c.maxPreviewSizeSet {
		p.MaxPreviewSize = c.maxPreviewSize
	}

	return p
}

func (c *commandScan) artifactStore() (*artifact.Store, error) {
	cfg := c.svc.config().Artifacts

	dir := cfg.Dir
	if c.artifactDirSet {
		dir = c.artifactDir
	}

	if dir == "" {
		return nil, nil //nolint:nilnil
	}

	comp := cfg.Compression
	if c.artifactCompressionSet {
		comp = c.artifactCompression
	}

	//nolint:wrapcheck
	return artifact.NewStore(dir, compression.Name(comp))
}

func (c *commandScan) run(ctx context.Context) error {
	if c.parallel <= 0 {
		c.parallel = defaultScanParallelism
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	store, err := c.artifactStore()
	if err != nil {
		return errors.Wrap(err, "unable to open artifact store")
	}

	files, err := c.listFiles(ctx)
	if err != nil {
		return err
	}

	results := make([]*scanResult, len(files))
	policy := c.policy()
	opt := c.options()

	var processed atomic.Int32

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(c.parallel)

	for i, fname := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return errors.Wrap(err, "scan canceled")
			}

			r, err := c.scanFile(ctx, fname, opt, policy, store)
			if err != nil {
				return err
			}

			results[i] = r

			log(ctx).Debugw("scanned", "path", fname, "processed", processed.Add(1), "total", len(files))

			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return errors.Wrap(err, "error scanning files")
	}

	var sum scanSummary

	for _, r := range results {
		sum.files++
		sum.bytes += int64(r.Length)

		switch {
		case r.Result.Outcome == repeat.Aborted:
			sum.aborted++
		case r.Feature != nil:
			sum.found++
		}

		c.outputResult(r)
	}

	c.out.printStderr("Scanned %v files (%v), found %v, aborted %v.\n", sum.files, units.Base2Bytes(sum.bytes), sum.found, sum.aborted)

	return nil
}

// listFiles expands provided paths into regular files, in lexical walk order.
func (c *commandScan) listFiles(ctx context.Context) ([]string, error) {
	var files []string

	for _, p := range c.paths {
		err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log(ctx).Warnf("unable to read %v: %v", path, err)

				if d != nil && d.IsDir() {
					return fs.SkipDir
				}

				return nil
			}

			if d.Type().IsRegular() {
				files = append(files, path)
			}

			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "unable to list %v", p)
		}
	}

	return files, nil
}

func (c *commandScan) scanFile(ctx context.Context, fname string, opt repeat.Options, policy feature.Policy, store *artifact.Store) (*scanResult, error) {
	f, err := mapped.Open(fname)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %v", fname)
	}
	defer f.Close() //nolint:errcheck

	data := f.Bytes()

	r := repeat.Detect(data, opt)
	c.svc.detections().Record(r, len(data))

	res := &scanResult{
		Path:   fname,
		Length: len(data),
		Result: r,
	}

	feat, ok := feature.Evaluate(data, r, policy)
	if !ok {
		return res, nil
	}

	res.Feature = feat

	if feat.Deduplicated != nil && store != nil {
		a, err := store.Put(ctx, feat.Deduplicated)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to store deduplicated data of %v", fname)
		}

		res.Artifact = &a
	}

	// the data is unmapped when the file is closed.
	feat.Deduplicated = nil

	return res, nil
}

func (c *commandScan) outputResult(r *scanResult) {
	if c.jo.jsonOutput {
		if r.Feature != nil || r.Result.Outcome == repeat.Aborted {
			c.jo.emit(r)
		}

		return
	}

	switch {
	case r.Result.Outcome == repeat.Aborted:
		c.out.printStderrColor(warningColor, "%v: search aborted after %v attempts, use --force\n", r.Path, r.Result.Attempts)

	case r.Feature != nil:
		c.out.printStdoutColor(foundColor, "%v", r.Path)
		c.out.printStdout("\t%v bytes repeat %f times (%v repeated bytes)", r.Feature.Width, r.Feature.Ratio, r.Feature.ExcessBytes)

		switch {
		case r.Feature.Preview != "":
			c.out.printStdout("\t%v", r.Feature.Preview)
		case r.Artifact != nil:
			c.out.printStdout("\tdeduplicated %v", r.Artifact.Path)
		}

		c.out.printStdout("\n")
	}
}
