package cli

import (
	"bytes"
	"context"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"

	"github.com/kopia/repbytes/feature"
	"github.com/kopia/repbytes/internal/mapped"
	"github.com/kopia/repbytes/repeat"
)

type commandDetect struct {
	path           string
	minRepeated    int64
	minRatio       float64
	force          bool
	maxAttempts    int
	maxAttemptsSet bool
	outPath        string
	verify         bool

	svc appServices
	out textOutput
	jo  jsonOutput
}

type detectJSONOutput struct {
	Path    string           `json:"path"`
	Length  int              `json:"length"`
	Result  repeat.Result    `json:"result"`
	Feature *feature.Feature `json:"feature,omitempty"`
	OutPath string           `json:"outPath,omitempty"`
}

func (c *commandDetect) setup(svc appServices, parent commandParent) {
	cmd := parent.Command("detect", "Determine whether a file consists of some smaller portion of data which is repeated some number (possibly fractional) of times.")
	cmd.Arg("file", "File to analyse.").Required().ExistingFileVar(&c.path)
	cmd.Flag("min-repeated", "Minimum number of repeated bytes required to be displayed.").Default("0").Int64Var(&c.minRepeated)
	cmd.Flag("min-ratio", "Minimum repeat ratio required to be displayed.").Default("1.0").Float64Var(&c.minRatio)
	cmd.Flag("force", "Don't abort poorly performing searches.").BoolVar(&c.force)
	cmd.Flag("max-attempts", "Number of candidate widths tested before a search is aborted.").IsSetByUser(&c.maxAttemptsSet).IntVar(&c.maxAttempts)
	cmd.Flag("outpath", "Filepath where deduplicated data should be written.").StringVar(&c.outPath)
	cmd.Flag("verify", "Verify that the file can be reconstructed from the deduplicated data.").BoolVar(&c.verify)
	cmd.Action(svc.baseActionWithContext(c.run))

	c.svc = svc
	c.out.setup(svc)
	c.jo.setup(svc, cmd)
}

func (c *commandDetect) options() repeat.Options {
	switch {
	case c.force:
		return repeat.Options{MaxAttempts: repeat.Unlimited}
	case c.maxAttemptsSet:
		return repeat.Options{MaxAttempts: c.maxAttempts}
	default:
		return c.svc.config().DetectOptions()
	}
}

func (c *commandDetect) policy() feature.Policy {
	p := c.svc.config().FeaturePolicy()
	p.MinExcessBytes = c.minRepeated
	p.MinRatio = c.minRatio

	return p
}

func (c *commandDetect) run(ctx context.Context) error {
	if c.minRepeated < 0 {
		return errors.Errorf("invalid --min-repeated: %v", c.minRepeated)
	}

	f, err := mapped.Open(c.path)
	if err != nil {
		return errors.Wrap(err, "unable to read input")
	}
	defer f.Close() //nolint:errcheck

	data := f.Bytes()

	r := repeat.Detect(data, c.options())
	c.svc.detections().Record(r, len(data))

	log(ctx).Debugw("detection finished",
		"path", c.path,
		"length", len(data),
		"outcome", r.Outcome,
		"width", r.Width,
		"attempts", r.Attempts,
		"method", r.Method)

	switch r.Outcome {
	case repeat.NotFound:
		return c.maybeOutputJSON(data, r, nil)

	case repeat.Aborted:
		if c.jo.jsonOutput {
			return c.maybeOutputJSON(data, r, nil)
		}

		c.out.printStdout("%v\n", c.path)
		c.out.printStdout("\tSearch aborted due to poor performance. Try --force.\n")

		return nil
	}

	feat, ok := feature.Evaluate(data, r, c.policy())
	if !ok {
		return c.maybeOutputJSON(data, r, nil)
	}

	if c.verify {
		if !bytes.Equal(feature.Reconstruct(data[:r.Width], len(data)), data) {
			return errors.Errorf("reconstructed data does not match %v", c.path)
		}

		log(ctx).Infof("verified reconstruction of %v bytes from %v", len(data), r.Width)
	}

	if c.outPath != "" {
		if err := atomic.WriteFile(c.outPath, bytes.NewReader(data[:r.Width])); err != nil {
			return errors.Wrap(err, "unable to write deduplicated data")
		}
	}

	if c.jo.jsonOutput {
		return c.maybeOutputJSON(data, r, feat)
	}

	c.out.printStdout("%v\n", c.path)
	c.out.printStdout("\tFiles consists of %d bytes which repeat.\n", feat.Width)
	c.out.printStdout("\tNumber of repeated bytes: %d\n", feat.ExcessBytes)
	c.out.printStdout("\tRepeat ratio: %f\n", feat.Ratio)

	if c.outPath != "" {
		c.out.printStdout("\n\tDeduplicated data written to %s.\n", c.outPath)
	}

	return nil
}

// maybeOutputJSON emits the result as JSON when requested, text output omits results
// that are not reported.
func (c *commandDetect) maybeOutputJSON(data []byte, r repeat.Result, feat *feature.Feature) error {
	if !c.jo.jsonOutput {
		return nil
	}

	o := detectJSONOutput{
		Path:    c.path,
		Length:  len(data),
		Result:  r,
		Feature: feat,
	}

	if feat != nil {
		o.OutPath = c.outPath
	}

	c.jo.emit(o)

	return nil
}
