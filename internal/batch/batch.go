package batch

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/bibnumber/internal/detection"
	"github.com/ironsheep/bibnumber/internal/imaging"
	"github.com/ironsheep/bibnumber/internal/ocr"
)

// Processor runs detection on one decoded image. *detection.Detector
// satisfies it.
type Processor interface {
	Detect(img image.Image) (*detection.Result, error)
}

// Factory creates a Processor for one worker together with a function that
// releases it. Each worker owns its Processor, so implementations need not be
// safe for concurrent use.
type Factory func() (Processor, func() error, error)

// NewDetectorFactory returns a Factory that builds a Tesseract-backed
// detector per worker.
func NewDetectorFactory(params detection.Params, edges imaging.EdgeOptions, ocrOpts ocr.Options) Factory {
	return func() (Processor, func() error, error) {
		rec, err := ocr.NewTesseract(ocrOpts)
		if err != nil {
			return nil, nil, err
		}
		det, err := detection.NewDetector(params,
			detection.WithEdgeProvider(imaging.Canny{Options: edges}),
			detection.WithRecognizer(rec))
		if err != nil {
			rec.Close()
			return nil, nil, err
		}
		return det, rec.Close, nil
	}
}

// Options configures a Runner.
type Options struct {
	// Workers bounds the images processed at once. Zero or less uses one
	// worker per CPU.
	Workers int

	// OutputName is the CSV file ProcessDir writes into the directory.
	OutputName string

	// DebugDir, when set, receives the debug renders of every processed image.
	DebugDir string
}

// Runner processes single images, directories and ground-truth CSV files.
type Runner struct {
	factory Factory
	opts    Options
	out     io.Writer
}

// ImageResult is the outcome of processing one image.
type ImageResult struct {
	Path    string `json:"path"`
	Numbers []int  `json:"numbers"`
	Err     error  `json:"-"`
}

// NewRunner creates a Runner that writes its report to out.
func NewRunner(factory Factory, opts Options, out io.Writer) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.OutputName == "" {
		opts.OutputName = "out.csv"
	}
	return &Runner{factory: factory, opts: opts, out: out}
}

// Process dispatches on input: a directory is processed with ProcessDir, a
// .csv file with ProcessCSV, and a .jpg or .png file with ProcessImage.
func (r *Runner) Process(ctx context.Context, input string) error {
	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("not found: %w", err)
	}

	switch {
	case info.IsDir():
		_, err := r.ProcessDir(ctx, input)
		return err
	case strings.EqualFold(filepath.Ext(input), ".csv"):
		_, err := r.ProcessCSV(ctx, input)
		return err
	case imaging.IsImageFile(input):
		res, err := r.ProcessImage(ctx, input)
		if err != nil {
			return err
		}
		return res.Err
	default:
		return fmt.Errorf("unknown input type: %s", input)
	}
}

// ProcessImage detects the bib numbers in one image and prints them.
func (r *Runner) ProcessImage(ctx context.Context, path string) (ImageResult, error) {
	results, err := r.run(ctx, []string{path})
	if err != nil {
		return ImageResult{}, err
	}
	r.report(results[0])
	return results[0], nil
}

// run processes paths with a bounded worker pool. Per-image failures are
// recorded in the results; only cancellation and worker setup fail the run.
func (r *Runner) run(ctx context.Context, paths []string) ([]ImageResult, error) {
	results := make([]ImageResult, len(paths))
	if len(paths) == 0 {
		return results, nil
	}

	workers := min(r.opts.Workers, len(paths))
	pool := make(chan Processor, workers)
	var releases []func() error
	defer func() {
		for _, release := range releases {
			if err := release(); err != nil {
				slog.Warn("failed to release processor", "error", err)
			}
		}
	}()
	for i := 0; i < workers; i++ {
		p, release, err := r.factory()
		if err != nil {
			return nil, fmt.Errorf("failed to create processor: %w", err)
		}
		if release != nil {
			releases = append(releases, release)
		}
		pool <- p
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := <-pool
			defer func() { pool <- p }()

			results[i] = r.processOne(p, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) processOne(p Processor, path string) ImageResult {
	res := ImageResult{Path: path}

	img, err := imaging.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	det, err := p.Detect(img)
	if err != nil {
		res.Err = fmt.Errorf("could not process image %s: %w", path, err)
		return res
	}
	res.Numbers = Numbers(det.Texts)

	if r.opts.DebugDir != "" {
		if err := WriteDebugImages(r.opts.DebugDir, path, img, det); err != nil {
			slog.Warn("failed to write debug images", "path", path, "error", err)
		}
	}
	slog.Debug("processed image", "path", path, "lines", len(det.Lines), "numbers", res.Numbers)
	return res
}

// report prints the per-image lines of the batch report.
func (r *Runner) report(res ImageResult) {
	fmt.Fprintf(r.out, "Processing file %s\n", res.Path)
	if res.Err != nil {
		errorStyle.Fprintf(r.out, "ERROR: %v\n", res.Err)
		return
	}
	fmt.Fprintf(r.out, "Read: [%s]\n", formatNumbers(res.Numbers))
}

// Numbers converts recognized texts to sorted, distinct integers.
func Numbers(texts []string) []int {
	seen := make(map[int]bool, len(texts))
	nums := make([]int, 0, len(texts))
	for _, t := range texts {
		n, err := strconv.Atoi(t)
		if err != nil || seen[n] {
			continue
		}
		seen[n] = true
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

func formatNumbers(nums []int) string {
	var sb strings.Builder
	for _, n := range nums {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String()
}
