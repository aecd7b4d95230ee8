package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/ironsheep/bibnumber/internal/imaging"
)

// DirReport summarizes a directory run.
type DirReport struct {
	// Results holds one entry per image, in file name order.
	Results []ImageResult `json:"results"`

	// OutputPath is the CSV written into the directory.
	OutputPath string `json:"output_path"`

	// Failed counts the images that could not be processed.
	Failed int `json:"failed"`
}

// ProcessDir processes every .jpg and .png file directly inside dir, in
// file name order, and writes the numbers found to Options.OutputName in
// the same directory.
//
// Each line of the output groups the images a number was read from:
//
//	number,image1,image2,...
//
// Lines are ordered by number, images by file name. Image names are
// relative to dir.
func (r *Runner) ProcessDir(ctx context.Context, dir string) (*DirReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && imaging.IsImageFile(e.Name()) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}

	outPath := filepath.Join(dir, r.opts.OutputName)
	fmt.Fprintf(r.out, "Processing directory %s into %s\n", dir, outPath)
	if len(paths) == 0 {
		slog.Warn("no images found", "dir", dir)
	}

	results, err := r.run(ctx, paths)
	if err != nil {
		return nil, err
	}

	report := &DirReport{Results: results, OutputPath: outPath}
	for _, res := range results {
		r.report(res)
		if res.Err != nil {
			report.Failed++
		}
	}

	fmt.Fprintf(r.out, "Saving results to %s\n", outPath)
	if err := writeGroups(outPath, groupByNumber(results)); err != nil {
		return nil, err
	}
	return report, nil
}

// numberGroup lists the images one number was read from.
type numberGroup struct {
	Number int
	Images []string
}

// groupByNumber inverts per-image results into per-number image lists.
func groupByNumber(results []ImageResult) []numberGroup {
	byNumber := make(map[int][]string)
	for _, res := range results {
		for _, n := range res.Numbers {
			byNumber[n] = append(byNumber[n], filepath.Base(res.Path))
		}
	}

	groups := make([]numberGroup, 0, len(byNumber))
	for n, images := range byNumber {
		groups = append(groups, numberGroup{Number: n, Images: images})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Number < groups[j].Number })
	return groups
}

func writeGroups(path string, groups []numberGroup) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	w := csv.NewWriter(f)
	for _, g := range groups {
		record := append([]string{strconv.Itoa(g.Number)}, g.Images...)
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
