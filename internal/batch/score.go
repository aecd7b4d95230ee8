package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

var (
	matchStyle    = color.New(color.FgHiGreen)
	mismatchStyle = color.New(color.FgHiRed)
	missedStyle   = color.New(color.FgHiYellow)
	errorStyle    = color.New(color.Bold, color.FgRed)
	scoreStyle    = color.New(color.Bold, color.FgHiWhite)
)

// GroundTruth is one row of a ground-truth file: an image and the numbers
// it shows.
type GroundTruth struct {
	Path    string
	Numbers []int
}

// Score holds the retrieval statistics of a ground-truth run.
type Score struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	Relevant       int `json:"relevant"`
}

// Precision is TP / (TP + FP), or 0 when nothing was read.
func (s Score) Precision() float64 {
	if s.TruePositives+s.FalsePositives == 0 {
		return 0
	}
	return float64(s.TruePositives) / float64(s.TruePositives+s.FalsePositives)
}

// Recall is TP / relevant, or 0 without ground truth.
func (s Score) Recall() float64 {
	if s.Relevant == 0 {
		return 0
	}
	return float64(s.TruePositives) / float64(s.Relevant)
}

// FScore is the harmonic mean of precision and recall.
func (s Score) FScore() float64 {
	p, r := s.Precision(), s.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Add records the numbers read from one image against its ground truth and
// returns the matched, mismatched and missed numbers.
func (s *Score) Add(truth, read []int) (match, mismatch, missed []int) {
	s.Relevant += len(truth)
	for _, n := range read {
		if slices.Contains(truth, n) {
			match = append(match, n)
			s.TruePositives++
		} else {
			mismatch = append(mismatch, n)
			s.FalsePositives++
		}
	}
	for _, n := range truth {
		if !slices.Contains(read, n) {
			missed = append(missed, n)
		}
	}
	return match, mismatch, missed
}

// ReadGroundTruth parses a ';'-separated ground-truth file. Each row is an
// image path followed by the numbers it shows; relative paths are resolved
// against the directory holding the file.
func ReadGroundTruth(path string) ([]GroundTruth, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ground truth: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	dir := filepath.Dir(path)
	var rows []GroundTruth
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ground truth: %w", err)
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		row := GroundTruth{Path: name}
		if !filepath.IsAbs(name) {
			row.Path = filepath.Join(dir, name)
		}
		line, _ := r.FieldPos(0)
		for _, field := range record[1:] {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: invalid number %q", path, line, field)
			}
			row.Numbers = append(row.Numbers, n)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ProcessCSV processes the images listed in a ground-truth file, prints a
// Match, Mismatch or Missed line for every number and finishes with
// precision, recall and F-score. Images that fail count as read nothing.
func (r *Runner) ProcessCSV(ctx context.Context, path string) (*Score, error) {
	rows, err := ReadGroundTruth(path)
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(rows))
	for i, row := range rows {
		paths[i] = row.Path
	}
	results, err := r.run(ctx, paths)
	if err != nil {
		return nil, err
	}

	score := &Score{}
	for i, res := range results {
		r.report(res)
		match, mismatch, missed := score.Add(rows[i].Numbers, res.Numbers)
		for _, n := range match {
			matchStyle.Fprintf(r.out, "Match %d\n", n)
		}
		for _, n := range mismatch {
			mismatchStyle.Fprintf(r.out, "Mismatch %d\n", n)
		}
		for _, n := range missed {
			missedStyle.Fprintf(r.out, "Missed %d\n", n)
		}
	}

	r.printScore(*score)
	return score, nil
}

func (r *Runner) printScore(s Score) {
	scoreStyle.Fprintf(r.out, "precision=%d/%d=%.2f\n",
		s.TruePositives, s.TruePositives+s.FalsePositives, s.Precision())
	scoreStyle.Fprintf(r.out, "recall=%d/%d=%.2f\n", s.TruePositives, s.Relevant, s.Recall())
	scoreStyle.Fprintf(r.out, "F-score=%.2f\n", s.FScore())
}
