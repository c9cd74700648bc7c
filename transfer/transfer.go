// Copyright (c) 2026 BVK Chaitanya

// Package transfer downloads left lists of escrow jobs and uploads found
// files.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bvk/hashes/algorithm"
	"github.com/bvk/hashes/catalog"
	"github.com/bvk/hashes/hashes"
	"golang.org/x/time/rate"
)

// Client is the subset of the escrow api used for transfers.
type Client interface {
	GetJobs(ctx context.Context) ([]*hashes.Job, error)
	OpenLeftList(ctx context.Context, leftList string) (io.ReadCloser, int64, error)
	UploadFounds(ctx context.Context, algorithmID int64, filename string, r io.Reader) error
}

var (
	ErrNotTextFile  = errors.New("founds file must have a .txt extension")
	ErrNoCriteria   = errors.New("no job ids, algorithm or currencies to download")
	ErrNothingFound = errors.New("no jobs match the download criteria")
)

type Options struct {
	// Delay is the minimum interval between successive left list downloads.
	Delay time.Duration

	// Progress if non-nil receives a progress bar for downloads with a known
	// size.
	Progress io.Writer
}

func (v *Options) setDefaults() {
	if v.Delay == 0 {
		v.Delay = 2 * time.Second
	}
}

// Criteria selects the jobs to download. JobIDs take precedence over the
// AlgorithmID which takes precedence over Currencies. Currencies also narrow
// the jobs list used to resolve the JobIDs and the AlgorithmID.
type Criteria struct {
	JobIDs      []int64
	AlgorithmID *int64
	Currencies  []string
}

// Report summarizes a download.
type Report struct {
	Downloaded []int64

	// Invalid holds the requested job ids that are not open jobs. They were
	// not fetched.
	Invalid []int64

	Bytes int64
}

type Service struct {
	opts Options

	client Client
	table  *algorithm.Table

	limiter *rate.Limiter
}

func New(client Client, table *algorithm.Table, opts *Options) *Service {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	return &Service{
		opts:    *opts,
		client:  client,
		table:   table,
		limiter: rate.NewLimiter(rate.Every(opts.Delay), 1),
	}
}

// Quiet returns a service that shares the download pacing, but doesn't draw
// the progress bars.
func (s *Service) Quiet() *Service {
	v := *s
	v.opts.Progress = nil
	return &v
}

// Resolve returns the jobs selected by the criteria and the requested job ids
// that are not open jobs.
func (s *Service) Resolve(ctx context.Context, c *Criteria) ([]*hashes.Job, []int64, error) {
	if len(c.JobIDs) == 0 && c.AlgorithmID == nil && len(c.Currencies) == 0 {
		return nil, nil, ErrNoCriteria
	}
	if c.AlgorithmID != nil && s.table != nil && !s.table.Has(*c.AlgorithmID) {
		return nil, nil, &algorithm.UnknownError{IDs: []int64{*c.AlgorithmID}}
	}

	jobs, err := s.client.GetJobs(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(c.Currencies) != 0 {
		jobs = catalog.Filter(jobs, &catalog.Query{Currencies: c.Currencies})
	}

	if len(c.JobIDs) != 0 {
		matched, missing := catalog.FilterJobIDs(jobs, c.JobIDs)
		return matched, missing, nil
	}
	if c.AlgorithmID != nil {
		return catalog.Filter(jobs, &catalog.Query{AlgorithmIDs: []int64{*c.AlgorithmID}}), nil, nil
	}
	return jobs, nil, nil
}

// Download writes the left lists of the selected jobs into dst. Requested job
// ids that are not open jobs are reported in the result and never fetched.
func (s *Service) Download(ctx context.Context, c *Criteria, dst io.Writer) (*Report, error) {
	jobs, invalid, err := s.Resolve(ctx, c)
	if err != nil {
		return nil, err
	}
	report := &Report{Invalid: invalid}
	if len(invalid) != 0 {
		slog.Warn("requested jobs are not open", "jobs", invalid)
	}
	if len(jobs) == 0 {
		return report, ErrNothingFound
	}
	for _, job := range jobs {
		n, err := s.DownloadJob(ctx, job, dst)
		report.Bytes += n
		if err != nil {
			return report, fmt.Errorf("could not download left list for job %d: %w", job.ID, err)
		}
		report.Downloaded = append(report.Downloaded, job.ID)
	}
	return report, nil
}

// DownloadJob writes one job's left list into dst. Successive downloads are
// paced by the configured delay.
func (s *Service) DownloadJob(ctx context.Context, job *hashes.Job, dst io.Writer) (int64, error) {
	if len(job.LeftList) == 0 {
		return 0, fmt.Errorf("job %d has no left list: %w", job.ID, os.ErrNotExist)
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	body, size, err := s.client.OpenLeftList(ctx, job.LeftList)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	w := dst
	var bar *progressBar
	if s.opts.Progress != nil && size > 0 {
		bar = newProgressBar(s.opts.Progress, size)
		w = io.MultiWriter(dst, bar)
	}
	n, err := io.Copy(w, body)
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		return n, err
	}
	slog.Debug("downloaded left list", "job", job.ID, "bytes", n)
	return n, nil
}

// CheckUpload validates the founds file and the algorithm id.
func (s *Service) CheckUpload(algorithmID int64, fpath string) error {
	if s.table != nil && !s.table.Has(algorithmID) {
		return &algorithm.UnknownError{IDs: []int64{algorithmID}}
	}
	if !strings.EqualFold(filepath.Ext(fpath), ".txt") {
		return fmt.Errorf("%q: %w", fpath, ErrNotTextFile)
	}
	fi, err := os.Stat(fpath)
	if err != nil {
		return fmt.Errorf("could not find founds file: %w", err)
	}
	if fi.IsDir() {
		return fmt.Errorf("founds file %q is a directory: %w", fpath, os.ErrInvalid)
	}
	return nil
}

// Upload submits a founds file for the algorithm. File and algorithm are
// validated before any network call.
func (s *Service) Upload(ctx context.Context, algorithmID int64, fpath string) error {
	if err := s.CheckUpload(algorithmID, fpath); err != nil {
		return err
	}
	fp, err := os.Open(fpath)
	if err != nil {
		return err
	}
	defer fp.Close()

	if err := s.client.UploadFounds(ctx, algorithmID, filepath.Base(fpath), fp); err != nil {
		return fmt.Errorf("could not upload founds file: %w", err)
	}
	return nil
}

// DownloadedIDs returns true if all the input ids were downloaded.
func (r *Report) DownloadedIDs(ids ...int64) bool {
	for _, id := range ids {
		if !slices.Contains(r.Downloaded, id) {
			return false
		}
	}
	return true
}
